package invoice

import (
	"testing"
	"time"

	"github.com/facturio/facturio/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStatusAt(t *testing.T) {
	today := time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC)
	future := time.Date(2021, time.April, 1, 0, 0, 0, 0, time.UTC)
	past := time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		invoice Invoice
		want    types.InvoiceStatusTag
	}{
		{
			name:    "draft wins over everything",
			invoice: Invoice{Draft: true, Paid: true, DueDate: &past},
			want:    types.InvoiceStatusDraft,
		},
		{
			name:    "paid wins over overdue",
			invoice: Invoice{Paid: true, DueDate: &past},
			want:    types.InvoiceStatusPaid,
		},
		{
			name:    "due date in the future",
			invoice: Invoice{DueDate: &future},
			want:    types.InvoiceStatusPending,
		},
		{
			name:    "due date in the past",
			invoice: Invoice{DueDate: &past},
			want:    types.InvoiceStatusOverdue,
		},
		{
			name:    "due date equal to today is overdue",
			invoice: Invoice{DueDate: &today},
			want:    types.InvoiceStatusOverdue,
		},
		{
			name:    "no due date is pending",
			invoice: Invoice{},
			want:    types.InvoiceStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.invoice.StatusAt(today))
		})
	}
}

func TestNeedsNumber(t *testing.T) {
	assert.True(t, (&Invoice{Draft: false}).NeedsNumber())
	assert.False(t, (&Invoice{Draft: true}).NeedsNumber())
	assert.False(t, (&Invoice{Draft: false, Number: lo.ToPtr(int64(7))}).NeedsNumber())
}

func TestLineItemAmounts(t *testing.T) {
	li := &LineItem{
		Quantity:    decimal.NewFromInt(3),
		UnitaryCost: decimal.NewFromInt(20),
		Discount:    decimal.NewFromInt(10),
		TaxRate:     decimal.NewFromInt(21),
	}

	// 3 * 20 = 60, minus 10% discount = 54
	assert.True(t, li.NetAmount().Equal(decimal.NewFromFloat(54)))
	// 21% of 54 = 11.34
	assert.True(t, li.TaxAmount().Equal(decimal.NewFromFloat(11.34)))
	assert.True(t, li.GrossAmount().Equal(decimal.NewFromFloat(65.34)))
}

func TestCalculateAmounts(t *testing.T) {
	inv := &Invoice{
		LineItems: []*LineItem{
			{Quantity: decimal.NewFromInt(1), UnitaryCost: decimal.NewFromInt(100), TaxRate: decimal.NewFromInt(10)},
			{Quantity: decimal.NewFromInt(2), UnitaryCost: decimal.NewFromInt(25)},
		},
	}
	inv.CalculateAmounts()

	assert.True(t, inv.NetAmount.Equal(decimal.NewFromInt(150)))
	assert.True(t, inv.TaxAmount.Equal(decimal.NewFromInt(10)))
	assert.True(t, inv.GrossAmount.Equal(decimal.NewFromInt(160)))
	assert.False(t, inv.Paid)
}

func TestCalculateAmountsRefreshesPaidFlag(t *testing.T) {
	// Nothing owed, nothing paid: paid outright
	empty := &Invoice{}
	empty.CalculateAmounts()
	assert.True(t, empty.GrossAmount.IsZero())
	assert.True(t, empty.Paid)

	// Payments already cover the new total
	covered := &Invoice{
		PaidAmount: decimal.NewFromInt(100),
		LineItems: []*LineItem{
			{Quantity: decimal.NewFromInt(1), UnitaryCost: decimal.NewFromInt(80)},
		},
	}
	covered.CalculateAmounts()
	assert.True(t, covered.Paid)

	// A grown total flips a paid invoice back to unpaid
	grown := &Invoice{
		Paid:       true,
		PaidAmount: decimal.NewFromInt(100),
		LineItems: []*LineItem{
			{Quantity: decimal.NewFromInt(1), UnitaryCost: decimal.NewFromInt(150)},
		},
	}
	grown.CalculateAmounts()
	assert.False(t, grown.Paid)
}

func TestValidateRejectsNumberedDraft(t *testing.T) {
	inv := &Invoice{
		SeriesID: "ser_1",
		Draft:    true,
		Number:   lo.ToPtr(int64(5)),
	}
	assert.Error(t, inv.Validate())
}
