package series

import (
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
)

// Series is a numbering namespace for invoices. It owns a monotonically
// increasing counter from which finalized invoices take their numbers.
// The counter is mutated only through Repository.NextNumber.
type Series struct {
	ID string `db:"id" json:"id"`
	// Name is a human readable label for the series, e.g. "2024 domestic"
	Name string `db:"name" json:"name"`
	// Value is the display prefix prepended to invoice numbers, e.g. "INV-"
	Value string `db:"value" json:"value"`
	// NextNumber is the number the next finalized invoice will receive
	NextNumber int64 `db:"next_number" json:"next_number"`
	Enabled    bool  `db:"enabled" json:"enabled"`
	types.BaseModel
}

func (s *Series) Validate() error {
	if s.Name == "" {
		return ierr.NewError("series name is required").
			WithHint("Series name must not be empty").
			Mark(ierr.ErrValidation)
	}
	if s.NextNumber < 0 {
		return ierr.NewError("series counter must be non-negative").
			WithHint("Series next number must not be negative").
			WithReportableDetails(map[string]any{"next_number": s.NextNumber}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
