package derive

import "github.com/openvolley/scoresheet/internal/domain/ledger"

// Option configures a derivation.
type Option func(*options)

type options struct {
	sanctionRows int
}

func defaults() options {
	return options{sanctionRows: ledger.DefaultSanctionRows}
}

// WithSanctionRows sets how many sanctions fit the sheet before overflow.
func WithSanctionRows(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.sanctionRows = n
		}
	}
}
