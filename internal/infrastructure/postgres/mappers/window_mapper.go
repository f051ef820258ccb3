package mappers

import (
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/shopspring/decimal"
)

// ToDomainWindow maps the nullable anchor column; NULL means unset.
func ToDomainWindow(anchor *time.Time, total decimal.Decimal) domain.Window {
	w := domain.Window{Total: total}
	if anchor != nil {
		w.Anchor = *anchor
	}
	return w
}

func WindowColumns(w domain.Window) (*time.Time, decimal.Decimal) {
	return anchorPtr(w.Anchor), w.Total
}
