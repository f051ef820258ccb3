package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultWindowDuration = 24 * time.Hour

// Window is a rolling quota counter anchored at the first transaction it saw.
// A zero Anchor means no transaction has been counted yet.
type Window struct {
	Anchor time.Time
	Total  decimal.Decimal
}

func (w Window) IsSet() bool {
	return !w.Anchor.IsZero()
}

// Expired reports whether now is at least one duration past the anchor.
func (w Window) Expired(now time.Time, duration time.Duration) bool {
	return w.IsSet() && now.Sub(w.Anchor) >= duration
}

// Current returns the window as it stands at now, rolled over if expired.
func (w Window) Current(now time.Time, duration time.Duration) Window {
	if !w.IsSet() || w.Expired(now, duration) {
		return Window{Total: decimal.Zero}
	}
	return w
}

// Advance evaluates amount against limit and returns the window with the
// amount applied. The receiver is never modified.
func (w Window) Advance(amount, limit decimal.Decimal, now time.Time, duration time.Duration) (Window, error) {
	cur := w.Current(now, duration)
	next := cur.Total.Add(amount)
	if next.GreaterThan(limit) {
		return w, &LimitViolation{Limit: limit, Total: cur.Total, Amount: amount}
	}
	if !cur.IsSet() {
		cur.Anchor = now
	}
	cur.Total = next
	return cur, nil
}

// Headroom is how much can still be added at now before reaching limit.
func (w Window) Headroom(limit decimal.Decimal, now time.Time, duration time.Duration) decimal.Decimal {
	return limit.Sub(w.Current(now, duration).Total)
}

// LimitViolation is returned by Window.Advance when the amount does not fit.
type LimitViolation struct {
	Limit  decimal.Decimal
	Total  decimal.Decimal
	Amount decimal.Decimal
}

func (v *LimitViolation) Error() string {
	return fmt.Sprintf("limit exceeded: %s + %s > %s", v.Total, v.Amount, v.Limit)
}
