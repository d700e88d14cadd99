package n2f

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Per-minute request quotas granted by the target platform. Night hours
// carry materially higher budgets.
const (
	quotaDayReadPerMinute    = 60
	quotaDayWritePerMinute   = 10
	quotaNightReadPerMinute  = 200
	quotaNightWritePerMinute = 50

	dayStartHour = 6
	dayEndHour   = 20
)

// QuotaChannels holds the four independent rate limiters, selected by
// (night hour, read/write). Callers never pick a channel directly; the
// selection is a pure function of the wall clock and the call class.
// Limiters queue callers over quota rather than rejecting them.
type QuotaChannels struct {
	dayRead    *rate.Limiter
	dayWrite   *rate.Limiter
	nightRead  *rate.Limiter
	nightWrite *rate.Limiter

	now func() time.Time
}

// NewQuotaChannels creates the four quota channels.
func NewQuotaChannels() *QuotaChannels {
	return &QuotaChannels{
		dayRead:    perMinute(quotaDayReadPerMinute),
		dayWrite:   perMinute(quotaDayWritePerMinute),
		nightRead:  perMinute(quotaNightReadPerMinute),
		nightWrite: perMinute(quotaNightWritePerMinute),
		now:        time.Now,
	}
}

// perMinute builds a limiter for an n-requests-per-minute budget.
func perMinute(n int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(n)/60.0), n)
}

// isNight reports whether the given hour falls in the night window.
func isNight(hour int) bool {
	return hour > dayEndHour || hour < dayStartHour
}

// channel selects the limiter for the current hour and call class.
func (q *QuotaChannels) channel(read bool) *rate.Limiter {
	night := isNight(q.now().Hour())
	switch {
	case night && read:
		return q.nightRead
	case night && !read:
		return q.nightWrite
	case read:
		return q.dayRead
	default:
		return q.dayWrite
	}
}

// Wait blocks until the selected channel grants a slot, or the context is
// done. A call may block for up to the quota window.
func (q *QuotaChannels) Wait(ctx context.Context, read bool) error {
	return q.channel(read).Wait(ctx)
}
