package youtube

import (
	"context"

	"golang.org/x/time/rate"
)

// Default outbound request ceiling shared by every caller in the process.
const (
	DefaultRatePerSecond = 8
	DefaultRateBurst     = 8
)

// RateGate is the process-wide admission gate for upstream calls. Build one at
// startup and hand the same pointer to every Client.
type RateGate struct {
	limiter *rate.Limiter
}

// NewRateGate allows perSecond requests per second with the given burst.
func NewRateGate(perSecond float64, burst int) *RateGate {
	if perSecond <= 0 {
		perSecond = DefaultRatePerSecond
	}
	if burst < 1 {
		burst = 1
	}
	return &RateGate{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a request may proceed. A nil gate admits immediately.
func (g *RateGate) Wait(ctx context.Context) error {
	if g == nil {
		return nil
	}
	return g.limiter.Wait(ctx)
}
