package middleware

import (
	"github.com/Suhaibinator/hxdemo/pkg/common"
	"go.uber.org/ratelimit"
)

// Throttle paces requests through a leaky-bucket limiter shared by all requests.
// Each request waits for its slot before continuing; nothing is rejected.
type Throttle struct {
	limiter ratelimit.Limiter
}

// NewThrottle creates a throttle allowing rps requests per second with the
// given burst slack. A non-positive rps disables pacing.
func NewThrottle(rps, slack int) *Throttle {
	if rps <= 0 {
		return &Throttle{limiter: ratelimit.NewUnlimited()}
	}
	if slack < 0 {
		slack = 0
	}
	return &Throttle{limiter: ratelimit.New(rps, ratelimit.WithSlack(slack))}
}

// Handle implements common.Middleware. A request whose context ends while it
// waits is answered at once; its slot is still consumed.
func (t *Throttle) Handle(req *common.Request, next common.HandlerFunc) *common.Response {
	ready := make(chan struct{})
	go func() {
		t.limiter.Take()
		close(ready)
	}()

	select {
	case <-ready:
	case <-req.Context().Done():
		return common.ContextDone(req.Context().Err())
	}

	if err := req.Context().Err(); err != nil {
		return common.ContextDone(err)
	}
	return next(req)
}
