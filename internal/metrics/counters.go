package metrics

import (
	"sync/atomic"
	"time"
)

// ServiceCounters holds process-wide request and error totals.
// Counters start at zero, only ever increase and are not persisted.
type ServiceCounters struct {
	requests  atomic.Uint64
	errors    atomic.Uint64
	startedAt time.Time
}

// NewServiceCounters creates counters whose uptime starts now
func NewServiceCounters() *ServiceCounters {
	return &ServiceCounters{startedAt: time.Now()}
}

// IncRequests counts one handled request
func (c *ServiceCounters) IncRequests() {
	c.requests.Add(1)
}

// IncErrors counts one request that ended in an error response
func (c *ServiceCounters) IncErrors() {
	c.errors.Add(1)
}

// Requests returns the total request count
func (c *ServiceCounters) Requests() uint64 {
	return c.requests.Load()
}

// Errors returns the error count
func (c *ServiceCounters) Errors() uint64 {
	return c.errors.Load()
}

// StartedAt returns when the counters were created
func (c *ServiceCounters) StartedAt() time.Time {
	return c.startedAt
}

// Uptime returns time elapsed since the counters were created
func (c *ServiceCounters) Uptime() time.Duration {
	return time.Since(c.startedAt)
}

// Snapshot is a consistent-enough read of the counters for reporting
type Snapshot struct {
	Requests    uint64
	Errors      uint64
	SuccessRate float64
	Uptime      time.Duration
	StartedAt   time.Time
}

// Snapshot reads both counters and derives the success rate.
// Errors are read first so a concurrent request cannot push the rate above 100.
func (c *ServiceCounters) Snapshot() Snapshot {
	errs := c.Errors()
	reqs := c.Requests()
	return Snapshot{
		Requests:    reqs,
		Errors:      errs,
		SuccessRate: SuccessRate(reqs, errs),
		Uptime:      c.Uptime(),
		StartedAt:   c.StartedAt(),
	}
}

// SuccessRate returns (requests - errors) / max(requests, 1) * 100 rounded to 2 decimals,
// clamped to [0, 100]
func SuccessRate(requests, errors uint64) float64 {
	if errors >= requests {
		if requests == 0 {
			return 100
		}
		return 0
	}
	denom := requests
	if denom == 0 {
		denom = 1
	}
	return Round(float64(requests-errors)/float64(denom)*100, 2)
}
