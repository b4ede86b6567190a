// Package backoff computes retry delays from a policy and an attempt
// number. It is a pure function of its inputs.
package backoff

import (
	"math"
	"time"

	"github.com/soochol/taskd/internal/taskd"
)

const (
	// defaultLinearStep is the per-attempt increment, in milliseconds,
	// when a linear policy carries no multiplier.
	defaultLinearStep = 1000
	// defaultExponentialFactor doubles the delay each attempt when an
	// exponential policy carries no multiplier.
	defaultExponentialFactor = 2.0
)

// Delay returns the wait before retrying after the given failed attempt.
// attempt is 1-based: Delay(p, 1) is the wait after the first failure.
// The result is never negative and is clamped to policy.MaxDelay when
// MaxDelay is positive; a zero or negative MaxDelay means no upper
// bound.
func Delay(policy taskd.RetryPolicy, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	var delay time.Duration
	switch policy.Strategy {
	case taskd.BackoffFixed:
		delay = policy.InitialDelay
	case taskd.BackoffLinear:
		step := policy.Multiplier
		if step <= 0 {
			step = defaultLinearStep
		}
		delay = policy.InitialDelay +
			time.Duration(float64(attempt-1)*step*float64(time.Millisecond))
	default: // exponential, also applied when the strategy is unset
		factor := policy.Multiplier
		if factor <= 0 {
			factor = defaultExponentialFactor
		}
		delay = time.Duration(float64(policy.InitialDelay) * math.Pow(factor, float64(attempt-1)))
	}

	if delay < 0 {
		return 0
	}
	if policy.MaxDelay > 0 && delay > policy.MaxDelay {
		return policy.MaxDelay
	}
	return delay
}
