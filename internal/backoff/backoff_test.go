package backoff

import (
	"testing"
	"time"

	"github.com/soochol/taskd/internal/taskd"
)

func TestDelay_Exponential(t *testing.T) {
	policy := taskd.RetryPolicy{
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Strategy:     taskd.BackoffExponential,
		Multiplier:   2.0,
	}

	tests := []struct {
		name     string
		attempt  int
		expected time.Duration
	}{
		{"attempt 1 returns InitialDelay", 1, 1 * time.Second},
		{"attempt 2 returns InitialDelay * Multiplier", 2, 2 * time.Second},
		{"attempt 3 returns InitialDelay * Multiplier^2", 3, 4 * time.Second},
		{"attempt 5 returns InitialDelay * Multiplier^4", 5, 16 * time.Second},
		{"attempt 6 capped at MaxDelay", 6, 30 * time.Second},
		{"attempt 10 still capped at MaxDelay", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Delay(policy, tt.attempt)
			if got != tt.expected {
				t.Errorf("Delay(policy, %d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestDelay_Fixed(t *testing.T) {
	policy := taskd.RetryPolicy{
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     time.Minute,
		Strategy:     taskd.BackoffFixed,
	}

	for _, attempt := range []int{1, 2, 5, 50} {
		if got := Delay(policy, attempt); got != 250*time.Millisecond {
			t.Errorf("Delay(fixed, %d) = %v, want 250ms", attempt, got)
		}
	}
}

func TestDelay_Linear(t *testing.T) {
	tests := []struct {
		name     string
		policy   taskd.RetryPolicy
		attempt  int
		expected time.Duration
	}{
		{
			name: "attempt 1 returns InitialDelay",
			policy: taskd.RetryPolicy{
				InitialDelay: time.Second,
				MaxDelay:     time.Minute,
				Strategy:     taskd.BackoffLinear,
				Multiplier:   500,
			},
			attempt:  1,
			expected: time.Second,
		},
		{
			name: "attempt 3 adds two steps",
			policy: taskd.RetryPolicy{
				InitialDelay: time.Second,
				MaxDelay:     time.Minute,
				Strategy:     taskd.BackoffLinear,
				Multiplier:   500,
			},
			attempt:  3,
			expected: 2 * time.Second,
		},
		{
			name: "missing multiplier defaults to 1000ms steps",
			policy: taskd.RetryPolicy{
				InitialDelay: time.Second,
				MaxDelay:     time.Minute,
				Strategy:     taskd.BackoffLinear,
			},
			attempt:  4,
			expected: 4 * time.Second,
		},
		{
			name: "clamped at MaxDelay",
			policy: taskd.RetryPolicy{
				InitialDelay: time.Second,
				MaxDelay:     3 * time.Second,
				Strategy:     taskd.BackoffLinear,
				Multiplier:   5000,
			},
			attempt:  10,
			expected: 3 * time.Second,
		},
		{
			name: "zero MaxDelay means unbounded",
			policy: taskd.RetryPolicy{
				InitialDelay: time.Second,
				Strategy:     taskd.BackoffLinear,
				Multiplier:   5000,
			},
			attempt:  10,
			expected: 46 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Delay(tt.policy, tt.attempt)
			if got != tt.expected {
				t.Errorf("Delay(policy, %d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestDelay_DefaultsToExponential(t *testing.T) {
	policy := taskd.RetryPolicy{
		InitialDelay: time.Second,
		MaxDelay:     time.Minute,
	}

	if got := Delay(policy, 3); got != 4*time.Second {
		t.Errorf("Delay with unset strategy = %v, want 4s (exponential, factor 2)", got)
	}
}

func TestDelay_AttemptBelowOne(t *testing.T) {
	policy := taskd.DefaultRetryPolicy()
	if got := Delay(policy, 0); got != policy.InitialDelay {
		t.Errorf("Delay(policy, 0) = %v, want %v", got, policy.InitialDelay)
	}
}

func TestDelay_NeverNegative(t *testing.T) {
	policy := taskd.RetryPolicy{
		InitialDelay: -time.Second,
		MaxDelay:     time.Minute,
		Strategy:     taskd.BackoffFixed,
	}
	if got := Delay(policy, 1); got != 0 {
		t.Errorf("Delay with negative InitialDelay = %v, want 0", got)
	}
}
