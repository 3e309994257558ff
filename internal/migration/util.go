package migration

import (
	"errors"
	"sync"
	"time"
)

func now() time.Time { return time.Now() }

func elapsedSeconds(start time.Time) float64 {
	return time.Since(start).Seconds()
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func successRate(succeeded, total int) float64 {
	if total == 0 {
		return 1.0
	}
	return float64(succeeded) / float64(total)
}

// performanceLabel gives a coarse human label for a batch operation's
// throughput, the way a progress summary would describe it to an
// operator glancing at a result.
func performanceLabel(durationSeconds float64, subjectCount int) string {
	if subjectCount == 0 {
		return "no-op"
	}
	perSubject := durationSeconds / float64(subjectCount)
	switch {
	case perSubject < 0.05:
		return "fast"
	case perSubject < 0.5:
		return "normal"
	default:
		return "slow"
	}
}

// as is a thin wrapper over errors.As so call sites can avoid importing
// the errors package solely for one-line type assertions on engine errors.
func as(err error, target any) bool {
	return errors.As(err, target)
}

// countingMutex tallies concurrent delete outcomes from ClearContextBatch's
// worker goroutines without exposing a bespoke result struct per caller.
type countingMutex struct {
	mu        sync.Mutex
	successes int
	failures  []string
}

func (c *countingMutex) addSuccess() {
	c.mu.Lock()
	c.successes++
	c.mu.Unlock()
}

func (c *countingMutex) addFailure(subject string) {
	c.mu.Lock()
	c.failures = append(c.failures, subject)
	c.mu.Unlock()
}
