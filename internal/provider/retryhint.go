package provider

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

// RetryHint extracts the provider-suggested retry delay from a quota error.
// Isolated behind an interface so the scraping heuristic can be swapped
// without touching retry/backoff logic.
type RetryHint interface {
	Delay(err error) time.Duration
}

// regexHint scrapes a "retryDelay: '40s'" style field out of the raw error
// payload. This is a heuristic over unstructured text, not a contract; when
// the field is absent the fallback applies.
type regexHint struct {
	fallback time.Duration
}

// DefaultRetryFallback is used when the payload carries no parsable delay.
const DefaultRetryFallback = 60 * time.Second

// NewRegexHint returns the default payload-scraping hint. A zero fallback
// selects DefaultRetryFallback.
func NewRegexHint(fallback time.Duration) RetryHint {
	if fallback <= 0 {
		fallback = DefaultRetryFallback
	}
	return regexHint{fallback: fallback}
}

var retryDelayRe = regexp.MustCompile(`['"]retryDelay['"]:\s*['"](\d+)s['"]`)

func (h regexHint) Delay(err error) time.Duration {
	var q *QuotaError
	if !errors.As(err, &q) {
		return h.fallback
	}
	m := retryDelayRe.FindStringSubmatch(q.Payload)
	if m == nil {
		return h.fallback
	}
	secs, convErr := strconv.Atoi(m[1])
	if convErr != nil || secs <= 0 {
		return h.fallback
	}
	return time.Duration(secs) * time.Second
}
