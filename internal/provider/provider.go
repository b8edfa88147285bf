// Package provider abstracts the hosted text-completion service. The rest of
// the system sees only the Client interface and the quota-error taxonomy;
// the HTTP transport and the retry-delay heuristic live here.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// GenRequest carries one generation call.
type GenRequest struct {
	Model           string
	Prompt          string
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
	SearchGrounding bool // enable provider-side search grounding
}

// Client is a text-completion provider.
type Client interface {
	// Generate returns the completion text for req. Quota exhaustion is
	// reported as *QuotaError; any other error is fatal to this attempt only.
	Generate(ctx context.Context, req GenRequest) (string, error)
}

// QuotaError signals provider quota exhaustion. Payload keeps the raw error
// body so a RetryHint can extract the provider-suggested delay.
type QuotaError struct {
	Payload string
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("provider quota exhausted: %s", truncate(e.Payload, 120))
}

// IsQuota reports whether err is (or wraps) a QuotaError.
func IsQuota(err error) bool {
	var q *QuotaError
	return errors.As(err, &q)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
