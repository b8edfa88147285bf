// Package ratelimit enforces the provider's three quota ceilings: requests
// per minute, tokens per minute, and requests per day. Both per-minute
// windows are true sliding windows recomputed on every check; there is no
// background timer. Token figures are caller-supplied estimates, never
// reconciled against provider-reported usage — a documented approximation.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gesher/internal/logging"
)

// ErrDailyLimit is the terminal, non-retryable verdict: the daily request
// ceiling is spent and only the day rollover clears it.
var ErrDailyLimit = errors.New("daily request limit reached")

// ErrTokenEstimate means a single request's token estimate exceeds the
// per-minute ceiling outright; no amount of waiting can admit it.
var ErrTokenEstimate = errors.New("token estimate exceeds per-minute ceiling")

// window is the trailing span of the per-minute quotas.
const window = time.Minute

// waitMargin is added to every computed sleep so the recheck lands strictly
// after the oldest event has left the window.
const waitMargin = time.Second

// Reason classifies a CanRequest verdict.
type Reason int

const (
	ReasonOK Reason = iota
	ReasonPerMinute
	ReasonTokenBudget
	ReasonDaily
)

func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "ok"
	case ReasonPerMinute:
		return "requests_per_minute"
	case ReasonTokenBudget:
		return "tokens_per_minute"
	case ReasonDaily:
		return "requests_per_day"
	}
	return "unknown"
}

// Verdict is the result of an admission check. Wait is only meaningful for
// the per-minute reasons: it is the time until the oldest in-window event
// expires.
type Verdict struct {
	Allowed bool
	Reason  Reason
	Wait    time.Duration
	Detail  string
}

// Status is a read-only snapshot against each ceiling.
type Status struct {
	DailyUsed         int
	DailyLimit        int
	RecentRequests    int
	RequestsPerMinute int
	RecentTokens      int
	TokensPerMinute   int
	CanRequest        bool
}

type tokenEntry struct {
	at     time.Time
	tokens int
}

// Limiter tracks recent request timestamps, recent token costs, and a daily
// counter with a lazily-detected reset boundary. The mutex guards the
// check-then-record sequence, which is not atomic and is race-prone without
// it; the experiment itself runs strictly sequentially.
type Limiter struct {
	mu sync.Mutex

	reqPerMin int
	tokPerMin int
	reqPerDay int

	requests   []time.Time
	tokens     []tokenEntry
	dailyCount int
	dailyReset time.Time

	now    func() time.Time
	logger *slog.Logger
}

// New creates a Limiter with the given ceilings.
func New(reqPerMin, tokPerMin, reqPerDay int) *Limiter {
	return &Limiter{
		reqPerMin:  reqPerMin,
		tokPerMin:  tokPerMin,
		reqPerDay:  reqPerDay,
		dailyReset: time.Now(),
		now:        time.Now,
		logger:     logging.New("ratelimit"),
	}
}

// CanRequest reports whether a request costing estTokens may be admitted now.
// It never blocks and never fails; the daily verdict wins over per-minute
// state.
func (l *Limiter) CanRequest(estTokens int) Verdict {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.check(estTokens)
}

// check assumes l.mu is held.
func (l *Limiter) check(estTokens int) Verdict {
	now := l.now()
	l.rollover(now)
	l.prune(now)

	if l.dailyCount >= l.reqPerDay {
		return Verdict{
			Reason: ReasonDaily,
			Detail: fmt.Sprintf("daily limit reached (%d requests)", l.reqPerDay),
		}
	}

	if len(l.requests) >= l.reqPerMin {
		wait := window - now.Sub(l.requests[0])
		if wait < 0 {
			wait = 0
		}
		return Verdict{
			Reason: ReasonPerMinute,
			Wait:   wait,
			Detail: fmt.Sprintf("request window full (%d/min), wait %s", l.reqPerMin, wait.Round(time.Second)),
		}
	}

	recent := 0
	for _, e := range l.tokens {
		recent += e.tokens
	}
	if recent+estTokens > l.tokPerMin {
		wait := time.Duration(0)
		if len(l.tokens) > 0 {
			wait = window - now.Sub(l.tokens[0].at)
			if wait < 0 {
				wait = 0
			}
		}
		return Verdict{
			Reason: ReasonTokenBudget,
			Wait:   wait,
			Detail: fmt.Sprintf("token window would exceed %d (%d in flight)", l.tokPerMin, recent+estTokens),
		}
	}

	return Verdict{Allowed: true, Reason: ReasonOK}
}

// Wait blocks until a request costing estTokens may be admitted. Per-minute
// blocks sleep until the oldest in-window event expires plus a safety margin,
// then recheck. A daily block returns an error wrapping ErrDailyLimit; an
// estimate above the token ceiling returns an error wrapping ErrTokenEstimate
// without blocking.
func (l *Limiter) Wait(ctx context.Context, estTokens int) error {
	if estTokens > l.tokPerMin {
		return fmt.Errorf("estimate %d against ceiling %d: %w", estTokens, l.tokPerMin, ErrTokenEstimate)
	}
	for {
		v := l.CanRequest(estTokens)
		if v.Allowed {
			return nil
		}
		if v.Reason == ReasonDaily {
			return fmt.Errorf("%s: %w", v.Detail, ErrDailyLimit)
		}

		l.logger.Info("rate limited", "reason", v.Reason.String(), "wait", v.Wait+waitMargin)
		if err := sleep(ctx, v.Wait+waitMargin); err != nil {
			return err
		}
	}
}

// Record logs an admitted request. Call exactly once per admitted request,
// whether or not the provider call later succeeds — the attempt consumed
// quota either way.
func (l *Limiter) Record(tokensUsed int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.rollover(now)
	l.requests = append(l.requests, now)
	l.tokens = append(l.tokens, tokenEntry{at: now, tokens: tokensUsed})
	l.dailyCount++

	if l.dailyCount%10 == 0 {
		l.logger.Info("daily quota progress", "used", l.dailyCount, "limit", l.reqPerDay)
	}
}

// Status returns a snapshot of all three ceilings.
func (l *Limiter) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.rollover(now)
	l.prune(now)

	recent := 0
	for _, e := range l.tokens {
		recent += e.tokens
	}
	return Status{
		DailyUsed:         l.dailyCount,
		DailyLimit:        l.reqPerDay,
		RecentRequests:    len(l.requests),
		RequestsPerMinute: l.reqPerMin,
		RecentTokens:      recent,
		TokensPerMinute:   l.tokPerMin,
		CanRequest:        l.check(0).Allowed,
	}
}

// rollover resets the daily counter when more than a calendar day has passed
// since the last reset. Detected lazily on the next call; no timer.
func (l *Limiter) rollover(now time.Time) {
	if now.Sub(l.dailyReset) > 24*time.Hour {
		l.logger.Info("daily limit reset", "at", now)
		l.dailyCount = 0
		l.dailyReset = now
	}
}

// prune drops window entries older than one minute. Assumes l.mu is held.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-window)
	i := 0
	for i < len(l.requests) && !l.requests[i].After(cutoff) {
		i++
	}
	l.requests = l.requests[i:]

	j := 0
	for j < len(l.tokens) && !l.tokens[j].at.After(cutoff) {
		j++
	}
	l.tokens = l.tokens[j:]
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
