package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/preston-bernstein/pickem-client/internal/domain/games"
	"github.com/preston-bernstein/pickem-client/internal/domain/leaderboard"
	"github.com/preston-bernstein/pickem-client/internal/domain/picks"
	"github.com/preston-bernstein/pickem-client/internal/domain/users"
	"github.com/preston-bernstein/pickem-client/internal/domain/weeks"
	"github.com/preston-bernstein/pickem-client/internal/logging"
	"github.com/preston-bernstein/pickem-client/internal/metrics"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 200 * time.Millisecond
)

// RetryingReader wraps the read-only endpoints of a Client with exponential
// backoff. Only transport failures and 5xx responses are retried; writes are
// not exposed so a pick change is never sent twice.
type RetryingReader struct {
	inner       *Client
	logger      *slog.Logger
	metrics     *metrics.Recorder
	maxAttempts int
	newBackOff  func() backoff.BackOff
}

// NewRetryingReader wraps client. If maxAttempts/initial are <= 0, defaults are used.
func NewRetryingReader(client *Client, logger *slog.Logger, recorder *metrics.Recorder, maxAttempts int, initial time.Duration) *RetryingReader {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if initial <= 0 {
		initial = defaultRetryBackoff
	}
	return &RetryingReader{
		inner:       client,
		logger:      logger,
		metrics:     recorder,
		maxAttempts: maxAttempts,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initial
			b.MaxElapsedTime = 0
			return b
		},
	}
}

func (r *RetryingReader) Weeks(ctx context.Context) ([]weeks.Week, error) {
	return withRetry(ctx, r, "GET /weeks", func() ([]weeks.Week, error) {
		return r.inner.Weeks(ctx)
	})
}

func (r *RetryingReader) WeekGames(ctx context.Context, weekID int64) ([]games.Game, error) {
	return withRetry(ctx, r, "GET /weeks/{id}/games", func() ([]games.Game, error) {
		return r.inner.WeekGames(ctx, weekID)
	})
}

func (r *RetryingReader) MyPicks(ctx context.Context, token string) ([]picks.Pick, error) {
	return withRetry(ctx, r, "GET /picks/me", func() ([]picks.Pick, error) {
		return r.inner.MyPicks(ctx, token)
	})
}

func (r *RetryingReader) UserPicks(ctx context.Context, token string, userID int64) ([]picks.Pick, error) {
	return withRetry(ctx, r, "GET /picks/user/{id}", func() ([]picks.Pick, error) {
		return r.inner.UserPicks(ctx, token, userID)
	})
}

func (r *RetryingReader) WeekUsers(ctx context.Context, token string, weekID int64) ([]users.User, error) {
	return withRetry(ctx, r, "GET /picks/week/{id}/users", func() ([]users.User, error) {
		return r.inner.WeekUsers(ctx, token, weekID)
	})
}

func (r *RetryingReader) Leaderboard(ctx context.Context, weekID int64) ([]leaderboard.Entry, error) {
	return withRetry(ctx, r, "GET /leaderboard", func() ([]leaderboard.Entry, error) {
		return r.inner.Leaderboard(ctx, weekID)
	})
}

func withRetry[T any](ctx context.Context, r *RetryingReader, label string, fn func() (T, error)) (T, error) {
	var result T
	attempt := 0
	op := func() error {
		attempt++
		out, err := fn()
		if err == nil {
			result = out
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(r.maxAttempts-1)), ctx)
	notify := func(err error, delay time.Duration) {
		r.metrics.RecordRetry(label)
		logging.WarnContext(ctx, r.logger, "api read retry",
			logging.FieldEndpoint, label,
			"attempt", attempt,
			"max_attempts", r.maxAttempts,
			"delay_ms", delay.Milliseconds(),
			"error", err,
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if IsTransport(err) {
		return true
	}
	return StatusCode(err) >= http.StatusInternalServerError
}
