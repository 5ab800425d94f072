package prismic

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 300 * time.Millisecond,
		MaxInterval:     3 * time.Second,
		Multiplier:      1.5,
	}
}

// retry runs operation until it succeeds, returns a backoff.Permanent
// error, the retries are used up or ctx is done.
func retry(ctx context.Context, cfg RetryConfig, operationName string, operation func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval
	bo.Multiplier = cfg.Multiplier
	bo.Reset()

	retryable := backoff.WithContext(backoff.WithMaxRetries(bo, cfg.MaxRetries), ctx)

	notify := func(err error, next time.Duration) {
		log.Warnf(
			"prismic: %s failed, retrying in %s: %s",
			operationName, next.Round(time.Millisecond), err,
		)
	}

	return backoff.RetryNotify(operation, retryable, notify)
}
