package mqnet

import (
	"time"

	"github.com/jpillora/backoff"
	"github.com/sammck-go/logger"
)

// DialConfig controls the retry behavior of the dialers.
type DialConfig struct {
	// MaxRetryCount limits connection attempts; negative means retry
	// forever, zero means a single attempt.
	MaxRetryCount int

	// MaxRetryInterval caps the exponential backoff delay between attempts.
	// Values under one second are raised to 30 seconds.
	MaxRetryInterval time.Duration
}

func (c DialConfig) normalized() DialConfig {
	if c.MaxRetryInterval < time.Second {
		c.MaxRetryInterval = 30 * time.Second
	}
	return c
}

// dialWithRetry runs attempt until it succeeds or the retry budget is
// exhausted, sleeping with exponential backoff between failures.
func dialWithRetry[T any](log logger.Logger, cfg DialConfig, what string, attempt func() (T, error)) (T, error) {
	cfg = cfg.normalized()
	b := &backoff.Backoff{Max: cfg.MaxRetryInterval}
	for {
		v, err := attempt()
		if err == nil {
			return v, nil
		}
		tries := int(b.Attempt())
		if cfg.MaxRetryCount >= 0 && tries >= cfg.MaxRetryCount {
			log.DLogf("giving up dialing %s after %d attempts: %s", what, tries+1, err)
			var zero T
			return zero, err
		}
		d := b.Duration()
		log.ILogf("connection to %s failed (%s); retrying in %s", what, err, d)
		time.Sleep(d)
	}
}
