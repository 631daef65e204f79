package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Dialer opens and verifies a backend connection.
type Dialer func(ctx context.Context) (Store, error)

// ConnectWithRetry calls dial until it succeeds, maxAttempts is exhausted or
// ctx is cancelled. It is meant for process startup only; request paths never
// retry.
func ConnectWithRetry(ctx context.Context, dial Dialer, maxAttempts int, delay time.Duration, logger *logrus.Logger) (Store, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		logger.WithField("attempt", attempt).Info("Connecting to entity store")

		var s Store
		s, err = dial(ctx)
		if err == nil {
			logger.WithField("attempt", attempt).Info("Connected to entity store")
			return s, nil
		}

		logger.WithError(err).WithField("attempt", attempt).Error("Entity store connection failed")
		if attempt == maxAttempts {
			break
		}

		logger.Infof("Waiting %s before retrying", delay)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect aborted: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", maxAttempts, err)
}
