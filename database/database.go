// Package database provides the SQL-backed document drivers.
package database

import (
	"context"
	"time"
)

const maxRetries = 5

// pingWithRetry waits for the server with a linear backoff.
func pingWithRetry(ctx context.Context, ping func(context.Context) error) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i+1) * 2 * time.Second):
			}
		}
	}
	return err
}
