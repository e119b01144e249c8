package utils

import (
	"log/slog"
	"time"
)

// Timed logs message before running fn and again with the elapsed time once
// fn returns. fn's error is returned unchanged.
func Timed(message string, fn func() error) error {
	slog.Info(message + "...")
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	if err != nil {
		slog.Info(message+" failed", "elapsed", elapsed, "error", err)
		return err
	}
	slog.Info(message+" finished", "elapsed", elapsed)
	return nil
}
