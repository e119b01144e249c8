package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess         = 0 // All thresholds met
	ExitThresholdFailed = 1 // One or more models missed a threshold
	ExitError           = 2 // Configuration or runtime error
)

// ThresholdFailureError indicates that the experiment ran successfully,
// but one or more models scored below a configured minimum.
type ThresholdFailureError struct {
	Message string
}

func (e *ThresholdFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var thresholdErr *ThresholdFailureError
	if errors.As(err, &thresholdErr) {
		return ExitThresholdFailed
	}
	return ExitError
}
