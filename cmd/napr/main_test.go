package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholdFailureError(t *testing.T) {
	err := &ThresholdFailureError{Message: "2 threshold(s) missed"}
	assert.Equal(t, "2 threshold(s) missed", err.Error())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"threshold failure", &ThresholdFailureError{Message: "x"}, ExitThresholdFailed},
		{"wrapped threshold failure", fmt.Errorf("eval: %w", &ThresholdFailureError{Message: "x"}), ExitThresholdFailed},
		{"joined threshold failure", errors.Join(&ThresholdFailureError{Message: "x"}, errors.New("more")), ExitThresholdFailed},
		{"regular error", errors.New("config error"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
