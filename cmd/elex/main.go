package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // Every rated model met the threshold
	ExitRatingBelow = 1 // One or more models rated worse than --fail-below
	ExitError       = 2 // Configuration or runtime error
)

// RatingBelowThresholdError indicates that rating succeeded but one or more
// models were rated worse than the requested threshold.
type RatingBelowThresholdError struct {
	Message string
}

func (e *RatingBelowThresholdError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var belowErr *RatingBelowThresholdError
		if errors.As(err, &belowErr) {
			os.Exit(ExitRatingBelow)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
