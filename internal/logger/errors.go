package logger

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrAppNameIsEmpty is returned when Log.AppName is missing; it tags every log line.
	ErrAppNameIsEmpty = errors.New("log: AppName is required")

	// ErrServiceNameIsEmpty is returned when Log.ServiceName is missing; it labels the log metrics.
	ErrServiceNameIsEmpty = errors.New("log: ServiceName is required")
)

// ErrorHandler reports events zerolog failed to write. It must not log through zerolog itself.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "logger: dropped event: %v\n", err)
}
