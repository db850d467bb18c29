package rating

import (
	"errors"
	"fmt"
	"strings"

	"github.com/energylabel/elex/internal/models"
)

var (
	// ErrIndexUndefined is returned when an index cannot be computed because
	// the reference value (or the measurement itself) cannot be normalised.
	ErrIndexUndefined = errors.New("index undefined")

	// ErrNoRatableMetrics is returned by Aggregate when a summary has no rating
	// that can contribute to a compound rating.
	ErrNoRatableMetrics = errors.New("no ratable metrics")

	// ErrInsufficientData is returned by Calibrate for empty or single-valued corpora.
	ErrInsufficientData = errors.New("insufficient data for calibration")

	// ErrConfigValidation is matched by every *ConfigValidationError.
	ErrConfigValidation = errors.New("configuration validation failed")

	ErrInvalidBoundaries = errors.New("invalid boundaries")
	ErrInvalidWeight     = errors.New("invalid weight")
	ErrUnknownMetric     = errors.New("unknown metric")
	ErrUnknownMode       = errors.New("unknown rating mode")
)

// IndexError reports a metric that could not be indexed in an environment.
// Model is empty when the condition applies to every model of the environment.
type IndexError struct {
	Environment string
	Model       string
	Metric      models.MetricID
	Reason      string
}

func (e *IndexError) Error() string {
	where := e.Environment
	if e.Model != "" {
		where = e.Model + "@" + e.Environment
	}
	return fmt.Sprintf("%s: %s for %s: %s", ErrIndexUndefined, e.Metric, where, e.Reason)
}

func (e *IndexError) Unwrap() error { return ErrIndexUndefined }

// CalibrationError reports a metric whose boundaries could not be derived.
type CalibrationError struct {
	Metric models.MetricID
	Size   int
}

func (e *CalibrationError) Error() string {
	return fmt.Sprintf("calibrate %s: %s (%d values)", e.Metric, ErrInsufficientData, e.Size)
}

func (e *CalibrationError) Unwrap() error { return ErrInsufficientData }

// Rejection is one payload entry that was not applied.
type Rejection struct {
	// Metric is the identifier as it appeared in the payload.
	Metric string `json:"metric"`
	Reason string `json:"reason"`
	// Unknown marks identifiers outside the metric catalog. Those are dropped
	// silently for compatibility and do not make an import fail.
	Unknown bool `json:"unknown,omitempty"`
}

// ConfigValidationError enumerates the payload entries rejected during an
// import. The valid subset of the payload has still been applied.
type ConfigValidationError struct {
	Rejected []Rejection
}

func (e *ConfigValidationError) Error() string {
	parts := make([]string, 0, len(e.Rejected))
	for _, r := range e.Rejected {
		parts = append(parts, fmt.Sprintf("%s (%s)", r.Metric, r.Reason))
	}
	return fmt.Sprintf("%s: rejected %s", ErrConfigValidation, strings.Join(parts, ", "))
}

func (e *ConfigValidationError) Is(target error) bool {
	return target == ErrConfigValidation
}

// Metrics returns the rejected identifiers in payload order.
func (e *ConfigValidationError) Metrics() []string {
	out := make([]string, 0, len(e.Rejected))
	for _, r := range e.Rejected {
		out = append(out, r.Metric)
	}
	return out
}
