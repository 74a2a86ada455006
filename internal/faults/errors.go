package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrOrdering      = errors.New("ordering violation")
	ErrSource        = errors.New("feature source error")
	ErrStore         = errors.New("feature store error")
	// ErrLane tags a failure confined to one sample-rate lane.
	ErrLane          = errors.New("rate lane failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker. The marker should be one of the exported
// sentinel errors above; a nil marker defaults to ErrConfiguration.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrConfiguration
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short classification label for logging.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrOrdering):
		return "ordering"
	case errors.Is(err, ErrSource):
		return "source"
	case errors.Is(err, ErrStore):
		return "store"
	case errors.Is(err, ErrLane):
		return "lane"
	default:
		return "unknown"
	}
}

// Fatal reports whether err must abort the whole stream. Only failures tagged
// with ErrLane stay confined to their lane; a joined error is fatal as soon as
// one of its members is.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, member := range joined.Unwrap() {
			if Fatal(member) {
				return true
			}
		}
		return false
	}
	return !errors.Is(err, ErrLane)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "detection failure"
	}
	return strings.Join(parts, ": ")
}
