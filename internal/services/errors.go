package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
	ErrNavigation    = errors.New("navigation error")
	ErrTimeout       = errors.New("timeout")
	ErrNotFound      = errors.New("not found")
	ErrStorage       = errors.New("storage error")
	ErrExternalTool  = errors.New("external service error")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorHint returns a short operator-facing next step for a classified error.
func ErrorHint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrValidation):
		return "check the config file and input workbook"
	case errors.Is(err, ErrTimeout):
		return "page did not render in time; raise site.wait_timeout_seconds or retry later"
	case errors.Is(err, ErrNavigation):
		return "site unreachable or blocking requests; check network and site.base_url"
	case errors.Is(err, ErrStorage):
		return "check free space and permissions for paths.output_dir"
	case errors.Is(err, ErrExternalTool):
		return "check credentials for the external service"
	default:
		return "check logs for details"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
