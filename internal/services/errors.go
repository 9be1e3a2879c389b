package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIO                     = errors.New("io error")
	ErrUnsupportedFormat      = errors.New("unsupported format")
	ErrUnsupportedOrEncrypted = errors.New("unsupported or encrypted content")
	ErrNotImplemented         = errors.New("not implemented")
	ErrExecution              = errors.New("external tool could not be executed")
	ErrEncoding               = errors.New("external tool reported failure")
	ErrValidation             = errors.New("invalid request")
	ErrUnsafeEntry            = errors.New("unsafe archive entry")
)

// Kind is the stable, user-facing name of a failure class.
type Kind string

const (
	KindIO                     Kind = "IoError"
	KindUnsupportedFormat      Kind = "UnsupportedFormat"
	KindUnsupportedOrEncrypted Kind = "UnsupportedOrEncrypted"
	KindNotImplemented         Kind = "NotImplemented"
	KindExecution              Kind = "ExecutionError"
	KindEncoding               Kind = "EncodingError"
	KindValidation             Kind = "ValidationError"
	KindUnsafeEntry            Kind = "UnsafeEntry"
	KindInternal               Kind = "InternalError"
)

var markerKinds = []struct {
	marker error
	kind   Kind
}{
	{ErrIO, KindIO},
	{ErrUnsupportedFormat, KindUnsupportedFormat},
	{ErrUnsupportedOrEncrypted, KindUnsupportedOrEncrypted},
	{ErrNotImplemented, KindNotImplemented},
	{ErrExecution, KindExecution},
	{ErrEncoding, KindEncoding},
	{ErrValidation, KindValidation},
	{ErrUnsafeEntry, KindUnsafeEntry},
}

// Wrap builds an error message that includes the operation and subject (file
// or tool) while tagging it with the provided marker for later classification.
// The marker should be one of the exported sentinel errors above.
func Wrap(marker error, operation, subject, message string, err error) error {
	detail := buildDetail(operation, subject, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf classifies err by the first marker it wraps. Unmarked errors report
// KindInternal; nil reports an empty kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, mk := range markerKinds {
		if errors.Is(err, mk.marker) {
			return mk.kind
		}
	}
	return KindInternal
}

func buildDetail(operation, subject, message string) string {
	parts := make([]string, 0, 3)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if subject = strings.TrimSpace(subject); subject != "" {
		parts = append(parts, subject)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "operation failed"
	}
	return strings.Join(parts, ": ")
}
