package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrTemporary      = errors.New("temporary failure")
	ErrTargetNotFound = errors.New("target not found")

	// ErrInsufficientEvidence is the normal outcome of a model pass that could
	// not score enough candidates; callers fall back to the rule tier.
	ErrInsufficientEvidence = errors.New("insufficient evidence")
	ErrBackendDisabled      = errors.New("completion backend disabled")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
