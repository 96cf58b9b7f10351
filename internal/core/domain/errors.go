package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrColumnNotFound     = errors.New("column not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrTemporary          = errors.New("temporary failure")

	// Strategy-level failures. These never escape the extraction pipeline:
	// the chain converts them into confidence-0 results at the strategy
	// boundary.
	ErrFetch            = errors.New("fetch failed")
	ErrInvalidFormat    = errors.New("invalid file format")
	ErrInsufficientText = errors.New("insufficient embedded text")
	ErrServiceResponse  = errors.New("malformed inference response")
	ErrServiceTimeout   = errors.New("inference timeout")
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
