package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentRead   = errors.New("document read failed")
	ErrClassification = errors.New("classification failed")
	ErrRetrieval      = errors.New("evidence retrieval failed")
	ErrAugmentation   = errors.New("language-model augmentation failed")
	ErrAnnotation     = errors.New("annotation failed")
	ErrPersistence    = errors.New("artifact persistence failed")
	ErrInvalidInput   = errors.New("invalid input")
	ErrTemporary      = errors.New("temporary failure")
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
