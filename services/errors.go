package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is the AuthError case: no usable session identity.
	ErrUnauthenticated = errors.New("authentication required")
	ErrNotFound        = errors.New("image not found")
)

// ValidationError reports bad input. Nothing has been written when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StorageError wraps an object store failure. Op is upload, read or remove.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// MetadataError wraps a metadata table failure. Op is insert, select, update or delete.
type MetadataError struct {
	Op  string
	Err error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("metadata %s failed: %v", e.Op, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// AnnotationError is a failed analysis; the record is left as it was.
type AnnotationError struct {
	Reason string
	Err    error
}

func (e *AnnotationError) Error() string {
	return fmt.Sprintf("annotation %s failed: %v", e.Reason, e.Err)
}

func (e *AnnotationError) Unwrap() error { return e.Err }
