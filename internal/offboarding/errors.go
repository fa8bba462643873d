package offboarding

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a lease or related record is missing.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a lease is already terminated with a
	// different reason or date, or a write-once record already exists.
	ErrConflict = errors.New("conflict")
	// ErrMissingOwner is returned when a property has no billing owner.
	ErrMissingOwner = errors.New("property has no owner")
	// ErrTransientStore wraps store I/O failures that are safe to retry.
	ErrTransientStore = errors.New("transient store error")
	// ErrValidation is returned for malformed requests.
	ErrValidation = errors.New("validation error")
)

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientStore)
}

// classifyStoreError wraps driver errors that indicate a busy or timed-out
// database as ErrTransientStore. Other errors pass through unchanged.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTransientStore) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrTransientStore, err)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "database table is locked") {
		return errors.Join(ErrTransientStore, err)
	}
	return err
}
