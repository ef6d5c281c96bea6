package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource's current state forbids the
// requested change.
var ErrConflict = errors.New("conflicting state")

// ErrInternal indicates an unexpected failure inside the engine or the store.
var ErrInternal = errors.New("internal error")

// ErrVersionConflict indicates that a compare-and-swap update matched zero
// rows: the record's status or version changed underneath the caller. This is
// a contention signal, distinct from not-found and from validation failures;
// callers re-read state to classify the precise cause.
var ErrVersionConflict = errors.New("version conflict")
