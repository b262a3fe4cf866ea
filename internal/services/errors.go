package services

import "errors"

// Sentinel errors returned by the services layer. Handlers translate these
// into HTTP status codes with errors.Is.
var (
	ErrRecordNotFound    = errors.New("daily record not found")
	ErrDuplicateRecord   = errors.New("a record already exists for this site and date")
	ErrSiteNotFound      = errors.New("site not found")
	ErrSiteInactive      = errors.New("site is not active")
	ErrInvalidWorkerType = errors.New("unknown worker type for this site")
	ErrNegativeValue     = errors.New("worker counts and payment amounts cannot be negative")
	ErrFutureDate        = errors.New("record date cannot be in the future")
	ErrUnauthorized      = errors.New("not authorized for this site")
	ErrNotSameDay        = errors.New("corrections are only allowed on the record date")
	ErrRecordLocked      = errors.New("record is locked")
	ErrAlreadyLocked     = errors.New("record is already locked")
	ErrMissingReason     = errors.New("correction reason is required")
	ErrEmptyPatch        = errors.New("correction contains no changes")
	ErrWorkerTypeExists  = errors.New("worker type already exists for this site")
)
