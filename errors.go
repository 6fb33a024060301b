package admin

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeMissingField marks request payloads missing a required field
	TextCodeMissingField = "MISSING_FIELD"
	// TextCodeInvalidRole marks role values outside the recognized set
	TextCodeInvalidRole = "INVALID_ROLE"
	// TextCodeAdminRequired marks admissions rejected for lack of the admin role
	TextCodeAdminRequired = "ADMIN_REQUIRED"
	// TextCodeSessionNotFound marks admissions with no active session
	TextCodeSessionNotFound = "SESSION_NOT_FOUND"
	// TextCodeProfileLookup marks admissions the profile store could not answer
	TextCodeProfileLookup = "PROFILE_LOOKUP_FAILED"
	// TextCodeNoEffect marks updates that reported success but changed zero rows
	TextCodeNoEffect = "UPDATE_NO_EFFECT"
	// TextCodeInvalidCreds marks failed credential exchanges
	TextCodeInvalidCreds = "INVALID_CREDENTIALS"
)

// ErrMissingUserID is returned before any remote call when the target id is absent
var ErrMissingUserID = goerrors.New("missing userId", goerrors.CategoryValidation).
	WithTextCode(TextCodeMissingField).
	WithCode(goerrors.CodeBadRequest)

// ErrMissingRole is returned before any remote call when the new role is absent
var ErrMissingRole = goerrors.New("missing newRole", goerrors.CategoryValidation).
	WithTextCode(TextCodeMissingField).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidRole is returned for role values outside user/admin/moderator
var ErrInvalidRole = goerrors.New("unrecognized role value", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidRole).
	WithCode(goerrors.CodeBadRequest)

// ErrSessionNotFound is the admission failure for a missing or expired session
var ErrSessionNotFound = goerrors.New("no active session", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(goerrors.CodeUnauthorized)

// ErrAdminRequired is the admission failure for authenticated non-admins
var ErrAdminRequired = goerrors.New("admin role required for this surface", goerrors.CategoryAuth).
	WithTextCode(TextCodeAdminRequired).
	WithCode(goerrors.CodeForbidden)

// ErrProfileLookup covers both a missing profile and an unreachable store.
// The ambiguity intentionally resolves to denial, never default admission.
var ErrProfileLookup = goerrors.New("unable to load profile for session subject", goerrors.CategoryAuth).
	WithTextCode(TextCodeProfileLookup).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEffect is returned when the store reported no error but the
// read-after-write returned zero rows. Kept distinct from store errors so
// silent row-level denials stay detectable.
var ErrNoEffect = goerrors.New("update had no effect", goerrors.CategoryConflict).
	WithTextCode(TextCodeNoEffect).
	WithCode(goerrors.CodeConflict)

// ErrRoleUnchanged rejects no-op role submissions at the view level
var ErrRoleUnchanged = goerrors.New("new role equals the current role", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidRole).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the failed credential exchange error
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrConfirmationDeclined reports an operator declining the confirmation
// prompt; no store call was made.
var ErrConfirmationDeclined = goerrors.New("confirmation declined", goerrors.CategoryOperation).
	WithCode(goerrors.CodeBadRequest)
