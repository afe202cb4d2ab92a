package model

import "errors"

var (
	// ErrProfileNotFound reports a mutation aimed at a profile the current
	// view does not hold. No remote write is attempted.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrSettingsNotFound reports that the singleton settings document does
	// not exist yet. Absence means "no admins known", never an implicit grant.
	ErrSettingsNotFound = errors.New("team settings not found")

	// ErrValidation wraps locally rejected input. Callers must not retry
	// without changing the input.
	ErrValidation = errors.New("validation rejected")

	// ErrNotAdmin reports that the acting identity is not in the admin set.
	// This check is advisory: real enforcement lives in the document store's
	// access rules.
	ErrNotAdmin = errors.New("identity is not an administrator")

	// ErrLastAdmin reports a refused self-removal by the sole remaining
	// administrator.
	ErrLastAdmin = errors.New("cannot remove the last administrator")
)
