// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to operate on a resource owned by someone else, while
// ErrMuseumNotFound signals that a referenced museum does not exist.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrMuseumNotFound is returned when no museum matches the requested
// identifier. Handlers should translate this into an HTTP 404.
var ErrMuseumNotFound = errors.New("museum not found")

// ErrBookingNotFound is returned when no booking matches the requested
// reference. Handlers should translate this into an HTTP 404.
var ErrBookingNotFound = errors.New("booking not found")

// ErrUserNotFound is returned when no user matches the requested
// identifier or identity-provider ID.
var ErrUserNotFound = errors.New("user not found")

// ErrSectionMismatch is returned when a booking request names a section
// that does not belong to the museum being booked. Handlers should
// translate this into an HTTP 400.
var ErrSectionMismatch = errors.New("section does not belong to museum")
