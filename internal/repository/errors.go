// Sentinel errors shared across repositories. Handlers and the auth
// service translate these into HTTP status codes; raw driver errors are
// never passed through to clients.
package repository

import "errors"

// ErrEmailExists is returned when an insert or update would violate the
// unique index on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when a lookup by id or email matches no row.
var ErrUserNotFound = errors.New("user not found")

// ErrTokenNotFound is returned when no refresh-token row matches the
// presented token string.
var ErrTokenNotFound = errors.New("refresh token not found")

// ErrPhotoNotFound is returned when a photo id matches no row.
var ErrPhotoNotFound = errors.New("photo not found")

// ErrLinkNotFound is returned when a social-link id matches no row.
var ErrLinkNotFound = errors.New("social link not found")
