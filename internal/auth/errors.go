package auth

import "errors"

// Failures of the auth lifecycle operations. All of them fail closed and
// map to 4xx responses in the handler layer.
var (
	// ErrDuplicateEmail is returned by Register when the email is taken.
	// The same error covers a pre-existing row and a lost insert race.
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrInvalidCredentials is returned by Login for an unknown email and
	// for a wrong password alike, so the two are indistinguishable.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrTokenNotFound: the presented refresh token has no stored row.
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrTokenInactive: the stored row exists but was rotated or revoked.
	ErrTokenInactive = errors.New("refresh token is not active")

	// ErrTokenAlreadyRevoked: Revoke called on an inactive token.
	ErrTokenAlreadyRevoked = errors.New("refresh token is already revoked")

	// ErrUnauthenticated: no usable access token on the request, or the
	// token's subject no longer exists. Deliberately unspecific.
	ErrUnauthenticated = errors.New("could not validate credentials")
)
