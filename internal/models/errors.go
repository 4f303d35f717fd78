package models

import (
	"errors"
	"fmt"
)

// Error kinds returned by stores and services. Handlers translate them into
// HTTP statuses; nothing below the handler layer knows about HTTP.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrBadRequest      = errors.New("bad request")
)

var (
	ErrMissingToken     = fmt.Errorf("%w: authorization header required", ErrUnauthenticated)
	ErrTokenExpired     = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrTokenInvalid     = fmt.Errorf("%w: token invalid", ErrUnauthenticated)
	ErrSessionNotFound  = fmt.Errorf("%w: session expired, please login again", ErrUnauthenticated)
	ErrBadCredentials   = fmt.Errorf("%w: email or password incorrect", ErrBadRequest)
	ErrAccountDisabled  = fmt.Errorf("%w: account disabled", ErrForbidden)
	ErrInsufficientRole = fmt.Errorf("%w: insufficient role", ErrForbidden)
	ErrInsufficientPerm = fmt.Errorf("%w: insufficient permission", ErrForbidden)
	ErrCaptchaExpired   = fmt.Errorf("%w: captcha expired", ErrBadRequest)
	ErrCaptchaMismatch  = fmt.Errorf("%w: captcha incorrect", ErrBadRequest)
	ErrEmailTaken       = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrPermTaken        = fmt.Errorf("%w: permission key already in use", ErrConflict)
	ErrMenuCycle        = fmt.Errorf("%w: menu parent would create a cycle", ErrBadRequest)
)
