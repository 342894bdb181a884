// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// ErrInternal indicates internal server error. It hides store failures from clients.
var ErrInternal = errors.New("internal")
