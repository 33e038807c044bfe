package domain

import "errors"

// ErrUnknownEnum marks failed string-to-enum conversions. Form input enters
// the domain only through the Parse functions, which never default silently.
var ErrUnknownEnum = errors.New("unknown enum value")
