package shapes

import "errors"

// ErrNotImplemented is returned for shape pairs without a penetration depth.
var ErrNotImplemented = errors.New("not implemented")
