package scene

import "errors"

var (
	ErrDecode        = errors.New("decode scene")
	ErrUnknownScene  = errors.New("unknown builtin scene")
	ErrNoBodies      = errors.New("scene has no bodies")
	ErrDuplicateName = errors.New("duplicate body name")
	ErrUnknownType   = errors.New("unknown type")
	ErrInvalidShape  = errors.New("invalid shape")
	ErrNonConvex     = errors.New("polygon is not convex")
	ErrInvalidEffect = errors.New("invalid effect")
	ErrInvalidEngine = errors.New("invalid engine overrides")
)
