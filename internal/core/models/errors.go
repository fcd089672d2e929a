package models

import "errors"

var (
	ErrInvalidMass      = errors.New("mass must be positive")
	ErrNonFiniteState   = errors.New("position and velocity must be finite")
	ErrNilShape         = errors.New("collision shape has no shape")
	ErrNilEffect        = errors.New("global effect is nil")
	ErrInvalidNormal    = errors.New("plane normal must be a non-zero finite vector")
	ErrUnknownComponent = errors.New("unknown collision component")
)
