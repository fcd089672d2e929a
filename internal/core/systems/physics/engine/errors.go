package engine

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid engine config")
	ErrNegativeSteps = errors.New("step count must not be negative")
)
