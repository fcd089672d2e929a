package terminal

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid viewer configuration")
	ErrScreen        = errors.New("terminal screen unavailable")
)
