package record

import (
	"errors"
)

var (
	ErrUnknownType = errors.New("unknown record type")
	ErrInvalidData = errors.New("invalid record data")
)
