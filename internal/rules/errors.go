package rules

import "errors"

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownSection  = errors.New("unknown section")
)
