package contracts

import "errors"

// Sentinel errors. Callers wrap them with context and match with errors.Is.
var (
	// ErrIO: input file or model artifact missing or unreadable
	ErrIO = errors.New("io error")
	// ErrFormat: schema mismatch in the input file
	ErrFormat = errors.New("format error")
	// ErrModelLoad: model artifact malformed or incompatible
	ErrModelLoad = errors.New("model load error")
	// ErrInvalidInput: caller-supplied value out of range
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound: unknown district, gender or view
	ErrNotFound = errors.New("not found")
)
