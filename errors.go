package xmd

import "errors"

var (
	ErrFormatMismatch     = errors.New("xmd: format mismatch")
	ErrUnsupportedVersion = errors.New("xmd: unsupported version")
	ErrTruncatedData      = errors.New("xmd: truncated data")
	ErrSizeOverflow       = errors.New("xmd: size overflow")
	ErrIO                 = errors.New("xmd: i/o failure")
	ErrNaming             = errors.New("xmd: naming failure")
	ErrLimitExceeded      = errors.New("xmd: limit exceeded")
)
