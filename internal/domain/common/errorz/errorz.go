package errorz

import "errors"

var (
	ErrEncoding      = errors.New("content cannot be encoded as a QR code")
	ErrLogoLoad      = errors.New("logo image cannot be loaded")
	ErrConfigParse   = errors.New("history file is malformed")
	ErrIO            = errors.New("history file cannot be written")
	ErrInvalidConfig = errors.New("invalid qr configuration")
	ErrHistoryIndex  = errors.New("history index out of range")
)
