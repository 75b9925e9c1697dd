package entity

import "image/color"

// QRRequest is everything the shell gathers before asking for a QR image.
// An empty LogoPath means "no logo".
type QRRequest struct {
	Content    string
	LogoPath   string
	Foreground color.Color
	Background color.Color
	BaseWidth  int
	LogoScale  float64
}
