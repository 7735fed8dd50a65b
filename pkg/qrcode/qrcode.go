package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent = errors.New("qrcode: content cannot be empty")
	ErrGenerate     = errors.New("qrcode: failed to generate QR code")
)

// DefaultSize is the image edge in pixels used when size is not positive.
const DefaultSize = 256

const dataURIPrefix = "data:image/png;base64,"

// Option configures an Encoder.
type Option func(*Encoder)

// WithSize sets the image edge in pixels. Non-positive values keep the default.
func WithSize(size int) Option {
	return func(e *Encoder) {
		if size > 0 {
			e.size = size
		}
	}
}

// WithRecoveryLevel sets the error correction level.
func WithRecoveryLevel(level skipqrcode.RecoveryLevel) Option {
	return func(e *Encoder) { e.level = level }
}

// Encoder renders QR codes with fixed size and recovery level.
type Encoder struct {
	size  int
	level skipqrcode.RecoveryLevel
}

func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{size: DefaultSize, level: skipqrcode.Medium}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PNG encodes content as a PNG image.
func (e *Encoder) PNG(content string) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	png, err := skipqrcode.Encode(content, e.level, e.size)
	if err != nil {
		return nil, errors.Join(ErrGenerate, err)
	}
	return png, nil
}

// DataURI encodes content as a base64 PNG data URI.
func (e *Encoder) DataURI(content string) (string, error) {
	png, err := e.PNG(content)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}

// DataURI renders content with default settings.
func DataURI(content string) (string, error) {
	return NewEncoder().DataURI(content)
}
