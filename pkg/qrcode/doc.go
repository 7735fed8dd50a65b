// Package qrcode renders otpauth enrollment URIs as PNG QR codes so
// authenticator apps can scan them during two-factor setup.
//
// PNG returns raw image bytes; DataURI returns a data:image/png;base64 string
// suitable for returning to API clients that embed it in an <img> tag.
package qrcode
