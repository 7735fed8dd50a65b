package vaultcrypto

import "bytes"

const (
	KeySize = 32 // AES-256
	IVSize  = 16 // AES block size

	keyPadByte = '0'
)

// DeriveKey turns master key material into a 32-byte AES key: shorter material
// is right-padded with '0', longer material is truncated.
func DeriveKey(material string) ([]byte, error) {
	if material == "" {
		return nil, ErrMasterKeyNotSet
	}

	key := []byte(material)
	if len(key) < KeySize {
		key = append(key, bytes.Repeat([]byte{keyPadByte}, KeySize-len(key))...)
	}
	return key[:KeySize], nil
}

// GenerateMasterKey returns KeySize random characters from PasswordCharset,
// so DeriveKey uses them unchanged and every key byte carries entropy.
func GenerateMasterKey() (string, error) {
	return GeneratePassword(KeySize)
}
