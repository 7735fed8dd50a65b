package vaultcrypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

const separator = ":"

// Cipher encrypts and decrypts vault secrets under a derived master key.
type Cipher struct {
	block   cipher.Block
	entropy io.Reader
}

// Option configures a Cipher.
type Option func(*Cipher)

// WithEntropy replaces crypto/rand as the IV source. Nil readers are ignored.
func WithEntropy(r io.Reader) Option {
	return func(c *Cipher) {
		if r != nil {
			c.entropy = r
		}
	}
}

// New builds a Cipher from raw master key material.
func New(masterKey string, opts ...Option) (*Cipher, error) {
	key, err := DeriveKey(masterKey)
	if err != nil {
		return nil, errors.Join(ErrCrypto, err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrCrypto, err)
	}

	c := &Cipher{
		block:   block,
		entropy: rand.Reader,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromConfig is a shortcut for New(cfg.MasterKey).
func NewFromConfig(cfg Config, opts ...Option) (*Cipher, error) {
	return New(cfg.MasterKey, opts...)
}

// Encrypt returns hex(iv) + ":" + hex(ciphertext) for the given plaintext.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(c.entropy, iv); err != nil {
		return "", errors.Join(ErrCrypto, err)
	}

	padded := pkcs7Pad([]byte(plaintext), c.block.BlockSize())
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + separator + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. The value is split at the first colon.
func (c *Cipher) Decrypt(serialized string) (string, error) {
	ivHex, ctHex, found := strings.Cut(serialized, separator)
	if !found {
		return "", errors.Join(ErrDecryption, ErrMalformedCiphertext)
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return "", errors.Join(ErrDecryption, ErrMalformedCiphertext, err)
	}
	if len(iv) != IVSize {
		return "", errors.Join(ErrDecryption, ErrMalformedCiphertext)
	}

	ciphertext, err := hex.DecodeString(ctHex)
	if err != nil {
		return "", errors.Join(ErrDecryption, ErrMalformedCiphertext, err)
	}
	blockSize := c.block.BlockSize()
	if len(ciphertext) == 0 || len(ciphertext)%blockSize != 0 {
		return "", errors.Join(ErrDecryption, ErrMalformedCiphertext)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, blockSize)
	if err != nil {
		return "", errors.Join(ErrDecryption, err)
	}
	// Stored secrets are UTF-8; anything else means a wrong key or corrupted data.
	if !utf8.Valid(plaintext) {
		return "", errors.Join(ErrDecryption, ErrMalformedCiphertext)
	}

	return string(plaintext), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrInvalidPadding
		}
	}
	return data[:len(data)-n], nil
}
