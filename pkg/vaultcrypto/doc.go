// Package vaultcrypto protects vault passwords at rest and generates strong
// random passwords.
//
// Secrets are encrypted with AES-256 in CBC mode with PKCS#7 padding under a
// key derived from a process-wide master key. Each call draws a fresh 16-byte
// IV from crypto/rand and the result is serialized as
//
//	hex(iv) + ":" + hex(ciphertext)
//
// which is the format already stored in the vault table.
//
// # Key derivation
//
// The AES key is the master key material padded with the ASCII digit '0' up
// to 32 bytes, or truncated to 32 bytes when longer. Existing vault entries
// were written with this rule, so it must not change. Moving to an
// authenticated cipher requires an explicit, versioned re-encryption of the
// stored entries.
//
// # Usage
//
//	c, err := vaultcrypto.New(cfg.MasterKey)
//	if err != nil {
//	    // handle error
//	}
//
//	stored, err := c.Encrypt("hunter2")
//	plain, err := c.Decrypt(stored)
//
//	pwd, err := vaultcrypto.GeneratePassword(vaultcrypto.DefaultPasswordLength)
//
// # Error Handling
//
// Failures wrap one of the package sentinels: ErrCrypto when the key or the
// cipher primitive is unusable, ErrDecryption when a stored value cannot be
// read back, ErrInvalidPasswordLength for a bad generator argument. AES-CBC
// carries no authentication tag, so a corrupted ciphertext may fail padding
// checks or may decrypt to different bytes; it never yields the original
// plaintext.
//
// A Cipher is immutable after New returns and is safe for concurrent use.
package vaultcrypto
