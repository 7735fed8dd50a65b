package vaultcrypto

// Config holds the master key material. It is read once at process start.
type Config struct {
	MasterKey string `env:"VAULT_MASTER_KEY,required"` // Raw key material; padded or truncated to 32 bytes
}
