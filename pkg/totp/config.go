package totp

// Config holds enrollment settings.
type Config struct {
	Issuer          string `env:"TOTP_ISSUER" envDefault:"APP"`           // Issuer shown by authenticator apps
	BackupCodeCount int    `env:"TOTP_BACKUP_CODE_COUNT" envDefault:"10"` // Backup codes issued per enrollment
}
