// Package twofactor drives the per-user TOTP lifecycle.
//
// A user is Disabled (no secret), Pending (secret stored, awaiting the first
// code) or Enabled (secret and backup codes active). Enable moves Disabled or
// Pending to Pending, Confirm moves Pending to Enabled, Disable returns either
// to Disabled. VerifyLogin, UseBackupCode and RegenerateBackupCodes require
// Enabled.
//
// Every operation that checks a code is throttled per user through a
// ratelimiter.Limiter and writes a security event through audit.Recorder.
// Backup codes issued at enrollment wait in a store.PendingStore until
// Confirm; consumption of a backup code is a compare-and-swap on the stored
// version so a code can never be spent twice.
package twofactor
