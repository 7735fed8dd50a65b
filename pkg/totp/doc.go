// Package totp implements time-based one-time passwords (RFC 6238) together with
// the enrollment artifacts a two-factor flow needs: shared secrets, single-use
// backup codes and otpauth:// URIs for authenticator apps.
//
// Codes are 6 digits, HMAC-SHA1, 30-second step. Verification accepts the
// previous, current and next window to tolerate ±30 seconds of clock drift
// between the user's device and the server.
//
// # Architecture
//
//   • otp.go – secret generation, HOTP (RFC 4226) and TOTP code calculation and
//     verification (GenerateSecret, GenerateHOTP, GenerateCode, VerifyCode).
//
//   • backup.go – backup-code generation and the BackupCodes set with
//     case-insensitive lookup and removal.
//
//   • uri.go – otpauth:// enrollment URI construction (BuildEnrollmentURI).
//
//   • authenticator.go – Authenticator, a small facade used by the two-factor
//     service: StartEnrollment, ConfirmEnrollment, VerifyLoginSecondFactor and
//     VerifyAndConsumeBackupCode. Its clock, issuer and backup code count are
//     configurable through options.
//
// Secrets are 20 random bytes encoded with standard base64. Every function is
// a pure function of its arguments, the clock and crypto/rand; nothing here
// touches storage. Persisting the secret and the remaining backup codes, and
// making backup-code consumption atomic, is the caller's job.
//
// # Usage
//
//	auth := totp.NewAuthenticator(totp.WithIssuer("Acme"))
//
//	enrollment, err := auth.StartEnrollment("alice@example.com")
//	// persist enrollment.Secret, show enrollment.EnrollmentURI as a QR code
//
//	ok, err := auth.ConfirmEnrollment("123456", enrollment.Secret)
//
//	res := auth.VerifyAndConsumeBackupCode("a1b2c3d4", storedCodes)
//	if res.Valid {
//	    // persist res.RemainingCodes
//	}
//
// # Error Handling
//
// A wrong or malformed code is not an error: VerifyCode returns false. A secret
// that is not valid base64 fails with ErrInvalidSecret. Never log secrets or
// backup codes.
//
// # See Also
//
//   • RFC 4226 – HMAC-Based One-Time Password (HOTP) Algorithm
//   • RFC 6238 – Time-Based One-Time Password (TOTP) Algorithm
package totp
