// Package logger builds the application's *slog.Logger.
//
// New creates a logger configured by functional options: output format (JSON
// for production, text for development), minimum level, static attributes and
// ContextExtractor callbacks that pull request-scoped values such as the
// request id or the authenticated user id out of context.Context on every log
// call. A record that already carries the same key keeps the caller's value.
//
// Every logger created by New redacts attributes whose key names secret
// material (password, secret, code, backup_codes, token, master_key and their
// variants). Vault passwords, TOTP secrets and backup codes must never reach
// log output; redaction is the safety net, not a licence to log them.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "lifevault"),
//	    logger.WithContextExtractors(requestIDExtractor),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "two-factor enabled", logger.UserID(userID))
//
// Helper constructors in attr.go (Error, UserID, EntryID, Event, Component)
// keep attribute names consistent across packages. Error returns an empty
// attribute for a nil error, so it can be passed unconditionally.
package logger
