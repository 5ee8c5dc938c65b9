// Package logging provides structured logging for projctl.
//
// # Overview
//
// The package wraps Zap with:
//   - Custom Trace level (-2, below Debug) used for HTTP payloads
//   - Stderr and optional JSON file output
//   - Automatic context field injection (command, user.id)
//   - Secret redaction by field name and value pattern
//
// Stdout is left alone so that command output can be piped.
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	ctx = logging.WithLogger(ctx, logger)
//	ctx = logging.WithCommand(ctx, "user resolve")
//	logging.FromContext(ctx).Info(ctx, "user resolved", zap.String("user_id", id))
//
// # Configuration Precedence
//
//  1. Defaults (NewDefaultConfig)
//  2. File (~/.config/projctl/config.yaml)
//  3. Environment variables (PROJCTL_LOGGING_*)
//  4. Command-line flags (--log-level, --log-format, --log-file)
//
// # Secret Redaction
//
// API tokens are held as config.Secret and logged through Secret, which
// prints only the length. The encoder additionally redacts any field whose
// key is listed in RedactionConfig.Fields and any value matching one of
// RedactionConfig.Patterns.
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	tl.Info(ctx, "test message", zap.String("key", "value"))
//	tl.AssertLogged(t, zapcore.InfoLevel, "test message")
//	tl.AssertNoSecrets(t)
package logging
