// Package logging provides structured logging driven by the scoped logging
// context.
//
// # Overview
//
// Logging package wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Dual output (stdout + OpenTelemetry)
//   - Scope tags and trace correlation injected from context
//   - Forced logging from scope level maps
//   - Secret redaction at the encoder
//   - Level-aware sampling (errors and forced entries never sampled)
//
// # Usage
//
// Create logger from config:
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, otelProvider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
// Log inside a scope:
//
//	err := logctx.NewContext(logctx.API()).
//	    WithTags(tags.Of("request_id", "r-42")).
//	    WithLogLevelMap(levelmap.NewBuilder().Add(zapcore.DebugLevel, "store").Build()).
//	    Run(ctx, func(ctx context.Context) error {
//	        logger.Named("store").Debug(ctx, "cache miss")
//	        return nil
//	    })
//
// Output carries the scope tags and marks the forced entry:
//
//	{
//	  "ts": "2026-03-02T10:15:30Z",
//	  "level": "debug",
//	  "logger": "store",
//	  "msg": "cache miss",
//	  "tag.request_id": "r-42",
//	  "forced": true
//	}
//
// # Configuration Precedence
//
//  1. Defaults (NewDefaultConfig)
//  2. File (config.yaml or config.toml)
//  3. Environment variables (LOGSCOPE_LOGGING_*)
//
// # Secret Redaction
//
// Field names listed in Redaction.Fields are redacted, including scope tags
// with those keys ("tag.token"). Values matching Redaction.Patterns are
// redacted wherever they appear.
//
//	logger.Info(ctx, "auth received",
//	    logging.RedactedString("authorization", authHeader))
//
// # Testing
//
// Use TestLogger for test assertions:
//
//	tl := logging.NewTestLoggerWith(zapcore.InfoLevel, provider)
//	tl.Debug(ctx, "forced message")
//	tl.AssertForced(t, "forced message")
//	tl.AssertTag(t, "forced message", "request_id", "r-42")
package logging
