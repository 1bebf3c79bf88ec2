// Package logger builds slog loggers with a consistent shape across lmskit
// services.
//
// New creates a *slog.Logger configured by functional options: output format,
// minimum level, static attributes and ContextExtractor callbacks. The
// extractors run on every record, so request-scoped values such as the
// request id or the resolved tenant end up in log lines without threading
// loggers through call chains.
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "lmskit"),
//	    logger.WithContextExtractors(
//	        requestid.LoggerExtractor(),
//	        tenant.LoggerExtractor(),
//	    ),
//	)
//	log.InfoContext(ctx, "connection ready",
//	    logger.Database("NgoLms"),
//	    logger.Duration(time.Since(start)),
//	)
//
// NewFromConfig reads the same settings from a Config loaded with the config
// package (APP_ENV, LOG_LEVEL, SERVICE_NAME).
//
// Attribute helpers in attr.go keep key names uniform. Error returns an
// empty attribute for a nil error, so it can be passed unconditionally.
// Discard returns a logger that drops everything; components fall back to it
// when no logger is supplied.
package logger
