// Package logging builds the slog loggers used across the engine, CLI and
// server.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//
//	ctx = logging.WithRunID(ctx, runID)
//	logger.InfoContext(ctx, "validation complete", "errors", 3)
//	// {"level":"INFO","msg":"validation complete","run_id":"...","errors":3}
//
// Run, session and entity identifiers stored on the context with WithRunID,
// WithSessionID and WithEntityType are added to every record logged with
// that context.
package logging
