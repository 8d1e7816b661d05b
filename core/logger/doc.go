// Package logger builds the zap logger the rest of the module shares.
//
// New constructs a logger from Config: json encoding for production,
// colored console output when the level is debug. WithRayID derives a
// child logger carrying the request's ray id so every line emitted
// while handling a webhook points back to the request that caused it.
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Server started")
//
//	// in a handler:
//	l := logger.WithRayID(log, c)
//	l.Warn("Discarding malformed payload")
package logger
