// Package logging provides a process-wide structured logger for the
// connector.
//
// The package wraps [log/slog] and exposes a single global logger instance
// that is initialized once and retrieved via GetLogger. Subsystems obtain a
// logger through this package rather than constructing their own
// slog.Logger, so that level and output destination are controlled from one
// place.
//
//	if err := logging.Init(logging.Config{Level: logging.LevelInfo}); err != nil {
//	    log.Fatal(err)
//	}
//
//	log := logging.WithTable("events")
//	log.Info("opened index", "columns", 3)
//
// If GetLogger is called before Init, a default stderr logger is created
// lazily via sync.Once.
package logging
