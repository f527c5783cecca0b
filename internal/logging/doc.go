// Package logging provides structured, rotating file-based logging for the
// conceptrag engine. Ingestion and query paths log through log/slog with a
// JSON handler; by default logs also go to stderr.
package logging
