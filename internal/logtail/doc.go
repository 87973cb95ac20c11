// Package logtail keeps the tail of the application log in memory.
//
// Ring is an io.Writer that retains the last N lines written to it. The app
// package tees the slog handler into a Ring so the TUI can show recent log
// output without reading the log file on every refresh. Read tails an
// existing file and is used once at startup to seed the Ring with the
// previous session's last lines.
//
// Both are safe for concurrent use. Lines are returned oldest first.
package logtail
