// Package app is the composition root of the coloringbook client.
//
// # Startup
//
//  1. Load configuration (config.Load) and preferences (prefs.Load)
//  2. Set up slog: text records go to the log file and to a logtail.Ring
//  3. Resolve the server URL: config < saved preference < -server flag
//  4. Build the colorbook.Client and the shared worker pool
//  5. Create the Gallery and Generation containers; a finished generation is
//     inserted at the front of the gallery
//  6. Start the health monitor
//  7. Run the TUI until the user quits or the context is cancelled
//
// # Health Monitor
//
// StartHealthMonitor probes /api/health on a fixed interval (15s by default)
// and records each result in a state.Health. Consecutive failures double the
// delay up to maxBackoff; a success resets it. The probe reads the server URL
// through a function so a change made in the settings view takes effect on
// the next probe.
//
// # Error Handling
//
// Only an unreadable or malformed config file stops startup. A log file that
// cannot be opened degrades to in-memory logging, and unreachable servers are
// shown in the UI rather than reported as errors.
package app
