// Package ui provides the Bubble Tea terminal interface for coloringbook.
//
// # Views
//
//   - Gallery: list of images, search box, reload
//   - Generate: prompt input, progress spinner, cancel with esc
//   - Detail: metadata, half-block preview of the decoded image, print page export
//   - Logs: in-memory tail of the application log
//   - Settings: server URL (persisted to prefs), server health, theme
//
// # Data Flow
//
// The UI owns no domain state. It holds the state containers created by the
// app package and copies their snapshots into the Model on every tick and
// whenever an operation completes:
//
//	key press ──> gallery.LoadImages() ──> Task
//	                                        │
//	waitCmd(Task) ──(Bubble Tea goroutine)──┘
//	      │
//	      └──> taskDoneMsg ──> refresh() ──> View()
//
// Operations flip their loading flags synchronously, so the very next frame
// already shows the spinner.
//
// # Input Handling
//
// Text inputs receive keys before global bindings while they are focused;
// ctrl+c always quits. Cursors are static so key handling never schedules
// blink timers.
//
// # Themes
//
// Dracula and Slate are available; T cycles them and the choice is saved to
// the preferences file together with the server URL.
package ui
