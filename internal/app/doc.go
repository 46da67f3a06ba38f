// Package app is the composition root for maruska.
//
// # Overview
//
// Run loads configuration, sets up logging, connects the comet channel to
// the queue server and hands the protocol client to either the terminal UI
// or the headless follower. Nothing in here talks the protocol itself; it
// only wires the packages that do.
//
// # Startup Sequence
//
//  1. config.Load layers defaults, the TOML file and MARUSKA_* variables;
//     command-line flags from Options override the result
//  2. Logging goes to a file (the UI owns the terminal) unless --log-file -
//  3. Preferences supply the theme and any stored access key
//  4. comet.New builds the channel with metrics, health and retry settings
//  5. Connect performs the handshake; failure here aborts startup
//  6. A suture supervisor runs the channel workers and, when configured,
//     the /metrics listener
//  7. The client follows both topics and logs in with a stored access key
//  8. ui.Run or Follow blocks until the user quits or ctx is cancelled
//
// # Data Flow
//
//	┌──────────────┐  Enqueue   ┌───────────────┐  POST   ┌────────┐
//	│ client.Client├───────────>│ comet.Channel ├────────>│ server │
//	└──────▲───────┘            └───────┬───────┘<────────┴────────┘
//	       │ HandleMessage              │ Inbound()/Errors()
//	       └──────── ui / Follow <──────┘
//
// The client is not safe for concurrent use. Exactly one goroutine, the
// bubbletea update loop or the Follow loop, reads the channel's inbound
// stream and calls into the client.
//
// # Error Handling
//
// Fatal (returned from Run):
//   - invalid configuration
//   - log file cannot be opened
//   - the initial handshake fails
//
// Recoverable (logged or shown in the status line):
//   - failed exchanges after startup; workers back off and the supervisor
//     restarts them
//   - malformed or unknown inbound messages
//
// # Usage Example
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	if err := app.Run(ctx, app.Options{Headless: true}); err != nil {
//		fmt.Fprintln(os.Stderr, err)
//	}
package app
