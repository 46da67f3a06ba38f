// Package ui is maruska's terminal interface, built on Bubble Tea.
//
// The screen has three parts: a header with the server, connection and
// login state; a body showing either the request queue or search results;
// and a prompt line with the status message on its right.
//
// The prompt decides the mode. An empty prompt shows the queue. Typing any
// printable character starts a search ("/beatles"), and results are
// fetched as the cursor approaches the end of what has been loaded. A
// leading ":" enters a command:
//
//	:username <name>   set the user and log in if a secret is known
//	:password <pw>     log in with a password (shown masked)
//	:quit              leave
//
// Enter on a search result requests it. When the request has to wait for a
// login the prompt switches to ":username " so the user can authenticate;
// the request is sent once the server confirms the login. The access key
// the server hands out is stored in the preferences file and used on the
// next start.
//
// Model owns the protocol client. Inbound messages and failed exchanges
// from the comet channel arrive as tea.Msg values, so every client call
// happens on the Bubble Tea update goroutine.
package ui
