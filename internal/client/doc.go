// Package client implements the queue server's protocol state machine on
// top of an outbound message sink.
//
// # Overview
//
// A Client turns inbound messages into application state (now playing,
// request queue, search results) and offers an imperative API that queues
// outbound protocol actions. It never touches the network itself; every
// outbound message goes through an Outbox, normally a *comet.Channel.
//
// A Client is not safe for concurrent use. Drive it from one goroutine,
// feeding it inbound messages with HandleMessage in arrival order.
//
// # Login
//
//	NoToken ──RequestLoginToken──▶ TokenRequested ──login_token──▶ TokenReady
//	                                                                  │
//	               ◀──────────── error_login ─────────── LoggingIn ◀──┘ Login
//	                                                        │
//	                                                    logged_in
//	                                                        ▼
//	                                                     LoggedIn
//
// Login before a token exists is remembered as a PendingLogin and replayed
// as soon as the token arrives. The hash sent to the server is
//
//	access key:  md5(key + token)
//	password:    md5(md5(password) + token)
//
// Requests for playback made before login are held back and flushed, in
// submission order, exactly once when logged_in arrives.
//
// # Search
//
// Search results are fetched in chunks. Each query_media request carries a
// strictly increasing token; a response for an older token is stale and is
// dropped, a response for a newer token than the one awaited is reported as
// ErrProtocolViolation. The chunk size grows with the number of results
// already collected:
//
//	collected ≤ 50    25
//	collected ≤ 100   50
//	collected ≤ 200   100
//	collected ≤ 500   1000 - collected
//	otherwise         1000
//
// Fetching continues while a response is as large as requested and more
// results are wanted. A short response marks the query done.
package client
