// Package comet keeps a long-polling HTTP session with the queue server.
//
// # Overview
//
// The server speaks a "comet" protocol: a single endpoint that accepts POST
// bodies of the form [session?, messages...] and answers with
// [session, [messages...]]. A request without outbound messages is a poll
// that the server holds open until it has something to push. Channel turns
// this into an outbound queue and an inbound stream.
//
// # Architecture
//
//	Enqueue ──▶ outbound queue ──▶ worker 1 ─┐
//	                          └──▶ worker 2 ─┴─▶ POST ──▶ server
//	                                               │
//	Inbound() ◀──────────── inbound stream ◀───────┘
//
// Exactly two workers run. On every iteration a worker
//
//  1. drains whatever is queued without blocking and sends it as one batch,
//  2. otherwise issues a poll, but only when no request at all is in flight,
//  3. otherwise blocks until a message is queued and sends that.
//
// Together they keep one poll open at all times, deliver outbound messages
// without waiting for the poll to return, and never have more than two
// requests in flight.
//
// # Session State
//
// The session id and the outstanding-request count are owned by a single
// goroutine. Workers ask it to acquire or release a request slot and to
// read or replace the session id, so there is no lock ordering to get wrong.
// Once set, the session id is never cleared; the server may rotate it on any
// response.
//
// # Failures
//
//   - *TransportError: network failure, non-2xx status or an unreadable body.
//     The worker retries the same batch with exponential backoff (doubling,
//     capped at 30s). After the configured number of attempts it returns the
//     error and the supervisor restarts it.
//     A request that timed out may still have reached the server, so before
//     the retry any "request" messages are removed from the batch and
//     ErrRequestTimedOut is published on Errors().
//   - *wire.MalformedResponseError: the body is not a valid frame. The batch
//     is dropped, the error is published on Errors() and the worker carries on.
//
// Enqueue never blocks. While the server is down the workers hold on to the
// batches they are retrying and the outbound queue fills up; further calls
// fail with ErrQueueFull. Done is closed by Close and ends every reader of
// Inbound and Errors.
//
// A circuit breaker (sony/gobreaker) short-circuits requests while the server
// keeps failing, and a token bucket (x/time/rate) bounds how fast polls are
// reissued when the server answers them immediately.
//
// # Metrics
//
// Prometheus collectors are created with NewMetrics and passed in WithMetrics:
//
//   - maruska_comet_inflight_requests
//   - maruska_comet_requests_total{kind,result}
//   - maruska_comet_request_duration_seconds{kind}
//   - maruska_comet_inbound_messages_total
//   - maruska_comet_dropped_messages_total{reason}
package comet
