// Package wire encodes and decodes the JSON frames exchanged with the
// queue server's comet endpoint.
//
// # Frames
//
// Every request body is a JSON array. The first element is the session id
// once the server has issued one; the remaining elements are outbound
// messages in send order:
//
//	[]                                  first handshake, no session yet
//	["s1", {"type":"follow", ...}]      established session, one message
//
// Every response body is a two-element array of the (possibly rotated)
// session id and the inbound messages:
//
//	["s1", [{"type":"welcome"}, {"type":"playing", ...}]]
//
// Each message is a JSON object with a required string field "type".
//
// # Errors
//
// Structural problems are reported as *MalformedResponseError, which names
// the offending field and keeps the raw payload for diagnosis. Use
// errors.Is(err, ErrMalformedResponse) to classify them.
package wire
