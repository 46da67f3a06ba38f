// Package protocol defines the application messages carried inside comet
// frames.
//
// Inbound messages decode into one of the Inbound variants:
//
//	welcome              Welcome
//	playing              PlayingUpdate
//	requests             RequestsUpdate
//	login_token          LoginToken
//	logged_in            LoggedIn
//	error_login          LoginError
//	query_media_results  QueryMediaResults
//	anything else        Unknown
//
// An unrecognised "type" is not fatal: Decode returns the Unknown variant
// together with an error matching ErrUnknownMessageKind so callers can log
// it and carry on. A known type with a missing field yields a
// *wire.MalformedResponseError naming that field.
//
// Outbound messages are plain structs that marshal to the JSON objects the
// server expects; use the New* constructors so the "type" field is set.
package protocol
