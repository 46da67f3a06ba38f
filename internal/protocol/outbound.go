package protocol

import "slices"

// Follow topics.
const (
	TopicPlaying  = "playing"
	TopicRequests = "requests"
)

// Outbound message types.
const (
	TypeFollow            = "follow"
	TypeRequestLoginToken = "request_login_token"
	TypeLogin             = "login"
	TypeLoginAccessKey    = "login_accessKey"
	TypeQueryMedia        = "query_media"
	TypeRequest           = "request"
)

// Topics lists every topic a client may follow.
var Topics = []string{TopicPlaying, TopicRequests}

// ValidTopic reports whether topic may be passed to NewFollow.
func ValidTopic(topic string) bool {
	return slices.Contains(Topics, topic)
}

// Follow subscribes to server pushes for the given topics.
type Follow struct {
	Type  string   `json:"type"`
	Which []string `json:"which"`
}

// NewFollow builds a follow message.
func NewFollow(topics []string) Follow {
	return Follow{Type: TypeFollow, Which: slices.Clone(topics)}
}

// RequestLoginToken asks the server for a login nonce.
type RequestLoginToken struct {
	Type string `json:"type"`
}

// NewRequestLoginToken builds a request_login_token message.
func NewRequestLoginToken() RequestLoginToken {
	return RequestLoginToken{Type: TypeRequestLoginToken}
}

// Login authenticates with a salted hash of a password or access key.
type Login struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Hash     string `json:"hash"`
}

// NewLogin builds a login or login_accessKey message.
func NewLogin(username, hash string, usingAccessKey bool) Login {
	kind := TypeLogin
	if usingAccessKey {
		kind = TypeLoginAccessKey
	}
	return Login{Type: kind, Username: username, Hash: hash}
}

// QueryMedia asks for one page of search results.
type QueryMedia struct {
	Type  string `json:"type"`
	Query string `json:"query"`
	Token uint64 `json:"token"`
	Skip  int    `json:"skip"`
	Count int    `json:"count"`
}

// NewQueryMedia builds a query_media message.
func NewQueryMedia(query string, token uint64, skip, count int) QueryMedia {
	return QueryMedia{Type: TypeQueryMedia, Query: query, Token: token, Skip: skip, Count: count}
}

// RequestMedia queues a library entry for playback.
type RequestMedia struct {
	Type     string `json:"type"`
	MediaKey string `json:"mediaKey"`
}

// NewRequestMedia builds a request message.
func NewRequestMedia(mediaKey string) RequestMedia {
	return RequestMedia{Type: TypeRequest, MediaKey: mediaKey}
}
