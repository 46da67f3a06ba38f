package client

import (
	"fmt"

	"github.com/dsprenkels/maruska/internal/media"
	"github.com/dsprenkels/maruska/internal/protocol"
)

// searchState tracks one query epoch. token survives resets so it stays
// strictly increasing for the lifetime of the client.
type searchState struct {
	query     *string
	token     uint64
	awaiting  bool
	requested int
	desired   int
	results   []media.Media
	done      bool
}

// Query returns the active search query, if any.
func (c *Client) Query() (string, bool) {
	if c.search.query == nil {
		return "", false
	}
	return *c.search.query, true
}

// Results returns the collected search results and whether the server has
// no more to give.
func (c *Client) Results() ([]media.Media, bool) {
	return cloneResults(c.search.results), c.search.done
}

// ResultCount is len(Results()) without the copy.
func (c *Client) ResultCount() int {
	return len(c.search.results)
}

// Search sets the query and the number of results wanted.
func (c *Client) Search(query string, count int) error {
	return c.UpdateQuery(&query, count)
}

// ClearSearch drops the active query and its results.
func (c *Client) ClearSearch() error {
	return c.UpdateQuery(nil, 0)
}

// UpdateQuery changes the search. The same query with a larger count grows
// the result window; a different query (including none) starts a new epoch.
func (c *Client) UpdateQuery(query *string, count int) error {
	s := &c.search
	if sameQuery(s.query, query) {
		s.desired = max(s.desired, count)
		return c.maybeQueryMedia()
	}

	s.query = nil
	if query != nil {
		q := *query
		s.query = &q
	}
	s.awaiting = false
	s.requested = 0
	s.desired = count
	s.results = nil
	s.done = false
	return c.maybeQueryMedia()
}

// maybeQueryMedia issues the next chunk request when one is due.
func (c *Client) maybeQueryMedia() error {
	s := &c.search
	if s.done || s.query == nil || s.awaiting || len(s.results) >= s.desired {
		return nil
	}

	skip := len(s.results)
	count := min(s.desired-skip, chunkSize(skip))
	s.token++
	s.awaiting = true
	s.requested = count
	if err := c.send(protocol.NewQueryMedia(*s.query, s.token, skip, count)); err != nil {
		// Nothing will answer this token; the next UpdateQuery tries again.
		s.awaiting = false
		s.requested = 0
		return err
	}
	return nil
}

func (c *Client) handleQueryMediaResults(m protocol.QueryMediaResults) error {
	s := &c.search
	if !s.awaiting || m.Token != s.token {
		if m.Token > s.token {
			c.log.Error().Uint64("token", m.Token).Uint64("awaited", s.token).Msg("query results from the future")
			return fmt.Errorf("%w: query_media_results token %d newer than awaited %d", ErrProtocolViolation, m.Token, s.token)
		}
		c.log.Debug().Uint64("token", m.Token).Uint64("awaited", s.token).Msg("dropping stale query results")
		return nil
	}

	s.awaiting = false
	s.results = append(s.results, m.Results...)
	if len(m.Results) < s.requested {
		s.done = true
		return nil
	}
	return c.maybeQueryMedia()
}

// chunkSize is the page size for the next request given n collected results.
func chunkSize(n int) int {
	switch {
	case n <= 50:
		return 25
	case n <= 100:
		return 50
	case n <= 200:
		return 100
	case n <= 500:
		return 1000 - n
	default:
		return 1000
	}
}

func sameQuery(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
