package client

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dsprenkels/maruska/internal/protocol"
)

func TestChunkSize(t *testing.T) {
	tests := []struct{ n, want int }{
		{0, 25}, {50, 25}, {51, 50}, {60, 50}, {100, 50},
		{150, 100}, {200, 100}, {450, 550}, {500, 500}, {501, 1000}, {900, 1000},
	}
	for _, tt := range tests {
		if got := chunkSize(tt.n); got != tt.want {
			t.Errorf("chunkSize(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func lastQuery(t *testing.T, out *fakeOutbox) protocol.QueryMedia {
	t.Helper()
	if len(out.sent) == 0 {
		t.Fatalf("no message sent")
	}
	q, ok := out.sent[len(out.sent)-1].(protocol.QueryMedia)
	if !ok {
		t.Fatalf("last message = %T, want QueryMedia", out.sent[len(out.sent)-1])
	}
	return q
}

// serveQueries answers every query_media with up to count results from a
// library of total entries.
func serveQueries(t *testing.T, c *Client, out *fakeOutbox, total int) []protocol.QueryMedia {
	t.Helper()
	var issued []protocol.QueryMedia
	for served := 0; served < len(out.sent); served++ {
		q, ok := out.sent[served].(protocol.QueryMedia)
		if !ok {
			continue
		}
		issued = append(issued, q)
		n := max(0, min(q.Count, total-q.Skip))
		mustHandle(t, c, resultsJSON(q.Token, q.Skip, n))
	}
	return issued
}

func TestSearch_PaginatesUntilExhausted(t *testing.T) {
	c, out := newTestClient()
	if err := c.Search("beatles", 120); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	issued := serveQueries(t, c, out, 87)

	wantCounts := []int{25, 25, 25, 45}
	if len(issued) != len(wantCounts) {
		t.Fatalf("issued %d requests, want %d: %#v", len(issued), len(wantCounts), issued)
	}
	skip := 0
	for i, q := range issued {
		if q.Count != wantCounts[i] || q.Skip != skip || q.Token != uint64(i+1) || q.Query != "beatles" {
			t.Fatalf("request %d = %#v, want count=%d skip=%d token=%d", i, q, wantCounts[i], skip, i+1)
		}
		skip += q.Count
	}

	results, done := c.Results()
	if !done {
		t.Fatalf("done = false, want true")
	}
	if len(results) != 87 {
		t.Fatalf("len(results) = %d, want 87", len(results))
	}
	for i, m := range results {
		if m.Key != fmt.Sprintf("k%d", i) {
			t.Fatalf("results[%d].Key = %q, want k%d", i, m.Key, i)
		}
	}
}

func TestSearch_StopsAtDesiredCount(t *testing.T) {
	c, out := newTestClient()
	if err := c.Search("air", 60); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	issued := serveQueries(t, c, out, 1000)

	results, done := c.Results()
	if len(results) != 60 {
		t.Fatalf("len(results) = %d, want 60", len(results))
	}
	if done {
		t.Fatalf("done = true, want false while the library has more")
	}
	if last := issued[len(issued)-1]; last.Count != 10 {
		t.Fatalf("last count = %d, want 10", last.Count)
	}

	// growing the window resumes from where it stopped
	out.reset()
	if err := c.Search("air", 100); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if q := lastQuery(t, out); q.Skip != 60 || q.Count != 40 {
		t.Fatalf("query = %#v, want skip=60 count=40", q)
	}
}

func TestSearch_SameOrSmallerCountIsNoop(t *testing.T) {
	c, out := newTestClient()
	if err := c.Search("air", 10); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if err := c.Search("air", 10); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if err := c.Search("air", 5); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(out.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(out.sent))
	}
}

func TestSearch_OnlyOneRequestInFlight(t *testing.T) {
	c, out := newTestClient()
	if err := c.Search("air", 10); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if err := c.Search("air", 100); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(out.sent) != 1 {
		t.Fatalf("sent %d messages while awaiting, want 1", len(out.sent))
	}
}

func TestSearch_StaleResponseIsIgnored(t *testing.T) {
	c, out := newTestClient()
	if err := c.Search("old", 25); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	stale := lastQuery(t, out)

	if err := c.Search("new", 25); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	current := lastQuery(t, out)
	if current.Token <= stale.Token {
		t.Fatalf("token %d did not increase past %d", current.Token, stale.Token)
	}

	mustHandle(t, c, resultsJSON(stale.Token, 0, 25))
	if n := c.ResultCount(); n != 0 {
		t.Fatalf("stale response added %d results", n)
	}

	mustHandle(t, c, resultsJSON(current.Token, 0, 3))
	results, done := c.Results()
	if len(results) != 3 || !done {
		t.Fatalf("results=%d done=%v, want 3/true", len(results), done)
	}

	// a late duplicate of the answered token is stale as well
	mustHandle(t, c, resultsJSON(current.Token, 0, 3))
	if n := c.ResultCount(); n != 3 {
		t.Fatalf("duplicate response changed results to %d", n)
	}
}

func TestSearch_NewerTokenIsProtocolViolation(t *testing.T) {
	c, out := newTestClient()
	if err := c.Search("air", 25); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	q := lastQuery(t, out)

	_, err := c.HandleMessage([]byte(resultsJSON(q.Token+1, 0, 25)))
	if !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("err = %v, want ErrProtocolViolation", err)
	}
	if n := c.ResultCount(); n != 0 {
		t.Fatalf("violating response added %d results", n)
	}
}

func TestSearch_ClearResetsResults(t *testing.T) {
	c, out := newTestClient()
	if err := c.Search("air", 5); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	mustHandle(t, c, resultsJSON(lastQuery(t, out).Token, 0, 5))
	if c.ResultCount() != 5 {
		t.Fatalf("ResultCount = %d, want 5", c.ResultCount())
	}

	out.reset()
	if err := c.ClearSearch(); err != nil {
		t.Fatalf("ClearSearch returned error: %v", err)
	}
	if _, ok := c.Query(); ok {
		t.Fatalf("Query still set after ClearSearch")
	}
	if c.ResultCount() != 0 || len(out.sent) != 0 {
		t.Fatalf("ResultCount=%d sent=%d, want 0/0", c.ResultCount(), len(out.sent))
	}
}

func TestSearch_EmptyQueryDiffersFromNone(t *testing.T) {
	c, out := newTestClient()
	if err := c.Search("", 10); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if q := lastQuery(t, out); q.Query != "" || q.Count != 10 {
		t.Fatalf("query = %#v", q)
	}
}

func TestSearch_RetriesAfterFailedSend(t *testing.T) {
	c, out := newTestClient()
	out.err = errors.New("queue full")
	if err := c.Search("air", 10); !errors.Is(err, out.err) {
		t.Fatalf("Search err = %v, want outbox error", err)
	}

	out.err = nil
	if err := c.Search("air", 10); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	q := lastQuery(t, out)
	if q.Query != "air" || q.Skip != 0 || q.Count != 10 {
		t.Fatalf("query = %#v, want air skip=0 count=10", q)
	}
	mustHandle(t, c, resultsJSON(q.Token, 0, 10))
	if got, _ := c.Results(); len(got) != 10 {
		t.Fatalf("results = %d, want 10", len(got))
	}
}
