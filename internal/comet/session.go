package comet

// maxOutstanding caps concurrent HTTP requests.
const maxOutstanding = 2

// session is owned by the run goroutine and never touched elsewhere.
type session struct {
	id          string
	outstanding int
}

// run owns the session until Close.
func (c *Channel) run() {
	var s session
	for {
		select {
		case op := <-c.ops:
			op(&s)
		case <-c.stop:
			return
		}
	}
}

// do runs op on the session goroutine and waits for it.
func (c *Channel) do(op func(*session)) error {
	done := make(chan struct{})
	wrapped := func(s *session) {
		op(s)
		close(done)
	}
	select {
	case c.ops <- wrapped:
	case <-c.stop:
		return ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-c.stop:
		return ErrClosed
	}
}

// slot kinds
const (
	slotConnect = iota
	slotPoll
	slotSend
)

// acquire takes a request slot. Connect needs a fresh channel, a poll needs
// an idle one, a send only needs a free slot.
func (c *Channel) acquire(kind int) (bool, error) {
	var ok bool
	var connectErr error
	err := c.do(func(s *session) {
		switch kind {
		case slotConnect:
			if s.id != "" || s.outstanding != 0 {
				connectErr = ErrAlreadyConnected
				return
			}
			ok = true
		case slotPoll:
			ok = s.outstanding == 0
		default:
			ok = s.outstanding < maxOutstanding
		}
		if ok {
			s.outstanding++
			c.metrics.InFlight.Set(float64(s.outstanding))
		}
	})
	if err != nil {
		return false, err
	}
	return ok, connectErr
}

func (c *Channel) release() {
	_ = c.do(func(s *session) {
		if s.outstanding > 0 {
			s.outstanding--
		}
		c.metrics.InFlight.Set(float64(s.outstanding))
	})
}

// Session returns the current session id, empty before Connect.
func (c *Channel) Session() string {
	var id string
	_ = c.do(func(s *session) { id = s.id })
	return id
}

// Outstanding returns the number of requests in flight.
func (c *Channel) Outstanding() int {
	var n int
	_ = c.do(func(s *session) { n = s.outstanding })
	return n
}

func (c *Channel) setSession(id string) {
	if id == "" {
		return
	}
	_ = c.do(func(s *session) {
		if s.id != id && s.id != "" {
			c.log.Debug().Str("from", s.id).Str("to", id).Msg("session rotated")
		}
		s.id = id
	})
}
