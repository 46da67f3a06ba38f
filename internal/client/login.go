package client

import (
	"errors"

	"github.com/dsprenkels/maruska/internal/protocol"
)

// LoginState returns the login state.
func (c *Client) LoginState() LoginState {
	return c.loginState
}

// LoggedIn reports whether the server accepted a login.
func (c *Client) LoggedIn() bool {
	return c.loginState == LoggedIn
}

// AccessKey returns the access key handed out at the last login.
func (c *Client) AccessKey() string {
	return c.accessKey
}

// PendingLogin returns the login waiting for a token, if any.
func (c *Client) PendingLogin() (PendingLogin, bool) {
	if c.pending == nil {
		return PendingLogin{}, false
	}
	return *c.pending, true
}

// RequestLoginToken asks the server for a login nonce. It does nothing while
// a token request is already outstanding.
func (c *Client) RequestLoginToken() error {
	if c.loginState == TokenRequested {
		return nil
	}
	prev := c.loginState
	c.loginState = TokenRequested
	if err := c.send(protocol.NewRequestLoginToken()); err != nil {
		c.loginState = prev
		return err
	}
	return nil
}

// Login logs in with a password.
func (c *Client) Login(username, password string) error {
	return c.login(username, password, false)
}

// LoginAccessKey logs in with an access key from an earlier session.
func (c *Client) LoginAccessKey(username, accessKey string) error {
	return c.login(username, accessKey, true)
}

func (c *Client) login(username, secret string, usingAccessKey bool) error {
	if c.loginToken == "" || c.loginState == TokenRequested {
		c.pending = &PendingLogin{Username: username, Secret: secret, UsingAccessKey: usingAccessKey}
		return c.RequestLoginToken()
	}

	c.pending = nil
	var hash string
	if usingAccessKey {
		hash = MD5Hex(secret + c.loginToken)
	} else {
		hash = MD5Hex(MD5Hex(secret) + c.loginToken)
	}
	c.loginState = LoggingIn
	c.log.Debug().Str("username", username).Bool("access_key", usingAccessKey).Msg("logging in")
	if err := c.send(protocol.NewLogin(username, hash, usingAccessKey)); err != nil {
		c.loginState = TokenReady
		return err
	}
	return nil
}

func (c *Client) handleLoginToken(m protocol.LoginToken) error {
	c.loginToken = m.Token
	c.loginState = TokenReady
	if c.pending == nil {
		return nil
	}
	p := *c.pending
	return c.login(p.Username, p.Secret, p.UsingAccessKey)
}

func (c *Client) handleLoggedIn(m protocol.LoggedIn) error {
	c.loginState = LoggedIn
	c.accessKey = m.AccessKey

	flush := c.deferred
	c.deferred = nil
	var errs []error
	for _, msg := range flush {
		errs = append(errs, c.send(msg))
	}
	if len(flush) > 0 {
		c.log.Debug().Int("count", len(flush)).Msg("flushed deferred messages")
	}
	return errors.Join(errs...)
}

func (c *Client) handleLoginError(m protocol.LoginError) {
	c.log.Info().Str("reason", m.Message).Msg("login rejected")
	if c.loginToken != "" {
		c.loginState = TokenReady
	} else {
		c.loginState = NoToken
	}
}
