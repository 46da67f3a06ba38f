package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/dsprenkels/maruska/internal/client"
	"github.com/dsprenkels/maruska/internal/comet"
	"github.com/dsprenkels/maruska/internal/logging"
	"github.com/dsprenkels/maruska/internal/prefs"
	"github.com/dsprenkels/maruska/internal/protocol"
	"github.com/dsprenkels/maruska/internal/state"
)

const (
	defaultBufferSize = 5000
	refreshEvery      = time.Second
)

// Source is the receiving side of a comet channel. Done is closed when the
// channel shuts down.
type Source interface {
	Inbound() <-chan json.RawMessage
	Errors() <-chan error
	Done() <-chan struct{}
}

// Options configures the UI.
type Options struct {
	Client     *client.Client
	Source     Source
	Store      *state.Store
	Host       string
	BufferSize int // results fetched beyond the scroll offset
	Prefs      prefs.Prefs
	PrefsPath  string
	Version    string
}

// Model is the root application state for Bubble Tea. It is the only
// goroutine that touches the client.
type Model struct {
	client     *client.Client
	source     Source
	store      *state.Store
	host       string
	version    string
	bufferSize int
	prefs      prefs.Prefs
	prefsPath  string
	log        zerolog.Logger
	now        func() time.Time

	keys   keyMap
	theme  Theme
	input  textinput.Model
	status status

	width  int
	height int
	ready  bool

	snapshot state.Snapshot

	// search viewport
	focus  int
	offset int

	// credentials typed this session
	username  string
	password  string
	accessKey string
}

// New creates the model.
func New(opts Options) Model {
	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "type to search, : for commands"
	ti.Focus()

	m := Model{
		client:     opts.Client,
		source:     opts.Source,
		store:      opts.Store,
		host:       opts.Host,
		version:    opts.Version,
		bufferSize: bufferSize,
		prefs:      opts.Prefs,
		prefsPath:  prefsPath,
		log:        logging.WithComponent("ui"),
		now:        time.Now,
		keys:       defaultKeyMap(),
		theme:      GetTheme(opts.Prefs.Theme),
		input:      ti,
		username:   opts.Prefs.Username,
		accessKey:  opts.Prefs.AccessKey,
	}
	if opts.Host != "" {
		m.setStatus(statusSuccess, "Connected to "+opts.Host)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, tickCmd(refreshEvery)}
	if m.source != nil {
		cmds = append(cmds, waitForInbound(m.source), waitForError(m.source))
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.moveFocus(0, false)
		return m, nil

	case inboundMsg:
		m.handleInbound(msg)
		return m, waitForInbound(m.source)

	case exchangeErrMsg:
		if errors.Is(msg.err, comet.ErrRequestTimedOut) {
			m.setStatus(statusWarning, "Request timed out and may not have been queued")
		} else {
			m.setStatus(statusError, "Connection problem: "+msg.err.Error())
		}
		return m, waitForError(m.source)

	case tickMsg:
		var cmds []tea.Cmd
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		cmds = append(cmds, tickCmd(refreshEvery))
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveFocus(-1, false)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveFocus(1, false)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.moveFocus(-m.viewportHeight(), true)
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.moveFocus(m.viewportHeight(), true)
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Cancel):
		m.setInput("")
		return m, nil

	case key.Matches(msg, m.keys.DelWord):
		m.setInput(deleteWord(m.input.Value()))
		return m, nil

	case key.Matches(msg, m.keys.DelLine):
		m.setInput(deleteLine(m.input.Value()))
		return m, nil

	case key.Matches(msg, m.keys.Backspace) && len(m.input.Value()) <= 1:
		m.setInput("")
		return m, nil
	}

	if m.input.Value() == "" && (msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace) {
		m.status = status{}
		typed := string(msg.Runes)
		if msg.Type == tea.KeySpace {
			typed = " "
		}
		if typed != "/" && typed != ":" {
			typed = "/" + typed
		}
		m.setInput(typed)
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.status = status{}
		}
		if after != "" && !isPrefixed(after) {
			m.input.SetValue("/" + after)
			m.input.CursorEnd()
		}
		m.edited(before)
	}
	return m, cmd
}

// setInput replaces the prompt.
func (m *Model) setInput(value string) {
	previous := m.input.Value()
	if value != previous {
		m.input.SetValue(value)
		m.input.CursorEnd()
	}
	m.edited(previous)
}

// edited keeps the client's search in step with the prompt.
func (m *Model) edited(previous string) {
	if m.input.Value() != previous {
		m.focus, m.offset = 0, 0
	}
	m.updateClientQuery()
}

func (m *Model) updateClientQuery() {
	if m.client == nil {
		return
	}
	var err error
	if q, ok := strings.CutPrefix(m.input.Value(), "/"); ok {
		err = m.client.Search(q, m.offset+m.bufferSize)
	} else {
		err = m.client.ClearSearch()
	}
	if err != nil {
		m.sendFailed(err)
	}
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	switch {
	case strings.HasPrefix(value, "/"):
		m.requestFocused()
		return m, nil
	case strings.HasPrefix(value, ":"):
		return m.runCommand(value)
	}
	return m, nil
}

func (m *Model) requestFocused() {
	results, _ := m.client.Results()
	if len(results) == 0 {
		m.setStatus(statusWarning, "No song selected")
		return
	}
	picked := results[min(m.focus, len(results)-1)]
	m.setInput("")

	res, err := m.client.RequestMedia(picked)
	switch {
	case err != nil:
		m.sendFailed(err)
	case res == client.Deferred:
		m.setStatus(statusWarning, "Not logged in")
		m.setInput(":" + cmdUsername + " ")
	default:
		m.setStatus(statusInfo, fmt.Sprintf("Requested %s - %s", picked.Artist, picked.Title))
	}
}

func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	name, arg, ok := parseCommand(line)
	m.setInput("")
	if !ok {
		return m, nil
	}

	switch name {
	case cmdUsername:
		if arg == "" {
			m.setStatus(statusError, "No username provided")
			m.setInput(":" + cmdUsername + " ")
			return m, nil
		}
		if arg != m.username {
			m.accessKey = ""
			if arg == m.prefs.Username {
				m.accessKey = m.prefs.AccessKey
			}
		}
		m.username = arg
		if !m.tryLogin() {
			m.setInput(":" + cmdPassword + " ")
		}
	case cmdPassword:
		if arg == "" {
			m.setStatus(statusError, "No password provided")
			return m, nil
		}
		m.password = arg
		if m.username == "" {
			m.setInput(":" + cmdUsername + " ")
			return m, nil
		}
		m.setStatus(statusInfo, "Logging in")
		m.tryLogin()
	case cmdQuit:
		return m, tea.Quit
	default:
		m.setStatus(statusError, unknownCommand(name))
	}
	return m, nil
}

// tryLogin logs in with whatever secret is known and reports whether it had one.
func (m *Model) tryLogin() bool {
	if m.username == "" {
		return false
	}
	var err error
	switch {
	case m.password != "":
		err = m.client.Login(m.username, m.password)
	case m.accessKey != "":
		err = m.client.LoginAccessKey(m.username, m.accessKey)
	default:
		return false
	}
	if err != nil {
		m.sendFailed(err)
	}
	return true
}

func (m *Model) handleInbound(raw inboundMsg) {
	ev, err := m.client.HandleMessage(raw)
	switch {
	case errors.Is(err, protocol.ErrUnknownMessageKind):
		m.log.Debug().Err(err).Msg("ignoring message")
		return
	case errors.Is(err, client.ErrProtocolViolation):
		m.setStatus(statusError, "Protocol error: "+err.Error())
		return
	case err != nil:
		m.log.Warn().Err(err).Msg("message rejected")
		m.setStatus(statusError, "Malformed message: "+err.Error())
		return
	}

	switch e := ev.(type) {
	case protocol.QueryMediaResults:
		m.moveFocus(0, false)
	case protocol.LoggedIn:
		m.setStatus(statusSuccess, "Successfully logged in")
		m.password = ""
		m.accessKey = e.AccessKey
		m.prefs.Username = m.username
		m.prefs.AccessKey = e.AccessKey
		m.savePrefs()
	case protocol.LoginError:
		m.loginFailed(e.Message)
	}
}

func (m *Model) loginFailed(reason string) {
	m.password = ""
	m.accessKey = ""
	prompt := ""
	switch reason {
	case "User does not exist":
		m.setStatus(statusError, fmt.Sprintf("Login failed: user %q does not exist", m.username))
		prompt = ":" + cmdUsername + " "
	case "Wrong password":
		m.setStatus(statusError, "Login failed: wrong password")
		prompt = ":" + cmdPassword + " "
	default:
		m.setStatus(statusError, "Login failed: "+reason)
	}
	if prompt != "" && m.input.Value() == "" {
		m.setInput(prompt)
	}
}

// moveFocus moves the search cursor by delta. With fixOffset the viewport
// scrolls along, as for page up/down.
func (m *Model) moveFocus(delta int, fixOffset bool) {
	if !strings.HasPrefix(m.input.Value(), "/") || m.client == nil {
		return
	}
	maxIndex := max(m.client.ResultCount()-1, 0)
	h := m.viewportHeight()

	m.focus = clamp(m.focus+delta, 0, maxIndex)
	offset := m.offset
	if fixOffset {
		offset += delta
	}
	m.offset = clamp(offset, max(m.focus-(h-1), 0), m.focus)
	m.updateClientQuery()
}

// sendFailed reports a client call whose message could not be queued.
func (m *Model) sendFailed(err error) {
	if errors.Is(err, comet.ErrQueueFull) {
		m.setStatus(statusError, "Server unreachable, message not sent")
		return
	}
	m.setStatus(statusError, err.Error())
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.status = status{text: text, kind: kind, at: m.now()}
}

func (m *Model) savePrefs() {
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.Warn().Err(err).Str("path", m.prefsPath).Msg("saving preferences failed")
	}
}

func (m Model) viewportHeight() int {
	return max(m.height-2, 1)
}

func isPrefixed(s string) bool {
	return strings.HasPrefix(s, "/") || strings.HasPrefix(s, ":")
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Messages

type inboundMsg []byte

type exchangeErrMsg struct{ err error }

type tickMsg time.Time

type snapshotMsg state.Snapshot

// Commands

func waitForInbound(src Source) tea.Cmd {
	return func() tea.Msg {
		select {
		case raw := <-src.Inbound():
			return inboundMsg(raw)
		case <-src.Done():
			return nil
		}
	}
}

func waitForError(src Source) tea.Cmd {
	return func() tea.Msg {
		select {
		case err := <-src.Errors():
			return exchangeErrMsg{err: err}
		case <-src.Done():
			return nil
		}
	}
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Client == nil {
		return errors.New("ui requires a client")
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
