// Package session drives the login flow: connecting, auto-login from the
// credential cache, manual login and registration, player selection and the
// final hand-off of the game connection id to the embedding page.
//
// All Controller methods must be called from a single goroutine, normally an
// rpc.Loop. Transport callbacks are posted onto that loop.
package session

import (
	"log/slog"
	"strings"

	"github.com/mcoot/userdata-go/internal/credcache"
	"github.com/mcoot/userdata-go/internal/i18n"
	"github.com/mcoot/userdata-go/internal/model"
	"github.com/mcoot/userdata-go/internal/rpc"
)

// Caller issues RPC calls. A nil reply means no reply is wanted.
type Caller interface {
	Call(method string, args []any, kwargs map[string]any, reply rpc.ReplyFunc)
}

// LoginForm describes which login form controls are available
type LoginForm struct {
	RegisterAllowed bool
	PlayAvailable   bool
}

// View is the login surface.
type View interface {
	ShowLogin(form LoginForm)
	FocusName()
	SetName(name string)
	ClearPassword()
	ShowPlayers(players []model.PlayerRecord, selection Selection)
	SetSelectEnabled(enabled bool)
	SetConnected(connected bool)
	Alert(message string)
	Fatal(message string)
	Hide()
}

// Parent receives the cross-window message for the embedding page. A nil
// gcid asks the parent to close the frame.
type Parent interface {
	Notify(gcid *string)
}

// Config holds the dependencies fixed for the lifetime of a Controller
type Config struct {
	Identity   model.IdentityContext
	HostID     int
	Cache      *credcache.Cache
	Translator *i18n.Translator
	View       View
	Parent     Parent
	Logger     *slog.Logger
}

// Controller is the login state machine.
type Controller struct {
	identity   model.IdentityContext
	hostID     int
	cache      *credcache.Cache
	translator *i18n.Translator
	view       View
	parent     Parent
	logger     *slog.Logger

	state      State
	caller     Caller
	generation int

	registrationAllowed bool
	players             []model.PlayerRecord
	selection           Selection
	result              *string
}

// NewController creates a controller in the idle state
func NewController(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		identity:            cfg.Identity,
		hostID:              cfg.HostID,
		cache:               cfg.Cache,
		translator:          cfg.Translator,
		view:                cfg.View,
		parent:              cfg.Parent,
		logger:              logger.With(slog.String("component", "session"), slog.String("mode", string(cfg.Identity.Mode))),
		state:               StateIdle,
		registrationAllowed: cfg.Identity.AllowNewPlayers,
	}
}

// State returns the current state
func (c *Controller) State() State {
	return c.state
}

// Players returns the last fetched player list
func (c *Controller) Players() []model.PlayerRecord {
	return c.players
}

// Selection returns the current player selection
func (c *Controller) Selection() Selection {
	return c.selection
}

// Result returns the connection id handed to the parent once completed.
func (c *Controller) Result() (string, bool) {
	if c.result == nil {
		return "", false
	}
	return *c.result, true
}

// Start leaves Idle. A logout request clears the credential cache before
// anything reads it.
func (c *Controller) Start() {
	if c.state != StateIdle {
		return
	}

	if c.identity.Logout {
		if err := c.cache.Clear(); err != nil {
			c.logger.Error("failed to clear credential cache", slog.Any("error", err))
		}
	}

	if c.identity.Mode == model.ModeDirectUnsupported {
		c.transition(StateUnsupported)
		c.view.Fatal(c.tr("Direct login is not supported"))
		return
	}
	c.transition(StateConnecting)
}

// Attach replaces the RPC session. Replies to calls made on any earlier
// session are discarded from now on.
func (c *Controller) Attach(caller Caller) {
	c.caller = caller
	c.generation++
}

// HandleOpened restarts the flow on a freshly opened session.
func (c *Controller) HandleOpened() {
	if c.state == StateIdle || c.state.Terminal() {
		c.logger.Debug("ignoring opened event", slog.String("state", c.state.String()))
		return
	}

	c.view.SetConnected(true)
	c.transition(StateConnecting)

	if c.identity.Mode == model.ModeExternal {
		c.fetchServerSettings()
	}

	creds, ok := c.cache.Load()
	if !ok {
		c.awaitInput()
		return
	}
	c.transition(StateAutoLogin)
	c.login(creds, true)
}

// HandleClosed marks the session lost. The flow restarts from Connecting on
// the next opened event.
func (c *Controller) HandleClosed() {
	c.view.SetConnected(false)
	if c.state == StateIdle || c.state.Terminal() {
		return
	}
	c.generation++
	c.transition(StateConnecting)
}

// Submit handles the login form.
func (c *Controller) Submit(action Action, name, password string) {
	if c.state != StateAwaitingInput {
		c.logger.Debug("ignoring submit", slog.String("state", c.state.String()), slog.String("action", string(action)))
		return
	}

	if action == ActionRegister {
		c.register(name, password)
		return
	}

	creds := model.Credentials{Name: name, Password: password}
	c.transition(StateAuthenticating)
	if action == ActionPlay && !c.identity.Managed() {
		c.play(creds)
		return
	}
	c.login(creds, false)
}

// ChangeSelection updates the player picker and re-evaluates whether the
// select control is enabled.
func (c *Controller) ChangeSelection(index int, newName string) {
	if c.state != StatePlayerSelection {
		return
	}
	c.selection = Selection{Index: index, NewName: newName}
	c.view.SetSelectEnabled(SelectionValid(c.selection, c.players))
}

// SubmitSelection connects as the selected player, creating it first when
// the "Add New" entry is selected.
func (c *Controller) SubmitSelection() {
	if c.state != StatePlayerSelection {
		c.logger.Debug("ignoring selection", slog.String("state", c.state.String()))
		return
	}
	if !SelectionValid(c.selection, c.players) {
		c.view.Alert(c.tr("Please select a player or enter a name for a new player"))
		return
	}

	if c.selection.Index == AddNewIndex {
		c.addPlayer(strings.TrimSpace(c.selection.NewName))
		return
	}
	c.connect(c.players[c.selection.Index-1].Name)
}

// Logout asks the server to end the game session.
func (c *Controller) Logout() {
	c.call("userdata_logout", nil, nil, nil)
}

func (c *Controller) login(creds model.Credentials, auto bool) {
	method, args := "login_user", []any{c.hostID, creds.Name, creds.Password}
	if c.identity.Managed() {
		method, args = "login_player", []any{creds.Name, creds.Password}
	}

	c.call(method, args, nil, func(r rpc.Reply) {
		if !r.Bool() {
			c.logger.Info("login failed", slog.String("name", creds.Name), slog.Bool("auto", auto), slog.Any("error", r.Err))
			c.view.SetName(creds.Name)
			c.fail(c.tr("Failed to log in"), StateAwaitingInput)
			return
		}

		if !auto {
			if err := c.cache.Save(creds); err != nil {
				c.logger.Error("failed to cache credentials", slog.Any("error", err))
			}
		}

		if c.identity.Managed() {
			c.complete(nil)
			return
		}
		c.listPlayers(c.selectPlayer)
	})
}

func (c *Controller) play(creds model.Credentials) {
	c.call("login_user", []any{c.hostID, creds.Name, creds.Password}, nil, func(r rpc.Reply) {
		if !r.Bool() {
			c.view.SetName(creds.Name)
			c.fail(c.tr("Failed to log in"), StateAwaitingInput)
			return
		}
		if err := c.cache.Save(creds); err != nil {
			c.logger.Error("failed to cache credentials", slog.Any("error", err))
		}

		c.listPlayers(func(players []model.PlayerRecord) {
			if name, ok := ChooseAutomatic(players); ok {
				c.selection = InitialSelection(players)
				c.connect(name)
				return
			}
			c.selectPlayer(players)
		})
	})
}

func (c *Controller) register(name, password string) {
	if !c.registrationAllowed {
		c.view.Alert(c.tr("Registration of new users is not allowed"))
		return
	}
	username, email, err := ParseRegistrationName(name)
	if err != nil {
		c.view.Alert(c.tr("To register, enter a name of the form username:email"))
		return
	}

	method := "register_user"
	if c.identity.Managed() {
		method = "register_managed_player"
	}

	c.transition(StateAuthenticating)
	c.call(method, []any{username, username, email, password}, nil, func(r rpc.Reply) {
		if msg, failed := r.ErrorString(); failed {
			c.fail(msg, StateAwaitingInput)
			return
		}
		c.logger.Info("registered", slog.String("name", username))
		c.view.SetName(username)
		c.view.ClearPassword()
		c.awaitInput()
	})
}

func (c *Controller) listPlayers(next func([]model.PlayerRecord)) {
	c.call("list_players", []any{c.hostID, c.identity.RequestOrigin}, nil, func(r rpc.Reply) {
		var players []model.PlayerRecord
		if err := r.Decode(&players); err != nil {
			c.logger.Warn("failed to list players", slog.Any("error", err))
			c.fail(c.tr("Failed to get player list"), StateAwaitingInput)
			return
		}
		c.players = players
		next(players)
	})
}

func (c *Controller) selectPlayer(players []model.PlayerRecord) {
	c.players = players
	c.selection = InitialSelection(players)
	c.transition(StatePlayerSelection)
	c.view.ShowPlayers(players, c.selection)
	c.view.SetSelectEnabled(SelectionValid(c.selection, players))
}

func (c *Controller) addPlayer(name string) {
	c.transition(StateProvisioning)
	c.call("add_player", []any{c.hostID, c.identity.RequestOrigin, name, name, true}, nil, func(r rpc.Reply) {
		if r.Failed() {
			c.logger.Warn("failed to add player", slog.String("name", name), slog.Any("error", r.Err))
			c.fail(c.tr("Failed to add player"), StatePlayerSelection)
			return
		}
		c.connect(name)
	})
}

func (c *Controller) connect(name string) {
	gcid := c.identity.GameConnectionID
	c.call("connect", []any{c.hostID, c.identity.RequestOrigin, map[string]string{"gcid": gcid}, name}, nil, func(r rpc.Reply) {
		if r.Failed() {
			c.logger.Warn("failed to connect player", slog.String("name", name), slog.Any("error", r.Err))
			c.fail(c.tr("Failed to connect player"), StatePlayerSelection)
			return
		}

		result := gcid
		var fresh *string
		if err := r.Decode(&fresh); err == nil && fresh != nil && *fresh != "" {
			result = *fresh
		}
		c.logger.Info("player connected", slog.String("name", name))
		c.complete(&result)
	})
}

func (c *Controller) fetchServerSettings() {
	c.call("get_settings", nil, nil, func(r rpc.Reply) {
		var settings model.ServerSettings
		if err := r.Decode(&settings); err != nil {
			c.logger.Warn("failed to get server settings", slog.Any("error", err))
			return
		}
		c.registrationAllowed = settings.AllowNewUsers
		if c.state == StateAwaitingInput {
			c.view.ShowLogin(c.form())
		}
	})
}

func (c *Controller) complete(gcid *string) {
	c.transition(StateCompleted)
	c.result = gcid
	c.view.Hide()
	if gcid != nil {
		c.parent.Notify(gcid)
	}
}

// fail reports msg and returns to the interactive state the flow came from.
func (c *Controller) fail(msg string, back State) {
	c.transition(StateFailed)
	c.view.Alert(msg)
	if back == StatePlayerSelection {
		c.transition(StatePlayerSelection)
		c.view.ShowPlayers(c.players, c.selection)
		c.view.SetSelectEnabled(SelectionValid(c.selection, c.players))
		return
	}
	c.awaitInput()
}

func (c *Controller) awaitInput() {
	c.transition(StateAwaitingInput)
	c.view.ShowLogin(c.form())
	c.view.FocusName()
}

func (c *Controller) form() LoginForm {
	return LoginForm{
		RegisterAllowed: c.registrationAllowed,
		PlayAvailable:   !c.identity.Managed(),
	}
}

// call issues an RPC on the current session. Replies arriving after the
// session was replaced or lost are dropped.
func (c *Controller) call(method string, args []any, kwargs map[string]any, handle func(rpc.Reply)) {
	if c.caller == nil {
		c.logger.Error("no session attached", slog.String("method", method))
		if handle != nil {
			handle(rpc.Reply{Err: model.ErrSessionClosed})
		}
		return
	}

	var reply rpc.ReplyFunc
	if handle != nil {
		gen := c.generation
		reply = func(r rpc.Reply) {
			if gen != c.generation {
				c.logger.Debug("discarding stale reply", slog.String("method", method))
				return
			}
			handle(r)
		}
	}
	c.caller.Call(method, args, kwargs, reply)
}

func (c *Controller) transition(next State) {
	if c.state == next {
		return
	}
	c.logger.Debug("transition", slog.String("from", c.state.String()), slog.String("to", next.String()))
	c.state = next
}

func (c *Controller) tr(key string, subs ...string) string {
	return c.translator.Translate(key, subs...)
}
