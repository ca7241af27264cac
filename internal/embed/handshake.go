// Package embed runs the host page side of the login frame: choosing the
// userdata server, building the frame address, relaying messages from the
// frame and reacting to the "player connected" notification.
package embed

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/mcoot/userdata-go/internal/credcache"
	"github.com/mcoot/userdata-go/internal/i18n"
	"github.com/mcoot/userdata-go/internal/menu"
	"github.com/mcoot/userdata-go/internal/model"
	"github.com/mcoot/userdata-go/internal/rpc"
)

// Settings is the settings object sent with userdata_setup. Name and Managed
// are only set on the connected notification.
type Settings struct {
	AllowLocal      bool    `json:"allow-local"`
	AllowOther      bool    `json:"allow-other"`
	LocalUserdata   string  `json:"local-userdata"`
	AllowNewPlayers bool    `json:"allow-new-players,omitempty"`
	Logout          bool    `json:"logout,omitempty"`
	Name            string  `json:"name,omitempty"`
	Managed         *string `json:"managed,omitempty"`
}

// SetupRequest carries the arguments of userdata_setup. A nil HostGameURL
// marks the connected notification.
type SetupRequest struct {
	DefaultURL  string
	HostGameURL *string
	Settings    Settings
	GCID        string
	DCID        *string
}

// Chooser is the server selection form above the frame.
type Chooser struct {
	Visible     bool
	ShowToggle  bool
	UseExternal bool
	Address     string
}

// Frame is the container holding the chooser and the login iframe.
type Frame interface {
	ShowChooser(c Chooser)
	Load(src string)
	Hide()
}

// Config holds the dependencies of a Handshake
type Config struct {
	Frame      Frame
	Cache      *credcache.Cache
	Translator *i18n.Translator
	Program    *i18n.Translator
	Menu       *menu.Model
	PageURL    string
	Logout     func()
	Connected  func()
	Logger     *slog.Logger
}

// Handshake is the host page state for one login frame.
type Handshake struct {
	frame      Frame
	cache      *credcache.Cache
	translator *i18n.Translator
	program    *i18n.Translator
	menu       *menu.Model
	pageURL    string
	connected  func()
	logger     *slog.Logger

	settings   Settings
	defaultURL string
	gameURL    string
	gcid       string
	dcid       string

	chooser         Chooser
	frameAddress    string
	src             string
	settingsVisible bool
}

// NewHandshake creates a Handshake and binds the menu's settings and logout
// entries to it.
func NewHandshake(cfg Config) *Handshake {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handshake{
		frame:      cfg.Frame,
		cache:      cfg.Cache,
		translator: cfg.Translator,
		program:    cfg.Program,
		menu:       cfg.Menu,
		pageURL:    cfg.PageURL,
		connected:  cfg.Connected,
		logger:     logger.With(slog.String("component", "embed")),
	}

	if h.menu != nil {
		h.menu.Settings.Action = h.OpenSettings
		h.menu.Logout.Action = cfg.Logout
		h.translator.Subscribe(func() { h.menu.Retranslate(h.translator) })
	}
	return h
}

// Setup handles userdata_setup.
func (h *Handshake) Setup(req SetupRequest) {
	if req.DCID != nil {
		h.dcid = *req.DCID
	}
	if h.menu != nil {
		h.menu.Retranslate(h.translator)
	}

	if req.HostGameURL == nil {
		h.markConnected(req.Settings)
		return
	}

	h.settings = req.Settings
	h.defaultURL = req.DefaultURL
	h.gcid = req.GCID
	h.gameURL = *req.HostGameURL
	if h.gameURL == "" {
		h.gameURL = h.pageLocation()
	}
	h.settingsVisible = false

	h.chooser = h.initialChooser()
	h.frame.ShowChooser(h.chooser)

	switch {
	case h.settings.AllowLocal && h.chooser.Address == "":
		h.load(Local)
	case h.chooser.Address != "":
		h.load(External(h.chooser.Address))
	}
}

func (h *Handshake) initialChooser() Chooser {
	if !h.settings.AllowOther {
		return Chooser{}
	}

	stored, present := h.cache.Address()
	address := h.defaultURL
	if present {
		address = stored
	}

	c := Chooser{Visible: true, ShowToggle: h.settings.AllowLocal, UseExternal: true, Address: address}
	if h.settings.AllowLocal {
		c.UseExternal = InitialUseExternal(stored, present, h.defaultURL)
	}
	return c
}

// InitialUseExternal is the starting value of the "use external server"
// toggle given the stored address cookie and the default server.
func InitialUseExternal(stored string, present bool, defaultURL string) bool {
	if present {
		return stored != ""
	}
	return defaultURL != ""
}

func (h *Handshake) pageLocation() string {
	u, err := url.Parse(h.pageURL)
	if err != nil {
		return h.pageURL
	}
	return u.Scheme + "://" + u.Host + u.Path
}

func (h *Handshake) markConnected(s Settings) {
	h.frame.Hide()
	h.settingsVisible = false

	if h.menu != nil {
		if s.Managed == nil {
			h.menu.SetTitle(h.translator, "Logged in as $1 (external)", s.Name)
		} else {
			h.menu.SetTitle(h.translator, "Logged in as $1 (login name: $2)", s.Name, *s.Managed)
		}
		h.menu.Logout.Enabled = true
		h.menu.Settings.Enabled = h.dcid != ""
	}
	h.logger.Info("player connected", slog.String("name", s.Name))

	if h.connected != nil {
		h.connected()
	}
}

// SetUseExternal flips the server toggle and reloads the frame.
func (h *Handshake) SetUseExternal(external bool) {
	h.chooser.UseExternal = external
	h.frame.ShowChooser(h.chooser)

	if !external {
		h.load(Local)
		return
	}
	if h.chooser.Address == "" {
		h.logger.Debug("external server selected without address")
		return
	}
	h.load(External(h.chooser.Address))
}

// SetAddress records the typed server address without reloading.
func (h *Handshake) SetAddress(address string) {
	h.chooser.Address = address
}

// SubmitAddress reloads the frame from the typed address.
func (h *Handshake) SubmitAddress() error {
	if h.chooser.Address == "" {
		return model.ErrEmptyAddress
	}
	h.load(External(h.chooser.Address))
	return nil
}

// StoreAddress saves the chosen server in the address cookie. Choosing the
// local server stores the empty string.
func (h *Handshake) StoreAddress() error {
	if !h.chooser.UseExternal {
		return h.cache.SetAddress("")
	}
	if h.chooser.Address == "" {
		return model.ErrEmptyAddress
	}
	return h.cache.SetAddress(h.chooser.Address)
}

// HandleMessage processes a message posted by the frame. A nil message asks
// for the settings frame to close; anything else is a fresh dcid.
func (h *Handshake) HandleMessage(origin string, data *string) error {
	if !ValidOrigin(origin, h.frameAddress) {
		h.logger.Error("invalid message origin", slog.String("origin", origin), slog.String("frame", h.frameAddress))
		return fmt.Errorf("%w: %s", model.ErrInvalidOrigin, origin)
	}
	if data == nil {
		h.closeSettings()
		return nil
	}
	h.dcid = *data
	return nil
}

// OpenSettings shows the settings page of the current userdata server.
func (h *Handshake) OpenSettings() {
	h.settingsVisible = true
	h.src = SettingsURL(h.frameAddress, h.dcid)
	h.frame.Load(h.src)
}

// HandleEscape closes a visible settings frame and reports whether it did.
func (h *Handshake) HandleEscape() bool {
	if !h.settingsVisible {
		return false
	}
	h.closeSettings()
	return true
}

func (h *Handshake) closeSettings() {
	h.settingsVisible = false
	h.frame.Hide()
}

func (h *Handshake) load(target Target) {
	if target.External {
		h.frameAddress = target.Address
	} else {
		h.frameAddress = h.settings.LocalUserdata
	}
	h.src = BuildFrameURL(target, h.gameURL, h.gcid, h.dcid, h.settings)
	h.logger.Debug("loading frame", slog.String("src", h.src))
	h.frame.Load(h.src)
}

// Chooser returns the current chooser state
func (h *Handshake) Chooser() Chooser {
	return h.chooser
}

// Source returns the current frame source
func (h *Handshake) Source() string {
	return h.src
}

// FrameAddress returns the address of the server loaded in the frame
func (h *Handshake) FrameAddress() string {
	return h.frameAddress
}

// DCID returns the current device connection id
func (h *Handshake) DCID() string {
	return h.dcid
}

// SettingsVisible reports whether the settings frame is shown
func (h *Handshake) SettingsVisible() bool {
	return h.settingsVisible
}

// Handlers returns the calls the game server makes on the host page.
func (h *Handshake) Handlers() map[string]rpc.Handler {
	return map[string]rpc.Handler{
		"userdata_setup":     h.handleSetup,
		"userdata_translate": h.handleTranslate,
	}
}

func (h *Handshake) handleSetup(args []json.RawMessage, _ map[string]json.RawMessage) (any, error) {
	req, err := DecodeSetup(args)
	if err != nil {
		return nil, err
	}
	h.Setup(req)
	return nil, nil
}

func (h *Handshake) handleTranslate(args []json.RawMessage, _ map[string]json.RawMessage) (any, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("userdata_translate: expected 2 arguments, got %d", len(args))
	}
	var module, program i18n.Dictionary
	if err := json.Unmarshal(args[0], &module); err != nil {
		return nil, fmt.Errorf("userdata_translate: module strings: %w", err)
	}
	if err := json.Unmarshal(args[1], &program); err != nil {
		return nil, fmt.Errorf("userdata_translate: program strings: %w", err)
	}
	h.translator.SetDictionary(module)
	if h.program != nil {
		h.program.SetDictionary(program)
	}
	return nil, nil
}

// DecodeSetup parses the positional arguments of userdata_setup:
// default_url, game_url (null for the connected notification), settings,
// gcid and an optional dcid.
func DecodeSetup(args []json.RawMessage) (SetupRequest, error) {
	var req SetupRequest
	if len(args) < 3 {
		return req, fmt.Errorf("userdata_setup: expected at least 3 arguments, got %d", len(args))
	}
	if err := json.Unmarshal(args[0], &req.DefaultURL); err != nil {
		req.DefaultURL = ""
	}
	if err := json.Unmarshal(args[1], &req.HostGameURL); err != nil {
		return req, fmt.Errorf("userdata_setup: game url: %w", err)
	}
	if err := json.Unmarshal(args[2], &req.Settings); err != nil {
		return req, fmt.Errorf("userdata_setup: settings: %w", err)
	}
	if len(args) > 3 {
		var gcid *string
		if err := json.Unmarshal(args[3], &gcid); err == nil && gcid != nil {
			req.GCID = *gcid
		}
	}
	if len(args) > 4 {
		if err := json.Unmarshal(args[4], &req.DCID); err != nil {
			return req, fmt.Errorf("userdata_setup: dcid: %w", err)
		}
	}
	return req, nil
}

// Args renders req as the positional arguments of userdata_setup.
func (req SetupRequest) Args() []any {
	var gcid any
	if req.GCID != "" {
		gcid = req.GCID
	}
	var dcid any
	if req.DCID != nil {
		dcid = *req.DCID
	}
	var game any
	if req.HostGameURL != nil {
		game = *req.HostGameURL
	}
	var def any
	if req.HostGameURL != nil {
		def = req.DefaultURL
	}
	return []any{def, game, req.Settings, gcid, dcid}
}
