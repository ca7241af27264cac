package session

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mcoot/userdata-go/internal/i18n"
	"github.com/mcoot/userdata-go/internal/model"
	"github.com/mcoot/userdata-go/internal/rpc"
)

// SettingsView renders the player settings form
type SettingsView interface {
	ShowSettings(settings model.SettingsSnapshot, languages []string)
}

// SettingsConfig holds the dependencies of a SettingsFlow
type SettingsConfig struct {
	Translator *i18n.Translator
	Catalogs   i18n.Catalogs
	View       SettingsView
	Parent     Parent
	Logger     *slog.Logger
}

// SettingsFlow is the settings page shown in place of the login frame.
// The server pushes the current snapshot; saving sends it back and asks the
// parent to close the frame.
type SettingsFlow struct {
	translator *i18n.Translator
	catalogs   i18n.Catalogs
	view       SettingsView
	parent     Parent
	logger     *slog.Logger

	caller  Caller
	current model.SettingsSnapshot
}

// NewSettingsFlow creates a SettingsFlow
func NewSettingsFlow(cfg SettingsConfig) *SettingsFlow {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsFlow{
		translator: cfg.Translator,
		catalogs:   cfg.Catalogs,
		view:       cfg.View,
		parent:     cfg.Parent,
		logger:     logger.With(slog.String("component", "settings")),
	}
}

// Attach replaces the RPC session
func (f *SettingsFlow) Attach(caller Caller) {
	f.caller = caller
}

// Handlers returns the calls the server makes on the settings page.
func (f *SettingsFlow) Handlers() map[string]rpc.Handler {
	return map[string]rpc.Handler{
		"update_settings": func(args []json.RawMessage, _ map[string]json.RawMessage) (any, error) {
			if len(args) < 1 {
				return nil, fmt.Errorf("update_settings: missing settings")
			}
			var snapshot model.SettingsSnapshot
			if err := json.Unmarshal(args[0], &snapshot); err != nil {
				return nil, fmt.Errorf("update_settings: %w", err)
			}
			f.Update(snapshot)
			return nil, nil
		},
	}
}

// Current returns the last snapshot received or saved
func (f *SettingsFlow) Current() model.SettingsSnapshot {
	return f.current
}

// Update applies a snapshot pushed by the server.
func (f *SettingsFlow) Update(snapshot model.SettingsSnapshot) {
	languageChanged := snapshot.Language != f.current.Language
	f.current = snapshot
	if languageChanged {
		f.applyLanguage(snapshot.Language)
	}
	f.view.ShowSettings(snapshot, f.catalogs.Languages())
}

// Save sends the edited settings to the server, switches language when it
// changed and closes the settings frame.
func (f *SettingsFlow) Save(fullName, language string) {
	languageChanged := language != f.current.Language
	f.current.FullName = fullName
	f.current.Language = language

	if f.caller != nil {
		f.caller.Call("set_player_settings", nil, map[string]any{"name": fullName, "language": language}, nil)
	} else {
		f.logger.Error("no session attached, settings not saved")
	}

	if languageChanged {
		f.applyLanguage(language)
	}
	f.parent.Notify(nil)
}

// Cancel closes the settings frame without saving
func (f *SettingsFlow) Cancel() {
	f.parent.Notify(nil)
}

func (f *SettingsFlow) applyLanguage(language string) {
	dict, ok := f.catalogs.Lookup(language)
	if !ok && language != "" {
		f.logger.Warn("no catalog for language", slog.String("language", language))
	}
	f.translator.SetDictionary(dict)
}
