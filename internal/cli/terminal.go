package cli

import (
	"github.com/mcoot/userdata-go/internal/model"
	"github.com/mcoot/userdata-go/internal/session"
)

type viewEventKind int

const (
	eventLogin viewEventKind = iota
	eventPlayers
	eventAlert
	eventFatal
	eventConnected
	eventHidden
	eventNotify
	eventSettings
)

type viewEvent struct {
	kind      viewEventKind
	form      session.LoginForm
	name      string
	players   []model.PlayerRecord
	selection session.Selection
	message   string
	connected bool
	gcid      *string
	settings  model.SettingsSnapshot
	languages []string
}

// terminalView implements session.View, session.SettingsView and
// session.Parent by forwarding every call to the prompt goroutine. Methods
// run on the controller loop and never block on input.
type terminalView struct {
	events chan viewEvent
	name   string
}

var (
	_ session.View         = (*terminalView)(nil)
	_ session.Parent       = (*terminalView)(nil)
	_ session.SettingsView = (*terminalView)(nil)
)

func newTerminalView() *terminalView {
	return &terminalView{events: make(chan viewEvent, 32)}
}

func (v *terminalView) ShowLogin(form session.LoginForm) {
	v.events <- viewEvent{kind: eventLogin, form: form, name: v.name}
}

func (v *terminalView) FocusName() {}

func (v *terminalView) SetName(name string) {
	v.name = name
}

func (v *terminalView) ClearPassword() {}

func (v *terminalView) ShowPlayers(players []model.PlayerRecord, selection session.Selection) {
	v.events <- viewEvent{kind: eventPlayers, players: players, selection: selection}
}

func (v *terminalView) SetSelectEnabled(bool) {}

func (v *terminalView) SetConnected(connected bool) {
	v.events <- viewEvent{kind: eventConnected, connected: connected}
}

func (v *terminalView) Alert(message string) {
	v.events <- viewEvent{kind: eventAlert, message: message}
}

func (v *terminalView) Fatal(message string) {
	v.events <- viewEvent{kind: eventFatal, message: message}
}

func (v *terminalView) Hide() {
	v.events <- viewEvent{kind: eventHidden}
}

func (v *terminalView) Notify(gcid *string) {
	v.events <- viewEvent{kind: eventNotify, gcid: gcid}
}

func (v *terminalView) ShowSettings(settings model.SettingsSnapshot, languages []string) {
	v.events <- viewEvent{kind: eventSettings, settings: settings, languages: languages}
}
