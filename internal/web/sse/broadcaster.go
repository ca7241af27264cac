package sse

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/userdata-go/internal/credcache"
	"github.com/mcoot/userdata-go/internal/embed"
	"github.com/mcoot/userdata-go/internal/i18n"
	"github.com/mcoot/userdata-go/internal/menu"
	"github.com/mcoot/userdata-go/internal/model"
	"github.com/mcoot/userdata-go/internal/web/templates/components"
)

// ConnectedEvent is the payload of the "connected" event
type ConnectedEvent struct {
	GCID  string `json:"gcid"`
	Title string `json:"title"`
	Menu  string `json:"menu"`
}

// Broadcaster pushes link updates to the host pages watching them
type Broadcaster struct {
	hubManager *HubManager
	catalogs   i18n.Catalogs
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, catalogs i18n.Catalogs, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		catalogs:   catalogs,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// BroadcastConnected replays the connected notification against a fresh menu
// in the link's language, sends the rendered menu to the link's host pages
// and returns the menu title.
func (b *Broadcaster) BroadcastConnected(ctx context.Context, link *model.Link, note embed.SetupRequest) string {
	m := ConnectedMenu(b.catalogs, link, note, b.logger)

	hub := b.hubManager.GetHub(link.GCID)
	if hub == nil {
		return m.Title.Text
	}

	var buf bytes.Buffer
	if err := components.Menu(components.MenuData{GCID: link.GCID, Rows: m.Rows()}).Render(ctx, &buf); err != nil {
		b.logger.Error("sse failed to render menu",
			slog.String("gcid", link.GCID),
			slog.Any("error", err))
		return m.Title.Text
	}

	data, err := json.Marshal(ConnectedEvent{GCID: link.GCID, Title: m.Title.Text, Menu: buf.String()})
	if err != nil {
		b.logger.Error("sse failed to encode event", slog.Any("error", err))
		return m.Title.Text
	}
	hub.BroadcastEvent("connected", string(data))
	return m.Title.Text
}

// BroadcastClosed tells host pages the link was revoked and drops its hub.
func (b *Broadcaster) BroadcastClosed(gcid string) {
	hub := b.hubManager.GetHub(gcid)
	if hub == nil {
		return
	}
	hub.BroadcastEvent("closed", gcid)
	b.hubManager.RemoveHub(gcid)
}

// ConnectedMenu is the overlay menu a host page shows once note has been
// delivered for link. Its actions are inert; a selected row is run by the
// host handler against the link's own state.
func ConnectedMenu(catalogs i18n.Catalogs, link *model.Link, note embed.SetupRequest, logger *slog.Logger) *menu.Model {
	t := i18n.New(logger)
	if dict, ok := catalogs.Lookup(link.Language); ok {
		t.SetDictionary(dict)
	}

	m := menu.NewModel()
	h := embed.NewHandshake(embed.Config{
		Frame:      discardFrame{},
		Cache:      credcache.New(credcache.NewMemoryStore()),
		Translator: t,
		Menu:       m,
		Logout:     func() {},
		Logger:     logger,
	})
	if link.DCID != "" {
		dcid := link.DCID
		note.DCID = &dcid
	}
	h.Setup(note)
	return m
}

type discardFrame struct{}

func (discardFrame) ShowChooser(embed.Chooser) {}
func (discardFrame) Load(string)               {}
func (discardFrame) Hide()                     {}
