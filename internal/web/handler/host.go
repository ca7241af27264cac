package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mcoot/userdata-go/internal/i18n"
	"github.com/mcoot/userdata-go/internal/model"
	"github.com/mcoot/userdata-go/internal/services/link"
	"github.com/mcoot/userdata-go/internal/web/middleware"
	"github.com/mcoot/userdata-go/internal/web/sse"
	"github.com/mcoot/userdata-go/internal/web/templates/components"
	"github.com/mcoot/userdata-go/internal/web/templates/layout"
	"github.com/mcoot/userdata-go/internal/web/templates/pages"
)

// HostHandler serves the page that embeds the login frame
type HostHandler struct {
	links       *link.Service
	catalogs    i18n.Catalogs
	hubManager  *sse.HubManager
	broadcaster *sse.Broadcaster
	logger      *slog.Logger
}

// NewHostHandler creates a new HostHandler
func NewHostHandler(links *link.Service, catalogs i18n.Catalogs, hubManager *sse.HubManager, logger *slog.Logger) *HostHandler {
	return &HostHandler{
		links:       links,
		catalogs:    catalogs,
		hubManager:  hubManager,
		broadcaster: sse.NewBroadcaster(hubManager, catalogs, logger),
		logger:      logger.With(slog.String("component", "web")),
	}
}

// Page handles GET /: opens a link and renders the host page around it.
// A "logout" query parameter makes the frame log the player out.
func (h *HostHandler) Page(w http.ResponseWriter, r *http.Request) {
	lnk, req, err := h.links.Open(r.Context(), r.URL.Query().Has("logout"))
	if err != nil {
		h.logger.Error("failed to open link", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	v := newHostView(w, r, h.catalogs, h.logger)
	v.handshake.Setup(req)
	h.renderPage(w, r, v, lnk.GCID, middleware.GetFlash(r.Context()))
}

// Frame handles POST /userdata/frame: the chooser toggle or address
// submit. It re-renders the frame fragment.
func (h *HostHandler) Frame(w http.ResponseWriter, r *http.Request) {
	v, gcid, ok := h.chooserView(w, r)
	if !ok {
		return
	}

	status := http.StatusOK
	var flash *layout.FlashMessage
	if v.handshake.Chooser().UseExternal {
		if err := v.handshake.SubmitAddress(); err != nil {
			status = http.StatusBadRequest
			flash = &layout.FlashMessage{Type: "error", Message: v.translator.Translate("Please enter a userdata server address")}
		}
	}
	h.renderFrame(w, r, v, gcid, flash, status)
}

// Address handles POST /userdata/address: stores the chosen server in the
// address cookie and reloads the frame from it.
func (h *HostHandler) Address(w http.ResponseWriter, r *http.Request) {
	v, gcid, ok := h.chooserView(w, r)
	if !ok {
		return
	}

	if err := v.handshake.StoreAddress(); err != nil {
		if !errors.Is(err, model.ErrEmptyAddress) {
			h.logger.Error("failed to store address", slog.Any("error", err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		flash := &layout.FlashMessage{Type: "error", Message: v.translator.Translate("Please enter a userdata server address")}
		h.renderFrame(w, r, v, gcid, flash, http.StatusBadRequest)
		return
	}

	if v.handshake.Chooser().UseExternal {
		_ = v.handshake.SubmitAddress()
	}
	flash := &layout.FlashMessage{Type: "success", Message: v.translator.Translate("Server details stored")}
	h.renderFrame(w, r, v, gcid, flash, http.StatusOK)
}

// chooserView rebuilds the host view for the posted link and applies the
// posted chooser fields. It writes the error response itself when it
// returns false.
func (h *HostHandler) chooserView(w http.ResponseWriter, r *http.Request) (*hostView, string, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return nil, "", false
	}

	gcid := r.FormValue("gcid")
	v, _, ok := h.linkView(w, r, gcid)
	if !ok {
		return nil, "", false
	}

	chooser := v.handshake.Chooser()
	v.handshake.SetAddress(strings.TrimSpace(r.FormValue("address")))
	useExternal := r.FormValue("use_external") != ""
	if chooser.ShowToggle && useExternal != chooser.UseExternal {
		v.handshake.SetUseExternal(useExternal)
	}
	return v, gcid, true
}

// linkView loads gcid and replays its setup request against a fresh host
// view. It writes the error response itself when it returns false.
func (h *HostHandler) linkView(w http.ResponseWriter, r *http.Request, gcid string) (*hostView, *model.Link, bool) {
	lnk, err := h.links.Get(r.Context(), gcid)
	if err != nil {
		if errors.Is(err, model.ErrLinkNotFound) {
			http.Error(w, "Link not found", http.StatusNotFound)
		} else {
			h.logger.Error("failed to load link", slog.Any("error", err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return nil, nil, false
	}

	v := newHostView(w, r, h.catalogs, h.logger)
	v.handshake.Setup(h.links.SetupRequest(lnk))
	return v, lnk, true
}

// Menu handles POST /userdata/menu: a selected overlay row, a key press or
// a message relayed from the frame. The page state is rebuilt from the
// link and the posted visible and settings fields before the input runs.
// It re-renders the frame and menu fragments, or redirects like
// /userdata/logout when the Logout row was chosen.
func (h *HostHandler) Menu(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	gcid := r.FormValue("gcid")
	v, lnk, ok := h.linkView(w, r, gcid)
	if !ok {
		return
	}
	if lnk.IsActive() {
		v.handshake.Setup(link.ConnectedNotification(lnk))
	}
	if r.FormValue("settings") != "" && v.handshake.DCID() != "" {
		v.handshake.OpenSettings()
	}
	if r.FormValue("visible") != "" {
		v.overlay.Show()
	}

	switch {
	case r.Form.Has("index"):
		i, err := strconv.Atoi(r.FormValue("index"))
		if err == nil {
			err = v.overlay.Select(i)
		}
		if err != nil {
			h.logger.Debug("menu selection rejected", slog.String("gcid", gcid), slog.Any("error", err))
			http.Error(w, "Invalid menu row", http.StatusBadRequest)
			return
		}
	case r.Form.Has("key"):
		v.overlay.HandleKey(r.FormValue("key"))
	case r.Form.Has("origin"):
		var data *string
		if r.Form.Has("data") {
			d := r.FormValue("data")
			data = &d
		}
		if err := v.handshake.HandleMessage(r.FormValue("origin"), data); err != nil {
			http.Error(w, "Invalid message origin", http.StatusForbidden)
			return
		}
	}

	if v.loggedOut {
		h.logout(w, r, gcid)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := components.Frame(v.frameData(gcid, nil)).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render frame", slog.Any("error", err))
		return
	}
	if err := components.Menu(v.menuData(gcid)).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render menu", slog.Any("error", err))
	}
}

// Logout handles POST /userdata/logout: revokes the posted link and
// redirects to a fresh host page whose frame logs the player out.
func (h *HostHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	h.logout(w, r, r.FormValue("gcid"))
}

func (h *HostHandler) logout(w http.ResponseWriter, r *http.Request, gcid string) {
	if err := h.links.Close(r.Context(), gcid); err != nil {
		h.logger.Error("failed to close link", slog.String("gcid", gcid), slog.Any("error", err))
		middleware.SetFlash(w, "error", "Failed to log out")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.broadcaster.BroadcastClosed(gcid)

	middleware.SetFlash(w, "info", "Logged out")
	http.Redirect(w, r, "/?logout=1", http.StatusSeeOther)
}

// Events handles GET /userdata/events: the SSE stream for one link
func (h *HostHandler) Events(w http.ResponseWriter, r *http.Request) {
	gcid := r.URL.Query().Get("gcid")
	if _, err := h.links.Get(r.Context(), gcid); err != nil {
		http.Error(w, "Link not found", http.StatusNotFound)
		return
	}

	sse.ServeSSE(w, r, h.hubManager.GetOrCreateHub(gcid))
}

func (h *HostHandler) renderPage(w http.ResponseWriter, r *http.Request, v *hostView, gcid string, flash *layout.FlashMessage) {
	data := pages.HostData{
		PageData: layout.PageData{
			Title: v.translator.Translate("Log in"),
			Lang:  v.lang,
			Flash: flash,
		},
		GCID:  gcid,
		Frame: v.frameData(gcid, nil),
		Menu:  v.menuData(gcid),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Host(data).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render host page", slog.Any("error", err))
	}
}

func (h *HostHandler) renderFrame(w http.ResponseWriter, r *http.Request, v *hostView, gcid string, flash *layout.FlashMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := components.Frame(v.frameData(gcid, flash)).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render frame", slog.Any("error", err))
	}
}
