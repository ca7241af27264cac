package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/userdata-go/internal/api/apierr"
	"github.com/mcoot/userdata-go/internal/api/request"
	"github.com/mcoot/userdata-go/internal/api/response"
	"github.com/mcoot/userdata-go/internal/model"
	"github.com/mcoot/userdata-go/internal/services/link"
	"github.com/mcoot/userdata-go/internal/web/sse"
)

// LinkHandler handles the endpoints userdata servers call
type LinkHandler struct {
	links       *link.Service
	broadcaster *sse.Broadcaster
	logger      *slog.Logger
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(links *link.Service, broadcaster *sse.Broadcaster, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{
		links:       links,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Get handles GET /api/v1/links/{gcid}
func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	lnk, err := h.links.Get(r.Context(), mux.Vars(r)["gcid"])
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LinkFromModel(lnk))
}

// Connect handles POST /api/v1/links/{gcid}/connect
func (h *LinkHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req request.ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Invalid request body"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		apierr.WriteError(w, model.ErrEmptyPlayerName)
		return
	}

	lnk, note, err := h.links.Connect(r.Context(), mux.Vars(r)["gcid"], req.Name, req.Managed, req.Language)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	var title string
	if h.broadcaster != nil {
		title = h.broadcaster.BroadcastConnected(r.Context(), lnk, note)
	}

	response.JSON(w, http.StatusOK, response.ConnectResponse{
		GCID:    lnk.GCID,
		Name:    lnk.Name,
		Managed: lnk.Managed,
		Title:   title,
	})
}

// Logout handles POST /api/v1/links/{gcid}/logout
func (h *LinkHandler) Logout(w http.ResponseWriter, r *http.Request) {
	gcid := mux.Vars(r)["gcid"]
	lnk, req, err := h.links.Logout(r.Context(), gcid)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	if h.broadcaster != nil {
		h.broadcaster.BroadcastClosed(gcid)
	}

	response.JSON(w, http.StatusOK, response.LogoutResponseFromSetup(lnk, req))
}

// Delete handles DELETE /api/v1/links/{gcid}
func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	gcid := mux.Vars(r)["gcid"]
	if err := h.links.Close(r.Context(), gcid); err != nil {
		apierr.WriteError(w, err)
		return
	}
	if h.broadcaster != nil {
		h.broadcaster.BroadcastClosed(gcid)
	}
	response.NoContent(w)
}
