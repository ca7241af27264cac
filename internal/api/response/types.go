package response

import (
	"time"

	"github.com/mcoot/userdata-go/internal/embed"
	"github.com/mcoot/userdata-go/internal/model"
)

// Link represents a link in API responses
type Link struct {
	GCID        string     `json:"gcid"`
	State       string     `json:"state"`
	Name        string     `json:"name,omitempty"`
	Managed     *string    `json:"managed,omitempty"`
	Language    string     `json:"language,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
}

// LinkFromModel converts a model.Link to a response Link. The dcid stays
// private to the host page.
func LinkFromModel(l *model.Link) Link {
	return Link{
		GCID:        l.GCID,
		State:       string(l.State),
		Name:        l.Name,
		Managed:     l.Managed,
		Language:    l.Language,
		CreatedAt:   l.CreatedAt,
		ActivatedAt: l.ActivatedAt,
	}
}

// ConnectResponse is the response for a successful connect
type ConnectResponse struct {
	GCID    string  `json:"gcid"`
	Name    string  `json:"name"`
	Managed *string `json:"managed"`
	Title   string  `json:"title"`
}

// LogoutResponse carries the replacement link and the userdata_setup
// arguments that point a login frame at it
type LogoutResponse struct {
	GCID  string `json:"gcid"`
	Setup []any  `json:"setup"`
}

// LogoutResponseFromSetup builds a LogoutResponse
func LogoutResponseFromSetup(l *model.Link, req embed.SetupRequest) LogoutResponse {
	return LogoutResponse{GCID: l.GCID, Setup: req.Args()}
}

// HealthResponse is the response for the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}
