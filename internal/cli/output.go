package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Link:
		o.printLink(v)
	case ConnectResult:
		o.printConnectResult(v)
	case LogoutResult:
		o.printLogoutResult(v)
	case LoginResult:
		o.printLoginResult(v)
	case FrameURL:
		fmt.Fprintln(o.w, v.URL)
	case HealthResult:
		o.printHealthResult(v)
	case SettingsResult:
		o.printSettingsResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Link response type (matches API)
type Link struct {
	GCID        string     `json:"gcid"`
	State       string     `json:"state"`
	Name        string     `json:"name,omitempty"`
	Managed     *string    `json:"managed,omitempty"`
	Language    string     `json:"language,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
}

// ConnectResult response type
type ConnectResult struct {
	GCID    string  `json:"gcid"`
	Name    string  `json:"name"`
	Managed *string `json:"managed"`
	Title   string  `json:"title"`
}

// LogoutResult response type
type LogoutResult struct {
	GCID  string            `json:"gcid"`
	Setup []json.RawMessage `json:"setup"`
}

// LoginResult is printed when an interactive login finishes
type LoginResult struct {
	Mode string  `json:"mode"`
	GCID *string `json:"gcid"`
}

// SettingsResult is the outcome of the settings flow
type SettingsResult struct {
	LoginName string `json:"loginname"`
	FullName  string `json:"fullname"`
	Language  string `json:"language"`
}

// FrameURL is the computed login frame source
type FrameURL struct {
	URL string `json:"url"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printLink(l Link) {
	fmt.Fprintf(o.w, "Link: %s\n", l.GCID)
	fmt.Fprintf(o.w, "State: %s\n", l.State)
	if l.Name != "" {
		fmt.Fprintf(o.w, "Player: %s\n", l.Name)
	}
	if l.Managed != nil {
		fmt.Fprintf(o.w, "Login name: %s\n", *l.Managed)
	}
	if l.Language != "" {
		fmt.Fprintf(o.w, "Language: %s\n", l.Language)
	}
	fmt.Fprintf(o.w, "Created: %s\n", l.CreatedAt.Format(time.RFC3339))
	if l.ActivatedAt != nil {
		fmt.Fprintf(o.w, "Activated: %s\n", l.ActivatedAt.Format(time.RFC3339))
	}
}

func (o *Output) printConnectResult(r ConnectResult) {
	fmt.Fprintf(o.w, "Connected %s to link %s\n", r.Name, r.GCID)
	if r.Title != "" {
		fmt.Fprintf(o.w, "Title: %s\n", r.Title)
	}
}

func (o *Output) printLogoutResult(r LogoutResult) {
	fmt.Fprintf(o.w, "Logged out. Replacement link: %s\n", r.GCID)
}

func (o *Output) printLoginResult(r LoginResult) {
	if r.GCID == nil {
		fmt.Fprintln(o.w, "Logged in")
		return
	}
	fmt.Fprintf(o.w, "Connected: %s\n", *r.GCID)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}

func (o *Output) printSettingsResult(r SettingsResult) {
	fmt.Fprintf(o.w, "Settings saved for %s\n", r.LoginName)
	fmt.Fprintf(o.w, "Full name: %s\n", r.FullName)
	if r.Language != "" {
		fmt.Fprintf(o.w, "Language: %s\n", r.Language)
	}
}
