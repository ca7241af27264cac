package rpc

import (
	"fmt"
	"net/url"
	"path"
)

// WebsocketURL derives the websocket endpoint that serves a login surface.
// The last path element is replaced by "websocket" and the query is kept,
// so identifiers such as dcid reach the server.
func WebsocketURL(surface string) (string, error) {
	u, err := url.Parse(surface)
	if err != nil {
		return "", fmt.Errorf("invalid surface url: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
		return u.String(), nil
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported surface scheme %q", u.Scheme)
	}

	dir := path.Dir(u.Path)
	if u.Path == "" || u.Path[len(u.Path)-1] == '/' {
		dir = u.Path
	}
	u.Path = path.Join("/", dir, "websocket")
	u.Fragment = ""
	return u.String(), nil
}
