package embed

import (
	"net/url"
	"regexp"
)

// Target selects which userdata server the login frame points at. The zero
// value is the local server.
type Target struct {
	External bool
	Address  string
}

// Local is the local userdata server target
var Local = Target{}

// External returns the target for an external userdata server
func External(address string) Target {
	return Target{External: true, Address: address}
}

// BuildFrameURL is the login frame source for target. Identical inputs give
// identical output.
func BuildFrameURL(target Target, gameURL, gcid, dcid string, settings Settings) string {
	if !target.External {
		src := settings.LocalUserdata + "/login.html?dcid=" + url.QueryEscape(dcid)
		if settings.AllowNewPlayers {
			src += "&allow-new-players=1"
		}
		if settings.Logout {
			src += "&logout=1"
		}
		return src
	}

	src := target.Address + "/login.html?url=" + url.QueryEscape(gameURL) + "&gcid=" + url.QueryEscape(gcid)
	if settings.Logout {
		src += "&logout=1"
	}
	return src
}

// SettingsURL is the settings frame source on the userdata server at address.
func SettingsURL(address, dcid string) string {
	return address + "/settings.html?settings=" + url.QueryEscape(dcid)
}

var originPattern = regexp.MustCompile(`([a-z]+://[^/]+)`)

// OriginOf returns scheme://host of address, or "" when it has none.
func OriginOf(address string) string {
	m := originPattern.FindStringSubmatch(address)
	if m == nil {
		return ""
	}
	return m[1]
}

// ValidOrigin reports whether a message from origin may come from a frame
// loaded from frameAddress.
func ValidOrigin(origin, frameAddress string) bool {
	host := OriginOf(frameAddress)
	return host != "" && origin == host
}
