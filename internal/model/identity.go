package model

import "net/url"

// Mode identifies which flavour of login the surface was opened for
type Mode string

const (
	ModeManaged           Mode = "managed"  // host-managed identity, dcid supplied
	ModeExternal          Mode = "external" // external userdata, url + gcid supplied
	ModeDirectUnsupported Mode = "direct"   // opened without either
)

// IdentityContext is the immutable result of parsing the login surface query.
type IdentityContext struct {
	Mode               Mode
	RequestOrigin      string // host game url, external mode
	DeviceConnectionID string // dcid, managed mode
	GameConnectionID   string // gcid, external mode
	Logout             bool
	AllowNewPlayers    bool
}

// ParseIdentity builds an IdentityContext from login surface query parameters.
// token is accepted as an alias for dcid, id for gcid and allow-new-users for
// allow-new-players. A dcid takes precedence over url.
func ParseIdentity(q url.Values) IdentityContext {
	id := IdentityContext{
		Logout:          q.Has("logout"),
		AllowNewPlayers: q.Has("allow-new-players") || q.Has("allow-new-users"),
	}

	dcid := firstOf(q, "dcid", "token")
	switch {
	case dcid != "":
		id.Mode = ModeManaged
		id.DeviceConnectionID = dcid
	case q.Get("url") != "":
		id.Mode = ModeExternal
		id.RequestOrigin = q.Get("url")
		id.GameConnectionID = firstOf(q, "gcid", "id")
	default:
		id.Mode = ModeDirectUnsupported
	}
	return id
}

func firstOf(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// Managed reports whether the identity is host-managed.
func (id IdentityContext) Managed() bool {
	return id.Mode == ModeManaged
}
