package link

import "github.com/mcoot/userdata-go/internal/model"

// Config describes which userdata servers the host offers to its players
type Config struct {
	// GameURL is sent to external userdata servers; empty means "the host page itself".
	GameURL string
	// DefaultUserdata is the external server preselected in the chooser.
	DefaultUserdata string
	// LocalUserdata is the address of the host's own userdata server.
	LocalUserdata string

	AllowLocal      bool
	AllowOther      bool
	AllowNewPlayers bool
}

// DefaultConfig offers the local server only
func DefaultConfig() Config {
	return Config{
		LocalUserdata: "/userdata",
		AllowLocal:    true,
		AllowOther:    true,
	}
}

// Validate checks that players have at least one server to log in with.
func (c Config) Validate() error {
	if c.DefaultUserdata == "" && !c.AllowLocal {
		return model.ErrNoUserdataServer
	}
	return nil
}
