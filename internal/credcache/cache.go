// Package credcache persists the last successful login and the chosen
// userdata server address between visits.
package credcache

import (
	"fmt"

	"github.com/mcoot/userdata-go/internal/model"
)

// Keys under which values are stored. They double as cookie names.
const (
	KeyName     = "userdata_name"
	KeyPassword = "userdata_password"
	KeyAddress  = "userdata_address"
)

// Cache holds at most one credential pair plus the stored server address.
type Cache struct {
	store Store
}

// New creates a Cache over the given store
func New(store Store) *Cache {
	return &Cache{store: store}
}

// Load returns the cached credentials. ok is true only when both the name
// and the password are present.
func (c *Cache) Load() (creds model.Credentials, ok bool) {
	name, hasName := c.store.Get(KeyName)
	password, hasPassword := c.store.Get(KeyPassword)
	if !hasName || !hasPassword {
		return model.Credentials{}, false
	}
	return model.Credentials{Name: name, Password: password}, true
}

// Save replaces the cached credential pair.
func (c *Cache) Save(creds model.Credentials) error {
	if err := c.store.Set(KeyName, creds.Name); err != nil {
		return fmt.Errorf("failed to store name: %w", err)
	}
	if err := c.store.Set(KeyPassword, creds.Password); err != nil {
		return fmt.Errorf("failed to store password: %w", err)
	}
	return nil
}

// Clear removes both credential fields. The stored address is kept.
func (c *Cache) Clear() error {
	if err := c.store.Delete(KeyName); err != nil {
		return fmt.Errorf("failed to clear name: %w", err)
	}
	if err := c.store.Delete(KeyPassword); err != nil {
		return fmt.Errorf("failed to clear password: %w", err)
	}
	return nil
}

// Address returns the stored userdata server address. An empty address with
// ok true means local login was explicitly chosen.
func (c *Cache) Address() (address string, ok bool) {
	return c.store.Get(KeyAddress)
}

// SetAddress stores the userdata server address.
func (c *Cache) SetAddress(address string) error {
	return c.store.Set(KeyAddress, address)
}
