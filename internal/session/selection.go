package session

import (
	"strings"

	"github.com/mcoot/userdata-go/internal/model"
)

// AddNewIndex is the position of the "Add New" entry in the player list.
// Existing players follow it, so players[i] is shown at index i+1.
const AddNewIndex = 0

// Selection is the current state of the player picker.
type Selection struct {
	Index   int
	NewName string
}

// SelectionValid reports whether sel can be submitted against players.
func SelectionValid(sel Selection, players []model.PlayerRecord) bool {
	if sel.Index == AddNewIndex {
		return strings.TrimSpace(sel.NewName) != ""
	}
	return sel.Index > 0 && sel.Index <= len(players)
}

// InitialSelection preselects the default player, else the first player,
// else the "Add New" entry.
func InitialSelection(players []model.PlayerRecord) Selection {
	for i, p := range players {
		if p.IsDefault {
			return Selection{Index: i + 1}
		}
	}
	if len(players) > 0 {
		return Selection{Index: 1}
	}
	return Selection{Index: AddNewIndex}
}

// ChooseAutomatic picks the player the "play" shortcut connects as: the only
// player, or else the only default player.
func ChooseAutomatic(players []model.PlayerRecord) (string, bool) {
	if len(players) == 1 {
		return players[0].Name, true
	}

	var chosen string
	defaults := 0
	for _, p := range players {
		if p.IsDefault {
			chosen = p.Name
			defaults++
		}
	}
	if defaults == 1 {
		return chosen, true
	}
	return "", false
}

// ParseRegistrationName splits a "username:email" registration name.
func ParseRegistrationName(s string) (username, email string, err error) {
	user, mail, found := strings.Cut(s, ":")
	if !found {
		return "", "", model.ErrInvalidRegistrationName
	}
	username = strings.TrimSpace(user)
	email = strings.TrimSpace(mail)

	if username == "" || !strings.Contains(email, "@") {
		return "", "", model.ErrInvalidRegistrationName
	}
	return username, email, nil
}
