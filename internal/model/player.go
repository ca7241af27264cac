package model

// Credentials is a name/password pair as entered on the login form.
type Credentials struct {
	Name     string
	Password string
}

// PlayerRecord is one player owned by a logged-in user on a given host.
type PlayerRecord struct {
	Name      string `json:"name"`
	FullName  string `json:"fullname"`
	IsDefault bool   `json:"is_default"`
}

// SettingsSnapshot is the editable subset of a player's settings.
type SettingsSnapshot struct {
	LoginName string `json:"loginname"`
	FullName  string `json:"fullname"`
	Language  string `json:"language"`
}

// ServerSettings is the reply to get_settings.
type ServerSettings struct {
	AllowNewUsers bool `json:"allow-new-users"`
}
