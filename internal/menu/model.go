// Package menu implements the in-game overlay menu that wraps a host's own
// entries with the login title, continue, settings and logout entries.
package menu

import "github.com/mcoot/userdata-go/internal/i18n"

// Entry is one line of the menu. An entry with no Action is shown as plain
// text; a disabled entry is not shown at all.
type Entry struct {
	Text    string
	Action  func()
	Enabled bool
}

// Row is a rendered entry
type Row struct {
	Text       string
	Actionable bool
}

// Model is the ordered entry list: title and continue, the caller's entries,
// then settings and logout. The list is assembled exactly once.
type Model struct {
	Title    *Entry
	Continue *Entry
	Settings *Entry
	Logout   *Entry

	entries []*Entry

	titleKey  string
	titleArgs []string
}

// NewModel assembles the menu around middle. Title, settings and logout start
// disabled until a player connects.
func NewModel(middle ...*Entry) *Model {
	m := &Model{
		Title:    &Entry{},
		Continue: &Entry{Text: "Continue", Action: func() {}, Enabled: true},
		Settings: &Entry{Text: "Settings"},
		Logout:   &Entry{Text: "Logout"},
	}

	m.entries = make([]*Entry, 0, len(middle)+4)
	m.entries = append(m.entries, m.Title, m.Continue)
	m.entries = append(m.entries, middle...)
	m.entries = append(m.entries, m.Settings, m.Logout)
	return m
}

// Entries returns every entry in menu order, including disabled ones.
func (m *Model) Entries() []*Entry {
	return append([]*Entry(nil), m.entries...)
}

// Visible returns the enabled entries in menu order.
func (m *Model) Visible() []*Entry {
	visible := make([]*Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if e.Enabled {
			visible = append(visible, e)
		}
	}
	return visible
}

// Rows renders the enabled entries.
func (m *Model) Rows() []Row {
	visible := m.Visible()
	rows := make([]Row, len(visible))
	for i, e := range visible {
		rows[i] = Row{Text: e.Text, Actionable: e.Action != nil}
	}
	return rows
}

// SetTitle enables the title and sets it from a translation key. The key and
// arguments are kept so Retranslate can redo it.
func (m *Model) SetTitle(t *i18n.Translator, key string, args ...string) {
	m.titleKey = key
	m.titleArgs = args
	m.Title.Text = t.Translate(key, args...)
	m.Title.Enabled = true
}

// Retranslate refreshes the texts of the fixed entries.
func (m *Model) Retranslate(t *i18n.Translator) {
	m.Continue.Text = t.Translate("Continue")
	m.Settings.Text = t.Translate("Settings")
	m.Logout.Text = t.Translate("Logout")
	if m.titleKey != "" {
		m.Title.Text = t.Translate(m.titleKey, m.titleArgs...)
	}
}
