package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/userdata-go/internal/dependencies/mocks"
	"github.com/mcoot/userdata-go/internal/i18n"
	"github.com/mcoot/userdata-go/internal/services/link"
	"github.com/mcoot/userdata-go/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp(linkCfg link.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, mockRandom, linkCfg, TestCatalogs(), logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// TestCatalogs is a small Dutch catalog covering the host page strings
func TestCatalogs() i18n.Catalogs {
	return i18n.Catalogs{
		"nl": {
			"Continue":                               "Doorgaan",
			"Settings":                               "Instellingen",
			"Logout":                                 "Uitloggen",
			"Log in":                                 "Inloggen",
			"Logged in as $1 (external)":             "Ingelogd als $1 (extern)",
			"Logged in as $1 (login name: $2)":       "Ingelogd als $1 (loginnaam: $2)",
			"Use external userdata server":           "Externe gebruikersserver gebruiken",
			"Userdata Address: ":                     "Serveradres: ",
			"Store server details in cookie":         "Servergegevens in cookie opslaan",
			"Please enter a userdata server address": "Vul een serveradres in",
			"Server details stored":                  "Servergegevens opgeslagen",
		},
	}
}
