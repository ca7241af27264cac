package session

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/userdata-go/internal/credcache"
	"github.com/mcoot/userdata-go/internal/i18n"
	"github.com/mcoot/userdata-go/internal/model"
	"github.com/mcoot/userdata-go/internal/testutil"
)

const gameURL = "https://game.example/play"

type ControllerSuite struct {
	suite.Suite
	cache  *credcache.Cache
	caller *fakeCaller
	view   *fakeView
	parent *fakeParent
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.cache = credcache.New(credcache.NewMemoryStore())
	s.caller = &fakeCaller{}
	s.view = &fakeView{}
	s.parent = &fakeParent{}
}

func externalIdentity() model.IdentityContext {
	return model.IdentityContext{Mode: model.ModeExternal, RequestOrigin: gameURL, GameConnectionID: "g1"}
}

func managedIdentity() model.IdentityContext {
	return model.IdentityContext{Mode: model.ModeManaged, DeviceConnectionID: "d1", AllowNewPlayers: true}
}

func (s *ControllerSuite) newController(id model.IdentityContext) *Controller {
	c := NewController(Config{
		Identity:   id,
		Cache:      s.cache,
		Translator: i18n.New(testutil.NopLogger()),
		View:       s.view,
		Parent:     s.parent,
		Logger:     testutil.NopLogger(),
	})
	c.Start()
	c.Attach(s.caller)
	return c
}

// openExternal starts an external controller and answers get_settings.
func (s *ControllerSuite) openExternal(allowNewUsers bool) *Controller {
	c := s.newController(externalIdentity())
	c.HandleOpened()
	s.caller.last("get_settings").respond(map[string]bool{"allow-new-users": allowNewUsers})
	return c
}

func (s *ControllerSuite) players() []model.PlayerRecord {
	return []model.PlayerRecord{
		{Name: "alice", FullName: "Alice"},
		{Name: "al", FullName: "Al", IsDefault: true},
	}
}

// Start

func (s *ControllerSuite) TestStartEntersConnecting() {
	c := s.newController(externalIdentity())
	s.Equal(StateConnecting, c.State())
	s.Empty(s.caller.calls)
}

func (s *ControllerSuite) TestDirectLoginUnsupported() {
	c := s.newController(model.IdentityContext{Mode: model.ModeDirectUnsupported})

	s.Equal(StateUnsupported, c.State())
	s.Equal("Direct login is not supported", s.view.fatal)

	c.HandleOpened()
	s.Equal(StateUnsupported, c.State())
	s.Empty(s.caller.calls)
}

func (s *ControllerSuite) TestLogoutClearsCacheBeforeOpened() {
	s.Require().NoError(s.cache.Save(model.Credentials{Name: "alice", Password: "pw"}))
	id := externalIdentity()
	id.Logout = true

	c := s.newController(id)
	c.HandleOpened()

	_, ok := s.cache.Load()
	s.False(ok)
	s.Equal(0, s.caller.count("login_user"))
	s.Equal(StateAwaitingInput, c.State())
}

// Opened without cache

func (s *ControllerSuite) TestOpenedWithoutCacheAwaitsInput() {
	c := s.openExternal(false)

	s.Equal(StateAwaitingInput, c.State())
	s.True(s.view.connected)
	s.Contains(s.view.events, "focus")
	s.True(s.view.form.PlayAvailable)
	s.False(s.view.form.RegisterAllowed)
}

func (s *ControllerSuite) TestServerSettingsEnableRegistration() {
	c := s.openExternal(true)

	s.Equal(StateAwaitingInput, c.State())
	s.True(s.view.form.RegisterAllowed)
}

func (s *ControllerSuite) TestManagedFormHasNoPlay() {
	c := s.newController(managedIdentity())
	c.HandleOpened()

	s.Equal(0, s.caller.count("get_settings"))
	s.False(s.view.form.PlayAvailable)
	s.True(s.view.form.RegisterAllowed)
}

// Auto-login

func (s *ControllerSuite) TestAutoLoginIssuesExactlyOneLogin() {
	s.Require().NoError(s.cache.Save(model.Credentials{Name: "alice", Password: "pw"}))

	c := s.newController(externalIdentity())
	c.HandleOpened()

	s.Equal(StateAutoLogin, c.State())
	s.Equal(1, s.caller.count("login_user"))
	s.Equal([]any{0, "alice", "pw"}, s.caller.last("login_user").args)
}

func (s *ControllerSuite) TestAutoLoginSuccessListsPlayers() {
	s.Require().NoError(s.cache.Save(model.Credentials{Name: "alice", Password: "pw"}))
	c := s.newController(externalIdentity())
	c.HandleOpened()

	s.caller.last("login_user").respond(true)
	list := s.caller.last("list_players")
	s.Equal([]any{0, gameURL}, list.args)
	list.respond(s.players())

	s.Equal(StatePlayerSelection, c.State())
	s.Equal(s.players(), s.view.players)
	s.Equal(Selection{Index: 2}, s.view.selection)
	s.True(s.view.selectEnabled)
}

func (s *ControllerSuite) TestAutoLoginFailureKeepsCache() {
	s.Require().NoError(s.cache.Save(model.Credentials{Name: "alice", Password: "stale"}))
	c := s.newController(externalIdentity())
	c.HandleOpened()

	s.caller.last("login_user").respond(false)

	s.Equal(StateAwaitingInput, c.State())
	s.Equal("alice", s.view.name)
	s.Len(s.view.alerts, 1)
	creds, ok := s.cache.Load()
	s.True(ok)
	s.Equal("stale", creds.Password)
}

func (s *ControllerSuite) TestManagedAutoLoginCompletes() {
	s.Require().NoError(s.cache.Save(model.Credentials{Name: "bob", Password: "pw"}))
	c := s.newController(managedIdentity())
	c.HandleOpened()

	login := s.caller.last("login_player")
	s.Equal([]any{"bob", "pw"}, login.args)
	login.respond(true)

	s.Equal(StateCompleted, c.State())
	s.True(s.view.hidden)
	s.Empty(s.parent.messages)
}

// Manual login

func (s *ControllerSuite) TestLoginSuccessCachesCredentials() {
	c := s.openExternal(false)

	c.Submit(ActionLogin, "alice", "pw")
	s.Equal(StateAuthenticating, c.State())
	s.caller.last("login_user").respond(true)
	s.caller.last("list_players").respond(s.players())

	s.Equal(StatePlayerSelection, c.State())
	creds, ok := s.cache.Load()
	s.Require().True(ok)
	s.Equal("alice", creds.Name)
}

func (s *ControllerSuite) TestLoginFailureAlertsOnce() {
	c := s.openExternal(false)

	c.Submit(ActionLogin, "alice", "wrong")
	s.caller.last("login_user").respond(false)

	s.Equal(StateAwaitingInput, c.State())
	s.Equal([]string{"Failed to log in"}, s.view.alerts)
	_, ok := s.cache.Load()
	s.False(ok)
}

func (s *ControllerSuite) TestLoginRemoteErrorAlerts() {
	c := s.openExternal(false)

	c.Submit(ActionLogin, "alice", "pw")
	s.caller.last("login_user").fail("database unavailable")

	s.Equal(StateAwaitingInput, c.State())
	s.Len(s.view.alerts, 1)
}

func (s *ControllerSuite) TestSubmitIgnoredOutsideAwaitingInput() {
	c := s.openExternal(false)
	c.Submit(ActionLogin, "alice", "pw")
	c.Submit(ActionLogin, "alice", "pw")

	s.Equal(1, s.caller.count("login_user"))
	s.Equal(StateAuthenticating, c.State())
}

func (s *ControllerSuite) TestManagedPlayActsAsLogin() {
	c := s.newController(managedIdentity())
	c.HandleOpened()

	c.Submit(ActionPlay, "bob", "pw")
	s.caller.last("login_player").respond(true)

	s.Equal(StateCompleted, c.State())
	s.Equal(0, s.caller.count("login_user"))
}

// Play fast path

func (s *ControllerSuite) TestPlayConnectsSoleDefaultPlayer() {
	c := s.openExternal(false)

	c.Submit(ActionPlay, "alice", "pw")
	s.caller.last("login_user").respond(true)
	s.caller.last("list_players").respond(s.players())

	connect := s.caller.last("connect")
	s.Equal([]any{0, gameURL, map[string]string{"gcid": "g1"}, "al"}, connect.args)
	connect.respond(nil)

	s.Equal(StateCompleted, c.State())
	s.Require().Len(s.parent.messages, 1)
	s.Equal("g1", *s.parent.messages[0])
	result, ok := c.Result()
	s.True(ok)
	s.Equal("g1", result)
}

func (s *ControllerSuite) TestPlayForwardsFreshConnectionID() {
	c := s.openExternal(false)

	c.Submit(ActionPlay, "alice", "pw")
	s.caller.last("login_user").respond(true)
	s.caller.last("list_players").respond([]model.PlayerRecord{{Name: "alice"}})
	s.caller.last("connect").respond("g-fresh")

	s.Equal(StateCompleted, c.State())
	s.Equal("g-fresh", *s.parent.messages[0])
}

func (s *ControllerSuite) TestPlayWithoutAutomaticChoiceShowsSelection() {
	c := s.openExternal(false)

	c.Submit(ActionPlay, "alice", "pw")
	s.caller.last("login_user").respond(true)
	s.caller.last("list_players").respond([]model.PlayerRecord{{Name: "a"}, {Name: "b"}})

	s.Equal(StatePlayerSelection, c.State())
	s.Equal(0, s.caller.count("connect"))
}

// Registration

func (s *ControllerSuite) TestRegisterRejectsMalformedName() {
	c := s.openExternal(true)

	c.Submit(ActionRegister, "alice", "pw")

	s.Equal(StateAwaitingInput, c.State())
	s.Len(s.view.alerts, 1)
	s.Equal(0, s.caller.count("register_user"))
}

func (s *ControllerSuite) TestRegisterNotAllowed() {
	c := s.openExternal(false)

	c.Submit(ActionRegister, "alice:alice@example.com", "pw")

	s.Len(s.view.alerts, 1)
	s.Equal(0, s.caller.count("register_user"))
}

func (s *ControllerSuite) TestRegisterSuccessPrefillsName() {
	c := s.openExternal(true)

	c.Submit(ActionRegister, " alice : alice@example.com ", "pw")
	reg := s.caller.last("register_user")
	s.Equal([]any{"alice", "alice", "alice@example.com", "pw"}, reg.args)
	reg.respond(nil)

	s.Equal(StateAwaitingInput, c.State())
	s.Equal("alice", s.view.name)
	s.Contains(s.view.events, "clear-password")
	s.Empty(s.view.alerts)
}

func (s *ControllerSuite) TestRegisterErrorShownVerbatim() {
	c := s.openExternal(true)

	c.Submit(ActionRegister, "alice:alice@example.com", "pw")
	s.caller.last("register_user").respond("User already exists")

	s.Equal(StateAwaitingInput, c.State())
	s.Equal([]string{"User already exists"}, s.view.alerts)
}

func (s *ControllerSuite) TestManagedRegisterUsesManagedMethod() {
	c := s.newController(managedIdentity())
	c.HandleOpened()

	c.Submit(ActionRegister, "bob:bob@example.com", "pw")

	s.Equal(1, s.caller.count("register_managed_player"))
	s.Equal(0, s.caller.count("register_user"))
}

// Player selection

func (s *ControllerSuite) loggedInWith(players []model.PlayerRecord) *Controller {
	c := s.openExternal(false)
	c.Submit(ActionLogin, "alice", "pw")
	s.caller.last("login_user").respond(true)
	s.caller.last("list_players").respond(players)
	s.Require().Equal(StatePlayerSelection, c.State())
	return c
}

func (s *ControllerSuite) TestEmptyListStartsOnAddNew() {
	s.loggedInWith([]model.PlayerRecord{})

	s.Equal(Selection{Index: AddNewIndex}, s.view.selection)
	s.False(s.view.selectEnabled)
}

func (s *ControllerSuite) TestChangeSelectionTogglesEnabled() {
	c := s.loggedInWith(s.players())

	c.ChangeSelection(AddNewIndex, "   ")
	s.False(s.view.selectEnabled)

	c.ChangeSelection(AddNewIndex, "carol")
	s.True(s.view.selectEnabled)

	c.ChangeSelection(3, "")
	s.False(s.view.selectEnabled)

	c.ChangeSelection(1, "")
	s.True(s.view.selectEnabled)
}

func (s *ControllerSuite) TestSubmitInvalidSelectionMakesNoCall() {
	c := s.loggedInWith(s.players())
	before := len(s.caller.calls)

	c.ChangeSelection(AddNewIndex, "")
	c.SubmitSelection()

	s.Len(s.caller.calls, before)
	s.Len(s.view.alerts, 1)
	s.Equal(StatePlayerSelection, c.State())
}

func (s *ControllerSuite) TestSubmitExistingPlayerConnects() {
	c := s.loggedInWith(s.players())

	c.ChangeSelection(1, "")
	c.SubmitSelection()
	s.caller.last("connect").respond(nil)

	s.Equal("alice", s.caller.last("connect").args[3])
	s.Equal(StateCompleted, c.State())
}

func (s *ControllerSuite) TestAddNewProvisionsThenConnects() {
	c := s.loggedInWith(s.players())

	c.ChangeSelection(AddNewIndex, "carol")
	c.SubmitSelection()
	s.Equal(StateProvisioning, c.State())

	add := s.caller.last("add_player")
	s.Equal([]any{0, gameURL, "carol", "carol", true}, add.args)
	add.respond(nil)

	connect := s.caller.last("connect")
	s.Equal("carol", connect.args[3])
	connect.respond(nil)
	s.Equal(StateCompleted, c.State())
}

func (s *ControllerSuite) TestConnectFailureReturnsToSelection() {
	c := s.loggedInWith(s.players())

	c.SubmitSelection()
	s.caller.last("connect").fail("no such game")

	s.Equal(StatePlayerSelection, c.State())
	s.Len(s.view.alerts, 1)
	s.Empty(s.parent.messages)
}

func (s *ControllerSuite) TestAddPlayerFailureReturnsToSelection() {
	c := s.loggedInWith(s.players())

	c.ChangeSelection(AddNewIndex, "carol")
	c.SubmitSelection()
	s.caller.last("add_player").fail("name taken")

	s.Equal(StatePlayerSelection, c.State())
	s.Equal(0, s.caller.count("connect"))
}

func (s *ControllerSuite) TestConnectFalseReplyReturnsToSelection() {
	c := s.openExternal(false)

	c.Submit(ActionPlay, "alice", "pw")
	s.caller.last("login_user").respond(true)
	s.caller.last("list_players").respond(s.players())
	s.caller.last("connect").respond(false)

	s.Equal(StatePlayerSelection, c.State())
	s.Len(s.view.alerts, 1)
	s.Empty(s.parent.messages)
	_, ok := c.Result()
	s.False(ok)
}

func (s *ControllerSuite) TestAddPlayerFalseReplyMakesNoConnect() {
	c := s.loggedInWith(s.players())

	c.ChangeSelection(AddNewIndex, "carol")
	c.SubmitSelection()
	s.caller.last("add_player").respond(false)

	s.Equal(StatePlayerSelection, c.State())
	s.Len(s.view.alerts, 1)
	s.Equal(0, s.caller.count("connect"))
}

func (s *ControllerSuite) TestAddNewTrimsName() {
	c := s.loggedInWith(s.players())

	c.ChangeSelection(AddNewIndex, "  bob  ")
	c.SubmitSelection()

	s.Equal([]any{0, gameURL, "bob", "bob", true}, s.caller.last("add_player").args)
	s.caller.last("add_player").respond(nil)
	s.Equal("bob", s.caller.last("connect").args[3])
}

// Session replacement

func (s *ControllerSuite) TestStaleReplyDiscardedAfterReconnect() {
	c := s.openExternal(false)
	c.Submit(ActionLogin, "alice", "pw")
	stale := s.caller.last("login_user")

	c.HandleClosed()
	s.Equal(StateConnecting, c.State())
	s.False(s.view.connected)

	fresh := &fakeCaller{}
	c.Attach(fresh)
	c.HandleOpened()
	fresh.last("get_settings").respond(map[string]bool{})

	stale.respond(true)

	s.Equal(StateAwaitingInput, c.State())
	s.Equal(0, fresh.count("list_players"))
	s.Equal(0, s.caller.count("list_players"))
}

func (s *ControllerSuite) TestReopenWithCacheRestartsAutoLogin() {
	c := s.openExternal(false)
	s.Require().NoError(s.cache.Save(model.Credentials{Name: "alice", Password: "pw"}))

	c.HandleClosed()
	fresh := &fakeCaller{}
	c.Attach(fresh)
	c.HandleOpened()

	s.Equal(StateAutoLogin, c.State())
	s.Equal(1, fresh.count("login_user"))
}

func (s *ControllerSuite) TestCompletedIgnoresReconnect() {
	s.Require().NoError(s.cache.Save(model.Credentials{Name: "bob", Password: "pw"}))
	c := s.newController(managedIdentity())
	c.HandleOpened()
	s.caller.last("login_player").respond(true)

	c.HandleClosed()
	c.HandleOpened()

	s.Equal(StateCompleted, c.State())
	s.Equal(1, s.caller.count("login_player"))
}

func (s *ControllerSuite) TestLogoutIsFireAndForget() {
	c := s.openExternal(false)
	c.Logout()

	call := s.caller.last("userdata_logout")
	s.Nil(call.reply)
}
