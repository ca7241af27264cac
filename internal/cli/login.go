package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/userdata-go/internal/credcache"
	"github.com/mcoot/userdata-go/internal/i18n"
	"github.com/mcoot/userdata-go/internal/model"
	"github.com/mcoot/userdata-go/internal/rpc"
	"github.com/mcoot/userdata-go/internal/session"
)

// Login runs the login flow against a userdata server from a terminal.
type Login struct {
	Surface    string
	HostID     int
	Cache      *credcache.Cache
	Translator *i18n.Translator
	Catalogs   i18n.Catalogs
	Prompter   *Prompter
	Logger     *slog.Logger
}

// Run blocks until the flow completes, fails fatally, loses its connection
// or ctx ends.
func (l *Login) Run(ctx context.Context) (LoginResult, error) {
	u, err := url.Parse(l.Surface)
	if err != nil {
		return LoginResult{}, fmt.Errorf("invalid surface url: %w", err)
	}
	identity := model.ParseIdentity(u.Query())
	result := LoginResult{Mode: string(identity.Mode)}

	wsURL, err := rpc.WebsocketURL(l.Surface)
	if err != nil {
		return result, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := rpc.NewLoop(64)
	go func() { _ = loop.Run(ctx) }()

	view := newTerminalView()
	ctrl := session.NewController(session.Config{
		Identity:   identity,
		HostID:     l.HostID,
		Cache:      l.Cache,
		Translator: l.Translator,
		View:       view,
		Parent:     view,
		Logger:     l.Logger,
	})
	settings := session.NewSettingsFlow(session.SettingsConfig{
		Translator: l.Translator,
		Catalogs:   l.Catalogs,
		View:       view,
		Parent:     view,
		Logger:     l.Logger,
	})
	loop.Post(ctrl.Start)

	if identity.Mode != model.ModeDirectUnsupported {
		sess, err := rpc.Dial(ctx, wsURL, rpc.Options{
			Dispatcher: loop,
			Handlers:   settings.Handlers(),
			OnClosed:   ctrl.HandleClosed,
			Logger:     l.Logger,
		})
		if err != nil {
			return result, err
		}
		defer sess.Close()

		loop.Post(func() {
			settings.Attach(sess)
			ctrl.Attach(sess)
			ctrl.HandleOpened()
		})
	}

	t := &terminal{Login: l, loop: loop, ctrl: ctrl}
	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case ev := <-view.events:
			switch ev.kind {
			case eventConnected:
				if !ev.connected {
					return result, model.ErrSessionClosed
				}
				l.Logger.Debug("connected", slog.String("url", wsURL))
			case eventAlert:
				l.Prompter.Printf("%s\n", ev.message)
			case eventFatal:
				return result, errors.New(ev.message)
			case eventLogin:
				if err := t.login(ctx, ev); err != nil {
					return result, err
				}
			case eventPlayers:
				if err := t.choosePlayer(ctx, ev); err != nil {
					return result, err
				}
			case eventHidden:
				if identity.Managed() {
					return result, nil
				}
			case eventSettings:
				if err := editSettings(t.Prompter, t.tr, loop, settings, ev); err != nil {
					return result, err
				}
			case eventNotify:
				// A nil id closes the settings form; the login carries on
				if ev.gcid == nil {
					l.Prompter.Printf("%s\n", t.tr("Settings saved"))
					continue
				}
				result.GCID = ev.gcid
				return result, nil
			}
		}
	}
}

// terminal answers the controller's prompts. It runs on the caller's
// goroutine and only touches the controller through the loop.
type terminal struct {
	*Login
	loop *rpc.Loop
	ctrl *session.Controller
}

// state reads the controller state on the loop. Prompts queued before an
// earlier answer was applied are stale once the state has moved on.
func (t *terminal) state(ctx context.Context) (session.State, error) {
	ch := make(chan session.State, 1)
	t.loop.Post(func() { ch <- t.ctrl.State() })
	select {
	case s := <-ch:
		return s, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (t *terminal) login(ctx context.Context, ev viewEvent) error {
	if s, err := t.state(ctx); err != nil || s != session.StateAwaitingInput {
		return err
	}

	actions := []session.Action{session.ActionLogin}
	labels := []string{t.tr("Log in")}
	if ev.form.PlayAvailable {
		actions = append(actions, session.ActionPlay)
		labels = append(labels, t.tr("Play"))
	}
	if ev.form.RegisterAllowed {
		actions = append(actions, session.ActionRegister)
		labels = append(labels, t.tr("Register"))
	}

	action := actions[0]
	if len(actions) > 1 {
		i, err := t.Prompter.Choose(t.tr("Action"), labels, 0)
		if err != nil {
			return err
		}
		action = actions[i]
	}

	var name string
	for {
		var err error
		name, err = t.Prompter.Line(t.tr("Name"), ev.name)
		if err != nil {
			return err
		}
		if action != session.ActionRegister {
			break
		}
		if _, _, err := session.ParseRegistrationName(name); err == nil {
			break
		}
		t.Prompter.Printf("%s\n", t.tr("To register, enter a name of the form username:email"))
	}

	password, err := t.Prompter.Password(t.tr("Password"))
	if err != nil {
		return err
	}

	t.loop.Post(func() { t.ctrl.Submit(action, name, password) })
	return nil
}

func (t *terminal) choosePlayer(ctx context.Context, ev viewEvent) error {
	if s, err := t.state(ctx); err != nil || s != session.StatePlayerSelection {
		return err
	}

	options := []string{t.tr("Add New")}
	for _, p := range ev.players {
		label := p.Name
		if p.FullName != "" && p.FullName != p.Name {
			label += " (" + p.FullName + ")"
		}
		if p.IsDefault {
			label += " *"
		}
		options = append(options, label)
	}

	for {
		i, err := t.Prompter.Choose(t.tr("Player"), options, ev.selection.Index)
		if err != nil {
			return err
		}
		sel := session.Selection{Index: i}
		if i == session.AddNewIndex {
			if sel.NewName, err = t.Prompter.Line(t.tr("New player name"), ""); err != nil {
				return err
			}
		}
		if session.SelectionValid(sel, ev.players) {
			t.loop.Post(func() {
				t.ctrl.ChangeSelection(sel.Index, sel.NewName)
				t.ctrl.SubmitSelection()
			})
			return nil
		}
		t.Prompter.Printf("%s\n", t.tr("Please select a player or enter a name for a new player"))
	}
}

func (t *terminal) tr(key string, subs ...string) string {
	return t.Translator.Translate(key, subs...)
}

func newLoginCmd() *cobra.Command {
	var surface string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in through a userdata server login surface",
		Long: `Open the login surface at --surface and log in interactively.

The surface URL is the address a host page would load in its login frame,
for example:

  http://userdata.example/login.html?url=http://game.example/&gcid=abc
  http://game.example/userdata/login.html?dcid=xyz

Successful credentials are cached in the cache file and used to log in
automatically next time. The connection id handed to the host is printed
when the flow completes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if surface == "" {
				surface = cfg.Surface
			}
			if surface == "" {
				return errors.New("--surface is required (env: USERDATA_SERVER)")
			}

			translator, catalogs, err := newTranslator(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			l := &Login{
				Surface:    surface,
				HostID:     cfg.HostID,
				Cache:      credcache.New(credcache.NewFileStore(cfg.CacheFile, logger)),
				Translator: translator,
				Catalogs:   catalogs,
				Prompter:   NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()),
				Logger:     logger,
			}
			result, err := l.Run(ctx)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&surface, "surface", "", "Login surface URL (env: USERDATA_SERVER)")

	return cmd
}

// newTranslator loads the catalogs in --lang-dir and applies the --lang
// one.
func newTranslator(c *Config, logger *slog.Logger) (*i18n.Translator, i18n.Catalogs, error) {
	t := i18n.New(logger)
	if c.LangDir == "" {
		return t, nil, nil
	}

	catalogs, err := i18n.LoadCatalogs(c.LangDir)
	if err != nil {
		return nil, nil, err
	}
	if c.Lang == "" {
		return t, catalogs, nil
	}
	if dict, ok := catalogs.Lookup(c.Lang); ok {
		t.SetDictionary(dict)
	} else {
		logger.Warn("no catalog for language", slog.String("lang", c.Lang))
	}
	return t, catalogs, nil
}
