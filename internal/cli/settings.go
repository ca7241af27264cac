package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/userdata-go/internal/credcache"
	"github.com/mcoot/userdata-go/internal/i18n"
	"github.com/mcoot/userdata-go/internal/model"
	"github.com/mcoot/userdata-go/internal/rpc"
	"github.com/mcoot/userdata-go/internal/session"
)

// Settings edits the player settings through a userdata server settings
// surface. The server pushes the current values once the session opens.
type Settings struct {
	Surface    string
	Translator *i18n.Translator
	Catalogs   i18n.Catalogs
	Prompter   *Prompter
	Logger     *slog.Logger
}

// Run blocks until the settings were saved, the session was lost or ctx
// ends. It returns the saved settings.
func (s *Settings) Run(ctx context.Context) (SettingsResult, error) {
	wsURL, err := rpc.WebsocketURL(s.Surface)
	if err != nil {
		return SettingsResult{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := rpc.NewLoop(16)
	go func() { _ = loop.Run(ctx) }()

	view := newTerminalView()
	flow := session.NewSettingsFlow(session.SettingsConfig{
		Translator: s.Translator,
		Catalogs:   s.Catalogs,
		View:       view,
		Parent:     view,
		Logger:     s.Logger,
	})

	sess, err := rpc.Dial(ctx, wsURL, rpc.Options{
		Dispatcher: loop,
		Handlers:   flow.Handlers(),
		OnClosed:   func() { view.SetConnected(false) },
		Logger:     s.Logger,
	})
	if err != nil {
		return SettingsResult{}, err
	}
	defer sess.Close()
	loop.Post(func() { flow.Attach(sess) })

	for {
		select {
		case <-ctx.Done():
			return SettingsResult{}, ctx.Err()
		case ev := <-view.events:
			switch ev.kind {
			case eventConnected:
				if !ev.connected {
					return SettingsResult{}, model.ErrSessionClosed
				}
			case eventSettings:
				if err := editSettings(s.Prompter, s.Translator.Translate, loop, flow, ev); err != nil {
					return SettingsResult{}, err
				}
			case eventNotify:
				current := make(chan model.SettingsSnapshot, 1)
				loop.Post(func() { current <- flow.Current() })
				select {
				case snapshot := <-current:
					return SettingsResult{LoginName: snapshot.LoginName, FullName: snapshot.FullName, Language: snapshot.Language}, nil
				case <-ctx.Done():
					return SettingsResult{}, ctx.Err()
				}
			}
		}
	}
}

// editSettings prompts for the fields of a pushed settings snapshot and
// posts the save onto the loop.
func editSettings(p *Prompter, tr func(string, ...string) string, loop *rpc.Loop, flow *session.SettingsFlow, ev viewEvent) error {
	p.Printf("%s\n", tr("Settings for $1", ev.settings.LoginName))

	fullName, err := p.Line(tr("Full name"), ev.settings.FullName)
	if err != nil {
		return err
	}

	language := ev.settings.Language
	options := ev.languages
	if language != "" && !slices.Contains(options, language) {
		options = append([]string{language}, options...)
	}
	if len(options) == 0 {
		if language, err = p.Line(tr("Language"), language); err != nil {
			return err
		}
	} else {
		i, err := p.Choose(tr("Language"), options, max(slices.Index(options, language), 0))
		if err != nil {
			return err
		}
		language = options[i]
	}

	loop.Post(func() { flow.Save(fullName, language) })
	return nil
}

// remoteLogout asks the userdata server behind surface to end the game
// session.
func remoteLogout(ctx context.Context, surface string, cache *credcache.Cache, logger *slog.Logger) error {
	u, err := url.Parse(surface)
	if err != nil {
		return fmt.Errorf("invalid surface url: %w", err)
	}
	identity := model.ParseIdentity(u.Query())
	if identity.Mode == model.ModeDirectUnsupported {
		return model.ErrDirectLoginUnsupported
	}

	wsURL, err := rpc.WebsocketURL(surface)
	if err != nil {
		return err
	}
	sess, err := rpc.Dial(ctx, wsURL, rpc.Options{Logger: logger})
	if err != nil {
		return err
	}

	view := newTerminalView()
	ctrl := session.NewController(session.Config{
		Identity:   identity,
		Cache:      cache,
		Translator: i18n.New(logger),
		View:       view,
		Parent:     view,
		Logger:     logger,
	})
	ctrl.Attach(sess)
	ctrl.Logout()
	return sess.Close()
}

func newSettingsCmd() *cobra.Command {
	var surface string

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Edit player settings through a userdata server",
		Long: `Open the settings surface at --surface and edit the player's full name
and language, for example:

  http://game.example/userdata/settings.html?settings=xyz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if surface == "" {
				return errors.New("--surface is required")
			}

			translator, catalogs, err := newTranslator(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := &Settings{
				Surface:    surface,
				Translator: translator,
				Catalogs:   catalogs,
				Prompter:   NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()),
				Logger:     logger,
			}
			result, err := s.Run(ctx)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&surface, "surface", "", "Settings surface URL")

	return cmd
}
