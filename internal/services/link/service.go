// Package link issues the connection ids a host hands to login frames and
// tracks which of them a player has connected through.
package link

import (
	"context"
	"log/slog"

	"github.com/mcoot/userdata-go/internal/dependencies/clock"
	"github.com/mcoot/userdata-go/internal/dependencies/random"
	"github.com/mcoot/userdata-go/internal/embed"
	"github.com/mcoot/userdata-go/internal/model"
	"github.com/mcoot/userdata-go/internal/storage"
)

// IDLength is the length of generated gcid and dcid values
const IDLength = 32

// Service manages host links
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	cfg     Config
	logger  *slog.Logger
}

// New creates a new link Service
func New(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		clock:   clk,
		random:  rnd,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "link")),
	}
}

// Config returns the service configuration
func (s *Service) Config() Config {
	return s.cfg
}

// Open issues a pending link and the userdata_setup request that points a
// login frame at it.
func (s *Service) Open(ctx context.Context, logout bool) (*model.Link, embed.SetupRequest, error) {
	gcid, err := s.uniqueID(ctx, s.storage.LinkExists)
	if err != nil {
		return nil, embed.SetupRequest{}, err
	}

	link := &model.Link{
		GCID:      gcid,
		State:     model.LinkStatePending,
		Logout:    logout,
		CreatedAt: s.clock.Now(),
	}
	if s.cfg.AllowLocal {
		link.DCID, err = s.uniqueID(ctx, s.storage.DCIDExists)
		if err != nil {
			return nil, embed.SetupRequest{}, err
		}
	}

	if err := s.storage.SaveLink(ctx, link); err != nil {
		return nil, embed.SetupRequest{}, err
	}

	s.logger.Debug("link opened", slog.String("gcid", gcid), slog.Bool("logout", logout))
	return link, s.SetupRequest(link), nil
}

// SetupRequest is the userdata_setup call that points a login frame at link.
func (s *Service) SetupRequest(link *model.Link) embed.SetupRequest {
	gameURL := s.cfg.GameURL
	req := embed.SetupRequest{
		DefaultURL:  s.cfg.DefaultUserdata,
		HostGameURL: &gameURL,
		Settings: embed.Settings{
			AllowLocal:      s.cfg.AllowLocal,
			AllowOther:      s.cfg.AllowOther,
			LocalUserdata:   s.cfg.LocalUserdata,
			AllowNewPlayers: s.cfg.AllowNewPlayers,
			Logout:          link.Logout,
		},
	}
	if s.cfg.AllowOther {
		req.GCID = link.GCID
	}
	if link.DCID != "" {
		dcid := link.DCID
		req.DCID = &dcid
	}
	return req
}

func (s *Service) uniqueID(ctx context.Context, exists func(context.Context, string) (bool, error)) (string, error) {
	for {
		id := random.Token(s.random, IDLength)
		taken, err := exists(ctx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}
}

// Get retrieves a link by gcid
func (s *Service) Get(ctx context.Context, gcid string) (*model.Link, error) {
	return s.storage.GetLink(ctx, gcid)
}

// GetByDCID retrieves a link by the dcid handed to the local login frame
func (s *Service) GetByDCID(ctx context.Context, dcid string) (*model.Link, error) {
	return s.storage.GetLinkByDCID(ctx, dcid)
}

// Connect marks a pending link as claimed by a player and returns the
// connected notification for the host page. managed is the login name when
// the host manages the player's account.
func (s *Service) Connect(ctx context.Context, gcid, name string, managed *string, language string) (*model.Link, embed.SetupRequest, error) {
	now := s.clock.Now()
	link, err := s.storage.UpdateLink(ctx, gcid, func(l *model.Link) error {
		if l.IsActive() {
			return model.ErrLinkActive
		}
		l.State = model.LinkStateActive
		l.Name = name
		l.Managed = managed
		l.Language = language
		l.ActivatedAt = &now
		return nil
	})
	if err != nil {
		return nil, embed.SetupRequest{}, err
	}

	s.logger.Info("player connected", slog.String("gcid", gcid), slog.String("name", name))
	return link, ConnectedNotification(link), nil
}

// ConnectedNotification is the userdata_setup call telling the host page
// that link now has a player.
func ConnectedNotification(link *model.Link) embed.SetupRequest {
	return embed.SetupRequest{
		Settings: embed.Settings{Name: link.Name, Managed: link.Managed},
		GCID:     link.GCID,
	}
}

// Logout revokes gcid and opens a fresh link whose frame logs the player out.
func (s *Service) Logout(ctx context.Context, gcid string) (*model.Link, embed.SetupRequest, error) {
	if err := s.Close(ctx, gcid); err != nil {
		return nil, embed.SetupRequest{}, err
	}
	return s.Open(ctx, true)
}

// Close revokes a link. Closing an unknown link is not an error.
func (s *Service) Close(ctx context.Context, gcid string) error {
	if err := s.storage.DeleteLink(ctx, gcid); err != nil {
		return err
	}
	s.logger.Debug("link closed", slog.String("gcid", gcid))
	return nil
}
