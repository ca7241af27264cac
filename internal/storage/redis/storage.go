package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/userdata-go/internal/model"
	"github.com/mcoot/userdata-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) ttl(link *model.Link) time.Duration {
	if link.IsActive() {
		return s.cfg.ActiveLinkTTL
	}
	return s.cfg.PendingLinkTTL
}

func (s *Storage) SaveLink(ctx context.Context, link *model.Link) error {
	data, err := json.Marshal(link)
	if err != nil {
		return err
	}

	previous, err := s.GetLink(ctx, link.GCID)
	if err != nil && !errors.Is(err, model.ErrLinkNotFound) {
		return err
	}

	ttl := s.ttl(link)
	pipe := s.client.TxPipeline()
	if previous != nil && previous.DCID != "" && previous.DCID != link.DCID {
		pipe.Del(ctx, dcidIndexKey(previous.DCID))
	}
	pipe.Set(ctx, linkKey(link.GCID), data, ttl)
	if link.DCID != "" {
		pipe.Set(ctx, dcidIndexKey(link.DCID), link.GCID, ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetLink(ctx context.Context, gcid string) (*model.Link, error) {
	data, err := s.client.Get(ctx, linkKey(gcid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrLinkNotFound
		}
		return nil, err
	}

	var link model.Link
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// maxUpdateRetries bounds optimistic retries when a watched link changes
// under an update.
const maxUpdateRetries = 10

func (s *Storage) UpdateLink(ctx context.Context, gcid string, fn func(*model.Link) error) (*model.Link, error) {
	key := linkKey(gcid)
	var result *model.Link

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrLinkNotFound
			}
			return err
		}

		var link model.Link
		if err := json.Unmarshal(data, &link); err != nil {
			return err
		}
		if err := fn(&link); err != nil {
			return err
		}
		updated, err := json.Marshal(&link)
		if err != nil {
			return err
		}

		ttl := s.ttl(&link)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, ttl)
			if link.DCID != "" {
				pipe.Set(ctx, dcidIndexKey(link.DCID), link.GCID, ttl)
			}
			return nil
		})
		if err == nil {
			result = &link
		}
		return err
	}

	for range maxUpdateRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, redis.TxFailedErr
}

func (s *Storage) DeleteLink(ctx context.Context, gcid string) error {
	link, err := s.GetLink(ctx, gcid)
	if err != nil {
		if errors.Is(err, model.ErrLinkNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, linkKey(gcid))
	if link.DCID != "" {
		pipe.Del(ctx, dcidIndexKey(link.DCID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) LinkExists(ctx context.Context, gcid string) (bool, error) {
	exists, err := s.client.Exists(ctx, linkKey(gcid)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Storage) GetLinkByDCID(ctx context.Context, dcid string) (*model.Link, error) {
	gcid, err := s.client.Get(ctx, dcidIndexKey(dcid)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrLinkNotFound
		}
		return nil, err
	}
	return s.GetLink(ctx, gcid)
}

func (s *Storage) DCIDExists(ctx context.Context, dcid string) (bool, error) {
	exists, err := s.client.Exists(ctx, dcidIndexKey(dcid)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
