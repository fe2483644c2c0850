package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ksyq12/hostctl/internal/config"
	herrors "github.com/ksyq12/hostctl/internal/errors"
	"github.com/ksyq12/hostctl/internal/logger"
)

// RedisStore keeps records as JSON values in Redis.
//
// Layout, for prefix p:
//
//	p:client:<name>          client record
//	p:clients                zset of client names
//	p:host:<host>            host record
//	p:hosts                  zset of hostnames
//	p:client:<name>:hosts    zset of the client's hostnames
//
// All zset members share score 0 so ZRANGE returns them in name order.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg config.Redis) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, herrors.Wrap(herrors.ErrCodePersistence, "redis unavailable at "+cfg.Addr, err)
	}
	logger.Debug("connected to redis at %s", cfg.Addr)

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "hostctl"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}, nil
}

func (s *RedisStore) clientKey(name string) string      { return s.prefix + ":client:" + name }
func (s *RedisStore) clientHostsKey(name string) string { return s.prefix + ":client:" + name + ":hosts" }
func (s *RedisStore) hostKey(host string) string        { return s.prefix + ":host:" + host }
func (s *RedisStore) clientsKey() string                { return s.prefix + ":clients" }
func (s *RedisStore) hostsKey() string                  { return s.prefix + ":hosts" }

// get decodes the JSON value at key into v, reporting whether it existed.
func (s *RedisStore) get(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, persistence("failed to read "+key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, persistence("corrupt record "+key, err)
	}
	return true, nil
}

// GetClient returns the client named name, or nil.
func (s *RedisStore) GetClient(ctx context.Context, name string) (*Client, error) {
	var c Client
	ok, err := s.get(ctx, s.clientKey(name), &c)
	if !ok || err != nil {
		return nil, err
	}
	return &c, nil
}

// InsertClient adds a client record.
func (s *RedisStore) InsertClient(ctx context.Context, c *Client) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	data, err := json.Marshal(c)
	if err != nil {
		return persistence("failed to encode client", err)
	}

	ok, err := s.rdb.SetNX(ctx, s.clientKey(c.Name), data, 0).Result()
	if err != nil {
		return persistence("failed to insert client", err)
	}
	if !ok {
		return herrors.AlreadyExists("client", c.Name)
	}
	if err := s.rdb.ZAdd(ctx, s.clientsKey(), redis.Z{Member: c.Name}).Err(); err != nil {
		return persistence("failed to index client", err)
	}
	return nil
}

// DeleteClient removes a client record. Deleting an absent client is a no-op.
func (s *RedisStore) DeleteClient(ctx context.Context, name string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.clientKey(name))
		pipe.ZRem(ctx, s.clientsKey(), name)
		return nil
	})
	if err != nil {
		return persistence("failed to delete client", err)
	}
	return nil
}

// ListClients returns all clients ordered by name.
func (s *RedisStore) ListClients(ctx context.Context) ([]Client, error) {
	names, err := s.rdb.ZRange(ctx, s.clientsKey(), 0, -1).Result()
	if err != nil {
		return nil, persistence("failed to list clients", err)
	}
	clients := make([]Client, 0, len(names))
	for _, n := range names {
		c, err := s.GetClient(ctx, n)
		if err != nil {
			return nil, err
		}
		if c != nil {
			clients = append(clients, *c)
		}
	}
	return clients, nil
}

// GetHost returns the host record for (host, client), or nil.
func (s *RedisStore) GetHost(ctx context.Context, host, client string) (*Host, error) {
	var h Host
	ok, err := s.get(ctx, s.hostKey(host), &h)
	if !ok || err != nil {
		return nil, err
	}
	if h.Client != client {
		return nil, nil
	}
	return &h, nil
}

// InsertHost adds a host record. The hostname must be unused by any client.
func (s *RedisStore) InsertHost(ctx context.Context, h *Host) error {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	data, err := json.Marshal(h)
	if err != nil {
		return persistence("failed to encode host", err)
	}

	ok, err := s.rdb.SetNX(ctx, s.hostKey(h.Host), data, 0).Result()
	if err != nil {
		return persistence("failed to insert host", err)
	}
	if !ok {
		return herrors.AlreadyExists("host", h.Host)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, s.hostsKey(), redis.Z{Member: h.Host})
		pipe.ZAdd(ctx, s.clientHostsKey(h.Client), redis.Z{Member: h.Host})
		return nil
	})
	if err != nil {
		return persistence("failed to index host", err)
	}
	return nil
}

// UpdateHostAlias replaces the alias list of a host.
func (s *RedisStore) UpdateHostAlias(ctx context.Context, host, client, alias string) error {
	h, err := s.GetHost(ctx, host, client)
	if err != nil {
		return err
	}
	if h == nil {
		return herrors.NotFound("host", host)
	}
	h.Alias = alias

	data, err := json.Marshal(h)
	if err != nil {
		return persistence("failed to encode host", err)
	}
	if err := s.rdb.Set(ctx, s.hostKey(host), data, 0).Err(); err != nil {
		return persistence("failed to update host", err)
	}
	return nil
}

// DeleteHost removes a host record. Deleting an absent host is a no-op.
func (s *RedisStore) DeleteHost(ctx context.Context, host, client string) error {
	h, err := s.GetHost(ctx, host, client)
	if err != nil || h == nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.hostKey(host))
		pipe.ZRem(ctx, s.hostsKey(), host)
		pipe.ZRem(ctx, s.clientHostsKey(client), host)
		return nil
	})
	if err != nil {
		return persistence("failed to delete host", err)
	}
	return nil
}

// ListHosts returns all hosts ordered by hostname.
func (s *RedisStore) ListHosts(ctx context.Context) ([]Host, error) {
	return s.listHosts(ctx, s.hostsKey())
}

// ListHostsByClient returns the hosts of client ordered by hostname.
func (s *RedisStore) ListHostsByClient(ctx context.Context, client string) ([]Host, error) {
	return s.listHosts(ctx, s.clientHostsKey(client))
}

func (s *RedisStore) listHosts(ctx context.Context, index string) ([]Host, error) {
	names, err := s.rdb.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, persistence("failed to list hosts", err)
	}
	hosts := make([]Host, 0, len(names))
	for _, n := range names {
		var h Host
		ok, err := s.get(ctx, s.hostKey(n), &h)
		if err != nil {
			return nil, err
		}
		if ok {
			hosts = append(hosts, h)
		}
	}
	return hosts, nil
}

// Close closes the connection pool.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
