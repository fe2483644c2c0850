// Package store persists client and host records.
//
// The store is the source of truth for existence: a record is written
// before a host's resources are provisioned and deleted only after they
// are torn down. Two backends are available, a SQLite database through
// GORM (the default) and Redis.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ksyq12/hostctl/internal/config"
)

// Client is the record of a hosting tenant.
type Client struct {
	Name      string    `gorm:"primaryKey" json:"name"`
	User      string    `gorm:"not null" json:"user"`
	Path      string    `gorm:"not null" json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// Host is the record of one virtual host. Hostnames are unique across
// clients.
type Host struct {
	Host      string    `gorm:"primaryKey;uniqueIndex:idx_host_name" json:"host"`
	Client    string    `gorm:"primaryKey;index" json:"client"`
	User      string    `gorm:"not null" json:"user"`
	Path      string    `gorm:"not null" json:"path"`
	Alias     string    `json:"alias,omitempty"` // comma-joined secondary hostnames
	CreatedAt time.Time `json:"created_at"`
}

// Aliases splits the stored alias list, dropping empty entries.
func (h *Host) Aliases() []string {
	return SplitAlias(h.Alias)
}

// SplitAlias splits a comma-joined alias list.
func SplitAlias(alias string) []string {
	var out []string
	for _, a := range strings.Split(alias, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// JoinAlias joins aliases into the stored comma form.
func JoinAlias(aliases []string) string {
	return strings.Join(SplitAlias(strings.Join(aliases, ",")), ",")
}

// Store gives keyed access to client and host records.
//
// Get methods return nil, nil when the record does not exist. Inserting an
// existing key fails with an ALREADY_EXISTS error; backend failures are
// PERSISTENCE errors. Listings are ordered by name.
type Store interface {
	GetClient(ctx context.Context, name string) (*Client, error)
	InsertClient(ctx context.Context, c *Client) error
	DeleteClient(ctx context.Context, name string) error
	ListClients(ctx context.Context) ([]Client, error)

	GetHost(ctx context.Context, host, client string) (*Host, error)
	InsertHost(ctx context.Context, h *Host) error
	UpdateHostAlias(ctx context.Context, host, client, alias string) error
	DeleteHost(ctx context.Context, host, client string) error
	ListHosts(ctx context.Context) ([]Host, error)
	ListHostsByClient(ctx context.Context, client string) ([]Host, error)

	Close() error
}

// Open returns the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	switch cfg.Driver {
	case config.StoreSQLite, "":
		return NewGormStore(cfg.Path)
	case config.StoreRedis:
		return NewRedisStore(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}
