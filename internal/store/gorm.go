package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	herrors "github.com/ksyq12/hostctl/internal/errors"
	"github.com/ksyq12/hostctl/internal/logger"
)

// GormStore keeps records in a SQLite database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens (creating if needed) the SQLite database at path.
func NewGormStore(path string) (*GormStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, herrors.Wrap(herrors.ErrCodePersistence, "failed to create database directory", err)
		}
	}

	stdLog, err := zap.NewStdLogAt(logger.Zap(), zap.ErrorLevel)
	if err != nil {
		return nil, err
	}
	newLogger := gormlogger.New(
		stdLog,
		gormlogger.Config{
			IgnoreRecordNotFoundError: true,
			LogLevel:                  gormlogger.Error,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, herrors.Wrap(herrors.ErrCodePersistence, "failed to open database "+path, err)
	}

	if err := db.AutoMigrate(&Client{}, &Host{}); err != nil {
		return nil, herrors.Wrap(herrors.ErrCodePersistence, "error migrating database", err)
	}

	return &GormStore{db: db}, nil
}

func persistence(msg string, err error) error {
	return herrors.Wrap(herrors.ErrCodePersistence, msg, err)
}

// GetClient returns the client named name, or nil.
func (s *GormStore) GetClient(ctx context.Context, name string) (*Client, error) {
	var c Client
	err := s.db.WithContext(ctx).First(&c, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistence("failed to get client", err)
	}
	return &c, nil
}

// InsertClient adds a client record.
func (s *GormStore) InsertClient(ctx context.Context, c *Client) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&Client{}).Where("name = ?", c.Name).Count(&n).Error; err != nil {
			return persistence("failed to insert client", err)
		}
		if n > 0 {
			return herrors.AlreadyExists("client", c.Name)
		}
		if err := tx.Create(c).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return herrors.AlreadyExists("client", c.Name)
			}
			return persistence("failed to insert client", err)
		}
		return nil
	})
}

// DeleteClient removes a client record. Deleting an absent client is a no-op.
func (s *GormStore) DeleteClient(ctx context.Context, name string) error {
	if err := s.db.WithContext(ctx).Where("name = ?", name).Delete(&Client{}).Error; err != nil {
		return persistence("failed to delete client", err)
	}
	return nil
}

// ListClients returns all clients ordered by name.
func (s *GormStore) ListClients(ctx context.Context) ([]Client, error) {
	var clients []Client
	if err := s.db.WithContext(ctx).Order("name").Find(&clients).Error; err != nil {
		return nil, persistence("failed to list clients", err)
	}
	return clients, nil
}

// GetHost returns the host record for (host, client), or nil.
func (s *GormStore) GetHost(ctx context.Context, host, client string) (*Host, error) {
	var h Host
	err := s.db.WithContext(ctx).First(&h, "host = ? AND client = ?", host, client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistence("failed to get host", err)
	}
	return &h, nil
}

// InsertHost adds a host record. The hostname must be unused by any client.
func (s *GormStore) InsertHost(ctx context.Context, h *Host) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&Host{}).Where("host = ?", h.Host).Count(&n).Error; err != nil {
			return persistence("failed to insert host", err)
		}
		if n > 0 {
			return herrors.AlreadyExists("host", h.Host)
		}
		if err := tx.Create(h).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return herrors.AlreadyExists("host", h.Host)
			}
			return persistence("failed to insert host", err)
		}
		return nil
	})
}

// UpdateHostAlias replaces the alias list of a host.
func (s *GormStore) UpdateHostAlias(ctx context.Context, host, client, alias string) error {
	res := s.db.WithContext(ctx).Model(&Host{}).
		Where("host = ? AND client = ?", host, client).
		Update("alias", alias)
	if res.Error != nil {
		return persistence("failed to update host", res.Error)
	}
	if res.RowsAffected == 0 {
		return herrors.NotFound("host", host)
	}
	return nil
}

// DeleteHost removes a host record. Deleting an absent host is a no-op.
func (s *GormStore) DeleteHost(ctx context.Context, host, client string) error {
	err := s.db.WithContext(ctx).
		Where("host = ? AND client = ?", host, client).
		Delete(&Host{}).Error
	if err != nil {
		return persistence("failed to delete host", err)
	}
	return nil
}

// ListHosts returns all hosts ordered by hostname.
func (s *GormStore) ListHosts(ctx context.Context) ([]Host, error) {
	var hosts []Host
	if err := s.db.WithContext(ctx).Order("host").Find(&hosts).Error; err != nil {
		return nil, persistence("failed to list hosts", err)
	}
	return hosts, nil
}

// ListHostsByClient returns the hosts of client ordered by hostname.
func (s *GormStore) ListHostsByClient(ctx context.Context, client string) ([]Host, error) {
	var hosts []Host
	err := s.db.WithContext(ctx).Where("client = ?", client).Order("host").Find(&hosts).Error
	if err != nil {
		return nil, persistence("failed to list hosts", err)
	}
	return hosts, nil
}

// Close closes the database.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
