package hosting

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	herrors "github.com/ksyq12/hostctl/internal/errors"
	"github.com/ksyq12/hostctl/internal/executor"
	"github.com/ksyq12/hostctl/internal/logger"
	"github.com/ksyq12/hostctl/internal/store"
)

// Client is a hosting tenant: one system account, one home directory and
// the web root its hosts live under.
type Client struct {
	env  *Env
	Name string
}

// NewClient returns a handle on the client called name. Nothing is
// provisioned until Create.
func NewClient(env *Env, name string) *Client {
	return &Client{env: env, Name: name}
}

// RemoveOptions controls client removal.
type RemoveOptions struct {
	// Cascade removes every host of the client before the client itself.
	// Without it the hosts are left in place.
	Cascade bool
}

// Info returns the stored record, or nil if the client does not exist.
func (c *Client) Info(ctx context.Context) (*store.Client, error) {
	return c.env.Store.GetClient(ctx, c.Name)
}

// Exists reports whether the client has a record.
func (c *Client) Exists(ctx context.Context) (bool, error) {
	info, err := c.Info(ctx)
	return info != nil, err
}

// Create provisions the client's account, home and web root, then records
// it. An existing client is left untouched. A failed step is not rolled
// back.
func (c *Client) Create(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return herrors.Validation("client name is required")
	}
	if exists, err := c.Exists(ctx); err != nil || exists {
		return err
	}

	user, err := c.env.Users.Free(c.Name)
	if err != nil {
		return err
	}
	home := filepath.Join(c.env.Paths.VHost, user)
	path := filepath.Join(c.env.Paths.WWW, user)
	logger.DebugFields("creating client", map[string]interface{}{
		"client": c.Name,
		"user":   user,
		"home":   home,
		"path":   path,
	})

	if err := c.env.Users.Create(ctx, user, home); err != nil {
		return err
	}

	b := executor.Bindings{"path": path, "user": user}
	if _, err := c.env.Shell.Run(ctx, "mkdir -p {{path}}", b); err != nil {
		return err
	}
	if _, err := c.env.Shell.Run(ctx, "chown -R {{user}}:{{user}} {{path}}", b); err != nil {
		return err
	}

	return c.env.Store.InsertClient(ctx, &store.Client{
		Name: c.Name,
		User: user,
		Path: path,
	})
}

// Remove deletes the client record and its account, moving the account's
// home to the backup directory. A missing client is a no-op.
//
// Hosts are removed first only with opts.Cascade; otherwise they are left
// behind and reported.
func (c *Client) Remove(ctx context.Context, opts RemoveOptions) error {
	info, err := c.Info(ctx)
	if err != nil || info == nil {
		return err
	}

	hosts, err := c.Hosts(ctx)
	if err != nil {
		return err
	}

	if opts.Cascade {
		var errs error
		for _, h := range hosts {
			errs = multierr.Append(errs, c.RemoveHost(ctx, h.Host))
		}
		if errs != nil {
			return herrors.WrapEntity(herrors.CodeOf(errs), c.Name, "failed to remove hosts", errs)
		}
	} else if len(hosts) > 0 {
		names := make([]string, 0, len(hosts))
		for _, h := range hosts {
			names = append(names, h.Host)
		}
		logger.Warn("client %s still owns hosts that are not removed: %s", c.Name, strings.Join(names, ", "))
	}

	if err := c.env.Store.DeleteClient(ctx, c.Name); err != nil {
		return err
	}
	return c.env.Users.Remove(ctx, info.User, filepath.Join(c.env.Paths.Backup, info.User))
}

// Host returns a handle on a host of this client.
func (c *Client) Host(name string) *Host {
	return NewHost(c.env, c, name)
}

// AddHost provisions a host under this client.
func (c *Client) AddHost(ctx context.Context, name string, aliases ...string) (*Host, error) {
	h := c.Host(name)
	h.Aliases = aliases
	if err := h.Create(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

// RemoveHost deprovisions a host of this client.
func (c *Client) RemoveHost(ctx context.Context, name string) error {
	return c.Host(name).Remove(ctx)
}

// Hosts returns the client's host records ordered by hostname.
func (c *Client) Hosts(ctx context.Context) ([]store.Host, error) {
	return AllHostsByClient(ctx, c.env, c.Name)
}
