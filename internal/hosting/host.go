package hosting

import (
	"context"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"

	herrors "github.com/ksyq12/hostctl/internal/errors"
	"github.com/ksyq12/hostctl/internal/executor"
	"github.com/ksyq12/hostctl/internal/logger"
	"github.com/ksyq12/hostctl/internal/store"
	"github.com/ksyq12/hostctl/internal/template"
)

// Host is one virtual host of a client. It owns a system account, a
// directory tree, an Apache vhost and a PHP-FPM pool.
//
// The record is inserted before any resource is created and deleted only
// after every resource is gone, so a record without a fully provisioned
// host means a create or remove did not finish. Nothing is rolled back.
type Host struct {
	env    *Env
	client *Client

	Name    string
	Aliases []string // applied on Create only
}

// NewHost returns a handle on hostname under client.
func NewHost(env *Env, client *Client, name string) *Host {
	return &Host{env: env, client: client, Name: name}
}

// Client returns the owning client.
func (h *Host) Client() *Client {
	return h.client
}

// Info returns the stored record, or nil if the host does not exist.
func (h *Host) Info(ctx context.Context) (*store.Host, error) {
	return h.env.Store.GetHost(ctx, h.Name, h.client.Name)
}

// Exists reports whether the host has a record.
func (h *Host) Exists(ctx context.Context) (bool, error) {
	info, err := h.Info(ctx)
	return info != nil, err
}

func (h *Host) step(name string, fields map[string]interface{}) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["host"] = h.Name
	fields["client"] = h.client.Name
	logger.DebugFields(name, fields)
}

// Create provisions the host. An existing host is left untouched.
func (h *Host) Create(ctx context.Context) error {
	if err := ValidateHostname(h.Name); err != nil {
		return err
	}
	for _, a := range h.Aliases {
		if err := ValidateHostname(a); err != nil {
			return err
		}
	}

	if exists, err := h.Exists(ctx); err != nil || exists {
		return err
	}

	client, err := h.client.Info(ctx)
	if err != nil {
		return err
	}
	if client == nil {
		return herrors.NotFound("client", h.client.Name)
	}

	user, err := h.env.Users.Free(h.Name)
	if err != nil {
		return err
	}
	folder, err := Sanitize(h.Name)
	if err != nil {
		return err
	}
	rec := &store.Host{
		Host:   h.Name,
		Client: h.client.Name,
		User:   user,
		Path:   filepath.Join(client.Path, folder),
		Alias:  store.JoinAlias(h.Aliases),
	}

	h.step("insert host record", map[string]interface{}{"user": rec.User, "path": rec.Path})
	if err := h.env.Store.InsertHost(ctx, rec); err != nil {
		return err
	}

	h.step("create account", nil)
	if err := h.env.Users.Create(ctx, rec.User, rec.Path); err != nil {
		return err
	}

	h.step("install vhost", nil)
	if err := h.install(rec); err != nil {
		return err
	}

	h.step("create directories", nil)
	if err := h.createTree(ctx, rec.Path, rec.User); err != nil {
		return err
	}

	h.step("enable vhost", nil)
	if err := h.env.Driver.Enable(h.Name); err != nil {
		return herrors.WrapEntity(herrors.CodeOf(err), h.Name, "failed to enable vhost", err)
	}

	h.step("create pool", nil)
	if err := h.env.Pools.Create(ctx, rec.User, rec.Path); err != nil {
		return err
	}

	h.step("reload web server", nil)
	return h.env.Driver.Reload(ctx)
}

// Update re-renders and re-installs the vhost from the stored record and
// reloads the web server. The account, directories and pool are untouched.
func (h *Host) Update(ctx context.Context) error {
	rec, err := h.Info(ctx)
	if err != nil {
		return err
	}
	if rec == nil {
		return herrors.NotFound("host", h.Name)
	}

	h.step("install vhost", map[string]interface{}{"alias": rec.Alias})
	if err := h.install(rec); err != nil {
		return err
	}
	return h.env.Driver.Reload(ctx)
}

// SetAliases stores a new alias list and applies it with Update.
func (h *Host) SetAliases(ctx context.Context, aliases []string) error {
	for _, a := range aliases {
		if err := ValidateHostname(a); err != nil {
			return err
		}
	}
	if err := h.env.Store.UpdateHostAlias(ctx, h.Name, h.client.Name, store.JoinAlias(aliases)); err != nil {
		return err
	}
	h.Aliases = aliases
	return h.Update(ctx)
}

// Remove deprovisions the host. A missing host is a no-op.
//
// The vhost is disabled first. The config file, directory tree, pool and
// account are then removed concurrently; every one of them is attempted and
// their failures are combined. The record is deleted after the final
// reload.
func (h *Host) Remove(ctx context.Context) error {
	rec, err := h.Info(ctx)
	if err != nil || rec == nil {
		return err
	}

	h.step("disable vhost", nil)
	if err := h.env.Driver.Disable(h.Name); err != nil {
		return herrors.WrapEntity(herrors.CodeOf(err), h.Name, "failed to disable vhost", err)
	}

	h.step("tear down", map[string]interface{}{"user": rec.User, "path": rec.Path})
	// The account's home is rec.Path, which the tree removal deletes at the
	// same time. The backup of a host account is best-effort: whatever the
	// move reaches before rm wins ends up in Paths.Backup.
	err = teardown(ctx,
		func(context.Context) error {
			return h.env.Driver.Uninstall(h.Name)
		},
		func(ctx context.Context) error {
			return h.removeTree(ctx, rec.Path)
		},
		func(ctx context.Context) error {
			return h.env.Pools.Remove(ctx, rec.User)
		},
		func(ctx context.Context) error {
			return h.env.Users.Remove(ctx, rec.User, filepath.Join(h.env.Paths.Backup, rec.User))
		},
	)
	if err != nil {
		return herrors.WrapEntity(herrors.CodeOf(err), h.Name, "teardown incomplete", err)
	}

	h.step("reload web server", nil)
	if err := h.env.Driver.Reload(ctx); err != nil {
		return err
	}

	h.step("delete host record", nil)
	return h.env.Store.DeleteHost(ctx, h.Name, h.client.Name)
}

// install renders the vhost for rec and writes it to the site registry.
func (h *Host) install(rec *store.Host) error {
	content, err := h.env.Renderer.VHost(template.VHostData{
		Hostname:     rec.Host,
		Port:         h.env.Port,
		User:         rec.User,
		DocumentRoot: filepath.Join(rec.Path, "web"),
		LogsFolder:   filepath.Join(rec.Path, "logs"),
		Alias:        rec.Aliases(),
		PHPSocket:    h.env.Pools.Socket(rec.User),
	})
	if err != nil {
		return err
	}
	if err := h.env.Driver.Install(rec.Host, content); err != nil {
		return herrors.WrapEntity(herrors.CodeOf(err), rec.Host, "failed to install vhost", err)
	}
	return nil
}

func (h *Host) createTree(ctx context.Context, path, user string) error {
	b := executor.Bindings{"path": path, "user": user}
	if _, err := h.env.Shell.Run(ctx,
		"mkdir -p {{path}} {{path}}/temp {{path}}/logs {{path}}/sessions {{path}}/web", b); err != nil {
		return err
	}
	_, err := h.env.Shell.Run(ctx, "chown -R {{user}}:{{user}} {{path}}", b)
	return err
}

func (h *Host) removeTree(ctx context.Context, path string) error {
	if !filepath.IsAbs(path) || filepath.Clean(path) == "/" {
		return herrors.Validation("refusing to remove %q", path)
	}
	_, err := h.env.Shell.Run(ctx, "rm -fr {{path}}", executor.Bindings{"path": path})
	return err
}

// teardown runs every task concurrently and waits for all of them.
// It returns the combined errors of the tasks that failed.
func teardown(ctx context.Context, tasks ...func(context.Context) error) error {
	errs := make([]error, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task func(context.Context) error) {
			defer wg.Done()
			errs[i] = task(ctx)
		}(i, task)
	}
	wg.Wait()

	return multierr.Combine(errs...)
}
