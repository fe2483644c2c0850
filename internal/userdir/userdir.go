// Package userdir allocates, creates and removes the system accounts that
// own client and host directory trees.
package userdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/moby/sys/user"

	herrors "github.com/ksyq12/hostctl/internal/errors"
	"github.com/ksyq12/hostctl/internal/executor"
	"github.com/ksyq12/hostctl/internal/logger"
)

// MaxNameLength is the longest account name useradd accepts.
const MaxNameLength = 32

// Directory manages system accounts through the passwd database.
type Directory struct {
	passwd string
	group  string
	shell  *executor.Shell
}

// New creates a Directory reading accounts from passwd. The group database
// is expected next to it.
func New(passwd string, exec executor.CommandExecutor) *Directory {
	return &Directory{
		passwd: passwd,
		group:  filepath.Join(filepath.Dir(passwd), "group"),
		shell:  executor.NewShell(exec),
	}
}

// Normalize turns a desired name into a valid account name: lowercase
// [a-z0-9_-], starting with a letter, at most MaxNameLength long.
func Normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		s = "u" + s
	}
	if len(s) > MaxNameLength {
		s = s[:MaxNameLength]
	}
	return s
}

// Free returns an unused account name derived from name. On collision a
// counter is appended, shortening the base so the result still fits.
func (d *Directory) Free(name string) (string, error) {
	taken, err := d.taken()
	if err != nil {
		return "", err
	}

	base := Normalize(name)
	if !taken[base] {
		return base, nil
	}
	for i := 1; ; i++ {
		suffix := strconv.Itoa(i)
		b := base
		if len(b)+len(suffix) > MaxNameLength {
			b = b[:MaxNameLength-len(suffix)]
		}
		if candidate := b + suffix; !taken[candidate] {
			return candidate, nil
		}
	}
}

// taken collects every user and group name in use.
func (d *Directory) taken() (map[string]bool, error) {
	names := make(map[string]bool)

	_, err := user.ParsePasswdFileFilter(d.passwd, func(u user.User) bool {
		names[u.Name] = true
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", d.passwd, err)
	}

	// useradd --user-group fails on an existing group as well
	_, err = user.ParseGroupFileFilter(d.group, func(g user.Group) bool {
		names[g.Name] = true
		return false
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", d.group, err)
	}

	return names, nil
}

// Lookup returns the passwd entry for name, or nil if there is none.
func (d *Directory) Lookup(name string) (*user.User, error) {
	users, err := user.ParsePasswdFileFilter(d.passwd, func(u user.User) bool {
		return u.Name == name
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", d.passwd, err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// Create adds a login-less account with its own group and home directory.
func (d *Directory) Create(ctx context.Context, name, home string) error {
	_, err := d.shell.Run(ctx,
		"useradd --home-dir {{home}} --create-home --shell /usr/sbin/nologin --user-group {{user}}",
		executor.Bindings{"home": home, "user": name})
	if err != nil {
		return herrors.WrapEntity(herrors.ErrCodeExternalCommand, name, "failed to create account", err)
	}
	logger.Debug("created account %s with home %s", name, home)
	return nil
}

// Remove deletes the account, moving its home directory to backup first.
// An unknown account is not an error.
func (d *Directory) Remove(ctx context.Context, name, backup string) error {
	u, err := d.Lookup(name)
	if err != nil {
		return err
	}
	if u == nil {
		logger.Debug("account %s does not exist, nothing to remove", name)
		return nil
	}

	if err := d.backup(ctx, u.Home, backup); err != nil {
		return herrors.WrapEntity(herrors.ErrCodeExternalCommand, name, "failed to back up home", err)
	}

	if _, err := d.shell.Run(ctx, "userdel {{user}}", executor.Bindings{"user": name}); err != nil {
		return herrors.WrapEntity(herrors.ErrCodeExternalCommand, name, "failed to delete account", err)
	}
	return nil
}

func (d *Directory) backup(ctx context.Context, home, backup string) error {
	if home == "" {
		return nil
	}
	if _, err := os.Stat(home); os.IsNotExist(err) {
		return nil
	}

	// keep an earlier backup of a reused account name
	if _, err := os.Stat(backup); err == nil {
		backup = backup + "-" + time.Now().Format("20060102150405")
	}

	if _, err := d.shell.Run(ctx, "mkdir -p {{parent}}", executor.Bindings{"parent": filepath.Dir(backup)}); err != nil {
		return err
	}
	if _, err := d.shell.Run(ctx, "mv {{home}} {{backup}}", executor.Bindings{"home": home, "backup": backup}); err != nil {
		// the home may be torn down concurrently by its owner
		if _, statErr := os.Stat(home); os.IsNotExist(statErr) {
			logger.Warn("home %s vanished before backup", home)
			return nil
		}
		return err
	}
	return nil
}
