package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	herrors "github.com/ksyq12/hostctl/internal/errors"
)

func TestRunHostShow(t *testing.T) {
	ctx := context.Background()
	te := newTestEnv(t)
	if _, err := withClient(t, te).AddHost(ctx, "example.com", "www.example.com"); err != nil {
		t.Fatalf("AddHost failed: %v", err)
	}
	te.drv.IsEnabledFunc = func(name string) (bool, error) { return name == "example.com", nil }

	tests := []struct {
		name    string
		host    string
		json    bool
		want    []string
		wantErr error
	}{
		{
			name: "text",
			host: "example.com",
			want: []string{
				"Host:       example.com",
				"Client:     acme",
				"User:       examplecom",
				"Aliases:    www.example.com",
				"Enabled:    yes",
				"PHP socket: /run/php/php8.2-fpm-examplecom.sock",
				filepath.Join(te.drv.Paths().Available, "example.com.conf"),
			},
		},
		{
			name: "json",
			host: "example.com",
			json: true,
			want: []string{`"user": "examplecom"`, `"enabled": true`, `"aliases": [`},
		},
		{
			name:    "unknown host",
			host:    "missing.example.com",
			wantErr: herrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useDeps(t, NewMockDeps().WithEnv(te.env).Build())
			hostName = tt.host
			hostClient = "acme"
			jsonOutput = tt.json
			out := captureOutput(t)

			err := runHostShow(nil, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("output missing %q:\n%s", w, out.String())
				}
			}
		})
	}
}
