package template

import (
	"bytes"
	"embed"
	"io/fs"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	herrors "github.com/ksyq12/hostctl/internal/errors"
)

// Embedded template names
const (
	VHostTemplate = "apache/vhost.tmpl"
	PoolTemplate  = "fpm/pool.tmpl"
)

//go:embed apache/*.tmpl fpm/*.tmpl
var embedded embed.FS

// VHostData is the record rendered into an Apache virtual host.
type VHostData struct {
	Hostname     string
	Port         int
	User         string
	DocumentRoot string
	LogsFolder   string
	Alias        []string // rendered space-joined as ServerAlias
	PHPSocket    string
}

// PoolData is the record rendered into a PHP-FPM pool.
type PoolData struct {
	Name         string
	User         string
	Group        string
	ListenOwner  string // web server user allowed to connect
	Listen       string
	Home         string
	SessionPath  string
	TempPath     string
	MaxChildren  int
	StartServers int
	MinSpare     int
	MaxSpare     int
	MemoryLimit  string
}

// Renderer compiles each named template once and reuses it for every render.
// It is safe for concurrent use.
type Renderer struct {
	fsys fs.FS

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	once sync.Once
	tmpl *template.Template
	err  error
}

// NewRenderer returns a Renderer over the embedded templates.
func NewRenderer() *Renderer {
	return NewRendererFS(embedded)
}

// NewRendererFS returns a Renderer reading templates from fsys.
func NewRendererFS(fsys fs.FS) *Renderer {
	return &Renderer{
		fsys:    fsys,
		entries: make(map[string]*entry),
	}
}

// Render executes the named template against data.
// A missing or malformed template fails on every call; the compile is not retried.
func (r *Renderer) Render(name string, data interface{}) (string, error) {
	tmpl, err := r.compile(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", herrors.Wrap(herrors.ErrCodeTemplate, "failed to render template "+name, err)
	}
	return buf.String(), nil
}

// VHost renders the Apache virtual host for a host.
func (r *Renderer) VHost(data VHostData) (string, error) {
	return r.Render(VHostTemplate, data)
}

// Pool renders the PHP-FPM pool for a host.
func (r *Renderer) Pool(data PoolData) (string, error) {
	return r.Render(PoolTemplate, data)
}

func (r *Renderer) compile(name string) (*template.Template, error) {
	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		e = &entry{}
		r.entries[name] = e
	}
	r.mu.Unlock()

	e.once.Do(func() {
		content, err := fs.ReadFile(r.fsys, name)
		if err != nil {
			e.err = herrors.Wrap(herrors.ErrCodeTemplate, "template not found: "+name, err)
			return
		}
		tmpl, err := template.New(name).
			Option("missingkey=error").
			Funcs(sprig.TxtFuncMap()).
			Parse(string(content))
		if err != nil {
			e.err = herrors.Wrap(herrors.ErrCodeTemplate, "failed to parse template "+name, err)
			return
		}
		e.tmpl = tmpl
	})
	return e.tmpl, e.err
}
