package executor

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/shlex"
	"github.com/kballard/go-shellquote"

	herrors "github.com/ksyq12/hostctl/internal/errors"
	"github.com/ksyq12/hostctl/internal/logger"
)

// Bindings maps placeholder names to their values.
type Bindings map[string]string

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Shell runs command templates such as "chown -R {{user}}:{{user}} {{path}}".
//
// The template is split into argv words before substitution, so a bound
// value always stays inside the word it was placed in and is never
// re-interpreted by a shell.
type Shell struct {
	exec CommandExecutor
}

// NewShell creates a Shell that runs commands through exec
func NewShell(exec CommandExecutor) *Shell {
	return &Shell{exec: exec}
}

// Expand splits the template and substitutes bindings into each word.
// Stray braces left in a word after placeholders are matched are rejected,
// so a template that was not fully understood never runs.
func Expand(tmpl string, bindings Bindings) ([]string, error) {
	// "{{ path }}" would otherwise be split into three words
	words, err := shlex.Split(placeholder.ReplaceAllString(tmpl, "{{$1}}"))
	if err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeValidation, "invalid command template "+tmpl, err)
	}
	if len(words) == 0 {
		return nil, herrors.Validation("empty command template")
	}

	var missing []string
	for i, w := range words {
		if rest := placeholder.ReplaceAllString(w, ""); strings.Contains(rest, "{{") || strings.Contains(rest, "}}") {
			return nil, herrors.Validation("command template %q: malformed placeholder in %q", tmpl, w)
		}
		words[i] = placeholder.ReplaceAllStringFunc(w, func(m string) string {
			key := placeholder.FindStringSubmatch(m)[1]
			v, ok := bindings[key]
			if !ok {
				missing = append(missing, key)
				return m
			}
			return v
		})
	}
	if len(missing) > 0 {
		return nil, herrors.Validation("command template %q: unbound placeholder %s", tmpl, strings.Join(missing, ", "))
	}
	return words, nil
}

// Run expands tmpl with bindings and executes it, returning the captured output.
// A non-zero exit becomes an EXTERNAL_COMMAND error that carries the output.
func (s *Shell) Run(ctx context.Context, tmpl string, bindings Bindings) ([]byte, error) {
	argv, err := Expand(tmpl, bindings)
	if err != nil {
		return nil, err
	}

	cmdline := shellquote.Join(argv...)
	logger.DebugFields("exec", map[string]interface{}{"cmd": cmdline})

	out, err := s.exec.Execute(ctx, argv[0], argv[1:]...)
	if err != nil {
		return out, herrors.Command(cmdline, out, err)
	}
	return out, nil
}

// LookPath reports whether an executable is available.
func (s *Shell) LookPath(file string) (string, error) {
	return s.exec.LookPath(file)
}
