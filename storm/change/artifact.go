package change

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valyala/fasttemplate"
)

// Artifact content templates. {{VAR}} placeholders are
// substituted per iteration.
const (
	docsTemplate = `# Load note {{TIMESTAMP}}-{{SUFFIX}}

Generated change on branch ` + "`{{BRANCH}}`" + ` (iteration {{INDEX}}).
Kind: {{KIND}}.
`

	codeTemplate = `#!/bin/sh
# generated example {{TIMESTAMP}}-{{SUFFIX}}
echo "iteration {{INDEX}} on branch {{BRANCH}}"
`

	configTemplate = `entry-{{TIMESTAMP}}-{{SUFFIX}} ` +
		`branch={{BRANCH}} iteration={{INDEX}}
`
)

// Stamp carries the per-iteration values substituted
// into artifact names and templates.
type Stamp struct {
	// Timestamp is the iteration's unix timestamp.
	Timestamp int64
	// Suffix is the random name-disambiguation
	// number.
	Suffix int
	// Branch is the iteration's branch name.
	Branch string
	// Index is the 1-based iteration index.
	Index int
}

// context builds the fasttemplate substitution map.
func (s Stamp) context(kind Kind) map[string]any {
	return map[string]any{
		"TIMESTAMP": fmt.Sprintf("%d", s.Timestamp),
		"SUFFIX":    fmt.Sprintf("%d", s.Suffix),
		"BRANCH":    s.Branch,
		"INDEX":     fmt.Sprintf("%d", s.Index),
		"KIND":      string(kind),
	}
}

// GeneratorConfig configures artifact destinations
// inside the target repository. Zero values fall back
// to defaults.
type GeneratorConfig struct {
	// DocsDir receives markdown notes. Defaults to
	// "docs".
	DocsDir string
	// CodeDir receives executable shell stubs.
	// Defaults to "examples".
	CodeDir string
	// ConfFile is the shared dotfile that config
	// changes append to. Defaults to ".prstorm.conf".
	ConfFile string

	// DocsTemplate, CodeTemplate, and ConfTemplate
	// replace the built-in artifact templates. They
	// use the same {{VAR}} placeholders.
	DocsTemplate string
	CodeTemplate string
	ConfTemplate string
}

// Generator writes one artifact per iteration into the
// repository rooted at Root.
type Generator struct {
	root     string
	docsDir  string
	codeDir  string
	confFile string
	docsTpl  string
	codeTpl  string
	confTpl  string
}

// NewGenerator applies defaults to cfg and returns a
// Generator rooted at the given repository directory.
func NewGenerator(
	root string,
	cfg GeneratorConfig,
) *Generator {
	docsDir := cfg.DocsDir
	if docsDir == "" {
		docsDir = "docs"
	}

	codeDir := cfg.CodeDir
	if codeDir == "" {
		codeDir = "examples"
	}

	confFile := cfg.ConfFile
	if confFile == "" {
		confFile = ".prstorm.conf"
	}

	docsTpl := cfg.DocsTemplate
	if docsTpl == "" {
		docsTpl = docsTemplate
	}

	codeTpl := cfg.CodeTemplate
	if codeTpl == "" {
		codeTpl = codeTemplate
	}

	confTpl := cfg.ConfTemplate
	if confTpl == "" {
		confTpl = configTemplate
	}

	return &Generator{
		root:     root,
		docsDir:  docsDir,
		codeDir:  codeDir,
		confFile: confFile,
		docsTpl:  docsTpl,
		codeTpl:  codeTpl,
		confTpl:  confTpl,
	}
}

// Generate writes the artifact for the given kind and
// returns its repository-relative path. Markdown notes
// and shell stubs are new files named from the stamp's
// timestamp and suffix; config changes append one line
// to the shared config file.
func (g *Generator) Generate(
	kind Kind,
	stamp Stamp,
) (string, error) {
	const errCtx = "generating artifact"

	var (
		rel string
		err error
	)

	switch kind {
	case KindDocs:
		rel = filepath.Join(
			g.docsDir,
			fmt.Sprintf(
				"note-%d-%d.md",
				stamp.Timestamp, stamp.Suffix,
			),
		)
		err = g.writeNew(
			rel, g.docsTpl, stamp, kind, 0o644,
		)

	case KindCode:
		rel = filepath.Join(
			g.codeDir,
			fmt.Sprintf(
				"example-%d-%d.sh",
				stamp.Timestamp, stamp.Suffix,
			),
		)
		err = g.writeNew(
			rel, g.codeTpl, stamp, kind, 0o755,
		)

	case KindConfig:
		rel = g.confFile
		err = g.appendLine(
			rel, g.confTpl, stamp, kind,
		)

	default:
		return "", fmt.Errorf(
			"%s: unknown kind %q", errCtx, kind,
		)
	}

	if err != nil {
		return "", fmt.Errorf(
			"%s: %s: %w", errCtx, kind, err,
		)
	}

	return rel, nil
}

// writeNew renders the template and writes it as a new
// file, refusing to overwrite an existing artifact.
func (g *Generator) writeNew(
	rel string,
	tpl string,
	stamp Stamp,
	kind Kind,
	mode os.FileMode,
) error {
	abs := filepath.Join(g.root, rel)

	if _, err := os.Stat(abs); err == nil {
		return fmt.Errorf(
			"artifact already exists: %s", rel,
		)
	}

	if err := os.MkdirAll(
		filepath.Dir(abs), 0o755,
	); err != nil {
		return err
	}

	content := fasttemplate.New(
		tpl, "{{", "}}",
	).ExecuteString(stamp.context(kind))

	//nolint:gosec // shell stubs need the exec bit
	return os.WriteFile(abs, []byte(content), mode)
}

// appendLine renders the template and appends it to the
// shared config file, creating it on first use.
func (g *Generator) appendLine(
	rel string,
	tpl string,
	stamp Stamp,
	kind Kind,
) error {
	abs := filepath.Join(g.root, rel)

	fi, err := os.OpenFile(
		abs,
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0o644,
	)
	if err != nil {
		return err
	}

	line := fasttemplate.New(
		tpl, "{{", "}}",
	).ExecuteString(stamp.context(kind))

	if _, err := fi.WriteString(line); err != nil {
		fi.Close() //nolint:errcheck,gosec

		return err
	}

	return fi.Close()
}
