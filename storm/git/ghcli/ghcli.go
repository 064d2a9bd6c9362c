package ghcli

import (
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/byte4ever/prstorm/storm/exec"
)

// Config holds the settings needed to create a gh CLI
// pull request provider.
type Config struct {
	// Binary is the gh binary name or path. Defaults
	// to "gh".
	Binary string
	// Dir is the repository directory gh commands run
	// in. Empty means the current working directory.
	Dir string
	// Repo optionally pins the target repository as
	// "owner/repo" via --repo. Leave empty to let gh
	// infer it from the git remotes.
	Repo string
}

// Provider creates pull requests by shelling out to the
// gh CLI.
//
// Pattern: Strategy -- implements git.Provider.
type Provider struct {
	binary string
	dir    string
	repo   string
}

// NewProvider applies defaults to cfg and returns a
// Provider ready to create pull requests.
func NewProvider(cfg Config) *Provider {
	binary := cfg.Binary
	if binary == "" {
		binary = "gh"
	}

	return &Provider{
		binary: binary,
		dir:    cfg.Dir,
		repo:   cfg.Repo,
	}
}

// CheckAuth verifies the gh binary is on the execution
// path and reports an authenticated session. It performs
// no mutation.
func (p *Provider) CheckAuth(ctx context.Context) error {
	const errCtx = "checking gh authentication"

	if err := exec.Lookup(p.binary); err != nil {
		return fmt.Errorf(
			"%s: gh is not installed: %w", errCtx, err,
		)
	}

	if out, err := exec.Ex(
		ctx, p.dir, p.binary, "auth", "status",
	); err != nil {
		return fmt.Errorf(
			"%s: not authenticated: %s: %w",
			errCtx, strings.TrimSpace(out), err,
		)
	}

	return nil
}

// CreatePR creates a pull request from branch "from"
// into branch "to" and returns the URL gh prints for it.
func (p *Provider) CreatePR(
	ctx context.Context,
	from string,
	to string,
	title string,
	body string,
) (string, error) {
	const errCtx = "creating pull request via gh"

	args := []string{
		"pr", "create",
		"--base", to,
		"--head", from,
		"--title", title,
		"--body", body,
	}

	if p.repo != "" {
		args = append(args, "--repo", p.repo)
	}

	out, err := exec.Ex(
		ctx, p.dir, p.binary, args...,
	)
	if err != nil {
		return "", fmt.Errorf(
			"%s: %s: %w",
			errCtx, strings.TrimSpace(out), err,
		)
	}

	url := lastURL(out)
	if url == "" {
		return "", fmt.Errorf(
			"%s: no pull request url in output: %q",
			errCtx, strings.TrimSpace(out),
		)
	}

	return url, nil
}

// prView mirrors the fields requested from
// gh pr view --json.
type prView struct {
	State string `json:"state"`
	URL   string `json:"url"`
}

// PRState returns the state gh reports for the pull
// request identified by ref (a URL, number, or branch).
func (p *Provider) PRState(
	ctx context.Context,
	ref string,
) (string, error) {
	const errCtx = "querying pull request state"

	args := []string{
		"pr", "view", ref, "--json", "state,url",
	}

	if p.repo != "" {
		args = append(args, "--repo", p.repo)
	}

	out, err := exec.Ex(
		ctx, p.dir, p.binary, args...,
	)
	if err != nil {
		return "", fmt.Errorf(
			"%s: %s: %w",
			errCtx, strings.TrimSpace(out), err,
		)
	}

	var view prView
	if err := json.Unmarshal(
		[]byte(out), &view,
	); err != nil {
		return "", fmt.Errorf(
			"%s: parse json: %w", errCtx, err,
		)
	}

	return view.State, nil
}

// lastURL returns the last whitespace-separated token
// starting with http in the output, or empty string.
// gh pr create prints the PR URL as its final line but
// may precede it with informational text.
func lastURL(out string) string {
	url := ""

	for _, tok := range strings.Fields(out) {
		if strings.HasPrefix(tok, "http") {
			url = tok
		}
	}

	return url
}
