// Command prstorm generates pull requests in bulk
// against the repository it runs in. Each iteration
// commits a small generated change on a fresh branch,
// opens a pull request on the configured git hosting
// platform, and merges it back into the base branch.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/byte4ever/prstorm/storm/change"
	"github.com/byte4ever/prstorm/storm/git"
	"github.com/byte4ever/prstorm/storm/git/bitbucket"
	"github.com/byte4ever/prstorm/storm/git/ghcli"
	"github.com/byte4ever/prstorm/storm/git/github"
	"github.com/byte4ever/prstorm/storm/git/gitlab"
	"github.com/byte4ever/prstorm/storm/runner"
)

func main() {
	opts, err := runner.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, runner.Usage)
		os.Exit(1)
	}

	if opts.Help {
		fmt.Print(runner.Usage)

		return
	}

	if err := run(opts); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(opts runner.Options) error {
	const errCtx = "running prstorm"

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	workdir, err := git.Detect(ctx, cwd)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if opts.Remote != "" {
		workdir.RemoteName = opts.Remote
	}

	cfg := runner.Config{
		Count:        opts.Count,
		Wait:         time.Duration(opts.Wait) * time.Second,
		Base:         opts.Base,
		BranchPrefix: opts.BranchPrefix,
		DryRun:       opts.DryRun,
		Workspace:    workdir,
	}

	if opts.ProfilePath != "" {
		pf, err := runner.LoadProfile(opts.ProfilePath)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		applyProfile(&cfg, pf, opts, workdir.Root())
	}

	provider, err := newGitProvider(opts, workdir)
	if err != nil {
		return fmt.Errorf(
			"%s: create provider: %w", errCtx, err,
		)
	}

	cfg.Provider = provider

	if err := runner.Run(ctx, cfg); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// applyProfile folds a run profile into the config.
// Values given explicitly on the command line win over
// the profile.
func applyProfile(
	cfg *runner.Config,
	pf *runner.Profile,
	opts runner.Options,
	root string,
) {
	defaults := runner.DefaultOptions()

	if pf.Base != "" && opts.Base == defaults.Base {
		cfg.Base = pf.Base
	}

	if pf.BranchPrefix != "" &&
		opts.BranchPrefix == defaults.BranchPrefix {
		cfg.BranchPrefix = pf.BranchPrefix
	}

	cfg.Source = change.NewPicker(pf.PickerConfig())
	cfg.Generator = change.NewGenerator(
		root, pf.GeneratorConfig(),
	)
}

// newGitProvider creates a git.Provider based on the
// provider name. Pattern: Factory -- selects platform
// implementation at runtime.
func newGitProvider(
	opts runner.Options,
	workdir *git.Workdir,
) (git.Provider, error) {
	const errCtx = "creating git provider"

	switch opts.Provider {
	case "ghcli":
		return ghcli.NewProvider(ghcli.Config{
			Binary: opts.GhBinary,
			Dir:    workdir.Root(),
			Repo:   opts.GhRepo,
		}), nil

	case "github":
		p, err := github.NewProvider(github.Config{
			RepoOwner:      opts.GithubRepoOwner,
			Repo:           opts.GithubRepo,
			AccessToken:    opts.GithubAccessToken,
			EnterpriseHost: opts.GithubEnterpriseHost,
		})
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		return p, nil

	case "gitlab":
		p, err := gitlab.NewProvider(gitlab.Config{
			Host:        opts.GitlabHost,
			Repo:        opts.GitlabRepo,
			AccessToken: opts.GitlabAccessToken,
		})
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		return p, nil

	case "bitbucket":
		p, err := bitbucket.NewProvider(
			bitbucket.Config{
				APIEndpoint: opts.BitbucketAPIEndpoint,
				ProjectKey:  opts.BitbucketProjectKey,
				RepoSlug:    opts.BitbucketRepoSlug,
				User:        opts.BitbucketUser,
				Password:    opts.BitbucketPassword,
			},
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		return p, nil

	default:
		return nil, fmt.Errorf(
			"%s: unknown provider %q",
			errCtx, opts.Provider,
		)
	}
}
