package runner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/byte4ever/prstorm/storm/change"
	"github.com/byte4ever/prstorm/storm/commitmsg"
	"github.com/byte4ever/prstorm/storm/digester"
	"github.com/byte4ever/prstorm/storm/git"
)

// Workspace is the narrow set of git capabilities the
// loop needs. *git.Workdir implements it against a real
// working tree; tests inject an in-memory fake.
type Workspace interface {
	Root() string
	SyncBase(ctx context.Context, base string) error
	StartBranch(
		ctx context.Context,
		branch string,
		base string,
	) error
	Stage(ctx context.Context, path string) error
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context, branch string) error
	MergeBack(
		ctx context.Context,
		branch string,
		base string,
	) error
}

// Generator writes the per-iteration artifact.
// *change.Generator implements it.
type Generator interface {
	Generate(
		kind change.Kind,
		stamp change.Stamp,
	) (string, error)
}

// Config holds all settings for a generation run. Use a
// Config struct instead of many arguments.
type Config struct {
	// Count is the number of PRs to generate.
	Count int

	// Wait is the delay between iterations. Not
	// applied after the last one.
	Wait time.Duration

	// Base is the base branch name (e.g. "main").
	Base string

	// BranchPrefix is prepended to generated branch
	// names. Defaults to "loadtest/".
	BranchPrefix string

	// DryRun skips push, PR creation, and merge-back
	// when true; branches stay local.
	DryRun bool

	// Workspace is the git working tree the run
	// mutates.
	Workspace Workspace

	// Provider creates pull requests on the hosting
	// platform.
	Provider git.Provider

	// Source provides the randomized choices. Nil
	// means a time-seeded change.Picker with default
	// pools.
	Source change.Source

	// Generator writes artifacts. Nil means a
	// change.Generator with default destinations
	// rooted at the workspace.
	Generator Generator

	// Now is the clock used for branch and artifact
	// names. Nil means time.Now.
	Now func() time.Time
}

// Run executes the full generation run: preflight,
// base-branch sync, then Count sequential iterations.
// Any failing step aborts the whole run.
func Run(ctx context.Context, cfg Config) error {
	const errCtx = "running pr generation"

	if cfg.Workspace == nil {
		return fmt.Errorf(
			"%s: workspace must be set", errCtx,
		)
	}

	if cfg.Provider == nil {
		return fmt.Errorf(
			"%s: provider must be set", errCtx,
		)
	}

	if cfg.Count < 0 {
		return fmt.Errorf(
			"%s: count must not be negative", errCtx,
		)
	}

	if cfg.Base == "" {
		cfg.Base = "main"
	}

	if cfg.BranchPrefix == "" {
		cfg.BranchPrefix = "loadtest/"
	}

	if cfg.Source == nil {
		cfg.Source = change.NewPicker(
			change.PickerConfig{},
		)
	}

	if cfg.Generator == nil {
		cfg.Generator = change.NewGenerator(
			cfg.Workspace.Root(),
			change.GeneratorConfig{},
		)
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	// Preflight: verify the credential before any
	// mutation.
	if ac, ok := cfg.Provider.(git.AuthChecker); ok {
		if err := ac.CheckAuth(ctx); err != nil {
			return fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}
	}

	if err := cfg.Workspace.SyncBase(
		ctx, cfg.Base,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	for i := 1; i <= cfg.Count; i++ {
		if err := runIteration(ctx, cfg, i); err != nil {
			return fmt.Errorf(
				"%s: iteration %d: %w", errCtx, i, err,
			)
		}

		if i < cfg.Count {
			if err := wait(ctx, cfg.Wait); err != nil {
				return fmt.Errorf(
					"%s: %w", errCtx, err,
				)
			}
		}
	}

	slog.Info(
		"run complete",
		"count", cfg.Count,
		"base", cfg.Base,
	)

	return nil
}

// runIteration performs one full cycle: branch, change,
// commit, push, PR, merge back.
func runIteration(
	ctx context.Context,
	cfg Config,
	index int,
) error {
	kind := cfg.Source.Kind()
	suffix := cfg.Source.Suffix()
	timestamp := cfg.Now().Unix()

	branch := change.BranchName(
		cfg.BranchPrefix, timestamp, suffix, kind,
	)

	slog.Info(
		"starting iteration",
		"index", index,
		"branch", branch,
		"kind", kind,
	)

	if err := cfg.Workspace.StartBranch(
		ctx, branch, cfg.Base,
	); err != nil {
		return err
	}

	rel, err := cfg.Generator.Generate(
		kind,
		change.Stamp{
			Timestamp: timestamp,
			Suffix:    suffix,
			Branch:    branch,
			Index:     index,
		},
	)
	if err != nil {
		return err
	}

	if err := cfg.Workspace.Stage(ctx, rel); err != nil {
		return err
	}

	title := cfg.Source.Title()

	msg := commitmsg.Generate(
		title,
		commitmsg.Meta{
			Kind:     string(kind),
			Artifact: rel,
		},
	)

	if err := cfg.Workspace.Commit(ctx, msg); err != nil {
		return err
	}

	if cfg.DryRun {
		slog.Info(
			"dry run: skipping push, pr, and merge",
			"index", index,
			"branch", branch,
		)

		return nil
	}

	if err := cfg.Workspace.Push(ctx, branch); err != nil {
		return err
	}

	ref, err := cfg.Provider.CreatePR(
		ctx,
		branch,
		cfg.Base,
		title,
		prBody(cfg, rel),
	)
	if err != nil {
		return err
	}

	slog.Info(
		"created pull request",
		"index", index,
		"url", ref,
	)

	if err := cfg.Workspace.MergeBack(
		ctx, branch, cfg.Base,
	); err != nil {
		return err
	}

	confirmMerge(ctx, cfg, index, ref)

	return nil
}

// prBody builds the PR body: a randomly drawn canned
// body plus the artifact's content digest.
func prBody(cfg Config, rel string) string {
	body := cfg.Source.Body()

	digest, err := digester.CalculateDigest(
		filepath.Join(cfg.Workspace.Root(), rel),
	)
	if err != nil || digest == "" {
		return body
	}

	return body +
		"\n\nArtifact digest: sha256:" + digest
}

// confirmMerge logs the post-merge PR state when the
// provider can report it. A failed state query is not
// fatal: the merge itself already happened.
func confirmMerge(
	ctx context.Context,
	cfg Config,
	index int,
	ref string,
) {
	sr, ok := cfg.Provider.(git.StateReader)
	if !ok || ref == "" {
		slog.Info("merged to base", "index", index)

		return
	}

	state, err := sr.PRState(ctx, ref)
	if err != nil {
		slog.Warn(
			"cannot confirm pr state",
			"index", index,
			"error", err,
		)

		return
	}

	slog.Info(
		"merged to base",
		"index", index,
		"pr_state", state,
	)
}

// wait pauses between iterations. The pause ends early
// with the context's error when the run is cancelled.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
