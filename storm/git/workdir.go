package git

import (
	"context"
	"fmt"

	"github.com/byte4ever/prstorm/storm/exec"
)

// Workdir is an existing local git working tree. Create
// with Detect.
type Workdir struct {
	// Dir is the repository root on the filesystem.
	Dir string
	// RemoteName is the name of the upstream remote.
	RemoteName string
}

// Detect locates the git repository enclosing dir and
// returns a Workdir rooted at its top level. Pass empty
// dir to start from the current working directory. The
// remote defaults to "origin"; set RemoteName to
// override.
func Detect(
	ctx context.Context,
	dir string,
) (*Workdir, error) {
	const errCtx = "detecting git repository"

	root, err := exec.ExTrim(
		ctx, dir, "git",
		"rev-parse", "--show-toplevel",
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: not inside a git work tree: %w",
			errCtx, err,
		)
	}

	return &Workdir{
		Dir:        root,
		RemoteName: "origin",
	}, nil
}

// Root returns the repository root directory.
func (w *Workdir) Root() string {
	return w.Dir
}

// SyncBase brings the local base branch up to date with
// the remote. It fetches the branch, creates a local
// tracking branch when none exists, and otherwise checks
// it out and fast-forwards it. A diverged history makes
// the fast-forward fail, which is fatal and not retried.
func (w *Workdir) SyncBase(
	ctx context.Context,
	base string,
) error {
	const errCtx = "syncing base branch"

	if _, err := exec.Ex(
		ctx, w.Dir, "git",
		"fetch", w.RemoteName, base,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if !w.HasLocalBranch(ctx, base) {
		if _, err := exec.Ex(
			ctx, w.Dir, "git",
			"checkout", "-b", base,
			"--track", w.RemoteName+"/"+base,
		); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		return nil
	}

	if _, err := exec.Ex(
		ctx, w.Dir, "git", "checkout", base,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if _, err := exec.Ex(
		ctx, w.Dir, "git",
		"pull", "--ff-only", w.RemoteName, base,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// HasLocalBranch reports whether a local branch with the
// given name exists.
func (w *Workdir) HasLocalBranch(
	ctx context.Context,
	name string,
) bool {
	_, err := exec.Ex(
		ctx, w.Dir, "git",
		"show-ref", "--verify", "--quiet",
		"refs/heads/"+name,
	)

	return err == nil
}

// StartBranch creates branch from the current tip of
// base and checks it out.
func (w *Workdir) StartBranch(
	ctx context.Context,
	branch string,
	base string,
) error {
	const errCtx = "starting branch"

	if _, err := exec.Ex(
		ctx, w.Dir, "git",
		"checkout", "-b", branch, base,
	); err != nil {
		return fmt.Errorf(
			"%s: %s: %w", errCtx, branch, err,
		)
	}

	return nil
}

// Stage adds the file at the given repository-relative
// path to the index.
func (w *Workdir) Stage(
	ctx context.Context,
	path string,
) error {
	const errCtx = "staging file"

	if _, err := exec.Ex(
		ctx, w.Dir, "git", "add", "--", path,
	); err != nil {
		return fmt.Errorf(
			"%s: %s: %w", errCtx, path, err,
		)
	}

	return nil
}

// Commit records the staged changes with the given
// message.
func (w *Workdir) Commit(
	ctx context.Context,
	message string,
) error {
	const errCtx = "committing"

	if _, err := exec.Ex(
		ctx, w.Dir, "git",
		"commit", "-m", message,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// Push pushes the branch to the remote and establishes
// upstream tracking.
func (w *Workdir) Push(
	ctx context.Context,
	branch string,
) error {
	const errCtx = "pushing branch"

	if _, err := exec.Ex(
		ctx, w.Dir, "git",
		"push", "--set-upstream",
		w.RemoteName, branch,
	); err != nil {
		return fmt.Errorf(
			"%s: %s: %w", errCtx, branch, err,
		)
	}

	return nil
}

// MergeBack absorbs any remote progress on base, merges
// branch into it with an automatically generated merge
// commit, and pushes the updated base to the remote.
func (w *Workdir) MergeBack(
	ctx context.Context,
	branch string,
	base string,
) error {
	const errCtx = "merging branch back"

	if _, err := exec.Ex(
		ctx, w.Dir, "git", "checkout", base,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if _, err := exec.Ex(
		ctx, w.Dir, "git",
		"pull", w.RemoteName, base,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	// --no-ff guarantees a merge commit even though the
	// branch is strictly ahead of base.
	if _, err := exec.Ex(
		ctx, w.Dir, "git",
		"merge", "--no-ff", "--no-edit", branch,
	); err != nil {
		return fmt.Errorf(
			"%s: %s: %w", errCtx, branch, err,
		)
	}

	if _, err := exec.Ex(
		ctx, w.Dir, "git",
		"push", w.RemoteName, base,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// LastCommitMessage returns the most recent commit
// message on the current branch. Returns empty string
// on error.
func (w *Workdir) LastCommitMessage(
	ctx context.Context,
) string {
	msg, err := exec.Ex(
		ctx, w.Dir, "git",
		"log", "-1", "--pretty=%B",
	)
	if err != nil {
		return ""
	}

	return msg
}
