package runner_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/prstorm/storm/change"
	"github.com/byte4ever/prstorm/storm/commitmsg"
	"github.com/byte4ever/prstorm/storm/git"
	"github.com/byte4ever/prstorm/storm/runner"
)

// fakeWorkspace records the git operations the loop
// performs and can fail a named step.
type fakeWorkspace struct {
	root    string
	failOn  string
	calls   []string
	commits []string
	staged  []string
	pushed  []string
	merged  []string
}

func (f *fakeWorkspace) Root() string { return f.root }

func (f *fakeWorkspace) step(name string) error {
	f.calls = append(f.calls, name)

	if f.failOn == name {
		return errors.New(name + " failed")
	}

	return nil
}

func (f *fakeWorkspace) SyncBase(
	_ context.Context, _ string,
) error {
	return f.step("sync")
}

func (f *fakeWorkspace) StartBranch(
	_ context.Context, branch, _ string,
) error {
	_ = branch

	return f.step("branch")
}

func (f *fakeWorkspace) Stage(
	_ context.Context, path string,
) error {
	f.staged = append(f.staged, path)

	return f.step("stage")
}

func (f *fakeWorkspace) Commit(
	_ context.Context, message string,
) error {
	f.commits = append(f.commits, message)

	return f.step("commit")
}

func (f *fakeWorkspace) Push(
	_ context.Context, branch string,
) error {
	f.pushed = append(f.pushed, branch)

	return f.step("push")
}

func (f *fakeWorkspace) MergeBack(
	_ context.Context, branch, _ string,
) error {
	f.merged = append(f.merged, branch)

	return f.step("merge")
}

// fakeSource makes fully deterministic picks, with a
// counter suffix so artifact names never collide.
type fakeSource struct {
	kind   change.Kind
	suffix int
}

func (s *fakeSource) Kind() change.Kind { return s.kind }

func (s *fakeSource) Title() string {
	return "Fixed title"
}

func (s *fakeSource) Body() string { return "Fixed body" }

func (s *fakeSource) Suffix() int {
	s.suffix++

	return s.suffix
}

func testConfig(
	tb testing.TB,
	ws *fakeWorkspace,
	pv git.Provider,
) runner.Config {
	tb.Helper()

	if ws.root == "" {
		ws.root = tb.TempDir()
	}

	return runner.Config{
		Count:     2,
		Base:      "main",
		Workspace: ws,
		Provider:  pv,
		Source: &fakeSource{
			kind: change.KindDocs,
		},
	}
}

func okProvider(created *[]string) git.ProviderFunc {
	return func(
		_ context.Context,
		from string,
		_ string,
		_ string,
		_ string,
	) (string, error) {
		if created != nil {
			*created = append(*created, from)
		}

		return "https://example.com/pr/" + from, nil
	}
}

func TestRun_performs_exactly_n_iterations(
	t *testing.T,
) {
	t.Parallel()

	ws := &fakeWorkspace{}

	var created []string

	cfg := testConfig(t, ws, okProvider(&created))
	cfg.Count = 3

	err := runner.Run(context.Background(), cfg)

	require.NoError(t, err)
	assert.Len(t, created, 3)
	assert.Len(t, ws.merged, 3)
	assert.Len(t, ws.pushed, 3)
	assert.Len(t, ws.commits, 3)
}

func TestRun_step_order(t *testing.T) {
	t.Parallel()

	ws := &fakeWorkspace{}

	cfg := testConfig(t, ws, okProvider(nil))
	cfg.Count = 1

	err := runner.Run(context.Background(), cfg)

	require.NoError(t, err)
	assert.Equal(
		t,
		[]string{
			"sync", "branch", "stage",
			"commit", "push", "merge",
		},
		ws.calls,
	)
}

func TestRun_zero_count(t *testing.T) {
	t.Parallel()

	ws := &fakeWorkspace{}

	var created []string

	cfg := testConfig(t, ws, okProvider(&created))
	cfg.Count = 0

	err := runner.Run(context.Background(), cfg)

	require.NoError(t, err)
	assert.Empty(t, created)
	// Base sync still happens; no iteration does.
	assert.Equal(t, []string{"sync"}, ws.calls)
}

func TestRun_negative_count(t *testing.T) {
	t.Parallel()

	ws := &fakeWorkspace{}

	cfg := testConfig(t, ws, okProvider(nil))
	cfg.Count = -1

	err := runner.Run(context.Background(), cfg)

	assert.ErrorContains(t, err, "count")
	assert.Empty(t, ws.calls)
}

func TestRun_missing_workspace(t *testing.T) {
	t.Parallel()

	err := runner.Run(
		context.Background(),
		runner.Config{Provider: okProvider(nil)},
	)

	assert.ErrorContains(t, err, "workspace")
}

func TestRun_missing_provider(t *testing.T) {
	t.Parallel()

	err := runner.Run(
		context.Background(),
		runner.Config{
			Workspace: &fakeWorkspace{root: t.TempDir()},
		},
	)

	assert.ErrorContains(t, err, "provider")
}

// authedProvider wraps a ProviderFunc with a failing
// auth check.
type authedProvider struct {
	git.ProviderFunc

	authErr error
}

func (p *authedProvider) CheckAuth(
	_ context.Context,
) error {
	return p.authErr
}

func TestRun_auth_failure_aborts_before_mutation(
	t *testing.T,
) {
	t.Parallel()

	ws := &fakeWorkspace{}

	pv := &authedProvider{
		ProviderFunc: okProvider(nil),
		authErr:      errors.New("no credential"),
	}

	cfg := testConfig(t, ws, pv)

	err := runner.Run(context.Background(), cfg)

	assert.ErrorContains(t, err, "no credential")
	assert.Empty(t, ws.calls)
}

func TestRun_sync_failure_aborts_before_branching(
	t *testing.T,
) {
	t.Parallel()

	ws := &fakeWorkspace{failOn: "sync"}

	cfg := testConfig(t, ws, okProvider(nil))

	err := runner.Run(context.Background(), cfg)

	assert.ErrorContains(t, err, "sync failed")
	assert.Equal(t, []string{"sync"}, ws.calls)
}

func TestRun_push_failure_aborts_run(t *testing.T) {
	t.Parallel()

	ws := &fakeWorkspace{failOn: "push"}

	var created []string

	cfg := testConfig(t, ws, okProvider(&created))

	err := runner.Run(context.Background(), cfg)

	assert.ErrorContains(t, err, "iteration 1")
	assert.ErrorContains(t, err, "push failed")
	// The PR was never requested and nothing merged.
	assert.Empty(t, created)
	assert.Empty(t, ws.merged)
}

func TestRun_pr_failure_aborts_before_merge(
	t *testing.T,
) {
	t.Parallel()

	ws := &fakeWorkspace{}

	pv := git.ProviderFunc(func(
		_ context.Context,
		_ string,
		_ string,
		_ string,
		_ string,
	) (string, error) {
		return "", errors.New("service down")
	})

	cfg := testConfig(t, ws, pv)

	err := runner.Run(context.Background(), cfg)

	assert.ErrorContains(t, err, "service down")
	assert.Empty(t, ws.merged)
	assert.Len(t, ws.pushed, 1)
}

func TestRun_dry_run_skips_remote_mutations(
	t *testing.T,
) {
	t.Parallel()

	ws := &fakeWorkspace{}

	var created []string

	cfg := testConfig(t, ws, okProvider(&created))
	cfg.DryRun = true
	cfg.Count = 2

	err := runner.Run(context.Background(), cfg)

	require.NoError(t, err)
	assert.Len(t, ws.commits, 2)
	assert.Empty(t, ws.pushed)
	assert.Empty(t, ws.merged)
	assert.Empty(t, created)
}

func TestRun_commit_message_carries_metadata(
	t *testing.T,
) {
	t.Parallel()

	ws := &fakeWorkspace{}

	cfg := testConfig(t, ws, okProvider(nil))
	cfg.Count = 1
	cfg.Source = &fakeSource{kind: change.KindConfig}

	err := runner.Run(context.Background(), cfg)

	require.NoError(t, err)
	require.Len(t, ws.commits, 1)

	msg := ws.commits[0]

	assert.True(
		t, strings.HasPrefix(msg, "Fixed title\n"),
	)

	meta, ok := commitmsg.Extract(msg)

	require.True(t, ok)
	assert.Equal(t, "config", meta.Kind)
	assert.Equal(t, ".prstorm.conf", meta.Artifact)
}

func TestRun_branch_names_use_prefix_and_kind(
	t *testing.T,
) {
	t.Parallel()

	ws := &fakeWorkspace{}

	cfg := testConfig(t, ws, okProvider(nil))
	cfg.Count = 2
	cfg.BranchPrefix = "storm/"

	err := runner.Run(context.Background(), cfg)

	require.NoError(t, err)
	require.Len(t, ws.pushed, 2)

	for _, branch := range ws.pushed {
		assert.True(
			t, strings.HasPrefix(branch, "storm/"),
		)
		assert.True(
			t, strings.HasSuffix(branch, "-docs"),
		)
	}

	assert.NotEqual(t, ws.pushed[0], ws.pushed[1])
}

func TestRun_pr_body_carries_artifact_digest(
	t *testing.T,
) {
	t.Parallel()

	ws := &fakeWorkspace{}

	var gotBody string

	pv := git.ProviderFunc(func(
		_ context.Context,
		_ string,
		_ string,
		_ string,
		body string,
	) (string, error) {
		gotBody = body

		return "https://example.com/pr/1", nil
	})

	cfg := testConfig(t, ws, pv)
	cfg.Count = 1

	err := runner.Run(context.Background(), cfg)

	require.NoError(t, err)
	assert.Contains(t, gotBody, "Fixed body")
	assert.Contains(
		t, gotBody, "Artifact digest: sha256:",
	)
}

func TestRun_no_wait_after_last_iteration(
	t *testing.T,
) {
	t.Parallel()

	ws := &fakeWorkspace{}

	cfg := testConfig(t, ws, okProvider(nil))
	cfg.Count = 1
	cfg.Wait = time.Hour

	done := make(chan error, 1)

	go func() {
		done <- runner.Run(context.Background(), cfg)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run waited after the last iteration")
	}
}

func TestRun_cancelled_during_wait(t *testing.T) {
	t.Parallel()

	ws := &fakeWorkspace{}

	cfg := testConfig(t, ws, okProvider(nil))
	cfg.Count = 2
	cfg.Wait = time.Hour

	ctx, cancel := context.WithCancel(
		context.Background(),
	)

	done := make(chan error, 1)

	go func() {
		done <- runner.Run(ctx, cfg)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not react to cancellation")
	}

	// Only the first iteration ran.
	assert.Len(t, ws.merged, 1)
}

func TestRun_state_reader_not_fatal(t *testing.T) {
	t.Parallel()

	ws := &fakeWorkspace{}

	pv := &statefulProvider{
		ProviderFunc: okProvider(nil),
		stateErr:     errors.New("view failed"),
	}

	cfg := testConfig(t, ws, pv)
	cfg.Count = 1

	err := runner.Run(context.Background(), cfg)

	// A failed post-merge state query must not abort
	// the run.
	require.NoError(t, err)
}

type statefulProvider struct {
	git.ProviderFunc

	stateErr error
	state    string
}

func (p *statefulProvider) PRState(
	_ context.Context,
	_ string,
) (string, error) {
	if p.stateErr != nil {
		return "", p.stateErr
	}

	return p.state, nil
}

func TestRun_wraps_iteration_index(t *testing.T) {
	t.Parallel()

	ws := &fakeWorkspace{}

	calls := 0

	pv := git.ProviderFunc(func(
		_ context.Context,
		from string,
		_ string,
		_ string,
		_ string,
	) (string, error) {
		calls++

		if calls == 2 {
			return "", errors.New("boom")
		}

		return fmt.Sprintf(
			"https://example.com/pr/%s", from,
		), nil
	})

	cfg := testConfig(t, ws, pv)
	cfg.Count = 5

	err := runner.Run(context.Background(), cfg)

	assert.ErrorContains(t, err, "iteration 2")
	// The first iteration stays merged.
	assert.Len(t, ws.merged, 1)
}
