package runner

import (
	"fmt"
	"strconv"
	"strings"
)

// Options are the command-line settings of a run.
type Options struct {
	// Count is the number of PRs to create.
	Count int
	// Wait is the delay between PRs, in seconds.
	Wait int
	// Base is the base branch name.
	Base string
	// Remote is the name of the upstream remote.
	Remote string
	// BranchPrefix is prepended to generated branch
	// names.
	BranchPrefix string
	// ProfilePath is an optional YAML run profile.
	ProfilePath string
	// DryRun skips push, PR creation, and merge.
	DryRun bool
	// Provider selects the hosting platform adapter.
	Provider string
	// Help requests the usage text.
	Help bool

	// GhBinary is the gh binary name or path.
	GhBinary string
	// GhRepo pins the target repository for gh.
	GhRepo string

	GithubRepoOwner      string
	GithubRepo           string
	GithubAccessToken    string
	GithubEnterpriseHost string

	GitlabHost        string
	GitlabRepo        string
	GitlabAccessToken string

	BitbucketAPIEndpoint string
	BitbucketProjectKey  string
	BitbucketRepoSlug    string
	BitbucketUser        string
	BitbucketPassword    string
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Count:        600,
		Wait:         3,
		Base:         "main",
		Remote:       "origin",
		BranchPrefix: "loadtest/",
		Provider:     "ghcli",
		GhBinary:     "gh",
	}
}

// Usage is the command-line help text.
const Usage = `Usage: prstorm [options]

Generate pull requests in bulk against the current repository: each
iteration commits a small generated change on a fresh branch, opens a
pull request, and merges it back into the base branch.

Options:
  -n, --number NUM     number of PRs to create (default 600)
  -w, --wait SECONDS   seconds to wait between PRs (default 3)
  -h, --help           show this help and exit

      --base BRANCH            base branch (default "main")
      --remote NAME            upstream remote (default "origin")
      --branch-prefix PREFIX   generated branch prefix (default "loadtest/")
      --profile FILE           YAML run profile
      --dry-run                skip push, PR creation, and merge
      --provider NAME          ghcli, github, gitlab, or bitbucket
                               (default "ghcli")
      --gh-binary PATH         gh binary name or path (default "gh")
      --gh-repo OWNER/REPO     pin the target repository for gh

      --github-repo-owner OWNER
      --github-repo REPO
      --github-access-token TOKEN
      --github-enterprise-host HOST

      --gitlab-host URL
      --gitlab-repo ORG/PROJECT
      --gitlab-access-token TOKEN

      --bitbucket-api-endpoint URL
      --bitbucket-project-key KEY
      --bitbucket-repo-slug SLUG
      --bitbucket-user USER
      --bitbucket-password PASSWORD
`

// ParseArgs parses command-line arguments (without the
// program name) into Options.
//
// -n and -w keep their documented leniency: when the
// value is missing or looks like another flag, the
// default is kept silently. All other value flags
// require a value.
func ParseArgs(args []string) (Options, error) {
	const errCtx = "parsing arguments"

	opts := DefaultOptions()

	stringFlags := map[string]*string{
		"--base":          &opts.Base,
		"--remote":        &opts.Remote,
		"--branch-prefix": &opts.BranchPrefix,
		"--profile":       &opts.ProfilePath,
		"--provider":      &opts.Provider,
		"--gh-binary":     &opts.GhBinary,
		"--gh-repo":       &opts.GhRepo,

		"--github-repo-owner":      &opts.GithubRepoOwner,
		"--github-repo":            &opts.GithubRepo,
		"--github-access-token":    &opts.GithubAccessToken,
		"--github-enterprise-host": &opts.GithubEnterpriseHost,

		"--gitlab-host":         &opts.GitlabHost,
		"--gitlab-repo":         &opts.GitlabRepo,
		"--gitlab-access-token": &opts.GitlabAccessToken,

		"--bitbucket-api-endpoint": &opts.BitbucketAPIEndpoint,
		"--bitbucket-project-key":  &opts.BitbucketProjectKey,
		"--bitbucket-repo-slug":    &opts.BitbucketRepoSlug,
		"--bitbucket-user":         &opts.BitbucketUser,
		"--bitbucket-password":     &opts.BitbucketPassword,
	}

	for i := 0; i < len(args); i++ {
		name, inline, hasInline := strings.Cut(
			args[i], "=",
		)

		switch name {
		case "-n", "--number":
			val, skip := lenientValue(
				args, i, inline, hasInline,
			)
			i += skip

			if val == "" {
				continue
			}

			n, err := strconv.Atoi(val)
			if err != nil || n < 0 {
				return opts, fmt.Errorf(
					"%s: invalid count %q",
					errCtx, val,
				)
			}

			opts.Count = n

		case "-w", "--wait":
			val, skip := lenientValue(
				args, i, inline, hasInline,
			)
			i += skip

			if val == "" {
				continue
			}

			w, err := strconv.Atoi(val)
			if err != nil || w < 0 {
				return opts, fmt.Errorf(
					"%s: invalid wait %q",
					errCtx, val,
				)
			}

			opts.Wait = w

		case "-h", "--help":
			opts.Help = true

			return opts, nil

		case "--dry-run":
			opts.DryRun = true

		default:
			target, ok := stringFlags[name]
			if !ok {
				if strings.HasPrefix(name, "-") {
					return opts, fmt.Errorf(
						"%s: unknown flag %q",
						errCtx, name,
					)
				}

				return opts, fmt.Errorf(
					"%s: unexpected argument %q",
					errCtx, name,
				)
			}

			if hasInline {
				*target = inline

				continue
			}

			if i+1 >= len(args) {
				return opts, fmt.Errorf(
					"%s: flag %s requires a value",
					errCtx, name,
				)
			}

			i++
			*target = args[i]
		}
	}

	return opts, nil
}

// lenientValue resolves the value for -n/-w. It returns
// the inline "=value" form when present, otherwise the
// next token when it exists and does not look like
// another flag. An empty value means: keep the default.
// skip is how many extra tokens were consumed.
func lenientValue(
	args []string,
	i int,
	inline string,
	hasInline bool,
) (string, int) {
	if hasInline {
		return inline, 0
	}

	if i+1 >= len(args) {
		return "", 0
	}

	next := args[i+1]
	if strings.HasPrefix(next, "-") {
		return "", 0
	}

	return next, 1
}
