// Package runner orchestrates bulk pull request generation. Run executes
// N sequential create-one-PR-and-merge-it cycles against a live git
// working tree and its hosting platform: it verifies the hosting
// credential, synchronises the base branch, and then for each iteration
// draws a change kind, creates a uniquely named branch, generates and
// commits one artifact, pushes, opens a PR, and merges the branch back
// into the base.
//
// The loop is strictly sequential and fail-fast: the first failing step
// aborts the whole run with no retry, rollback, or cleanup of already
// merged iterations.
//
// ParseArgs implements the command-line surface, including the lenient
// -n/-w value fallback the flag package cannot express. Profile loads an
// optional YAML file overriding the canned pools and destinations.
package runner
