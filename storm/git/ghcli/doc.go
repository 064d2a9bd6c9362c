// Package ghcli implements a git.Provider that creates pull requests by
// shelling out to the GitHub CLI (gh). It relies on gh's own credential
// store for authentication, exposes an explicit auth-status check for
// preflight validation, and reads PR state back through gh's --json
// output.
package ghcli
