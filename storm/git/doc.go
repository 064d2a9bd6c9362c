// Package git provides the local git operations the generator performs
// against the ambient working tree, and a strategy interface for creating
// pull requests across different git hosting platforms.
//
// Workdir wraps an existing git working tree with methods for base-branch
// synchronisation, branching, staging, committing, pushing, and merging a
// feature branch back into the base branch. Detect locates the enclosing
// repository from any directory inside it.
//
// The Provider interface abstracts PR creation. Implementations exist for
// the gh CLI, GitHub, GitLab, and Bitbucket Server in sub-packages.
// ProviderFunc is a convenience adapter that lets plain functions satisfy
// the interface.
package git
