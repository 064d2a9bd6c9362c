// Package change models the randomized file change generated for each
// pull request iteration: the change kind drawn by weighted random pick,
// the canned title and body pools, and the artifact written for each
// kind. Picker owns all randomized choices behind an injectable random
// source so tests can use deterministic seeds. Generator writes the
// per-kind artifact using fasttemplate substitution.
package change
