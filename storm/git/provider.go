package git

import "context"

// Pattern: Strategy -- swap git platform without
// changing PR creation logic.

// Provider creates pull requests on a git hosting
// platform. CreatePR returns a reference to the created
// pull request (a URL where the platform exposes one)
// for operator visibility.
type Provider interface {
	CreatePR(
		ctx context.Context,
		from string,
		to string,
		title string,
		body string,
	) (string, error)
}

// AuthChecker is implemented by providers that can
// verify their credential before any mutation happens.
type AuthChecker interface {
	CheckAuth(ctx context.Context) error
}

// StateReader is implemented by providers that can
// report the state of a previously created pull request
// (e.g. "MERGED") given its reference.
type StateReader interface {
	PRState(
		ctx context.Context,
		ref string,
	) (string, error)
}

// ProviderFunc adapts a plain function to the Provider
// interface. When body is empty the title is used as
// body.
type ProviderFunc func(
	ctx context.Context,
	from string,
	to string,
	title string,
	body string,
) (string, error)

// CreatePR delegates to the wrapped function. If body
// is empty, title is substituted.
func (f ProviderFunc) CreatePR(
	ctx context.Context,
	from string,
	to string,
	title string,
	body string,
) (string, error) {
	if body == "" {
		body = title
	}

	return f(ctx, from, to, title, body)
}
