package resolver

import "context"

// Confirmer decides whether a fuzzy-matched business name suggested for an
// unresolved address should be used. Interactive embeddings back it with a
// prompt or dialog; headless embeddings supply AcceptAll or DeclineAll since
// the cascade has no non-blocking resolution mode.
type Confirmer interface {
	Confirm(ctx context.Context, address, candidate string) (bool, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, address, candidate string) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmerFunc) Confirm(ctx context.Context, address, candidate string) (bool, error) {
	return f(ctx, address, candidate)
}

// AcceptAll accepts every suggestion.
func AcceptAll() Confirmer {
	return ConfirmerFunc(func(context.Context, string, string) (bool, error) { return true, nil })
}

// DeclineAll declines every suggestion.
func DeclineAll() Confirmer {
	return ConfirmerFunc(func(context.Context, string, string) (bool, error) { return false, nil })
}
