// Package gate decides, per protected navigation, whether to render the
// requested view, redirect to login, or redirect to an onboarding flow. It
// reads session state and performs at most one lazy identity fetch when a
// token exists but no identity is cached.
package gate

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dhriti-exe/MIS-Portal-CDAC/session"
)

// Action is the gate's verdict for one evaluation.
type Action int

const (
	// ActionRender: show the protected view.
	ActionRender Action = iota
	// ActionRedirect: send the user to Decision.Target instead.
	ActionRedirect
	// ActionPending: identity verification has not completed (fetch failed
	// or is in flight elsewhere); re-evaluate when state changes. No
	// redirect is forced by a failed fetch alone.
	ActionPending
)

// Decision is the outcome of one gate evaluation.
type Decision struct {
	Action Action
	Target string
}

func render() Decision {
	return Decision{Action: ActionRender}
}

func redirectTo(target string) Decision {
	return Decision{Action: ActionRedirect, Target: target}
}

func pending() Decision {
	return Decision{Action: ActionPending}
}

// IdentityFetcher is the one server round-trip the gate may perform.
// *api.Client satisfies it.
type IdentityFetcher interface {
	Me(ctx context.Context) (*session.Identity, error)
}

// Gate guards protected views. Multiple gates may exist at once; each
// prevents only its own re-entrant identity fetches, and concurrent gates
// converge on the same store state (the fetched identity is deterministic for
// a valid token, so last write wins is idempotent).
type Gate struct {
	store   *session.Store
	fetcher IdentityFetcher
	logger  zerolog.Logger

	mu        sync.Mutex
	verifying bool
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLogger sets the gate logger.
func WithLogger(logger zerolog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logger
	}
}

// New creates a Gate over store, using fetcher for lazy identity
// verification.
func New(store *session.Store, fetcher IdentityFetcher, options ...GateOption) (*Gate, error) {
	if store == nil {
		return nil, errors.New("[gate.New] store is required")
	}
	if fetcher == nil {
		return nil, errors.New("[gate.New] fetcher is required")
	}
	g := &Gate{
		store:   store,
		fetcher: fetcher,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

// Evaluate runs the decision algorithm for one navigation to path.
// requiredRole may be empty, meaning any authenticated role. The order is
// fixed:
//
//  1. no access token          -> redirect to login
//  2. token but no identity    -> verify (one lazy fetch, single in-flight)
//  3. role mismatch            -> redirect to home
//  4. applicant not onboarded  -> redirect to applicant onboarding,
//     unless already there
//  5. centre not onboarded     -> redirect to centre onboarding,
//     unless already there
//  6. otherwise                -> render
func (g *Gate) Evaluate(ctx context.Context, path string, requiredRole session.Role) Decision {
	state := g.store.State()

	if state.AccessToken == "" {
		return redirectTo(RouteLogin)
	}

	if state.Identity == nil {
		if !g.verify(ctx) {
			return pending()
		}
		state = g.store.State()
		if state.Identity == nil {
			return pending()
		}
	}

	identity := state.Identity

	if requiredRole != "" && identity.Role != requiredRole {
		return redirectTo(RouteHome)
	}

	if identity.Role == session.RoleApplicant && identity.ApplicantID == nil && path != RouteApplicantOnboarding {
		return redirectTo(RouteApplicantOnboarding)
	}

	if identity.Role == session.RoleCentre && identity.CenterID == nil && path != RouteCenterOnboarding {
		return redirectTo(RouteCenterOnboarding)
	}

	return render()
}

// verify performs the lazy identity fetch and writes the result back to the
// store with the existing token pair. It returns false when the fetch failed
// or another evaluation already holds the in-flight slot. A failed fetch is
// logged and never clears the session: the gate simply stays unauthenticated-
// looking until a later fetch or an explicit login succeeds.
func (g *Gate) verify(ctx context.Context) bool {
	g.mu.Lock()
	if g.verifying {
		g.mu.Unlock()
		return false
	}
	g.verifying = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.verifying = false
		g.mu.Unlock()
	}()

	identity, err := g.fetcher.Me(ctx)
	if err != nil {
		g.logger.Warn().Err(err).Msg("identity verification failed")
		return false
	}
	identity.IsActive = true

	state := g.store.State()
	if state.AccessToken == "" {
		// Session was cleared while the fetch was in flight; do not
		// resurrect it.
		return false
	}
	if err := g.store.SetAuth(identity, state.AccessToken, state.RefreshToken); err != nil {
		g.logger.Error().Err(err).Msg("failed to store verified identity")
		return false
	}
	return true
}
