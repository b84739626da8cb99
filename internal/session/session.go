// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the client's authentication lifecycle: login with
// an optional one-time-code second factor, startup token verification,
// profile hydration, and logout.
//
// A Session owns the credential store and the API client. The client reads
// the bearer token from the store on every request, so the authenticated
// state has a single source of truth: the store either holds a token or it
// does not.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/bloodlink/bloodlink-tui/internal/api"
	"github.com/bloodlink/bloodlink-tui/internal/donor"
	"github.com/bloodlink/bloodlink-tui/internal/logging"
	"github.com/bloodlink/bloodlink-tui/internal/store"
)

// validate checks interactive inputs before they reach the network.
var validate = validator.New()

// =============================================================================
// RESULT TYPES
// =============================================================================

// LoginStatus describes how far a login attempt progressed.
type LoginStatus int

const (
	// LoginFailed means the attempt was rejected and no state changed.
	LoginFailed LoginStatus = iota
	// LoginNeedsOTP means credentials were accepted and the backend sent a
	// one-time code; the session is still unauthenticated.
	LoginNeedsOTP
	// LoginComplete means a token was granted and persisted.
	LoginComplete
)

// LoginResult is the outcome of Login or VerifyLoginOTP. Interactive
// callers render Message directly; Status decides the next screen.
type LoginResult struct {
	Status             LoginStatus
	Message            string
	Email              string
	Role               string
	MustChangePassword bool
}

// =============================================================================
// SESSION
// =============================================================================

// Session coordinates authentication state between the credential store and
// the API client. Safe for concurrent use.
type Session struct {
	store  *store.Store
	client *api.Client
	log    zerolog.Logger

	mu      sync.Mutex
	loading bool
	// generation increments on every logout. Async completions capture it
	// when they start and are discarded if it moved, so a slow response
	// (login grant, profile fetch, profile update) can never repopulate a
	// session the user already ended.
	generation uint64
}

// New creates a Session over the given store, talking to the API at baseURL.
func New(st *store.Store, baseURL string) *Session {
	return &Session{
		store:  st,
		client: api.NewClient(baseURL, st.Token),
		log:    logging.Get().With().Str("component", "session").Logger(),
		// A persisted token is unverified until VerifyToken resolves, so a
		// session that starts with one starts loading.
		loading: st.Token() != "",
	}
}

// Client returns the session's API client for non-auth endpoints.
func (s *Session) Client() *api.Client {
	return s.client
}

// Store returns the underlying credential store.
func (s *Session) Store() *store.Store {
	return s.store
}

// IsAuthenticated reports whether a token is currently persisted. Derived
// from the store rather than tracked separately so it can never disagree
// with the Authorization header the client will send.
func (s *Session) IsAuthenticated() bool {
	return s.store.Token() != ""
}

// Role returns the persisted account role, or "" when logged out.
func (s *Session) Role() string {
	return s.store.Role()
}

// User returns the persisted profile, or nil when none is stored.
func (s *Session) User() *donor.User {
	return s.store.User()
}

// Loading reports whether an authentication operation is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// begin captures the current generation for an async completion.
func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// current reports whether a completion captured at gen may still apply.
func (s *Session) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}

// =============================================================================
// LOGIN
// =============================================================================

// Login performs the first authentication factor.
//
// A challenge outcome mutates nothing: no token, role, or profile is
// persisted until the one-time code is verified. A direct grant completes
// the login immediately.
func (s *Session) Login(ctx context.Context, email, password string) LoginResult {
	if err := validate.Var(email, "required,email"); err != nil {
		return LoginResult{Status: LoginFailed, Message: "Please enter a valid email address"}
	}
	if password == "" {
		return LoginResult{Status: LoginFailed, Message: "Please enter your password"}
	}

	gen := s.begin()
	s.setLoading(true)
	defer s.setLoading(false)

	outcome, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.log.Warn().Err(err).Msg("login rejected")
		return LoginResult{Status: LoginFailed, Message: api.Message(err, "Login failed. Please try again.")}
	}

	if outcome.Challenge != nil {
		msg := outcome.Challenge.Message
		if msg == "" {
			msg = "A verification code has been sent to your email"
		}
		return LoginResult{
			Status:  LoginNeedsOTP,
			Message: msg,
			Email:   outcome.Challenge.Email,
			Role:    outcome.Challenge.Role,
		}
	}
	return s.completeLogin(ctx, gen, outcome.Grant)
}

// VerifyLoginOTP performs the second authentication factor. It is the only
// path that completes a challenged login.
func (s *Session) VerifyLoginOTP(ctx context.Context, email, otp string) LoginResult {
	if err := validate.Var(email, "required,email"); err != nil {
		return LoginResult{Status: LoginFailed, Message: "Please enter a valid email address"}
	}
	if err := validate.Var(otp, "required,len=6,numeric"); err != nil {
		return LoginResult{Status: LoginFailed, Message: "The verification code is 6 digits"}
	}

	gen := s.begin()
	s.setLoading(true)
	defer s.setLoading(false)

	grant, err := s.client.VerifyLoginOTP(ctx, email, otp)
	if err != nil {
		s.log.Warn().Err(err).Msg("otp verification rejected")
		return LoginResult{Status: LoginFailed, Message: api.Message(err, "Verification failed. Please try again.")}
	}
	return s.completeLogin(ctx, gen, grant)
}

// completeLogin persists a granted token and hydrates the profile.
func (s *Session) completeLogin(ctx context.Context, gen uint64, grant *api.Grant) LoginResult {
	if grant == nil || grant.Token == "" {
		return LoginResult{Status: LoginFailed, Message: "Login failed. Please try again."}
	}

	// A logout between request and response wins: discard the grant.
	if !s.current(gen) {
		s.log.Info().Msg("discarding login completion after logout")
		return LoginResult{Status: LoginFailed, Message: "Session ended before login completed"}
	}

	if err := s.store.SetAuth(grant.Token, grant.Role); err != nil {
		return LoginResult{Status: LoginFailed, Message: "Could not save credentials: " + err.Error()}
	}

	// Hydrate the profile so the UI has a name to greet. A failure here is
	// not fatal: the token is valid and the profile can be refreshed later.
	s.RefreshProfile(ctx)

	return LoginResult{
		Status:             LoginComplete,
		Message:            "Logged in",
		Role:               grant.Role,
		MustChangePassword: grant.MustChangePassword,
	}
}

// =============================================================================
// VERIFICATION AND LOGOUT
// =============================================================================

// VerifyToken checks the persisted token against the backend at startup.
// Any failure, transport included, logs the session out: a client that
// cannot prove its token is valid must not keep presenting it.
func (s *Session) VerifyToken(ctx context.Context) bool {
	if !s.IsAuthenticated() {
		s.setLoading(false)
		return false
	}

	gen := s.begin()
	s.setLoading(true)
	defer s.setLoading(false)

	u, err := s.client.Profile(ctx)
	if err != nil {
		s.log.Info().Err(err).Msg("token verification failed, logging out")
		s.Logout()
		return false
	}
	// A logout between request and response wins: the cleared store must not
	// be repopulated with a profile that has no token behind it.
	if !s.current(gen) {
		s.log.Info().Msg("discarding token verification after logout")
		return false
	}
	if err := s.store.SetUser(*u); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist refreshed profile")
	}
	return true
}

// RefreshProfile re-fetches the profile for an authenticated session.
// Unlike VerifyToken, a failure leaves the session authenticated: the
// stored profile is stale, not invalid.
func (s *Session) RefreshProfile(ctx context.Context) {
	gen := s.begin()

	u, err := s.client.Profile(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("profile refresh failed, keeping cached profile")
		return
	}
	if !s.current(gen) {
		s.log.Info().Msg("discarding profile refresh after logout")
		return
	}
	if err := s.store.SetUser(*u); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist refreshed profile")
	}
}

// UpdateUser merges changed fields into the persisted profile locally, with
// no network round-trip. Used when the caller already holds the backend's
// answer or is changing purely client-side fields.
func (s *Session) UpdateUser(changes donor.User) (*donor.User, error) {
	if !s.IsAuthenticated() {
		return nil, errors.New("not logged in")
	}

	merged := changes
	if cached := s.store.User(); cached != nil {
		merged = cached.Merge(changes)
	}
	if err := s.store.SetUser(merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// UpdateProfile pushes changed profile fields to the backend and merges the
// result into the persisted record.
func (s *Session) UpdateProfile(ctx context.Context, changes donor.User) (*donor.User, error) {
	gen := s.begin()

	updated, err := s.client.UpdateProfile(ctx, changes)
	if err != nil {
		return nil, err
	}
	if !s.current(gen) {
		return nil, errors.New("session ended before the update completed")
	}
	return s.UpdateUser(*updated)
}

// Logout ends the session synchronously and idempotently. Auth entries are
// cleared; preferences survive. In-flight login completions that resolve
// after this point are discarded.
func (s *Session) Logout() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()

	if err := s.store.ClearAuth(); err != nil {
		// The in-memory entries are already cleared; the stale file will be
		// overwritten on the next successful persist.
		s.log.Error().Err(err).Msg("failed to persist logout")
	}
}
