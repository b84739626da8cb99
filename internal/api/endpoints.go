// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bloodlink/bloodlink-tui/internal/donor"
)

// =============================================================================
// AUTH
// =============================================================================

// Challenge is the login outcome when the backend demands a second factor.
// The caller must follow up with VerifyLoginOTP; no credential has been
// granted yet.
type Challenge struct {
	Email   string `json:"email"`
	Role    string `json:"role"`
	Message string `json:"message"`
}

// Grant is the login outcome carrying an authenticated token.
type Grant struct {
	Token              string `json:"token"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"mustChangePassword"`
}

// LoginOutcome is the tagged result of a first-factor login: exactly one of
// Challenge or Grant is non-nil, decided by the backend's requiresOTP
// discriminant. Which accounts skip the second factor is backend policy;
// the client only branches on the field's presence.
type LoginOutcome struct {
	Challenge *Challenge
	Grant     *Grant
}

// loginResponse is the raw dynamic shape of POST /auth/login.
type loginResponse struct {
	RequiresOTP        bool   `json:"requiresOTP"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	Message            string `json:"message"`
	Token              string `json:"token"`
	MustChangePassword bool   `json:"mustChangePassword"`
}

// Login performs the first authentication factor.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginOutcome, error) {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}

	if resp.RequiresOTP {
		return &LoginOutcome{Challenge: &Challenge{
			Email:   resp.Email,
			Role:    resp.Role,
			Message: resp.Message,
		}}, nil
	}
	return &LoginOutcome{Grant: &Grant{
		Token:              resp.Token,
		Role:               resp.Role,
		MustChangePassword: resp.MustChangePassword,
	}}, nil
}

// VerifyLoginOTP performs the second authentication factor.
func (c *Client) VerifyLoginOTP(ctx context.Context, email, otp string) (*Grant, error) {
	req := struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}{email, otp}

	var grant Grant
	if err := c.do(ctx, http.MethodPost, "/auth/verify-login-otp", req, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// VerifyEmail confirms a signup verification code.
func (c *Client) VerifyEmail(ctx context.Context, email, otp string) error {
	req := struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}{email, otp}
	return c.do(ctx, http.MethodPost, "/auth/verify-email", req, nil)
}

// ResendVerification requests a fresh signup verification code.
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	req := struct {
		Email string `json:"email"`
	}{email}
	return c.do(ctx, http.MethodPost, "/auth/resend-verification", req, nil)
}

// =============================================================================
// PROFILE
// =============================================================================

// Profile fetches the authenticated account's profile.
func (c *Client) Profile(ctx context.Context) (*donor.User, error) {
	var u donor.User
	if err := c.do(ctx, http.MethodGet, "/user/profile", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile sends changed profile fields and returns the stored record.
func (c *Client) UpdateProfile(ctx context.Context, u donor.User) (*donor.User, error) {
	var updated donor.User
	if err := c.do(ctx, http.MethodPut, "/user/profile", u, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// =============================================================================
// DONOR REQUESTS
// =============================================================================

// Dashboard fetches the donor dashboard summary.
func (c *Client) Dashboard(ctx context.Context) (*donor.DashboardStats, error) {
	var stats donor.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/donor/dashboard", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// OpenRequests lists blood requests the donor may respond to.
func (c *Client) OpenRequests(ctx context.Context) ([]donor.BloodRequest, error) {
	var reqs []donor.BloodRequest
	if err := c.do(ctx, http.MethodGet, "/donor/requests", nil, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// AcceptedRequests lists the donor's accepted requests.
func (c *Client) AcceptedRequests(ctx context.Context) ([]donor.AcceptedRequest, error) {
	var reqs []donor.AcceptedRequest
	if err := c.do(ctx, http.MethodGet, "/donor/accepted-requests", nil, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// Respond accepts or declines an open blood request.
func (c *Client) Respond(ctx context.Context, requestID string, accept bool) error {
	req := struct {
		RequestID string `json:"requestId"`
		Response  string `json:"response"`
	}{requestID, "decline"}
	if accept {
		req.Response = "accept"
	}
	return c.do(ctx, http.MethodPost, "/donor/respond", req, nil)
}

// CancelAccepted cancels a previously accepted request. The backend
// enforces the cancellation window authoritatively; the client-side policy
// in package donor only gates the UI.
func (c *Client) CancelAccepted(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/donor/accepted-requests/"+url.PathEscape(id), nil, nil)
}
