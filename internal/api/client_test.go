// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_TokenReadAtCallTime(t *testing.T) {
	var lastAuth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"u1","name":"Ana","email":"a@b.com","role":"donor"}`))
	}))
	defer server.Close()

	token := ""
	client := NewClient(server.URL, func() string { return token })

	// Logged out: no Authorization header at all.
	_, err := client.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", lastAuth.Load())

	// The provider is consulted per request, not captured at construction.
	token = "t1"
	_, err = client.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer t1", lastAuth.Load())

	token = ""
	_, err = client.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", lastAuth.Load())
}

func TestClient_RequestHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		assert.Contains(t, r.Header.Get("User-Agent"), "bloodlink/")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.Dashboard(context.Background())
	require.NoError(t, err)
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"totalDonations":4}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil).WithMaxRetries(3)
	stats, err := client.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalDonations)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryAuthRejection(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Token expired"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.Profile(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "Token expired", Message(err, "fallback"))
}

func TestClient_Login_Challenge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		w.Write([]byte(`{"requiresOTP":true,"email":"a@b.com","role":"donor","message":"Code sent"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	outcome, err := client.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	require.NotNil(t, outcome.Challenge)
	assert.Nil(t, outcome.Grant)
	assert.Equal(t, "a@b.com", outcome.Challenge.Email)
	assert.Equal(t, "donor", outcome.Challenge.Role)
	assert.Equal(t, "Code sent", outcome.Challenge.Message)
}

func TestClient_Login_DirectGrant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"t1","role":"admin","mustChangePassword":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	outcome, err := client.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	require.NotNil(t, outcome.Grant)
	assert.Nil(t, outcome.Challenge)
	assert.Equal(t, "t1", outcome.Grant.Token)
	assert.True(t, outcome.Grant.MustChangePassword)
}

func TestClient_CancelAccepted_Route(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/donor/accepted-requests/req-42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	require.NoError(t, client.CancelAccepted(context.Background(), "req-42"))
}

func TestMessage_Fallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	err := client.Respond(context.Background(), "r1", true)
	require.Error(t, err)
	assert.Equal(t, "something went wrong", Message(err, "something went wrong"))
}
