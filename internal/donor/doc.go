// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package donor holds the client-side view of blood-request records and the
// cancellation-window policy applied to accepted requests.
//
// The records themselves are owned by the backend; the client holds read
// copies and mutates them only by issuing respond/cancel calls through the
// API client. The window policy is pure: given an acceptance timestamp and
// an evaluation instant it decides whether cancellation is still allowed and
// how much time remains. Callers drive a recurring tick to keep a live
// countdown fresh; the policy itself performs no scheduling.
package donor
