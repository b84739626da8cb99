// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package donor

import "time"

// User is the authenticated account profile as returned by /user/profile.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"` // "donor", "hospital", "bloodbank", "admin"
	Phone      string `json:"phone,omitempty"`
	BloodGroup string `json:"bloodGroup,omitempty"`
	City       string `json:"city,omitempty"`
	Available  bool   `json:"available,omitempty"`
}

// Merge returns a copy of u with the non-zero fields of other applied.
// Shallow merge: used to reflect a profile update locally without a
// round-trip.
func (u User) Merge(other User) User {
	if other.Name != "" {
		u.Name = other.Name
	}
	if other.Email != "" {
		u.Email = other.Email
	}
	if other.Role != "" {
		u.Role = other.Role
	}
	if other.Phone != "" {
		u.Phone = other.Phone
	}
	if other.BloodGroup != "" {
		u.BloodGroup = other.BloodGroup
	}
	if other.City != "" {
		u.City = other.City
	}
	return u
}

// BloodRequest is an open request a donor may respond to.
type BloodRequest struct {
	ID           string    `json:"id"`
	HospitalName string    `json:"hospitalName"`
	BloodGroup   string    `json:"bloodGroup"`
	Units        int       `json:"units"`
	Urgency      string    `json:"urgency"` // "low", "medium", "high", "critical"
	DistanceKm   float64   `json:"distanceKm"`
	Location     string    `json:"location"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AcceptedRequest is a request the donor has accepted. It stays visible
// until cancelled within the window or resolved by the backend.
type AcceptedRequest struct {
	ID            string    `json:"id"`
	HospitalName  string    `json:"hospitalName"`
	HospitalPhone string    `json:"hospitalPhone,omitempty"`
	BloodGroup    string    `json:"bloodGroup"`
	Units         int       `json:"units"`
	Urgency       string    `json:"urgency"`
	DistanceKm    float64   `json:"distanceKm"`
	Location      string    `json:"location"`
	AcceptedAt    time.Time `json:"acceptedAt"`
}

// DashboardStats is the summary block on the donor dashboard.
type DashboardStats struct {
	TotalDonations int `json:"totalDonations"`
	ActiveRequests int `json:"activeRequests"`
	AcceptedCount  int `json:"acceptedCount"`
	LivesImpacted  int `json:"livesImpacted"`
}
