package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newAdminServer(t *testing.T, users []adminUser, confirmed *bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/v1/admin/users", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer service-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(adminUserList{Users: users})
	})
	mux.HandleFunc("PUT /auth/v1/admin/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]bool
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body["email_confirm"] {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if confirmed != nil {
			*confirmed = true
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckEmailConfirmed(t *testing.T) {
	tests := []struct {
		name  string
		users []adminUser
		email string
		want  bool
	}{
		{
			"confirmed account",
			[]adminUser{{ID: "u1", Email: "a@example.com", EmailConfirmedAt: "2026-01-01T00:00:00Z"}},
			"a@example.com",
			true,
		},
		{
			"unconfirmed account",
			[]adminUser{{ID: "u1", Email: "a@example.com"}},
			"a@example.com",
			false,
		},
		{
			"unknown email",
			[]adminUser{{ID: "u1", Email: "other@example.com", EmailConfirmedAt: "2026-01-01T00:00:00Z"}},
			"a@example.com",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newAdminServer(t, tt.users, nil)
			c := NewClient(srv.URL, "service-key")

			got, err := c.CheckEmailConfirmed(context.Background(), tt.email)
			if err != nil {
				t.Fatalf("CheckEmailConfirmed() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckEmailConfirmed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckEmailConfirmed_BadServiceKey(t *testing.T) {
	srv := newAdminServer(t, nil, nil)
	c := NewClient(srv.URL, "wrong-key")

	if _, err := c.CheckEmailConfirmed(context.Background(), "a@example.com"); err == nil {
		t.Error("CheckEmailConfirmed() should error on rejected key")
	}
}

func TestConfirmUser(t *testing.T) {
	var confirmed bool
	srv := newAdminServer(t, []adminUser{{ID: "u1", Email: "a@example.com"}}, &confirmed)
	c := NewClient(srv.URL, "service-key")

	if err := c.ConfirmUser(context.Background(), "a@example.com"); err != nil {
		t.Fatalf("ConfirmUser() error = %v", err)
	}
	if !confirmed {
		t.Error("admin API was not called with email_confirm")
	}
}

func TestConfirmUser_UnknownEmail(t *testing.T) {
	srv := newAdminServer(t, nil, nil)
	c := NewClient(srv.URL, "service-key")

	if err := c.ConfirmUser(context.Background(), "ghost@example.com"); err == nil {
		t.Error("ConfirmUser() should error for unknown email")
	}
}
