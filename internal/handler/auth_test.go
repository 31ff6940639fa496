package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/halalchat/backend/internal/handler"
	"github.com/stretchr/testify/assert"
)

type MockIdentityAdmin struct {
	Confirmed     map[string]bool
	ConfirmErr    error
	ConfirmCalled string
}

func (m *MockIdentityAdmin) CheckEmailConfirmed(_ context.Context, email string) (bool, error) {
	return m.Confirmed[email], nil
}

func (m *MockIdentityAdmin) ConfirmUser(_ context.Context, email string) error {
	m.ConfirmCalled = email
	return m.ConfirmErr
}

func TestAuthHandler_HandleCheckEmailConfirmed(t *testing.T) {
	logger := testLogger()

	t.Run("confirmed account", func(t *testing.T) {
		mock := &MockIdentityAdmin{Confirmed: map[string]bool{"a@example.com": true}}
		h := handler.NewAuthHandler(mock, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/check-email-confirmed",
			bytes.NewBufferString(`{"email":"a@example.com"}`))
		rr := httptest.NewRecorder()

		h.HandleCheckEmailConfirmed(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var res map[string]bool
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.True(t, res["confirmed"])
	})

	t.Run("unconfirmed account", func(t *testing.T) {
		h := handler.NewAuthHandler(&MockIdentityAdmin{}, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/check-email-confirmed",
			bytes.NewBufferString(`{"email":"b@example.com"}`))
		rr := httptest.NewRecorder()

		h.HandleCheckEmailConfirmed(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var res map[string]bool
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.False(t, res["confirmed"])
	})

	t.Run("missing email", func(t *testing.T) {
		h := handler.NewAuthHandler(&MockIdentityAdmin{}, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/check-email-confirmed",
			bytes.NewBufferString(`{}`))
		rr := httptest.NewRecorder()

		h.HandleCheckEmailConfirmed(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandler_HandleDevConfirmUser(t *testing.T) {
	logger := testLogger()

	t.Run("confirms via admin API", func(t *testing.T) {
		mock := &MockIdentityAdmin{}
		h := handler.NewAuthHandler(mock, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/dev-confirm-user",
			bytes.NewBufferString(`{"email":"a@example.com"}`))
		rr := httptest.NewRecorder()

		h.HandleDevConfirmUser(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "a@example.com", mock.ConfirmCalled)

		var res map[string]bool
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.True(t, res["success"])
	})

	t.Run("admin failure maps to 500", func(t *testing.T) {
		mock := &MockIdentityAdmin{ConfirmErr: assert.AnError}
		h := handler.NewAuthHandler(mock, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/dev-confirm-user",
			bytes.NewBufferString(`{"email":"a@example.com"}`))
		rr := httptest.NewRecorder()

		h.HandleDevConfirmUser(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
