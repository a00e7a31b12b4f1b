package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"auth_gate/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)

		var req model.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@x.com", req.Email)

		_ = json.NewEncoder(w).Encode(model.AuthResponse{
			Token: "tok",
			User:  model.UserProfile{ID: "1", Email: "a@x.com", Name: "A", Role: "User"},
		})
	}))
	defer srv.Close()

	resp, err := New(srv.URL+"/", nil).Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "A", resp.User.Name)
}

func TestClient_SignupConflictMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"user with this email already exists"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Signup(context.Background(), "a@x.com", "secret1", "A")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "user with this email already exists", err.Error())
}

func TestClient_MeSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"user":{"id":"1","email":"a@x.com","name":"A","role":"Admin"}}`))
	}))
	defer srv.Close()

	user, err := New(srv.URL, nil).Me(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Admin", user.Role)
}

func TestClient_MeErrors(t *testing.T) {
	for status, target := range map[int]error{
		http.StatusUnauthorized: ErrUnauthorized,
		http.StatusNotFound:     ErrNotFound,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		_, err := New(srv.URL, nil).Me(context.Background(), "tok")
		assert.ErrorIs(t, err, target)
		assert.Contains(t, err.Error(), "status")
		srv.Close()
	}
}

func TestClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).Me(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUnavailable)
}
