package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electrosoft/authd/pkg/api"
)

func envelope(response any, successMessage string) api.Envelope {
	return api.Envelope{
		Data: &api.Data{
			Response:       response,
			SuccessMessage: successMessage,
		},
	}
}

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@x.com", req.Email)
		assert.Equal(t, "password123", req.Password)

		resp := api.LoginResponse{
			TokenData: api.TokenData{AccessToken: "access", RefreshToken: "refresh"},
			Role:      "admin",
			UserData:  api.UserData{Email: "a@x.com", FirstName: "Alice"},
		}
		_ = json.NewEncoder(w).Encode(envelope(resp, "Login successful."))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.Login(context.Background(), api.LoginRequest{Email: "a@x.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "access", resp.TokenData.AccessToken)
	assert.Equal(t, "refresh", resp.TokenData.RefreshToken)
	assert.Equal(t, "Alice", resp.UserData.FirstName)
}

func TestClient_Login_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Detail: "Invalid credentials"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Login(context.Background(), api.LoginRequest{Email: "a@x.com", Password: "wrong"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Detail)
}

func TestClient_Signup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/signup", r.URL.Path)
		_ = json.NewEncoder(w).Encode(envelope(nil, "Signup successful. You can now login."))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	message, err := client.Signup(context.Background(), api.SignupRequest{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "a@x.com",
		Password:  "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Signup successful. You can now login.", message)
}

func TestClient_Refresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/refresh-login", r.URL.Path)

		var req api.RefreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "old-refresh", req.RefreshToken)

		resp := api.RefreshResponse{TokenData: api.TokenData{AccessToken: "new-access", RefreshToken: "new-refresh"}}
		_ = json.NewEncoder(w).Encode(envelope(resp, "Login Refresh successful."))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.Refresh(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", resp.TokenData.AccessToken)
}

func TestClient_UpdatePassword_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer my-access-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(envelope(nil, "Password updated successfully."))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	message, err := client.UpdatePassword(context.Background(), "my-access-token", api.UpdatePasswordRequest{
		OldPassword:     "old",
		NewPassword:     "new-password-1",
		ConfirmPassword: "new-password-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Password updated successfully.", message)
}

func TestClient_Greet_DecodesBareResponse(t *testing.T) {
	// Greet единственный отвечает без envelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_ = json.NewEncoder(w).Encode(api.GreetResponse{Message: "Hey Greetings from ElectroSoft..!!!"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	message, err := client.Greet(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "Hey Greetings from ElectroSoft..!!!", message)
}

func TestClient_ConnectionError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	_, err := client.Login(context.Background(), api.LoginRequest{Email: "a@x.com", Password: "p"})
	assert.Error(t, err)
}
