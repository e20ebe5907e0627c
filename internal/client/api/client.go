// Package api реализует HTTP клиент auth сервера.
// Все ответы сервера приходят в envelope {data, error_message, is_error},
// ошибки - в форме {detail}. Клиент разворачивает обе формы.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/electrosoft/authd/pkg/api"
)

// APIError представляет ошибку, которую вернул сервер
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Detail)
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Signup регистрирует нового пользователя
func (c *Client) Signup(ctx context.Context, req api.SignupRequest) (string, error) {
	env, err := c.doRequest(ctx, http.MethodPost, "/api/auth/signup", req, "")
	if err != nil {
		return "", fmt.Errorf("signup request failed: %w", err)
	}
	return env.Data.SuccessMessage, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
	env, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", req, "")
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return unwrap[api.LoginResponse](env)
}

// Refresh обменивает refresh token на новую пару токенов
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.RefreshResponse, error) {
	env, err := c.doRequest(ctx, http.MethodPost, "/api/auth/refresh-login", api.RefreshRequest{RefreshToken: refreshToken}, "")
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return unwrap[api.RefreshResponse](env)
}

// ForgotPassword запрашивает письмо со ссылкой сброса пароля.
// Ответ одинаков независимо от существования email.
func (c *Client) ForgotPassword(ctx context.Context, userEmail string) (string, error) {
	env, err := c.doRequest(ctx, http.MethodPost, "/api/auth/forgot-password", api.ForgotPasswordRequest{Email: userEmail}, "")
	if err != nil {
		return "", fmt.Errorf("forgot-password request failed: %w", err)
	}
	return env.Data.SuccessMessage, nil
}

// ResetPassword устанавливает новый пароль по токену из письма
func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword string) (string, error) {
	req := api.ResetPasswordRequest{Token: resetToken, NewPassword: newPassword}
	env, err := c.doRequest(ctx, http.MethodPost, "/api/auth/reset-password", req, "")
	if err != nil {
		return "", fmt.Errorf("reset-password request failed: %w", err)
	}
	return env.Data.SuccessMessage, nil
}

// UpdatePassword меняет пароль текущего пользователя (требует access token)
func (c *Client) UpdatePassword(ctx context.Context, accessToken string, req api.UpdatePasswordRequest) (string, error) {
	env, err := c.doRequest(ctx, http.MethodPost, "/api/auth/update-password", req, accessToken)
	if err != nil {
		return "", fmt.Errorf("update-password request failed: %w", err)
	}
	return env.Data.SuccessMessage, nil
}

// Greet вызывает защищенный тестовый endpoint.
// Единственный endpoint без envelope - сервер отвечает голым {message}.
func (c *Client) Greet(ctx context.Context, accessToken string) (string, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/api/auth/greet", nil, accessToken)
	if err != nil {
		return "", fmt.Errorf("greet request failed: %w", err)
	}
	if status != http.StatusOK {
		return "", apiErrorFrom(status, body)
	}

	var resp api.GreetResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.Message, nil
}

// doRequest выполняет запрос и разворачивает envelope
func (c *Client) doRequest(ctx context.Context, method, path string, reqBody any, accessToken string) (*api.Envelope, error) {
	body, status, err := c.do(ctx, method, path, reqBody, accessToken)
	if err != nil {
		return nil, err
	}

	if status < 200 || status >= 300 {
		return nil, apiErrorFrom(status, body)
	}

	var env api.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if env.IsError || env.Data == nil {
		return nil, &APIError{StatusCode: status, Detail: env.ErrorMessage}
	}

	return &env, nil
}

// do выполняет HTTP запрос и возвращает тело с кодом как есть
func (c *Client) do(ctx context.Context, method, path string, reqBody any, accessToken string) ([]byte, int, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}

	return respBody, resp.StatusCode, nil
}

// unwrap перекладывает data.response envelope в типизированную структуру
func unwrap[T any](env *api.Envelope) (*T, error) {
	raw, err := json.Marshal(env.Data.Response)
	if err != nil {
		return nil, fmt.Errorf("failed to re-marshal response: %w", err)
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

// apiErrorFrom достает detail из тела ошибки, если он там есть
func apiErrorFrom(status int, body []byte) error {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Detail != "" {
		return &APIError{StatusCode: status, Detail: errResp.Detail}
	}
	return &APIError{StatusCode: status, Detail: string(body)}
}
