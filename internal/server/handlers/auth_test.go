package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electrosoft/authd/internal/crypto"
	"github.com/electrosoft/authd/internal/models"
	"github.com/electrosoft/authd/internal/server/email"
	"github.com/electrosoft/authd/internal/server/storage"
	"github.com/electrosoft/authd/internal/server/token"
	"github.com/electrosoft/authd/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockUserStorage is a mock implementation of UserStorage for testing
type mockUserStorage struct {
	users       map[string]*models.User // email -> User
	createError error
	getError    error
	updateError error
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[string]*models.User)}
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.users[user.Email]; exists {
		return storage.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserStorage) GetUserByEmail(ctx context.Context, userEmail string) (*models.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	user, ok := m.users[userEmail]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) UpdatePassword(ctx context.Context, userID, passwordHash string, clearFirstLogin bool) error {
	if m.updateError != nil {
		return m.updateError
	}
	for _, user := range m.users {
		if user.ID == userID {
			user.PasswordHash = passwordHash
			if clearFirstLogin {
				user.IsFirstLogin = false
			}
			return nil
		}
	}
	return storage.ErrUserNotFound
}

// mockSender is a mock implementation of email.Sender for testing
type mockSender struct {
	sentTo    []string
	sentLinks []string
	sendError error
}

var _ email.Sender = (*mockSender)(nil)

func (m *mockSender) SendResetEmail(ctx context.Context, toEmail, resetLink string) error {
	if m.sendError != nil {
		return m.sendError
	}
	m.sentTo = append(m.sentTo, toEmail)
	m.sentLinks = append(m.sentLinks, resetLink)
	return nil
}

func testTokenService() *token.Service {
	return token.NewService(token.Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		ResetSecret:   []byte("reset-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
		ResetTTL:      30 * time.Minute,
	})
}

func setupAuthHandler(t *testing.T) (*AuthHandler, *mockUserStorage, *mockSender, *token.Service) {
	t.Helper()
	users := newMockUserStorage()
	sender := &mockSender{}
	tokens := testTokenService()
	h := NewAuthHandler(setupTestLogger(), users, tokens, sender, "https://app.electrosoft.io")
	return h, users, sender, tokens
}

// seedUser регистрирует пользователя напрямую в mock storage
func seedUser(t *testing.T, users *mockUserStorage, userEmail, password string) *models.User {
	t.Helper()

	hash, err := crypto.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        userEmail,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		Role:         models.RoleAdmin,
		IsFirstLogin: true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, users.CreateUser(context.Background(), user))
	return user
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) api.Envelope {
	t.Helper()

	var env api.Envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env
}

func TestAuthHandler_Login_Success(t *testing.T) {
	h, users, _, tokens := setupAuthHandler(t)
	user := seedUser(t, users, "a@x.com", "password123")

	w := postJSON(t, h.Login, "/api/auth/login", api.LoginRequest{Email: "a@x.com", Password: "password123"})

	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	assert.False(t, env.IsError)
	assert.Empty(t, env.ErrorMessage)
	require.NotNil(t, env.Data)
	assert.Equal(t, "Login successful.", env.Data.SuccessMessage)

	// Перекладываем response в типизированную структуру
	raw, err := json.Marshal(env.Data.Response)
	require.NoError(t, err)
	var resp api.LoginResponse
	require.NoError(t, json.Unmarshal(raw, &resp))

	assert.True(t, resp.IsFirstLogin)
	assert.Equal(t, "admin", resp.Role)
	assert.Equal(t, "electrosoft", resp.LoginType)
	assert.Equal(t, "Test", resp.UserData.FirstName)
	assert.Equal(t, "a@x.com", resp.UserData.Email)
	assert.Equal(t, "olive", resp.AppConfig.Preferences.ColorThemeID)

	// Access token должен проходить проверку и указывать на того же пользователя
	claims, err := tokens.VerifyAccess(resp.TokenData.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// Refresh token принадлежит refresh-виду
	refreshClaims, err := tokens.VerifyRefresh(resp.TokenData.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshClaims.UserID)
}

func TestAuthHandler_Login_AntiEnumeration(t *testing.T) {
	// Неизвестный email и неверный пароль должны быть неотличимы в ответе
	h, users, _, _ := setupAuthHandler(t)
	seedUser(t, users, "known@x.com", "password123")

	wUnknown := postJSON(t, h.Login, "/api/auth/login", api.LoginRequest{Email: "unknown@x.com", Password: "password123"})
	wWrongPass := postJSON(t, h.Login, "/api/auth/login", api.LoginRequest{Email: "known@x.com", Password: "wrong-password"})

	assert.Equal(t, http.StatusUnauthorized, wUnknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wWrongPass.Code)
	assert.Equal(t, wUnknown.Body.String(), wWrongPass.Body.String())
}

func TestAuthHandler_Login_InvalidJSON(t *testing.T) {
	h, _, _, _ := setupAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	h.Login(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Refresh_Success(t *testing.T) {
	h, users, _, tokens := setupAuthHandler(t)
	user := seedUser(t, users, "a@x.com", "password123")

	refreshToken, err := tokens.IssueRefresh(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	w := postJSON(t, h.Refresh, "/api/auth/refresh-login", api.RefreshRequest{RefreshToken: refreshToken})

	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Data)
	assert.Equal(t, "Login Refresh successful.", env.Data.SuccessMessage)

	raw, err := json.Marshal(env.Data.Response)
	require.NoError(t, err)
	var resp api.RefreshResponse
	require.NoError(t, json.Unmarshal(raw, &resp))

	claims, err := tokens.VerifyAccess(resp.TokenData.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestAuthHandler_Refresh_RejectsAccessToken(t *testing.T) {
	// Access token не должен приниматься на месте refresh token
	h, users, _, tokens := setupAuthHandler(t)
	user := seedUser(t, users, "a@x.com", "password123")

	accessToken, err := tokens.IssueAccess(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	w := postJSON(t, h.Refresh, "/api/auth/refresh-login", api.RefreshRequest{RefreshToken: accessToken})

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var errResp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
	assert.Equal(t, "Invalid refresh token", errResp.Detail)
}

func TestAuthHandler_Refresh_ExpiredAndInvalidCollapse(t *testing.T) {
	// В refresh flow expired и invalid дают одинаковый generic 401
	h, _, _, _ := setupAuthHandler(t)

	expiredSvc := token.NewService(token.Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		ResetSecret:   []byte("reset-secret"),
		RefreshTTL:    -time.Minute,
	})
	expired, err := expiredSvc.IssueRefresh("user-1", "a@x.com", "admin")
	require.NoError(t, err)

	wExpired := postJSON(t, h.Refresh, "/api/auth/refresh-login", api.RefreshRequest{RefreshToken: expired})
	wGarbage := postJSON(t, h.Refresh, "/api/auth/refresh-login", api.RefreshRequest{RefreshToken: "garbage"})

	assert.Equal(t, http.StatusUnauthorized, wExpired.Code)
	assert.Equal(t, http.StatusUnauthorized, wGarbage.Code)
	assert.Equal(t, wExpired.Body.String(), wGarbage.Body.String())
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	h, users, _, _ := setupAuthHandler(t)

	w := postJSON(t, h.Signup, "/api/auth/signup", api.SignupRequest{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@x.com",
		Password:  "password123",
	})

	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Data)
	assert.Equal(t, "Signup successful. You can now login.", env.Data.SuccessMessage)

	user, err := users.GetUserByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Role)
	assert.True(t, user.IsFirstLogin)
	assert.NotEmpty(t, user.ID)

	// Пароль хранится только хешем
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.NoError(t, crypto.VerifyPassword("password123", user.PasswordHash))
}

func TestAuthHandler_Signup_DuplicateEmail(t *testing.T) {
	h, users, _, _ := setupAuthHandler(t)
	seedUser(t, users, "taken@x.com", "password123")

	w := postJSON(t, h.Signup, "/api/auth/signup", api.SignupRequest{
		FirstName: "Bob",
		LastName:  "Jones",
		Email:     "taken@x.com",
		Password:  "password123",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
	assert.Equal(t, "Email already registered", errResp.Detail)
}

func TestAuthHandler_Signup_Validation(t *testing.T) {
	h, _, _, _ := setupAuthHandler(t)

	tests := []struct {
		name string
		req  api.SignupRequest
	}{
		{"bad email", api.SignupRequest{FirstName: "A", LastName: "B", Email: "not-an-email", Password: "password123"}},
		{"short password", api.SignupRequest{FirstName: "A", LastName: "B", Email: "a@x.com", Password: "short"}},
		{"empty first name", api.SignupRequest{LastName: "B", Email: "a@x.com", Password: "password123"}},
		{"empty last name", api.SignupRequest{FirstName: "A", Email: "a@x.com", Password: "password123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, h.Signup, "/api/auth/signup", tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAuthHandler_ForgotPassword_AntiEnumeration(t *testing.T) {
	h, users, sender, _ := setupAuthHandler(t)
	seedUser(t, users, "known@x.com", "password123")

	wKnown := postJSON(t, h.ForgotPassword, "/api/auth/forgot-password", api.ForgotPasswordRequest{Email: "known@x.com"})
	wUnknown := postJSON(t, h.ForgotPassword, "/api/auth/forgot-password", api.ForgotPasswordRequest{Email: "unknown@x.com"})

	// Тела ответов идентичны, письмо ушло только существующему пользователю
	assert.Equal(t, http.StatusOK, wKnown.Code)
	assert.Equal(t, http.StatusOK, wUnknown.Code)
	assert.Equal(t, wKnown.Body.String(), wUnknown.Body.String())

	require.Len(t, sender.sentTo, 1)
	assert.Equal(t, "known@x.com", sender.sentTo[0])
	assert.Contains(t, sender.sentLinks[0], "https://app.electrosoft.io/change/")
}

func TestAuthHandler_ForgotPassword_ResetLinkContainsValidToken(t *testing.T) {
	h, users, sender, tokens := setupAuthHandler(t)
	seedUser(t, users, "known@x.com", "password123")

	w := postJSON(t, h.ForgotPassword, "/api/auth/forgot-password", api.ForgotPasswordRequest{Email: "known@x.com"})
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, sender.sentLinks, 1)
	resetToken := sender.sentLinks[0][len("https://app.electrosoft.io/change/"):]

	subject, err := tokens.VerifyReset(resetToken)
	require.NoError(t, err)
	assert.Equal(t, "known@x.com", subject)
}

func TestAuthHandler_ForgotPassword_DeliveryFailureStillGeneric(t *testing.T) {
	// Сбой отправки не должен менять ответ, иначе он раскрывает существование email
	h, users, sender, _ := setupAuthHandler(t)
	seedUser(t, users, "known@x.com", "password123")
	sender.sendError = context.DeadlineExceeded

	wKnown := postJSON(t, h.ForgotPassword, "/api/auth/forgot-password", api.ForgotPasswordRequest{Email: "known@x.com"})
	wUnknown := postJSON(t, h.ForgotPassword, "/api/auth/forgot-password", api.ForgotPasswordRequest{Email: "unknown@x.com"})

	assert.Equal(t, http.StatusOK, wKnown.Code)
	assert.Equal(t, wKnown.Body.String(), wUnknown.Body.String())
}

func TestAuthHandler_ResetPassword_Success(t *testing.T) {
	h, users, _, tokens := setupAuthHandler(t)
	user := seedUser(t, users, "a@x.com", "password123")

	resetToken, err := tokens.IssueReset("a@x.com")
	require.NoError(t, err)

	w := postJSON(t, h.ResetPassword, "/api/auth/reset-password", api.ResetPasswordRequest{
		Token:       resetToken,
		NewPassword: "new-password-1",
	})

	require.Equal(t, http.StatusOK, w.Code)

	// Пароль перезаписан, is_first_login не тронут
	got, err := users.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, crypto.VerifyPassword("new-password-1", got.PasswordHash))
	assert.True(t, got.IsFirstLogin)
}

func TestAuthHandler_ResetPassword_ExpiredVsInvalid(t *testing.T) {
	// Единственный flow, где истекший токен отличим от невалидного
	h, users, _, _ := setupAuthHandler(t)
	seedUser(t, users, "a@x.com", "password123")

	expiredSvc := token.NewService(token.Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		ResetSecret:   []byte("reset-secret"),
		ResetTTL:      -time.Minute,
	})
	expired, err := expiredSvc.IssueReset("a@x.com")
	require.NoError(t, err)

	wExpired := postJSON(t, h.ResetPassword, "/api/auth/reset-password", api.ResetPasswordRequest{Token: expired, NewPassword: "new-password-1"})
	wInvalid := postJSON(t, h.ResetPassword, "/api/auth/reset-password", api.ResetPasswordRequest{Token: "garbage", NewPassword: "new-password-1"})

	assert.Equal(t, http.StatusBadRequest, wExpired.Code)
	assert.Equal(t, http.StatusBadRequest, wInvalid.Code)

	var expiredResp, invalidResp api.ErrorResponse
	require.NoError(t, json.NewDecoder(wExpired.Body).Decode(&expiredResp))
	require.NoError(t, json.NewDecoder(wInvalid.Body).Decode(&invalidResp))

	assert.Equal(t, "Reset token expired", expiredResp.Detail)
	assert.Equal(t, "Invalid token", invalidResp.Detail)
}

func TestAuthHandler_ResetPassword_UnknownUser(t *testing.T) {
	h, _, _, tokens := setupAuthHandler(t)

	resetToken, err := tokens.IssueReset("ghost@x.com")
	require.NoError(t, err)

	w := postJSON(t, h.ResetPassword, "/api/auth/reset-password", api.ResetPasswordRequest{
		Token:       resetToken,
		NewPassword: "new-password-1",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
	assert.Equal(t, "User not found", errResp.Detail)
}

// withUser кладет пользователя в контекст запроса, как это делает auth middleware
func withUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), UserKey, user))
}

func TestAuthHandler_UpdatePassword_Success(t *testing.T) {
	h, users, _, _ := setupAuthHandler(t)
	user := seedUser(t, users, "a@x.com", "password123")

	body, err := json.Marshal(api.UpdatePasswordRequest{
		OldPassword:     "password123",
		NewPassword:     "new-password-1",
		ConfirmPassword: "new-password-1",
	})
	require.NoError(t, err)

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/auth/update-password", bytes.NewReader(body)), user)
	w := httptest.NewRecorder()
	h.UpdatePassword(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	got, err := users.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, crypto.VerifyPassword("new-password-1", got.PasswordHash))
	assert.False(t, got.IsFirstLogin, "первая смена пароля должна снять is_first_login")
}

func TestAuthHandler_UpdatePassword_ConfirmMismatch(t *testing.T) {
	h, users, _, _ := setupAuthHandler(t)
	user := seedUser(t, users, "a@x.com", "password123")

	body, err := json.Marshal(api.UpdatePasswordRequest{
		OldPassword:     "password123",
		NewPassword:     "new-password-1",
		ConfirmPassword: "new-password-2",
	})
	require.NoError(t, err)

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/auth/update-password", bytes.NewReader(body)), user)
	w := httptest.NewRecorder()
	h.UpdatePassword(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
	assert.Equal(t, "Passwords do not match", errResp.Detail)
}

func TestAuthHandler_UpdatePassword_WrongOldPassword(t *testing.T) {
	h, users, _, _ := setupAuthHandler(t)
	user := seedUser(t, users, "a@x.com", "password123")

	body, err := json.Marshal(api.UpdatePasswordRequest{
		OldPassword:     "wrong-old",
		NewPassword:     "new-password-1",
		ConfirmPassword: "new-password-1",
	})
	require.NoError(t, err)

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/auth/update-password", bytes.NewReader(body)), user)
	w := httptest.NewRecorder()
	h.UpdatePassword(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
	assert.Equal(t, "Old password incorrect", errResp.Detail)
}

func TestAuthHandler_UpdatePassword_NoUserInContext(t *testing.T) {
	h, _, _, _ := setupAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/update-password", bytes.NewReader([]byte("{}")))
	w := httptest.NewRecorder()
	h.UpdatePassword(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Greet(t *testing.T) {
	h, users, _, _ := setupAuthHandler(t)
	user := seedUser(t, users, "a@x.com", "password123")

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/auth/greet", nil), user)
	w := httptest.NewRecorder()
	h.Greet(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.GreetResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Hey Greetings from ElectroSoft..!!!", resp.Message)
}
