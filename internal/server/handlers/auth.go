package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/electrosoft/authd/internal/crypto"
	"github.com/electrosoft/authd/internal/models"
	"github.com/electrosoft/authd/internal/server/email"
	"github.com/electrosoft/authd/internal/server/storage"
	"github.com/electrosoft/authd/internal/server/token"
	"github.com/electrosoft/authd/internal/validation"
	"github.com/electrosoft/authd/pkg/api"
)

// forgotPasswordMessage возвращается и для известного, и для неизвестного email,
// чтобы ответ не позволял перечислять зарегистрированные адреса
const forgotPasswordMessage = "Reset link has been sent to your email. \n Check Inbox or Spam if mail not found then."

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger      *slog.Logger
	userStorage storage.UserStorage
	tokens      *token.Service
	sender      email.Sender
	frontendURL string
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, userStorage storage.UserStorage, tokens *token.Service, sender email.Sender, frontendURL string) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		userStorage: userStorage,
		tokens:      tokens,
		sender:      sender,
		frontendURL: frontendURL,
	}
}

// Login обрабатывает POST /api/auth/login
// Аутентификация по email и паролю
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode login request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Неизвестный email и неверный пароль дают одинаковый ответ
			h.logger.WarnContext(ctx, "login failed: user not found", slog.String("email", req.Email))
			h.sendError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := crypto.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		h.logger.WarnContext(ctx, "login failed: invalid password", slog.String("email", req.Email))
		h.sendError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	accessToken, err := h.tokens.IssueAccess(user.ID, user.Email, user.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue access token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	refreshToken, err := h.tokens.IssueRefresh(user.ID, user.Email, user.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue refresh token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged in successfully",
		slog.String("email", user.Email),
		slog.String("user_id", user.ID))

	resp := api.LoginResponse{
		TokenData: api.TokenData{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
		IsFirstLogin: user.IsFirstLogin,
		Role:         user.Role,
		UserData: api.UserData{
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		},
		LoginType: "electrosoft",
		AppConfig: api.AppConfig{
			Preferences: api.Preferences{ColorThemeID: "olive"},
			AppLogoURL:  "https://dummy.logo",
		},
	}

	h.sendSuccess(w, resp, "Login successful.")
}

// Refresh обрабатывает POST /api/auth/refresh-login
// Выдает новую пару токенов по действующему refresh token.
// Пользователь в БД намеренно не перепроверяется: пара чеканится из
// проверенных claims, удаленный пользователь сохраняет работающий refresh
// до истечения exp.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode refresh request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Любая ошибка проверки схлопывается в generic 401
	claims, err := h.tokens.VerifyRefresh(req.RefreshToken)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh failed", slog.Any("error", err))
		h.sendError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	accessToken, err := h.tokens.IssueAccess(claims.UserID, claims.Email, claims.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue access token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	refreshToken, err := h.tokens.IssueRefresh(claims.UserID, claims.Email, claims.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue refresh token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "tokens refreshed successfully", slog.String("user_id", claims.UserID))

	resp := api.RefreshResponse{
		TokenData: api.TokenData{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	}

	h.sendSuccess(w, resp, "Login Refresh successful.")
}

// Signup обрабатывает POST /api/auth/signup
// Регистрация нового пользователя. Роль всегда "admin", is_first_login=true.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode signup request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateName("first_name", req.FirstName); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateName("last_name", req.LastName); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	passwordHash, err := crypto.HashPassword(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleAdmin,
		IsFirstLogin: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Уникальность email гарантирует constraint в storage, а не проверка
	// перед insert: check-then-act здесь был бы гонкой
	if err := h.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "signup failed: email already registered", slog.String("email", req.Email))
			h.sendError(w, "Email already registered", http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully",
		slog.String("email", req.Email),
		slog.String("user_id", user.ID))

	h.sendSuccess(w, nil, "Signup successful. You can now login.")
}

// ForgotPassword обрабатывает POST /api/auth/forgot-password
// Ответ одинаков для известного и неизвестного email; отличается только
// побочный эффект - письмо уходит только существующему пользователю
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode forgot-password request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendSuccess(w, nil, forgotPasswordMessage)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resetToken, err := h.tokens.IssueReset(user.Email)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue reset token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resetLink := h.frontendURL + "/change/" + resetToken

	// Доставка best-effort: ошибка отправки логируется, но ответ остается
	// тем же generic success, иначе сбой Mailjet выдавал бы существование email
	if err := h.sender.SendResetEmail(ctx, user.Email, resetLink); err != nil {
		h.logger.ErrorContext(ctx, "failed to send reset email",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
	}

	h.sendSuccess(w, nil, forgotPasswordMessage)
}

// ResetPassword обрабатывает POST /api/auth/reset-password
// Единственный flow, где истекший токен отличим от невалидного
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode reset-password request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	userEmail, err := h.tokens.VerifyReset(req.Token)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			h.sendError(w, "Reset token expired", http.StatusBadRequest)
			return
		}
		h.sendError(w, "Invalid token", http.StatusBadRequest)
		return
	}

	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, userEmail)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, "User not found", http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	passwordHash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Recovery flow: старый пароль не требуется, is_first_login не трогаем
	if err := h.userStorage.UpdatePassword(ctx, user.ID, passwordHash, false); err != nil {
		h.logger.ErrorContext(ctx, "failed to update password", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "password reset successfully", slog.String("user_id", user.ID))

	h.sendSuccess(w, nil, "Password reset successful")
}

// UpdatePassword обрабатывает POST /api/auth/update-password
// Требует аутентификации: текущий пользователь приходит из auth middleware
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := CurrentUser(ctx)
	if !ok {
		h.sendError(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	var req api.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode update-password request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.NewPassword != req.ConfirmPassword {
		h.sendError(w, "Passwords do not match", http.StatusBadRequest)
		return
	}

	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := crypto.VerifyPassword(req.OldPassword, user.PasswordHash); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			h.sendError(w, "Old password incorrect", http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to verify password", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	passwordHash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Первая успешная смена пароля снимает is_first_login
	if err := h.userStorage.UpdatePassword(ctx, user.ID, passwordHash, true); err != nil {
		h.logger.ErrorContext(ctx, "failed to update password", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "password updated successfully", slog.String("user_id", user.ID))

	h.sendSuccess(w, nil, "Password updated successfully.")
}

// Greet обрабатывает GET /api/auth/greet
// Защищенный endpoint для проверки access token
func (h *AuthHandler) Greet(w http.ResponseWriter, r *http.Request) {
	if _, ok := CurrentUser(r.Context()); !ok {
		h.sendError(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	SendJSON(h.logger, w, api.GreetResponse{Message: "Hey Greetings from ElectroSoft..!!!"}, http.StatusOK)
}

// sendSuccess отправляет успешный ответ в стандартном конверте
func (h *AuthHandler) sendSuccess(w http.ResponseWriter, payload any, successMessage string) {
	SendSuccess(h.logger, w, payload, successMessage)
}

// sendError отправляет JSON ответ с ошибкой
func (h *AuthHandler) sendError(w http.ResponseWriter, detail string, statusCode int) {
	SendError(h.logger, w, detail, statusCode)
}
