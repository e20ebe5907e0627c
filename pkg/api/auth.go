package api

// LoginRequest представляет запрос на аутентификацию по email и паролю
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest представляет запрос на обновление пары токенов
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// SignupRequest представляет запрос на регистрацию нового пользователя
type SignupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// UpdatePasswordRequest представляет запрос на смену пароля аутентифицированным пользователем
type UpdatePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ForgotPasswordRequest представляет запрос на отправку ссылки для сброса пароля
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest представляет запрос на сброс пароля по токену из письма
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// TokenData содержит пару выданных токенов
type TokenData struct {
	AccessToken  string `json:"access_token"`  // JWT access token
	RefreshToken string `json:"refresh_token"` // JWT refresh token
}

// UserData содержит публичный профиль пользователя
type UserData struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Preferences содержит настройки интерфейса клиента
type Preferences struct {
	ColorThemeID string `json:"color_theme_id"`
}

// AppConfig содержит статическую конфигурацию клиентского приложения
type AppConfig struct {
	Preferences Preferences `json:"preferences"`
	AppLogoURL  string      `json:"app_logo_url"`
}

// LoginResponse представляет payload успешного логина
type LoginResponse struct {
	TokenData    TokenData `json:"token_data"`
	IsFirstLogin bool      `json:"is_first_login"`
	Role         string    `json:"role"`
	UserData     UserData  `json:"user_data"`
	LoginType    string    `json:"login_type"`
	AppConfig    AppConfig `json:"app_config"`
}

// RefreshResponse представляет payload успешного обновления токенов
type RefreshResponse struct {
	TokenData TokenData `json:"token_data"`
}

// GreetResponse представляет ответ защищенного greeting endpoint
type GreetResponse struct {
	Message string `json:"message"`
}

// Data — внутренняя часть успешного конверта
type Data struct {
	Response       any    `json:"response"`
	SuccessMessage string `json:"success_message"`
}

// Envelope представляет стандартный конверт успешного ответа:
// {"data": {...}, "error_message": "", "is_error": false}
type Envelope struct {
	Data         *Data  `json:"data"`
	ErrorMessage string `json:"error_message"`
	IsError      bool   `json:"is_error"`
}

// ErrorResponse представляет ответ с ошибкой (HTTP статус + detail)
type ErrorResponse struct {
	Detail string `json:"detail"`
}
