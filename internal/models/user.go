package models

import "time"

// RoleAdmin назначается каждому пользователю при регистрации.
// Других ролей система пока не выдает.
const RoleAdmin = "admin"

// User представляет пользователя в системе
type User struct {
	ID           string    `json:"id"`             // UUID пользователя
	Email        string    `json:"email"`          // уникальный email (хранится как есть, без нормализации)
	PasswordHash string    `json:"-"`              // argon2id хеш пароля (PHC строка), никогда не отдается наружу
	FirstName    string    `json:"first_name"`     // имя
	LastName     string    `json:"last_name"`      // фамилия
	Role         string    `json:"role"`           // роль, по умолчанию "admin"
	IsFirstLogin bool      `json:"is_first_login"` // true до первой успешной смены пароля
	CreatedAt    time.Time `json:"created_at"`     // время создания
	UpdatedAt    time.Time `json:"updated_at"`     // время последнего обновления
}
