package validation

import (
	"fmt"
	"regexp"
)

// EmailPattern определяет допустимый формат email.
// Умышленно простая проверка: локальная часть, @, домен с точкой.
var EmailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 8
	// MaxEmailLen максимальная длина email
	MaxEmailLen = 254
)

// ValidateEmail проверяет, что email непустой и похож на адрес
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}

	if !EmailPattern.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// ValidatePassword проверяет минимальные требования к паролю
// Минимум 8 символов
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	return nil
}

// ValidateName проверяет, что имя или фамилия не пустые
func ValidateName(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	return nil
}
