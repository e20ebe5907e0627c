package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Параметры Argon2id для хеширования паролей
const (
	// Argon2Time - количество итераций (time cost)
	Argon2Time = 1
	// Argon2Memory - объем памяти в KB (64MB = 64*1024 KB)
	Argon2Memory = 64 * 1024
	// Argon2Threads - количество параллельных потоков
	Argon2Threads = 4
	// Argon2KeyLen - длина выходного хеша в байтах
	Argon2KeyLen = 32
	// SaltSize - размер соли в байтах
	SaltSize = 16
)

// ErrPasswordMismatch возвращается, когда пароль не соответствует хешу
var ErrPasswordMismatch = fmt.Errorf("password does not match hash")

// HashPassword хеширует пароль через Argon2id со случайной солью.
// Результат — PHC-строка вида:
// $argon2id$v=19$m=65536,t=1,p=4$<base64 salt>$<base64 hash>
// Строка самодостаточна: Verify восстанавливает параметры из нее.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	// Генерируем криптографически случайную соль
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, Argon2Time, Argon2Memory, Argon2Threads, Argon2KeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		Argon2Memory,
		Argon2Time,
		Argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return encoded, nil
}

// VerifyPassword проверяет пароль против сохраненной PHC-строки.
// Возвращает nil при совпадении, ErrPasswordMismatch при несовпадении,
// другую ошибку при поврежденном хеше.
func VerifyPassword(password, encodedHash string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	salt, hash, params, err := decodeHash(encodedHash)
	if err != nil {
		return err
	}

	// Пересчитываем хеш с параметрами из строки
	computed := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(hash)))

	// Сравнение за константное время
	if subtle.ConstantTimeCompare(hash, computed) != 1 {
		return ErrPasswordMismatch
	}

	return nil
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
}

// decodeHash разбирает PHC-строку argon2id на соль, хеш и параметры
func decodeHash(encodedHash string) (salt, hash []byte, params argon2Params, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, params, fmt.Errorf("invalid hash format")
	}

	if parts[1] != "argon2id" {
		return nil, nil, params, fmt.Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, params, fmt.Errorf("failed to parse hash version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, params, fmt.Errorf("incompatible argon2 version: %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &params.threads); err != nil {
		return nil, nil, params, fmt.Errorf("failed to parse hash params: %w", err)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, params, fmt.Errorf("failed to decode salt: %w", err)
	}

	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, params, fmt.Errorf("failed to decode hash: %w", err)
	}

	return salt, hash, params, nil
}
