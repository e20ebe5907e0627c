// Package email отвечает за доставку писем со ссылкой сброса пароля.
// Единственная реализация — Mailjet Send API v3.1. Доставка best-effort:
// решение, проваливать ли запрос при ошибке отправки, принимает вызывающий.
package email

import "context"

// Sender defines interface for delivering password reset emails
type Sender interface {
	// SendResetEmail отправляет письмо со ссылкой сброса пароля
	SendResetEmail(ctx context.Context, toEmail, resetLink string) error
}
