package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL - адрес Mailjet Send API v3.1
const DefaultBaseURL = "https://api.mailjet.com"

// MailjetClient отправляет письма через Mailjet Send API v3.1.
// Аутентификация - HTTP basic auth парой public/private API key.
type MailjetClient struct {
	httpClient *http.Client
	baseURL    string
	apiPublic  string
	apiPrivate string
	fromEmail  string
	fromName   string
}

// NewMailjetClient создает новый Mailjet клиент
func NewMailjetClient(apiPublic, apiPrivate, fromEmail, fromName string) *MailjetClient {
	return &MailjetClient{
		baseURL:    DefaultBaseURL,
		apiPublic:  apiPublic,
		apiPrivate: apiPrivate,
		fromEmail:  fromEmail,
		fromName:   fromName,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithBaseURL переопределяет адрес API (используется в тестах)
func (c *MailjetClient) WithBaseURL(baseURL string) *MailjetClient {
	c.baseURL = baseURL
	return c
}

// Структуры запроса Send API v3.1
type mailjetAddress struct {
	Email string `json:"Email"`
	Name  string `json:"Name,omitempty"`
}

type mailjetMessage struct {
	From     mailjetAddress   `json:"From"`
	To       []mailjetAddress `json:"To"`
	Subject  string           `json:"Subject"`
	HTMLPart string           `json:"HTMLPart"`
}

type mailjetRequest struct {
	Messages []mailjetMessage `json:"Messages"`
}

// SendResetEmail отправляет письмо со ссылкой сброса пароля
func (c *MailjetClient) SendResetEmail(ctx context.Context, toEmail, resetLink string) error {
	htmlPart := fmt.Sprintf(`
                <h3>Password Reset</h3>
                <p>Click the link below to reset your password:</p>
                <a href="%s">%s</a>
                <p>This link expires in 30 minutes.</p>
                `, resetLink, resetLink)

	payload := mailjetRequest{
		Messages: []mailjetMessage{
			{
				From:     mailjetAddress{Email: c.fromEmail, Name: c.fromName},
				To:       []mailjetAddress{{Email: toEmail}},
				Subject:  "Password Reset Request",
				HTMLPart: htmlPart,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mailjet request: %w", err)
	}

	url := c.baseURL + "/v3.1/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.apiPublic, c.apiPrivate)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailjet request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Читаем тело для диагностики, но не раскрываем его дальше логов
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mailjet returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
