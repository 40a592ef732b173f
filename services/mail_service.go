// services/mail_service.go
package services

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// MailMessage is one outbound email.
type MailMessage struct {
	To          string
	CC          []string
	BCC         []string
	ReplyTo     string
	Subject     string
	Body        string
	HTML        bool
	Attachments []string // file paths, attached base64-encoded
}

// Mailer sends transactional email. Implementations must treat delivery as
// best-effort: callers log failures but never roll anything back over them.
type Mailer interface {
	Send(msg MailMessage) error
	IsEnabled() bool
}

// MailService sends mail through the Microsoft Graph API using the
// client-credentials flow. With no credentials configured it degrades to a
// log-only no-op so local development never blocks on mail.
type MailService struct {
	client       *resty.Client
	clientID     string
	clientSecret string
	tenantID     string
	sender       string

	mu           sync.Mutex
	token        string
	tokenExpires time.Time
}

func NewMailService() *MailService {
	return &MailService{
		client:       resty.New().SetTimeout(15 * time.Second),
		clientID:     os.Getenv("GRAPH_CLIENT_ID"),
		clientSecret: os.Getenv("GRAPH_CLIENT_SECRET"),
		tenantID:     os.Getenv("GRAPH_TENANT_ID"),
		sender:       os.Getenv("EMAIL_HOST_USER"),
	}
}

func (s *MailService) IsEnabled() bool {
	return s.clientID != "" && s.clientSecret != "" && s.tenantID != "" && s.sender != ""
}

// acquireToken fetches (and caches) an app-only access token for Graph.
func (s *MailService) acquireToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.tokenExpires.Add(-time.Minute)) {
		return s.token, nil
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}

	url := fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", s.tenantID)
	resp, err := s.client.R().
		SetFormData(map[string]string{
			"client_id":     s.clientID,
			"client_secret": s.clientSecret,
			"scope":         "https://graph.microsoft.com/.default",
			"grant_type":    "client_credentials",
		}).
		SetResult(&result).
		Post(url)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("token request failed: %s", resp.Status())
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access_token")
	}

	s.token = result.AccessToken
	s.tokenExpires = time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
	return s.token, nil
}

// Send delivers one message via Graph sendMail.
func (s *MailService) Send(msg MailMessage) error {
	if !s.IsEnabled() {
		log.Printf("[MAIL] Disabled, would send to %s: %s", msg.To, msg.Subject)
		return nil
	}

	token, err := s.acquireToken()
	if err != nil {
		return err
	}

	contentType := "Text"
	if msg.HTML {
		contentType = "HTML"
	}

	message := map[string]interface{}{
		"subject": msg.Subject,
		"body": map[string]string{
			"contentType": contentType,
			"content":     msg.Body,
		},
		"toRecipients": recipients(msg.To),
	}
	if len(msg.CC) > 0 {
		message["ccRecipients"] = recipients(msg.CC...)
	}
	if len(msg.BCC) > 0 {
		message["bccRecipients"] = recipients(msg.BCC...)
	}
	if msg.ReplyTo != "" {
		message["replyTo"] = recipients(msg.ReplyTo)
	}

	if len(msg.Attachments) > 0 {
		attachments := make([]map[string]interface{}, 0, len(msg.Attachments))
		for _, path := range msg.Attachments {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read attachment %s: %w", path, err)
			}
			attachments = append(attachments, map[string]interface{}{
				"@odata.type":  "#microsoft.graph.fileAttachment",
				"name":         filepath.Base(path),
				"contentType":  "application/octet-stream",
				"contentBytes": base64.StdEncoding.EncodeToString(data),
			})
		}
		message["attachments"] = attachments
	}

	endpoint := fmt.Sprintf("https://graph.microsoft.com/v1.0/users/%s/sendMail", s.sender)
	resp, err := s.client.R().
		SetAuthToken(token).
		SetBody(map[string]interface{}{
			"message":         message,
			"saveToSentItems": "true",
		}).
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("sendMail request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("sendMail failed: %s: %s", resp.Status(), resp.String())
	}

	log.Printf("[MAIL] Sent to %s: %s", msg.To, msg.Subject)
	return nil
}

func recipients(addresses ...string) []map[string]map[string]string {
	out := make([]map[string]map[string]string, 0, len(addresses))
	for _, addr := range addresses {
		out = append(out, map[string]map[string]string{
			"emailAddress": {"address": addr},
		})
	}
	return out
}
