package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailConfig selects the service account and the mailbox it impersonates.
// The account needs domain-wide delegation for the gmail.send scope.
type GmailConfig struct {
	CredentialsJSON string
	CredentialsFile string
	Sender          string
}

// GmailMailer sends as Sender through the Gmail API.
type GmailMailer struct {
	svc    *gmail.Service
	sender string
}

func NewGmailMailer(ctx context.Context, cfg GmailConfig) (*GmailMailer, error) {
	if cfg.Sender == "" {
		return nil, errors.New("missing gmail sender address")
	}

	var credentials []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		credentials = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentials = data
	default:
		return nil, errors.New("missing service account credentials (set GMAIL_CREDENTIALS_JSON or GMAIL_CREDENTIALS_FILE)")
	}

	jwtCfg, err := google.JWTConfigFromJSON(credentials, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}
	jwtCfg.Subject = cfg.Sender

	svc, err := gmail.NewService(ctx, option.WithTokenSource(jwtCfg.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &GmailMailer{svc: svc, sender: cfg.Sender}, nil
}

func (m *GmailMailer) Send(ctx context.Context, to, subject, body string) error {
	raw := base64.URLEncoding.EncodeToString(buildMessage(m.sender, to, subject, body, time.Now()))
	_, err := m.svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail send: %w", err)
	}
	return nil
}
