package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.resend.com"

var verifyTmpl = template.Must(template.New("verify").Parse(`
			<p>Welcome to PhotoCap!</p>
			<p>Please verify your studio account email by clicking the link below:</p>
			<p><a href="{{.}}">Verify Email</a></p>
			<p>The link expires in 24 hours.</p>
		`))

type ResendMailer struct {
	apiKey  string
	from    string
	client  *http.Client
	baseURL string
}

func NewResendMailer(apiKey, from string) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, errors.New("RESEND_API_KEY not set")
	}

	return &ResendMailer{
		apiKey: apiKey,
		from:   from,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: defaultBaseURL,
	}, nil
}

// WithBaseURL points the mailer at another API host.
func (m *ResendMailer) WithBaseURL(u string) *ResendMailer {
	m.baseURL = u
	return m
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (m *ResendMailer) SendVerificationEmail(
	ctx context.Context,
	toEmail string,
	verifyURL string,
) error {
	var html bytes.Buffer
	if err := verifyTmpl.Execute(&html, verifyURL); err != nil {
		return err
	}

	b, err := json.Marshal(sendRequest{
		From:    m.from,
		To:      []string{toEmail},
		Subject: "Verify your PhotoCap email",
		HTML:    html.String(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		m.baseURL+"/emails",
		bytes.NewReader(b),
	)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("failed to send verification email: %s: %s", resp.Status, body)
	}

	return nil
}
