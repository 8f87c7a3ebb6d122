package abstractapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tankharsh/photocap/internal/services"
)

const defaultEndpoint = "https://emailreputation.abstractapi.com/v1/"

type AbstractReputationValidator struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewAbstractReputationValidator(apiKey string) (*AbstractReputationValidator, error) {
	if apiKey == "" {
		return nil, errors.New("ABSTRACT_EMAIL_API_KEY not set")
	}

	return &AbstractReputationValidator{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}, nil
}

// WithEndpoint points the validator at another API host.
func (v *AbstractReputationValidator) WithEndpoint(u string) *AbstractReputationValidator {
	v.endpoint = u
	return v
}

type reputationResponse struct {
	EmailReputation string `json:"email_reputation"` // LOW, MEDIUM, HIGH
	IsDisposable    bool   `json:"is_disposable_email"`
	IsRoleEmail     bool   `json:"is_role_email"`
}

func (v *AbstractReputationValidator) Validate(
	ctx context.Context,
	email string,
) error {
	u, err := url.Parse(v.endpoint)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("api_key", v.apiKey)
	q.Set("email", email)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email reputation service error: %s", resp.Status)
	}

	var out reputationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}

	// ---- Rules ----
	if out.IsDisposable {
		return fmt.Errorf("%w: disposable email is not allowed", services.ErrEmailRejected)
	}

	if out.IsRoleEmail {
		return fmt.Errorf("%w: role-based email is not allowed", services.ErrEmailRejected)
	}

	if out.EmailReputation == "LOW" {
		return fmt.Errorf("%w: email reputation is too low", services.ErrEmailRejected)
	}

	return nil
}
