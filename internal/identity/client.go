// Package identity looks up verified phone identities at the external
// OTP provider. The provider performs OTP delivery and verification on
// its own; the auth core only cross-checks the resulting identity token
// against the phone number the client claims.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var ErrLookupFailed = errors.New("identity provider lookup failed")

// PhoneIdentity is the provider's view of a verified phone sign-in.
type PhoneIdentity struct {
	UID         string `json:"uid"`
	PhoneNumber string `json:"phone_number"`
}

// Provider resolves an identity token issued by the OTP provider.
type Provider interface {
	Lookup(ctx context.Context, idToken string) (*PhoneIdentity, error)
}

type httpProvider struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewProvider(endpoint, apiKey string) Provider {
	return &httpProvider{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *httpProvider) Lookup(ctx context.Context, idToken string) (*PhoneIdentity, error) {
	if p.endpoint == "" {
		return nil, fmt.Errorf("%w: provider not configured", ErrLookupFailed)
	}

	body := fmt.Sprintf(`{"idToken":%q}`, idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"?key="+p.apiKey, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned status %d", ErrLookupFailed, resp.StatusCode)
	}

	var decoded struct {
		Users []struct {
			LocalID     string `json:"localId"`
			PhoneNumber string `json:"phoneNumber"`
		} `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	if len(decoded.Users) == 0 {
		return nil, fmt.Errorf("%w: no identity for token", ErrLookupFailed)
	}

	return &PhoneIdentity{
		UID:         decoded.Users[0].LocalID,
		PhoneNumber: decoded.Users[0].PhoneNumber,
	}, nil
}
