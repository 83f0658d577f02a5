package oauth2

import (
	"encoding/json"
	"time"

	"golang.org/x/oauth2"

	"hubspot-connector/internal/common/errors"
)

// Credentials is the subset of HubSpot's token response the connector reads.
// The cache keeps the full raw response.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}

// tokenErrorResponse covers both the RFC 6749 error shape and HubSpot's own
type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Status           string `json:"status"`
	Message          string `json:"message"`
}

// ParseCredentials decodes a credential blob as returned by Flow.Credentials.
func ParseCredentials(raw string) (*Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, &errors.AppError{Type: errors.ErrTypeValidation, Message: "Invalid credentials", Cause: err}
	}
	if creds.AccessToken == "" {
		return nil, errors.ValidationError("Credentials do not contain an access token")
	}
	return &creds, nil
}

// Token converts the credentials for use with an oauth2.TokenSource.
// issuedAt anchors ExpiresIn; pass the zero time when unknown.
func (c *Credentials) Token(issuedAt time.Time) *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: c.RefreshToken,
	}
	if c.ExpiresIn > 0 && !issuedAt.IsZero() {
		token.Expiry = issuedAt.Add(time.Duration(c.ExpiresIn) * time.Second)
	}
	return token
}
