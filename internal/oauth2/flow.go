package oauth2

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"hubspot-connector/internal/circuitbreaker"
	"hubspot-connector/internal/common/cache"
	"hubspot-connector/internal/common/errors"
	commonhttp "hubspot-connector/internal/common/http"
	"hubspot-connector/internal/common/logging"
)

// DefaultStateTTL bounds how long state, verifiers and credentials stay cached
const DefaultStateTTL = 600 * time.Second

// Config describes the HubSpot OAuth application
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	Scopes       []string
	// UsePKCE sends an S256 code challenge and the matching verifier
	UsePKCE  bool
	StateTTL time.Duration
}

func (c *Config) validate() error {
	switch {
	case c.ClientID == "":
		return errors.ConfigError("client id is required")
	case c.ClientSecret == "":
		return errors.ConfigError("client secret is required")
	case c.RedirectURI == "":
		return errors.ConfigError("redirect uri is required")
	case c.AuthURL == "" || c.TokenURL == "":
		return errors.ConfigError("authorization and token urls are required")
	}
	if c.StateTTL <= 0 {
		c.StateTTL = DefaultStateTTL
	}
	return nil
}

// Keys under which the flow caches its records
func StateKey(orgID, userID string) string {
	return fmt.Sprintf("hubspot_state:%s:%s", orgID, userID)
}

func VerifierKey(orgID, userID string) string {
	return fmt.Sprintf("hubspot_verifier:%s:%s", orgID, userID)
}

func CredentialsKey(orgID, userID string) string {
	return fmt.Sprintf("hubspot_credentials:%s:%s", orgID, userID)
}

// CallbackParams carries the query HubSpot redirects back with
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// Flow runs the authorization-code flow for one HubSpot app.
type Flow struct {
	config     Config
	oauth      *oauth2.Config
	store      cache.Store
	codec      StateCodec
	httpClient *http.Client
	breaker    *circuitbreaker.GoBreakerAdapter
	logger     logging.Logger
}

// Option customises a Flow
type Option func(*Flow)

// WithStateCodec replaces the default base64 JSON state encoding
func WithStateCodec(codec StateCodec) Option {
	return func(f *Flow) {
		f.codec = codec
	}
}

// WithHTTPClient sets the client used for the token exchange
func WithHTTPClient(client *http.Client) Option {
	return func(f *Flow) {
		f.httpClient = client
	}
}

// NewFlow creates a flow that keeps its records in store
func NewFlow(config Config, store cache.Store, logger logging.Logger, opts ...Option) (*Flow, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.ConfigError("cache store is required")
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	logger = logger.WithFields(logging.String("component", "oauth2"))

	f := &Flow{
		config: config,
		oauth: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURI,
			Scopes:       config.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   config.AuthURL,
				TokenURL:  config.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		store:   store,
		codec:   Base64StateCodec{},
		breaker: circuitbreaker.NewGoBreaker("hubspot-token", circuitbreaker.TokenExchangeConfig, logger),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.httpClient == nil {
		f.httpClient = commonhttp.NewHTTPClientWithTimeout(30 * time.Second)
	}

	return f, nil
}

// Authorize starts a flow for the user and returns the URL to send them to.
// A second call for the same org and user replaces the pending state.
func (f *Flow) Authorize(ctx context.Context, userID, orgID string) (string, error) {
	if userID == "" || orgID == "" {
		return "", errors.ValidationError("user_id and org_id are required")
	}
	ctx = logging.ContextWithIdentity(ctx, orgID, userID)

	nonce, err := newNonce()
	if err != nil {
		return "", err
	}
	state := State{Nonce: nonce, UserID: userID, OrgID: orgID}

	encoded, err := f.codec.Encode(state)
	if err != nil {
		return "", err
	}
	record, err := json.Marshal(state)
	if err != nil {
		return "", errors.InternalError("failed to encode state record", err)
	}

	if err := f.store.Set(ctx, StateKey(orgID, userID), string(record), f.config.StateTTL); err != nil {
		return "", errors.ConnectionError("failed to store OAuth state", err)
	}

	var opts []oauth2.AuthCodeOption
	if f.config.UsePKCE {
		verifier := oauth2.GenerateVerifier()
		if err := f.store.Set(ctx, VerifierKey(orgID, userID), verifier, f.config.StateTTL); err != nil {
			return "", errors.ConnectionError("failed to store code verifier", err)
		}
		opts = append(opts, oauth2.S256ChallengeOption(verifier))
	}

	f.logger.WithContext(ctx).Debug("Authorization started", logging.Bool("pkce", f.config.UsePKCE))
	return f.oauth.AuthCodeURL(encoded, opts...), nil
}

// Callback completes the flow: it checks the returned state against the
// cached one, exchanges the code and caches the raw token response.
// A callback whose nonce does not match leaves the cached state in place.
// Once the nonce matches, the state is consumed whether or not the exchange
// succeeds.
func (f *Flow) Callback(ctx context.Context, params CallbackParams) error {
	if params.Error != "" {
		msg := params.ErrorDescription
		if msg == "" {
			msg = params.Error
		}
		f.logger.WithContext(ctx).Warn("Provider returned an authorization error",
			logging.String("error", params.Error),
			logging.String("error_description", params.ErrorDescription),
		)
		return errors.ProviderError(msg)
	}
	if params.Code == "" || params.State == "" {
		return errors.ValidationError("code and state are required")
	}

	state, err := f.codec.Decode(params.State)
	if err != nil {
		return err
	}
	ctx = logging.ContextWithIdentity(ctx, state.OrgID, state.UserID)
	logger := f.logger.WithContext(ctx)

	// Only a matching nonce may consume the pending record.
	pending, found, err := f.store.Get(ctx, StateKey(state.OrgID, state.UserID))
	if err != nil {
		return errors.ConnectionError("failed to read OAuth state", err)
	}
	if !found || !nonceMatches(pending, state.Nonce) {
		logger.Warn("OAuth state mismatch", logging.Bool("state_found", found))
		return errors.AuthError("State does not match.")
	}

	var (
		savedState, verifier string
		stateFound           bool
		verifierFound        = !f.config.UsePKCE
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		savedState, stateFound, err = f.store.Take(gctx, StateKey(state.OrgID, state.UserID))
		return err
	})
	if f.config.UsePKCE {
		g.Go(func() error {
			var err error
			verifier, verifierFound, err = f.store.Take(gctx, VerifierKey(state.OrgID, state.UserID))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return errors.ConnectionError("failed to read OAuth state", err)
	}

	// Re-checked on the taken value: a concurrent callback or a fresh
	// authorization may have replaced the record since the read.
	if !stateFound || !verifierFound || !nonceMatches(savedState, state.Nonce) {
		logger.Warn("OAuth state changed during callback",
			logging.Bool("state_found", stateFound),
			logging.Bool("verifier_found", verifierFound),
		)
		return errors.AuthError("State does not match.")
	}

	body, err := f.exchange(ctx, params.Code, verifier)
	if err != nil {
		return err
	}

	if err := f.store.Set(ctx, CredentialsKey(state.OrgID, state.UserID), string(body), f.config.StateTTL); err != nil {
		return errors.ConnectionError("failed to store credentials", err)
	}

	logger.Info("Authorization completed")
	return nil
}

// Credentials returns the cached token response once; later calls fail until
// another flow completes.
func (f *Flow) Credentials(ctx context.Context, userID, orgID string) (json.RawMessage, error) {
	if userID == "" || orgID == "" {
		return nil, errors.ValidationError("user_id and org_id are required")
	}

	value, found, err := f.store.Take(ctx, CredentialsKey(orgID, userID))
	if err != nil {
		return nil, errors.ConnectionError("failed to read credentials", err)
	}
	if !found {
		return nil, errors.NotFoundError("No credentials found.")
	}
	if !json.Valid([]byte(value)) {
		return nil, errors.InternalError("cached credentials are not valid JSON", nil)
	}

	return json.RawMessage(value), nil
}

func nonceMatches(savedRecord, nonce string) bool {
	var saved State
	if err := json.Unmarshal([]byte(savedRecord), &saved); err != nil || saved.Nonce == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(saved.Nonce), []byte(nonce)) == 1
}

// BreakerStats reports the token endpoint circuit breaker
func (f *Flow) BreakerStats() circuitbreaker.Stats {
	return f.breaker.Stats()
}

// exchange posts the authorization code to the token endpoint and returns the
// raw JSON response. oauth2.Config.Exchange is not used because it discards
// the body the connector hands back to its callers.
func (f *Flow) exchange(ctx context.Context, code, verifier string) ([]byte, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("client_id", f.config.ClientID)
	data.Set("client_secret", f.config.ClientSecret)
	data.Set("redirect_uri", f.config.RedirectURI)
	data.Set("code", code)
	if verifier != "" {
		data.Set("code_verifier", verifier)
	}

	var body []byte
	err := f.breaker.Execute(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.config.TokenURL, strings.NewReader(data.Encode()))
		if err != nil {
			return errors.InternalError("failed to create token request", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return commonhttp.RequestError("token request", err)
		}
		payload, err := commonhttp.ReadBody(resp)
		if err != nil {
			return errors.ConnectionError("token request failed", err)
		}

		if resp.StatusCode != http.StatusOK {
			var errResp tokenErrorResponse
			_ = json.Unmarshal(payload, &errResp)
			f.logger.WithContext(ctx).Warn("Token exchange rejected",
				logging.Int("status", resp.StatusCode),
				logging.String("error", errResp.Error+errResp.Status),
				logging.String("error_description", errResp.ErrorDescription+errResp.Message),
			)
			return errors.ProviderError("Failed to get access token")
		}
		if !json.Valid(payload) {
			f.logger.WithContext(ctx).Warn("Token endpoint returned invalid JSON", logging.Int("status", resp.StatusCode))
			return errors.ProviderError("Failed to get access token")
		}

		body = payload
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
