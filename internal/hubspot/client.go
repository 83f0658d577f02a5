// Package hubspot reads CRM objects from the HubSpot API and maps them to
// models.Item.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"hubspot-connector/internal/circuitbreaker"
	"hubspot-connector/internal/common/errors"
	commonhttp "hubspot-connector/internal/common/http"
	"hubspot-connector/internal/common/logging"
	"hubspot-connector/internal/models"
	hsoauth "hubspot-connector/internal/oauth2"
)

// DefaultAPIBaseURL is HubSpot's production API host
const DefaultAPIBaseURL = "https://api.hubapi.com"

// Config holds the CRM API settings
type Config struct {
	APIBaseURL string
	Timeout    time.Duration
}

// Client fetches contacts and companies on behalf of a connected account
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuitbreaker.GoBreakerAdapter
	logger     logging.Logger
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient sets the client whose transport carries the bearer token
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a CRM client
func NewClient(config Config, logger logging.Logger, opts ...Option) *Client {
	if config.APIBaseURL == "" {
		config.APIBaseURL = DefaultAPIBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	logger = logger.WithFields(logging.String("component", "hubspot"))

	c := &Client{
		baseURL: strings.TrimRight(config.APIBaseURL, "/"),
		breaker: circuitbreaker.NewGoBreaker("hubspot-crm", circuitbreaker.CRMAPIConfig, logger),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = commonhttp.NewHTTPClientWithTimeout(config.Timeout)
	}
	return c
}

// BreakerStats reports the CRM API circuit breaker
func (c *Client) BreakerStats() circuitbreaker.Stats {
	return c.breaker.Stats()
}

type objectType struct {
	path     string
	itemType models.ItemType
}

var (
	contacts  = objectType{path: "contacts", itemType: models.ItemTypeContact}
	companies = objectType{path: "companies", itemType: models.ItemTypeCompany}
)

// Items returns the account's contacts followed by its companies. An endpoint
// answering with a non-2xx status contributes no items; only failures to
// reach HubSpot are returned as errors.
func (c *Client) Items(ctx context.Context, rawCredentials string) ([]models.Item, error) {
	creds, err := hsoauth.ParseCredentials(rawCredentials)
	if err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(creds.Token(time.Time{})))
	client.Timeout = c.httpClient.Timeout

	var contactItems, companyItems []models.Item
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contactItems, err = c.list(gctx, client, contacts)
		return err
	})
	g.Go(func() error {
		var err error
		companyItems, err = c.list(gctx, client, companies)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(contactItems)+len(companyItems))
	items = append(items, contactItems...)
	items = append(items, companyItems...)
	return items, nil
}

func (c *Client) list(ctx context.Context, client *http.Client, object objectType) ([]models.Item, error) {
	endpoint := fmt.Sprintf("%s/crm/v3/objects/%s", c.baseURL, object.path)
	logger := c.logger.WithContext(ctx).WithFields(logging.String("object", object.path))

	var items []models.Item
	err := c.breaker.Execute(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return errors.InternalError("failed to create request", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return commonhttp.RequestError(fmt.Sprintf("HubSpot %s request", object.path), err)
		}
		body, err := commonhttp.ReadBody(resp)
		if err != nil {
			return errors.ConnectionError(fmt.Sprintf("failed to read HubSpot %s response", object.path), err)
		}

		if !commonhttp.IsSuccess(resp.StatusCode) {
			logger.Warn("HubSpot list request failed",
				logging.Int("status", resp.StatusCode),
				logging.String("body", truncate(body, 512)),
			)
			return nil
		}

		var page listResponse
		if err := json.Unmarshal(body, &page); err != nil {
			logger.Warn("HubSpot list response is not valid JSON", logging.Err(err))
			return nil
		}

		items = make([]models.Item, 0, len(page.Results))
		for i, raw := range page.Results {
			obj, ok := decodeObject(raw)
			if !ok {
				logger.Warn("Skipping HubSpot object that is not a JSON object", logging.Int("index", i))
				continue
			}
			items = append(items, obj.toItem(object.itemType))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Fetched HubSpot objects", logging.Int("count", len(items)))
	return items, nil
}

// listResponse keeps rows raw so one malformed object cannot fail the page
type listResponse struct {
	Results []json.RawMessage `json:"results"`
}

type crmObject struct {
	ID         objectID
	Name       string
	Properties map[string]interface{}
	CreatedAt  *time.Time
	UpdatedAt  *time.Time
}

// objectID accepts ids sent as JSON strings or numbers
type objectID string

func (id *objectID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = objectID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = objectID(n.String())
	return nil
}

// decodeObject maps one result row field by field. A field with an unexpected
// shape is left empty; only a row that is not a JSON object is rejected.
func decodeObject(raw json.RawMessage) (crmObject, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return crmObject{}, false
	}

	var obj crmObject
	if data, ok := fields["id"]; ok {
		_ = obj.ID.UnmarshalJSON(data)
	}
	if data, ok := fields["name"]; ok {
		_ = json.Unmarshal(data, &obj.Name)
	}
	if data, ok := fields["properties"]; ok {
		_ = json.Unmarshal(data, &obj.Properties)
	}
	obj.CreatedAt = parseTimestamp(fields["createdAt"])
	obj.UpdatedAt = parseTimestamp(fields["updatedAt"])
	return obj, true
}

// parseTimestamp reads an RFC 3339 string, returning nil for anything else
func parseTimestamp(data json.RawMessage) *time.Time {
	var s string
	if len(data) == 0 || json.Unmarshal(data, &s) != nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}

func (o crmObject) property(name string) string {
	switch v := o.Properties[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func (o crmObject) toItem(itemType models.ItemType) models.Item {
	item := models.Item{
		ID:               string(o.ID),
		Type:             itemType,
		CreationTime:     o.CreatedAt,
		LastModifiedTime: o.UpdatedAt,
	}

	switch itemType {
	case models.ItemTypeContact:
		item.Name = o.property("name")
		if item.Name == "" {
			item.Name = strings.TrimSpace(o.property("firstname") + " " + o.property("lastname"))
		}
		item.URL = models.StringPtr(o.property("website"))
	case models.ItemTypeCompany:
		item.Name = o.Name
		if item.Name == "" {
			item.Name = o.property("name")
		}
	}
	return item
}

func truncate(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
