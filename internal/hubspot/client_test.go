package hubspot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubspot-connector/internal/common/errors"
	"hubspot-connector/internal/common/logging"
	"hubspot-connector/internal/models"
)

const testCredentials = `{"access_token":"at-123","refresh_token":"rt","expires_in":1800}`

type fakeHubSpot struct {
	*httptest.Server
	contactsStatus  int
	contactsBody    string
	companiesStatus int
	companiesBody   string
	authHeaders     atomic.Value
	requests        atomic.Int32
}

func newFakeHubSpot(t *testing.T, f *fakeHubSpot) *fakeHubSpot {
	mux := http.NewServeMux()
	mux.HandleFunc("/crm/v3/objects/contacts", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		f.authHeaders.Store(r.Header.Get("Authorization"))
		w.WriteHeader(f.contactsStatus)
		_, _ = w.Write([]byte(f.contactsBody))
	})
	mux.HandleFunc("/crm/v3/objects/companies", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		w.WriteHeader(f.companiesStatus)
		_, _ = w.Write([]byte(f.companiesBody))
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{APIBaseURL: baseURL, Timeout: 5 * time.Second}, logging.NewNopLogger())
}

func strPtr(s string) *string { return &s }

func TestClient_Items(t *testing.T) {
	fake := newFakeHubSpot(t, &fakeHubSpot{
		contactsStatus: http.StatusOK,
		contactsBody: `{"results":[
			{"id":"1","properties":{"name":"Ann","website":"ann.io"}},
			{"id":"2","properties":{"firstname":"Bob","lastname":"Stone"}}
		]}`,
		companiesStatus: http.StatusOK,
		companiesBody: `{"results":[
			{"id":"9","name":"Acme"},
			{"id":"10","properties":{"name":"Globex"}}
		]}`,
	})

	items, err := newTestClient(fake.URL).Items(context.Background(), testCredentials)
	require.NoError(t, err)

	assert.Equal(t, []models.Item{
		{ID: "1", Name: "Ann", Type: models.ItemTypeContact, URL: strPtr("ann.io")},
		{ID: "2", Name: "Bob Stone", Type: models.ItemTypeContact},
		{ID: "9", Name: "Acme", Type: models.ItemTypeCompany},
		{ID: "10", Name: "Globex", Type: models.ItemTypeCompany},
	}, items)

	assert.Equal(t, "Bearer at-123", fake.authHeaders.Load())
	assert.Equal(t, int32(2), fake.requests.Load())
}

func TestClient_Items_CompaniesNotFound(t *testing.T) {
	fake := newFakeHubSpot(t, &fakeHubSpot{
		contactsStatus:  http.StatusOK,
		contactsBody:    `{"results":[{"id":"1","properties":{"name":"Ann"}},{"id":"2","properties":{"name":"Bea"}}]}`,
		companiesStatus: http.StatusNotFound,
		companiesBody:   `{"status":"error","message":"not found"}`,
	})

	items, err := newTestClient(fake.URL).Items(context.Background(), testCredentials)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, models.ItemTypeContact, item.Type)
	}
}

func TestClient_Items_Unauthorized(t *testing.T) {
	fake := newFakeHubSpot(t, &fakeHubSpot{
		contactsStatus:  http.StatusUnauthorized,
		contactsBody:    `{"status":"error","category":"EXPIRED_AUTHENTICATION"}`,
		companiesStatus: http.StatusUnauthorized,
		companiesBody:   `{"status":"error","category":"EXPIRED_AUTHENTICATION"}`,
	})

	items, err := newTestClient(fake.URL).Items(context.Background(), testCredentials)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestClient_Items_MalformedSuccessBody(t *testing.T) {
	fake := newFakeHubSpot(t, &fakeHubSpot{
		contactsStatus:  http.StatusOK,
		contactsBody:    `not json`,
		companiesStatus: http.StatusOK,
		companiesBody:   `{"results":[{"id":9,"name":"Acme"}]}`,
	})

	items, err := newTestClient(fake.URL).Items(context.Background(), testCredentials)
	require.NoError(t, err)
	assert.Equal(t, []models.Item{{ID: "9", Name: "Acme", Type: models.ItemTypeCompany}}, items)
}

func TestClient_Items_Timestamps(t *testing.T) {
	fake := newFakeHubSpot(t, &fakeHubSpot{
		contactsStatus: http.StatusOK,
		contactsBody: `{"results":[{"id":"1","properties":{"name":"Ann"},
			"createdAt":"2026-01-02T03:04:05.000Z","updatedAt":"2026-02-03T04:05:06.000Z"}]}`,
		companiesStatus: http.StatusOK,
		companiesBody:   `{"results":[]}`,
	})

	items, err := newTestClient(fake.URL).Items(context.Background(), testCredentials)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].CreationTime)
	require.NotNil(t, items[0].LastModifiedTime)
	assert.True(t, items[0].CreationTime.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.True(t, items[0].LastModifiedTime.Equal(time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)))
}

func TestClient_Items_BadRowKeepsOthers(t *testing.T) {
	fake := newFakeHubSpot(t, &fakeHubSpot{
		contactsStatus: http.StatusOK,
		contactsBody: `{"results":[
			{"id":"1","properties":{"name":"Ann"},"createdAt":"2026-01-02T03:04:05Z"},
			{"id":"2","properties":{"name":"Bea"},"createdAt":"yesterday","updatedAt":17}
		]}`,
		companiesStatus: http.StatusNotFound,
		companiesBody:   `{"status":"error"}`,
	})

	items, err := newTestClient(fake.URL).Items(context.Background(), testCredentials)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Ann", items[0].Name)
	require.NotNil(t, items[0].CreationTime)
	assert.True(t, items[0].CreationTime.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))

	assert.Equal(t, models.Item{ID: "2", Name: "Bea", Type: models.ItemTypeContact}, items[1])
}

func TestDecodeObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want crmObject
		ok   bool
	}{
		{"numeric id", `{"id":42,"name":"Acme"}`, crmObject{ID: "42", Name: "Acme"}, true},
		{"non-string name", `{"id":"9","name":{"first":"A"},"properties":{"name":"Acme"}}`,
			crmObject{ID: "9", Properties: map[string]interface{}{"name": "Acme"}}, true},
		{"properties not an object", `{"id":"9","properties":[1,2]}`, crmObject{ID: "9"}, true},
		{"null row", `null`, crmObject{}, false},
		{"array row", `[1]`, crmObject{}, false},
		{"string row", `"9"`, crmObject{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeObject([]byte(tt.raw))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Items_SkipsNonObjectRows(t *testing.T) {
	fake := newFakeHubSpot(t, &fakeHubSpot{
		contactsStatus:  http.StatusOK,
		contactsBody:    `{"results":[null,"x",{"id":"1","properties":{"name":"Ann"}}]}`,
		companiesStatus: http.StatusOK,
		companiesBody:   `{"results":[]}`,
	})

	items, err := newTestClient(fake.URL).Items(context.Background(), testCredentials)
	require.NoError(t, err)
	assert.Equal(t, []models.Item{{ID: "1", Name: "Ann", Type: models.ItemTypeContact}}, items)
}

func TestClient_Items_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(Config{APIBaseURL: server.URL, Timeout: 50 * time.Millisecond}, logging.NewNopLogger())
	_, err := client.Items(context.Background(), testCredentials)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeTimeout))
	assert.Equal(t, http.StatusServiceUnavailable, errors.HTTPStatus(err))
}

func TestClient_Items_InvalidCredentials(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")

	tests := []struct {
		name  string
		creds string
	}{
		{"not json", "nope"},
		{"no access token", `{"refresh_token":"rt"}`},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Items(context.Background(), tt.creds)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
			assert.Equal(t, http.StatusBadRequest, errors.HTTPStatus(err))
		})
	}
}

func TestClient_Items_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	_, err := newTestClient(server.URL).Items(context.Background(), testCredentials)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConnection))
	assert.Equal(t, http.StatusServiceUnavailable, errors.HTTPStatus(err))
}

func TestCRMObject_ToItem(t *testing.T) {
	tests := []struct {
		name     string
		object   crmObject
		itemType models.ItemType
		want     models.Item
	}{
		{
			name:     "contact with name and website",
			object:   crmObject{ID: "1", Properties: map[string]interface{}{"name": "Ann", "website": "ann.io"}},
			itemType: models.ItemTypeContact,
			want:     models.Item{ID: "1", Name: "Ann", Type: models.ItemTypeContact, URL: strPtr("ann.io")},
		},
		{
			name:     "contact falls back to first and last name",
			object:   crmObject{ID: "2", Properties: map[string]interface{}{"firstname": "Bob", "lastname": "Stone"}},
			itemType: models.ItemTypeContact,
			want:     models.Item{ID: "2", Name: "Bob Stone", Type: models.ItemTypeContact},
		},
		{
			name:     "contact with only a first name",
			object:   crmObject{ID: "3", Properties: map[string]interface{}{"firstname": "Cy", "lastname": nil}},
			itemType: models.ItemTypeContact,
			want:     models.Item{ID: "3", Name: "Cy", Type: models.ItemTypeContact},
		},
		{
			name:     "company ignores website",
			object:   crmObject{ID: "9", Name: "Acme", Properties: map[string]interface{}{"website": "acme.com"}},
			itemType: models.ItemTypeCompany,
			want:     models.Item{ID: "9", Name: "Acme", Type: models.ItemTypeCompany},
		},
		{
			name:     "company falls back to properties name",
			object:   crmObject{ID: "10", Properties: map[string]interface{}{"name": "Globex"}},
			itemType: models.ItemTypeCompany,
			want:     models.Item{ID: "10", Name: "Globex", Type: models.ItemTypeCompany},
		},
		{
			name:     "numeric property",
			object:   crmObject{ID: "11", Properties: map[string]interface{}{"name": float64(42)}},
			itemType: models.ItemTypeContact,
			want:     models.Item{ID: "11", Name: "42", Type: models.ItemTypeContact},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.object.toItem(tt.itemType))
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{APIBaseURL: "https://api.example.com/"}, nil)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)

	client = NewClient(Config{}, nil)
	assert.Equal(t, DefaultAPIBaseURL, client.baseURL)
}
