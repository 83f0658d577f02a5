package http

import (
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubspot-connector/internal/common/errors"
)

func TestDefaultClientConfig(t *testing.T) {
	config := DefaultClientConfig()

	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, 100, config.MaxIdleConns)
	assert.Equal(t, 10, config.MaxIdleConnsPerHost)
	assert.Equal(t, 90*time.Second, config.IdleConnTimeout)
	assert.Equal(t, DefaultUserAgent, config.UserAgent)
}

func TestWithTimeout(t *testing.T) {
	config := DefaultClientConfig()
	WithTimeout(5 * time.Second)(&config)

	assert.Equal(t, 5*time.Second, config.Timeout)
	assert.Equal(t, 100, config.MaxIdleConns)
}

func TestNewHTTPClient_UserAgent(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClientWithTimeout(time.Second)
	assert.Equal(t, time.Second, client.Timeout)

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	req.Header.Set("User-Agent", "caller/1.0")
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{DefaultUserAgent, "caller/1.0"}, seen)
}

func TestRequestError(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client := NewHTTPClientWithTimeout(50 * time.Millisecond)
	_, err := client.Get(server.URL)
	require.Error(t, err)

	timeout := RequestError("token request", err)
	assert.Equal(t, errors.ErrTypeTimeout, errors.GetType(timeout))
	assert.Equal(t, http.StatusServiceUnavailable, errors.HTTPStatus(timeout))
	assert.Equal(t, "timeout during token request", errors.Message(timeout))

	refused := RequestError("token request", stderrors.New("connection refused"))
	assert.Equal(t, errors.ErrTypeConnection, errors.GetType(refused))
	assert.Equal(t, "token request failed", errors.Message(refused))
}

func TestReadBody_Limit(t *testing.T) {
	resp := &http.Response{Body: io.NopCloser(strings.NewReader(strings.Repeat("a", MaxResponseBytes+1)))}
	_, err := ReadBody(resp)
	assert.Error(t, err)
}

func TestIsSuccess(t *testing.T) {
	assert.True(t, IsSuccess(200))
	assert.True(t, IsSuccess(204))
	assert.False(t, IsSuccess(199))
	assert.False(t, IsSuccess(301))
	assert.False(t, IsSuccess(404))
}
