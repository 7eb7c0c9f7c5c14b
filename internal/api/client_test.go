package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/jules/internal/models"
)

// newTestClient points a client at an httptest server.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := NewConfig("test-key")
	cfg.SetBaseURL(srv.URL)
	return NewClientWithHTTP(cfg, srv.Client()), srv
}

func TestMissingAPIKey_FailsBeforeNetwork(t *testing.T) {
	hit := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	client.cfg.SetAPIKey("")

	_, err := client.GetSession(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, hit, "no network call should be attempted without a key")
}

func TestGetSession_SendsAuthHeaderAndDecodes(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/s1", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"id":"s1","name":"sessions/s1","prompt":"fix bug","state":"PLANNING"}`))
	}))

	sess, err := client.GetSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", sess.ID)
	assert.Equal(t, models.SessionStatePlanning, sess.State)
}

func TestListSessions_QueryParams(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "tok", r.URL.Query().Get("pageToken"))
		w.Write([]byte(`{"sessions":[{"id":"s1","name":"sessions/s1","state":"QUEUED"}]}`))
	}))

	resp, err := client.ListSessions(context.Background(), 50, "tok")
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 1)
}

func TestSendMessage_ColonEndpointAndBody(t *testing.T) {
	var gotPath, gotBody string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.WriteHeader(http.StatusOK)
	}))

	err := client.SendMessage(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "/sessions/s1:sendMessage", gotPath)
	assert.JSONEq(t, `{"prompt":"hello"}`, gotBody)
}

func TestApprovePlan_PostsEmptyObject(t *testing.T) {
	var gotBody string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/s1:approvePlan", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
	}))

	require.NoError(t, client.ApprovePlan(context.Background(), "s1"))
	assert.JSONEq(t, `{}`, gotBody)
}

func TestServerError_CapturesStatusAndBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))

	_, err := client.GetSession(context.Background(), "s1")
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusForbidden, serverErr.Status)
	assert.Contains(t, serverErr.Body, "API key not valid")
}

func TestDecodingError_OnMalformedSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": truncated`))
	}))

	_, err := client.GetSession(context.Background(), "s1")
	var decErr *DecodingError
	assert.ErrorAs(t, err, &decErr)
}

func TestTransportError_OnConnectionFailure(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := client.GetSession(context.Background(), "s1")
	var transportErr *TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestDeleteSession_NoBodyRequired(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/sessions/s1", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	assert.NoError(t, client.DeleteSession(context.Background(), "s1"))
}

func TestListSources_FilterParam(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sources", r.URL.Path)
		assert.Equal(t, "owner=acme", r.URL.Query().Get("filter"))
		w.Write([]byte(`{"sources":[{"id":"src1","name":"sources/github/acme/widgets",
			"githubRepo":{"owner":"acme","repo":"widgets","defaultBranch":{"displayName":"main"}}}]}`))
	}))

	resp, err := client.ListSources(context.Background(), 100, "", "owner=acme")
	require.NoError(t, err)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "acme/widgets", resp.Sources[0].DisplayName())
}

func TestConfig_SetAPIKeyTakesEffect(t *testing.T) {
	var gotKey string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		w.WriteHeader(http.StatusOK)
	}))

	client.cfg.SetAPIKey("rotated")
	require.NoError(t, client.DeleteSession(context.Background(), "s1"))
	assert.Equal(t, "rotated", gotKey)
}
