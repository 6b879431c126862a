package backend

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(handler http.Handler) (*Gateway, *httptest.Server) {
	server := httptest.NewServer(handler)
	return New(server.URL, 2*time.Second), server
}

func TestListSessions(t *testing.T) {
	gw, server := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/sessions", r.URL.Path)
		_, _ = io.WriteString(w, `[{"id":"s1","title":"First"},{"id":"s2","title":"Second"}]`)
	}))
	defer server.Close()

	sessions, err := gw.ListSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.Equal(t, "Second", sessions[1].Title)
}

func TestListSessionsEmptyIsNotAnError(t *testing.T) {
	gw, server := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	defer server.Close()

	sessions, err := gw.ListSessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestListSessionsTransportError(t *testing.T) {
	gw, server := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	_, err := gw.ListSessions()
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestCreateSession(t *testing.T) {
	gw, server := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sessions", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"ab12cd34","title":"Session ab12cd34","history":[]}`)
	}))
	defer server.Close()

	created, err := gw.CreateSession()
	require.NoError(t, err)
	assert.Equal(t, "ab12cd34", created.ID)
	assert.Equal(t, "Session ab12cd34", created.Title)
}

func TestFetchSession(t *testing.T) {
	gw, server := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/s1", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"s1","title":"T","history":[{"speaker":"Chairman","text":"hi"},{"speaker":"Socrates","text":"why?"}]}`)
	}))
	defer server.Close()

	detail, err := gw.FetchSession("s1")
	require.NoError(t, err)
	require.Len(t, detail.History, 2)
	assert.Equal(t, "Chairman", detail.History[0].Speaker)
	assert.Equal(t, "why?", detail.History[1].Text)
}

func TestFetchSessionNotFound(t *testing.T) {
	gw, server := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Session not found"}`)
	}))
	defer server.Close()

	_, err := gw.FetchSession("missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsTransport(err))
}

func TestSubmitChairmanTurn(t *testing.T) {
	gw, server := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "What is truth?", body["input"])
		assert.Equal(t, "s1", body["session_id"])
		_, _ = io.WriteString(w, `{"status":"received"}`)
	}))
	defer server.Close()

	result, err := gw.SubmitTurn("s1", "What is truth?")
	require.NoError(t, err)
	assert.True(t, result.Acknowledged)
	assert.Empty(t, result.Speaker)
}

func TestSubmitAgentTurnSendsNullInput(t *testing.T) {
	gw, server := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		value, present := body["input"]
		assert.True(t, present, "input key must be on the wire")
		assert.Nil(t, value, "agent turns submit a null input")
		_, _ = io.WriteString(w, `{"speaker":"Socrates","speaker_id":"socrates","text":"Define your terms."}`)
	}))
	defer server.Close()

	result, err := gw.SubmitTurn("s1", "")
	require.NoError(t, err)
	assert.False(t, result.Acknowledged)
	assert.Equal(t, "Socrates", result.Speaker)
	assert.Equal(t, "socrates", result.SpeakerID)
	assert.Equal(t, "Define your terms.", result.Text)
}

func TestSubmitTurnServerFailure(t *testing.T) {
	gw, server := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"Ollama Error"}`)
	}))
	defer server.Close()

	_, err := gw.SubmitTurn("s1", "")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Contains(t, err.Error(), "http 500")
}

func TestUpdateModel(t *testing.T) {
	gw, server := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/philosophers/socrates/model", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "mistral", body["model"])
		_, _ = io.WriteString(w, `{"success":true,"model":"mistral"}`)
	}))
	defer server.Close()

	require.NoError(t, gw.UpdateModel("socrates", "mistral"))
}

func TestListPhilosophers(t *testing.T) {
	gw, server := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/philosophers", r.URL.Path)
		_, _ = io.WriteString(w, `{"socrates":{"name":"Socrates","model":"mistral","prompt":"..."}}`)
	}))
	defer server.Close()

	configs, err := gw.ListPhilosophers()
	require.NoError(t, err)
	require.Contains(t, configs, "socrates")
	assert.Equal(t, "mistral", configs["socrates"].Model)
}

func TestEveryRequestCarriesARequestID(t *testing.T) {
	gw, server := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		_, err := uuid.Parse(id)
		assert.NoError(t, err, "X-Request-ID must be a uuid, got %q", id)
		_, _ = io.WriteString(w, `[]`)
	}))
	defer server.Close()

	_, err := gw.ListSessions()
	require.NoError(t, err)
}
