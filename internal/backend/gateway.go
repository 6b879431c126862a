// Package backend is the typed request/response wrapper around the council
// server's HTTP API. It owns all network I/O; nothing above it touches the
// wire. Every call is stateless and carries its own timeout, so a hung
// backend surfaces as a TransportError instead of a stuck client.
package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionSummary is one row of the session list.
type SessionSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// HistoryTurn is one recorded turn of a session's transcript. Order within
// SessionDetail.History is the order the turns occurred; the backend is the
// sole ordering authority.
type HistoryTurn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// SessionDetail is the full session record as returned by the backend.
type SessionDetail struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	History []HistoryTurn `json:"history"`
}

// TurnResult is the outcome of one /chat call. Acknowledged means the input
// was recorded and no agent spoke; otherwise exactly one agent produced the
// attached reply.
type TurnResult struct {
	Acknowledged bool
	Speaker      string
	SpeakerID    string
	Text         string
}

// PhilosopherConfig is the backend-side configuration of one agent. It is a
// boundary contract only; the orchestration core never consumes it.
type PhilosopherConfig struct {
	Name   string `json:"name"`
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// Gateway talks to a single council server endpoint.
type Gateway struct {
	baseURL string
	client  *http.Client
}

// New builds a Gateway for the given base URL. The timeout applies to each
// individual request.
func New(baseURL string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Gateway{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// ListSessions fetches the session roster. An empty list is a valid result,
// not an error.
func (g *Gateway) ListSessions() ([]SessionSummary, error) {
	var sessions []SessionSummary
	if err := g.call(http.MethodGet, "/sessions", nil, &sessions, "list sessions"); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateSession asks the backend for a fresh session. The backend assigns
// both id and initial title.
func (g *Gateway) CreateSession() (SessionSummary, error) {
	var created SessionSummary
	if err := g.call(http.MethodPost, "/sessions", nil, &created, "create session"); err != nil {
		return SessionSummary{}, err
	}
	return created, nil
}

// FetchSession loads one session with its full history.
func (g *Gateway) FetchSession(id string) (SessionDetail, error) {
	var detail SessionDetail
	err := g.call(http.MethodGet, "/sessions/"+strings.TrimSpace(id), nil, &detail, "fetch session")
	if err != nil {
		var status *statusError
		if asStatus(err, &status) && status.code == http.StatusNotFound {
			return SessionDetail{}, &NotFoundError{SessionID: strings.TrimSpace(id)}
		}
		return SessionDetail{}, err
	}
	return detail, nil
}

// SubmitTurn advances the conversation by one step. A non-empty input is a
// Chairman turn; an empty input asks the backend to let the next agent
// speak. The response is either {"status":"received"} or {speaker, text}.
func (g *Gateway) SubmitTurn(sessionID, input string) (TurnResult, error) {
	body := map[string]any{
		"input":      nil,
		"session_id": sessionID,
	}
	if strings.TrimSpace(input) != "" {
		body["input"] = input
	}
	var payload struct {
		Status    string `json:"status"`
		Speaker   string `json:"speaker"`
		SpeakerID string `json:"speaker_id"`
		Text      string `json:"text"`
	}
	if err := g.call(http.MethodPost, "/chat", body, &payload, "submit turn"); err != nil {
		return TurnResult{}, err
	}
	if payload.Status == "received" {
		return TurnResult{Acknowledged: true}, nil
	}
	return TurnResult{
		Speaker:   strings.TrimSpace(payload.Speaker),
		SpeakerID: strings.TrimSpace(payload.SpeakerID),
		Text:      strings.TrimSpace(payload.Text),
	}, nil
}

// ListPhilosophers returns the backend's agent configuration map, keyed by
// agent id.
func (g *Gateway) ListPhilosophers() (map[string]PhilosopherConfig, error) {
	var configs map[string]PhilosopherConfig
	if err := g.call(http.MethodGet, "/philosophers", nil, &configs, "list philosophers"); err != nil {
		return nil, err
	}
	return configs, nil
}

// UpdateModel changes the inference model backing one agent.
func (g *Gateway) UpdateModel(id, model string) error {
	body := map[string]string{"model": strings.TrimSpace(model)}
	return g.call(http.MethodPut, "/philosophers/"+strings.TrimSpace(id)+"/model", body, nil, "update model")
}

// statusError carries a non-2xx response through the TransportError chain
// so FetchSession can distinguish a 404.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.code, e.body)
}

func asStatus(err error, target **statusError) bool {
	for err != nil {
		if status, ok := err.(*statusError); ok {
			*target = status
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

func (g *Gateway) call(method, path string, body any, out any, op string) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: err}
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, g.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{Op: op, Err: &statusError{code: resp.StatusCode, body: compactBody(payload)}}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func compactBody(payload []byte) string {
	compact := strings.Join(strings.Fields(string(payload)), " ")
	if len(compact) > 240 {
		return compact[:237] + "..."
	}
	return compact
}
