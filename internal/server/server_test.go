package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"

	"github.com/Iron-Ham/council/internal/errors"
	"github.com/Iron-Ham/council/internal/event"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/orchestrator"
	"github.com/Iron-Ham/council/internal/testutil"
	"github.com/Iron-Ham/council/internal/transcript"
)

func newTestServer(t *testing.T) (*httptest.Server, *orchestrator.Engine) {
	t.Helper()
	bus := event.NewBus()
	settings := orchestrator.DefaultSettings()
	settings.FollowupTurns = 2
	engine := orchestrator.New(testutil.FixtureRoles(t), testutil.NewScriptedProvider(),
		orchestrator.WithBus(bus), orchestrator.WithSettings(settings))
	ts := httptest.NewServer(New(engine, Config{Bus: bus}).Handler())
	t.Cleanup(ts.Close)
	return ts, engine
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode %s %s response: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func initConversation(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	var res initResponse
	if code := doJSON(t, http.MethodPost, ts.URL+"/api/init", nil, &res); code != http.StatusOK {
		t.Fatalf("POST /api/init status = %d, want 200", code)
	}
	if res.ConversationID == "" || len(res.Events) != 1 {
		t.Fatalf("POST /api/init = %+v, want an id and a greeting", res)
	}
	return res.ConversationID
}

func TestServer_Health(t *testing.T) {
	ts, _ := newTestServer(t)
	var body map[string]string
	if code := doJSON(t, http.MethodGet, ts.URL+"/api/health", nil, &body); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v, want status ok", body)
	}
}

func TestServer_RoundTrip(t *testing.T) {
	ts, _ := newTestServer(t)
	id := initConversation(t, ts)

	var added membersResponse
	code := doJSON(t, http.MethodPost, ts.URL+"/api/add-agent",
		map[string]string{"conversation_id": id, "role_id": "alpha"}, &added)
	if code != http.StatusOK {
		t.Fatalf("POST /api/add-agent status = %d, want 200", code)
	}
	if !slices.Equal(added.Members, []string{"alpha"}) {
		t.Errorf("members = %v, want [alpha]", added.Members)
	}

	var turn orchestrator.TurnResult
	code = doJSON(t, http.MethodPost, ts.URL+"/api/message",
		messageRequest{ConversationID: id, Text: "alpha, your opinion on pricing?"}, &turn)
	if code != http.StatusOK {
		t.Fatalf("POST /api/message status = %d, want 200", code)
	}
	if !slices.Equal(turn.Roles, []string{"alpha"}) {
		t.Errorf("roles = %v, want [alpha]", turn.Roles)
	}
	if turn.Final() != orchestrator.StateContinuationPrompt {
		t.Errorf("final state = %q, want %q", turn.Final(), orchestrator.StateContinuationPrompt)
	}

	var feed feedResponse
	if code := doJSON(t, http.MethodGet, ts.URL+"/api/feed?since=0", nil, &feed); code != http.StatusOK {
		t.Fatalf("GET /api/feed status = %d, want 200", code)
	}
	// greeting + add note + the turn's events
	want := 2 + len(turn.Events)
	if len(feed.Events) != want {
		t.Fatalf("feed has %d events, want %d", len(feed.Events), want)
	}
	if feed.LastID != feed.Events[len(feed.Events)-1].ID {
		t.Errorf("last_id = %d, want %d", feed.LastID, feed.Events[len(feed.Events)-1].ID)
	}
	var lanes []string
	for _, ev := range feed.Events {
		if !slices.Contains(lanes, ev.Lane) {
			lanes = append(lanes, ev.Lane)
		}
	}
	if !slices.Contains(lanes, transcript.ConsultLane("alpha")) {
		t.Errorf("feed lanes = %v, want the alpha consult lane", lanes)
	}

	var tail feedResponse
	doJSON(t, http.MethodGet, ts.URL+"/api/feed?since="+strconv.FormatInt(feed.LastID, 10), nil, &tail)
	if len(tail.Events) != 0 || tail.LastID != feed.LastID {
		t.Errorf("feed after last id = %+v, want empty with the same last_id", tail)
	}

	var convEvents feedResponse
	code = doJSON(t, http.MethodGet, ts.URL+"/api/conversations/"+id+"/events?since=1", nil, &convEvents)
	if code != http.StatusOK {
		t.Fatalf("GET events status = %d, want 200", code)
	}
	if len(convEvents.Events) != want-1 {
		t.Errorf("conversation events since 1 = %d, want %d", len(convEvents.Events), want-1)
	}
}

func TestServer_Errors(t *testing.T) {
	ts, _ := newTestServer(t)
	id := initConversation(t, ts)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"empty message", http.MethodPost, "/api/message", messageRequest{ConversationID: id, Text: "  "}, http.StatusBadRequest},
		{"missing conversation id", http.MethodPost, "/api/message", messageRequest{Text: "hi"}, http.StatusBadRequest},
		{"unknown conversation", http.MethodPost, "/api/message", messageRequest{ConversationID: "nope", Text: "hi"}, http.StatusNotFound},
		{"unknown role", http.MethodPost, "/api/add-agent", map[string]string{"conversation_id": id, "role_id": "zeta"}, http.StatusBadRequest},
		{"no roles", http.MethodPost, "/api/add-agents", map[string]any{"conversation_id": id, "role_ids": []string{}}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/message", map[string]string{"conversation": id}, http.StatusBadRequest},
		{"bad since", http.MethodGet, "/api/feed?since=abc", nil, http.StatusBadRequest},
		{"events of unknown conversation", http.MethodGet, "/api/conversations/nope/events", nil, http.StatusNotFound},
		{"members of unknown conversation", http.MethodGet, "/api/conversations/nope/members", nil, http.StatusNotFound},
		{"bad limit", http.MethodGet, "/api/recommend?limit=-1", nil, http.StatusBadRequest},
		{"bad select limit", http.MethodPut, "/api/orchestrator", map[string]int{"select_limit": 0}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			code := doJSON(t, tt.method, ts.URL+tt.path, tt.body, &body)
			if code != tt.want {
				t.Errorf("status = %d, want %d (body %v)", code, tt.want, body)
			}
			if body["error"] == "" {
				t.Errorf("body = %v, want an error message", body)
			}
		})
	}
}

func TestWriteError_Bodies(t *testing.T) {
	s := &Server{logger: logging.NopLogger()}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "validation message is shown",
			err:        errors.NewValidationError("text is required").WithField("text"),
			wantStatus: http.StatusBadRequest,
			wantBody:   "validation error [field=text]: text is required",
		},
		{
			name:       "internal detail is hidden",
			err:        fmt.Errorf("open /var/lib/council/journal: permission denied"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "internal error",
		},
		{
			name:       "user facing server error is shown",
			err:        errors.NewTimeoutError("turn", 30*time.Second),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "timeout error: turn (timeout: 30s)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.writeError(rec, tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if body["error"] != tt.wantBody {
				t.Errorf("error = %q, want %q", body["error"], tt.wantBody)
			}
		})
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/message")
	if err != nil {
		t.Fatalf("GET /api/message failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestServer_AddAgents(t *testing.T) {
	ts, _ := newTestServer(t)
	id := initConversation(t, ts)

	var res membersResponse
	code := doJSON(t, http.MethodPost, ts.URL+"/api/add-agents",
		map[string]any{"conversation_id": id, "role_ids": []string{"beta", "gamma"}}, &res)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if !slices.Equal(res.Members, []string{"beta", "gamma"}) {
		t.Errorf("members = %v, want [beta gamma]", res.Members)
	}
	if len(res.Events) != 1 || !strings.Contains(res.Events[0].Text, "Alpha") {
		t.Errorf("events = %+v, want one note mentioning the missing Alpha prerequisite", res.Events)
	}

	var members membersResponse
	doJSON(t, http.MethodGet, ts.URL+"/api/conversations/"+id+"/members", nil, &members)
	if !slices.Equal(members.Members, []string{"beta", "gamma"}) {
		t.Errorf("GET members = %v, want [beta gamma]", members.Members)
	}
}

func TestServer_RolesAndRecommend(t *testing.T) {
	ts, _ := newTestServer(t)

	var all rolesResponse
	doJSON(t, http.MethodGet, ts.URL+"/api/roles", nil, &all)
	if len(all.Roles) != 4 {
		t.Errorf("roles = %d, want 4", len(all.Roles))
	}
	if !slices.Equal(all.Recommended, []string{"alpha", "beta"}) {
		t.Errorf("recommended = %v, want [alpha beta]", all.Recommended)
	}

	var rec rolesResponse
	doJSON(t, http.MethodGet, ts.URL+"/api/recommend?limit=1", nil, &rec)
	if len(rec.Roles) != 1 || rec.Roles[0].ID != "alpha" {
		t.Errorf("recommend limit=1 = %+v, want [alpha]", rec.Roles)
	}
}

func TestServer_Settings(t *testing.T) {
	ts, engine := newTestServer(t)

	var got orchestrator.Settings
	doJSON(t, http.MethodGet, ts.URL+"/api/orchestrator", nil, &got)
	if got.FollowupTurns != 2 {
		t.Errorf("followup_turns = %d, want 2", got.FollowupTurns)
	}

	var stored orchestrator.Settings
	code := doJSON(t, http.MethodPut, ts.URL+"/api/orchestrator", map[string]int{"followup_turns": 99}, &stored)
	if code != http.StatusOK {
		t.Fatalf("PUT status = %d, want 200", code)
	}
	if stored.FollowupTurns != orchestrator.MaxFollowupTurns {
		t.Errorf("followup_turns = %d, want clamped to %d", stored.FollowupTurns, orchestrator.MaxFollowupTurns)
	}
	if stored.SelectLimit != got.SelectLimit {
		t.Errorf("select_limit = %d, want unchanged %d", stored.SelectLimit, got.SelectLimit)
	}
	if engine.Settings() != stored {
		t.Errorf("engine settings = %+v, want %+v", engine.Settings(), stored)
	}
}

func TestServer_Stream(t *testing.T) {
	ts, _ := newTestServer(t)
	id := initConversation(t, ts)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/stream?conversation_id=" + id
	conn, err := websocket.Dial(wsURL, "", ts.URL)
	if err != nil {
		t.Fatalf("websocket.Dial() error = %v", err)
	}
	defer func() { _ = conn.Close() }()
	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline() error = %v", err)
	}

	var greeting transcript.Event
	if err := websocket.JSON.Receive(conn, &greeting); err != nil {
		t.Fatalf("receive backlog: %v", err)
	}
	if greeting.ConversationID != id || greeting.Author != transcript.AuthorOrchestrator {
		t.Errorf("backlog event = %+v, want the greeting", greeting)
	}

	code := doJSON(t, http.MethodPost, ts.URL+"/api/add-agent",
		map[string]string{"conversation_id": id, "role_id": "gamma"}, nil)
	if code != http.StatusOK {
		t.Fatalf("POST /api/add-agent status = %d, want 200", code)
	}

	var live transcript.Event
	if err := websocket.JSON.Receive(conn, &live); err != nil {
		t.Fatalf("receive live event: %v", err)
	}
	if live.ID <= greeting.ID || !strings.Contains(live.Text, "Gamma") {
		t.Errorf("live event = %+v, want the add note after the greeting", live)
	}
}
