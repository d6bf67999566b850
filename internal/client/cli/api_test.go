package cli

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a minimal registration server for command tests.
type fakeAPI struct {
	t     *testing.T
	srv   *httptest.Server
	token string

	mu              sync.Mutex
	conventionCalls int
	updates         []map[string]any
	printed         []string
	streamed        bool
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := tok.SignedString([]byte("test"))
	require.NoError(t, err)

	f := &fakeAPI{t: t, token: signed}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/token", f.login)
	mux.HandleFunc("GET /secure-conventions", f.authorized(f.conventions))
	mux.HandleFunc("GET /attendees/{short}", f.authorized(f.attendees))
	mux.HandleFunc("GET /attendees/{short}/{id}", f.authorized(f.attendee))
	mux.HandleFunc("PUT /attendees/{short}/{id}", f.authorized(f.updateAttendee))
	mux.HandleFunc("POST /attendees/{short}/{id}/print-badge", f.authorized(f.printBadge))
	mux.HandleFunc("GET /printers/{short}", f.authorized(func(w http.ResponseWriter, r *http.Request) {
		f.reply(w, []string{"front-desk", "staff-room"})
	}))
	mux.HandleFunc("GET /events", f.authorized(f.events))
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) port() string {
	_, port, _ := net.SplitHostPort(f.srv.Listener.Addr().String())
	return port
}

func (f *fakeAPI) reply(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": data})
}

func (f *fakeAPI) authorized(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.token {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "invalid token"})
			return
		}
		h(w, r)
	}
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
	if body["password"] != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "bad credentials"})
		return
	}
	f.reply(w, map[string]any{"access_token": f.token, "token_type": "bearer", "expires_in": 3600})
}

func (f *fakeAPI) conventions(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.conventionCalls++
	f.mu.Unlock()
	f.reply(w, []map[string]any{{
		"id":                1,
		"short_name":        "ACME2026",
		"long_name":         "Acme Con 2026",
		"active":            true,
		"event_start_date":  "2026-03-06T12:00:00Z",
		"event_end_date":    "2026-03-08T12:00:00Z",
		"membership_levels": []any{},
		"shirt_sizes":       []any{},
	}})
}

var testAttendees = []map[string]any{
	{"id": 10, "convention_id": 1, "active": true, "badge_number": "A010", "first_name": "Ann", "last_name": "Tester", "attendee_type": "attendee", "current_balance": 0},
	{"id": 11, "convention_id": 1, "active": true, "badge_number": "A011", "first_name": "Bob", "last_name": "Smith", "attendee_type": "staff", "current_balance": 15},
}

func (f *fakeAPI) attendees(w http.ResponseWriter, r *http.Request) {
	f.reply(w, testAttendees)
}

func (f *fakeAPI) attendee(w http.ResponseWriter, r *http.Request) {
	for _, a := range testAttendees {
		if strconv.Itoa(a["id"].(int)) == r.PathValue("id") {
			f.reply(w, a)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "attendee not found"})
}

func (f *fakeAPI) updateAttendee(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
	f.mu.Lock()
	f.updates = append(f.updates, body)
	f.mu.Unlock()
	f.reply(w, body)
}

func (f *fakeAPI) printBadge(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
	f.mu.Lock()
	f.printed = append(f.printed, r.PathValue("id")+"@"+body["printer_name"])
	f.mu.Unlock()
	f.reply(w, nil)
}

// events reports one change on the first connection and then stays open.
func (f *fakeAPI) events(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	f.mu.Lock()
	first := !f.streamed
	f.streamed = true
	f.mu.Unlock()
	if first {
		_, _ = w.Write([]byte("event: ping\ndata: {}\n\nevent: attendee_updated\ndata: {\"id\":10}\n\n"))
	}
	w.(http.Flusher).Flush()
	<-r.Context().Done()
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conventionCalls
}
