package internal

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvndudz/scheduled-music-console/internal/models"
	sessionrepo "github.com/rvndudz/scheduled-music-console/internal/repos/session/inmem"
	userrepo "github.com/rvndudz/scheduled-music-console/internal/repos/user/inmem"
)

// newTestServer wires the whole HTTP surface against in-memory backends and
// returns the server plus the collaborators tests may want to inspect
func newTestServer(t *testing.T, events ...models.EventRecord) (*httptest.Server, *recordingRepo, *fakeObjectStore) {
	t.Helper()
	logger := testLogger()

	repo := &recordingRepo{events: events}
	assets := &fakeObjectStore{}

	users := userrepo.New()
	u := models.User{Name: "admin", FullName: "Admin"}
	require.NoError(t, u.SetPassword("changeme"))
	require.NoError(t, users.Create(&u))

	sessSrv := NewSessionService(sessionrepo.New(), users, logger)
	evSrv := NewEventService(repo, assets, testNormalizer(t), logger)
	upSrv := NewUploadService(assets, logger)

	srv := httptest.NewServer(MakeHTTPHandler(evSrv, upSrv, sessSrv, logger))
	t.Cleanup(srv.Close)
	return srv, repo, assets
}

// doJSON fires a request with an optional JSON body and session token and
// returns the status together with the decoded response document
func doJSON(t *testing.T, method, url, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("token", token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var doc map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	return resp.StatusCode, doc
}

// login performs the login call and returns the session token
func login(t *testing.T, baseURL string) string {
	t.Helper()
	status, doc := doJSON(t, http.MethodPost, baseURL+"/api/login", "", map[string]string{
		"user":     "admin",
		"password": "changeme",
	})
	require.Equal(t, http.StatusOK, status)
	data, ok := doc["data"].(map[string]interface{})
	require.True(t, ok, "unexpected login response: %v", doc)
	token, _ := data["sessionId"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAliveEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, doc := doJSON(t, http.MethodGet, srv.URL+"/alive", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, doc["ok"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, doc := doJSON(t, http.MethodPost, srv.URL+"/api/login", "", map[string]string{
		"user":     "admin",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, false, doc["ok"])
	assert.Equal(t, ErrCodeLoginFailed, doc["error"])
}

func TestMutationsNeedOperatorSession(t *testing.T) {
	srv, _, _ := newTestServer(t, baseEvent())

	tests := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodPost, "/api/events", validCreatePayload()},
		{http.MethodPut, "/api/events/ev-1", map[string]interface{}{"event_name": "x"}},
		{http.MethodDelete, "/api/events/ev-1", nil},
		{http.MethodDelete, "/api/events/expired", nil},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			status, doc := doJSON(t, tt.method, srv.URL+tt.path, "", tt.body)
			assert.Equal(t, http.StatusForbidden, status)
			assert.Equal(t, ErrCodeNotLoggedIn, doc["error"])
		})
	}
}

func TestReadsAreOpen(t *testing.T) {
	srv, _, _ := newTestServer(t, baseEvent())

	status, doc := doJSON(t, http.MethodGet, srv.URL+"/api/events", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, doc["ok"])

	status, doc = doJSON(t, http.MethodGet, srv.URL+"/api/events/ev-1", "", nil)
	assert.Equal(t, http.StatusOK, status)
	data := doc["data"].(map[string]interface{})
	assert.Equal(t, "Evening Set", data["event_name"])
}

func TestEventLifecycleOverHTTP(t *testing.T) {
	srv, repo, _ := newTestServer(t)
	token := login(t, srv.URL)

	// Create
	status, doc := doJSON(t, http.MethodPost, srv.URL+"/api/events", token, validCreatePayload())
	require.Equal(t, http.StatusOK, status)
	data := doc["data"].(map[string]interface{})
	id, _ := data["event_id"].(string)
	require.NotEmpty(t, id)
	require.Len(t, repo.events, 1)

	// Update
	status, doc = doJSON(t, http.MethodPut, srv.URL+"/api/events/"+id, token, map[string]interface{}{
		"event_name": "Renamed",
	})
	require.Equal(t, http.StatusOK, status)
	data = doc["data"].(map[string]interface{})
	assert.Equal(t, "Renamed", data["event_name"])

	// Delete
	status, doc = doJSON(t, http.MethodDelete, srv.URL+"/api/events/"+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	data = doc["data"].(map[string]interface{})
	assert.Equal(t, id, data["deleted"])
	assert.Empty(t, repo.events)
}

func TestValidationErrorShape(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := login(t, srv.URL)

	payload := validCreatePayload()
	delete(payload, "event_name")

	status, doc := doJSON(t, http.MethodPost, srv.URL+"/api/events", token, payload)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, doc["ok"])
	assert.Equal(t, ErrCodeValidationFailed, doc["error"])
	assert.Equal(t, "event_name is required", doc["errorMessage"])
}

func TestMalformedJSONBody(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := login(t, srv.URL)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/events", strings.NewReader("{ nope"))
	require.NoError(t, err)
	req.Header.Set("token", token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var doc map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, ErrCodeIllegalJSON, doc["error"])
}

func TestDeleteExpiredRoute(t *testing.T) {
	ev := baseEvent()
	ev.StartTimeUTC = "2020-01-01T10:00:00Z"
	ev.EndTimeUTC = "2020-01-01T12:00:00Z"
	srv, repo, _ := newTestServer(t, ev)
	token := login(t, srv.URL)

	status, doc := doJSON(t, http.MethodDelete, srv.URL+"/api/events/expired", token, nil)
	require.Equal(t, http.StatusOK, status)
	data := doc["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["deleted"])
	assert.Equal(t, float64(0), data["remaining"])
	assert.Empty(t, repo.events)
}

func TestWhoAmIAndLogout(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := login(t, srv.URL)

	status, doc := doJSON(t, http.MethodGet, srv.URL+"/api/whoami", token, nil)
	require.Equal(t, http.StatusOK, status)
	data := doc["data"].(map[string]interface{})
	assert.Equal(t, "admin", data["userName"])

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/api/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	// The session is gone - mutations are rejected again
	status, doc = doJSON(t, http.MethodPost, srv.URL+"/api/events", token, validCreatePayload())
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, ErrCodeNotLoggedIn, doc["error"])
}

func TestTrackUploadOverHTTP(t *testing.T) {
	srv, _, assets := newTestServer(t)
	token := login(t, srv.URL)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "warmup-set.mp3")
	require.NoError(t, err)
	_, err = fw.Write(synthTrack(115))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/uploads/track", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("token", token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	data := doc["data"].(map[string]interface{})
	assert.Equal(t, "warmup-set", data["track_name"])
	assert.Equal(t, float64(3), data["track_duration_seconds"])
	require.Len(t, assets.uploadedKey, 1)
}
