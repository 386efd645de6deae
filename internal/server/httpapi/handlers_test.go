package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/staffolio/staffolio/internal/common"
	"github.com/staffolio/staffolio/internal/logging"
	"github.com/staffolio/staffolio/internal/server/config"
	"github.com/staffolio/staffolio/internal/server/repositories/memory"
	"github.com/staffolio/staffolio/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPictureStore struct{}

func (stubPictureStore) Upload(_ context.Context, _ string, _ []byte) (string, error) {
	return "http://pictures.local/obj", nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		SecretKey:             "handlers-test-key",
		TokenValidityDuration: 30 * time.Minute,
	}

	store := memory.NewStore()
	us := services.NewUserService(store.Users(), cfg)
	es := services.NewEmployeeService(store.Users())
	ps := services.NewPortfolioService(store.Portfolios(), store.Users(), stubPictureStore{})

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := NewServer(":0", logger, us, es, ps, cfg.SecretKey)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// doJSON sends a JSON request with an optional bearer token and decodes the
// response body into a generic map.
func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func register(t *testing.T, ts *httptest.Server, username, email, role string) string {
	t.Helper()

	status, body := doJSON(t, ts, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "s3cret",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, status, "register %s: %v", username, body)

	user := body["user"].(map[string]any)
	return user["id"].(string)
}

func login(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()

	status, body := doJSON(t, ts, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, status, "login %s: %v", email, body)

	token := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func portfolioForm(t *testing.T, fields map[string]string, withPicture bool) (io.Reader, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	if withPicture {
		part, err := w.CreateFormFile("picture", "avatar.png")
		require.NoError(t, err)
		_, err = part.Write([]byte{0x89, 0x50, 0x4e, 0x47})
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func doForm(t *testing.T, ts *httptest.Server, method, path, token string, fields map[string]string, withPicture bool) (int, map[string]any) {
	t.Helper()

	body, contentType := portfolioForm(t, fields, withPicture)
	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(common.AuthorizationHeader, "Bearer "+token)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func TestRegister_DuplicateEmailConflict(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	register(t, ts, "alice", "alice@example.com", "manager")

	status, body := doJSON(t, ts, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "other",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, CodeConflict, body["code"])
}

func TestLogin_SetsCookieAndReturnsToken(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	register(t, ts, "alice", "alice@example.com", "manager")

	data, _ := json.Marshal(map[string]string{"email": "alice@example.com", "password": "s3cret"})
	resp, err := ts.Client().Post(ts.URL+"/auth/login", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == common.TokenCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "login must set the session cookie")
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, int((30 * time.Minute).Seconds()), cookie.MaxAge)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, cookie.Value, body.Token)
}

func TestLogin_InvalidCredentialsUniform(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	register(t, ts, "alice", "alice@example.com", "")

	statusUnknown, bodyUnknown := doJSON(t, ts, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "s3cret",
	})
	statusWrong, bodyWrong := doJSON(t, ts, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, statusUnknown)
	assert.Equal(t, http.StatusUnauthorized, statusWrong)
	assert.Equal(t, bodyUnknown["code"], bodyWrong["code"])
	assert.Equal(t, bodyUnknown["error"], bodyWrong["error"])
}

func TestLogout_Idempotent(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	register(t, ts, "alice", "alice@example.com", "")
	token := login(t, ts, "alice@example.com")

	for i := 0; i < 2; i++ {
		status, body := doJSON(t, ts, http.MethodGet, "/auth/logout", token, nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "ok", body["status"])
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	register(t, ts, "alice", "alice@example.com", "manager")
	token := login(t, ts, "alice@example.com")

	status, body := doJSON(t, ts, http.MethodGet, "/auth/status", token, nil)
	require.Equal(t, http.StatusOK, status)

	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "manager", user["role"])
	assert.NotContains(t, user, "passwordHash")

	status, body = doJSON(t, ts, http.MethodGet, "/auth/status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, CodeUnauthenticated, body["code"])
}

func TestEmployeeDirectory_RoleGated(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	register(t, ts, "boss", "boss@example.com", "manager")
	register(t, ts, "bob", "bob@example.com", "")

	managerToken := login(t, ts, "boss@example.com")
	employeeToken := login(t, ts, "bob@example.com")

	status, body := doJSON(t, ts, http.MethodGet, "/employees", employeeToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, CodeForbidden, body["code"])

	status, body = doJSON(t, ts, http.MethodGet, "/employees", managerToken, nil)
	require.Equal(t, http.StatusOK, status)

	employees := body["employees"].([]any)
	require.Len(t, employees, 1)
	entry := employees[0].(map[string]any)
	assert.Equal(t, "bob", entry["username"])
	assert.Equal(t, false, entry["hasPortfolio"])
}

// TestPortfolioLifecycle walks the full scenario: a manager registers an
// employee's portfolio, the directory flag flips, the employee reads their
// own portfolio but nobody else's, a partial update keeps untouched fields,
// and deletion makes the portfolio recoverably absent.
func TestPortfolioLifecycle(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	register(t, ts, "boss", "boss@example.com", "manager")
	bobID := register(t, ts, "bob", "bob@example.com", "")
	carolID := register(t, ts, "carol", "carol@example.com", "")

	managerToken := login(t, ts, "boss@example.com")
	bobToken := login(t, ts, "bob@example.com")

	fields := map[string]string{
		"employeeId": bobID,
		"name":       "Bob Builder",
		"position":   "Engineer",
		"bio":        "builds things",
		"education":  `[{"school":"MIT","degree":"BS","year":2020}]`,
		"experience": `[{"company":"Acme","role":"Dev","duration":"2 years"}]`,
		"projects":   `[{"name":"Staffolio","description":"portfolio app"}]`,
		"skills":     `["Go","SQL"]`,
	}

	// Employees cannot create portfolios, even their own.
	status, body := doForm(t, ts, http.MethodPost, "/portfolio", bobToken, fields, false)
	require.Equal(t, http.StatusForbidden, status)

	status, body = doForm(t, ts, http.MethodPost, "/portfolio", managerToken, fields, true)
	require.Equal(t, http.StatusCreated, status, "create: %v", body)

	created := body["portfolio"].(map[string]any)
	portfolioID := created["id"].(string)
	assert.Equal(t, bobID, created["employeeId"])
	assert.Equal(t, "http://pictures.local/obj", created["picture"])

	skills := created["skills"].([]any)
	require.Equal(t, []any{"Go", "SQL"}, skills, "list order must survive")

	// Second create for the same employee conflicts.
	status, body = doForm(t, ts, http.MethodPost, "/portfolio", managerToken, fields, false)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, CodeConflict, body["code"])

	// Directory flag flipped.
	status, body = doJSON(t, ts, http.MethodGet, "/employees", managerToken, nil)
	require.Equal(t, http.StatusOK, status)
	for _, e := range body["employees"].([]any) {
		entry := e.(map[string]any)
		if entry["id"] == bobID {
			assert.Equal(t, true, entry["hasPortfolio"])
		}
	}

	// Owner reads their own portfolio; another employee's is forbidden.
	status, body = doJSON(t, ts, http.MethodGet, "/portfolio/"+bobID, bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Bob Builder", body["portfolio"].(map[string]any)["name"])

	status, body = doJSON(t, ts, http.MethodGet, "/portfolio/"+carolID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Manager may read any employee's portfolio.
	status, _ = doJSON(t, ts, http.MethodGet, "/portfolio/"+bobID, managerToken, nil)
	assert.Equal(t, http.StatusOK, status)

	// Manager list includes the owner summary.
	status, body = doJSON(t, ts, http.MethodGet, "/portfolio", managerToken, nil)
	require.Equal(t, http.StatusOK, status)
	list := body["portfolios"].([]any)
	require.Len(t, list, 1)
	owner := list[0].(map[string]any)["employee"].(map[string]any)
	assert.Equal(t, "bob", owner["username"])

	// Partial update: only position and skills change.
	status, body = doForm(t, ts, http.MethodPut, "/portfolio/"+portfolioID, managerToken, map[string]string{
		"position": "Senior Engineer",
		"skills":   `["Go"]`,
	}, false)
	require.Equal(t, http.StatusOK, status, "update: %v", body)

	updated := body["portfolio"].(map[string]any)
	assert.Equal(t, "Senior Engineer", updated["position"])
	assert.Equal(t, []any{"Go"}, updated["skills"].([]any))
	assert.Equal(t, "Bob Builder", updated["name"])
	assert.Equal(t, "builds things", updated["bio"])

	// Delete, then the portfolio is recoverably absent.
	status, _ = doJSON(t, ts, http.MethodDelete, "/portfolio/"+portfolioID, managerToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, ts, http.MethodGet, "/portfolio/"+bobID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, CodeNotFound, body["code"])

	status, body = doJSON(t, ts, http.MethodDelete, "/portfolio/"+portfolioID, managerToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreatePortfolio_MalformedListField(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	register(t, ts, "boss", "boss@example.com", "manager")
	bobID := register(t, ts, "bob", "bob@example.com", "")
	managerToken := login(t, ts, "boss@example.com")

	status, body := doForm(t, ts, http.MethodPost, "/portfolio", managerToken, map[string]string{
		"employeeId": bobID,
		"name":       "Bob",
		"position":   "Engineer",
		"bio":        "bio",
		"skills":     `not-json`,
	}, false)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeValidation, body["code"])
}
