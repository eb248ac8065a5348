package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/msomdec/notegate/internal/domain"
	"github.com/msomdec/notegate/internal/handler"
	"github.com/msomdec/notegate/internal/repository/sqlite"
	"github.com/msomdec/notegate/internal/service"
	"github.com/msomdec/notegate/internal/social"
	"golang.org/x/crypto/bcrypt"
)

const (
	testJWTSecret  = "test-secret-key-for-handler-tests!!"
	testBcryptCost = bcrypt.MinCost
)

// recordingMailer captures verification tokens instead of sending mail.
type recordingMailer struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *recordingMailer) SendVerificationEmail(_ context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		m.tokens = make(map[string]string)
	}
	m.tokens[email] = token
	return nil
}

func (m *recordingMailer) tokenFor(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[email]
}

// stubProvider stands in for an external identity provider. Any code other
// than "good-code" fails the exchange.
type stubProvider struct {
	profile social.Profile
}

func (p *stubProvider) Name() string { return "STUB" }

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://idp.example.com/authorize?state=" + state
}

func (p *stubProvider) FetchProfile(_ context.Context, code string) (*social.Profile, error) {
	if code != "good-code" {
		return nil, fmt.Errorf("exchange code: invalid code")
	}
	profile := p.profile
	return &profile, nil
}

type testEnv struct {
	srv    *httptest.Server
	db     *sqlite.DB
	auth   *service.AuthService
	mailer *recordingMailer
	stub   *stubProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mailer := &recordingMailer{}
	auth := service.NewAuthService(db.Users(), mailer, testJWTSecret, testBcryptCost)
	notes := service.NewNoteService(db.Notes())
	users := service.NewUserService(db.Users())

	stub := &stubProvider{profile: social.Profile{
		Provider:   "STUB",
		ProviderID: "stub-sub-1",
		Email:      "social@example.com",
		Name:       "Social User",
	}}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth, notes, users, []social.Provider{stub}, false)

	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, db: db, auth: auth, mailer: mailer, stub: stub}
}

// newClient returns an http client with its own cookie jar, i.e. one browser
// session. Redirects are not followed so OAuth redirects can be inspected.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *testEnv) do(t *testing.T, client *http.Client, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, reqBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response %s: %v", raw, err)
		}
	}
	return resp.StatusCode, decoded
}

// seedActiveUser creates an approved account directly in the database and
// returns it with the plaintext password preserved for login.
func (e *testEnv) seedActiveUser(t *testing.T, email, password string, role domain.UserRole) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), testBcryptCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &domain.User{
		Email:        email,
		DisplayName:  "Seeded",
		Role:         role,
		Status:       domain.StatusActive,
		PasswordHash: string(hash),
	}
	if err := e.db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func (e *testEnv) login(t *testing.T, client *http.Client, email, password string) {
	t.Helper()
	status, body := e.do(t, client, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d (%v)", email, status, body)
	}
}

func errorCode(body map[string]any) string {
	code, _ := body["error"].(string)
	return code
}
