package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"ideora.org/internal/auth"
	"ideora.org/internal/authz"
	"ideora.org/internal/platform"
	"ideora.org/internal/stream"
)

const testSecret = "test-secret-0123456789"

type testEnv struct {
	baseURL string
	client  *http.Client
	t       *testing.T

	users   *auth.MemoryStore
	store   *platform.MemoryStore
	themeID string
}

func newTestAPI(t *testing.T) *testEnv {
	t.Helper()
	return newTestAPIWithConfig(t, Config{
		Version:       "test",
		TokenTTL:      15 * time.Minute,
		RateBurst:     1000,
		RatePerSecond: 1000,
	})
}

func newTestAPIWithConfig(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	users := auth.NewMemoryStore()
	store := platform.NewMemoryStore()
	theme := store.SeedTheme(platform.Theme{Name: "fintech"})

	codec, err := auth.NewCodec(testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	authn, err := auth.NewAuthenticator(users, codec)
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	resolver, err := auth.NewResolver(codec, users, false)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	enforcer, err := authz.NewEnforcer("")
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}

	api := New(cfg, ReadyProbe{}, authn, resolver, users, store, authz.NewAuthorizer(enforcer), stream.NewBroker())

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &testEnv{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
		users:   users,
		store:   store,
		themeID: theme.ID,
	}
}

func (c *testEnv) do(method, path string, body any, token string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *testEnv) decode(resp *http.Response, dst any) {
	c.t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		c.t.Fatalf("decode response: %v", err)
	}
}

func (c *testEnv) register(name, email, password string) map[string]any {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/v1/users", map[string]any{
		"name": name, "email": email, "password": password,
	}, "")
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("register %s: status %d", email, resp.StatusCode)
	}
	var user map[string]any
	c.decode(resp, &user)
	return user
}

func (c *testEnv) login(email, password string) string {
	c.t.Helper()
	form := url.Values{"username": {email}, "password": {password}}
	resp, err := c.client.Post(c.baseURL+"/v1/users/login",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		c.t.Fatalf("login: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
	var payload tokenResponse
	c.decode(resp, &payload)
	if payload.TokenType != "bearer" {
		c.t.Fatalf("token_type = %q", payload.TokenType)
	}
	return payload.AccessToken
}

func TestRegisterLoginMe(t *testing.T) {
	c := newTestAPI(t)

	user := c.register("alice", "alice@example.com", "sw0rdfish1")
	if _, hasHash := user["password_hash"]; hasHash {
		t.Fatal("password hash leaked in response")
	}

	token := c.login("alice@example.com", "sw0rdfish1")
	resp := c.do(http.MethodGet, "/v1/users/me", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: status %d", resp.StatusCode)
	}
	var me map[string]any
	c.decode(resp, &me)
	if me["email"] != "alice@example.com" || me["role"] != "user" {
		t.Fatalf("unexpected identity: %v", me)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	c := newTestAPI(t)
	c.register("alice", "alice@example.com", "sw0rdfish1")

	resp := c.do(http.MethodPost, "/v1/users", map[string]any{
		"name": "alice2", "email": "alice@example.com", "password": "sw0rdfish1",
	}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	c := newTestAPI(t)
	c.register("alice", "alice@example.com", "sw0rdfish1")

	read := func(email, password string) (int, string) {
		form := url.Values{"username": {email}, "password": {password}}
		resp, err := c.client.Post(c.baseURL+"/v1/users/login",
			"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	wrongPassCode, wrongPassBody := read("alice@example.com", "not-the-password")
	unknownCode, unknownBody := read("nobody@example.com", "whatever")

	if wrongPassCode != http.StatusUnauthorized || unknownCode != http.StatusUnauthorized {
		t.Fatalf("statuses: %d / %d, want 401 / 401", wrongPassCode, unknownCode)
	}
	if wrongPassBody != unknownBody {
		t.Fatalf("bodies differ:\n%s\n%s", wrongPassBody, unknownBody)
	}
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	c := newTestAPI(t)

	resp := c.do(http.MethodGet, "/v1/users/me", nil, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if resp.Header.Get("WWW-Authenticate") == "" {
		t.Fatal("missing WWW-Authenticate challenge")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	c := newTestAPI(t)
	c.register("alice", "alice@example.com", "sw0rdfish1")
	token := c.login("alice@example.com", "sw0rdfish1")

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d parts", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	resp := c.do(http.MethodGet, "/v1/users/me", nil, tampered)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	c := newTestAPI(t)
	user := c.register("alice", "alice@example.com", "sw0rdfish1")

	past := time.Now().Add(-2 * time.Hour)
	backdated, err := auth.NewCodec(testSecret, 15*time.Minute,
		auth.WithClock(func() time.Time { return past }))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	token, _, err := backdated.Encode(&auth.User{
		ID: user["id"].(string), Name: "alice", Email: "alice@example.com", Role: auth.RoleUser,
	}, time.Minute)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	resp := c.do(http.MethodGet, "/v1/users/me", nil, token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestDisabledAccountStopsResolving(t *testing.T) {
	c := newTestAPI(t)
	user := c.register("alice", "alice@example.com", "sw0rdfish1")
	token := c.login("alice@example.com", "sw0rdfish1")

	resp := c.do(http.MethodDelete, "/v1/users/"+user["id"].(string), nil, token)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("disable: status %d", resp.StatusCode)
	}

	resp = c.do(http.MethodGet, "/v1/users/me", nil, token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for disabled account", resp.StatusCode)
	}
}

func TestIdeationOwnershipFlow(t *testing.T) {
	c := newTestAPI(t)
	c.register("alice", "alice@example.com", "sw0rdfish1")
	c.register("bob", "bob@example.com", "sw0rdfish1")
	aliceToken := c.login("alice@example.com", "sw0rdfish1")
	bobToken := c.login("bob@example.com", "sw0rdfish1")

	resp := c.do(http.MethodPost, "/v1/ideations", map[string]any{
		"title": "solar micro-grid", "content": "pitch", "theme_id": c.themeID,
	}, aliceToken)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	var it map[string]any
	c.decode(resp, &it)
	id := it["id"].(string)

	// Stranger writes are refused without revealing anything.
	resp = c.do(http.MethodPatch, "/v1/ideation/"+id, map[string]any{"title": "stolen"}, bobToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("stranger update: status %d, want 403", resp.StatusCode)
	}

	// A missing id looks exactly the same as a forbidden one.
	resp = c.do(http.MethodPatch, "/v1/ideation/01NOTAREALID00000000000000", map[string]any{"title": "x"}, bobToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("missing id update: status %d, want 403", resp.StatusCode)
	}

	// The owner may update.
	resp = c.do(http.MethodPatch, "/v1/ideation/"+id, map[string]any{"title": "solar v2"}, aliceToken)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner update: status %d", resp.StatusCode)
	}
	var updated map[string]any
	c.decode(resp, &updated)
	if updated["title"] != "solar v2" {
		t.Fatalf("title = %v", updated["title"])
	}

	// Visits by others bump the view count; the owner's do not.
	resp = c.do(http.MethodGet, "/v1/ideation/"+id, nil, bobToken)
	resp.Body.Close()
	resp = c.do(http.MethodGet, "/v1/ideation/"+id, nil, aliceToken)
	var viewed map[string]any
	c.decode(resp, &viewed)
	if viewed["view_count"].(float64) != 1 {
		t.Fatalf("view_count = %v, want 1", viewed["view_count"])
	}

	resp = c.do(http.MethodDelete, "/v1/ideation/"+id, nil, aliceToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("owner delete: status %d", resp.StatusCode)
	}
}

func TestFinanceDeniedBeforeExistence(t *testing.T) {
	c := newTestAPI(t)
	c.register("bob", "bob@example.com", "sw0rdfish1")
	bobToken := c.login("bob@example.com", "sw0rdfish1")

	// No grant: the response is 403 whether or not the plan exists.
	resp := c.do(http.MethodGet, "/v1/finance/01NOTAREALID00000000000000", nil, bobToken)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

func TestBoardRequiresAdmin(t *testing.T) {
	c := newTestAPI(t)
	user := c.register("alice", "alice@example.com", "sw0rdfish1")

	token := c.login("alice@example.com", "sw0rdfish1")
	resp := c.do(http.MethodPost, "/v1/boards", map[string]any{
		"category": "notice", "title": "maintenance", "content": "tonight",
	}, token)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("user create: status %d, want 403", resp.StatusCode)
	}

	// Promote and retry; the refetching resolver sees the new role on
	// the very next request with the same token.
	adminRole := auth.RoleAdmin
	if _, err := c.users.Update(context.Background(), user["id"].(string), auth.UserUpdate{Role: &adminRole}); err != nil {
		t.Fatalf("promote: %v", err)
	}
	resp = c.do(http.MethodPost, "/v1/boards", map[string]any{
		"category": "notice", "title": "maintenance", "content": "tonight",
	}, token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("admin create: status %d, want 201", resp.StatusCode)
	}
}

func TestInvestmentGroupAccess(t *testing.T) {
	c := newTestAPI(t)
	c.register("alice", "alice@example.com", "sw0rdfish1")
	aliceToken := c.login("alice@example.com", "sw0rdfish1")

	investor := func(name, email, group string) string {
		u := c.register(name, email, "sw0rdfish1")
		role := auth.RoleInvestor
		if _, err := c.users.Update(context.Background(), u["id"].(string), auth.UserUpdate{Role: &role, GroupID: &group}); err != nil {
			t.Fatalf("assign group: %v", err)
		}
		return c.login(email, "sw0rdfish1")
	}
	carolToken := investor("carol", "carol@example.com", "acme")
	danaToken := investor("dana", "dana@example.com", "acme")
	eveToken := investor("eve", "eve@example.com", "rival")

	resp := c.do(http.MethodPost, "/v1/ideations", map[string]any{
		"title": "t", "theme_id": c.themeID,
	}, aliceToken)
	var it map[string]any
	c.decode(resp, &it)

	resp = c.do(http.MethodPost, "/v1/investors", map[string]any{"name": "Acme Capital"}, carolToken)
	var inv map[string]any
	c.decode(resp, &inv)

	resp = c.do(http.MethodPost, "/v1/investments", map[string]any{
		"ideation_id": it["id"], "investor_id": inv["id"], "amount": 5000,
	}, carolToken)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create investment: status %d", resp.StatusCode)
	}
	var record map[string]any
	c.decode(resp, &record)
	id := record["id"].(string)

	// A colleague in the same group may amend the record.
	amount := map[string]any{"amount": 7000}
	resp = c.do(http.MethodPatch, "/v1/investments/"+id, amount, danaToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("group update: status %d, want 200", resp.StatusCode)
	}

	// An investor from another company may not.
	resp = c.do(http.MethodPatch, "/v1/investments/"+id, amount, eveToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("rival update: status %d, want 403", resp.StatusCode)
	}
}

func TestGrouplessInvestorKeepsCreatorGrant(t *testing.T) {
	c := newTestAPI(t)
	user := c.register("carol", "carol@example.com", "sw0rdfish1")
	role := auth.RoleInvestor
	if _, err := c.users.Update(context.Background(), user["id"].(string), auth.UserUpdate{Role: &role}); err != nil {
		t.Fatalf("promote: %v", err)
	}
	token := c.login("carol@example.com", "sw0rdfish1")

	resp := c.do(http.MethodPost, "/v1/investors", map[string]any{"name": "Solo Capital"}, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	var inv map[string]any
	c.decode(resp, &inv)

	// The personal grant issued at creation must keep working.
	resp = c.do(http.MethodPatch, "/v1/investor/"+inv["id"].(string),
		map[string]any{"description": "boutique fund"}, token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("creator update: status %d, want 200", resp.StatusCode)
	}
}

func TestChatRoomMembership(t *testing.T) {
	c := newTestAPI(t)
	alice := c.register("alice", "alice@example.com", "sw0rdfish1")
	bob := c.register("bob", "bob@example.com", "sw0rdfish1")
	c.register("mallory", "mallory@example.com", "sw0rdfish1")
	aliceToken := c.login("alice@example.com", "sw0rdfish1")
	malloryToken := c.login("mallory@example.com", "sw0rdfish1")

	resp := c.do(http.MethodPost, "/v1/chat/rooms", map[string]any{
		"user_ids": []string{alice["id"].(string), bob["id"].(string)},
	}, aliceToken)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create room: status %d", resp.StatusCode)
	}
	var room map[string]any
	c.decode(resp, &room)
	roomID := room["id"].(string)

	resp = c.do(http.MethodGet, "/v1/chat/history?room="+roomID, nil, aliceToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("member history: status %d", resp.StatusCode)
	}

	resp = c.do(http.MethodGet, "/v1/chat/history?room="+roomID, nil, malloryToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("outsider history: status %d, want 403", resp.StatusCode)
	}
}

func TestConfiguredBodyLimitAppliesToJSON(t *testing.T) {
	c := newTestAPIWithConfig(t, Config{
		Version:       "test",
		TokenTTL:      15 * time.Minute,
		MaxBodyBytes:  4 << 20,
		RateBurst:     1000,
		RatePerSecond: 1000,
	})
	c.register("alice", "alice@example.com", "sw0rdfish1")
	token := c.login("alice@example.com", "sw0rdfish1")

	// Over the old 1 MiB default but inside the configured cap.
	content := strings.Repeat("a", 2<<20)
	resp := c.do(http.MethodPost, "/v1/ideations", map[string]any{
		"title": "long pitch", "content": content, "theme_id": c.themeID,
	}, token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
}

func TestHealthAndInfoArePublic(t *testing.T) {
	c := newTestAPI(t)
	for _, path := range []string{"/healthz", "/readyz", "/v1/info", "/v1/themes",
		"/v1/ideations", "/v1/investors", "/v1/boards"} {
		resp := c.do(http.MethodGet, path, nil, "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d", path, resp.StatusCode)
		}
	}
}
