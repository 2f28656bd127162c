package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwatch/internal/app/events"
	"stockwatch/internal/app/quote"
	"stockwatch/internal/app/session"
	"stockwatch/internal/app/user"
	"stockwatch/internal/app/view"
	"stockwatch/internal/configs"
)

// memUsers is an in-memory user.Store.
type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]user.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[int64]user.User)}
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*user.User, error) {
	// same width as users.username
	if len(username) > 64 {
		return nil, &pgconn.PgError{Code: "22001", Message: "value too long for type character varying(64)"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username {
			u.Symbols = slices.Clone(u.Symbols)
			return &u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id int64) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	u.Symbols = slices.Clone(u.Symbols)
	return &u, nil
}

func (m *memUsers) Create(_ context.Context, username, passwordHash string, symbols []string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username {
			return nil, user.ErrAlreadyExists
		}
	}
	m.nextID++
	u := user.User{ID: m.nextID, Username: username, PasswordHash: passwordHash, Symbols: slices.Clone(symbols), CreatedAt: time.Now()}
	m.byID[u.ID] = u
	return &u, nil
}

func (m *memUsers) UpdateSymbols(_ context.Context, id int64, symbols []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Symbols = slices.Clone(symbols)
	m.byID[id] = u
	return nil
}

func (m *memUsers) ModifySymbols(_ context.Context, id int64, fn user.ModifyFunc) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	next, err := fn(slices.Clone(u.Symbols))
	if err != nil {
		return nil, err
	}
	u.Symbols = slices.Clone(next)
	m.byID[id] = u
	return next, nil
}

func (m *memUsers) symbolsOf(t *testing.T, username string) []string {
	t.Helper()
	u, err := m.FindByUsername(context.Background(), username)
	require.NoError(t, err)
	return u.Symbols
}

func (m *memUsers) delete(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.byID {
		if u.Username == username {
			delete(m.byID, id)
		}
	}
}

// stubQuotes resolves only the symbols it knows.
type stubQuotes map[string]quote.Quote

func (s stubQuotes) Fetch(_ context.Context, symbol string) quote.Result {
	q, ok := s[symbol]
	if !ok {
		return quote.Result{Symbol: symbol, Outcome: quote.NotFound, Err: quote.ErrMissingField}
	}
	return quote.Result{Symbol: symbol, Outcome: quote.Found, Quote: q}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event

	// stall makes Publish wait for ctx like an unreachable broker.
	stall       bool
	hadDeadline bool
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	stall := p.stall
	_, p.hadDeadline = ctx.Deadline()
	p.mu.Unlock()

	if stall {
		<-ctx.Done()
		return ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) actions() []events.Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Action
	for _, e := range p.events {
		out = append(out, e.Action)
	}
	return out
}

type testEnv struct {
	srv    *httptest.Server
	client *http.Client
	users  *memUsers
	events *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	views, err := view.New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	env := &testEnv{users: newMemUsers(), events: &recordingPublisher{}}
	deps := &AppDeps{
		Config:   &configs.AppConfig{Environment: "test"},
		Users:    env.users,
		Sessions: session.NewManager(session.NewMemoryStore(ctx, 0), session.Options{Secret: "test-secret", TTL: time.Hour}),
		Quotes: stubQuotes{
			"AAPL": {Name: "Apple Inc.", Symbol: "AAPL", Price: "189.84", PercentIncrease: "+1.23 (+0.65%)"},
			"MSFT": {Name: "Microsoft Corporation", Symbol: "MSFT", Price: "411.22", PercentIncrease: "-2.05 (-0.50%)"},
		},
		Views:  views,
		Events: env.events,
	}

	env.srv = httptest.NewServer(Router(ctx, deps))
	t.Cleanup(env.srv.Close)

	env.client = env.newClient(t)
	return env
}

// newClient returns a client with its own cookie jar that does not follow redirects.
func (e *testEnv) newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	res, err := e.client.Get(e.srv.URL + path)
	require.NoError(t, err)
	return res, readBody(t, res)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	res, err := e.client.PostForm(e.srv.URL+path, form)
	require.NoError(t, err)
	return res, readBody(t, res)
}

func readBody(t *testing.T, res *http.Response) string {
	t.Helper()
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(b)
}

func requireRedirect(t *testing.T, res *http.Response, location string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Equal(t, location, res.Header.Get("Location"))
}

func (e *testEnv) register(t *testing.T, username, password string) {
	t.Helper()
	res, _ := e.post(t, "/register", url.Values{
		"username":     {username},
		"password":     {password},
		"confirmation": {password},
	})
	requireRedirect(t, res, "/login")
}

func (e *testEnv) login(t *testing.T, username, password string) {
	t.Helper()
	res, _ := e.post(t, "/login", url.Values{"username": {username}, "password": {password}})
	requireRedirect(t, res, "/")
}

func TestRegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)

	env.register(t, "alice", "Secret1!")
	env.login(t, "alice", "Secret1!")

	res, body := env.get(t, "/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Log out (alice)")

	u, err := env.users.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, u.Symbols)
	assert.NotEqual(t, "Secret1!", u.PasswordHash)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)

	env.register(t, "bob", "pw1")

	res, body := env.post(t, "/register", url.Values{
		"username":     {"bob"},
		"password":     {"pw2"},
		"confirmation": {"pw2"},
	})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Username is already in use.")
}

func TestRegister_FirstFailingRuleWins(t *testing.T) {
	env := newTestEnv(t)

	res, body := env.post(t, "/register", url.Values{
		"username":     {"b0b"},
		"password":     {"pw 1"},
		"confirmation": {"different"},
	})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Passwords do not match.")
	assert.Contains(t, body, `value="b0b"`)
}

func TestCheckRegistration(t *testing.T) {
	tests := []struct {
		name                             string
		username, password, confirmation string
		want                             string
	}{
		{"mismatch beats charset", "b0b", "pw 1", "pw1", "Passwords do not match."},
		{"both invalid", "b0b", "pw 1", "pw 1", "Username and password contain invalid characters."},
		{"username invalid", "b0b", "pw1", "pw1", "Username may only contain letters and spaces."},
		{"empty username", "", "pw1", "pw1", "Username may only contain letters and spaces."},
		{"password invalid", "bob", "pw 1", "pw 1", "Password contains invalid characters."},
		{"password too long", "bob", strings.Repeat("x", 73), strings.Repeat("x", 73), "Password must be at most 72 characters."},
		{"username too long", strings.Repeat("a", 65), "pw1", "pw1", "Username must be at most 64 characters."},
		{"username length beats password length", strings.Repeat("a", 65), strings.Repeat("x", 73), strings.Repeat("x", 73), "Username must be at most 64 characters."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			res, body := env.post(t, "/register", url.Values{
				"username":     {tc.username},
				"password":     {tc.password},
				"confirmation": {tc.confirmation},
			})
			assert.Equal(t, http.StatusOK, res.StatusCode)
			assert.Contains(t, body, tc.want)
		})
	}

	assert.Zero(t, checkRegistration("Mary Ann", "Secret1!", "Secret1!"))
	assert.Zero(t, checkRegistration(strings.Repeat("a", 64), "pw1", "pw1"))
}

func TestRegister_LongUsernameStaysOnForm(t *testing.T) {
	env := newTestEnv(t)

	res, body := env.post(t, "/register", url.Values{
		"username":     {strings.Repeat("a", 65)},
		"password":     {"pw1"},
		"confirmation": {"pw1"},
	})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Username must be at most 64 characters.")

	_, err := env.users.FindByUsername(context.Background(), strings.Repeat("a", 65))
	assert.ErrorIs(t, err, user.ErrNotFound)

	env.register(t, strings.Repeat("a", 64), "pw1")
}

func TestLogin_GenericFailureMessage(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "carol", "right")

	for _, form := range []url.Values{
		{"username": {"carol"}, "password": {"wrong"}},
		{"username": {"nobody"}, "password": {"right"}},
		{"username": {""}, "password": {""}},
	} {
		res, body := env.post(t, "/login", form)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, body, "Invalid username or password.")
		assert.NotContains(t, body, "Log out")
	}
}

func TestLoginPage_RedirectsSignedInUser(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "dave", "pw")
	env.login(t, "dave", "pw")

	res, _ := env.get(t, "/login")
	requireRedirect(t, res, "/")
}

func TestGatedRoutesRedirectAnonymous(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/", "/add", "/remove", "/logout", "/ws/quotes"} {
		res, _ := env.get(t, path)
		requireRedirect(t, res, "/login")
	}

	res, _ := env.post(t, "/add", url.Values{"symbol": {"AAPL"}})
	requireRedirect(t, res, "/login")
}

func TestAdd_SameSymbolTwice(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "erin", "pw")
	env.login(t, "erin", "pw")

	res, _ := env.post(t, "/add", url.Values{"symbol": {" aapl "}})
	requireRedirect(t, res, "/")

	res, body := env.post(t, "/add", url.Values{"symbol": {"AAPL"}})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "You are already tracking this stock.")

	assert.Equal(t, []string{"AAPL"}, env.users.symbolsOf(t, "erin"))
	assert.Equal(t, []events.Action{events.SymbolAdded}, env.events.actions())
}

func TestAdd_StalledBrokerDoesNotBlockRedirect(t *testing.T) {
	old := eventPublishTimeout
	eventPublishTimeout = 50 * time.Millisecond
	t.Cleanup(func() { eventPublishTimeout = old })

	env := newTestEnv(t)
	env.events.stall = true
	env.register(t, "grace", "pw")
	env.login(t, "grace", "pw")

	start := time.Now()
	res, _ := env.post(t, "/add", url.Values{"symbol": {"AAPL"}})
	requireRedirect(t, res, "/")
	assert.Less(t, time.Since(start), 2*time.Second)

	env.events.mu.Lock()
	assert.True(t, env.events.hadDeadline)
	env.events.mu.Unlock()

	u, err := env.users.FindByUsername(context.Background(), "grace")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, u.Symbols)
}

func TestAdd_UnknownSymbol(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "frank", "pw")
	env.login(t, "frank", "pw")

	for _, symbol := range []string{"ZZZZ", "", "AA PL", "<b>"} {
		res, body := env.post(t, "/add", url.Values{"symbol": {symbol}})
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, body, "Stock symbol is not a valid symbol.")
	}

	assert.Empty(t, env.users.symbolsOf(t, "frank"))
	assert.Empty(t, env.events.actions())
}

func TestRemove(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "gina", "pw")
	env.login(t, "gina", "pw")

	res, _ := env.post(t, "/add", url.Values{"symbol": {"AAPL"}})
	requireRedirect(t, res, "/")

	res, body := env.get(t, "/remove")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `<option value="AAPL">AAPL</option>`)

	res, body = env.post(t, "/remove", url.Values{"symbol": {"MSFT"}})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "You are not tracking MSFT.")
	assert.Equal(t, []string{"AAPL"}, env.users.symbolsOf(t, "gina"))

	res, body = env.post(t, "/remove", url.Values{})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Please choose a stock symbol.")

	res, _ = env.post(t, "/remove", url.Values{"symbol": {"AAPL"}})
	requireRedirect(t, res, "/")
	assert.Empty(t, env.users.symbolsOf(t, "gina"))

	assert.Equal(t, []events.Action{events.SymbolAdded, events.SymbolRemoved}, env.events.actions())
}

func TestIndex_RendersQuotes(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "hank", "pw")
	env.login(t, "hank", "pw")

	u, err := env.users.FindByUsername(context.Background(), "hank")
	require.NoError(t, err)
	require.NoError(t, env.users.UpdateSymbols(context.Background(), u.ID, []string{"MSFT", "GONE", "AAPL"}))

	res, body := env.get(t, "/")
	require.Equal(t, http.StatusOK, res.StatusCode)

	assert.Contains(t, body, "Microsoft Corporation")
	assert.Contains(t, body, "Apple Inc.")
	assert.Contains(t, body, `class="down"`)
	assert.Contains(t, body, `class="up"`)
	assert.Contains(t, body, "unavailable")
	assert.Less(t, strings.Index(body, "Microsoft"), strings.Index(body, "Apple"))
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ivy", "pw")
	env.login(t, "ivy", "pw")

	res, _ := env.get(t, "/logout")
	requireRedirect(t, res, "/")

	res, _ = env.get(t, "/")
	requireRedirect(t, res, "/login")
}

func TestSessionForDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jack", "pw")
	env.login(t, "jack", "pw")

	env.users.delete("jack")

	res, _ := env.get(t, "/")
	requireRedirect(t, res, "/login")

	// the session was destroyed, not just skipped
	res, _ = env.get(t, "/login")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "kate", "pw")
	env.login(t, "kate", "pw")

	other := env.newClient(t)
	res, err := other.Get(env.srv.URL + "/")
	require.NoError(t, err)
	res.Body.Close()
	requireRedirect(t, res, "/login")
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	res, body := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)
}

func TestLogin_RateLimited(t *testing.T) {
	env := newTestEnv(t)

	var last *http.Response
	for i := 0; i < AuthBurst+1; i++ {
		last, _ = env.post(t, "/login", url.Values{"username": {"x"}, "password": {"y"}})
	}
	assert.Equal(t, http.StatusTooManyRequests, last.StatusCode)

	// reading the form is not throttled
	res, _ := env.get(t, "/login")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
