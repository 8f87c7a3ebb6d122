package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tankharsh/photocap/internal/logger"
	"github.com/tankharsh/photocap/internal/middleware"
	"github.com/tankharsh/photocap/internal/model"
	"github.com/tankharsh/photocap/internal/observability"
	"github.com/tankharsh/photocap/internal/repository"
	"github.com/tankharsh/photocap/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminPassword = "Secret123"
	testBaseURL   = "http://api.test"
)

type memAdmin struct {
	profile model.AdminProfile
	hash    string
}

// memAdminStore is an in-memory admin CredentialStore.
type memAdminStore struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]*memAdmin
	findErr error
}

func (s *memAdminStore) byEmail(email string) *memAdmin {
	for _, r := range s.rows {
		if r.profile.Email == email {
			return r
		}
	}
	return nil
}

func (s *memAdminStore) cred(r *memAdmin) *model.Credential {
	return &model.Credential{ID: r.profile.ID, Email: r.profile.Email, PasswordHash: r.hash, IsActive: r.profile.IsActive}
}

func (s *memAdminStore) FindCredentialByEmail(_ context.Context, email string) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.byEmail(email); r != nil {
		return s.cred(r), nil
	}
	return nil, repository.ErrNotFound
}

func (s *memAdminStore) FindCredentialByID(_ context.Context, id uuid.UUID) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[id]; ok {
		return s.cred(r), nil
	}
	return nil, repository.ErrNotFound
}

func (s *memAdminStore) Create(_ context.Context, email, hash string, f model.AdminRegistration) (*model.AdminProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byEmail(email) != nil {
		return nil, repository.ErrDuplicate
	}
	r := &memAdmin{
		profile: model.AdminProfile{ID: uuid.New(), Email: email, Name: f.Name, Role: model.RoleSuperAdmin, IsActive: true},
		hash:    hash,
	}
	s.rows[r.profile.ID] = r
	cp := r.profile
	return &cp, nil
}

func (s *memAdminStore) FindByID(_ context.Context, id uuid.UUID) (*model.AdminProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	if r, ok := s.rows[id]; ok {
		cp := r.profile
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (s *memAdminStore) Update(_ context.Context, id uuid.UUID, f model.AdminProfileUpdate) (*model.AdminProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if f.Name != nil {
		r.profile.Name = *f.Name
	}
	cp := r.profile
	return &cp, nil
}

func (s *memAdminStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.hash = hash
	return nil
}

func (s *memAdminStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.profile.IsActive = active
	return nil
}

// memEventStore keeps events per owner.
type memEventStore struct {
	mu     sync.Mutex
	events map[uuid.UUID]model.Event
}

func (s *memEventStore) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Event{}
	for _, e := range s.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memEventStore) FindByID(_ context.Context, userID, id uuid.UUID) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (s *memEventStore) Create(_ context.Context, e *model.Event) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	cp.ID = uuid.New()
	cp.ClientEmail = repository.NormalizeEmail(cp.ClientEmail)
	s.events[cp.ID] = cp
	return &cp, nil
}

func (s *memEventStore) Update(ctx context.Context, userID, id uuid.UUID, f model.EventUpdate) (*model.Event, error) {
	s.mu.Lock()
	e, ok := s.events[id]
	if !ok || e.UserID != userID {
		s.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	if f.Title != nil {
		e.Title = *f.Title
	}
	if f.Status != nil {
		e.Status = *f.Status
	}
	s.events[id] = e
	s.mu.Unlock()
	return s.FindByID(ctx, userID, id)
}

func (s *memEventStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

type memStudio struct {
	profile model.StudioProfile
	hash    string
}

// memStudioStore is an in-memory studio CredentialStore that also serves the
// admin directory and email verification.
type memStudioStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*memStudio

	listLimit, listOffset int
}

func (s *memStudioStore) byEmail(email string) *memStudio {
	for _, r := range s.rows {
		if r.profile.Email == email {
			return r
		}
	}
	return nil
}

func (s *memStudioStore) cred(r *memStudio) *model.Credential {
	return &model.Credential{ID: r.profile.ID, Email: r.profile.Email, PasswordHash: r.hash, IsActive: r.profile.IsActive}
}

func (s *memStudioStore) FindCredentialByEmail(_ context.Context, email string) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.byEmail(email); r != nil {
		return s.cred(r), nil
	}
	return nil, repository.ErrNotFound
}

func (s *memStudioStore) FindCredentialByID(_ context.Context, id uuid.UUID) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[id]; ok {
		return s.cred(r), nil
	}
	return nil, repository.ErrNotFound
}

func (s *memStudioStore) Create(_ context.Context, email, hash string, f model.StudioRegistration) (*model.StudioProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byEmail(email) != nil {
		return nil, repository.ErrDuplicate
	}
	eventTypes := f.EventTypes
	if eventTypes == nil {
		eventTypes = []string{}
	}
	r := &memStudio{
		profile: model.StudioProfile{
			ID:                  uuid.New(),
			Email:               email,
			FirstName:           f.FirstName,
			LastName:            f.LastName,
			Phone:               f.Phone,
			DateOfBirth:         f.DateOfBirth,
			PhotographyType:     f.PhotographyType,
			EventTypes:          eventTypes,
			Budget:              f.Budget,
			PreferredDate:       f.PreferredDate,
			SubscribeNewsletter: f.SubscribeNewsletter,
			IsActive:            true,
			CreatedAt:           time.Now(),
		},
		hash: hash,
	}
	s.rows[r.profile.ID] = r
	cp := r.profile
	return &cp, nil
}

func (s *memStudioStore) FindByID(_ context.Context, id uuid.UUID) (*model.StudioProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[id]; ok {
		cp := r.profile
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (s *memStudioStore) Update(_ context.Context, id uuid.UUID, f model.StudioProfileUpdate) (*model.StudioProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := &r.profile
	if f.FirstName != nil {
		p.FirstName = *f.FirstName
	}
	if f.LastName != nil {
		p.LastName = *f.LastName
	}
	if f.Phone != nil {
		p.Phone = f.Phone
	}
	if f.DateOfBirth != nil {
		p.DateOfBirth = f.DateOfBirth
	}
	if f.PhotographyType != nil {
		p.PhotographyType = f.PhotographyType
	}
	if f.EventTypes != nil {
		p.EventTypes = f.EventTypes
	}
	if f.Budget != nil {
		p.Budget = f.Budget
	}
	if f.PreferredDate != nil {
		p.PreferredDate = f.PreferredDate
	}
	if f.SubscribeNewsletter != nil {
		p.SubscribeNewsletter = *f.SubscribeNewsletter
	}
	cp := *p
	return &cp, nil
}

func (s *memStudioStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.hash = hash
	return nil
}

func (s *memStudioStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.profile.IsActive = active
	return nil
}

func (s *memStudioStore) SetEmailVerified(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.profile.EmailVerified = true
	return nil
}

func (s *memStudioStore) List(_ context.Context, limit, offset int) ([]model.StudioProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listLimit, s.listOffset = limit, offset
	out := make([]model.StudioProfile, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r.profile)
	}
	slices.SortFunc(out, func(a, b model.StudioProfile) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if offset >= len(out) {
		return []model.StudioProfile{}, nil
	}
	return out[offset:min(offset+limit, len(out))], nil
}

type memToken struct {
	userID uuid.UUID
	exp    time.Time
}

type memVerificationStore struct {
	mu     sync.Mutex
	tokens map[string]memToken
}

func (s *memVerificationStore) Create(_ context.Context, id uuid.UUID, token string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = memToken{userID: id, exp: exp}
	return nil
}

func (s *memVerificationStore) GetStudioUserID(_ context.Context, token string, now time.Time) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	if !ok || !t.exp.After(now) {
		return uuid.Nil, repository.ErrNotFound
	}
	return t.userID, nil
}

func (s *memVerificationStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

// outbox captures verification links instead of mailing them.
type outbox struct {
	mu    sync.Mutex
	links map[string]string
}

func (o *outbox) SendVerificationEmail(_ context.Context, to, link string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.links[to] = link
	return nil
}

func (o *outbox) link(to string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.links[to]
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type testServer struct {
	e       *echo.Echo
	codec   *middleware.TokenCodec
	admins  *memAdminStore
	studios *memStudioStore
	outbox  *outbox
	events  *memEventStore
	metrics *observability.Metrics
	adminID uuid.UUID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.Discard()

	codec, err := middleware.NewTokenCodec("router-secret", "photocap-test")
	require.NoError(t, err)

	admins := &memAdminStore{rows: map[uuid.UUID]*memAdmin{}}
	adminAuth, err := services.NewAuthService[*model.AdminProfile, model.AdminRegistration, model.AdminProfileUpdate](admins, codec, services.TenantConfig{
		Tenant:     model.TenantAdmin,
		TTL:        middleware.AdminTokenTTL,
		BcryptCost: bcrypt.MinCost,
	}, log)
	require.NoError(t, err)

	seeded, err := adminAuth.Register(context.Background(), "admin@photocap.com", adminPassword, model.AdminRegistration{Name: "Root"})
	require.NoError(t, err)

	events := &memEventStore{events: map[uuid.UUID]model.Event{}}
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	studios := &memStudioStore{rows: map[uuid.UUID]*memStudio{}}
	studioAuth, err := services.NewAuthService[*model.StudioProfile, model.StudioRegistration, model.StudioProfileUpdate](studios, codec, services.TenantConfig{
		Tenant:     model.TenantStudio,
		TTL:        middleware.StudioTokenTTL,
		BcryptCost: bcrypt.MinCost,
	}, log)
	require.NoError(t, err)

	mail := &outbox{links: map[string]string{}}
	verify := services.NewEmailVerificationService(
		&memVerificationStore{tokens: map[string]memToken{}},
		studios, mail, services.NewLocalValidator(), testBaseURL, log)
	studioAuth.WithHooks(verify.StudioHooks())

	ts := &testServer{codec: codec, admins: admins, studios: studios, outbox: mail, events: events, metrics: metrics, adminID: seeded.Profile.ID}
	ts.e = newServer(serverDeps{
		log:         log,
		codec:       codec,
		metrics:     metrics,
		db:          pingFunc(func(context.Context) error { return nil }),
		adminAuth:   adminAuth.WithMetrics(metrics),
		studioAuth:  studioAuth,
		studioUsers: services.NewStudioUserService(studios, studioAuth),
		verify:      verify,
		events:      services.NewEventService(events),
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+token) }
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (ts *testServer) adminToken(t *testing.T) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/admin/login", `{"email":"admin@photocap.com","password":"`+adminPassword+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode(t, rec)["token"].(string)
}

// studioToken stores an active studio user and signs a session for it.
func (ts *testServer) studioToken(t *testing.T, email string) (uuid.UUID, string) {
	t.Helper()
	r := &memStudio{profile: model.StudioProfile{
		ID: uuid.New(), Email: email, FirstName: "Ada", LastName: "Lens",
		EventTypes: []string{}, IsActive: true, CreatedAt: time.Now(),
	}}
	ts.studios.mu.Lock()
	ts.studios.rows[r.profile.ID] = r
	ts.studios.mu.Unlock()
	tok, err := ts.codec.Issue(r.profile.Principal(), middleware.StudioTokenTTL)
	require.NoError(t, err)
	return r.profile.ID, tok
}

func TestAdminLogin_SetsCookieAndHidesHash(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/admin/login", `{"email":"ADMIN@photocap.com","password":"`+adminPassword+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.NotEmpty(t, body["token"])
	admin := body["admin"].(map[string]any)
	assert.Equal(t, "admin@photocap.com", admin["email"])
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.AdminCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, int(middleware.AdminTokenTTL.Seconds()), cookie.MaxAge)
}

func TestAdminLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	ts := newTestServer(t)

	wrong := ts.do(t, http.MethodPost, "/api/admin/login", `{"email":"admin@photocap.com","password":"Nope12345"}`)
	unknown := ts.do(t, http.MethodPost, "/api/admin/login", `{"email":"ghost@photocap.com","password":"Nope12345"}`)

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.JSONEq(t, wrong.Body.String(), unknown.Body.String())
}

func TestAdminLogin_ValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/admin/login", `{"email":"not-an-email"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Validation failed", body["message"])
	fields := map[string]bool{}
	for _, e := range body["errors"].([]any) {
		fields[e.(map[string]any)["field"].(string)] = true
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
}

func TestAdminLogin_MalformedBody(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/admin/login", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decode(t, rec)["message"])
}

func TestAdminRoutes_RequireSession(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/admin/profile", "/api/admin/verify-token", "/api/admin/studio-users"} {
		rec := ts.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, middleware.MsgNoToken, decode(t, rec)["message"], path)
	}

	rec := ts.do(t, http.MethodPost, "/api/admin/register", `{"email":"x@y.com","password":"Secret123","name":"X"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminProfile_WithToken(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.adminToken(t)

	rec := ts.do(t, http.MethodGet, "/api/admin/profile", "", bearer(tok))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin@photocap.com", decode(t, rec)["admin"].(map[string]any)["email"])
}

func TestAdminRegister_DuplicateIsConflict(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.adminToken(t)

	body := `{"email":"second@photocap.com","password":"Secret123","name":"Second"}`
	rec := ts.do(t, http.MethodPost, "/api/admin/register", body, bearer(tok))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	// registering another admin leaves the caller's session alone
	assert.Empty(t, rec.Result().Cookies())

	rec = ts.do(t, http.MethodPost, "/api/admin/register", body, bearer(tok))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminRegister_WeakPassword(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.adminToken(t)

	rec := ts.do(t, http.MethodPost, "/api/admin/register", `{"email":"weak@photocap.com","password":"alllowercase","name":"Weak"}`, bearer(tok))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "uppercase")
}

func TestAdminChangePassword_Mismatch(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.adminToken(t)

	rec := ts.do(t, http.MethodPost, "/api/admin/change-password", `{"currentPassword":"Wrong1234","newPassword":"Better123"}`, bearer(tok))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Current password is incorrect", decode(t, rec)["message"])
}

func TestAdminLogout_ClearsCookie(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.adminToken(t)

	rec := ts.do(t, http.MethodPost, "/api/admin/logout", "", bearer(tok))
	require.Equal(t, http.StatusOK, rec.Code)

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.AdminCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestDeactivatedAdmin_LosesSessionAndLogin(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.adminToken(t)
	require.NoError(t, ts.admins.SetActive(context.Background(), ts.adminID, false))

	rec := ts.do(t, http.MethodGet, "/api/admin/profile", "", bearer(tok))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, middleware.MsgIdentityRejected, decode(t, rec)["message"])

	rec = ts.do(t, http.MethodPost, "/api/admin/login", `{"email":"admin@photocap.com","password":"`+adminPassword+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Account is deactivated", decode(t, rec)["message"])
}

func TestAdminToken_RejectedOnStudioRoutes(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.adminToken(t)

	rec := ts.do(t, http.MethodGet, "/api/studio/profile", "", bearer(tok))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, middleware.MsgInvalidToken, decode(t, rec)["message"])
}

func TestStudioRoutes_PublicAndGated(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/studio/profile", "/api/studio/events", "/api/studio/clients", "/api/studio/check-auth"} {
		rec := ts.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	// verify-email is reachable without a session
	rec := ts.do(t, http.MethodGet, "/api/studio/verify-email", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/healthz", "").Code)
}

func TestHealthz_DatabaseDown(t *testing.T) {
	rec := httptest.NewRecorder()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)

	err := healthHandler(pingFunc(func(context.Context) error { return errors.New("refused") }))(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.adminToken(t)

	rec := ts.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `photocap_auth_events_total{operation="login",outcome="success",tenant="admin"} 1`)
	assert.Contains(t, rec.Body.String(), `photocap_http_requests_total{method="POST",path="/api/admin/login",status="200"} 1`)
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	ts := newTestServer(t)
	ts.e = newServer(serverDeps{
		log:         logger.Discard(),
		codec:       ts.codec,
		corsOrigins: []string{"http://studio.test"},
	})

	rec := ts.do(t, http.MethodOptions, "/api/admin/login", "", func(r *http.Request) {
		r.Header.Set(echo.HeaderOrigin, "http://studio.test")
		r.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	})
	assert.Equal(t, "http://studio.test", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
}

const newEvent = `{
	"title": "Sharma Wedding",
	"eventType": "Wedding",
	"eventDate": "2030-02-14",
	"budget": "50000-100000",
	"clientName": "Priya Sharma",
	"clientEmail": "Priya@Example.com",
	"duration": 8
}`

func TestStudioEvents_CRUD(t *testing.T) {
	ts := newTestServer(t)
	_, tok := ts.studioToken(t, "owner@studio.com")

	rec := ts.do(t, http.MethodPost, "/api/studio/events", newEvent, bearer(tok))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "PLANNING", created["status"])
	assert.Equal(t, "priya@example.com", created["clientEmail"])
	id := created["id"].(string)

	rec = ts.do(t, http.MethodGet, "/api/studio/events", "", bearer(tok))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 1)

	rec = ts.do(t, http.MethodPut, "/api/studio/events/"+id, `{"status":"EDITING","title":"Sharma Reception"}`, bearer(tok))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "EDITING", updated["status"])
	assert.Equal(t, "Sharma Reception", updated["title"])

	rec = ts.do(t, http.MethodDelete, "/api/studio/events/"+id, "", bearer(tok))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/studio/events/"+id, "", bearer(tok))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudioEvents_InvalidPayload(t *testing.T) {
	ts := newTestServer(t)
	_, tok := ts.studioToken(t, "owner@studio.com")

	rec := ts.do(t, http.MethodPost, "/api/studio/events", `{"title":"x","eventDate":"14/02/2030","clientEmail":"nope","status":"DONE","duration":30}`, bearer(tok))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	fields := map[string]bool{}
	for _, e := range decode(t, rec)["errors"].([]any) {
		fields[e.(map[string]any)["field"].(string)] = true
	}
	for _, f := range []string{"eventType", "eventDate", "budget", "clientName", "clientEmail", "status", "duration"} {
		assert.True(t, fields[f], f)
	}
}

func TestStudioEvents_OtherUsersEventsAreInvisible(t *testing.T) {
	ts := newTestServer(t)
	_, owner := ts.studioToken(t, "owner@studio.com")
	_, other := ts.studioToken(t, "other@studio.com")

	rec := ts.do(t, http.MethodPost, "/api/studio/events", newEvent, bearer(owner))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec)["data"].(map[string]any)["id"].(string)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/studio/events/"+id, "", bearer(other)).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPut, "/api/studio/events/"+id, `{"title":"mine now"}`, bearer(other)).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/api/studio/events/"+id, "", bearer(other)).Code)

	rec = ts.do(t, http.MethodGet, "/api/studio/events", "", bearer(other))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["data"])
}

func TestStudioEvents_MalformedID(t *testing.T) {
	ts := newTestServer(t)
	_, tok := ts.studioToken(t, "owner@studio.com")

	rec := ts.do(t, http.MethodGet, "/api/studio/events/not-a-uuid", "", bearer(tok))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudioCheckAuth(t *testing.T) {
	ts := newTestServer(t)
	_, tok := ts.studioToken(t, "owner@studio.com")

	rec := ts.do(t, http.MethodGet, "/api/studio/check-auth", "", bearer(tok))
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "owner@studio.com", user["email"])
	assert.Equal(t, "studio", user["tenant"])
}

func TestStudioToken_RejectedOnAdminRoutes(t *testing.T) {
	ts := newTestServer(t)
	_, tok := ts.studioToken(t, "owner@studio.com")

	rec := ts.do(t, http.MethodGet, "/api/admin/profile", "", bearer(tok))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
