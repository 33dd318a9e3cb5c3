package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/docvault/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID map[string]domain.User

	// injected errors (if set, method returns error)
	getByIDErr    error
	getByEmailErr error
	createErr     error
	updateErr     error
	deleteErr     error
	listErr       error

	updates int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]domain.User{}}
}

func (f *fakeUserRepo) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
}

func (f *fakeUserRepo) get(id string) (domain.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	return u, ok
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
	}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return domain.User{}, f.updateErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	u.Roles = u.Roles.Clone()
	f.byID[u.ID] = u
	f.updates++
	return u, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrUserNotFound()
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context, role domain.Role) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.User
	for _, u := range f.byID {
		if role == "" || u.Roles.Has(role) {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeHasher struct {
	hashFn func(pw string) (string, error)

	mu       sync.Mutex
	verifies int
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Verify(password, hash string) bool {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return hash == "hash:"+password
}

func (h *fakeHasher) verifyCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.verifies
}

// fakeSigner hands out opaque tokens and remembers their claims.
type fakeSigner struct {
	mu     sync.Mutex
	n      int
	issued map[string]TokenClaims
	now    func() time.Time

	signErr error
}

func newFakeSigner(now func() time.Time) *fakeSigner {
	return &fakeSigner{issued: map[string]TokenClaims{}, now: now}
}

func (s *fakeSigner) SignAccessToken(c TokenClaims) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.signErr != nil {
		return "", s.signErr
	}
	s.n++
	tok := fmt.Sprintf("tok-%d(%s)", s.n, c.SubjectID)
	s.issued[tok] = c
	return tok, nil
}

func (s *fakeSigner) VerifyAccessToken(token string) (TokenClaims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.issued[token]
	if !ok {
		return TokenClaims{}, domain.ErrTokenInvalid()
	}
	if !s.now().Before(c.ExpiresAt) {
		return TokenClaims{}, domain.ErrTokenExpired()
	}
	return c, nil
}

type fakeRegistry struct {
	mu      sync.Mutex
	entries map[string]time.Time

	revokeErr error
	lookupErr error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{entries: map[string]time.Time{}}
}

func (r *fakeRegistry) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.revokeErr != nil {
		return r.revokeErr
	}
	r.entries[token] = expiresAt
	return nil
}

func (r *fakeRegistry) IsRevoked(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lookupErr != nil {
		return false, r.lookupErr
	}
	_, ok := r.entries[token]
	return ok, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	err  error
	evts []UserEvent
}

func (p *fakePublisher) PublishUserEvent(ctx context.Context, evt UserEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.evts = append(p.evts, evt)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.evts))
	for _, e := range p.evts {
		out = append(out, e.Type)
	}
	return out
}

type fakeObserver struct {
	mu          sync.Mutex
	logins      map[string]int
	validations map[string]int
	revocations int
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{logins: map[string]int{}, validations: map[string]int{}}
}

func (o *fakeObserver) LoginAttempt(status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logins[status]++
}

func (o *fakeObserver) TokenValidation(status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.validations[status]++
}

func (o *fakeObserver) TokenRevoked() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.revocations++
}

/*
Test clock
*/

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

/*
Service factory for tests
*/

type testEnv struct {
	svc    *Service
	users  *fakeUserRepo
	hasher *fakeHasher
	signer *fakeSigner
	reg    *fakeRegistry
	pub    *fakePublisher
	obs    *fakeObserver
	clock  *testClock
	audits *[]auditEntry
}

func newSvcForTest(t *testing.T) *testEnv {
	t.Helper()

	clock := &testClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	env := &testEnv{
		users:  newFakeUserRepo(),
		hasher: &fakeHasher{},
		signer: newFakeSigner(clock.Now),
		reg:    newFakeRegistry(),
		pub:    &fakePublisher{},
		obs:    newFakeObserver(),
		clock:  clock,
		audits: &[]auditEntry{},
	}

	var mu sync.Mutex
	env.svc = NewService(env.users, env.hasher, env.signer, env.reg, env.pub, Config{AccessTTL: time.Hour}).
		WithClock(clock.Now).
		WithObserver(env.obs).
		WithAudit(func(_ context.Context, action string, fields map[string]string) {
			cp := map[string]string{}
			for k, v := range fields {
				cp[k] = v
			}
			mu.Lock()
			*env.audits = append(*env.audits, auditEntry{action: action, fields: cp})
			mu.Unlock()
		})

	if env.svc == nil {
		t.Fatalf("svc is nil")
	}
	return env
}

// seedUser stores a user with password "Password123!" and the given roles.
func (e *testEnv) seedUser(id, email string, roles ...domain.Role) domain.User {
	u := domain.User{
		ID:           id,
		Email:        email,
		PasswordHash: "hash:Password123!",
		CreatedAt:    e.clock.Now(),
		UpdatedAt:    e.clock.Now(),
	}
	u.SetRoles(domain.NewRoleSet(roles...))
	e.users.put(u)
	return u
}

/*
Small assertions
*/

func requireDomainCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	got := errorCode(err)
	if got != wantCode {
		t.Fatalf("expected domain code %q, got %q (err=%v)", wantCode, got, err)
	}
}

func lastAudit(audits *[]auditEntry) (auditEntry, bool) {
	if audits == nil || len(*audits) == 0 {
		return auditEntry{}, false
	}
	return (*audits)[len(*audits)-1], true
}

func requireAuditAction(t *testing.T, audits *[]auditEntry, wantAction string) auditEntry {
	t.Helper()
	e, ok := lastAudit(audits)
	if !ok {
		t.Fatalf("expected audit entry, got none")
	}
	if e.action != wantAction {
		t.Fatalf("expected audit action %q, got %q", wantAction, e.action)
	}
	return e
}

func requireAuditField(t *testing.T, e auditEntry, k, want string) {
	t.Helper()
	if got := e.fields[k]; got != want {
		t.Fatalf("expected audit field %q=%q, got %q (all=%v)", k, want, got, e.fields)
	}
}
