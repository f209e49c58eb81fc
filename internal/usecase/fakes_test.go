package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ErlanBelekov/writing-assistant/internal/domain"
	"github.com/ErlanBelekov/writing-assistant/internal/email"
)

// ---- in-memory repositories ----

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User

	// err, when set, is returned by every method.
	err error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int64]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	r.nextID++
	now := time.Now()
	saved := *u
	saved.ID = r.nextID
	saved.CreatedAt, saved.UpdatedAt = now, now
	r.users[saved.ID] = &saved
	out := saved
	return &out, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindOrCreate(ctx context.Context, email, name string) (*domain.User, bool, error) {
	if u, err := r.FindByEmail(ctx, email); err == nil {
		return u, false, nil
	}
	u, err := r.Create(ctx, &domain.User{Email: email, Name: name})
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func (r *memUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type memContentRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*domain.Content
	err    error
}

func newMemContentRepo() *memContentRepo {
	return &memContentRepo{rows: make(map[int64]*domain.Content)}
}

func (r *memContentRepo) Create(_ context.Context, c *domain.Content) (*domain.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.nextID++
	now := time.Now().Add(time.Duration(r.nextID) * time.Millisecond)
	saved := *c
	saved.ID = r.nextID
	saved.CreatedAt, saved.UpdatedAt = now, now
	r.rows[saved.ID] = &saved
	out := saved
	return &out, nil
}

func (r *memContentRepo) ListByOwner(_ context.Context, userID int64) ([]*domain.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*domain.Content
	for _, c := range r.rows {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memContentRepo) GetByID(_ context.Context, id, userID int64) (*domain.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok || c.UserID != userID {
		return nil, domain.ErrContentNotFound
	}
	out := *c
	return &out, nil
}

func (r *memContentRepo) Update(_ context.Context, id, userID int64, patch domain.ContentPatch) (*domain.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok || c.UserID != userID {
		return nil, domain.ErrContentNotFound
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Body != nil {
		c.Body = *patch.Body
	}
	c.UpdatedAt = c.UpdatedAt.Add(time.Second)
	out := *c
	return &out, nil
}

func (r *memContentRepo) Delete(_ context.Context, id, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok || c.UserID != userID {
		return domain.ErrContentNotFound
	}
	delete(r.rows, id)
	return nil
}

// ---- collaborators ----

type fakeVerifier struct {
	verify func(ctx context.Context, idToken string) (domain.ExternalIdentity, error)
}

func (v *fakeVerifier) Verify(ctx context.Context, idToken string) (domain.ExternalIdentity, error) {
	return v.verify(ctx, idToken)
}

type fakeWriter struct {
	write func(ctx context.Context, topic string) (string, error)
}

func (w *fakeWriter) Write(ctx context.Context, topic string) (string, error) {
	return w.write(ctx, topic)
}

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *fakeEmailSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg.To)
	return s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
