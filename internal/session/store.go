// Package session holds the workstation's single authenticated session and keeps
// it in step with the token's lifetime.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultExpiryLead    = 30 * time.Second
	defaultCheckInterval = 60 * time.Second
	storageTimeout       = 5 * time.Second
)

// Store is the only writer of session state.
// Both timers call Logout; a timer armed for an earlier login is ignored once a
// newer login or a logout has bumped the generation.
type Store struct {
	storage Storage
	log     *zap.Logger

	// persistMu orders storage writes the same way as the state changes
	// they record. Taken before mu, never while holding it.
	persistMu sync.Mutex

	now           func() time.Time
	expiryLead    time.Duration
	checkInterval time.Duration

	mu          sync.Mutex
	state       State
	gen         uint64
	expiryTimer *time.Timer
	stopCheck   chan struct{}
	subs        map[int]func(State)
	nextSub     int
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithExpiryLead sets how long before "exp" the session is ended (default 30s).
func WithExpiryLead(d time.Duration) Option {
	return func(s *Store) { s.expiryLead = d }
}

// WithCheckInterval sets the periodic re-validation interval (default 60s).
func WithCheckInterval(d time.Duration) Option {
	return func(s *Store) { s.checkInterval = d }
}

// NewStore returns a store in the Loading state. Call Initialize once.
func NewStore(storage Storage, log *zap.Logger, opts ...Option) *Store {
	s := &Store{
		storage:       storage,
		log:           log,
		now:           time.Now,
		expiryLead:    defaultExpiryLead,
		checkInterval: defaultCheckInterval,
		state:         State{Loading: true},
		subs:          make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize restores a persisted session. A missing, unreadable or expired
// snapshot leaves the store unauthenticated with storage cleared.
func (s *Store) Initialize(ctx context.Context) {
	snap, err := s.storage.Load(ctx)
	switch {
	case err == nil && snap != nil && IsTokenValid(snap.Token, s.now()):
		user := snap.User
		s.mu.Lock()
		s.gen++
		s.state = State{User: &user, Token: snap.Token, IsAuthenticated: true}
		s.armLocked(s.gen, snap.Token)
		st := s.state
		s.mu.Unlock()

		s.log.Info("session restored",
			zap.String("employee_id", user.EmployeeID),
			zap.String("department", user.DepartmentName),
		)
		s.publish(st)
		return

	case err != nil && !errors.Is(err, ErrNoSnapshot):
		s.log.Warn("session snapshot unreadable, clearing", zap.Error(err))
	case err == nil:
		s.log.Info("stored session expired, clearing")
	}

	s.clear(ctx)
}

// Login records a freshly issued session, persists it and arms the expiry timer.
// A token that is already inside the expiry lead logs out immediately.
// Persistence failures are logged; the in-memory session stays authoritative.
func (s *Store) Login(ctx context.Context, user User, token string) {
	s.persistMu.Lock()
	s.mu.Lock()
	s.disarmLocked()
	s.gen++
	gen := s.gen
	u := user
	s.state = State{User: &u, Token: token, IsAuthenticated: true}
	s.mu.Unlock()

	if err := s.storage.Save(ctx, Snapshot{Token: token, User: user}); err != nil {
		s.log.Error("failed to persist session", zap.Error(err))
	}
	s.persistMu.Unlock()

	s.log.Info("user logged in",
		zap.String("employee_id", user.EmployeeID),
		zap.String("role", user.Role),
		zap.String("department", user.DepartmentName),
	)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.armLocked(gen, token)
	st := s.state
	s.mu.Unlock()

	s.publish(st)
}

// Logout clears memory and storage and stops both timers. Safe to call any
// number of times from any goroutine.
func (s *Store) Logout() {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	if s.reset(ctx, 0, false) {
		s.log.Info("user logged out")
	}
}

// State returns a copy of the current session.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// Token returns the bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// Subscribe registers fn for every state change and returns its cancel func.
// fn runs on the goroutine that caused the change, outside the store lock.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Close stops the timers without touching the session.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.disarmLocked()
}

func (s *Store) clear(ctx context.Context) {
	s.reset(ctx, 0, false)
}

// reset drops the session and reports whether one was authenticated. With
// onlyGen set it does nothing unless gen is still the current generation.
func (s *Store) reset(ctx context.Context, gen uint64, onlyGen bool) bool {
	s.persistMu.Lock()
	s.mu.Lock()
	if onlyGen && gen != s.gen {
		s.mu.Unlock()
		s.persistMu.Unlock()
		return false
	}
	s.gen++
	s.disarmLocked()
	wasAuthenticated := s.state.IsAuthenticated
	changed := wasAuthenticated || s.state.Loading
	s.state = State{}
	s.mu.Unlock()

	if err := s.storage.Clear(ctx); err != nil {
		s.log.Warn("failed to clear stored session", zap.Error(err))
	}
	s.persistMu.Unlock()

	if changed {
		s.publish(State{})
	}
	return wasAuthenticated
}

// armLocked starts the expiry timer and the periodic check for generation gen.
func (s *Store) armLocked(gen uint64, token string) {
	exp, err := Expiry(token)
	if err != nil {
		s.log.Warn("cannot schedule auto-logout", zap.Error(err))
		go s.expire(gen)
		return
	}

	delay := exp.Sub(s.now()) - s.expiryLead
	if delay <= 0 {
		go s.expire(gen)
		return
	}
	s.expiryTimer = time.AfterFunc(delay, func() { s.expire(gen) })

	stop := make(chan struct{})
	s.stopCheck = stop
	go s.watch(gen, token, stop)
}

func (s *Store) disarmLocked() {
	if s.expiryTimer != nil {
		s.expiryTimer.Stop()
		s.expiryTimer = nil
	}
	if s.stopCheck != nil {
		close(s.stopCheck)
		s.stopCheck = nil
	}
}

func (s *Store) watch(gen uint64, token string, stop <-chan struct{}) {
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !IsTokenValid(token, s.now()) {
				s.log.Info("token no longer valid, logging out")
				s.expire(gen)
				return
			}
		}
	}
}

func (s *Store) expire(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	if s.reset(ctx, gen, true) {
		s.log.Info("token expired - automatic logout")
	}
}

func (s *Store) publish(st State) {
	s.mu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
