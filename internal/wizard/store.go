package wizard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one visitor's in-flight wizard. CreatedBy is set when the
// visitor presented a valid token; anonymous sessions submit with a nil
// creator.
//
// The wizard itself is not safe for concurrent use. Callers hold the
// session lock across every read or step change so that two requests on
// the same id serialize, and in particular so a second submit observes
// the terminal step instead of racing the first one into a duplicate
// lead.
type Session struct {
	ID        string
	Wizard    *Wizard
	CreatedBy *string
	UpdatedAt time.Time

	mu sync.Mutex
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Store keeps wizard sessions in memory. Closing the dialog deletes the
// session outright; abandoned sessions expire after the TTL.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	stop     chan struct{}
	once     sync.Once
}

func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Start creates a fresh session.
func (s *Store) Start(createdBy *string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{
		ID:        uuid.NewString(),
		Wizard:    New(),
		CreatedBy: createdBy,
		UpdatedAt: time.Now(),
	}
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns the session and refreshes its expiry.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if ok {
		sess.UpdatedAt = time.Now()
	}
	return sess, ok
}

// Delete discards a session and its draft. No partial save.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Close stops the expiry sweeper.
func (s *Store) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *Store) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-s.ttl)
			s.mu.Lock()
			for id, sess := range s.sessions {
				if sess.UpdatedAt.Before(cutoff) {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}
