package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const memorySweepInterval = time.Minute

type memoryEntry struct {
	values  Values
	expires time.Time
}

// MemoryStorage keeps sessions in process memory. Meant for tests and single
// instance deployments; everything is lost on restart.
type MemoryStorage struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	lastSweep time.Time
	ids       idCookie
	now       func() time.Time
}

func NewMemoryStorage(codec *Codec, options CookieOptions) *MemoryStorage {
	return &MemoryStorage{
		entries: make(map[string]memoryEntry),
		ids:     idCookie{codec: codec, options: options.withDefaults()},
		now:     time.Now,
	}
}

func (s *MemoryStorage) Load(r *http.Request) (Values, error) {
	id, err := s.ids.read(r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.maybeSweepLocked(now)

	entry, ok := s.entries[id]
	if !ok {
		return Values{}, nil
	}
	if now.After(entry.expires) {
		delete(s.entries, id)
		return Values{}, nil
	}

	values := make(Values, len(entry.values))
	for k, v := range entry.values {
		values[k] = v
	}
	return values, nil
}

// Save stores values under a fresh id and drops the one the request carried,
// so an id known before sign in never names the signed in session.
func (s *MemoryStorage) Save(w http.ResponseWriter, r *http.Request, values Values) error {
	previous, _ := s.ids.read(r)
	id := uuid.NewString()

	stored := make(Values, len(values))
	for k, v := range values {
		stored[k] = v
	}

	s.mu.Lock()
	now := s.now()
	s.maybeSweepLocked(now)
	if previous != "" {
		delete(s.entries, previous)
	}
	s.entries[id] = memoryEntry{values: stored, expires: now.Add(s.ids.options.TTL)}
	s.mu.Unlock()

	return s.ids.write(w, id)
}

func (s *MemoryStorage) Clear(w http.ResponseWriter, r *http.Request) error {
	id, _ := s.ids.read(r)
	s.ids.expire(w)

	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) maybeSweepLocked(now time.Time) {
	if now.Sub(s.lastSweep) < memorySweepInterval {
		return
	}
	s.lastSweep = now
	for id, entry := range s.entries {
		if now.After(entry.expires) {
			delete(s.entries, id)
		}
	}
}

// Len is the number of stored sessions. Expired ones count until the next
// sweep, at most a minute after they expire and someone uses the storage.
func (s *MemoryStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
