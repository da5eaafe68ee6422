package session

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"delrio-stay/internal/model"
)

// Companions are the identity fields returned next to the token at login.
// They fill in whatever the token itself does not carry.
type Companions struct {
	Role      string
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// Store owns the session lifecycle: resolving it from storage on every
// request, login and logout.
type Store struct {
	storage Storage
	decoder *TokenDecoder
}

func NewStore(storage Storage, decoder *TokenDecoder) *Store {
	return &Store{storage: storage, decoder: decoder}
}

// Resolve returns the session of the request. A storage failure leaves the
// session Unknown; a bad or expired token is wiped and reads as Anonymous.
func (s *Store) Resolve(w http.ResponseWriter, r *http.Request) model.Session {
	values, err := s.storage.Load(r)
	if errors.Is(err, ErrMalformed) {
		s.clear(w, r)
		return model.AnonymousSession()
	}
	if err != nil {
		slog.WarnContext(r.Context(), "session storage unavailable", "error", err)
		return model.Session{}
	}

	token := values[KeyToken]
	if token == "" {
		return model.AnonymousSession()
	}

	identity, err := s.identify(token, values)
	if err != nil {
		slog.DebugContext(r.Context(), "discarding stored session", "error", err)
		s.clear(w, r)
		return model.AnonymousSession()
	}

	return model.Session{State: model.SessionAuthenticated, Token: token, User: identity}
}

// Login validates token and persists it with its companions in one write.
// An invalid token persists nothing.
func (s *Store) Login(w http.ResponseWriter, r *http.Request, token string, companions Companions) (model.Session, error) {
	values := Values{KeyToken: token}
	for key, value := range map[string]string{
		KeyUserRole:  companions.Role,
		KeyUserID:    companions.ID,
		KeyUserEmail: companions.Email,
		KeyFirstName: companions.FirstName,
		KeyLastName:  companions.LastName,
	} {
		if value != "" {
			values[key] = value
		}
	}
	if _, ok := values[KeyUserRole]; !ok {
		values[KeyUserRole] = string(model.RoleUser)
	}

	identity, err := s.identify(token, values)
	if err != nil {
		return model.AnonymousSession(), err
	}

	if err := s.storage.Save(w, r, values); err != nil {
		return model.AnonymousSession(), fmt.Errorf("persist session: %w", err)
	}

	return model.Session{State: model.SessionAuthenticated, Token: token, User: identity}, nil
}

// Logout removes every persisted key. Calling it without a session is a no-op.
func (s *Store) Logout(w http.ResponseWriter, r *http.Request) error {
	if err := s.storage.Clear(w, r); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) identify(token string, values Values) (model.Identity, error) {
	claims, err := s.decoder.Decode(token)
	if err != nil {
		return model.Identity{}, err
	}

	email := firstNonEmpty(claims.Subject, claims.Email, values[KeyUserEmail])
	if email == "" {
		return model.Identity{}, fmt.Errorf("%w: no subject", model.ErrInvalidToken)
	}

	return model.Identity{
		ID:        firstNonEmpty(claims.ID, values[KeyUserID]),
		FirstName: firstNonEmpty(claims.FirstName, values[KeyFirstName]),
		LastName:  firstNonEmpty(claims.LastName, values[KeyLastName]),
		Email:     email,
		Role:      model.ParseRole(firstNonEmpty(claims.Role, values[KeyUserRole])),
	}, nil
}

func (s *Store) clear(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Clear(w, r); err != nil {
		slog.WarnContext(r.Context(), "failed to clear session", "error", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
