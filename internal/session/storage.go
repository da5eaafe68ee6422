package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Keys under which the session is persisted. Logout clears all of them.
const (
	KeyToken     = "token"
	KeyUserRole  = "userRole"
	KeyUserID    = "userId"
	KeyUserEmail = "userEmail"
	KeyFirstName = "firstName"
	KeyLastName  = "lastName"
)

var AllKeys = []string{KeyToken, KeyUserRole, KeyUserID, KeyUserEmail, KeyFirstName, KeyLastName}

// Values is the persisted key/value view of one visitor's session.
type Values map[string]string

// Storage persists Values for one visitor. Save replaces everything that was
// stored before in a single write; Clear removes every key at once.
type Storage interface {
	Load(r *http.Request) (Values, error)
	Save(w http.ResponseWriter, r *http.Request, values Values) error
	Clear(w http.ResponseWriter, r *http.Request) error
}

// CookieOptions are shared by every backend that sets a cookie.
type CookieOptions struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

func (o CookieOptions) withDefaults() CookieOptions {
	if o.Name == "" {
		o.Name = "delrio_session"
	}
	if o.TTL <= 0 {
		o.TTL = 24 * time.Hour
	}
	return o
}

func (o CookieOptions) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     o.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(o.TTL.Seconds()),
		Expires:  time.Now().Add(o.TTL),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (o CookieOptions) expired() *http.Cookie {
	return &http.Cookie{
		Name:     o.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// CookieStorage keeps the whole session inside one sealed cookie.
type CookieStorage struct {
	codec   *Codec
	options CookieOptions
}

func NewCookieStorage(codec *Codec, options CookieOptions) *CookieStorage {
	return &CookieStorage{codec: codec, options: options.withDefaults()}
}

func (s *CookieStorage) Load(r *http.Request) (Values, error) {
	cookie, err := r.Cookie(s.options.Name)
	if err != nil || cookie.Value == "" {
		return Values{}, nil
	}

	plaintext, err := s.codec.Open(cookie.Value)
	if err != nil {
		return nil, err
	}

	values := Values{}
	if err := json.Unmarshal(plaintext, &values); err != nil {
		return nil, ErrMalformed
	}
	return values, nil
}

func (s *CookieStorage) Save(w http.ResponseWriter, _ *http.Request, values Values) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode session values: %w", err)
	}

	sealed, err := s.codec.Seal(data)
	if err != nil {
		return err
	}

	http.SetCookie(w, s.options.cookie(sealed))
	return nil
}

func (s *CookieStorage) Clear(w http.ResponseWriter, _ *http.Request) error {
	http.SetCookie(w, s.options.expired())
	return nil
}

// idCookie carries an opaque session id for the server side backends.
type idCookie struct {
	codec   *Codec
	options CookieOptions
}

// read returns "" when the request carries no session id.
func (c idCookie) read(r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.options.Name)
	if err != nil || cookie.Value == "" {
		return "", nil
	}

	plaintext, err := c.codec.Open(cookie.Value)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (c idCookie) write(w http.ResponseWriter, id string) error {
	sealed, err := c.codec.Seal([]byte(id))
	if err != nil {
		return err
	}
	http.SetCookie(w, c.options.cookie(sealed))
	return nil
}

func (c idCookie) expire(w http.ResponseWriter) {
	http.SetCookie(w, c.options.expired())
}
