package model

import (
	"encoding/json"
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

// ParseRole maps any claim or cached value onto one of the two known roles.
// Anything that is not recognisably the admin role becomes RoleUser.
func ParseRole(raw string) Role {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	if cleaned == "" {
		return RoleUser
	}
	if !strings.HasPrefix(cleaned, "ROLE_") {
		cleaned = "ROLE_" + cleaned
	}
	if Role(cleaned) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) Label() string {
	if r.IsAdmin() {
		return "Admin"
	}
	return "Guest"
}

type Identity struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name == "" {
		return i.Email
	}
	return name
}

type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        int64           `json:"id"`
		FirstName string          `json:"firstName"`
		LastName  string          `json:"lastName"`
		Email     string          `json:"email"`
		Role      json.RawMessage `json:"role"`
		Roles     []struct {
			Name string `json:"name"`
		} `json:"roles"`
		CreatedAt string `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	u.ID = raw.ID
	u.FirstName = raw.FirstName
	u.LastName = raw.LastName
	u.Email = raw.Email
	u.Role = RoleUser

	var role string
	if len(raw.Role) > 0 && json.Unmarshal(raw.Role, &role) == nil && role != "" {
		u.Role = ParseRole(role)
	}
	for _, r := range raw.Roles {
		if ParseRole(r.Name).IsAdmin() {
			u.Role = RoleAdmin
		}
	}

	u.CreatedAt = parseTimestamp(raw.CreatedAt)
	return nil
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", DateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
