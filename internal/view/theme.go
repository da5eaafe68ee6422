package view

import (
	"net/http"
	"time"
)

const themeCookie = "delrio_theme"

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func ThemeFromRequest(r *http.Request) Theme {
	cookie, err := r.Cookie(themeCookie)
	if err == nil && Theme(cookie.Value) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

func (t Theme) Toggled() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// SetTheme persists the theme for a year.
func SetTheme(w http.ResponseWriter, theme Theme, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    string(theme),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
