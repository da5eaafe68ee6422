package view

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookie = "delrio_flash"

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

// Flash is a one-shot notification shown at the top of the next page.
type Flash struct {
	Kind    FlashKind `json:"k"`
	Message string    `json:"m"`
}

func Success(message string) *Flash {
	return &Flash{Kind: FlashSuccess, Message: message}
}

func Error(message string) *Flash {
	return &Flash{Kind: FlashError, Message: message}
}

func Info(message string) *Flash {
	return &Flash{Kind: FlashInfo, Message: message}
}

// SetFlash stores a flash for the page the visitor is redirected to.
func SetFlash(w http.ResponseWriter, flash *Flash, secure bool) {
	if flash == nil {
		return
	}

	data, err := json.Marshal(flash)
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TakeFlash returns the pending flash, if any, and removes it.
func TakeFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var flash Flash
	if err := json.Unmarshal(data, &flash); err != nil || flash.Message == "" {
		return nil
	}
	switch flash.Kind {
	case FlashSuccess, FlashError, FlashInfo:
	default:
		flash.Kind = FlashInfo
	}
	return &flash
}
