package view

import (
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode"

	"delrio-stay/internal/model"
)

var funcs = template.FuncMap{
	"money":    money,
	"imgsrc":   imgsrc,
	"initials": initials,
	"join":     strings.Join,
	"year":     func() int { return time.Now().Year() },
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"add": func(a, b int) int { return a + b },
	"roleLabel": func(r model.Role) string {
		return r.Label()
	},
}

func money(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// imgsrc lets image data URIs through html/template, which would otherwise
// replace them. Anything else is passed as a normal, still filtered URL.
func imgsrc(src string) template.URL {
	if strings.HasPrefix(src, "data:image/") {
		return template.URL(src)
	}
	if strings.HasPrefix(src, "https://") || strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "/") {
		return template.URL(src)
	}
	return template.URL(model.PlaceholderRoomPhoto)
}

func initials(first, last string) string {
	var b strings.Builder
	for _, part := range []string{first, last} {
		if part = strings.TrimSpace(part); part != "" {
			b.WriteRune(unicode.ToUpper([]rune(part)[0]))
		}
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}
