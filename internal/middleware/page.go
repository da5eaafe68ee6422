package middleware

import (
	"html/template"
	"net/http"
)

// statusPage is the bare page middleware renders when a request never
// reaches a handler. It does not depend on the site layout.
type statusPage struct {
	Title   string
	Message string
	Refresh int
}

var statusTemplate = template.Must(template.New("status").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{if .Refresh}}<meta http-equiv="refresh" content="{{.Refresh}}">{{end}}
<title>{{.Title}} | Del Rio Stay &amp; Resort</title>
<link rel="stylesheet" href="/static/site.css">
</head>
<body class="status-page">
<main>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
<a href="/">Back to home</a>
</main>
</body>
</html>
`))

func writePage(w http.ResponseWriter, status int, page statusPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = statusTemplate.Execute(w, page)
}
