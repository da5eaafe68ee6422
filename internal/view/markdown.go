package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

//go:embed content
var contentFS embed.FS

// mdRenderer escapes raw HTML found in the markdown source.
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// ContentPages holds the static marketing pages rendered once at startup.
type ContentPages map[string]template.HTML

func LoadContentPages() (ContentPages, error) {
	files, err := fs.Glob(contentFS, "content/*.md")
	if err != nil {
		return nil, fmt.Errorf("list content pages: %w", err)
	}

	pages := make(ContentPages, len(files))
	for _, file := range files {
		source, err := contentFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}

		html, err := RenderMarkdown(source)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".md")] = html
	}
	return pages, nil
}

func RenderMarkdown(source []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert(source, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
