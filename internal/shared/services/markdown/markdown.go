// Package markdown renders and sanitises free-text fields such as group
// descriptions.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

type Service interface {
	// ToHTMLSanitized renders markdown and strips anything outside the UGC policy.
	ToHTMLSanitized(markdown string) (string, error)
	// PlainText removes every HTML tag from input, leaving text only.
	PlainText(input string) string
}

type service struct {
	md     goldmark.Markdown
	ugc    *bluemonday.Policy
	strict *bluemonday.Policy
}

func NewService() Service {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
		),
		goldmark.WithRendererOptions(
			htmlrenderer.WithHardWraps(),
		),
	)

	ugc := bluemonday.UGCPolicy()
	ugc.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre")

	return &service{
		md:     md,
		ugc:    ugc,
		strict: bluemonday.StrictPolicy(),
	}
}

func (s *service) ToHTMLSanitized(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return s.ugc.Sanitize(buf.String()), nil
}

func (s *service) PlainText(input string) string {
	// StrictPolicy escapes what it keeps; stored text is unescaped.
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(input)))
}
