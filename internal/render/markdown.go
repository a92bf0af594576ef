// Package render turns bot replies into styled terminal output.
package render

import (
	"os"
	"strings"

	"github.com/diogo/geminichat/internal/config"
)

// Options configures the markdown renderer behavior.
type Options struct {
	// Width is the word-wrap column
	Width int

	// Style is a glamour style name ("dark", "light", "dracula",
	// "tokyo-night", "notty", "ascii") or a path to a JSON style file
	Style string

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return FromConfig(config.DefaultMarkdownConfig(), 80)
}

// FromConfig builds Options from the user's markdown settings. GLAMOUR_STYLE
// overrides the configured style.
func FromConfig(md config.MarkdownConfig, width int) Options {
	opts := Options{
		Width:            width,
		Style:            md.Style,
		EnableEmoji:      md.EnableEmoji,
		PreserveNewLines: md.PreserveNewLines,
		TableWrap:        md.TableWrap,
		InlineTableLinks: md.InlineTableLinks,
	}
	if opts.Style == "" {
		opts.Style = "dark"
	}
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}
	return opts
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns Options with the specified style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// Markdown renders content for terminal display. Trailing newlines added by
// glamour are trimmed so the result can be placed inside a bubble.
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	out, err := renderer.Render(content)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// MarkdownOrPlain renders content and falls back to the raw text when the
// renderer fails, so a reply is never lost to a styling problem.
func MarkdownOrPlain(content string, opts Options) string {
	out, err := Markdown(content, opts)
	if err != nil {
		return content
	}
	return out
}

// StyleInfo describes one of glamour's built-in markdown styles
type StyleInfo struct {
	Name        string
	Description string
}

var markdownStyles = []StyleInfo{
	{"dark", "Default dark terminal style"},
	{"light", "For light terminal backgrounds"},
	{"dracula", "Dracula color scheme"},
	{"tokyo-night", "Tokyo Night color scheme"},
	{"pink", "Pink accents"},
	{"ascii", "Plain ASCII, no colors"},
	{"notty", "No styling, for pipes and files"},
}

// MarkdownStyles lists the built-in styles accepted by Options.Style
func MarkdownStyles() []StyleInfo {
	out := make([]StyleInfo, len(markdownStyles))
	copy(out, markdownStyles)
	return out
}
