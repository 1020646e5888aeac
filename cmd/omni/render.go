package main

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderer styles markdown responses for the terminal, degrading to plain
// text when styling is disabled or the renderer cannot initialize.
type renderer struct {
	tr *glamour.TermRenderer
}

func newRenderer(styled bool) *renderer {
	if !styled {
		return &renderer{}
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return &renderer{}
	}
	return &renderer{tr: tr}
}

func (r *renderer) render(text string) string {
	if r.tr == nil {
		return text
	}
	out, err := r.tr.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
