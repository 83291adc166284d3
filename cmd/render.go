package main

import (
	"io"
	"strings"

	"github.com/fatih/color"
)

const (
	redOpen = `<span style="color: red;">`
	spanEnd = `</span>`
)

// spanRenderer prints streamed text, replacing red span markup with terminal
// color. Text that may be the start of a tag is held until it can be decided.
type spanRenderer struct {
	out     io.Writer
	red     *color.Color
	pending string
}

func newSpanRenderer(out io.Writer) *spanRenderer {
	return &spanRenderer{out: out, red: color.New(color.FgRed)}
}

func (r *spanRenderer) Write(fragment string) error {
	r.pending += fragment
	for {
		open := strings.Index(r.pending, redOpen)
		if open < 0 {
			keep := partialPrefix(r.pending, redOpen)
			if err := r.plain(r.pending[:len(r.pending)-keep]); err != nil {
				return err
			}
			r.pending = r.pending[len(r.pending)-keep:]
			return nil
		}
		if err := r.plain(r.pending[:open]); err != nil {
			return err
		}
		r.pending = r.pending[open:]

		rest := r.pending[len(redOpen):]
		end := strings.Index(rest, spanEnd)
		if end < 0 {
			return nil
		}
		if err := r.plain(r.red.Sprint(rest[:end])); err != nil {
			return err
		}
		r.pending = rest[end+len(spanEnd):]
	}
}

// Flush writes whatever is still held, colouring an unterminated span.
func (r *spanRenderer) Flush() error {
	defer func() { r.pending = "" }()
	if strings.HasPrefix(r.pending, redOpen) {
		return r.plain(r.red.Sprint(r.pending[len(redOpen):]))
	}
	return r.plain(r.pending)
}

func (r *spanRenderer) plain(s string) error {
	if s == "" {
		return nil
	}
	_, err := io.WriteString(r.out, s)
	return err
}

// partialPrefix returns the length of the longest suffix of s that is a
// proper prefix of tag.
func partialPrefix(s, tag string) int {
	n := len(tag) - 1
	if n > len(s) {
		n = len(s)
	}
	for ; n > 0; n-- {
		if strings.HasSuffix(s, tag[:n]) {
			return n
		}
	}
	return 0
}
