// Package stream relays a pull-based text source to a writer as
// "data: {...}\n\n" frames terminated by a "data: [DONE]" frame.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Source is a pull iterator over text fragments. Next advances; Content is
// the current fragment; Err reports why iteration stopped early.
type Source interface {
	Next() bool
	Content() string
	Err() error
	Close() error
}

const donePayload = "[DONE]"

type frame struct {
	Content string `json:"content"`
}

// Relay copies src to w until src is exhausted, src fails, or ctx ends.
// A [DONE] frame is written only on a clean end. src is always closed.
func Relay(ctx context.Context, w io.Writer, src Source) (err error) {
	if src == nil {
		return errors.New("stream: source must not be nil")
	}
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil && ctx.Err() == nil {
			err = fmt.Errorf("stream: close source: %w", cerr)
		}
	}()

	flusher, _ := w.(http.Flusher)
	for src.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		content := src.Content()
		if content == "" {
			continue
		}
		payload, err := encode(content)
		if err != nil {
			return err
		}
		if err := write(w, flusher, payload); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := src.Err(); err != nil {
		return fmt.Errorf("stream: source: %w", err)
	}
	return write(w, flusher, []byte(donePayload))
}

// encode renders a content frame payload with HTML left unescaped.
func encode(content string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(frame{Content: content}); err != nil {
		return nil, fmt.Errorf("stream: encode frame: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func write(w io.Writer, flusher http.Flusher, payload []byte) error {
	buf := make([]byte, 0, len(payload)+8)
	buf = append(buf, "data: "...)
	buf = append(buf, payload...)
	buf = append(buf, "\n\n"...)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("stream: write frame: %w", err)
	}
	if flusher != nil {
		flusher.Flush()
	}
	return nil
}

// Text returns a Source that yields s as a single fragment.
func Text(s string) Source {
	return Fragments(s)
}

// Fragments returns a Source over a fixed list of fragments.
func Fragments(parts ...string) Source {
	return &sliceSource{parts: parts, pos: -1}
}

type sliceSource struct {
	parts  []string
	pos    int
	closed bool
}

func (s *sliceSource) Next() bool {
	if s.closed || s.pos+1 >= len(s.parts) {
		return false
	}
	s.pos++
	return true
}

func (s *sliceSource) Content() string {
	if s.pos < 0 || s.pos >= len(s.parts) {
		return ""
	}
	return s.parts[s.pos]
}

func (s *sliceSource) Err() error { return nil }

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}
