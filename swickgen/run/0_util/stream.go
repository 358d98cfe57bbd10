// Package textutil provides the indentation-tracking text accumulator used by code generation.
package textutil

import (
	"fmt"
	"strings"
)

// Stream accumulates lines of generated code at the current indentation level.
type Stream struct {
	buf         strings.Builder
	unit        string
	indentation []string
}

// NewStream returns an empty Stream that indents nested blocks by unit.
func NewStream(unit string) *Stream {
	return &Stream{unit: unit}
}

// Indent runs body one indentation level deeper. The level is restored when body returns or panics.
func (s *Stream) Indent(body func()) {
	s.enterBlock()
	defer s.exitBlock()

	body()
}

// Line appends text as a line at the current indentation. Empty lines carry no indentation.
func (s *Stream) Line(text string) {
	if text != "" {
		for _, level := range s.indentation {
			s.buf.WriteString(level)
		}

		s.buf.WriteString(text)
	}

	s.buf.WriteByte('\n')
}

// Linef formats according to a format specifier and appends the result as a line.
func (s *Stream) Linef(format string, args ...any) {
	s.Line(fmt.Sprintf(format, args...))
}

// Lines appends each of texts as a line.
func (s *Stream) Lines(texts ...string) {
	for _, text := range texts {
		s.Line(text)
	}
}

// String returns everything written so far.
func (s *Stream) String() string {
	return s.buf.String()
}

func (s *Stream) enterBlock() {
	s.indentation = append(s.indentation, s.unit)
}

func (s *Stream) exitBlock() {
	if len(s.indentation) == 0 {
		return
	}

	s.indentation = s.indentation[:len(s.indentation)-1]
}
