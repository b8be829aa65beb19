// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package source

import (
	"fmt"
	"os"
)

// File holds the text of a program, decoded into runes so that spans index
// characters rather than bytes.
type File struct {
	filename string
	contents []rune
}

// ReadFile loads a program from disk.
func ReadFile(filename string) (*File, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	//
	return NewSourceFile(filename, bytes), nil
}

// NewSourceFile wraps the given bytes as a program text.
func NewSourceFile(filename string, bytes []byte) *File {
	return &File{filename, []rune(string(bytes))}
}

// Filename returns the name this program was loaded from.
func (s *File) Filename() string {
	return s.filename
}

// Contents returns the program text.
func (s *File) Contents() []rune {
	return s.contents
}

// SyntaxError reports a message against a span of this program.
func (s *File) SyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{s, span, msg}
}

// LineOf returns the line containing a given character offset.  An offset at
// or past the end of the text yields the last line.
func (s *File) LineOf(offset int) Line {
	var (
		number = 1
		start  = 0
	)
	//
	for i, c := range s.contents {
		if i == offset {
			break
		} else if c == '\n' {
			number++
			start = i + 1
		}
	}
	//
	end := start
	for end < len(s.contents) && s.contents[end] != '\n' {
		end++
	}
	//
	return Line{s.contents, Span{start, end}, number}
}

// Line is a single line of a program, excluding its terminating newline.
type Line struct {
	text   []rune
	span   Span
	number int
}

func (p *Line) String() string {
	return string(p.text[p.span.start:p.span.end])
}

// Number returns the line number, counting from 1.
func (p *Line) Number() int {
	return p.number
}

// Start returns the offset of the first character of this line.
func (p *Line) Start() int {
	return p.span.start
}

// Length returns the number of characters on this line.
func (p *Line) Length() int {
	return p.span.Length()
}

// SyntaxError is raised when a program cannot be parsed or compiled, and
// identifies the offending span of text.
type SyntaxError struct {
	srcfile *File
	span    Span
	msg     string
}

// SourceFile returns the program this error was reported against.
func (p *SyntaxError) SourceFile() *File {
	return p.srcfile
}

// Span returns the offending span of text.
func (p *SyntaxError) Span() Span {
	return p.span
}

// Message returns the message, without any location.
func (p *SyntaxError) Message() string {
	return p.msg
}

// Line returns the line on which the offending span starts.
func (p *SyntaxError) Line() Line {
	return p.srcfile.LineOf(p.span.start)
}

// Column returns the column at which the offending span starts, counting
// from 1.
func (p *SyntaxError) Column() int {
	line := p.Line()
	return p.span.start - line.Start() + 1
}

func (p *SyntaxError) Error() string {
	line := p.Line()
	return fmt.Sprintf("%s:%d:%d: %s", p.srcfile.filename, line.Number(), p.Column(), p.msg)
}
