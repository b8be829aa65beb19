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
)

// Span is a half-open range [start,end) of character offsets within a
// program.
type Span struct {
	start int
	end   int
}

// NewSpan constructs a span, which must not end before it starts.
func NewSpan(start int, end int) Span {
	if start > end {
		panic(fmt.Sprintf("invalid span [%d,%d)", start, end))
	}
	//
	return Span{start, end}
}

// Start returns the offset of the first character.
func (p *Span) Start() int {
	return p.start
}

// End returns the offset just after the last character.
func (p *Span) End() int {
	return p.end
}

// Length returns the number of characters spanned.
func (p *Span) Length() int {
	return p.end - p.start
}

// Map records where each parsed term came from, so the compiler can report
// errors against the exact text of a declaration or statement.
type Map[T comparable] struct {
	spans   map[T]Span
	srcfile *File
}

// NewSourceMap constructs an empty map over a given program.
func NewSourceMap[T comparable](srcfile *File) *Map[T] {
	return &Map[T]{make(map[T]Span), srcfile}
}

// Source returns the program being mapped.
func (p *Map[T]) Source() *File {
	return p.srcfile
}

// Put records the span of a term.  Each term may be recorded only once.
func (p *Map[T]) Put(item T, span Span) {
	if _, ok := p.spans[item]; ok {
		panic(fmt.Sprintf("term %v already has a span", any(item)))
	}
	//
	p.spans[item] = span
}

// Get returns the span of a term, which must have been recorded.
func (p *Map[T]) Get(item T) Span {
	span, ok := p.spans[item]
	if !ok {
		panic(fmt.Sprintf("term %v has no span", any(item)))
	}
	//
	return span
}

// SyntaxError reports a message against the span of a term.
func (p *Map[T]) SyntaxError(item T, msg string) *SyntaxError {
	return p.srcfile.SyntaxError(p.Get(item), msg)
}
