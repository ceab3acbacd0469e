// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/vfxgen/expr"
)

// Writer accumulates HLSL source text.
// The zero value is ready to use.
type Writer struct {
	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int

	// Open scopes, so ExitScope can detect misuse
	scopes int
}

// NewWriter creates an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// String returns the text written so far.
func (w *Writer) String() string {
	return w.out.String()
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.out.Len()
}

// Write writes text without indentation or newline. If args are provided,
// uses fmt.Fprintf.
//
//nolint:goprintffuncname
func (w *Writer) Write(format string, args ...any) {
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
}

// WriteLine writes an indented line with optional format args.
// An empty line is written without trailing indentation.
//
//nolint:goprintffuncname
func (w *Writer) WriteLine(format string, args ...any) {
	if format == "" && len(args) == 0 {
		w.out.WriteByte('\n')
		return
	}
	w.writeIndent()
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

// WriteLines writes a verbatim multi-line block, indenting every line.
// A trailing newline in text does not produce an extra empty line.
func (w *Writer) WriteLines(text string) {
	if text == "" {
		return
	}
	text = strings.TrimSuffix(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			w.out.WriteByte('\n')
			continue
		}
		w.writeIndent()
		w.out.WriteString(line)
		w.out.WriteByte('\n')
	}
}

// WriteComment writes text as line comments.
func (w *Writer) WriteComment(text string) {
	text = strings.TrimSuffix(text, "\n")
	for _, line := range strings.Split(text, "\n") {
		w.WriteLine("// %s", line)
	}
}

// EnterScope opens a brace-delimited scope.
func (w *Writer) EnterScope() {
	w.WriteLine("{")
	w.scopes++
	w.pushIndent()
}

// ExitScope closes the innermost scope opened by EnterScope.
func (w *Writer) ExitScope() error {
	if w.scopes == 0 {
		return NewError(ErrUnmatchedScope, "ExitScope without EnterScope")
	}
	w.scopes--
	w.popIndent()
	w.WriteLine("}")
	return nil
}

// Scopes returns the number of open scopes.
func (w *Writer) Scopes() int {
	return w.scopes
}

// writeIndent writes the current indentation.
func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

// pushIndent increases indentation.
func (w *Writer) pushIndent() {
	w.indent++
}

// popIndent decreases indentation.
func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

// WriteVariable writes "<type> <name> = <value>;".
func (w *Writer) WriteVariable(t expr.ValueType, name, value string) error {
	typeName, err := TypeName(t)
	if err != nil {
		return err
	}
	w.WriteLine("%s %s = %s;", typeName, name, value)
	return nil
}

// WriteDeclaration writes "<type> <name>;".
func (w *Writer) WriteDeclaration(t expr.ValueType, name string) error {
	typeName, err := TypeName(t)
	if err != nil {
		return err
	}
	w.WriteLine("%s %s;", typeName, name)
	return nil
}

// WriteAssignment writes "<name> = <value>;".
func (w *Writer) WriteAssignment(name, value string) {
	w.WriteLine("%s = %s;", name, value)
}
