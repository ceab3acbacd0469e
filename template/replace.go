// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package template

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMarkerInFragment is returned for generated text containing "${".
var ErrMarkerInFragment = errors.New("template: generated text contains a marker")

// ReplaceMultiline replaces every occurrence of marker with value. The
// leading whitespace of the marker's line is repeated before every further
// line of value, so generated code keeps the indentation of the marker.
// A marker alone on its line that is replaced by nothing removes the line.
func ReplaceMultiline(text, marker, value string) string {
	if marker == "" {
		return text
	}
	value = strings.TrimSuffix(value, "\n")
	lines := strings.Split(value, "\n")

	var sb strings.Builder
	for {
		i := strings.Index(text, marker)
		if i < 0 {
			sb.WriteString(text)
			return sb.String()
		}
		lineStart := strings.LastIndexByte(text[:i], '\n') + 1
		before := text[lineStart:i]
		indent := before[:len(before)-len(strings.TrimLeft(before, " \t"))]
		rest := text[i+len(marker):]

		if value == "" && len(indent) == len(before) {
			lineEnd := strings.IndexByte(rest, '\n')
			if lineEnd < 0 {
				lineEnd = len(rest)
			}
			if strings.TrimSpace(rest[:lineEnd]) == "" {
				sb.WriteString(text[:lineStart])
				if lineEnd < len(rest) {
					lineEnd++
				}
				text = rest[lineEnd:]
				continue
			}
		}

		sb.WriteString(text[:i])
		for j, line := range lines {
			if j > 0 {
				sb.WriteByte('\n')
				if line != "" {
					sb.WriteString(indent)
				}
			}
			sb.WriteString(line)
		}
		text = rest
	}
}

// CheckFragment returns an error if generated text contains "${", which
// would be mistaken for a marker.
func CheckFragment(name, text string) error {
	if strings.Contains(text, "${") {
		return fmt.Errorf("%w: %s", ErrMarkerInFragment, name)
	}
	return nil
}
