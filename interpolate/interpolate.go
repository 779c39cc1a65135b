// Copyright 2023 by Harald Albrecht
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package interpolate

import (
	"errors"
	"fmt"
	"strings"
)

// String substitutes all $VAR and ${VAR...} references in the specified
// string with values from the specified variables, returning the resulting
// plain text. “$$” escapes a literal dollar sign; a dollar sign not starting
// any variable reference is kept as-is.
func String(s string, vars map[string]string) (string, error) {
	var text strings.Builder
	for idx := 0; idx < len(s); idx++ {
		if s[idx] != '$' {
			text.WriteByte(s[idx])
			continue
		}
		idx++
		if idx >= len(s) {
			return "", errors.New("invalid stand-alone $ at end of string")
		}
		switch ch := s[idx]; {
		case ch == '$':
			text.WriteByte('$')
		case ch == '{':
			end := strings.IndexByte(s[idx:], '}')
			if end < 0 {
				return "", errors.New("unterminated ${")
			}
			value, err := resolveBraced(s[idx+1:idx+end], vars)
			if err != nil {
				return "", err
			}
			text.WriteString(value)
			idx += end
		case isNameStart(ch):
			name := scanName(s[idx:])
			text.WriteString(vars[name])
			idx += len(name) - 1
		default:
			// not a variable reference at all, such as in “win $100”.
			text.WriteByte('$')
			text.WriteByte(ch)
		}
	}
	return text.String(), nil
}

// resolveBraced resolves the contents of a braced ${...} reference: a
// variable name, optionally followed by a fallback operation and its literal
// fallback text.
func resolveBraced(ref string, vars map[string]string) (string, error) {
	name := scanName(ref)
	if name == "" {
		return "", errors.New("missing variable name after ${")
	}
	op := ref[len(name):]
	fallback := ""
	for _, known := range []string{":-", ":?", "-", "?"} {
		if strings.HasPrefix(op, known) {
			fallback = op[len(known):]
			op = known
			break
		}
	}
	value, ok := vars[name]
	switch op {
	case "":
		return value, nil
	case "-":
		if !ok {
			return fallback, nil
		}
		return value, nil
	case ":-":
		if !ok || value == "" {
			return fallback, nil
		}
		return value, nil
	case "?":
		if !ok {
			return "", unsetError(name, fallback)
		}
		return value, nil
	case ":?":
		if !ok || value == "" {
			return "", unsetError(name, fallback)
		}
		return value, nil
	}
	return "", fmt.Errorf("invalid variable reference ${%s}", ref)
}

func unsetError(name string, message string) error {
	if message == "" {
		return fmt.Errorf("required variable %q is unset", name)
	}
	return fmt.Errorf("required variable %q is unset: %s", name, message)
}

// scanName returns the leading variable name of the specified string, which
// might be empty.
func scanName(s string) string {
	for idx := 0; idx < len(s); idx++ {
		ch := s[idx]
		if isNameStart(ch) || (ch >= '0' && ch <= '9') {
			continue
		}
		return s[:idx]
	}
	return s
}

func isNameStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}
