package jsonget

// Byte-level scanning over JSON text. Every function takes the text and a
// position and returns the position just past what it consumed plus an ok
// flag; a false ok means the text is malformed at or after that position.

// maxDepth bounds container nesting while skipping.
const maxDepth = 512

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

// scanString consumes a string token starting at the opening quote s[i].
// escaped reports whether the token contains backslash escapes.
func scanString(s string, i int) (end int, escaped, ok bool) {
	n := len(s)
	for i++; i < n; i++ {
		c := s[i]
		switch {
		case c == '"':
			return i + 1, escaped, true
		case c == '\\':
			escaped = true
			i++
			if i >= n {
				return n, escaped, false
			}
			switch s[i] {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
			case 'u':
				if i+4 >= n {
					return n, escaped, false
				}
				for k := 1; k <= 4; k++ {
					if !isHex(s[i+k]) {
						return i + k, escaped, false
					}
				}
				i += 4
			default:
				return i, escaped, false
			}
		case c < 0x20:
			return i, escaped, false
		}
	}
	return n, escaped, false
}

// scanNumber consumes a number following the JSON grammar:
// -? (0 | [1-9][0-9]*) (. [0-9]+)? ([eE] [+-]? [0-9]+)?
func scanNumber(s string, i int) (int, bool) {
	n := len(s)
	if i < n && s[i] == '-' {
		i++
	}
	switch {
	case i >= n:
		return n, false
	case s[i] == '0':
		i++
	case isDigit(s[i]):
		for i < n && isDigit(s[i]) {
			i++
		}
	default:
		return i, false
	}
	if i < n && s[i] == '.' {
		i++
		start := i
		for i < n && isDigit(s[i]) {
			i++
		}
		if i == start {
			return i, false
		}
	}
	if i < n && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < n && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start := i
		for i < n && isDigit(s[i]) {
			i++
		}
		if i == start {
			return i, false
		}
	}
	return i, true
}

func scanLiteral(s string, i int, lit string) (int, bool) {
	if len(s)-i < len(lit) || s[i:i+len(lit)] != lit {
		return i, false
	}
	return i + len(lit), true
}

// skipValue consumes the value starting at s[i] and reports its kind. depth is
// the nesting level of the value's parent container.
func skipValue(s string, i, depth int) (int, Kind, bool) {
	if i >= len(s) {
		return i, Invalid, false
	}
	switch c := s[i]; {
	case c == '"':
		end, _, ok := scanString(s, i)
		return end, String, ok
	case c == '{':
		end, ok := skipObject(s, i, depth+1)
		return end, Object, ok
	case c == '[':
		end, ok := skipArray(s, i, depth+1)
		return end, Array, ok
	case c == 't':
		end, ok := scanLiteral(s, i, "true")
		return end, True, ok
	case c == 'f':
		end, ok := scanLiteral(s, i, "false")
		return end, False, ok
	case c == 'n':
		end, ok := scanLiteral(s, i, "null")
		return end, Null, ok
	case c == '-' || isDigit(c):
		end, ok := scanNumber(s, i)
		return end, Number, ok
	default:
		return i, Invalid, false
	}
}

func skipObject(s string, i, depth int) (int, bool) {
	if depth > maxDepth {
		return i, false
	}
	i = skipSpace(s, i+1)
	if i < len(s) && s[i] == '}' {
		return i + 1, true
	}
	for {
		if i >= len(s) || s[i] != '"' {
			return i, false
		}
		var ok bool
		if i, _, ok = scanString(s, i); !ok {
			return i, false
		}
		if i, ok = skipColon(s, i); !ok {
			return i, false
		}
		if i, _, ok = skipValue(s, i, depth); !ok {
			return i, false
		}
		i = skipSpace(s, i)
		switch {
		case i >= len(s):
			return i, false
		case s[i] == ',':
			i = skipSpace(s, i+1)
		case s[i] == '}':
			return i + 1, true
		default:
			return i, false
		}
	}
}

func skipArray(s string, i, depth int) (int, bool) {
	if depth > maxDepth {
		return i, false
	}
	i = skipSpace(s, i+1)
	if i < len(s) && s[i] == ']' {
		return i + 1, true
	}
	for {
		var ok bool
		if i, _, ok = skipValue(s, i, depth); !ok {
			return i, false
		}
		i = skipSpace(s, i)
		switch {
		case i >= len(s):
			return i, false
		case s[i] == ',':
			i = skipSpace(s, i+1)
		case s[i] == ']':
			return i + 1, true
		default:
			return i, false
		}
	}
}

// skipColon consumes optional whitespace, a colon, and more whitespace.
func skipColon(s string, i int) (int, bool) {
	i = skipSpace(s, i)
	if i >= len(s) || s[i] != ':' {
		return i, false
	}
	return skipSpace(s, i+1), true
}
