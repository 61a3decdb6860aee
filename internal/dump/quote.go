package dump

import "strings"

// unquote decodes a single- or double-quoted string literal. Single-quoted
// literals only escape a quote by doubling it; double-quoted literals also
// understand backslash escapes.
func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	q := s[0]
	if (q != '\'' && q != '"') || s[len(s)-1] != q {
		return "", false
	}
	body := s[1 : len(s)-1]

	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case ch == q:
			if i+1 < len(body) && body[i+1] == q {
				sb.WriteByte(q)
				i++
				continue
			}
			return "", false
		case ch == '\\' && q == '"':
			if i+1 >= len(body) {
				return "", false
			}
			i++
			switch body[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 'a':
				sb.WriteByte('\a')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'v':
				sb.WriteByte('\v')
			case '0':
				sb.WriteByte(0)
			default:
				sb.WriteByte(body[i])
			}
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String(), true
}

func isQuoted(s string) bool {
	_, ok := unquote(s)
	return ok
}
