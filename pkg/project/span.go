package project

import "strings"

func isIdentChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// identSpan locates the name token within text at or after from, honoring
// identifier boundaries so a name that happens to be a substring of an
// earlier token (or of a keyword) is not matched. Parser positions point at
// the start of a definition or selection; the name token follows within it.
func identSpan(text string, from int, name string) (int, int) {
	if name == "" {
		return from, from
	}
	if from < 0 {
		from = 0
	}
	if from > len(text) {
		from = len(text)
	}
	for offset := from; offset <= len(text)-len(name); {
		i := strings.Index(text[offset:], name)
		if i < 0 {
			break
		}
		s := offset + i
		e := s + len(name)
		if (s == 0 || !isIdentChar(text[s-1])) && (e == len(text) || !isIdentChar(text[e])) {
			return s, e
		}
		offset = s + 1
	}
	end := from + len(name)
	if end > len(text) {
		end = len(text)
	}
	return from, end
}
