package service

import (
	"sort"
	"strings"
	"unicode"

	"product-matcher/internal/utils"
)

// NormalizeModel: единственная нормализация модели, и для каталога при
// загрузке, и для входа. Результаты сравниваются через == и повторно не
// нормализуются.
func NormalizeModel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type runeKind int

const (
	kindOther runeKind = iota
	kindLetter
	kindDigit
	kindHan
)

func classify(r rune) runeKind {
	switch {
	case utils.IsHan(r):
		return kindHan
	case unicode.IsDigit(r):
		return kindDigit
	case unicode.IsLetter(r):
		return kindLetter
	}
	return kindOther
}

// tokenize режет текст на серии букв, цифр и иероглифов. Буквенная серия,
// целиком собранная из суффиксов, режется дальше: "promax" -> pro, max,
// а "watchgt" остаётся целым.
func tokenize(s string, suffixes map[string]bool) []string {
	var (
		out  []string
		cur  []rune
		kind runeKind
	)
	flush := func() {
		if len(cur) == 0 {
			return
		}
		tok := string(cur)
		if kind == kindLetter {
			out = append(out, splitSuffixes(tok, suffixes)...)
		} else {
			out = append(out, tok)
		}
		cur = cur[:0]
	}
	for _, r := range strings.ToLower(s) {
		k := classify(r)
		if k != kind {
			flush()
			kind = k
		}
		if k != kindOther {
			cur = append(cur, r)
		}
	}
	flush()
	return out
}

func splitSuffixes(tok string, suffixes map[string]bool) []string {
	if suffixes[tok] || len(suffixes) == 0 {
		return []string{tok}
	}
	if parts, ok := decompose(tok, suffixes); ok && len(parts) > 1 {
		return parts
	}
	return []string{tok}
}

// decompose: сначала длинные куски, с откатом.
func decompose(s string, suffixes map[string]bool) ([]string, bool) {
	if s == "" {
		return nil, true
	}
	for n := len(s); n > 0; n-- {
		head := s[:n]
		if !suffixes[head] {
			continue
		}
		if rest, ok := decompose(s[n:], suffixes); ok {
			return append([]string{head}, rest...), true
		}
	}
	return nil, false
}

// longTokens: уникальные токены длиннее двух символов.
func longTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if utils.RuneLen(t) <= 2 || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// containsWord: иероглифы ищем подстрокой, латиницу целым словом
// (по краям не буква и не цифра).
func containsWord(text, word string) bool {
	return indexWord(text, word) >= 0
}

func indexWord(text, word string) int {
	if word == "" {
		return -1
	}
	if utils.HasHan(word) {
		return strings.Index(text, word)
	}
	from := 0
	for {
		i := strings.Index(text[from:], word)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(word)
		if boundaryBefore(text, i) && boundaryAfter(text, end) {
			return i
		}
		from = i + 1
		if from >= len(text) {
			return -1
		}
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r := lastRune(text[:i])
	return !isASCIIAlnum(r)
}

func boundaryAfter(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r := []rune(text[end:])[0]
	return !isASCIIAlnum(r)
}

func lastRune(s string) rune {
	rs := []rune(s)
	return rs[len(rs)-1]
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// replaceWords применяет таблицу замен. Латинские ключи заменяются целым
// словом, иероглифы подстрокой. Длинные ключи первыми ("pro+" раньше "pro").
func replaceWords(text string, table map[string]string) string {
	if len(table) == 0 || text == "" {
		return text
	}
	keys := make([]string, 0, len(table))
	for k := range table {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		text = replaceWord(text, strings.ToLower(k), table[k])
	}
	return text
}

func replaceWord(text, word, repl string) string {
	if utils.HasHan(word) || !isASCIIAlnum(lastRune(word)) {
		return strings.ReplaceAll(text, word, repl)
	}
	var b strings.Builder
	from := 0
	for {
		i := indexWord(text[from:], word)
		if i < 0 {
			b.WriteString(text[from:])
			return b.String()
		}
		b.WriteString(text[from : from+i])
		b.WriteString(repl)
		from += i + len(word)
	}
}

// sortedByLength: копия, длинные первыми (в рунах), стабильно.
func sortedByLength(words []string) []string {
	out := append([]string(nil), words...)
	sort.SliceStable(out, func(i, j int) bool {
		return utils.RuneLen(out[i]) > utils.RuneLen(out[j])
	})
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
