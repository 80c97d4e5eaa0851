// Package utils: текстовые хелперы для извлечения и чтения файлов.
package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var spaceReplacer = strings.NewReplacer(
	"\u00A0", " ", // NBSP
	"\u2009", " ", // узкий пробел
	"\u202F", " ", // узкий NBSP
	"\u3000", " ", // полноширинный пробел
	"\t", " ",
)

// Fold приводит текст к сравнимому виду: NFKC, полноширинные символы в
// обычные ((１２＋５１２) -> (12+512)), экзотические пробелы в ' ', нижний
// регистр, схлопнутые пробелы. Иероглифы не трогаем.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = width.Fold.String(s)
	s = spaceReplacer.Replace(s)
	s = strings.ToLower(s)
	return CollapseSpaces(s)
}

func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RuneLen: длина в символах. Все метрики по длине считают её, не байты.
func RuneLen(s string) int {
	return len([]rune(s))
}

func IsHan(r rune) bool {
	return unicode.Is(unicode.Han, r)
}

func HasHan(s string) bool {
	for _, r := range s {
		if IsHan(r) {
			return true
		}
	}
	return false
}
