package fileio

import (
	"regexp"
	"strings"
)

var reHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// normHeaderKey: нижний регистр, служебные символы в пробел, полноширинные
// скобки и NBSP тоже.
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("\u00A0", " ", "\u3000", " ", "\uFF08", " ", "\uFF09", " ").Replace(s)
	s = reHeaderJunk.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// resolveColumn ищет реальный заголовок по желаемому имени.
// Поддерживает варианты через "|" (например: "spu_name|商品名称|名称").
// Пусто, если ничего похожего нет.
func resolveColumn(headers []string, want string) string {
	want = strings.TrimSpace(want)
	if want == "" {
		return ""
	}
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	// 1) точное совпадение как есть, в порядке альтернатив
	for _, a := range alts {
		for _, h := range headers {
			if h == a {
				return h
			}
		}
	}

	// 2) по нормализованному, затем частичное вхождение (составные заголовки:
	// "商品名称(必填)" содержит "商品名称")
	norm := make([]string, len(alts))
	for i, a := range alts {
		norm[i] = normHeaderKey(a)
	}
	best, bestScore := "", 0
	for _, h := range headers {
		nh := normHeaderKey(h)
		if nh == "" {
			continue
		}
		for _, n := range norm {
			if nh == n {
				return h
			}
		}
		score := 0
		for _, n := range norm {
			if n != "" && (strings.Contains(nh, n) || strings.Contains(n, nh)) {
				score = max(score, len(n))
			}
		}
		if score > bestScore {
			best, bestScore = h, score
		}
	}
	return best
}
