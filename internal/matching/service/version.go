package service

import (
	"fmt"
	"strings"

	"product-matcher/internal/matching/model"
)

type VersionMatch struct {
	Matched     bool
	Score       float64
	MatchType   model.MatchType
	Explanation string
}

// MatchVersion сравнивает версию входа с версией кандидата. Без версии во
// входе выигрывает стандартная версия, без версии у кандидата нейтрально.
func MatchVersion(input, candidate *model.Version, w Weights) VersionMatch {
	switch {
	case input == nil && candidate != nil && candidate.Standard:
		return VersionMatch{Score: w.VersionStandard, MatchType: model.MatchFuzzy,
			Explanation: "no input version, candidate is standard edition"}
	case input == nil:
		return VersionMatch{Score: w.VersionNeutral, MatchType: model.MatchFuzzy,
			Explanation: "no input version"}
	case candidate == nil:
		return VersionMatch{Score: w.VersionNeutral, MatchType: model.MatchFuzzy,
			Explanation: fmt.Sprintf("input version %q, candidate has none", input.Label)}
	}
	if labelsMatch(input.Label, candidate.Label) {
		return VersionMatch{Matched: true, Score: w.VersionMatch, MatchType: model.MatchExact,
			Explanation: fmt.Sprintf("version %q matches %q", input.Label, candidate.Label)}
	}
	return VersionMatch{MatchType: model.MatchFuzzy,
		Explanation: fmt.Sprintf("version %q does not match %q", input.Label, candidate.Label)}
}

// labelsMatch: равны, одна метка входит в другую или набор слов одной
// подмножество другой ("5g" и "全网通 5g").
func labelsMatch(a, b string) bool {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	return subset(strings.Fields(a), strings.Fields(b)) || subset(strings.Fields(b), strings.Fields(a))
}

func subset(small, big []string) bool {
	set := make(map[string]bool, len(big))
	for _, s := range big {
		set[s] = true
	}
	for _, s := range small {
		if !set[s] {
			return false
		}
	}
	return len(small) > 0
}
