package engine

import (
	"math"
	"strings"
	"unicode"
)

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "can": true, "do": true, "does": true, "for": true,
	"from": true, "how": true, "i": true, "in": true, "is": true, "it": true,
	"me": true, "my": true, "of": true, "on": true, "or": true, "the": true,
	"to": true, "what": true, "with": true, "you": true, "your": true,
}

// tokenize lowercases s and splits it into content words. Underscores split
// words so skill identifiers match their prose form.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) < 2 || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

func tokenSet(parts ...string) map[string]bool {
	set := make(map[string]bool)
	for _, p := range parts {
		for _, t := range tokenize(p) {
			set[t] = true
		}
	}
	return set
}

// overlap scores how much of query is covered by doc, in [0,1]. Exact token
// matches count fully; a query token of three or more letters that prefixes
// a doc token counts half, so partially typed words still rank.
func overlap(query []string, doc map[string]bool) float64 {
	if len(query) == 0 {
		return 0
	}
	var hit float64
	for _, q := range query {
		if doc[q] {
			hit++
			continue
		}
		if len(q) < 3 {
			continue
		}
		for d := range doc {
			if strings.HasPrefix(d, q) {
				hit += 0.5
				break
			}
		}
	}
	return hit / float64(len(query))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// snippet returns the first sentence of s, cut to at most n bytes on a word
// boundary.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if i := strings.Index(s, ". "); i >= 0 {
		s = s[:i+1]
	}
	if len(s) <= n {
		return s
	}
	cut := strings.LastIndex(s[:n], " ")
	if cut <= 0 {
		cut = n
	}
	return s[:cut] + "..."
}

// humanize turns a skill identifier into prose: "vector_memory" becomes
// "vector memory".
func humanize(skill string) string {
	return strings.ReplaceAll(skill, "_", " ")
}
