package engine

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/abhisek/brainkit/internal/brainapi"
)

const (
	defaultSummaryLength = 200
	defaultConceptCount  = 5
	maxConceptCount      = 20
	definitionLength     = 160
)

// Quiz difficulties. Harder quizzes offer more options.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

var optionsPerDifficulty = map[string]int{
	DifficultyEasy:   3,
	DifficultyMedium: 4,
	DifficultyHard:   5,
}

// splitSentences splits text on sentence-ending punctuation followed by a
// space, after collapsing whitespace.
func splitSentences(s string) []string {
	s = strings.Join(strings.Fields(s), " ")
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '!', '?':
			if i+1 < len(s) && s[i+1] != ' ' {
				continue
			}
			if sent := strings.TrimSpace(s[start : i+1]); sent != "" {
				out = append(out, sent)
			}
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

func termCounts(sentences []string) map[string]int {
	counts := make(map[string]int)
	for _, s := range sentences {
		for _, t := range tokenize(s) {
			counts[t]++
		}
	}
	return counts
}

func requireContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return invalid("content is required")
	}
	return nil
}

func countParam(name string, n int) (int, error) {
	switch {
	case n < 0:
		return 0, invalid("%s must not be negative", name)
	case n == 0:
		return defaultConceptCount, nil
	}
	return min(n, maxConceptCount), nil
}

// Summarize builds an extractive summary: sentences are ranked by the mean
// frequency of their words across the content (the opening sentence gets a
// small boost) and the best ones that fit in MaxLength bytes are kept in
// their original order.
func (e *Engine) Summarize(ctx context.Context, req brainapi.SummaryRequest) (string, error) {
	if err := requireContent(req.Content); err != nil {
		return "", err
	}
	switch req.ContentType {
	case "", brainapi.ContentText, brainapi.ContentVideo, brainapi.ContentDocument:
	default:
		return "", invalid("unknown content_type %q", req.ContentType)
	}
	if req.MaxLength < 0 {
		return "", invalid("max_length must not be negative")
	}
	maxLen := req.MaxLength
	if maxLen == 0 {
		maxLen = defaultSummaryLength
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sents := splitSentences(req.Content)
	counts := termCounts(sents)
	scores := make([]float64, len(sents))
	for i, s := range sents {
		tokens := tokenize(s)
		if len(tokens) == 0 {
			continue
		}
		var sum int
		for _, t := range tokens {
			sum += counts[t]
		}
		scores[i] = float64(sum) / float64(len(tokens))
		if i == 0 {
			scores[i] *= 1.2
		}
	}
	ranked := make([]int, len(sents))
	for i := range ranked {
		ranked[i] = i
	}
	slices.SortStableFunc(ranked, func(a, b int) int {
		switch {
		case scores[a] > scores[b]:
			return -1
		case scores[a] < scores[b]:
			return 1
		}
		return a - b
	})

	var chosen []int
	length := 0
	for _, i := range ranked {
		add := len(sents[i])
		if len(chosen) > 0 {
			add++
		}
		if length+add > maxLen {
			continue
		}
		chosen = append(chosen, i)
		length += add
	}
	if len(chosen) == 0 {
		return snippet(sents[ranked[0]], max(maxLen-3, 1)), nil
	}
	slices.Sort(chosen)
	parts := make([]string, len(chosen))
	for i, idx := range chosen {
		parts[i] = sents[idx]
	}
	return strings.Join(parts, " "), nil
}

// ExtractConcepts lists catalog concepts the content mentions, strongest
// keyword match first, then the content's most frequent remaining words
// defined by the first sentence that uses them.
func (e *Engine) ExtractConcepts(ctx context.Context, req brainapi.ConceptsRequest) ([]brainapi.KeyConcept, error) {
	if err := requireContent(req.Content); err != nil {
		return nil, err
	}
	n, err := countParam("num_concepts", req.NumConcepts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := tokenSet(req.Content)
	sents := splitSentences(req.Content)
	seen := make(map[string]bool)
	out := []brainapi.KeyConcept{}

	type hit struct {
		c    *Concept
		hits int
	}
	var hits []hit
	for i := range e.catalog.Concepts {
		c := &e.catalog.Concepts[i]
		h := 0
		for _, k := range c.Keywords {
			if words[k] {
				h++
			}
		}
		if h > 0 {
			hits = append(hits, hit{c, h})
		}
	}
	slices.SortStableFunc(hits, func(a, b hit) int { return b.hits - a.hits })
	for _, h := range hits {
		if len(out) == n {
			return out, nil
		}
		out = append(out, brainapi.KeyConcept{Term: h.c.Name, Definition: strings.Join(strings.Fields(h.c.Definition), " ")})
		for _, t := range tokenize(h.c.Name) {
			seen[t] = true
		}
		for _, k := range h.c.Keywords {
			seen[k] = true
		}
	}

	counts := termCounts(sents)
	terms := make([]string, 0, len(counts))
	for t := range counts {
		if len(t) >= 4 && !seen[t] {
			terms = append(terms, t)
		}
	}
	slices.SortFunc(terms, func(a, b string) int {
		if counts[a] != counts[b] {
			return counts[b] - counts[a]
		}
		return strings.Compare(a, b)
	})
	for _, t := range terms {
		if len(out) == n {
			break
		}
		def := ""
		for _, s := range sents {
			if tokenSet(s)[t] {
				def = snippet(s, definitionLength)
				break
			}
		}
		out = append(out, brainapi.KeyConcept{Term: t, Definition: def})
	}
	return out, nil
}

// termPattern matches term as a word, with any inflection on its last word.
func termPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\w*`)
}

// GenerateQuiz writes one multiple-choice question per extracted concept.
// Easy questions describe the concept and ask for the term; medium and hard
// questions blank the term out of a sentence of the content when one uses
// it. Distractors are the other concepts, then catalog concept names. The
// correct option rotates through the positions.
func (e *Engine) GenerateQuiz(ctx context.Context, req brainapi.QuizRequest) ([]brainapi.QuizQuestion, error) {
	if err := requireContent(req.Content); err != nil {
		return nil, err
	}
	n, err := countParam("num_questions", req.NumQuestions)
	if err != nil {
		return nil, err
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = DifficultyMedium
	}
	numOptions, ok := optionsPerDifficulty[difficulty]
	if !ok {
		return nil, invalid("unknown difficulty %q", req.Difficulty)
	}

	concepts, err := e.ExtractConcepts(ctx, brainapi.ConceptsRequest{Content: req.Content, NumConcepts: maxConceptCount})
	if err != nil {
		return nil, err
	}
	var pool []string
	for _, c := range concepts {
		pool = appendUnique(pool, c.Term)
	}
	for _, c := range e.catalog.Concepts {
		pool = appendUnique(pool, c.Name)
	}
	sents := splitSentences(req.Content)

	questions := []brainapi.QuizQuestion{}
	for _, c := range concepts {
		if len(questions) == n {
			break
		}
		var options []string
		for _, t := range pool {
			if len(options) == numOptions-1 {
				break
			}
			if t != c.Term {
				options = append(options, t)
			}
		}
		if len(options) == 0 {
			continue
		}

		re := termPattern(c.Term)
		text := fmt.Sprintf("Which term matches this description? %s", re.ReplaceAllString(c.Definition, "_____"))
		if difficulty != DifficultyEasy {
			for _, s := range sents {
				if re.MatchString(s) {
					text = "Fill in the blank: " + re.ReplaceAllString(s, "_____")
					break
				}
			}
		}

		pos := len(questions) % (len(options) + 1)
		options = slices.Insert(options, pos, c.Term)
		questions = append(questions, brainapi.QuizQuestion{
			Question:    text,
			Options:     options,
			Answer:      pos,
			Explanation: c.Definition,
			Difficulty:  difficulty,
		})
	}
	return questions, nil
}
