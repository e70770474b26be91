package engine

import (
	"context"
	"slices"
	"strings"

	"github.com/abhisek/brainkit/internal/brainapi"
)

const snippetLen = 160

// Search ranks catalog courses, modules and discussions against the query.
// Titles weigh 0.6 and bodies 0.4. The user context may carry "course" (a
// course id) and "level"; matching results gain 0.1.
func (e *Engine) Search(ctx context.Context, req brainapi.SearchRequest) ([]brainapi.SearchResult, error) {
	query := tokenize(req.Query)
	if len(query) == 0 {
		return []brainapi.SearchResult{}, nil
	}
	ctxCourse := req.UserContext["course"]
	ctxLevel := Level(strings.ToLower(req.UserContext["level"]))

	boost := func(c *Course) float64 {
		var b float64
		if ctxCourse != "" && c.ID == ctxCourse {
			b += 0.1
		}
		if ctxLevel != "" && c.Level == ctxLevel {
			b += 0.1
		}
		return b
	}
	score := func(title, body string, c *Course) float64 {
		s := 0.6*overlap(query, tokenSet(title)) + 0.4*overlap(query, tokenSet(title, body))
		if s == 0 {
			return 0
		}
		return round2(clamp01(s + boost(c)))
	}

	var results []brainapi.SearchResult
	for i := range e.catalog.Courses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := &e.catalog.Courses[i]
		body := c.Description + " " + humanize(c.Category) + " " + strings.Join(humanizeAll(c.Skills), " ")
		if s := score(c.Title, body, c); s > 0 {
			results = append(results, brainapi.SearchResult{
				ID:             c.ID,
				Type:           brainapi.ResultCourse,
				Title:          c.Title,
				Snippet:        snippet(c.Description, snippetLen),
				RelevanceScore: s,
				CourseID:       c.ID,
				URL:            "/courses/" + c.Slug,
			})
		}
		for _, m := range c.Modules {
			if s := score(m.Title, humanize(m.Skill)+" "+c.Title, c); s > 0 {
				results = append(results, brainapi.SearchResult{
					ID:             m.ID,
					Type:           brainapi.ResultModule,
					Title:          m.Title,
					Snippet:        m.Title + " in " + c.Title + ".",
					RelevanceScore: s,
					CourseID:       c.ID,
					URL:            "/courses/" + c.Slug + "/modules/" + m.ID,
				})
			}
		}
	}
	for _, d := range e.catalog.Discussions {
		c, _ := e.catalog.Course(d.CourseID)
		if s := score(d.Title, d.Body, c); s > 0 {
			results = append(results, brainapi.SearchResult{
				ID:             d.ID,
				Type:           brainapi.ResultDiscussion,
				Title:          d.Title,
				Snippet:        snippet(d.Body, snippetLen),
				RelevanceScore: s,
				CourseID:       d.CourseID,
				URL:            "/discussions/" + d.ID,
			})
		}
	}

	slices.SortStableFunc(results, func(a, b brainapi.SearchResult) int {
		if a.RelevanceScore != b.RelevanceScore {
			if a.RelevanceScore > b.RelevanceScore {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	if limit := e.cfg.SearchLimit; limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []brainapi.SearchResult{}
	}
	return results, nil
}

// Suggestions completes a partial query from course titles, module titles
// and skills. Phrases that start with the prefix come before phrases that
// only contain a word starting with it.
func (e *Engine) Suggestions(ctx context.Context, prefix string, limit int) ([]string, error) {
	p := strings.Join(strings.Fields(strings.ToLower(prefix)), " ")
	if p == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = 5
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var phrases []string
	for _, c := range e.catalog.Courses {
		phrases = appendUnique(phrases, strings.ToLower(c.Title))
		for _, m := range c.Modules {
			phrases = appendUnique(phrases, strings.ToLower(m.Title))
		}
		for _, s := range c.Skills {
			phrases = appendUnique(phrases, humanize(s))
		}
	}

	var leading, inner []string
	for _, ph := range phrases {
		switch {
		case strings.HasPrefix(ph, p):
			leading = append(leading, ph)
		case strings.Contains(ph, " "+p):
			inner = append(inner, ph)
		}
	}
	slices.Sort(leading)
	slices.Sort(inner)

	out := append(leading, inner...)
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
