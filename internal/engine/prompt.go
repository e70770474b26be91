package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/brainkit/internal/brainapi"
	"github.com/abhisek/brainkit/internal/llm"
)

const pathSystemPrompt = `You are a learning path planner for the Brain AI course catalog. You only use modules that exist in the catalog you are given.`

func (e *Engine) buildPathUserMessage(goal string, skills map[string]float64) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Goal: %s\n", goal))

	b.WriteString("\nCurrent skills (0 = none, 1 = mastered):\n")
	if len(skills) == 0 {
		b.WriteString("None\n")
	} else {
		names := make([]string, 0, len(skills))
		for k := range skills {
			names = append(names, k)
		}
		slices.Sort(names)
		for _, k := range names {
			b.WriteString(fmt.Sprintf("- %s: %.2f\n", k, skills[k]))
		}
	}

	b.WriteString("\nCatalog:\n")
	for _, c := range e.catalog.Courses {
		b.WriteString(fmt.Sprintf("%s (%s, %s)\n", c.Title, c.ID, c.Level))
		for _, m := range c.Modules {
			b.WriteString(fmt.Sprintf("  - %s: %s [skill: %s]\n", m.ID, m.Title, m.Skill))
		}
	}

	b.WriteString(`
Instructions:
1. Pick the modules that move the learner toward the goal, in the order they should be taken.
2. Respect course order: never place a module before modules of its prerequisite courses.
3. Skip modules whose skill the learner has already mastered (0.75 or above).
4. List the skills the learner still needs as skill_gaps.`)

	return b.String()
}

const tutorSystemPrompt = `You are the Brain AI tutor. You explain brain-inspired AI concepts (memory systems, learning algorithms, reasoning engines) clearly and concisely, with short code sketches when they help.`

func (e *Engine) buildTutorSystem(currentContent string) string {
	var b strings.Builder
	b.WriteString(tutorSystemPrompt)
	if currentContent != "" {
		b.WriteString(fmt.Sprintf("\n\nThe learner is currently studying: %s", currentContent))
	}
	b.WriteString("\n\nCatalog modules you may suggest:\n")
	for _, c := range e.catalog.Courses {
		for _, m := range c.Modules {
			b.WriteString(fmt.Sprintf("- %s\n", m.Title))
		}
	}
	return b.String()
}

func buildTutorMessages(history []brainapi.Message, question string) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		role := llm.RoleUser
		if m.Role == brainapi.RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: m.Content})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: question})
}
