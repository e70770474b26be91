package llm

import "strings"

// normalizeMessages prepares a tutor history for providers that require
// strictly alternating turns starting with the user. Blank turns are
// dropped, leading assistant turns (a greeting shown before the learner
// spoke) are dropped, and consecutive turns by the same role are merged.
func normalizeMessages(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		role := m.Role
		if role != RoleAssistant {
			role = RoleUser
		}
		if len(out) == 0 && role == RoleAssistant {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content += "\n\n" + content
			continue
		}
		out = append(out, Message{Role: role, Content: content})
	}
	return out
}

// resolveModel maps a short alias to a provider model id. Unknown names
// are used as given.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
