package discord

import "strings"

// mentionsUser reports whether the message mentions the given user ID.
func mentionsUser(msg *MessageCreate, userID string) bool {
	for _, m := range msg.Mentions {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// extractQuestion strips a leading bot mention from content and returns
// the remaining text. Both the plain <@id> and the nickname <@!id> mention
// forms are accepted. Returns false when the content does not start with
// the mention or nothing but whitespace follows it.
func extractQuestion(content, botID string) (string, bool) {
	var rest string
	switch {
	case strings.HasPrefix(content, "<@"+botID+">"):
		rest = content[len("<@"+botID+">"):]
	case strings.HasPrefix(content, "<@!"+botID+">"):
		rest = content[len("<@!"+botID+">"):]
	default:
		return "", false
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false
	}
	return rest, true
}
