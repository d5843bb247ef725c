package utils

// MentionedUser is the subset of a mentioned account needed to count mentions.
type MentionedUser struct {
	ID  string
	Bot bool
}

// CountMentions returns the number of distinct users mentioned, ignoring the
// author and bot accounts.
func CountMentions(authorID string, mentions []MentionedUser) int {
	seen := make(map[string]struct{}, len(mentions))
	for _, mention := range mentions {
		if mention.ID == "" || mention.ID == authorID || mention.Bot {
			continue
		}
		seen[mention.ID] = struct{}{}
	}
	return len(seen)
}

// MentionsOnlyOthers reports whether there is at least one mention and none of
// them targets the author or a bot.
func MentionsOnlyOthers(authorID string, mentions []MentionedUser) bool {
	if len(mentions) == 0 {
		return false
	}
	for _, mention := range mentions {
		if mention.Bot || mention.ID == authorID {
			return false
		}
	}
	return true
}
