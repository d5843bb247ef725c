package automod

// MemberLookup resolves guild members. Self returns the member record of
// the account the engine acts as.
type MemberLookup interface {
	Member(guildID, userID string) (Member, bool)
	Self(guildID string) (Member, bool)
}

// ModerationPredicate reports whether actor may moderate member.
type ModerationPredicate interface {
	CanModerate(member, actor Member) bool
}

type PredicateFunc func(member, actor Member) bool

func (f PredicateFunc) CanModerate(member, actor Member) bool {
	return f(member, actor)
}

const (
	skipNoAuthor   = "no_author"
	skipWebhook    = "webhook"
	skipNoMember   = "no_member"
	skipBot        = "bot"
	skipOwner      = "owner"
	skipNoSelf     = "no_self"
	skipPrivileged = "privileged"
)

// eligible runs the gate in order and returns the reason of the first
// failing condition, or "" when the author may be moderated.
func (e *Engine) eligible(msg Message) string {
	if msg.AuthorID == "" {
		return skipNoAuthor
	}
	if msg.WebhookID != "" {
		return skipWebhook
	}
	member, ok := e.members.Member(msg.GuildID, msg.AuthorID)
	if !ok {
		return skipNoMember
	}
	if member.Bot || msg.AuthorBot {
		return skipBot
	}
	if _, ok := e.owners[msg.AuthorID]; ok {
		return skipOwner
	}
	self, ok := e.members.Self(msg.GuildID)
	if !ok {
		return skipNoSelf
	}
	if !e.predicate.CanModerate(member, self) {
		return skipPrivileged
	}
	return ""
}
