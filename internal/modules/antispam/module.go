package antispam

import (
	"sentinel-automod/internal/config"
	"sentinel-automod/internal/ratelimit"
	"sentinel-automod/internal/utils"
)

// Verdict is the outcome of a single check.
type Verdict struct {
	Triggered bool
	Reason    string
	Matches   []string
}

// Module owns the rate-based checks. Every category has its own limiter so a
// message feeding one counter never touches another. A check feeds its
// limiter only when the message qualifies but always queries it, so while a
// subject's window stays triggered every new message from it fails the check.
type Module struct {
	flood      *ratelimit.MessageRateLimiter
	invite     *ratelimit.MessageRateLimiter
	link       *ratelimit.MessageRateLimiter
	attachment *ratelimit.MessageRateLimiter
	mention    *ratelimit.MessageRateLimiter
	duplicate  *DuplicateDetector
}

func New(cfg config.AutoModConfig) *Module {
	opts := ratelimit.Options{Idle: cfg.SubjectIdle(), MaxSubjects: cfg.MaxSubjects}
	return &Module{
		flood:      ratelimit.New("flood", cfg.Flood, opts),
		invite:     ratelimit.New("invite", cfg.Invite, opts),
		link:       ratelimit.New("link", cfg.Link, opts),
		attachment: ratelimit.New("attachment", cfg.Attachment, opts),
		mention:    ratelimit.New("mention", cfg.Mention, opts),
		duplicate:  NewDuplicateDetector(ratelimit.New("duplicate", cfg.Duplicate, opts), cfg.DuplicateDistance),
	}
}

func (m *Module) FindMessageSpam(subject ratelimit.Subject, entry utils.Entry) Verdict {
	if !m.flood.Observe(subject, entry, true) {
		return Verdict{}
	}
	return Verdict{Triggered: true, Reason: "sending messages too frequently."}
}

func (m *Module) FindDuplicateSpam(subject ratelimit.Subject, entry utils.Entry) Verdict {
	return m.duplicate.Check(subject, entry)
}

func (m *Module) FindInviteSpam(subject ratelimit.Subject, entry utils.Entry) Verdict {
	if !m.invite.Observe(subject, entry, utils.ContainsInvite(entry.Content)) {
		return Verdict{}
	}
	return Verdict{Triggered: true, Reason: "sending discord invites too frequently.", Matches: utils.ExtractInvites(entry.Content)}
}

func (m *Module) FindLinkSpam(subject ratelimit.Subject, entry utils.Entry) Verdict {
	if !m.link.Observe(subject, entry, utils.ContainsURL(entry.Content)) {
		return Verdict{}
	}
	return Verdict{Triggered: true, Reason: "sending links too frequently.", Matches: utils.NormalizeAll(utils.ExtractURLs(entry.Content))}
}

func (m *Module) FindAttachmentSpam(subject ratelimit.Subject, entry utils.Entry, attachments int) Verdict {
	if !m.attachment.Observe(subject, entry, attachments > 0) {
		return Verdict{}
	}
	return Verdict{Triggered: true, Reason: "sending attachments too frequently."}
}

// FindMentionSpam passes outright when any mention targets the author or a
// bot; such a message neither feeds nor queries the counter.
func (m *Module) FindMentionSpam(subject ratelimit.Subject, entry utils.Entry, mentions []utils.MentionedUser) Verdict {
	if len(mentions) > 0 && !utils.MentionsOnlyOthers(subject.UserID, mentions) {
		return Verdict{}
	}
	if !m.mention.Observe(subject, entry, len(mentions) > 0) {
		return Verdict{}
	}
	return Verdict{Triggered: true, Reason: "mentioning users too frequently."}
}

// Stats reports the tracked subject count per limiter.
func (m *Module) Stats() map[string]int {
	stats := make(map[string]int, 6)
	for _, limiter := range []*ratelimit.MessageRateLimiter{m.flood, m.duplicate.limiter, m.invite, m.link, m.attachment, m.mention} {
		stats[limiter.Name()] = limiter.Subjects()
	}
	return stats
}
