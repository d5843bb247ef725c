package policy

import (
	"fmt"

	"sentinel-automod/internal/config"
	"sentinel-automod/internal/utils"
)

// Verdict is the outcome of a single-message policy check.
type Verdict struct {
	Triggered bool
	Reason    string
	Matches   []string
}

// Module holds the static checks. They have no rate component and keep no
// state, so edits can run them as well.
type Module struct {
	blockInvites   bool
	blockFakeLinks bool
	mentionLimit   int
}

func New(cfg config.AutoModConfig) *Module {
	return &Module{
		blockInvites:   cfg.BlockInvites,
		blockFakeLinks: cfg.BlockFakeLinks,
		mentionLimit:   cfg.MentionLimit,
	}
}

func (m *Module) BlockInvites(content string) Verdict {
	if !m.blockInvites {
		return Verdict{}
	}
	invites := utils.ExtractInvites(content)
	if len(invites) == 0 {
		return Verdict{}
	}
	return Verdict{Triggered: true, Reason: "invite links are not allowed.", Matches: invites}
}

func (m *Module) BlockFakeLinks(content string) Verdict {
	if !m.blockFakeLinks {
		return Verdict{}
	}
	links := utils.FindFakeLinks(content)
	if len(links) == 0 {
		return Verdict{}
	}
	matches := make([]string, 0, len(links))
	for _, link := range links {
		target := link.Target
		if normalized, _, err := utils.NormalizeURL(target); err == nil {
			target = normalized
		}
		matches = append(matches, fmt.Sprintf("%s -> %s", link.Label, target))
	}
	return Verdict{Triggered: true, Reason: "hyperlink contains link as text string.", Matches: matches}
}

func (m *Module) FilterMentions(authorID string, mentions []utils.MentionedUser) Verdict {
	count := utils.CountMentions(authorID, mentions)
	if count <= m.mentionLimit {
		return Verdict{}
	}
	return Verdict{
		Triggered: true,
		Reason:    "mentioning too many users in one message.",
		Matches:   []string{fmt.Sprintf("mentions=%d limit=%d", count, m.mentionLimit)},
	}
}
