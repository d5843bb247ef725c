package antispam

import (
	"testing"
	"time"

	"sentinel-automod/internal/config"
	"sentinel-automod/internal/ratelimit"
	"sentinel-automod/internal/utils"
)

var subject = ratelimit.Subject{GuildID: "g1", UserID: "u1"}

func entryAt(start time.Time, offset time.Duration, content string) utils.Entry {
	return utils.Entry{At: start.Add(offset), MessageID: offset.String(), ChannelID: "c1", Content: content}
}

func TestAntiSpamSlidingWindow(t *testing.T) {
	module := New(config.DefaultAutoMod())
	start := time.Unix(0, 0)

	for i := 0; i < 4; i++ {
		if verdict := module.FindMessageSpam(subject, entryAt(start, time.Duration(i)*time.Second, "hi")); verdict.Triggered {
			t.Fatalf("unexpected flag on message %d", i+1)
		}
	}
	if verdict := module.FindMessageSpam(subject, entryAt(start, 4*time.Second, "hi")); !verdict.Triggered {
		t.Fatalf("expected flag on fifth message")
	}
}

func TestAntiSpamSlowFifthMessage(t *testing.T) {
	module := New(config.DefaultAutoMod())
	start := time.Unix(0, 0)

	for i := 0; i < 4; i++ {
		module.FindMessageSpam(subject, entryAt(start, time.Duration(i)*time.Second, "hi"))
	}
	if verdict := module.FindMessageSpam(subject, entryAt(start, 6*time.Second, "hi")); verdict.Triggered {
		t.Fatalf("fifth message six seconds after the first must not flag")
	}
}

func TestInviteSpamOnlyCountsInvites(t *testing.T) {
	module := New(config.DefaultAutoMod())
	start := time.Unix(0, 0)

	if verdict := module.FindInviteSpam(subject, entryAt(start, 0, "discord.gg/abc")); verdict.Triggered {
		t.Fatalf("unexpected flag")
	}
	if verdict := module.FindInviteSpam(subject, entryAt(start, time.Second, "no invite here")); verdict.Triggered {
		t.Fatalf("plain message must not flag")
	}
	verdict := module.FindInviteSpam(subject, entryAt(start, 2*time.Second, "https://discord.gg/xyz"))
	if !verdict.Triggered {
		t.Fatalf("expected invite flood")
	}
	if len(verdict.Matches) != 1 {
		t.Fatalf("expected matched invite, got %v", verdict.Matches)
	}
}

func TestLinkSpamThreshold(t *testing.T) {
	module := New(config.DefaultAutoMod())
	start := time.Unix(0, 0)
	for i := 0; i < 2; i++ {
		if module.FindLinkSpam(subject, entryAt(start, time.Duration(i)*time.Second, "https://example.com/a")).Triggered {
			t.Fatalf("unexpected flag on link %d", i+1)
		}
	}
	verdict := module.FindLinkSpam(subject, entryAt(start, 2*time.Second, "https://Example.com/a?utm_source=x"))
	if !verdict.Triggered {
		t.Fatalf("expected link flood")
	}
	if verdict.Matches[0] != "https://example.com/a" {
		t.Fatalf("expected normalized url, got %v", verdict.Matches)
	}
}

func TestAttachmentSpam(t *testing.T) {
	module := New(config.DefaultAutoMod())
	start := time.Unix(0, 0)
	if module.FindAttachmentSpam(subject, entryAt(start, 0, ""), 0).Triggered {
		t.Fatalf("no attachments must not flag")
	}
	module.FindAttachmentSpam(subject, entryAt(start, time.Second, ""), 1)
	if !module.FindAttachmentSpam(subject, entryAt(start, 2*time.Second, ""), 3).Triggered {
		t.Fatalf("expected attachment flood")
	}
}

func TestMentionSpamSkipsSelfAndBots(t *testing.T) {
	module := New(config.DefaultAutoMod())
	start := time.Unix(0, 0)
	others := []utils.MentionedUser{{ID: "a"}}
	withBot := []utils.MentionedUser{{ID: "a"}, {ID: "b", Bot: true}}

	module.FindMentionSpam(subject, entryAt(start, 0, ""), withBot)
	module.FindMentionSpam(subject, entryAt(start, time.Second, ""), []utils.MentionedUser{{ID: subject.UserID}})
	if module.FindMentionSpam(subject, entryAt(start, 2*time.Second, ""), others).Triggered {
		t.Fatalf("only one qualifying mention so far")
	}
	if !module.FindMentionSpam(subject, entryAt(start, 3*time.Second, ""), others).Triggered {
		t.Fatalf("expected mention flood at threshold 2")
	}
}

func TestCategoriesAreIndependent(t *testing.T) {
	module := New(config.DefaultAutoMod())
	start := time.Unix(0, 0)
	module.FindInviteSpam(subject, entryAt(start, 0, "discord.gg/a"))
	module.FindInviteSpam(subject, entryAt(start, time.Second, "discord.gg/b"))

	stats := module.Stats()
	if stats["invite"] != 1 {
		t.Fatalf("expected invite subject tracked, got %v", stats)
	}
	if stats["flood"] != 0 || stats["link"] != 0 {
		t.Fatalf("invite checks must not touch other limiters, got %v", stats)
	}
}

func TestTriggeredWindowFlagsFollowingMessages(t *testing.T) {
	module := New(config.DefaultAutoMod())
	start := time.Unix(0, 0)

	module.FindInviteSpam(subject, entryAt(start, 0, "discord.gg/abc"))
	if !module.FindInviteSpam(subject, entryAt(start, 2*time.Second, "discord.gg/xyz")).Triggered {
		t.Fatalf("expected invite flood")
	}
	verdict := module.FindInviteSpam(subject, entryAt(start, 8*time.Second, "just chatting now"))
	if !verdict.Triggered {
		t.Fatalf("message inside a triggered window must flag")
	}
	if len(verdict.Matches) != 0 {
		t.Fatalf("plain message has no invite matches, got %v", verdict.Matches)
	}
	if module.FindInviteSpam(subject, entryAt(start, 40*time.Second, "just chatting now")).Triggered {
		t.Fatalf("window should have drained")
	}
	if module.FindLinkSpam(subject, entryAt(start, 8*time.Second, "just chatting now")).Triggered {
		t.Fatalf("link window was never fed")
	}
}

func TestTriggeredMentionWindowExemptsSelfMentions(t *testing.T) {
	module := New(config.DefaultAutoMod())
	start := time.Unix(0, 0)
	others := []utils.MentionedUser{{ID: "a"}}

	module.FindMentionSpam(subject, entryAt(start, 0, ""), others)
	if !module.FindMentionSpam(subject, entryAt(start, time.Second, ""), others).Triggered {
		t.Fatalf("expected mention flood")
	}
	if !module.FindMentionSpam(subject, entryAt(start, 2*time.Second, "no mentions"), nil).Triggered {
		t.Fatalf("message without mentions inside a triggered window must flag")
	}
	self := []utils.MentionedUser{{ID: subject.UserID}}
	if module.FindMentionSpam(subject, entryAt(start, 3*time.Second, ""), self).Triggered {
		t.Fatalf("self mention must pass without querying the window")
	}
}
