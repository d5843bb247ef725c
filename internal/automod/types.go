package automod

import (
	"time"

	"sentinel-automod/internal/utils"
)

// EventKind selects which checks run for an event.
type EventKind int

const (
	MessageCreated EventKind = iota
	MessageUpdated
)

func (k EventKind) String() string {
	switch k {
	case MessageCreated:
		return "created"
	case MessageUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// Message is the read-only view of a chat message the engine inspects.
type Message struct {
	ID          string
	GuildID     string
	ChannelID   string
	AuthorID    string
	AuthorBot   bool
	WebhookID   string
	Content     string
	Attachments []Attachment
	Mentions    []utils.MentionedUser
	// Timestamp is the creation time, or the edit time for updates.
	Timestamp time.Time
}

type Attachment struct {
	ID       string
	Filename string
	Size     int
}

// Member is a guild member as seen by the eligibility gate. Position is the
// position of the member's highest role; Manager is set when the member holds
// administrator or guild-management permission.
type Member struct {
	ID       string
	GuildID  string
	Bot      bool
	Owner    bool
	Manager  bool
	Position int
}

type Event struct {
	Kind    EventKind
	Message Message
}

type OffenceClass string

const (
	ClassSpam     OffenceClass = "spam"
	ClassBlocked  OffenceClass = "blocked"
	ClassFiltered OffenceClass = "filtered"
)

type Category string

const (
	CategoryMessageFlood       Category = "message_flood"
	CategoryDuplicateContent   Category = "duplicate_content"
	CategoryInviteFlood        Category = "invite_flood"
	CategoryURLFlood           Category = "url_flood"
	CategoryAttachmentFlood    Category = "attachment_flood"
	CategoryMentionFlood       Category = "mention_flood"
	CategoryBlockedInvite      Category = "blocked_invite"
	CategoryDisguisedHyperlink Category = "disguised_hyperlink"
	CategoryExcessiveMentions  Category = "excessive_mentions"
)

// Class reports the offence class a category belongs to.
func (c Category) Class() OffenceClass {
	switch c {
	case CategoryBlockedInvite, CategoryDisguisedHyperlink:
		return ClassBlocked
	case CategoryExcessiveMentions:
		return ClassFiltered
	default:
		return ClassSpam
	}
}
