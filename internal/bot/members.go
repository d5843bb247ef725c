package bot

import (
	"sentinel-automod/internal/automod"

	"github.com/bwmarrin/discordgo"
)

// memberLookup resolves members from the gateway state cache, falling back
// to the REST API for members the cache has not seen yet.
type memberLookup struct {
	session *discordgo.Session
}

func (l memberLookup) Member(guildID, userID string) (automod.Member, bool) {
	guild, err := l.session.State.Guild(guildID)
	if err != nil {
		return automod.Member{}, false
	}
	member := l.memberForUser(guildID, userID)
	if member == nil {
		return automod.Member{}, false
	}
	return toMember(guild, member), true
}

func (l memberLookup) Self(guildID string) (automod.Member, bool) {
	user := l.session.State.User
	if user == nil {
		return automod.Member{}, false
	}
	return l.Member(guildID, user.ID)
}

func (l memberLookup) memberForUser(guildID, userID string) *discordgo.Member {
	member, err := l.session.State.Member(guildID, userID)
	if err == nil && member != nil {
		return member
	}
	member, _ = l.session.GuildMember(guildID, userID)
	return member
}
