package bot

import (
	"sentinel-automod/internal/automod"

	"github.com/bwmarrin/discordgo"
)

const managerPermissions = discordgo.PermissionAdministrator | discordgo.PermissionManageServer

func memberPermissions(guild *discordgo.Guild, member *discordgo.Member) int64 {
	if guild == nil || member == nil {
		return 0
	}
	perms := int64(0)
	for _, role := range guild.Roles {
		if role.ID == guild.ID {
			perms |= role.Permissions
			break
		}
	}
	roleMap := make(map[string]*discordgo.Role, len(guild.Roles))
	for _, role := range guild.Roles {
		roleMap[role.ID] = role
	}
	for _, roleID := range member.Roles {
		if role := roleMap[roleID]; role != nil {
			perms |= role.Permissions
		}
	}
	return perms
}

// topRolePosition returns the position of the member's highest role, 0 for
// members holding only @everyone.
func topRolePosition(guild *discordgo.Guild, member *discordgo.Member) int {
	if guild == nil || member == nil {
		return 0
	}
	held := make(map[string]struct{}, len(member.Roles))
	for _, roleID := range member.Roles {
		held[roleID] = struct{}{}
	}
	top := 0
	for _, role := range guild.Roles {
		if _, ok := held[role.ID]; ok && role.Position > top {
			top = role.Position
		}
	}
	return top
}

func toMember(guild *discordgo.Guild, member *discordgo.Member) automod.Member {
	out := automod.Member{
		GuildID:  guild.ID,
		Manager:  memberPermissions(guild, member)&managerPermissions != 0,
		Position: topRolePosition(guild, member),
	}
	if member.User != nil {
		out.ID = member.User.ID
		out.Bot = member.User.Bot
	}
	out.Owner = out.ID != "" && out.ID == guild.OwnerID
	return out
}

// canModerate reports whether actor may moderate member: the guild owner,
// members ranked above the actor and managers are out of reach.
func canModerate(member, actor automod.Member) bool {
	if member.Owner {
		return false
	}
	if member.Position > actor.Position {
		return false
	}
	return !member.Manager
}
