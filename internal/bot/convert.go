package bot

import (
	"sentinel-automod/internal/automod"
	"sentinel-automod/internal/utils"

	"github.com/bwmarrin/discordgo"
)

func toEvent(kind automod.EventKind, msg *discordgo.Message) automod.Event {
	out := automod.Message{
		ID:        msg.ID,
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		WebhookID: msg.WebhookID,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	}
	if kind == automod.MessageUpdated && msg.EditedTimestamp != nil {
		out.Timestamp = *msg.EditedTimestamp
	}
	if msg.Author != nil {
		out.AuthorID = msg.Author.ID
		out.AuthorBot = msg.Author.Bot
	}
	for _, attachment := range msg.Attachments {
		if attachment == nil {
			continue
		}
		out.Attachments = append(out.Attachments, automod.Attachment{
			ID:       attachment.ID,
			Filename: attachment.Filename,
			Size:     attachment.Size,
		})
	}
	for _, user := range msg.Mentions {
		if user == nil {
			continue
		}
		out.Mentions = append(out.Mentions, utils.MentionedUser{ID: user.ID, Bot: user.Bot})
	}
	return automod.Event{Kind: kind, Message: out}
}
