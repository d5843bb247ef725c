package bot

import (
	"testing"
	"time"

	"sentinel-automod/internal/automod"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToEventCreated(t *testing.T) {
	sent := time.Unix(1700000000, 0)
	edited := sent.Add(time.Minute)
	msg := &discordgo.Message{
		ID:              "m1",
		GuildID:         "g1",
		ChannelID:       "c1",
		Content:         "hi <@2>",
		Timestamp:       sent,
		EditedTimestamp: &edited,
		Author:          &discordgo.User{ID: "1"},
		Attachments:     []*discordgo.MessageAttachment{{ID: "a1", Filename: "cat.png", Size: 42}, nil},
		Mentions:        []*discordgo.User{{ID: "2"}, {ID: "3", Bot: true}},
	}

	ev := toEvent(automod.MessageCreated, msg)
	assert.Equal(t, automod.MessageCreated, ev.Kind)
	assert.Equal(t, "1", ev.Message.AuthorID)
	assert.Equal(t, sent, ev.Message.Timestamp)
	require.Len(t, ev.Message.Attachments, 1)
	assert.Equal(t, "cat.png", ev.Message.Attachments[0].Filename)
	require.Len(t, ev.Message.Mentions, 2)
	assert.True(t, ev.Message.Mentions[1].Bot)

	updated := toEvent(automod.MessageUpdated, msg)
	assert.Equal(t, edited, updated.Message.Timestamp)
}

func TestToEventWithoutAuthor(t *testing.T) {
	ev := toEvent(automod.MessageUpdated, &discordgo.Message{ID: "m1", GuildID: "g1", WebhookID: "w1"})
	assert.Empty(t, ev.Message.AuthorID)
	assert.Equal(t, "w1", ev.Message.WebhookID)
	assert.True(t, ev.Message.Timestamp.IsZero())
}
