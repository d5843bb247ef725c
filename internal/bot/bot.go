package bot

import (
	"context"

	"sentinel-automod/internal/automod"
	"sentinel-automod/internal/config"
	"sentinel-automod/internal/modules/audit"
	"sentinel-automod/internal/risk"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg      config.Config
	logger   *zap.Logger
	session  *discordgo.Session
	engine   *automod.Engine
	actuator *Actuator
}

func New(cfg config.Config, logger *zap.Logger, riskEngine *risk.Engine, auditLogger *audit.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	b := &Bot{
		cfg:     cfg,
		logger:  logger,
		session: session,
	}
	b.actuator = NewActuator(cfg, sessionPlatform(session), riskEngine, auditLogger, logger)
	b.engine = automod.New(cfg.AutoMod, automod.Options{
		OwnerIDs:  cfg.OwnerIDs,
		Members:   memberLookup{session: session},
		Predicate: automod.PredicateFunc(canModerate),
		Actuator:  b.actuator,
		Logger:    logger,
	})

	return b, nil
}

// Engine exposes the automod engine for health reporting.
func (b *Bot) Engine() *automod.Engine {
	return b.engine
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onMessageUpdate)

	return b.session.Open()
}

// Close disconnects the gateway session, giving up once ctx is done.
func (b *Bot) Close(ctx context.Context) {
	if b.session == nil {
		return
	}
	done := make(chan error, 1)
	go func() {
		done <- b.session.Close()
	}()
	select {
	case err := <-done:
		if err != nil {
			b.logger.Warn("discord close failed", zap.Error(err))
		}
	case <-ctx.Done():
		b.logger.Warn("discord close timed out", zap.Error(ctx.Err()))
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready",
		zap.String("user", event.User.Username),
		zap.Int("guilds", len(event.Guilds)),
		zap.String("mode", b.cfg.Mode),
	)
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.GuildID == "" {
		return
	}
	b.cacheMember(session, msg.Message)
	b.handle(automod.MessageCreated, msg.Message)
}

func (b *Bot) onMessageUpdate(session *discordgo.Session, msg *discordgo.MessageUpdate) {
	if msg.GuildID == "" {
		return
	}
	b.handle(automod.MessageUpdated, msg.Message)
}

func (b *Bot) handle(kind automod.EventKind, msg *discordgo.Message) {
	result := b.engine.HandleEvent(context.Background(), toEvent(kind, msg))
	if failed := result.Failed(); len(failed) > 0 {
		categories := make([]string, 0, len(failed))
		for _, category := range failed {
			categories = append(categories, string(category))
		}
		b.logger.Debug("automod flagged message",
			zap.String("guild_id", msg.GuildID),
			zap.String("message_id", msg.ID),
			zap.String("event", kind.String()),
			zap.Strings("categories", categories),
		)
	}
}

// cacheMember stores the partial member sent with a guild message so the
// eligibility gate can resolve it without a REST call.
func (b *Bot) cacheMember(session *discordgo.Session, msg *discordgo.Message) {
	if msg.Member == nil || msg.Author == nil {
		return
	}
	member := *msg.Member
	member.GuildID = msg.GuildID
	member.User = msg.Author
	if err := session.State.MemberAdd(&member); err != nil {
		b.logger.Debug("member cache skipped", zap.String("guild_id", msg.GuildID), zap.Error(err))
	}
}
