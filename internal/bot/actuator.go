package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"sentinel-automod/internal/automod"
	"sentinel-automod/internal/config"
	"sentinel-automod/internal/modules/audit"
	"sentinel-automod/internal/risk"

	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Platform is the subset of the Discord REST API the actuator calls.
type Platform struct {
	DeleteMessage func(channelID, messageID string) error
	TimeoutMember func(guildID, userID string, until *time.Time) error
}

func sessionPlatform(session *discordgo.Session) Platform {
	return Platform{
		DeleteMessage: func(channelID, messageID string) error {
			return session.ChannelMessageDelete(channelID, messageID)
		},
		TimeoutMember: func(guildID, userID string, until *time.Time) error {
			return session.GuildMemberTimeout(guildID, userID, until)
		},
	}
}

const (
	escalatedMessages   = 10000
	escalatedMessageTTL = 10 * time.Minute
)

// Actuator deletes offending messages and escalates repeat offenders to a
// timeout once their risk score crosses the configured threshold. A message
// that fails several checks adds risk once.
type Actuator struct {
	escalatedMu sync.Mutex
	escalated   *expirable.LRU[string, struct{}]

	logger    *zap.Logger
	audit     *audit.Logger
	risk      *risk.Engine
	platform  Platform
	limiter   *rate.Limiter
	timeout   time.Duration
	actions   config.ActionConfig
	auditOnly bool
	now       func() time.Time
}

func NewActuator(cfg config.Config, platform Platform, riskEngine *risk.Engine, auditLogger *audit.Logger, logger *zap.Logger) *Actuator {
	limit := rate.Inf
	if cfg.Actuator.DeletesPerSecond > 0 {
		limit = rate.Limit(cfg.Actuator.DeletesPerSecond)
	}
	burst := cfg.Actuator.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Actuator{
		escalated: expirable.NewLRU[string, struct{}](escalatedMessages, nil, escalatedMessageTTL),
		logger:    logger,
		audit:     auditLogger,
		risk:      riskEngine,
		platform:  platform,
		limiter:   rate.NewLimiter(limit, burst),
		timeout:   cfg.Actuator.Timeout(),
		actions:   cfg.Actions,
		auditOnly: cfg.Mode == "audit",
		now:       time.Now,
	}
}

func (a *Actuator) Moderate(ctx context.Context, msg automod.Message, offence automod.Offence) error {
	event := "automod_" + string(offence.Category)
	details := describe(msg, offence)

	if a.auditOnly {
		a.audit.Log(ctx, audit.LevelInfo, msg.GuildID, msg.AuthorID, event, "delete simulated "+details)
		a.escalate(ctx, msg, offence)
		return nil
	}

	var result error
	switch err := a.deleteMessage(ctx, msg); {
	case err == nil:
		a.audit.Log(ctx, audit.LevelInfo, msg.GuildID, msg.AuthorID, event, "deleted "+details)
	case isNotFound(err):
		a.audit.Log(ctx, audit.LevelInfo, msg.GuildID, msg.AuthorID, event, "already deleted "+details)
	case isForbidden(err):
		a.audit.Log(ctx, audit.LevelWarn, msg.GuildID, msg.AuthorID, "action_failed", "delete forbidden "+details)
	default:
		a.audit.Log(ctx, audit.LevelWarn, msg.GuildID, msg.AuthorID, "action_failed", "delete failed "+details)
		result = fmt.Errorf("delete message %s: %w", msg.ID, err)
	}

	a.escalate(ctx, msg, offence)
	return result
}

func (a *Actuator) deleteMessage(ctx context.Context, msg automod.Message) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for delete slot: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- a.platform.DeleteMessage(msg.ChannelID, msg.ID)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Actuator) escalate(ctx context.Context, msg automod.Message, offence automod.Offence) {
	if a.risk == nil || !a.firstEscalation(msg) {
		return
	}
	score := a.risk.AddOffence(msg.GuildID, msg.AuthorID, string(offence.Class))
	if a.actions.Timeout <= 0 || score < a.actions.Timeout {
		return
	}

	minutes := a.actions.TimeoutMinutes
	if minutes <= 0 {
		minutes = 10
	}
	details := fmt.Sprintf("score=%.1f threshold=%.1f minutes=%d", score, a.actions.Timeout, minutes)

	if a.auditOnly {
		a.audit.Log(ctx, audit.LevelInfo, msg.GuildID, msg.AuthorID, "audit_mode", "timeout simulated "+details)
		return
	}
	if !a.actions.Enabled {
		a.audit.Log(ctx, audit.LevelInfo, msg.GuildID, msg.AuthorID, "enforcement_disabled", details)
		return
	}

	until := a.now().Add(time.Duration(minutes) * time.Minute)
	if err := a.platform.TimeoutMember(msg.GuildID, msg.AuthorID, &until); err != nil {
		a.audit.Log(ctx, audit.LevelWarn, msg.GuildID, msg.AuthorID, "action_failed", "timeout failed "+details)
		a.logger.Warn("member timeout failed",
			zap.String("guild_id", msg.GuildID),
			zap.String("user_id", msg.AuthorID),
			zap.Error(err),
		)
		return
	}
	a.risk.Reset(msg.GuildID, msg.AuthorID)
	a.audit.Log(ctx, audit.LevelCrit, msg.GuildID, msg.AuthorID, "risk_timeout", details)
}

// firstEscalation reports whether msg has not been escalated yet and marks it.
func (a *Actuator) firstEscalation(msg automod.Message) bool {
	key := msg.GuildID + ":" + msg.ID
	a.escalatedMu.Lock()
	defer a.escalatedMu.Unlock()
	if a.escalated.Contains(key) {
		return false
	}
	a.escalated.Add(key, struct{}{})
	return true
}

func describe(msg automod.Message, offence automod.Offence) string {
	details := fmt.Sprintf("class=%s channel=%s message=%s reason=%q", offence.Class, msg.ChannelID, msg.ID, offence.Reason)
	if len(offence.Matches) > 0 {
		details += " matches=" + strings.Join(offence.Matches, ",")
	}
	return details
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage {
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

func isForbidden(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
			return true
		}
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden
}
