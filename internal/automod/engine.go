package automod

import (
	"context"
	"fmt"
	"time"

	"sentinel-automod/internal/config"
	"sentinel-automod/internal/modules/antispam"
	"sentinel-automod/internal/modules/policy"
	"sentinel-automod/internal/ratelimit"
	"sentinel-automod/internal/utils"

	"go.uber.org/zap"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Options struct {
	OwnerIDs  []string
	Members   MemberLookup
	Predicate ModerationPredicate
	Actuator  Actuator
	Logger    *zap.Logger
}

// Engine runs the check battery for message events. All rate state is owned
// by the engine and lives only in memory.
type Engine struct {
	logger    *zap.Logger
	members   MemberLookup
	predicate ModerationPredicate
	actuator  Actuator
	owners    map[string]struct{}
	clock     Clock

	spam   *antispam.Module
	policy *policy.Module

	created []check
	updated []check
}

type verdict struct {
	triggered bool
	reason    string
	matches   []string
}

type check struct {
	category Category
	run      func(msg Message, subject ratelimit.Subject, entry utils.Entry) verdict
}

// CheckResult is the outcome of one check. Passed is false when the check
// triggered; Err carries an actuator failure or a recovered panic.
type CheckResult struct {
	Category Category
	Passed   bool
	Reason   string
	Matches  []string
	Err      error
}

type Result struct {
	Kind EventKind
	// Skipped names the failed eligibility condition, empty when the
	// battery ran.
	Skipped string
	Checks  []CheckResult
}

// Failed lists the categories that triggered, in battery order.
func (r Result) Failed() []Category {
	var out []Category
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c.Category)
		}
	}
	return out
}

func New(cfg config.AutoModConfig, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	owners := make(map[string]struct{}, len(opts.OwnerIDs))
	for _, id := range opts.OwnerIDs {
		owners[id] = struct{}{}
	}
	e := &Engine{
		logger:    logger,
		members:   opts.Members,
		predicate: opts.Predicate,
		actuator:  opts.Actuator,
		owners:    owners,
		clock:     realClock{},
		spam:      antispam.New(cfg),
		policy:    policy.New(cfg),
	}

	static := []check{
		{CategoryBlockedInvite, func(msg Message, _ ratelimit.Subject, _ utils.Entry) verdict {
			return fromPolicy(e.policy.BlockInvites(msg.Content))
		}},
		{CategoryDisguisedHyperlink, func(msg Message, _ ratelimit.Subject, _ utils.Entry) verdict {
			return fromPolicy(e.policy.BlockFakeLinks(msg.Content))
		}},
		{CategoryExcessiveMentions, func(msg Message, _ ratelimit.Subject, _ utils.Entry) verdict {
			return fromPolicy(e.policy.FilterMentions(msg.AuthorID, msg.Mentions))
		}},
	}
	e.created = append([]check{
		{CategoryMessageFlood, func(_ Message, s ratelimit.Subject, en utils.Entry) verdict {
			return fromSpam(e.spam.FindMessageSpam(s, en))
		}},
		{CategoryDuplicateContent, func(_ Message, s ratelimit.Subject, en utils.Entry) verdict {
			return fromSpam(e.spam.FindDuplicateSpam(s, en))
		}},
		{CategoryInviteFlood, func(_ Message, s ratelimit.Subject, en utils.Entry) verdict {
			return fromSpam(e.spam.FindInviteSpam(s, en))
		}},
		{CategoryURLFlood, func(_ Message, s ratelimit.Subject, en utils.Entry) verdict {
			return fromSpam(e.spam.FindLinkSpam(s, en))
		}},
		{CategoryAttachmentFlood, func(msg Message, s ratelimit.Subject, en utils.Entry) verdict {
			return fromSpam(e.spam.FindAttachmentSpam(s, en, len(msg.Attachments)))
		}},
		{CategoryMentionFlood, func(msg Message, s ratelimit.Subject, en utils.Entry) verdict {
			return fromSpam(e.spam.FindMentionSpam(s, en, msg.Mentions))
		}},
	}, static...)
	e.updated = static
	return e
}

func (e *Engine) WithClock(clock Clock) {
	e.clock = clock
}

// Stats reports tracked subjects per rate limiter.
func (e *Engine) Stats() map[string]int {
	return e.spam.Stats()
}

// HandleEvent gates the author and runs the battery for the event kind.
// Every check runs regardless of earlier outcomes.
func (e *Engine) HandleEvent(ctx context.Context, ev Event) Result {
	start := time.Now()
	kind := ev.Kind.String()
	defer func() {
		eventProcessDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	result := Result{Kind: ev.Kind}
	var checks []check
	switch ev.Kind {
	case MessageCreated:
		checks = e.created
	case MessageUpdated:
		checks = e.updated
	default:
		result.Skipped = "unknown_kind"
		eventProcessCount.WithLabelValues(kind, result.Skipped).Inc()
		return result
	}

	msg := ev.Message
	if reason := e.eligible(msg); reason != "" {
		result.Skipped = reason
		eventProcessCount.WithLabelValues(kind, reason).Inc()
		e.logger.Debug("automod skipped message",
			zap.String("guild_id", msg.GuildID),
			zap.String("message_id", msg.ID),
			zap.String("event", kind),
			zap.String("reason", reason),
		)
		return result
	}
	eventProcessCount.WithLabelValues(kind, "checked").Inc()

	at := msg.Timestamp
	if at.IsZero() {
		at = e.clock.Now()
	}
	subject := ratelimit.Subject{GuildID: msg.GuildID, UserID: msg.AuthorID}
	entry := utils.Entry{At: at, MessageID: msg.ID, ChannelID: msg.ChannelID, Content: msg.Content}

	result.Checks = make([]CheckResult, 0, len(checks))
	for _, c := range checks {
		result.Checks = append(result.Checks, e.runCheck(ctx, c, msg, subject, entry))
	}
	return result
}

func (e *Engine) runCheck(ctx context.Context, c check, msg Message, subject ratelimit.Subject, entry utils.Entry) CheckResult {
	res := CheckResult{Category: c.category, Passed: true}

	v, err := e.evaluate(c, msg, subject, entry)
	if err != nil {
		res.Err = err
		checkResultCount.WithLabelValues(string(c.category), "error").Inc()
		e.logger.Error("automod check failed",
			zap.String("category", string(c.category)),
			zap.String("guild_id", msg.GuildID),
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
		return res
	}
	if !v.triggered {
		checkResultCount.WithLabelValues(string(c.category), "passed").Inc()
		return res
	}

	checkResultCount.WithLabelValues(string(c.category), "triggered").Inc()
	res.Passed = false
	res.Reason = v.reason
	res.Matches = v.matches

	offence := Offence{Class: c.category.Class(), Category: c.category, Reason: v.reason, Matches: v.matches}
	if err := e.moderate(ctx, msg, offence); err != nil {
		res.Err = err
		actionCount.WithLabelValues(string(c.category), "error").Inc()
		e.logger.Warn("automod action failed",
			zap.String("category", string(c.category)),
			zap.String("guild_id", msg.GuildID),
			zap.String("user_id", msg.AuthorID),
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
		return res
	}
	actionCount.WithLabelValues(string(c.category), "ok").Inc()
	return res
}

// evaluate runs the classifier part of a check. Limiter locks are taken and
// released inside it, so none is held once it returns.
func (e *Engine) evaluate(c check, msg Message, subject ratelimit.Subject, entry utils.Entry) (v verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("check %s panicked: %v", c.category, r)
		}
	}()
	return c.run(msg, subject, entry), nil
}

func (e *Engine) moderate(ctx context.Context, msg Message, offence Offence) (err error) {
	if e.actuator == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("actuator panicked: %v", r)
		}
	}()
	return e.actuator.Moderate(ctx, msg, offence)
}

func fromSpam(v antispam.Verdict) verdict {
	return verdict{triggered: v.Triggered, reason: v.Reason, matches: v.Matches}
}

func fromPolicy(v policy.Verdict) verdict {
	return verdict{triggered: v.Triggered, reason: v.Reason, matches: v.Matches}
}
