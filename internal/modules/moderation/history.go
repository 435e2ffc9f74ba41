package moderation

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/quaver/qbot/internal/bot"
	"github.com/quaver/qbot/internal/model"
	"github.com/quaver/qbot/internal/modules/auth"
	"github.com/quaver/qbot/internal/router"
)

var (
	muteCommand    = regexp.MustCompile(`(?s)^(?:mute|tempmute)\s+(?:<@!?(\d+)>|(\d+))\s+(\S.*)$`)
	historyCommand = regexp.MustCompile(`^history\s+(?:<@!?(\d+)>|(\d+))\s*$`)
)

func (mod *Module) registerCommands(config *bot.Configuration, perm *auth.RouteConfig) {
	group := config.Router.Group("moderation").SetDescription("moderator commands")
	group.Set(auth.RouteConfigKey, perm)

	group.OnRegex("mute", "", muteCommand, mod.commandMute)
	group.OnRegex("history", "show last mutes: history <user>", historyCommand, mod.commandHistory)
}

// commandMute records mute reason for target, the mute itself is applied elsewhere
func (mod *Module) commandMute(ctx *router.Context) error {
	target := ctx.Submatch(1, 2)
	reason := strings.TrimSpace(ctx.Submatch(3))

	err := mod.config.History.AppendMute(context.Background(), ctx.Message.GuildID, target, reason)
	if err != nil {
		return err
	}

	actionCount.WithLabelValues("mute").Inc()

	mod.config.Log.
		WithField("target", target).
		WithField("moderator", ctx.Message.Author.ID).
		Debug("Recorded mute")

	return bot.ErrNoReply
}

// splitReason splits stored reason on its first whitespace delimited token
func splitReason(reason string) (duration, rest string) {
	reason = strings.TrimSpace(reason)

	idx := strings.IndexFunc(reason, unicode.IsSpace)
	if idx < 0 {
		return reason, ""
	}

	return reason[:idx], strings.TrimSpace(reason[idx:])
}

// RenderHistory formats mute reasons one per line
func RenderHistory(reasons []string) string {
	lines := make([]string, 0, len(reasons))

	for _, r := range reasons {
		duration, rest := splitReason(r)
		lines = append(lines, "Duration: "+duration+" - Reason: "+rest)
	}

	return strings.Join(lines, "\n")
}

func (mod *Module) commandHistory(ctx *router.Context) error {
	target := ctx.Submatch(1, 2)

	reasons, err := mod.config.History.MuteHistory(context.Background(), ctx.Message.GuildID, target, model.HistoryLimit)

	var reply string

	switch {
	case errors.Is(err, model.ErrRecordNotFound):
		reply = mod.config.Config.Server.Templates.NoHistory
	case err != nil:
		return err
	default:
		reply = RenderHistory(reasons)
	}

	_, err = ctx.Reply(reply)
	if err != nil {
		return err
	}

	return bot.ErrNoReply
}
