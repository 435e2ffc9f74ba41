package moderation

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/quaver/qbot/internal/bot"
	"github.com/quaver/qbot/internal/config"
	"github.com/quaver/qbot/internal/discord/discordtest"
	"github.com/quaver/qbot/internal/model"
	"github.com/quaver/qbot/internal/modules/auth"
	"github.com/quaver/qbot/internal/modules/reply"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	bot      *bot.Bot
	mod      *Module
	session  *discordtest.Session
	history  *model.MemHistory
	settings *model.MemSettings
}

func setup(t *testing.T, edit func(conf *config.Root)) *fixture {
	t.Helper()

	conf := &config.Root{}
	conf.Private.Token = "token"
	conf.Server.GuildID = "g1"
	conf.Server.MembershipRole = "membership"
	conf.Server.ShopRoles = map[string]string{"supporter": "Supporter"}
	conf.Server.WebhookBots = []string{"hook"}
	conf.Server.Channels = config.Channels{Deleted: "deleted", Membership: "announce"}
	conf.Server.Scam.Words = []string{"free nitro"}
	conf.Server.Color = "#ff8800"

	if edit != nil {
		edit(conf)
	}

	conf.Defaults()

	f := &fixture{
		mod:      New(),
		session:  discordtest.New(),
		history:  model.NewMemHistory(),
		settings: model.NewMemSettings(),
	}

	f.session.Guilds["g1"] = &discordgo.Guild{ID: "g1", OwnerID: "owner"}
	f.session.AddRole("mods", "Moderators", discordgo.PermissionManageMessages)
	f.session.AddMember("mod", "mods")
	f.session.AddMember("user")

	var err error

	f.bot, err = bot.NewBot(bot.Options{
		Session:  f.session,
		Config:   conf,
		Log:      logrus.New(),
		Settings: f.settings,
		History:  f.history,
		Modules:  []bot.Module{reply.New(), auth.New(), f.mod},
	})
	require.NoError(t, err)

	return f
}

func (f *fixture) message(author, content string, embeds ...*discordgo.MessageEmbed) []bot.CheckResult {
	return f.bot.RunChecks(&discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: author, Username: "name" + author, Discriminator: "0001"},
		Embeds:    embeds,
	})
}

func TestCheckOrder(t *testing.T) {
	f := setup(t, nil)

	assert.Equal(t, []string{"reactions", "commands", "scam"}, f.bot.Checks())
}

func TestReactions(t *testing.T) {
	assert := assert.New(t)
	f := setup(t, func(conf *config.Root) { conf.Server.Scam.Enabled = true })

	res := f.message("hook", "https://evil.gift/abc")

	require.Len(t, res, 1)
	assert.True(res[0].Stop)
	assert.Len(f.session.Reactions, 3)
	assert.Equal(emojiCheckMark, f.session.Reactions[0].Emoji)
	assert.Equal(emojiCross, f.session.Reactions[1].Emoji)
	assert.Equal(emojiQuestion, f.session.Reactions[2].Emoji)
	assert.Empty(f.session.Deleted)

	f.session.Reactions = nil

	f.message("user", "hello")
	assert.Empty(f.session.Reactions)
}

func TestMuteCapture(t *testing.T) {
	assert := assert.New(t)
	f := setup(t, nil)

	f.message("mod", "!mute <@!42> 1h spamming links")
	f.message("mod", "!tempmute 42 2d  being rude")
	f.message("user", "!mute 42 not a moderator")

	assert.Equal([]string{"1h spamming links", "2d  being rude"}, f.history.Data["g1.mute.42"])
	assert.Empty(f.session.Reactions)
	assert.Empty(f.session.Sent)
}

func TestHistory(t *testing.T) {
	assert := assert.New(t)
	f := setup(t, nil)

	f.message("mod", "!history 42")
	require.Len(t, f.session.Sent, 1)
	assert.Equal(config.DefaultNoHistoryTemplate, f.session.Sent[0].Content)

	for _, r := range []string{"1 a", "2 b", "3 c", "4 d", "5 e", "6 f", "7d spam links"} {
		f.message("mod", "!mute 42 "+r)
	}

	f.message("user", "!history 42")
	f.message("mod", "!history <@42>")

	require.Len(t, f.session.Sent, 2)
	assert.Equal(
		"Duration: 2 - Reason: b\n"+
			"Duration: 3 - Reason: c\n"+
			"Duration: 4 - Reason: d\n"+
			"Duration: 5 - Reason: e\n"+
			"Duration: 6 - Reason: f\n"+
			"Duration: 7d - Reason: spam links",
		f.session.Sent[1].Content,
	)
}

func TestRenderHistory(t *testing.T) {
	assert.Equal(t, "Duration: perm - Reason: ", RenderHistory([]string{"perm"}))
	assert.Equal(t, "Duration: 1h - Reason: a b", RenderHistory([]string{" 1h\ta b "}))
}

func TestDetector(t *testing.T) {
	assert := assert.New(t)
	d := NewDetector([]string{"free nitro"}, false)

	_, ok := d.Detect(&discordgo.Message{Content: "claim at https://evil.gift/xyz"})
	assert.True(ok)

	_, ok = d.Detect(&discordgo.Message{Content: "https://discord.gift/xyz"})
	assert.False(ok)

	reason, ok := d.Detect(&discordgo.Message{Content: "https://DISCORD.gift/xyz"})
	assert.True(ok)
	assert.Contains(reason, "DISCORD.gift")

	_, ok = d.Detect(&discordgo.Message{Content: "https://Discord.gift/xyz"})
	assert.True(ok)

	_, ok = d.Detect(&discordgo.Message{Content: "get free nitro here"})
	assert.False(ok)

	reason, ok = d.Detect(&discordgo.Message{Embeds: []*discordgo.MessageEmbed{{Title: "Free nitro", Description: "free nitro for all"}}})
	assert.True(ok)
	assert.Contains(reason, "free nitro")

	_, ok = d.Detect(&discordgo.Message{Embeds: []*discordgo.MessageEmbed{{Description: "http://steam.gift"}}})
	assert.True(ok)

	_, ok = NewDetector([]string{"free nitro"}, true).Detect(&discordgo.Message{Content: "get free nitro here"})
	assert.True(ok)
}

func TestScamDisabledByDefault(t *testing.T) {
	f := setup(t, nil)

	f.message("user", "https://evil.gift/abc")

	assert.False(t, f.mod.ScamEnabled())
	assert.Empty(t, f.session.Deleted)
}

func TestScamDelete(t *testing.T) {
	assert := assert.New(t)
	f := setup(t, func(conf *config.Root) { conf.Server.Scam.Enabled = true })

	res := f.message("user", "https://evil.gift/abc")

	assert.Equal([]string{"m1"}, f.session.Deleted)
	require.Len(t, f.session.Sent, 1)
	assert.Equal("deleted", f.session.Sent[0].ChannelID)
	assert.Contains(f.session.Sent[0].Content, "nameuser#0001")
	assert.Contains(f.session.Sent[0].Content, "evil.gift")
	assert.True(res[len(res)-1].Stop)

	f.message("user", "https://discord.gift/abc")
	assert.Len(f.session.Deleted, 1)
}

func TestScamOverride(t *testing.T) {
	f := setup(t, nil)

	require.NoError(t, f.settings.ConfigSet("g1", "scam", "enabled", "true"))
	f.mod.Configure(&f.bot.Configuration, &discordgo.Guild{ID: "g1"})
	assert.True(t, f.mod.ScamEnabled())

	require.NoError(t, f.settings.ConfigSet("g1", "scam", "enabled", "nope"))
	f.mod.Configure(&f.bot.Configuration, &discordgo.Guild{ID: "g1"})
	assert.False(t, f.mod.ScamEnabled())
}

func TestRolesChanged(t *testing.T) {
	assert := assert.New(t)
	f := setup(t, nil)

	member := &discordgo.Member{User: &discordgo.User{ID: "42", Username: "alice", Discriminator: "1234"}}

	f.mod.RolesChanged(&bot.RoleChange{
		GuildID: "g1",
		UserID:  "42",
		Member:  member,
		Old:     []string{"membership"},
		New:     []string{"membership", "other"},
	})
	assert.Empty(f.session.Sent)

	f.mod.RolesChanged(&bot.RoleChange{
		GuildID: "g1",
		UserID:  "42",
		Member:  member,
		Old:     nil,
		New:     []string{"membership", "supporter"},
	})

	require.Len(t, f.session.Sent, 2)
	assert.Equal("announce", f.session.Sent[0].ChannelID)
	assert.Equal("alice#1234 just bought membership!", f.session.Sent[0].Embed.Description)
	assert.Equal("alice#1234 just bought Supporter!", f.session.Sent[1].Embed.Description)
	assert.Equal(0xff8800, f.session.Sent[0].Embed.Color)
}

func TestRolesChangedMembershipShopRole(t *testing.T) {
	assert := assert.New(t)
	f := setup(t, func(conf *config.Root) {
		conf.Server.ShopRoles = map[string]string{"membership": "Premium"}
	})

	f.mod.RolesChanged(&bot.RoleChange{
		GuildID: "g1",
		UserID:  "42",
		Member:  &discordgo.Member{User: &discordgo.User{ID: "42", Username: "alice", Discriminator: "1234"}},
		New:     []string{"membership"},
	})

	require.Len(t, f.session.Sent, 2)
	assert.Equal("alice#1234 just bought membership!", f.session.Sent[0].Embed.Description)
	assert.Equal("alice#1234 just bought Premium!", f.session.Sent[1].Embed.Description)
}
