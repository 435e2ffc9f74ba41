// Package bot provides main bot implementation
package bot

import (
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
	redis "github.com/go-redis/redis/v7"
	"github.com/quaver/qbot/internal/config"
	"github.com/quaver/qbot/internal/discord"
	"github.com/quaver/qbot/internal/model"
	"github.com/quaver/qbot/internal/router"
	"github.com/sirupsen/logrus"
)

// ErrNoReply special error value to avoid auto-reply
var ErrNoReply = errors.New("noreply")

// Options provide configuration options for bot
type Options struct {
	Discord      *discordgo.Session
	Session      discord.Session
	Client       *redis.Client
	Config       *config.Root
	Log          *logrus.Logger
	Settings     model.Settings
	History      model.MuteHistoryStore
	Entitlements model.EntitlementStore
	Modules      []Module
}

// Configuration store configuration for bot
type Configuration struct {
	Discord      *discordgo.Session
	Session      discord.Session
	Client       *redis.Client
	Config       *config.Root
	Log          *logrus.Logger
	Router       *router.Router
	Settings     model.Settings
	History      model.MuteHistoryStore
	Entitlements model.EntitlementStore
	Locks        *MemberLocks
	Modules      []Module
	bot          *Bot
	checks       []*check
	checksLock   sync.RWMutex
}

// GuildID returns configured guild id
func (conf *Configuration) GuildID() string {
	return conf.Config.Server.GuildID
}

// HasRole returns true if user has specified role
func (conf *Configuration) HasRole(guildID, userID, roleID string) bool {
	return conf.bot.guild(guildID).hasRole(userID, roleID)
}

// RoleMembers returns ids of cached members holding role
func (conf *Configuration) RoleMembers(guildID, roleID string) []string {
	return conf.bot.guild(guildID).roleMembers(roleID)
}

// HasMembers returns true if role exists and has non-zero number of members
func (conf *Configuration) HasMembers(guildID, roleID string) bool {
	return conf.bot.guild(guildID).hasMembers(roleID)
}

// Prefix returns command prefix for guild
func (conf *Configuration) Prefix(guildID string) string {
	if conf.bot != nil {
		if p := conf.bot.guild(guildID).currentPrefix(); p != "" {
			return p
		}
	}

	if conf.Config.Server.Prefix != "" {
		return conf.Config.Server.Prefix
	}

	return config.DefaultPrefix
}

func containsString(s string, ss ...string) bool {
	for _, ri := range ss {
		if ri == s {
			return true
		}
	}

	return false
}

// HasPermission returns true if message author is owner, configured admin or has matching permissions
func (conf *Configuration) HasPermission(msg *discordgo.Message, permissions int64, roleIDs []string) bool {
	if msg.Author == nil {
		return false
	}

	return conf.HasPermissionUserID(msg.Member, msg.GuildID, msg.Author.ID, permissions, roleIDs)
}

// HasPermissionUserID returns true if user is owner, configured admin or has matching permissions
func (conf *Configuration) HasPermissionUserID(
	member *discordgo.Member,
	guildID, userID string,
	permissions int64,
	roleIDs []string,
) bool {
	if containsString(userID, conf.Config.Server.Admins...) {
		return true
	}

	guild, _ := conf.Session.Guild(guildID)
	if guild != nil && guild.OwnerID == userID {
		return true
	}

	var admrole string

	if conf.Settings != nil {
		admrole, _ = conf.Settings.ConfigGet(guildID, "auth", "admin.role")
	}

	var err error

	if member == nil {
		member, err = conf.Session.Member(guildID, userID)
		if err != nil {
			conf.Log.WithError(err).WithField("user", userID).Error("Loading member")

			return false
		}
	}

	for _, r := range member.Roles {
		var role *discordgo.Role

		role, err = conf.Session.Role(guildID, r)
		if err != nil {
			conf.Log.WithError(err).WithField("role", r).Error("Loading role")
			continue
		}

		if evalPermissions(role, permissions, admrole, roleIDs) {
			return true
		}
	}

	return false
}

func evalPermissions(role *discordgo.Role, permissions int64, admrole string, roleIDs []string) bool {
	if role.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}

	if permissions != 0 && role.Permissions&permissions != 0 {
		return true
	}

	if admrole != "" && role.ID == admrole {
		return true
	}

	return containsString(role.ID, roleIDs...)
}

// Reload provides config reloading interface to modules
func (conf *Configuration) Reload() {
	if conf.bot != nil {
		conf.bot.Reload()
	}
}

// Module interface incapsulates methods for distinct functionality
type Module interface {
	Initialize(bot *Configuration) error
	Configure(bot *Configuration, server *discordgo.Guild)
	Shutdown(bot *Configuration)
}

// RoleChange describes member role set transition
type RoleChange struct {
	GuildID string
	UserID  string
	Member  *discordgo.Member
	Old     []string
	New     []string
}

func difference(a, b []string) (res []string) {
	for _, r := range a {
		if !containsString(r, b...) {
			res = append(res, r)
		}
	}

	return
}

// Added returns roles present in new set but absent in old
func (change *RoleChange) Added() []string {
	return difference(change.New, change.Old)
}

// Removed returns roles present in old set but absent in new
func (change *RoleChange) Removed() []string {
	return difference(change.Old, change.New)
}

// RoleModule interface marks modules interested in role changes
type RoleModule interface {
	RolesChanged(change *RoleChange)
}

// NewBot provides new instance of bot
func NewBot(options Options) (*Bot, error) {
	if options.Log == nil {
		options.Log = logrus.New()
	}

	if options.Session == nil && options.Discord != nil {
		options.Session = discord.New(options.Discord)
	}

	if options.Settings == nil && options.Client != nil {
		options.Settings = model.NewRepository(options.Client)
	}

	var roleModules []RoleModule

	for _, m := range options.Modules {
		rm, ok := m.(RoleModule)
		if ok {
			roleModules = append(roleModules, rm)
		}
	}

	bot := &Bot{
		Configuration: Configuration{
			Discord:      options.Discord,
			Session:      options.Session,
			Client:       options.Client,
			Config:       options.Config,
			Log:          options.Log,
			Router:       router.NewRouter(),
			Settings:     options.Settings,
			History:      options.History,
			Entitlements: options.Entitlements,
			Locks:        NewMemberLocks(),
			Modules:      options.Modules,
		},
		m:           &sync.RWMutex{},
		roleModules: roleModules,
		servers:     make(map[string]*server),
	}

	bot.Configuration.bot = bot

	bot.AddCheck("commands", PriorityCommands, bot.checkCommands)

	for _, m := range bot.Modules {
		err := m.Initialize(&bot.Configuration)
		if err != nil {
			return nil, err
		}
	}

	if bot.Discord != nil {
		bot.Discord.AddHandler(bot.handlerGuildCreate)
		bot.Discord.AddHandler(bot.handlerMessageCreate)
		bot.Discord.AddHandler(bot.handlerMemberAdd)
		bot.Discord.AddHandler(bot.handlerMembersChunk)
		bot.Discord.AddHandler(bot.handlerMemberRemove)
		bot.Discord.AddHandler(bot.handlerMemberUpdate)
	}

	return bot, nil
}
