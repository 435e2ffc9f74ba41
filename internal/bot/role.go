package bot

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

var empty = struct{}{}

func (bot *Bot) guild(guildID string) (guild *server) {
	bot.m.RLock()

	guild, ok := bot.servers[guildID]

	bot.m.RUnlock()

	if ok {
		return
	}

	bot.m.Lock()
	defer bot.m.Unlock()

	if guild, ok = bot.servers[guildID]; ok {
		return
	}

	guild = &server{
		roles:   make(map[string]map[string]struct{}),
		members: make(map[string]map[string]struct{}),
		m:       &sync.RWMutex{},
	}

	bot.servers[guildID] = guild

	return
}

func (srv *server) roleBare(roleID string) (members map[string]struct{}) {
	members, ok := srv.roles[roleID]
	if !ok {
		members = make(map[string]struct{})
		srv.roles[roleID] = members
	}

	return
}

func (srv *server) hasRole(userID, roleID string) (res bool) {
	srv.m.RLock()

	members, ok := srv.roles[roleID]
	if ok {
		_, res = members[userID]
	}

	srv.m.RUnlock()

	return
}

func (srv *server) hasMembers(roleID string) (res bool) {
	srv.m.RLock()

	members, ok := srv.roles[roleID]
	if ok {
		res = len(members) > 0
	}

	srv.m.RUnlock()

	return
}

func (srv *server) roleMembers(roleID string) (ids []string) {
	srv.m.RLock()

	for id := range srv.roles[roleID] {
		ids = append(ids, id)
	}

	srv.m.RUnlock()

	return
}

// memberSync stores member role set and returns transition, known is false on first sight
func (srv *server) memberSync(m *discordgo.Member) (old []string, known bool) {
	srv.m.Lock()
	defer srv.m.Unlock()

	user, known := srv.members[m.User.ID]
	if !known {
		user = make(map[string]struct{})
		srv.members[m.User.ID] = user
	}

	for r := range user {
		old = append(old, r)
	}

	for _, r := range old {
		if members, ok := srv.roles[r]; ok {
			delete(members, m.User.ID)

			if len(members) == 0 {
				delete(srv.roles, r)
			}
		}

		delete(user, r)
	}

	for _, r := range m.Roles {
		srv.roleBare(r)[m.User.ID] = empty
		user[r] = empty
	}

	return old, known
}

func (srv *server) memberRemove(userID string) {
	srv.m.Lock()
	defer srv.m.Unlock()

	for r := range srv.members[userID] {
		if members, ok := srv.roles[r]; ok {
			delete(members, userID)

			if len(members) == 0 {
				delete(srv.roles, r)
			}
		}
	}

	delete(srv.members, userID)
}

func (bot *Bot) memberSync(guildID string, m *discordgo.Member, notify bool) {
	if m == nil || m.User == nil {
		return
	}

	old, known := bot.guild(guildID).memberSync(m)

	if !notify || !known {
		return
	}

	change := &RoleChange{
		GuildID: guildID,
		UserID:  m.User.ID,
		Member:  m,
		Old:     old,
		New:     append([]string(nil), m.Roles...),
	}

	if len(change.Added()) == 0 && len(change.Removed()) == 0 {
		return
	}

	for _, h := range bot.roleModules {
		h.RolesChanged(change)
	}
}

func (bot *Bot) handlerMembersChunk(_ *discordgo.Session, chunk *discordgo.GuildMembersChunk) {
	if chunk.GuildID != bot.GuildID() {
		return
	}

	for _, m := range chunk.Members {
		bot.memberSync(chunk.GuildID, m, false)
	}
}

func (bot *Bot) handlerMemberAdd(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.GuildID != bot.GuildID() {
		return
	}

	bot.memberSync(m.GuildID, m.Member, false)
}

func (bot *Bot) handlerMemberRemove(_ *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.GuildID != bot.GuildID() || m.User == nil {
		return
	}

	bot.guild(m.GuildID).memberRemove(m.User.ID)
}

func (bot *Bot) handlerMemberUpdate(_ *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if m.GuildID != bot.GuildID() {
		return
	}

	bot.memberSync(m.GuildID, m.Member, true)
}
