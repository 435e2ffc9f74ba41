// Package discordtest provides in-memory discord session for tests
package discordtest

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/quaver/qbot/internal/discord"
)

// Sent records a message sent through fake session
type Sent struct {
	ChannelID string
	Content   string
	Embed     *discordgo.MessageEmbed
}

// Reaction records a reaction added through fake session
type Reaction struct {
	ChannelID string
	MessageID string
	Emoji     string
}

// Session is an in-memory discord.Session
type Session struct {
	Self    string
	Guilds  map[string]*discordgo.Guild
	Roles   map[string]*discordgo.Role
	Members map[string]*discordgo.Member

	Sent      []Sent
	Reactions []Reaction
	Deleted   []string
	RoleAdds  int
	RoleDels  int

	// Fail forces error on calls by method name, e.g. "RoleRemove"
	Fail map[string]error

	m sync.Mutex
}

var _ discord.Session = (*Session)(nil)

// New returns empty fake session
func New() *Session {
	return &Session{
		Self:    "bot",
		Guilds:  make(map[string]*discordgo.Guild),
		Roles:   make(map[string]*discordgo.Role),
		Members: make(map[string]*discordgo.Member),
		Fail:    make(map[string]error),
	}
}

// AddRole registers a guild role
func (s *Session) AddRole(id, name string, permissions int64) *discordgo.Role {
	s.m.Lock()
	defer s.m.Unlock()

	r := &discordgo.Role{
		ID:          id,
		Name:        name,
		Permissions: permissions,
	}

	s.Roles[id] = r

	return r
}

// AddMember registers a guild member holding given roles
func (s *Session) AddMember(id string, roles ...string) *discordgo.Member {
	s.m.Lock()
	defer s.m.Unlock()

	m := &discordgo.Member{
		User: &discordgo.User{
			ID:            id,
			Username:      "user" + id,
			Discriminator: "0001",
		},
		Roles: append([]string(nil), roles...),
	}

	s.Members[id] = m

	return m
}

// MemberRoles returns snapshot of member roles
func (s *Session) MemberRoles(id string) []string {
	s.m.Lock()
	defer s.m.Unlock()

	m, ok := s.Members[id]
	if !ok {
		return nil
	}

	return append([]string(nil), m.Roles...)
}

func (s *Session) fail(method string) error {
	return s.Fail[method]
}

// UserID implementation
func (s *Session) UserID() string {
	return s.Self
}

// Guild implementation
func (s *Session) Guild(guildID string) (*discordgo.Guild, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("Guild"); err != nil {
		return nil, err
	}

	g, ok := s.Guilds[guildID]
	if !ok {
		return nil, fmt.Errorf("guild %s: %w", guildID, discord.ErrNotFound)
	}

	return g, nil
}

// Role implementation
func (s *Session) Role(guildID, roleID string) (*discordgo.Role, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("Role"); err != nil {
		return nil, err
	}

	r, ok := s.Roles[roleID]
	if !ok {
		return nil, fmt.Errorf("role %s: %w", roleID, discord.ErrNotFound)
	}

	return r, nil
}

// Member implementation, returns a copy to mimic REST semantics
func (s *Session) Member(guildID, userID string) (*discordgo.Member, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("Member"); err != nil {
		return nil, err
	}

	m, ok := s.Members[userID]
	if !ok {
		return nil, fmt.Errorf("member %s: %w", userID, discord.ErrNotFound)
	}

	c := *m
	c.GuildID = guildID
	c.Roles = append([]string(nil), m.Roles...)

	return &c, nil
}

// RoleAdd implementation
func (s *Session) RoleAdd(guildID, userID, roleID string) error {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("RoleAdd"); err != nil {
		return err
	}

	m, ok := s.Members[userID]
	if !ok {
		return fmt.Errorf("member %s: %w", userID, discord.ErrNotFound)
	}

	s.RoleAdds++

	if discord.HasRole(m, roleID) {
		return nil
	}

	m.Roles = append(m.Roles, roleID)

	return nil
}

// RoleRemove implementation
func (s *Session) RoleRemove(guildID, userID, roleID string) error {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("RoleRemove"); err != nil {
		return err
	}

	m, ok := s.Members[userID]
	if !ok {
		return fmt.Errorf("member %s: %w", userID, discord.ErrNotFound)
	}

	s.RoleDels++

	roles := m.Roles[:0]

	for _, r := range m.Roles {
		if r != roleID {
			roles = append(roles, r)
		}
	}

	m.Roles = roles

	return nil
}

// React implementation
func (s *Session) React(channelID, messageID, emoji string) error {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("React"); err != nil {
		return err
	}

	s.Reactions = append(s.Reactions, Reaction{
		ChannelID: channelID,
		MessageID: messageID,
		Emoji:     emoji,
	})

	return nil
}

// Delete implementation
func (s *Session) Delete(channelID, messageID string) error {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("Delete"); err != nil {
		return err
	}

	s.Deleted = append(s.Deleted, messageID)

	return nil
}

// Send implementation
func (s *Session) Send(channelID, content string) (*discordgo.Message, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("Send"); err != nil {
		return nil, err
	}

	s.Sent = append(s.Sent, Sent{
		ChannelID: channelID,
		Content:   content,
	})

	return &discordgo.Message{
		ID:        fmt.Sprintf("sent%d", len(s.Sent)),
		ChannelID: channelID,
		Content:   content,
	}, nil
}

// SendEmbed implementation
func (s *Session) SendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("SendEmbed"); err != nil {
		return nil, err
	}

	s.Sent = append(s.Sent, Sent{
		ChannelID: channelID,
		Embed:     embed,
	})

	return &discordgo.Message{
		ID:        fmt.Sprintf("sent%d", len(s.Sent)),
		ChannelID: channelID,
		Embeds:    []*discordgo.MessageEmbed{embed},
	}, nil
}
