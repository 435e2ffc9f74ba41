package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type session struct {
	discord *discordgo.Session
}

// New wraps discordgo session, preferring state cache over REST calls
func New(s *discordgo.Session) Session {
	return &session{
		discord: s,
	}
}

func (s *session) UserID() string {
	if s.discord.State == nil || s.discord.State.User == nil {
		return ""
	}

	return s.discord.State.User.ID
}

func (s *session) Guild(guildID string) (*discordgo.Guild, error) {
	if g, err := s.discord.State.Guild(guildID); err == nil {
		return g, nil
	}

	g, err := s.discord.Guild(guildID)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("guild %s: %w", guildID, ErrNotFound)
		}

		return nil, err
	}

	return g, nil
}

func (s *session) Role(guildID, roleID string) (*discordgo.Role, error) {
	if r, err := s.discord.State.Role(guildID, roleID); err == nil {
		return r, nil
	}

	roles, err := s.discord.GuildRoles(guildID)
	if err != nil {
		return nil, err
	}

	for _, r := range roles {
		if r.ID == roleID {
			return r, nil
		}
	}

	return nil, fmt.Errorf("role %s: %w", roleID, ErrNotFound)
}

func (s *session) Member(guildID, userID string) (*discordgo.Member, error) {
	if m, err := s.discord.State.Member(guildID, userID); err == nil {
		return m, nil
	}

	m, err := s.discord.GuildMember(guildID, userID)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("member %s: %w", userID, ErrNotFound)
		}

		return nil, err
	}

	return m, nil
}

func (s *session) RoleAdd(guildID, userID, roleID string) error {
	return s.discord.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (s *session) RoleRemove(guildID, userID, roleID string) error {
	return s.discord.GuildMemberRoleRemove(guildID, userID, roleID)
}

func (s *session) React(channelID, messageID, emoji string) error {
	return s.discord.MessageReactionAdd(channelID, messageID, emoji)
}

func (s *session) Delete(channelID, messageID string) error {
	return s.discord.ChannelMessageDelete(channelID, messageID)
}

func (s *session) Send(channelID, content string) (*discordgo.Message, error) {
	return s.discord.ChannelMessageSend(channelID, content)
}

func (s *session) SendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return s.discord.ChannelMessageSendEmbed(channelID, embed)
}
