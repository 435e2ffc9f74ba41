// Package discord provides narrow chat platform session used by bot modules
package discord

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrNotFound is returned when guild, member or role does not exist
	ErrNotFound = errors.New("not found")
)

// Session is the set of platform operations bot modules rely on
type Session interface {
	UserID() string
	Guild(guildID string) (*discordgo.Guild, error)
	Role(guildID, roleID string) (*discordgo.Role, error)
	Member(guildID, userID string) (*discordgo.Member, error)
	RoleAdd(guildID, userID, roleID string) error
	RoleRemove(guildID, userID, roleID string) error
	React(channelID, messageID, emoji string) error
	Delete(channelID, messageID string) error
	Send(channelID, content string) (*discordgo.Message, error)
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
}

// HasRole returns true if member holds given role
func HasRole(member *discordgo.Member, roleID string) bool {
	if member == nil {
		return false
	}

	for _, r := range member.Roles {
		if r == roleID {
			return true
		}
	}

	return false
}

// IsNotFound reports whether err is a missing entity, either ErrNotFound or REST 404
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}

	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		return rest.Response.StatusCode == http.StatusNotFound
	}

	return false
}
