package donator

import (
	"errors"
	"fmt"

	"github.com/quaver/qbot/internal/discord"
	"github.com/sirupsen/logrus"
)

var (
	// ErrMemberNotFound is returned when member is not present in guild
	ErrMemberNotFound = errors.New("member not found")
	// ErrRoleNotConfigured is returned when donator role is missing or unresolvable
	ErrRoleNotConfigured = errors.New("role not configured")
)

// Gateway grants and revokes donator role on explicit request
type Gateway struct {
	Session          discord.Session
	Locks            Locker
	Log              logrus.FieldLogger
	GuildID          string
	RoleID           string
	MembershipRoleID string
}

func (g *Gateway) member(userID string) error {
	_, err := g.Session.Member(g.GuildID, userID)
	if discord.IsNotFound(err) {
		g.Log.WithField("user", userID).Warn("Member not found")
		return ErrMemberNotFound
	}

	return err
}

func (g *Gateway) role() error {
	if g.RoleID == "" {
		g.Log.Error("Donator role is not configured")
		return ErrRoleNotConfigured
	}

	_, err := g.Session.Role(g.GuildID, g.RoleID)
	if err != nil {
		g.Log.WithError(err).WithField("role", g.RoleID).Error("Resolving donator role")
		return fmt.Errorf("%w: %v", ErrRoleNotConfigured, err)
	}

	return nil
}

func (g *Gateway) mutate(userID string, fn func(guildID, userID, roleID string) error) error {
	unlock := g.Locks.Lock(userID)
	defer unlock()

	if err := g.member(userID); err != nil {
		return err
	}

	if err := g.role(); err != nil {
		return err
	}

	return fn(g.GuildID, userID, g.RoleID)
}

// Grant adds donator role to member, granting held role succeeds
func (g *Gateway) Grant(userID string) error {
	err := g.mutate(userID, g.Session.RoleAdd)
	if err == nil {
		gatewayCount.WithLabelValues("grant").Inc()
		g.Log.WithField("user", userID).Info("Granted donator role")
	}

	return err
}

// Revoke removes donator role from member, revoking absent role succeeds
func (g *Gateway) Revoke(userID string) error {
	err := g.mutate(userID, g.Session.RoleRemove)
	if err == nil {
		gatewayCount.WithLabelValues("revoke").Inc()
		g.Log.WithField("user", userID).Info("Revoked donator role")
	}

	return err
}

// Query reports whether member currently holds membership role
func (g *Gateway) Query(userID string) (bool, error) {
	member, err := g.Session.Member(g.GuildID, userID)
	if err != nil {
		if discord.IsNotFound(err) {
			return false, ErrMemberNotFound
		}

		return false, err
	}

	return discord.HasRole(member, g.MembershipRoleID), nil
}
