package donator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quaver/qbot/internal/bot"
	"github.com/quaver/qbot/internal/discord/discordtest"
	"github.com/quaver/qbot/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guildID      = "g1"
	donatorRole  = "donator"
	memberRole   = "membership"
	testInterval = 10 * time.Millisecond
)

var now = time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC)

type roster struct {
	session *discordtest.Session
}

func (r roster) RoleMembers(_, roleID string) (ids []string) {
	for id := range r.session.Members {
		for _, rid := range r.session.MemberRoles(id) {
			if rid == roleID {
				ids = append(ids, id)
			}
		}
	}

	return
}

func testSync() (*Synchronizer, *discordtest.Session, *model.MemEntitlements) {
	session := discordtest.New()
	session.AddRole(donatorRole, "Donator", 0)
	session.AddRole(memberRole, "Membership", 0)

	store := model.NewMemEntitlements()

	return &Synchronizer{
		Session:          session,
		Roster:           roster{session: session},
		Store:            store,
		Locks:            bot.NewMemberLocks(),
		Log:              logrus.New(),
		GuildID:          guildID,
		RoleID:           donatorRole,
		MembershipRoleID: memberRole,
		Now:              func() time.Time { return now },
	}, session, store
}

func outcomeFor(t *testing.T, outcomes []Outcome, id string) Outcome {
	t.Helper()

	for _, o := range outcomes {
		if o.UserID == id {
			return o
		}
	}

	t.Fatalf("no outcome for %s", id)

	return Outcome{}
}

func TestPassScenarios(t *testing.T) {
	assert := assert.New(t)
	s, session, store := testSync()

	session.AddMember("permanent", donatorRole)
	session.AddMember("unlinked", donatorRole)
	session.AddMember("expired", donatorRole)
	session.AddMember("active", donatorRole)
	session.AddMember("plain")

	store.Put("permanent", 0)
	store.Put("expired", now.Add(-time.Hour).UnixMilli())
	store.Put("active", now.Add(time.Hour).UnixMilli())

	outcomes, err := s.Pass(context.Background())
	require.NoError(t, err)
	assert.Len(outcomes, 4)

	assert.Equal(ActionRetained, outcomeFor(t, outcomes, "permanent").Action)
	assert.Equal(ActionRetained, outcomeFor(t, outcomes, "active").Action)

	unlinked := outcomeFor(t, outcomes, "unlinked")
	assert.Equal(ActionRevoked, unlinked.Action)
	assert.Equal(ReasonUnlinked, unlinked.Reason)

	expired := outcomeFor(t, outcomes, "expired")
	assert.Equal(ActionRevoked, expired.Action)
	assert.Equal(ReasonExpired, expired.Reason)

	assert.Equal([]string{donatorRole}, session.MemberRoles("permanent"))
	assert.Empty(session.MemberRoles("unlinked"))
	assert.Empty(session.MemberRoles("expired"))
}

func TestPassPermanentNeverExpires(t *testing.T) {
	s, session, store := testSync()

	session.AddMember("42", donatorRole)
	store.Put("42", 0)

	for _, offset := range []time.Duration{0, 24 * time.Hour, 24 * 365 * 100 * time.Hour} {
		at := now.Add(offset)
		s.Now = func() time.Time { return at }

		outcomes, err := s.Pass(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ActionRetained, outcomes[0].Action)
	}

	assert.Equal(t, []string{donatorRole}, session.MemberRoles("42"))
}

func TestPassMembershipSkip(t *testing.T) {
	assert := assert.New(t)
	s, session, store := testSync()

	session.AddMember("42", donatorRole, memberRole)
	store.Put("42", now.Add(-time.Hour).UnixMilli())

	outcomes, err := s.Pass(context.Background())
	require.NoError(t, err)

	assert.Equal(ActionSkipped, outcomes[0].Action)
	assert.Zero(store.Queries())
	assert.ElementsMatch([]string{donatorRole, memberRole}, session.MemberRoles("42"))
}

func TestPassFailureIsolated(t *testing.T) {
	assert := assert.New(t)
	s, session, store := testSync()

	session.AddMember("1", donatorRole)
	session.AddMember("2", donatorRole)
	store.Err = errors.New("connection refused")

	outcomes, err := s.Pass(context.Background())
	require.NoError(t, err)
	assert.Len(outcomes, 2)

	for _, o := range outcomes {
		assert.Equal(ActionFailed, o.Action)
		assert.Error(o.Err)
	}

	assert.Equal(2, store.Queries())
	assert.Zero(session.RoleDels)
}

func TestPassRemoveFailure(t *testing.T) {
	assert := assert.New(t)
	s, session, _ := testSync()

	session.AddMember("1", donatorRole)
	session.Fail["RoleRemove"] = errors.New("missing permissions")

	outcomes, err := s.Pass(context.Background())
	require.NoError(t, err)

	assert.Equal(ActionFailed, outcomes[0].Action)
	assert.Contains(outcomes[0].Err.Error(), ReasonUnlinked)
}

func TestPassRoleUnresolvable(t *testing.T) {
	assert := assert.New(t)
	s, session, store := testSync()

	session.AddMember("1", donatorRole)
	delete(session.Roles, donatorRole)

	outcomes, err := s.Pass(context.Background())
	assert.ErrorIs(err, ErrRoleUnresolvable)
	assert.Empty(outcomes)
	assert.Zero(store.Queries())

	s.RoleID = ""
	_, err = s.Pass(context.Background())
	assert.ErrorIs(err, ErrRoleUnresolvable)
}

func TestRun(t *testing.T) {
	s, session, _ := testSync()

	session.AddMember("1", donatorRole)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		s.Run(ctx, testInterval)
	}()

	assert.Eventually(t, func() bool {
		return len(session.MemberRoles("1")) == 0
	}, time.Second, testInterval)

	cancel()
	<-done
}

func testGateway() (*Gateway, *discordtest.Session) {
	session := discordtest.New()
	session.AddRole(donatorRole, "Donator", 0)

	return &Gateway{
		Session:          session,
		Locks:            bot.NewMemberLocks(),
		Log:              logrus.New(),
		GuildID:          guildID,
		RoleID:           donatorRole,
		MembershipRoleID: memberRole,
	}, session
}

func TestGatewayIdempotent(t *testing.T) {
	assert := assert.New(t)
	g, session := testGateway()

	session.AddMember("42")

	assert.NoError(g.Grant("42"))
	assert.NoError(g.Grant("42"))
	assert.Equal([]string{donatorRole}, session.MemberRoles("42"))

	assert.NoError(g.Revoke("42"))
	assert.NoError(g.Revoke("42"))
	assert.Empty(session.MemberRoles("42"))
}

func TestGatewayErrors(t *testing.T) {
	assert := assert.New(t)
	g, session := testGateway()

	assert.ErrorIs(g.Grant("missing"), ErrMemberNotFound)
	assert.ErrorIs(g.Revoke("missing"), ErrMemberNotFound)

	session.AddMember("42")
	delete(session.Roles, donatorRole)

	assert.ErrorIs(g.Grant("42"), ErrRoleNotConfigured)

	g.RoleID = ""
	assert.ErrorIs(g.Revoke("42"), ErrRoleNotConfigured)

	session.Fail["Member"] = errors.New("timeout")
	err := g.Grant("42")
	assert.Error(err)
	assert.NotErrorIs(err, ErrMemberNotFound)
}

func TestGatewayQuery(t *testing.T) {
	assert := assert.New(t)
	g, session := testGateway()

	session.AddMember("donator", donatorRole)
	session.AddMember("member", memberRole)

	ok, err := g.Query("donator")
	assert.NoError(err)
	assert.False(ok)

	ok, err = g.Query("member")
	assert.NoError(err)
	assert.True(ok)

	_, err = g.Query("missing")
	assert.ErrorIs(err, ErrMemberNotFound)
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "revoked", ActionRevoked.String())
	assert.Equal(t, "skipped", ActionSkipped.String())
	assert.Equal(t, "failed", ActionFailed.String())
	assert.Equal(t, "retained", ActionRetained.String())
}
