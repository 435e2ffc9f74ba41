package donator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quaver/qbot/internal/discord"
	"github.com/quaver/qbot/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
)

// Revoke reasons
const (
	ReasonUnlinked = "no longer linked"
	ReasonExpired  = "expired"
)

// Action taken for single member during reconciliation pass
type Action int

// Actions
const (
	ActionSkipped Action = iota
	ActionRetained
	ActionRevoked
	ActionFailed
)

func (a Action) String() string {
	switch a {
	case ActionSkipped:
		return "skipped"
	case ActionRetained:
		return "retained"
	case ActionRevoked:
		return "revoked"
	default:
		return "failed"
	}
}

var (
	// ErrRoleUnresolvable is returned when donator role cannot be resolved for a pass
	ErrRoleUnresolvable = errors.New("donator role unresolvable")
)

// Roster lists cached role holders
type Roster interface {
	RoleMembers(guildID, roleID string) []string
}

// Locker serialises role mutations per member
type Locker interface {
	Lock(userID string) (unlock func())
}

// Outcome of reconciliation for single member
type Outcome struct {
	UserID string
	Action Action
	Reason string
	Err    error
}

// Synchronizer revokes donator role from members whose billing record lapsed
type Synchronizer struct {
	Session          discord.Session
	Roster           Roster
	Store            model.EntitlementStore
	Locks            Locker
	Log              logrus.FieldLogger
	GuildID          string
	RoleID           string
	MembershipRoleID string
	Now              func() time.Time
}

func (s *Synchronizer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}

	return time.Now()
}

// Pass performs single reconciliation over every cached donator role holder
func (s *Synchronizer) Pass(ctx context.Context) ([]Outcome, error) {
	if s.RoleID == "" {
		return nil, ErrRoleUnresolvable
	}

	if _, err := s.Session.Role(s.GuildID, s.RoleID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRoleUnresolvable, err)
	}

	ids := s.Roster.RoleMembers(s.GuildID, s.RoleID)
	outcomes := make([]Outcome, len(ids))

	var wg conc.WaitGroup

	for i, id := range ids {
		i, id := i, id

		outcomes[i] = Outcome{UserID: id, Action: ActionFailed}

		wg.Go(func() {
			outcomes[i] = s.reconcile(ctx, id)
		})
	}

	if r := wg.WaitAndRecover(); r != nil {
		s.Log.WithError(r.AsError()).Error("Reconciling member panicked")
	}

	for _, o := range outcomes {
		s.report(o)
	}

	return outcomes, nil
}

func (s *Synchronizer) report(o Outcome) {
	log := s.Log.WithField("user", o.UserID)

	switch o.Action {
	case ActionRevoked:
		revokeCount.WithLabelValues(o.Reason).Inc()
		log.WithField("reason", o.Reason).Info("Revoked donator role")
	case ActionFailed:
		log.WithError(o.Err).Error("Reconciling member")
	}

	passCount.WithLabelValues(o.Action.String()).Inc()
}

func (s *Synchronizer) reconcile(ctx context.Context, userID string) Outcome {
	res := Outcome{UserID: userID}

	unlock := s.Locks.Lock(userID)
	defer unlock()

	member, err := s.Session.Member(s.GuildID, userID)
	if err != nil {
		if discord.IsNotFound(err) {
			res.Action = ActionSkipped
			return res
		}

		res.Action, res.Err = ActionFailed, err

		return res
	}

	if !discord.HasRole(member, s.RoleID) {
		res.Action = ActionSkipped
		return res
	}

	if s.MembershipRoleID != "" && discord.HasRole(member, s.MembershipRoleID) {
		res.Action = ActionSkipped
		return res
	}

	rec, err := s.Store.Entitlement(ctx, userID)

	switch {
	case errors.Is(err, model.ErrRecordNotFound):
		res.Reason = ReasonUnlinked
	case err != nil:
		res.Action, res.Err = ActionFailed, err
		return res
	case rec.Active(s.now()):
		res.Action = ActionRetained
		return res
	default:
		res.Reason = ReasonExpired
	}

	err = s.Session.RoleRemove(s.GuildID, userID, s.RoleID)
	if err != nil {
		res.Action, res.Err = ActionFailed, fmt.Errorf("removing role (%s): %w", res.Reason, err)
		return res
	}

	res.Action = ActionRevoked

	return res
}

// Run performs pass on every interval tick until context is done, ticks never overlap
func (s *Synchronizer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Pass(ctx); err != nil {
				s.Log.WithError(err).Warn("Skipping reconciliation tick")
			}
		}
	}
}
