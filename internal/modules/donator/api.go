// Package donator provides bot module keeping donator role in sync with billing records
package donator

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/quaver/qbot/internal/bot"
	"github.com/quaver/qbot/internal/modules/auth"
	"github.com/quaver/qbot/internal/router"
)

// Module provides donator role reconciliation and grant gateway
type Module struct {
	config  *bot.Configuration
	sync    *Synchronizer
	gateway *Gateway
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// New provides module instance
func New() *Module {
	return &Module{}
}

// Gateway returns grant/revoke surface, available after Initialize
func (mod *Module) Gateway() *Gateway {
	return mod.gateway
}

// Synchronizer returns reconciliation loop, available after Initialize
func (mod *Module) Synchronizer() *Synchronizer {
	return mod.sync
}

// Initialize initialized module at start
func (mod *Module) Initialize(config *bot.Configuration) error {
	mod.config = config

	server := &config.Config.Server
	log := config.Log.WithField("module", "donator")

	mod.gateway = &Gateway{
		Session:          config.Session,
		Locks:            config.Locks,
		Log:              log,
		GuildID:          server.GuildID,
		RoleID:           server.DonatorRole,
		MembershipRoleID: server.MembershipRole,
	}

	mod.sync = &Synchronizer{
		Session:          config.Session,
		Roster:           config,
		Store:            config.Entitlements,
		Locks:            config.Locks,
		Log:              log,
		GuildID:          server.GuildID,
		RoleID:           server.DonatorRole,
		MembershipRoleID: server.MembershipRole,
	}

	config.Router.Group("admin").
		SetDescription("administrative commands").
		On("sync", "run donator role reconciliation now", mod.commandSync).
		Set(auth.RouteConfigKey, auth.Admin())

	return nil
}

func (mod *Module) enabled() bool {
	server := &mod.config.Config.Server

	if server.DonatorRole == "" {
		mod.config.Log.Warn("Donator role is not configured, reconciliation disabled")
		return false
	}

	if mod.config.Entitlements == nil {
		mod.config.Log.Warn("Billing store is not available, reconciliation disabled")
		return false
	}

	return server.SyncEnabled()
}

// Configure starts reconciliation loop once guild is available
func (mod *Module) Configure(config *bot.Configuration, guild *discordgo.Guild) {
	mod.once.Do(func() {
		if !mod.enabled() {
			return
		}

		var ctx context.Context

		ctx, mod.cancel = context.WithCancel(context.Background())
		mod.done = make(chan struct{})

		interval := config.Config.Server.Sync.Interval

		config.Log.WithField("interval", interval).Info("Starting donator reconciliation")

		go func() {
			defer close(mod.done)

			mod.sync.Run(ctx, interval)
		}()
	})
}

// Shutdown stops reconciliation loop and waits for running pass
func (mod *Module) Shutdown(config *bot.Configuration) {
	if mod.cancel == nil {
		return
	}

	mod.cancel()
	<-mod.done
}

func (mod *Module) commandSync(ctx *router.Context) error {
	if mod.config.Entitlements == nil {
		return fmt.Errorf("billing store is not available")
	}

	outcomes, err := mod.sync.Pass(context.Background())
	if err != nil {
		return err
	}

	counts := make(map[Action]int)

	for _, o := range outcomes {
		counts[o.Action]++
	}

	return ctx.ReplyEmbed(fmt.Sprintf(
		"Checked %d members: %d retained, %d revoked, %d skipped, %d failed",
		len(outcomes),
		counts[ActionRetained],
		counts[ActionRevoked],
		counts[ActionSkipped],
		counts[ActionFailed],
	))
}
