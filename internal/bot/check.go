package bot

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
	"github.com/quaver/qbot/internal/router"
)

// Check priorities, lower runs first
const (
	PriorityReactions = -10
	PriorityCommands  = 0
	PriorityScam      = 10
)

// CheckFunc inspects inbound message, stop prevents later checks from running
type CheckFunc func(msg *discordgo.Message) (stop bool, err error)

// CheckResult is the outcome of single message check
type CheckResult struct {
	Name string
	Stop bool
	Err  error
}

type check struct {
	name     string
	priority int
	fn       CheckFunc
}

// AddCheck registers message check, checks with equal priority run in registration order
func (conf *Configuration) AddCheck(name string, priority int, fn CheckFunc) {
	conf.checksLock.Lock()
	defer conf.checksLock.Unlock()

	conf.checks = append(conf.checks, &check{
		name:     name,
		priority: priority,
		fn:       fn,
	})

	sort.SliceStable(conf.checks, func(i, j int) bool {
		return conf.checks[i].priority < conf.checks[j].priority
	})
}

// Checks returns registered check names in execution order
func (conf *Configuration) Checks() (names []string) {
	conf.checksLock.RLock()
	defer conf.checksLock.RUnlock()

	for _, c := range conf.checks {
		names = append(names, c.name)
	}

	return
}

func runCheck(c *check, msg *discordgo.Message) (res CheckResult) {
	res.Name = c.name

	defer func() {
		if r := recover(); r != nil {
			res.Stop = false
			res.Err = fmt.Errorf("check %s panicked: %v", c.name, r)
		}
	}()

	res.Stop, res.Err = c.fn(msg)

	return
}

// RunChecks runs every check in order, a failing check never skips the following ones
func (conf *Configuration) RunChecks(msg *discordgo.Message) (results []CheckResult) {
	conf.checksLock.RLock()
	checks := append([]*check(nil), conf.checks...)
	conf.checksLock.RUnlock()

	for _, c := range checks {
		res := runCheck(c, msg)
		results = append(results, res)

		checkCount.WithLabelValues(c.name, resultLabel(res)).Inc()

		if res.Stop {
			break
		}
	}

	return
}

func resultLabel(res CheckResult) string {
	switch {
	case res.Err != nil:
		return "error"
	case res.Stop:
		return "stop"
	default:
		return "ok"
	}
}

func (bot *Bot) checkCommands(msg *discordgo.Message) (bool, error) {
	err := bot.Router.Dispatch(bot.Session, bot.Prefix(msg.GuildID), msg)
	if errors.Is(err, router.ErrNotMatched) || errors.Is(err, ErrNoReply) {
		return false, nil
	}

	return false, err
}
