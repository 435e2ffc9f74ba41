package moderation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var giftLink = regexp.MustCompile(`(?i)https?://([\w.-]+)\.gift`)

// officialGiftHost is the only gift link host never flagged
const officialGiftHost = "discord"

// Detector matches scam links and banned words
type Detector struct {
	words     []string
	bodyWords bool
}

// NewDetector returns detector for banned words, bodyWords enables word scan of message text
func NewDetector(words []string, bodyWords bool) *Detector {
	d := &Detector{
		bodyWords: bodyWords,
	}

	for _, w := range words {
		if w != "" {
			d.words = append(d.words, w)
		}
	}

	return d
}

func (d *Detector) link(text string) (string, bool) {
	for _, m := range giftLink.FindAllStringSubmatch(text, -1) {
		if m[1] != officialGiftHost {
			return fmt.Sprintf("gift link %s.gift", m[1]), true
		}
	}

	return "", false
}

func (d *Detector) word(text string) (string, bool) {
	for _, w := range d.words {
		if strings.Contains(text, w) {
			return fmt.Sprintf("banned word %q", w), true
		}
	}

	return "", false
}

// Detect returns reason if message looks like scam
func (d *Detector) Detect(msg *discordgo.Message) (string, bool) {
	if reason, ok := d.link(msg.Content); ok {
		return reason, true
	}

	if d.bodyWords {
		if reason, ok := d.word(msg.Content); ok {
			return reason, true
		}
	}

	for _, e := range msg.Embeds {
		if e == nil {
			continue
		}

		for _, text := range []string{e.Title, e.Description} {
			if reason, ok := d.link(text); ok {
				return reason, true
			}

			if reason, ok := d.word(text); ok {
				return reason, true
			}
		}
	}

	return "", false
}

// checkScam deletes flagged message and posts notice to deleted messages channel
func (mod *Module) checkScam(msg *discordgo.Message) (bool, error) {
	if !mod.ScamEnabled() {
		return false, nil
	}

	reason, ok := mod.detector.Detect(msg)
	if !ok {
		return false, nil
	}

	server := &mod.config.Config.Server

	mod.config.Log.
		WithField("author", msg.Author.ID).
		WithField("channel", msg.ChannelID).
		WithField("reason", reason).
		Info("Deleting scam message")

	err := mod.config.Session.Delete(msg.ChannelID, msg.ID)
	if err != nil {
		return true, fmt.Errorf("deleting message: %w", err)
	}

	actionCount.WithLabelValues("delete").Inc()

	if server.Channels.Deleted == "" {
		return true, nil
	}

	_, err = mod.config.Session.Send(server.Channels.Deleted, render(server.Templates.Scam, msg.Author, reason, ""))
	if err != nil {
		return true, fmt.Errorf("posting scam notice: %w", err)
	}

	return true, nil
}
