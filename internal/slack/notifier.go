// Package slack posts alert lifecycle notifications to a configured
// Slack channel. Notifications are best effort: a delivery failure is
// logged and never fails the originating request.
package slack

import (
	"fmt"
	"log"
	"sync"

	"github.com/noblinks/noblinks/internal/database"
	"github.com/slack-go/slack"
)

// Notifier posts alert notifications using the settings stored in the
// database. Settings are re-read on reload so the token and channel can
// be changed at runtime without a restart.
type Notifier struct {
	mu      sync.RWMutex
	client  *slack.Client
	channel string
	enabled bool
}

// NewNotifier creates a Notifier and loads the current settings
func NewNotifier() *Notifier {
	n := &Notifier{}
	n.Reload()
	return n
}

// Reload re-reads Slack settings from the database
func (n *Notifier) Reload() {
	settings, err := database.GetSlackSettings()
	if err != nil {
		log.Printf("SlackNotifier: could not load settings: %v", err)
		n.mu.Lock()
		n.enabled = false
		n.mu.Unlock()
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = settings.IsActive()
	n.channel = settings.AlertsChannel
	if n.enabled {
		n.client = slack.New(settings.BotToken)
		log.Printf("SlackNotifier: notifications ENABLED (channel: %s)", n.channel)
	} else {
		n.client = nil
	}
}

// severityEmoji maps alert severities to message markers
var severityEmoji = map[string]string{
	database.AlertSeverityCritical: "🔴",
	database.AlertSeverityWarning:  "🟡",
	database.AlertSeverityInfo:     "🔵",
}

// NotifyFiring posts a message when an alert transitions to firing
func (n *Notifier) NotifyFiring(alert *database.Alert) {
	if n == nil {
		return
	}
	n.post(fmt.Sprintf("%s *%s* is firing\nMachine: `%s`\nQuery: `%s`",
		severityEmoji[alert.Severity], alert.Name, alert.Machine, alert.PromQLQuery))
}

// NotifyResolved posts a message when a firing alert resolves
func (n *Notifier) NotifyResolved(alert *database.Alert) {
	if n == nil {
		return
	}
	n.post(fmt.Sprintf("✅ *%s* resolved\nMachine: `%s`", alert.Name, alert.Machine))
}

// post sends a message to the configured channel in a goroutine so the
// caller's request never waits on Slack.
func (n *Notifier) post(message string) {
	n.mu.RLock()
	enabled := n.enabled
	client := n.client
	channel := n.channel
	n.mu.RUnlock()

	if !enabled || client == nil {
		return
	}

	go func() {
		_, _, err := client.PostMessage(channel, slack.MsgOptionText(message, false))
		if err != nil {
			log.Printf("SlackNotifier: failed to post message: %v", err)
		}
	}()
}
