// Package discordgo provides Discord API adapters using package github.com/bwmarrin/discordgo
package discordgo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/tempo"
	"github.com/benjamonnguyen/tempo/modes"
)

// WebhookExecutor is satisfied by *discordgo.Session.
type WebhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ WebhookExecutor = (*discordgo.Session)(nil)

// WebhookNotifier posts finished session summaries to a channel webhook.
type WebhookNotifier struct {
	cl       WebhookExecutor
	l        log.Logger
	id       string
	token    string
	username string
}

func NewWebhookNotifier(cl WebhookExecutor, webhookURL, username string, l log.Logger) (*WebhookNotifier, error) {
	id, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	return &WebhookNotifier{
		cl:       cl,
		l:        l,
		id:       id,
		token:    token,
		username: username,
	}, nil
}

// ParseWebhookURL extracts the id and token from
// https://discord.com/api/webhooks/{id}/{token}.
func ParseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("invalid webhook url: %s", u.Redacted())
}

func (n *WebhookNotifier) NotifySessionFinished(ctx context.Context, rec tempo.ExistingSessionRecord) error {
	params := &discordgo.WebhookParams{
		Username: n.username,
		Embeds:   []*discordgo.MessageEmbed{SessionEmbed(rec)},
	}
	n.l.Debug("executing webhook", "sid", rec.ID, "mode", rec.Mode)
	if _, err := n.cl.WebhookExecute(n.id, n.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to execute webhook: %w", err)
	}
	return nil
}

func SessionEmbed(rec tempo.ExistingSessionRecord) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Duration", Value: modes.FormatClock(rec.DurationSeconds), Inline: true},
	}
	if rec.Mode == tempo.ModeFlow {
		fields = append(fields,
			&discordgo.MessageEmbedField{Name: "Distractions", Value: fmt.Sprint(rec.Distractions), Inline: true},
			&discordgo.MessageEmbedField{Name: "Earned rest", Value: fmt.Sprintf("%d min", rec.BreakRecommendationMinutes), Inline: true},
		)
	}
	if rec.Rating > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Rating",
			Value: strings.Repeat("★", rec.Rating) + strings.Repeat("☆", 5-rec.Rating),
		})
	}

	return &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("%s session complete", strings.ToUpper(rec.Mode.String()[:1])+rec.Mode.String()[1:]),
		Color:     int(modeColor(rec.Mode)),
		Fields:    fields,
		Timestamp: rec.StartedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func modeColor(m tempo.Mode) Color {
	switch m {
	case tempo.ModeMeditation:
		return ColorPurple
	case tempo.ModePomodoro:
		return ColorGreen
	case tempo.ModeFlow:
		return ColorBlue
	case tempo.ModeStopwatch:
		return ColorGold
	default:
		return ColorLightGrey
	}
}
