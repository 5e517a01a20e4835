package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// SlackChannel posts alerts to a Slack incoming webhook.
type SlackChannel struct {
	client *resty.Client
	url    string
}

// NewSlack creates a Slack webhook channel.
func NewSlack(url string) *SlackChannel {
	return &SlackChannel{
		client: resty.New().SetTimeout(10 * time.Second),
		url:    url,
	}
}

// Name returns the channel identifier.
func (c *SlackChannel) Name() string { return "slack" }

// Send posts the alert text. Slack acknowledges a delivered webhook with a
// literal "ok" body.
func (c *SlackChannel) Send(ctx context.Context, alert *Alert) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"text": FormatMessage(alert)}).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("failed to post Slack webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("Slack webhook returned status %d", resp.StatusCode())
	}
	if body := resp.String(); body != "ok" {
		return fmt.Errorf("unexpected Slack webhook response: %q", body)
	}
	return nil
}

// DiscordChannel posts alerts to a Discord webhook.
type DiscordChannel struct {
	client *resty.Client
	url    string
}

// NewDiscord creates a Discord webhook channel.
func NewDiscord(url string) *DiscordChannel {
	return &DiscordChannel{
		client: resty.New().SetTimeout(10 * time.Second),
		url:    url,
	}
}

// Name returns the channel identifier.
func (c *DiscordChannel) Name() string { return "discord" }

// Send posts the alert text. Discord acknowledges with 204 No Content.
func (c *DiscordChannel) Send(ctx context.Context, alert *Alert) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"content": FormatMessage(alert)}).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("failed to post Discord webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("Discord webhook returned status %d", resp.StatusCode())
	}
	return nil
}

// VoiceChannel triggers a webhook that places a phone call reading the
// alert aloud.
type VoiceChannel struct {
	client *resty.Client
	url    string
}

// NewVoice creates a voice call webhook channel.
func NewVoice(url string) *VoiceChannel {
	return &VoiceChannel{
		client: resty.New().SetTimeout(10 * time.Second),
		url:    url,
	}
}

// Name returns the channel identifier.
func (c *VoiceChannel) Name() string { return "voice" }

// Send triggers the call with the spoken alert sentence plus the raw move
// so the far end can render its own phrasing.
func (c *VoiceChannel) Send(ctx context.Context, alert *Alert) error {
	magnitude := alert.PercentChange
	if magnitude < 0 {
		magnitude = -magnitude
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"ticker":    alert.Ticker,
			"direction": Direction(alert),
			"magnitude": magnitude,
			"message":   VoiceMessage(alert),
		}).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("failed to trigger voice webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("voice webhook returned status %d", resp.StatusCode())
	}
	return nil
}
