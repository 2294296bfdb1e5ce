package slack

import (
	"context"

	"github.com/slack-go/slack"
)

// Service provides the narrow Slack API surface the chat front-end needs.
type Service interface {
	// GetBotUserID returns the bot's own user ID. The result is cached for
	// the lifetime of the service instance.
	GetBotUserID(ctx context.Context) (string, error)

	// PostMessage posts a Block Kit message to a channel and returns the
	// message timestamp. The text parameter is the notification fallback.
	PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error)

	// UpdateMessage replaces an existing message identified by channel and
	// timestamp.
	UpdateMessage(ctx context.Context, channelID string, timestamp string, blocks []slack.Block, text string) error
}
