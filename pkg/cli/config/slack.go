package config

import (
	slacksvc "github.com/oneiro-lab/morpheus/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for the chat bot front-end. Both the bot token and
// the signing secret must be set for the bot to be enabled.
type Slack struct {
	botToken      string
	signingSecret string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token",
			Category:    "Slack",
			Sources:     cli.EnvVars("MORPHEUS_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (for webhook verification)",
			Category:    "Slack",
			Sources:     cli.EnvVars("MORPHEUS_SLACK_SIGNING_SECRET"),
			Destination: &x.signingSecret,
		},
	}
}

// IsConfigured returns true when both credentials are present.
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.signingSecret != ""
}

// SigningSecret returns the webhook signing secret
func (x *Slack) SigningSecret() string {
	return x.signingSecret
}

// Configure creates the Slack API service from the bot token.
func (x *Slack) Configure() (slacksvc.Service, error) {
	return slacksvc.New(x.botToken)
}
