package config

import (
	"net/http"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oneiro-lab/morpheus/pkg/service/telegraph"
	"github.com/urfave/cli/v3"
)

// Telegraph holds CLI flags for the Telegra.ph publishing service
type Telegraph struct {
	enabled     bool
	shortName   string
	authorName  string
	accessToken string
	proxyURL    string
}

func (x *Telegraph) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "telegraph",
			Usage:       "Enable publishing memories to Telegra.ph",
			Category:    "Telegraph",
			Sources:     cli.EnvVars("MORPHEUS_TELEGRAPH"),
			Destination: &x.enabled,
		},
		&cli.StringFlag{
			Name:        "telegraph-short-name",
			Usage:       "Telegra.ph account short name",
			Category:    "Telegraph",
			Sources:     cli.EnvVars("MORPHEUS_TELEGRAPH_SHORT_NAME"),
			Destination: &x.shortName,
		},
		&cli.StringFlag{
			Name:        "telegraph-author-name",
			Usage:       "Author name shown on published pages",
			Category:    "Telegraph",
			Sources:     cli.EnvVars("MORPHEUS_TELEGRAPH_AUTHOR_NAME"),
			Destination: &x.authorName,
		},
		&cli.StringFlag{
			Name:        "telegraph-access-token",
			Usage:       "Existing Telegra.ph access token (a new account is created when empty)",
			Category:    "Telegraph",
			Sources:     cli.EnvVars("MORPHEUS_TELEGRAPH_ACCESS_TOKEN"),
			Destination: &x.accessToken,
		},
		&cli.StringFlag{
			Name:        "telegraph-proxy",
			Usage:       "HTTP(S) proxy URL for Telegra.ph API access",
			Category:    "Telegraph",
			Sources:     cli.EnvVars("MORPHEUS_TELEGRAPH_PROXY"),
			Destination: &x.proxyURL,
		},
	}
}

// IsConfigured returns true when publishing is enabled.
func (x *Telegraph) IsConfigured() bool {
	return x.enabled
}

// Configure creates the Telegra.ph service from the flags.
func (x *Telegraph) Configure() (*telegraph.Service, error) {
	opts := []telegraph.Option{}

	if x.shortName != "" {
		opts = append(opts, telegraph.WithShortName(x.shortName))
	}
	if x.authorName != "" {
		opts = append(opts, telegraph.WithAuthorName(x.authorName))
	}
	if x.accessToken != "" {
		opts = append(opts, telegraph.WithAccessToken(x.accessToken))
	}

	if x.proxyURL != "" {
		proxy, err := url.Parse(x.proxyURL)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid proxy URL", goerr.V("url", x.proxyURL))
		}
		client := &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyURL(proxy),
			},
		}
		opts = append(opts, telegraph.WithHTTPClient(client))
	}

	return telegraph.New(opts...), nil
}
