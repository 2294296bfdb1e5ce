package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/oneiro-lab/morpheus/pkg/cli/config"
	httpctrl "github.com/oneiro-lab/morpheus/pkg/controller/http"
	"github.com/oneiro-lab/morpheus/pkg/service/insight"
	"github.com/oneiro-lab/morpheus/pkg/usecase"
	"github.com/oneiro-lab/morpheus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var botURL string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var slackCfg config.Slack
	var telegraphCfg config.Telegraph

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MORPHEUS_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "bot-url",
			Usage:       "Public URL of the chat bot, shown on the web UI",
			Sources:     cli.EnvVars("MORPHEUS_BOT_URL"),
			Destination: &botURL,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, telegraphCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			// The commentary generator is mandatory: a memory without even an
			// attempted commentary is never stored.
			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}
			insightSvc := insight.New(llmClient)

			ucOpts := []usecase.Option{}

			if telegraphCfg.IsConfigured() {
				telegraphSvc, err := telegraphCfg.Configure()
				if err != nil {
					return goerr.Wrap(err, "failed to configure Telegraph service")
				}
				ucOpts = append(ucOpts, usecase.WithTelegraph(telegraphSvc))
				logging.Default().Info("Telegraph publishing enabled")
			} else {
				logging.Default().Info("Telegraph not configured, memories will not be published")
			}

			if slackCfg.IsConfigured() {
				slackSvc, err := slackCfg.Configure()
				if err != nil {
					return goerr.Wrap(err, "failed to configure Slack service")
				}
				ucOpts = append(ucOpts, usecase.WithSlackService(slackSvc))
				logging.Default().Info("Slack bot enabled")
			} else {
				logging.Default().Info("Slack not configured, chat bot disabled")
			}

			uc := usecase.New(repo, insightSvc, ucOpts...)

			httpOpts := []httpctrl.Options{}
			if botURL != "" {
				httpOpts = append(httpOpts, httpctrl.WithBotURL(botURL))
			}
			if slackCfg.IsConfigured() {
				httpOpts = append(httpOpts, httpctrl.WithSlackWebhook(slackCfg.SigningSecret()))
			}

			httpHandler, err := httpctrl.New(uc, httpOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
