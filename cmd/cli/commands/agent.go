package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/agent"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/constants"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/api/v1/client"
)

const agentShutdownTimeout = 10 * time.Second

// loadAgent reads the agent config and builds the agent with a client for
// the server named in the config, or the global client when it names none
func loadAgent(cmd *cobra.Command) (*agent.Agent, *agent.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv(constants.EnvAgentConfig)
	}
	if path == "" {
		return nil, nil, fmt.Errorf("agent config is required (--config or %s)", constants.EnvAgentConfig)
	}
	cfg, err := agent.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}

	api := apiClient
	if cfg.Server.URL != "" && !cmd.Flags().Changed(flagServerAddress) {
		opts := client.DefaultOptions()
		opts.BaseURL = cfg.Server.URL
		opts.WorkerToken = workerToken
		if cfg.Server.Token != "" {
			opts.WorkerToken = cfg.Server.Token
		}
		if api, err = client.NewClient(opts); err != nil {
			return nil, nil, err
		}
	}
	if api == nil {
		return nil, nil, fmt.Errorf("no API server configured")
	}

	a, err := agent.New(cfg, api)
	if err != nil {
		return nil, nil, err
	}
	return a, cfg, nil
}

// NewAgentCmd returns the agent command
func NewAgentCmd() *cobra.Command {
	agentCmd := &cobra.Command{
		Use:   "agent",
		Short: "Run the scraping agent",
	}
	agentCmd.PersistentFlags().StringP("config", "c", "", "Agent YAML config (env: "+constants.EnvAgentConfig+")")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Poll the API for jobs and report results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger.InitializeAndConfigure()
			a, _, err := loadAgent(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept pushed jobs and report results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger.InitializeAndConfigure()
			a, cfg, err := loadAgent(cmd)
			if err != nil {
				return err
			}
			listen := cfg.Listen
			if cmd.Flags().Changed("listen") {
				listen, _ = cmd.Flags().GetString("listen")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app := agent.NewServer(ctx, a, cfg.Server.Token)
			errCh := make(chan error, 1)
			go func() {
				logger.Infof("Agent %s listening on %s", a.WorkerID(), listen)
				errCh <- app.Listen(listen)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			logger.Info("Agent shutting down...")
			if err := app.ShutdownWithTimeout(agentShutdownTimeout); err != nil {
				logger.Errorf("Agent shutdown error: %v", err)
			}
			a.Wait()
			return nil
		},
	}
	serveCmd.Flags().String("listen", "", "Listen address (default from config)")

	agentCmd.AddCommand(runCmd, serveCmd)
	return agentCmd
}
