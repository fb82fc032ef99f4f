package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/constants"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/api/v1/client"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/api/v1/routes"
)

// flag names
const (
	flagServerAddress = "server-address"
	flagWorkerToken   = "worker-token"
	flagTimeout       = "timeout"
)

var (
	// apiClient is the shared API client instance
	apiClient client.Client
	// serverAddress holds the target API server address. Flag parsing sets this.
	serverAddress string
	workerToken   string
)

// initClient initializes the API client
func initClient(cmd *cobra.Command) error {
	opts := client.DefaultOptions()
	opts.BaseURL = serverAddress
	opts.WorkerToken = workerToken
	if timeout, err := cmd.Flags().GetDuration(flagTimeout); err == nil && timeout > 0 {
		opts.Timeout = timeout
	}

	var err error
	apiClient, err = client.NewClient(opts)
	return err
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&serverAddress, flagServerAddress, "s", routes.DefaultBaseURL,
		"Address of the acquisition API server (env: "+constants.EnvAPIURL+")")
	RootCmd.PersistentFlags().StringVar(&workerToken, flagWorkerToken, "",
		"Shared secret for the worker protocol (env: "+constants.EnvWorkerToken+")")
	RootCmd.PersistentFlags().Duration(flagTimeout, client.DefaultTimeout, "API request timeout")

	RootCmd.AddCommand(NewJobsCmd())
	RootCmd.AddCommand(NewGoalsCmd())
	RootCmd.AddCommand(NewFiltersCmd())
	RootCmd.AddCommand(NewAgentCmd())
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "neon",
	Short: "Neon CLI - A command line interface for the candidate acquisition API",
	Long: `Neon CLI manages scrape jobs, goal candidates and retailer filters through
the candidate acquisition API, and runs the scraping agent.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Flag > Env Var > Default
		if !cmd.Flags().Changed(flagServerAddress) {
			if envAddr := os.Getenv(constants.EnvAPIURL); envAddr != "" {
				serverAddress = envAddr
			}
		}
		if !cmd.Flags().Changed(flagWorkerToken) {
			workerToken = os.Getenv(constants.EnvWorkerToken)
		}

		if serverAddress == "" {
			return fmt.Errorf("server address cannot be empty")
		}
		return initClient(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// parseID converts a positional id argument
func parseID(kind, raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s id: %q", kind, raw)
	}
	return uint(id), nil
}

// printJSON pretty prints v on the command output
func printJSON(cmd *cobra.Command, v interface{}) error {
	prettyJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting response: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(prettyJSON))
	return err
}
