package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/candidates"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/types"
)

// candidateOutput is the short form of a candidate
type candidateOutput struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Retailer string  `json:"retailer"`
	URL      string  `json:"url"`
}

// goalOutput represents the filtered output for a goal
type goalOutput struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Category    string            `json:"category"`
	StatusBadge string            `json:"statusBadge"`
	Selected    string            `json:"selected,omitempty"`
	Candidates  []candidateOutput `json:"candidates"`
	Shortlisted []candidateOutput `json:"shortlisted"`
	Denied      []candidateOutput `json:"denied"`
}

func toCandidateOutputs(cs models.Candidates) []candidateOutput {
	out := make([]candidateOutput, len(cs))
	for i, c := range cs {
		out[i] = candidateOutput{Name: c.Name, Price: c.Price, Retailer: c.Retailer, URL: c.URL}
	}
	return out
}

func toGoalOutput(goal models.Goal) goalOutput {
	return goalOutput{
		ID:          goal.ID,
		Title:       goal.Title,
		Category:    string(goal.Category),
		StatusBadge: string(goal.StatusBadge),
		Selected:    goal.SelectedCandidateURL,
		Candidates:  toCandidateOutputs(goal.Candidates),
		Shortlisted: toCandidateOutputs(goal.ShortlistedCandidates),
		Denied:      toCandidateOutputs(goal.DeniedCandidates),
	}
}

// NewGoalsCmd returns the goals command
func NewGoalsCmd() *cobra.Command {
	goalsCmd := &cobra.Command{
		Use:   "goals",
		Short: "Inspect goals and act on their candidates",
	}

	getCmd := &cobra.Command{
		Use:   "get <goal-id>",
		Short: "Get a goal with its candidates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goalID, err := parseID("goal", args[0])
			if err != nil {
				return err
			}
			goal, err := apiClient.GetGoal(context.Background(), goalID)
			if err != nil {
				return fmt.Errorf("error fetching goal: %w", err)
			}
			return printJSON(cmd, toGoalOutput(goal))
		},
	}

	syncCmd := &cobra.Command{
		Use:   "sync <goal-id>",
		Short: "Create or update the goal fields the pipeline reads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goalID, err := parseID("goal", args[0])
			if err != nil {
				return err
			}
			title, _ := cmd.Flags().GetString("title")
			category, _ := cmd.Flags().GetString("category")
			searchTerm, _ := cmd.Flags().GetString("search-term")
			filters, _ := cmd.Flags().GetString("filters")

			req := types.GoalSyncRequest{
				Title:      title,
				Category:   models.Category(category),
				SearchTerm: searchTerm,
			}
			if filters != "" {
				var d vehicle.Descriptor
				if err := json.Unmarshal([]byte(filters), &d); err != nil {
					return fmt.Errorf("invalid filters: %w", err)
				}
				req.SearchFilters = &d
			}
			if err := req.Validate(); err != nil {
				return err
			}

			response, err := apiClient.SyncGoal(context.Background(), goalID, req)
			if err != nil {
				return fmt.Errorf("error syncing goal: %w", err)
			}
			out := struct {
				Created bool       `json:"created"`
				Goal    goalOutput `json:"goal"`
				Job     *jobOutput `json:"job,omitempty"`
			}{Created: response.Created}
			if response.Goal != nil {
				out.Goal = toGoalOutput(*response.Goal)
			}
			if response.Job != nil {
				job := toJobOutput(*response.Job)
				out.Job = &job
			}
			return printJSON(cmd, out)
		},
	}
	syncCmd.Flags().String("title", "", "Goal title")
	syncCmd.Flags().String("category", string(models.CategoryVehicle), "Goal category")
	syncCmd.Flags().String("search-term", "", "Free-text search term")
	syncCmd.Flags().String("filters", "", "Structured vehicle descriptor as JSON")

	refreshCmd := &cobra.Command{
		Use:   "refresh <goal-id>",
		Short: "Request a new candidate search for a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goalID, err := parseID("goal", args[0])
			if err != nil {
				return err
			}
			response, err := apiClient.RefreshGoal(context.Background(), goalID)
			if err != nil {
				return fmt.Errorf("error refreshing goal: %w", err)
			}
			if response.Job == nil {
				return fmt.Errorf("error refreshing goal: empty response")
			}
			return printJSON(cmd, struct {
				Job     jobOutput `json:"job"`
				Created bool      `json:"created"`
			}{toJobOutput(*response.Job), response.Created})
		},
	}

	goalsCmd.AddCommand(getCmd, syncCmd, refreshCmd)
	for _, action := range []candidates.Action{
		candidates.ActionDeny,
		candidates.ActionRestore,
		candidates.ActionShortlist,
		candidates.ActionUnshortlist,
		candidates.ActionSelect,
	} {
		goalsCmd.AddCommand(newCandidateActionCmd(action))
	}
	return goalsCmd
}

func newCandidateActionCmd(action candidates.Action) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <goal-id> <candidate-url>",
		Short: fmt.Sprintf("Apply %s to a candidate of a goal", action),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			goalID, err := parseID("goal", args[0])
			if err != nil {
				return err
			}
			goal, err := apiClient.CandidateAction(context.Background(), goalID, action, args[1])
			if err != nil {
				return fmt.Errorf("error applying %s: %w", action, err)
			}
			return printJSON(cmd, toGoalOutput(goal))
		},
	}
}
