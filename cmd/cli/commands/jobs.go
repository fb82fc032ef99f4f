package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/types"
)

// jobOutput represents the filtered output for a job
type jobOutput struct {
	ID        uint   `json:"id"`
	GoalID    uint   `json:"goalId"`
	Status    string `json:"status"`
	Attempts  int    `json:"attempts"`
	Trigger   string `json:"trigger"`
	Error     string `json:"error,omitempty"`
	ClaimedBy string `json:"claimedBy,omitempty"`
}

// jobListOutput represents the filtered output for a list of jobs
type jobListOutput struct {
	Jobs  []jobOutput `json:"jobs"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
}

func toJobOutput(job models.ScrapeJob) jobOutput {
	return jobOutput{
		ID:        job.ID,
		GoalID:    job.GoalID,
		Status:    string(job.Status),
		Attempts:  job.Attempts,
		Trigger:   string(job.Trigger),
		Error:     job.Error,
		ClaimedBy: job.ClaimedBy,
	}
}

// NewJobsCmd returns the jobs command
func NewJobsCmd() *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage scrape jobs",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List scrape jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, _ := cmd.Flags().GetInt("page")
			status, _ := cmd.Flags().GetString("status")
			goalID, _ := cmd.Flags().GetUint("goal")

			opts := &models.ListOptions{GoalID: goalID}
			if status != "" {
				jobStatus, err := models.ParseJobStatus(status)
				if err != nil {
					return err
				}
				opts.Status = &jobStatus
			}

			response, err := apiClient.GetJobs(context.Background(), page, opts)
			if err != nil {
				return fmt.Errorf("error fetching jobs: %w", err)
			}

			output := jobListOutput{
				Jobs:  make([]jobOutput, len(response.Rows)),
				Total: response.Pagination.Total,
				Page:  response.Pagination.Page,
			}
			for i, job := range response.Rows {
				output.Jobs[i] = toJobOutput(job)
			}
			return printJSON(cmd, output)
		},
	}
	listCmd.Flags().IntP("page", "p", 1, "Page number for pagination")
	listCmd.Flags().StringP("status", "t", "", "Filter jobs by status (pending, running, completed, failed)")
	listCmd.Flags().UintP("goal", "g", 0, "Filter jobs by goal id")

	getCmd := &cobra.Command{
		Use:   "get <job-id>",
		Short: "Get a specific job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID, err := parseID("job", args[0])
			if err != nil {
				return err
			}
			job, err := apiClient.GetJob(context.Background(), jobID)
			if err != nil {
				return fmt.Errorf("error fetching job: %w", err)
			}
			return printJSON(cmd, toJobOutput(job))
		},
	}

	createCmd := &cobra.Command{
		Use:   "create <goal-id>",
		Short: "Enqueue a scrape job for a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goalID, err := parseID("goal", args[0])
			if err != nil {
				return err
			}
			trigger, _ := cmd.Flags().GetString("trigger")
			req := types.JobCreateRequest{GoalID: goalID, Trigger: models.JobTrigger(trigger)}
			if err := req.Validate(); err != nil {
				return err
			}

			response, err := apiClient.CreateJob(context.Background(), req)
			if err != nil {
				return fmt.Errorf("error creating job: %w", err)
			}
			if response.Job == nil {
				return fmt.Errorf("error creating job: empty response")
			}
			return printJSON(cmd, struct {
				Job     jobOutput `json:"job"`
				Created bool      `json:"created"`
			}{toJobOutput(*response.Job), response.Created})
		},
	}
	createCmd.Flags().String("trigger", string(models.JobTriggerRefresh), "Job trigger (create, refresh, nightly)")

	jobsCmd.AddCommand(listCmd, getCmd, createCmd)
	return jobsCmd
}
