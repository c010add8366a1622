package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage cron schedules",
	Long:  `Create, inspect, pause, resume, and delete cron schedules.`,
}

// scheduleCreateCmd represents the schedule create command
var scheduleCreateCmd = &cobra.Command{
	Use:   "create [destination] [cron]",
	Short: "Create a cron schedule",
	Long: `Create a schedule that publishes to the destination on a cron
expression, evaluated in UTC.

Example:
  qstash schedule create https://example.com/report '0 8 * * *' --body '{"daily":true}'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, _ := cmd.Flags().GetString("body")

		opts, err := buildPublishOptions(cmd)
		if err != nil {
			return err
		}

		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		id, err := client.CreateSchedule(ctx, args[0], args[1], []byte(body), opts...)
		if err != nil {
			return fmt.Errorf("failed to create schedule: %w", err)
		}

		if outputJSON {
			printOutput(map[string]string{"scheduleId": id})
		} else {
			fmt.Printf("Created schedule: %s\n", id)
		}
		return nil
	},
}

// scheduleGetCmd represents the schedule get command
var scheduleGetCmd = &cobra.Command{
	Use:   "get [schedule-id]",
	Short: "Get a schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		s, err := client.GetSchedule(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get schedule: %w", err)
		}

		if outputJSON {
			printOutput(s)
		} else {
			printSchedule(s.ScheduleID, s.Cron, s.Destination, s.IsPaused, s.CreatedAt)
			if s.Body != "" {
				fmt.Printf("  Body: %s\n", s.Body)
			}
			if s.Retries > 0 {
				fmt.Printf("  Retries: %d\n", s.Retries)
			}
		}
		return nil
	},
}

// scheduleListCmd represents the schedule list command
var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all schedules",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		schedules, err := client.ListSchedules(ctx)
		if err != nil {
			return fmt.Errorf("failed to list schedules: %w", err)
		}

		if outputJSON {
			printOutput(schedules)
		} else {
			if len(schedules) == 0 {
				fmt.Println("No schedules found")
				return nil
			}
			for i, s := range schedules {
				if i > 0 {
					fmt.Println()
				}
				printSchedule(s.ScheduleID, s.Cron, s.Destination, s.IsPaused, s.CreatedAt)
			}
		}
		return nil
	},
}

// scheduleDeleteCmd represents the schedule delete command
var scheduleDeleteCmd = &cobra.Command{
	Use:   "delete [schedule-id]",
	Short: "Delete a schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		if err := client.DeleteSchedule(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to delete schedule: %w", err)
		}
		fmt.Printf("Deleted schedule: %s\n", args[0])
		return nil
	},
}

// schedulePauseCmd represents the schedule pause command
var schedulePauseCmd = &cobra.Command{
	Use:   "pause [schedule-id]",
	Short: "Pause a schedule",
	Long:  `Stop the schedule from triggering. Existing messages are unaffected.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		if err := client.PauseSchedule(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to pause schedule: %w", err)
		}
		fmt.Printf("Paused schedule: %s\n", args[0])
		return nil
	},
}

// scheduleResumeCmd represents the schedule resume command
var scheduleResumeCmd = &cobra.Command{
	Use:   "resume [schedule-id]",
	Short: "Resume a paused schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		if err := client.ResumeSchedule(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to resume schedule: %w", err)
		}
		fmt.Printf("Resumed schedule: %s\n", args[0])
		return nil
	},
}

func printSchedule(id, cron, destination string, paused bool, createdAt int64) {
	fmt.Printf("Schedule %s:\n", id)
	fmt.Printf("  Cron: %s\n", cron)
	fmt.Printf("  Destination: %s\n", destination)
	if paused {
		fmt.Println("  Paused: true")
	}
	if createdAt > 0 {
		fmt.Printf("  Created: %s\n", formatUnixMilli(createdAt))
	}
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.AddCommand(scheduleCreateCmd)
	scheduleCmd.AddCommand(scheduleGetCmd)
	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleDeleteCmd)
	scheduleCmd.AddCommand(schedulePauseCmd)
	scheduleCmd.AddCommand(scheduleResumeCmd)

	// Flags for create
	addPublishFlags(scheduleCreateCmd)
	scheduleCreateCmd.Flags().String("body", "", "payload published on every trigger")
}
