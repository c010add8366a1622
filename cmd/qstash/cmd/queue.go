package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// queueCmd represents the queue command
var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Manage queues",
	Long:  `Create, inspect, pause, resume, and remove queues.`,
}

// queueUpsertCmd represents the queue upsert command
var queueUpsertCmd = &cobra.Command{
	Use:   "upsert [name]",
	Short: "Create a queue or update its parallelism",
	Long: `Create the queue if it does not exist, or update its parallelism.

Example:
  qstash queue upsert orders --parallelism 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parallelism, _ := cmd.Flags().GetInt("parallelism")

		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		if err := client.UpsertQueue(ctx, args[0], parallelism); err != nil {
			return fmt.Errorf("failed to upsert queue: %w", err)
		}
		fmt.Printf("Upserted queue: %s (parallelism %d)\n", args[0], parallelism)
		return nil
	},
}

// queueGetCmd represents the queue get command
var queueGetCmd = &cobra.Command{
	Use:   "get [name]",
	Short: "Get a queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		q, err := client.GetQueue(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get queue: %w", err)
		}

		if outputJSON {
			printOutput(q)
		} else {
			fmt.Printf("Queue %s:\n", q.Name)
			fmt.Printf("  Parallelism: %d\n", q.Parallelism)
			fmt.Printf("  Lag: %d\n", q.Lag)
			fmt.Printf("  Paused: %v\n", q.Paused)
			if q.CreatedAt > 0 {
				fmt.Printf("  Created: %s\n", formatUnixMilli(q.CreatedAt))
			}
		}
		return nil
	},
}

// queueListCmd represents the queue list command
var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all queues",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		queues, err := client.ListQueues(ctx)
		if err != nil {
			return fmt.Errorf("failed to list queues: %w", err)
		}

		if outputJSON {
			printOutput(queues)
		} else {
			if len(queues) == 0 {
				fmt.Println("No queues found")
				return nil
			}
			for _, q := range queues {
				paused := ""
				if q.Paused {
					paused = " (paused)"
				}
				fmt.Printf("%s  parallelism=%d lag=%d%s\n", q.Name, q.Parallelism, q.Lag, paused)
			}
		}
		return nil
	},
}

// queueDeleteCmd represents the queue delete command
var queueDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a queue",
	Long:  `Delete a queue together with every message waiting in it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		if err := client.RemoveQueue(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to delete queue: %w", err)
		}
		fmt.Printf("Deleted queue: %s\n", args[0])
		return nil
	},
}

// queuePauseCmd represents the queue pause command
var queuePauseCmd = &cobra.Command{
	Use:   "pause [name]",
	Short: "Pause a queue",
	Long:  `Stop delivering from the queue. Messages keep accumulating until resume.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		if err := client.PauseQueue(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to pause queue: %w", err)
		}
		fmt.Printf("Paused queue: %s\n", args[0])
		return nil
	},
}

// queueResumeCmd represents the queue resume command
var queueResumeCmd = &cobra.Command{
	Use:   "resume [name]",
	Short: "Resume a paused queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		if err := client.ResumeQueue(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to resume queue: %w", err)
		}
		fmt.Printf("Resumed queue: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queueCmd)
	queueCmd.AddCommand(queueUpsertCmd)
	queueCmd.AddCommand(queueGetCmd)
	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueDeleteCmd)
	queueCmd.AddCommand(queuePauseCmd)
	queueCmd.AddCommand(queueResumeCmd)

	// Flags for upsert
	queueUpsertCmd.Flags().Int("parallelism", 1, "number of parallel deliveries")
}
