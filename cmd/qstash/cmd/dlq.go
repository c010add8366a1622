package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	qstash "github.com/austindbirch/qstash-go"
)

// dlqCmd represents the dlq command
var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Inspect the dead letter queue",
	Long:  `List, fetch, and delete messages whose delivery retries are exhausted.`,
}

// dlqListCmd represents the dlq list command
var dlqListCmd = &cobra.Command{
	Use:   "list",
	Short: "List dead letter queue messages",
	Long: `List one page of the dead letter queue. Repeat with --cursor to
fetch the next page.

Example:
  qstash dlq list --count 20 --url https://example.com/hook`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := &qstash.ListDLQOptions{}
		opts.Cursor, _ = cmd.Flags().GetString("cursor")
		opts.MessageID, _ = cmd.Flags().GetString("message-id")
		opts.URL, _ = cmd.Flags().GetString("url")
		opts.TopicName, _ = cmd.Flags().GetString("url-group")
		opts.ScheduleID, _ = cmd.Flags().GetString("schedule-id")
		opts.QueueName, _ = cmd.Flags().GetString("queue")
		opts.ResponseStatus, _ = cmd.Flags().GetInt("response-status")
		opts.Count, _ = cmd.Flags().GetInt("count")
		var err error
		if opts.FromDate, opts.ToDate, err = dateRangeFlags(cmd); err != nil {
			return err
		}

		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		page, err := client.ListDLQ(ctx, opts)
		if err != nil {
			return fmt.Errorf("failed to list DLQ: %w", err)
		}

		if outputJSON {
			printOutput(page)
		} else {
			if len(page.Messages) == 0 {
				fmt.Println("Dead letter queue is empty")
				return nil
			}
			for i, m := range page.Messages {
				fmt.Printf("\nEntry %d:\n", i+1)
				fmt.Printf("  DLQ ID: %s\n", m.DLQID)
				fmt.Printf("  Message ID: %s\n", m.MessageID)
				fmt.Printf("  URL: %s\n", m.URL)
				if m.ResponseStatus > 0 {
					fmt.Printf("  Last HTTP status: %d\n", m.ResponseStatus)
				}
				if m.ResponseBody != "" {
					fmt.Printf("  Last response: %s\n", m.ResponseBody)
				}
			}
			if page.Cursor != "" {
				fmt.Printf("\nNext cursor: %s\n", page.Cursor)
			}
		}
		return nil
	},
}

// dlqGetCmd represents the dlq get command
var dlqGetCmd = &cobra.Command{
	Use:   "get [dlq-id]",
	Short: "Get a dead letter queue message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		m, err := client.GetDLQMessage(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get DLQ message: %w", err)
		}

		if outputJSON {
			printOutput(m)
		} else {
			fmt.Printf("DLQ entry %s:\n", m.DLQID)
			fmt.Printf("  Message ID: %s\n", m.MessageID)
			fmt.Printf("  URL: %s\n", m.URL)
			if m.ResponseStatus > 0 {
				fmt.Printf("  Last HTTP status: %d\n", m.ResponseStatus)
			}
			if m.Body != "" {
				fmt.Printf("  Body: %s\n", m.Body)
			}
			if m.ResponseBody != "" {
				fmt.Printf("  Last response: %s\n", m.ResponseBody)
			}
		}
		return nil
	},
}

// dlqDeleteCmd represents the dlq delete command
var dlqDeleteCmd = &cobra.Command{
	Use:   "delete [dlq-id...]",
	Short: "Delete dead letter queue messages",
	Long: `Delete entries from the dead letter queue. Passing several IDs
deletes them in one request.

Example:
  qstash dlq delete dlq_123
  qstash dlq delete dlq_123 dlq_456`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		if len(args) == 1 {
			if err := client.DeleteDLQMessage(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete DLQ message: %w", err)
			}
			fmt.Printf("Deleted DLQ entry: %s\n", args[0])
			return nil
		}

		deleted, err := client.DeleteDLQMessages(ctx, args)
		if err != nil {
			return fmt.Errorf("failed to delete DLQ messages: %w", err)
		}
		fmt.Printf("Deleted %d DLQ entries\n", deleted)
		return nil
	},
}

// dateRangeFlags parses --from and --to into unix millisecond bounds.
func dateRangeFlags(cmd *cobra.Command) (int64, int64, error) {
	var from, to int64
	if s, _ := cmd.Flags().GetString("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid 'from' timestamp (expected RFC3339): %w", err)
		}
		from = t.UnixMilli()
	}
	if s, _ := cmd.Flags().GetString("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid 'to' timestamp (expected RFC3339): %w", err)
		}
		to = t.UnixMilli()
	}
	return from, to, nil
}

// addListFilterFlags registers the filters shared by dlq list and events.
func addListFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("cursor", "", "cursor from the previous page")
	cmd.Flags().String("message-id", "", "filter by message ID")
	cmd.Flags().String("url", "", "filter by destination URL")
	cmd.Flags().String("url-group", "", "filter by URL group name")
	cmd.Flags().String("schedule-id", "", "filter by schedule ID")
	cmd.Flags().String("queue", "", "filter by queue name")
	cmd.Flags().String("from", "", "start time (RFC3339 format)")
	cmd.Flags().String("to", "", "end time (RFC3339 format)")
}

func init() {
	rootCmd.AddCommand(dlqCmd)
	dlqCmd.AddCommand(dlqListCmd)
	dlqCmd.AddCommand(dlqGetCmd)
	dlqCmd.AddCommand(dlqDeleteCmd)

	// Flags for list
	addListFilterFlags(dlqListCmd)
	dlqListCmd.Flags().Int("response-status", 0, "filter by the status of the last delivery attempt")
	dlqListCmd.Flags().Int("count", 10, "maximum number of results (max 100)")
}
