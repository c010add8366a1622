package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	qstash "github.com/austindbirch/qstash-go"
)

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List delivery lifecycle events",
	Long: `List one page of the event log, newest first. Repeat with --cursor
to fetch the next page.

Example:
  qstash events --state ERROR --count 50
  qstash events --message-id msg_123
  qstash events --queue orders --order earliestFirst`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := &qstash.ListEventsOptions{}
		opts.Cursor, _ = cmd.Flags().GetString("cursor")
		opts.MessageID, _ = cmd.Flags().GetString("message-id")
		opts.URL, _ = cmd.Flags().GetString("url")
		opts.TopicName, _ = cmd.Flags().GetString("url-group")
		opts.ScheduleID, _ = cmd.Flags().GetString("schedule-id")
		opts.QueueName, _ = cmd.Flags().GetString("queue")
		opts.Count, _ = cmd.Flags().GetInt("count")
		opts.Order, _ = cmd.Flags().GetString("order")
		if s, _ := cmd.Flags().GetString("state"); s != "" {
			opts.State = qstash.EventState(s)
		}
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

		page, err := client.ListEvents(ctx, opts)
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}

		if outputJSON {
			printOutput(page)
		} else {
			if len(page.Events) == 0 {
				fmt.Println("No events found")
				return nil
			}
			for _, ev := range page.Events {
				line := fmt.Sprintf("%s  %-17s %s", formatUnixMilli(ev.Time), ev.State, ev.MessageID)
				if ev.URL != "" {
					line += "  " + ev.URL
				}
				fmt.Println(line)
				if ev.Error != "" {
					fmt.Printf("    error: %s\n", ev.Error)
				}
			}
			if page.Cursor != "" {
				fmt.Printf("\nNext cursor: %s\n", page.Cursor)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	addListFilterFlags(eventsCmd)
	eventsCmd.Flags().String("state", "", "filter by state (CREATED, ACTIVE, RETRY, ERROR, DELIVERED, FAILED, CANCEL_REQUESTED, CANCELLED)")
	eventsCmd.Flags().Int("count", 100, "maximum number of results (max 1000)")
	eventsCmd.Flags().String("order", "", "sort order (earliestFirst or latestFirst)")
}
