package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// messageCmd represents the message command
var messageCmd = &cobra.Command{
	Use:   "message",
	Short: "Inspect and cancel messages",
	Long:  `Look up messages in flight and cancel pending deliveries.`,
}

// messageGetCmd represents the message get command
var messageGetCmd = &cobra.Command{
	Use:   "get [message-id]",
	Short: "Get a message",
	Long: `Fetch a message that is still in flight.

Example:
  qstash message get msg_123`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		msg, err := client.GetMessage(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get message: %w", err)
		}

		if outputJSON {
			printOutput(msg)
		} else {
			fmt.Printf("Message %s:\n", msg.MessageID)
			fmt.Printf("  URL: %s\n", msg.URL)
			if msg.TopicName != "" {
				fmt.Printf("  URL group: %s\n", msg.TopicName)
			}
			if msg.Method != "" {
				fmt.Printf("  Method: %s\n", msg.Method)
			}
			if msg.CreatedAt > 0 {
				fmt.Printf("  Created: %s\n", formatUnixMilli(msg.CreatedAt))
			}
			if msg.Body != "" {
				fmt.Printf("  Body: %s\n", msg.Body)
			}
		}

		return nil
	},
}

// messageCancelCmd represents the message cancel command
var messageCancelCmd = &cobra.Command{
	Use:   "cancel [message-id...]",
	Short: "Cancel message deliveries",
	Long: `Cancel pending deliveries. Passing several IDs cancels them in one
request.

Example:
  qstash message cancel msg_123
  qstash message cancel msg_123 msg_456 msg_789`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		if len(args) == 1 {
			if err := client.CancelMessage(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to cancel message: %w", err)
			}
			fmt.Printf("Cancelled message: %s\n", args[0])
			return nil
		}

		if err := client.CancelMessages(ctx, args); err != nil {
			return fmt.Errorf("failed to cancel messages: %w", err)
		}
		fmt.Printf("Cancelled %d messages\n", len(args))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(messageCmd)
	messageCmd.AddCommand(messageGetCmd)
	messageCmd.AddCommand(messageCancelCmd)
}
