package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	qstash "github.com/austindbirch/qstash-go"
)

// publishCmd represents the publish command
var publishCmd = &cobra.Command{
	Use:   "publish [destination] [body]",
	Short: "Publish a message",
	Long: `Publish a message to a destination URL, URL group, or api/llm.

Example:
  qstash publish https://example.com/hook '{"id":"order_789"}' --delay 30s
  qstash publish my-url-group '{"id":"order_789"}' --retries 3
  qstash publish https://example.com/hook '{"id":"order_789"}' --queue orders`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		destination := args[0]
		var body []byte
		if len(args) == 2 {
			body = []byte(args[1])
		}

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

		queue, _ := cmd.Flags().GetString("queue")
		var msgs []qstash.PublishedMessage
		if queue != "" {
			msgs, err = client.Enqueue(ctx, queue, destination, body, opts...)
		} else {
			msgs, err = client.Publish(ctx, destination, body, opts...)
		}
		if err != nil {
			return fmt.Errorf("failed to publish: %w", err)
		}

		if outputJSON {
			printOutput(msgs)
		} else {
			for _, m := range msgs {
				fmt.Printf("Published message: %s\n", m.MessageID)
				if m.URL != "" {
					fmt.Printf("  Endpoint: %s\n", m.URL)
				}
				if m.Deduplicated {
					fmt.Println("  Deduplicated: true")
				}
			}
		}

		return nil
	},
}

// enqueueCmd represents the enqueue command
var enqueueCmd = &cobra.Command{
	Use:   "enqueue [queue] [destination] [body]",
	Short: "Enqueue a message through a queue",
	Long: `Publish a message through a queue so deliveries respect the queue's
parallelism instead of going out immediately.

Example:
  qstash enqueue orders https://example.com/hook '{"id":"order_789"}'`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		queue, destination := args[0], args[1]
		var body []byte
		if len(args) == 3 {
			body = []byte(args[2])
		}

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

		msgs, err := client.Enqueue(ctx, queue, destination, body, opts...)
		if err != nil {
			return fmt.Errorf("failed to enqueue: %w", err)
		}

		if outputJSON {
			printOutput(msgs)
		} else {
			for _, m := range msgs {
				fmt.Printf("Enqueued message: %s\n", m.MessageID)
				if m.Deduplicated {
					fmt.Println("  Deduplicated: true")
				}
			}
		}

		return nil
	},
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Publish a batch of messages from a JSON file",
	Long: `Publish several messages in one request. The file holds a JSON array
of entries with destination, and optionally queue, body, and headers.

Example:
  qstash batch entries.json

Entry format:
  [{"destination":"https://example.com/hook","body":"{\"n\":1}",
    "headers":{"Upstash-Delay":"10s"}}]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read batch file: %w", err)
		}

		var fileEntries []struct {
			Destination string            `json:"destination"`
			Queue       string            `json:"queue,omitempty"`
			Headers     map[string]string `json:"headers,omitempty"`
			Body        string            `json:"body,omitempty"`
		}
		if err := json.Unmarshal(data, &fileEntries); err != nil {
			return fmt.Errorf("invalid batch file: %w", err)
		}
		if len(fileEntries) == 0 {
			return fmt.Errorf("batch file holds no entries")
		}

		entries := make([]qstash.BatchEntry, 0, len(fileEntries))
		for _, fe := range fileEntries {
			e := qstash.BatchEntry{
				Destination: fe.Destination,
				Queue:       fe.Queue,
				Body:        fe.Body,
			}
			if len(fe.Headers) > 0 {
				e.Headers = http.Header{}
				for k, v := range fe.Headers {
					e.Headers.Set(k, v)
				}
			}
			entries = append(entries, e)
		}

		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		results, err := client.Batch(ctx, entries)
		if err != nil {
			return fmt.Errorf("failed to publish batch: %w", err)
		}

		if outputJSON {
			printOutput(results)
		} else {
			for i, res := range results {
				fmt.Printf("Entry %d:\n", i+1)
				for _, m := range res.Messages {
					fmt.Printf("  Message: %s\n", m.MessageID)
					if m.URL != "" {
						fmt.Printf("    Endpoint: %s\n", m.URL)
					}
				}
			}
		}

		return nil
	},
}

// buildPublishOptions turns the shared publish flags into client options.
func buildPublishOptions(cmd *cobra.Command) ([]qstash.PublishOption, error) {
	var opts []qstash.PublishOption

	if d, _ := cmd.Flags().GetDuration("delay"); d > 0 {
		opts = append(opts, qstash.WithDelay(d))
	}
	if s, _ := cmd.Flags().GetString("not-before"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("invalid not-before (expected RFC3339): %w", err)
		}
		opts = append(opts, qstash.WithNotBefore(t))
	}
	if n, _ := cmd.Flags().GetInt("retries"); n >= 0 {
		opts = append(opts, qstash.WithRetries(n))
	}
	if u, _ := cmd.Flags().GetString("callback"); u != "" {
		opts = append(opts, qstash.WithCallback(u))
	}
	if u, _ := cmd.Flags().GetString("failure-callback"); u != "" {
		opts = append(opts, qstash.WithFailureCallback(u))
	}
	if m, _ := cmd.Flags().GetString("method"); m != "" {
		opts = append(opts, qstash.WithMethod(m))
	}
	if ct, _ := cmd.Flags().GetString("content-type"); ct != "" {
		opts = append(opts, qstash.WithContentType(ct))
	}
	if id, _ := cmd.Flags().GetString("deduplication-id"); id != "" {
		opts = append(opts, qstash.WithDeduplicationID(id))
	}
	if ok, _ := cmd.Flags().GetBool("content-based-deduplication"); ok {
		opts = append(opts, qstash.WithContentBasedDeduplication())
	}
	if d, _ := cmd.Flags().GetDuration("delivery-timeout"); d > 0 {
		opts = append(opts, qstash.WithTimeout(d))
	}
	headers, _ := cmd.Flags().GetStringArray("forward-header")
	for _, h := range headers {
		k, v, err := splitPair(h, ":")
		if err != nil {
			return nil, fmt.Errorf("invalid forward-header: %w", err)
		}
		opts = append(opts, qstash.WithForwardHeader(k, v))
	}

	return opts, nil
}

// addPublishFlags registers the shared publish flags on a command.
func addPublishFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("delay", 0, "delay before delivery (e.g. 30s, 5m)")
	cmd.Flags().String("not-before", "", "earliest delivery time (RFC3339)")
	cmd.Flags().Int("retries", -1, "max delivery retries (-1 keeps the plan default)")
	cmd.Flags().String("callback", "", "URL that receives the delivery response")
	cmd.Flags().String("failure-callback", "", "URL notified when retries are exhausted")
	cmd.Flags().String("method", "", "HTTP method for delivery (default POST)")
	cmd.Flags().String("content-type", "", "Content-Type of the body")
	cmd.Flags().String("deduplication-id", "", "explicit deduplication ID")
	cmd.Flags().Bool("content-based-deduplication", false, "deduplicate on message content")
	cmd.Flags().Duration("delivery-timeout", 0, "per-delivery HTTP timeout applied by QStash")
	cmd.Flags().StringArray("forward-header", nil, "header forwarded to the destination (key:value, repeatable)")
}

func init() {
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(enqueueCmd)
	rootCmd.AddCommand(batchCmd)

	addPublishFlags(publishCmd)
	publishCmd.Flags().String("queue", "", "enqueue through this queue instead of publishing directly")
	addPublishFlags(enqueueCmd)
}
