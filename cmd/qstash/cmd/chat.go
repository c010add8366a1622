package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	qstash "github.com/austindbirch/qstash-go"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [prompt]",
	Short: "Run a chat completion",
	Long: `Run a chat completion against the QStash LLM endpoint.

Example:
  qstash chat "Summarize the QStash delivery model" --model meta-llama/Meta-Llama-3-8B-Instruct
  qstash chat "Reply with JSON" --json-object --max-tokens 200`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, _ := cmd.Flags().GetString("model")
		system, _ := cmd.Flags().GetString("system")

		req := &qstash.ChatCompletionRequest{
			Model: model,
		}
		if system != "" {
			req.Messages = append(req.Messages, qstash.ChatMessage{
				Role:    qstash.ChatRoleSystem,
				Content: system,
			})
		}
		req.Messages = append(req.Messages, qstash.ChatMessage{
			Role:    qstash.ChatRoleUser,
			Content: args[0],
		})

		if cmd.Flags().Changed("temperature") {
			t, _ := cmd.Flags().GetFloat64("temperature")
			req.Temperature = &t
		}
		if cmd.Flags().Changed("max-tokens") {
			n, _ := cmd.Flags().GetInt("max-tokens")
			req.MaxTokens = &n
		}
		if ok, _ := cmd.Flags().GetBool("json-object"); ok {
			req.ResponseFormat = &qstash.ChatResponseFormat{Type: qstash.ChatFormatJSONObject}
		}

		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		resp, err := client.ChatCompletion(ctx, req)
		if err != nil {
			return fmt.Errorf("chat completion failed: %w", err)
		}

		if outputJSON {
			printOutput(resp)
		} else {
			for _, choice := range resp.Choices {
				fmt.Println(choice.Message.Content)
			}
			fmt.Printf("\n[%s, %d tokens]\n", resp.Model, resp.Usage.TotalTokens)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().String("model", "meta-llama/Meta-Llama-3-8B-Instruct", "model name")
	chatCmd.Flags().String("system", "", "system prompt prepended to the conversation")
	chatCmd.Flags().Float64("temperature", 0, "sampling temperature (0 to 2)")
	chatCmd.Flags().Int("max-tokens", 0, "cap on the completion length")
	chatCmd.Flags().Bool("json-object", false, "constrain the output to a JSON object")
}
