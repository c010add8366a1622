package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	qstash "github.com/austindbirch/qstash-go"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a webhook signature locally",
	Long: `Verify an Upstash-Signature value against a request body using your
signing keys. Useful for checking captured webhook deliveries without
standing up a receiver.

Keys fall back to QSTASH_CURRENT_SIGNING_KEY and QSTASH_NEXT_SIGNING_KEY
when the flags are not set.

Example:
  qstash verify --signature "$SIG" --body-file ./payload.json --url https://example.com/hook`,
	RunE: func(cmd *cobra.Command, args []string) error {
		signature, _ := cmd.Flags().GetString("signature")
		if signature == "" {
			return fmt.Errorf("no signature provided: set --signature")
		}

		currentKey, _ := cmd.Flags().GetString("current-key")
		if currentKey == "" {
			currentKey = os.Getenv("QSTASH_CURRENT_SIGNING_KEY")
		}
		nextKey, _ := cmd.Flags().GetString("next-key")
		if nextKey == "" {
			nextKey = os.Getenv("QSTASH_NEXT_SIGNING_KEY")
		}
		if currentKey == "" && nextKey == "" {
			return fmt.Errorf("no signing keys configured: set --current-key or QSTASH_CURRENT_SIGNING_KEY")
		}

		body, _ := cmd.Flags().GetString("body")
		bodyFile, _ := cmd.Flags().GetString("body-file")
		payload := []byte(body)
		if bodyFile != "" {
			data, err := os.ReadFile(bodyFile)
			if err != nil {
				return fmt.Errorf("failed to read body file: %w", err)
			}
			payload = data
		}

		url, _ := cmd.Flags().GetString("url")
		tolerance, _ := cmd.Flags().GetDuration("tolerance")

		receiver := &qstash.Receiver{
			CurrentSigningKey: currentKey,
			NextSigningKey:    nextKey,
		}
		err := receiver.Verify(qstash.VerifyOptions{
			Signature: signature,
			Body:      payload,
			URL:       url,
			Tolerance: tolerance,
		})
		if err != nil {
			return fmt.Errorf("signature invalid: %w", err)
		}

		fmt.Println("Signature valid")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().String("signature", "", "Upstash-Signature header value")
	verifyCmd.Flags().String("body", "", "request body as a literal string")
	verifyCmd.Flags().String("body-file", "", "read the request body from a file")
	verifyCmd.Flags().String("url", "", "destination URL to check the sub claim against")
	verifyCmd.Flags().String("current-key", "", "current signing key")
	verifyCmd.Flags().String("next-key", "", "next signing key")
	verifyCmd.Flags().Duration("tolerance", 0, "clock skew tolerance, e.g. 30s")
}
