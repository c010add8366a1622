package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// keysCmd represents the keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage webhook signing keys",
	Long:  `Fetch and rotate the keys QStash signs webhook deliveries with.`,
}

// keysGetCmd represents the keys get command
var keysGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Get the current and next signing key",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		keys, err := client.GetSigningKeys(ctx)
		if err != nil {
			return fmt.Errorf("failed to get signing keys: %w", err)
		}

		if outputJSON {
			printOutput(keys)
		} else {
			fmt.Printf("Current: %s\n", keys.Current)
			fmt.Printf("Next:    %s\n", keys.Next)
		}
		return nil
	},
}

// keysRotateCmd represents the keys rotate command
var keysRotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Rotate the signing keys",
	Long: `Rotate the signing keys. The next key becomes current and a fresh
next key is generated. Receivers that only know the old current key will
reject deliveries, so --yes is required to skip the confirmation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Print("Rotating invalidates the old current key. Continue? [y/N] ")
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			if answer != "y" && answer != "yes" {
				fmt.Println("Aborted")
				return nil
			}
		}

		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		keys, err := client.RotateSigningKeys(ctx)
		if err != nil {
			return fmt.Errorf("failed to rotate signing keys: %w", err)
		}

		if outputJSON {
			printOutput(keys)
		} else {
			fmt.Println("Rotated signing keys")
			fmt.Printf("Current: %s\n", keys.Current)
			fmt.Printf("Next:    %s\n", keys.Next)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysGetCmd)
	keysCmd.AddCommand(keysRotateCmd)

	keysRotateCmd.Flags().Bool("yes", false, "skip the confirmation prompt")
}
