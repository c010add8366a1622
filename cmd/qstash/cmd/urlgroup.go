package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	qstash "github.com/austindbirch/qstash-go"
)

// urlgroupCmd represents the urlgroup command
var urlgroupCmd = &cobra.Command{
	Use:   "urlgroup",
	Short: "Manage URL groups",
	Long: `Manage URL groups. Publishing to a group fans one message out to
every endpoint in it.`,
}

// urlgroupAddCmd represents the urlgroup add-endpoints command
var urlgroupAddCmd = &cobra.Command{
	Use:   "add-endpoints [group]",
	Short: "Add endpoints to a URL group",
	Long: `Add endpoints to a URL group, creating the group if needed.
Endpoints are given as name=url, or a bare URL for unnamed endpoints.

Example:
  qstash urlgroup add-endpoints notifications \
    --endpoint billing=https://billing.example.com/hook \
    --endpoint https://audit.example.com/hook`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoints, err := endpointFlags(cmd)
		if err != nil {
			return err
		}

		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		if err := client.AddEndpoints(ctx, args[0], endpoints); err != nil {
			return fmt.Errorf("failed to add endpoints: %w", err)
		}
		fmt.Printf("Added %d endpoints to %s\n", len(endpoints), args[0])
		return nil
	},
}

// urlgroupGetCmd represents the urlgroup get command
var urlgroupGetCmd = &cobra.Command{
	Use:   "get [group]",
	Short: "Get a URL group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		g, err := client.GetURLGroup(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get URL group: %w", err)
		}

		if outputJSON {
			printOutput(g)
		} else {
			printURLGroup(g)
		}
		return nil
	},
}

// urlgroupListCmd represents the urlgroup list command
var urlgroupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all URL groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		groups, err := client.ListURLGroups(ctx)
		if err != nil {
			return fmt.Errorf("failed to list URL groups: %w", err)
		}

		if outputJSON {
			printOutput(groups)
		} else {
			if len(groups) == 0 {
				fmt.Println("No URL groups found")
				return nil
			}
			for i, g := range groups {
				if i > 0 {
					fmt.Println()
				}
				printURLGroup(&g)
			}
		}
		return nil
	},
}

// urlgroupRemoveCmd represents the urlgroup remove-endpoints command
var urlgroupRemoveCmd = &cobra.Command{
	Use:   "remove-endpoints [group]",
	Short: "Remove endpoints from a URL group",
	Long: `Remove endpoints from a URL group. Endpoints are matched by name
(name=) or by URL.

Example:
  qstash urlgroup remove-endpoints notifications --endpoint billing=`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoints, err := endpointFlags(cmd)
		if err != nil {
			return err
		}

		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		if err := client.RemoveEndpoints(ctx, args[0], endpoints); err != nil {
			return fmt.Errorf("failed to remove endpoints: %w", err)
		}
		fmt.Printf("Removed %d endpoints from %s\n", len(endpoints), args[0])
		return nil
	},
}

// urlgroupDeleteCmd represents the urlgroup delete command
var urlgroupDeleteCmd = &cobra.Command{
	Use:   "delete [group]",
	Short: "Delete a URL group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		ctx, cancel := reqContext()
		defer cancel()

		if err := client.RemoveURLGroup(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to delete URL group: %w", err)
		}
		fmt.Printf("Deleted URL group: %s\n", args[0])
		return nil
	},
}

// endpointFlags parses repeated --endpoint values into endpoints.
func endpointFlags(cmd *cobra.Command) ([]qstash.Endpoint, error) {
	raw, _ := cmd.Flags().GetStringArray("endpoint")
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one --endpoint is required")
	}

	endpoints := make([]qstash.Endpoint, 0, len(raw))
	for _, r := range raw {
		// A bare URL stays an unnamed endpoint even when its query string
		// contains an equals sign.
		if strings.HasPrefix(r, "http://") || strings.HasPrefix(r, "https://") {
			endpoints = append(endpoints, qstash.Endpoint{URL: r})
			continue
		}
		name, url, err := splitPair(r, "=")
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint %q: want name=url or a URL", r)
		}
		endpoints = append(endpoints, qstash.Endpoint{Name: name, URL: url})
	}
	return endpoints, nil
}

func printURLGroup(g *qstash.URLGroup) {
	fmt.Printf("URL group %s:\n", g.Name)
	if g.CreatedAt > 0 {
		fmt.Printf("  Created: %s\n", formatUnixMilli(g.CreatedAt))
	}
	if len(g.Endpoints) == 0 {
		fmt.Println("  No endpoints")
		return
	}
	for _, e := range g.Endpoints {
		if e.Name != "" {
			fmt.Printf("  %s = %s\n", e.Name, e.URL)
		} else {
			fmt.Printf("  %s\n", e.URL)
		}
	}
}

func init() {
	rootCmd.AddCommand(urlgroupCmd)
	urlgroupCmd.AddCommand(urlgroupAddCmd)
	urlgroupCmd.AddCommand(urlgroupGetCmd)
	urlgroupCmd.AddCommand(urlgroupListCmd)
	urlgroupCmd.AddCommand(urlgroupRemoveCmd)
	urlgroupCmd.AddCommand(urlgroupDeleteCmd)

	// Endpoint flags
	urlgroupAddCmd.Flags().StringArray("endpoint", nil, "endpoint as name=url or a bare URL (repeatable)")
	urlgroupRemoveCmd.Flags().StringArray("endpoint", nil, "endpoint as name= or a bare URL (repeatable)")
}
