package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/mailbrief/internal/config"
	"github.com/teemow/mailbrief/internal/searchcfg"
)

func searchManagerFromEnv() (*searchcfg.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return searchcfg.NewManager(cfg.SearchConfigsFile, cfg.EnableSearchValidation)
}

func newSearchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "searches",
		Short: "Manage saved Gmail search configurations",
	}

	cmd.AddCommand(newSearchesListCmd())
	cmd.AddCommand(newSearchesSaveCmd())
	cmd.AddCommand(newSearchesDeleteCmd())
	cmd.AddCommand(newSearchesStatsCmd())

	return cmd
}

func newSearchesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved search configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := searchManagerFromEnv()
			if err != nil {
				return err
			}

			configs, err := mgr.List()
			if err != nil {
				return err
			}
			if len(configs) == 0 {
				fmt.Println("No saved search configurations.")
				return nil
			}

			for _, c := range configs {
				fmt.Printf("%s: %q", c.Name, c.Query)
				if c.Description != "" {
					fmt.Printf(" (%s)", c.Description)
				}
				fmt.Println()
				if c.MaxResults > 0 {
					fmt.Printf("  max results: %d\n", c.MaxResults)
				}
				fmt.Printf("  used %d times\n", c.UsageCount)
			}
			return nil
		},
	}
}

func newSearchesSaveCmd() *cobra.Command {
	var (
		description string
		maxResults  int
		overwrite   bool
	)

	cmd := &cobra.Command{
		Use:   "save <name> <query>",
		Short: "Save a search configuration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := searchManagerFromEnv()
			if err != nil {
				return err
			}

			cfg := &searchcfg.SearchConfig{
				Name:        args[0],
				Query:       args[1],
				Description: description,
				MaxResults:  maxResults,
			}

			if overwrite {
				err = mgr.Update(cfg)
			} else {
				err = mgr.Save(cfg)
			}
			if err != nil {
				return err
			}

			fmt.Printf("Saved search %q\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Description of the search")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Maximum number of results for this search")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing configuration with the same name")

	return cmd
}

func newSearchesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved search configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := searchManagerFromEnv()
			if err != nil {
				return err
			}
			if err := mgr.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted search %q\n", args[0])
			return nil
		},
	}
}

func newSearchesStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show usage statistics for saved searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := searchManagerFromEnv()
			if err != nil {
				return err
			}
			stats, err := mgr.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("Saved searches: %d\n", stats.Total)
			if stats.MostUsed != "" {
				fmt.Printf("Most used: %s\n", stats.MostUsed)
			}
			if stats.RecentlyUsed != "" {
				fmt.Printf("Recently used: %s\n", stats.RecentlyUsed)
			}
			return nil
		},
	}
}
