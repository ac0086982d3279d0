package main

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dewart-reps/mileage-cli/internal/mapping"
	"github.com/dewart-reps/mileage-cli/internal/unresolved"
)

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Inspect and edit the business mapping store",
}

var mappingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved address-to-business mappings",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		for _, addr := range store.Addresses() {
			entry, _ := store.Get(addr)
			label := entry.Name
			if entry.IsSentinel() {
				label = "(unresolved)"
			}
			if entry.Category != "" {
				fmt.Printf("%s => %s [%s]\n", addr, label, entry.Category)
			} else {
				fmt.Printf("%s => %s\n", addr, label)
			}
		}
		fmt.Printf("%d entries\n", store.Len())
		return nil
	},
}

var mappingsUnresolvedCmd = &cobra.Command{
	Use:   "unresolved",
	Short: "Analyze addresses where no business was found",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		r := unresolved.Analyze(store)
		fmt.Printf("Total addresses: %d (%d resolved, %d unresolved)\n\n",
			r.Total, r.Resolved, r.Unresolved)
		if r.Unresolved == 0 {
			fmt.Println("All addresses have been resolved.")
			return nil
		}

		for _, area := range r.Areas() {
			addrs := r.ByArea[area]
			fmt.Printf("%s (%d addresses):\n", area, len(addrs))
			for _, addr := range addrs {
				fmt.Printf("  - %s\n", addr)
			}
			fmt.Println()
		}

		if len(r.Residential) > 0 {
			fmt.Printf("Likely residential (%d), no mapping needed:\n", len(r.Residential))
			for _, addr := range r.Residential {
				fmt.Printf("  - %s\n", addr)
			}
			fmt.Println()
		}
		if len(r.Highways) > 0 {
			fmt.Printf("Highway or route points (%d), likely in transit:\n", len(r.Highways))
			for _, addr := range r.Highways {
				fmt.Printf("  - %s\n", addr)
			}
			fmt.Println()
		}
		if len(r.Nearby) > 0 {
			fmt.Println("Near an already-resolved address:")
			addrs := make([]string, 0, len(r.Nearby))
			for addr := range r.Nearby {
				addrs = append(addrs, addr)
			}
			sort.Strings(addrs)
			for _, addr := range addrs {
				fmt.Printf("  %s\n", addr)
				for _, c := range r.Nearby[addr] {
					fmt.Printf("    ~ %s (%s)\n", c.Address, c.Name)
				}
			}
		}
		return nil
	},
}

var (
	mappingsSetName     string
	mappingsSetCategory string
)

var mappingsSetCmd = &cobra.Command{
	Use:   "set <address>",
	Short: "Set a manual business mapping for an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		store.Set(args[0], mapping.Entry{
			Name:     mappingsSetName,
			Category: mappingsSetCategory,
			Source:   mapping.SourceManual,
		})
		if err := store.Flush(ctx); err != nil {
			return eris.Wrap(err, "save mapping")
		}
		fmt.Printf("%s => %s\n", args[0], mappingsSetName)
		return nil
	},
}

func init() {
	mappingsSetCmd.Flags().StringVar(&mappingsSetName, "name", "", "business name (required)")
	mappingsSetCmd.Flags().StringVar(&mappingsSetCategory, "category", "", "saved category override: business, personal, or commute")
	_ = mappingsSetCmd.MarkFlagRequired("name")

	mappingsCmd.AddCommand(mappingsListCmd)
	mappingsCmd.AddCommand(mappingsUnresolvedCmd)
	mappingsCmd.AddCommand(mappingsSetCmd)
	rootCmd.AddCommand(mappingsCmd)
}
