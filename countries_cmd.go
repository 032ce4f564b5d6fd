package main

import (
	"fmt"
	"strings"

	"github.com/dgnsrekt/envoy/internal/countries"
	"github.com/spf13/cobra"
)

var (
	countriesLimit int

	countriesCmd = &cobra.Command{
		Use:   "countries [PREFIX]",
		Short: "List country names, or suggestions for a prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := newCountriesClient().All(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				names = countries.Suggest(names, args[0], countriesLimit)
			}
			if len(names) == 0 {
				return fmt.Errorf("no country matches %q", strings.Join(args, " "))
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}
)

func init() {
	countriesCmd.Flags().IntVarP(&countriesLimit, "limit", "n", countries.DefaultLimit, "maximum number of suggestions")
}
