package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Show speech cache usage",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			dir, err := cacheDir()
			if err != nil {
				return err
			}
			sc, err := openSpeechCache()
			if err != nil {
				return err
			}
			defer sc.Close() //nolint:errcheck

			s := sc.Stats()
			fmt.Printf("%s %s\n", keyword("Directory:"), dir)
			fmt.Printf("%s %d\n", keyword("Entries:  "), s.Items)
			fmt.Printf("%s %s of %s\n", keyword("Size:     "),
				humanize.IBytes(uint64(s.Size)), humanize.IBytes(uint64(s.Capacity))) //nolint:gosec
			if !s.Oldest.IsZero() {
				fmt.Printf("%s %s\n", keyword("Oldest:   "), humanize.Time(s.Oldest))
			}
			return nil
		},
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached speech",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			sc, err := openSpeechCache()
			if err != nil {
				return err
			}
			defer sc.Close() //nolint:errcheck
			if err := sc.Clear(); err != nil {
				return err
			}
			fmt.Println("Speech cache cleared.")
			return nil
		},
	}
)

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}
