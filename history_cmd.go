package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/envoy/internal/history"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var (
	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "List, show and manage saved briefings",
		Args:  cobra.NoArgs,
		RunE:  runHistoryList,
	}

	historyListCmd = &cobra.Command{
		Use:   "list",
		Short: "List saved briefings, newest first",
		Args:  cobra.NoArgs,
		RunE:  runHistoryList,
	}

	historyShowCmd = &cobra.Command{
		Use:   "show ID",
		Short: "Print a saved briefing",
		Long:  paragraph("\nPrint a saved briefing. Any unique prefix of the ID works."),
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			item, err := historyItem(args[0])
			if err != nil {
				return err
			}
			out, err := renderMarkdown(item.Summary)
			if err != nil {
				return err
			}
			fmt.Println(keyword(item.Country) + " " + faint(item.Topic))
			fmt.Print(out)
			for _, s := range item.Sources {
				fmt.Printf("  %s %s\n", keyword(s.Title), faint(s.URI))
			}
			return nil
		},
	}

	historyDeleteCmd = &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a saved briefing",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			return store.Delete(args[0])
		},
	}

	historyClearForce bool
	historyClearCmd   = &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved briefing",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if !historyClearForce {
				return fmt.Errorf("this deletes all saved briefings: run again with --force")
			}
			store, err := openHistory()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "History cleared.")
			return nil
		},
	}
)

func init() {
	historyClearCmd.Flags().BoolVarP(&historyClearForce, "force", "f", false, "do not refuse")
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyClearCmd)
}

func historyItem(id string) (history.Item, error) {
	store, err := openHistory()
	if err != nil {
		return history.Item{}, err
	}
	return store.Get(id)
}

func runHistoryList(*cobra.Command, []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	items := store.List()
	if len(items) == 0 {
		fmt.Fprintln(os.Stderr, "No saved briefings yet. Try: envoy brief -c <country> -t <topic>")
		return nil
	}

	idStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	for _, item := range items {
		fmt.Println(formatHistoryLine(item, idStyle, int(width))) //nolint:gosec
	}
	return nil
}

func formatHistoryLine(item history.Item, idStyle lipgloss.Style, maxWidth int) string {
	id := item.ID
	if len(id) > 8 {
		id = id[:8]
	}
	when := humanize.Time(item.Timestamp)
	line := fmt.Sprintf("%s  %s: %s", id, item.Country, item.Topic)
	if maxWidth > 0 {
		line = runewidth.Truncate(line, max(10, maxWidth-len(when)-3), "…")
	}
	return idStyle.Render(line[:len(id)]) + strings.TrimPrefix(line, id) + "  " + faint(when)
}
