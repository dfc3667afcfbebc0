package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	convoCmd := &cobra.Command{
		Use:   "convo",
		Short: "Inspect and maintain the conversation log",
	}

	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Print the most recent turns in order",
		Run:   runConvoTail,
	}
	tailCmd.Flags().IntP("limit", "l", 20, "Number of turns")

	searchCmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Full-text search over past turns",
		Args:  cobra.MinimumNArgs(1),
		Run:   runConvoSearch,
	}
	searchCmd.Flags().IntP("limit", "l", 20, "Max results")

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete turns older than the retention window",
		Run:   runConvoPrune,
	}
	pruneCmd.Flags().Int("days", 90, "Retention window in days")

	convoCmd.AddCommand(tailCmd, searchCmd, pruneCmd)
	RootCmd.AddCommand(convoCmd)
}

func runConvoTail(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	turns, err := s.Tail(cmd.Context(), limit)
	if err != nil {
		exitErr("convo tail", err)
	}

	for _, t := range turns {
		fmt.Printf("[%s] %s: %s\n", t.Timestamp.Format("2006-01-02 15:04"), t.Speaker, t.Text)
	}
}

func runConvoSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	turns, err := s.SearchTurns(cmd.Context(), strings.Join(args, " "), limit)
	if err != nil {
		exitErr("convo search", err)
	}

	b, _ := json.MarshalIndent(turns, "", "  ")
	fmt.Println(string(b))
}

func runConvoPrune(cmd *cobra.Command, args []string) {
	days, _ := cmd.Flags().GetInt("days")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.PruneTurns(cmd.Context(), days)
	if err != nil {
		exitErr("convo prune", err)
	}
	fmt.Printf("pruned %d turns\n", n)
}
