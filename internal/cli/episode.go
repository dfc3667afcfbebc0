package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ultracoach/internal/store"
)

func init() {
	epCmd := &cobra.Command{
		Use:   "episode",
		Short: "Track injuries, illness and life events",
	}

	logCmd := &cobra.Command{
		Use:   "log [narrative]",
		Short: "Log a new episode",
		Args:  cobra.MinimumNArgs(1),
		Run:   runEpisodeLog,
	}
	logCmd.Flags().StringP("topic", "t", "", "Topic: injury, fatigue, effort, motivation, sleep, nutrition, stress, recovery, other")
	logCmd.Flags().IntP("severity", "s", 0, "Severity 1-10")
	logCmd.Flags().String("start", "", "Start date (RFC3339 or YYYY-MM-DD, default now)")

	currentCmd := &cobra.Command{
		Use:   "current",
		Short: "List open episodes",
		Run:   runEpisodeCurrent,
	}
	currentCmd.Flags().StringP("topic", "t", "", "Filter by topic")

	endCmd := &cobra.Command{
		Use:   "end [id]",
		Short: "Mark an episode as resolved",
		Args:  cobra.ExactArgs(1),
		Run:   runEpisodeEnd,
	}
	endCmd.Flags().String("date", "", "Resolution date (default now)")

	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "List episodes from the trailing window, open or closed",
		Run:   runEpisodeRecent,
	}
	recentCmd.Flags().Int("days", 30, "Window in days")
	recentCmd.Flags().StringP("topic", "t", "", "Filter by topic")

	epCmd.AddCommand(logCmd, currentCmd, endCmd, recentCmd)
	RootCmd.AddCommand(epCmd)
}

func runEpisodeLog(cmd *cobra.Command, args []string) {
	topic, _ := cmd.Flags().GetString("topic")
	severity, _ := cmd.Flags().GetInt("severity")
	startStr, _ := cmd.Flags().GetString("start")

	p := store.EpisodeParams{
		Topic:     topic,
		Narrative: strings.Join(args, " "),
		Severity:  severity,
	}
	if startStr != "" {
		t, err := parseDate(startStr)
		if err != nil {
			exitErr("episode log", err)
		}
		p.Start = t
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ep, err := s.LogEpisode(cmd.Context(), p)
	if err != nil {
		exitErr("episode log", err)
	}

	b, _ := json.Marshal(ep)
	fmt.Println(string(b))
}

func runEpisodeCurrent(cmd *cobra.Command, args []string) {
	topic, _ := cmd.Flags().GetString("topic")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	eps, err := s.CurrentEpisodes(cmd.Context(), topic)
	if err != nil {
		exitErr("episode current", err)
	}

	b, _ := json.MarshalIndent(eps, "", "  ")
	fmt.Println(string(b))
}

func runEpisodeEnd(cmd *cobra.Command, args []string) {
	dateStr, _ := cmd.Flags().GetString("date")

	var end time.Time
	if dateStr != "" {
		t, err := parseDate(dateStr)
		if err != nil {
			exitErr("episode end", err)
		}
		end = t
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	closed, err := s.EndEpisode(cmd.Context(), args[0], end)
	if err != nil {
		exitErr("episode end", err)
	}
	if closed {
		fmt.Println("resolved")
	} else {
		fmt.Println("no open episode with that id")
	}
}

func runEpisodeRecent(cmd *cobra.Command, args []string) {
	days, _ := cmd.Flags().GetInt("days")
	topic, _ := cmd.Flags().GetString("topic")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	eps, err := s.RecentEpisodes(cmd.Context(), days, topic)
	if err != nil {
		exitErr("episode recent", err)
	}

	b, _ := json.MarshalIndent(eps, "", "  ")
	fmt.Println(string(b))
}
