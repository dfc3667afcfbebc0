package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ultracoach/internal/store"
)

func init() {
	goalCmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage race goals",
	}

	addCmd := &cobra.Command{
		Use:   "add [event name]",
		Short: "Add a goal, or update one with --id",
		Args:  cobra.MaximumNArgs(1),
		Run:   runGoalAdd,
	}
	addCmd.Flags().String("id", "", "Goal ID to update (omit to create)")
	addCmd.Flags().Float64("distance", 0, "Race distance in km")
	addCmd.Flags().String("date", "", "Event date (RFC3339 or YYYY-MM-DD)")
	addCmd.Flags().String("context", "", "Why this race matters")
	addCmd.Flags().String("target", "", "Target finish time, e.g. 12h30m")
	addCmd.Flags().Int("fitness", 0, "Current fitness level 1-10")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List active goals",
		Run:   runGoalList,
	}

	rmCmd := &cobra.Command{
		Use:   "rm [event name]",
		Short: "Remove a goal by --id or event name",
		Args:  cobra.MaximumNArgs(1),
		Run:   runGoalRm,
	}
	rmCmd.Flags().String("id", "", "Goal ID")

	goalCmd.AddCommand(addCmd, listCmd, rmCmd)
	RootCmd.AddCommand(goalCmd)
}

func runGoalAdd(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")

	p := store.GoalParams{ID: id}
	if len(args) > 0 {
		p.EventName = args[0]
	}
	if cmd.Flags().Changed("distance") {
		v, _ := cmd.Flags().GetFloat64("distance")
		p.DistanceKm = &v
	}
	if cmd.Flags().Changed("date") {
		raw, _ := cmd.Flags().GetString("date")
		t, err := parseDate(raw)
		if err != nil {
			exitErr("goal add", err)
		}
		p.EventDatetime = &t
	}
	if cmd.Flags().Changed("context") {
		v, _ := cmd.Flags().GetString("context")
		p.ContextText = &v
	}
	if cmd.Flags().Changed("target") {
		raw, _ := cmd.Flags().GetString("target")
		d, err := time.ParseDuration(raw)
		if err != nil {
			exitErr("goal add", fmt.Errorf("parse target time %q: %w", raw, err))
		}
		secs := int(d.Seconds())
		p.TargetTimeSeconds = &secs
	}
	if cmd.Flags().Changed("fitness") {
		v, _ := cmd.Flags().GetInt("fitness")
		p.FitnessLevel = &v
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	goalID, err := s.PutGoal(cmd.Context(), p)
	if err != nil {
		exitErr("goal add", err)
	}
	fmt.Println(goalID)
}

func runGoalList(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	goals, err := s.ActiveGoals(cmd.Context())
	if err != nil {
		exitErr("goal list", err)
	}

	b, _ := json.MarshalIndent(goals, "", "  ")
	fmt.Println(string(b))
}

func runGoalRm(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	if id == "" && name == "" {
		exitErr("goal rm", fmt.Errorf("give a goal --id or an event name"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	removed, err := s.RemoveGoal(cmd.Context(), id, name)
	if err != nil {
		exitErr("goal rm", err)
	}
	if removed {
		fmt.Println("removed")
	} else {
		fmt.Println("no matching goal")
	}
}

// parseDate accepts RFC3339 or a bare date, which is taken as midnight UTC.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: want RFC3339 or YYYY-MM-DD", raw)
	}
	return t, nil
}
