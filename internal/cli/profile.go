package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ultracoach/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the athlete profile",
		Long:  "Without flags, prints the profile. Flags set individual fields; unset flags leave existing values unchanged.",
		Run:   runProfile,
	}

	cmd.Flags().Int("birth-year", 0, "Birth year")
	cmd.Flags().String("gender", "", "Gender")
	cmd.Flags().String("history", "", "Free-form running history")
	cmd.Flags().Float64("weight", 0, "Weight in kg")
	cmd.Flags().Int("running-years", 0, "Years of running experience")
	cmd.Flags().String("terrain", "", "Preferred terrain")
	cmd.Flags().Float64("weekly-km", 0, "Typical weekly mileage in km")
	cmd.Flags().Int("ultras", 0, "Number of ultras completed")

	RootCmd.AddCommand(cmd)
}

func runProfile(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var p store.ProfileParams
	changed := false
	if cmd.Flags().Changed("birth-year") {
		v, _ := cmd.Flags().GetInt("birth-year")
		p.BirthYear = &v
		changed = true
	}
	if cmd.Flags().Changed("gender") {
		v, _ := cmd.Flags().GetString("gender")
		p.Gender = &v
		changed = true
	}
	if cmd.Flags().Changed("history") {
		v, _ := cmd.Flags().GetString("history")
		p.History = &v
		changed = true
	}
	if cmd.Flags().Changed("weight") {
		v, _ := cmd.Flags().GetFloat64("weight")
		p.WeightKg = &v
		changed = true
	}
	if cmd.Flags().Changed("running-years") {
		v, _ := cmd.Flags().GetInt("running-years")
		p.RunningYears = &v
		changed = true
	}
	if cmd.Flags().Changed("terrain") {
		v, _ := cmd.Flags().GetString("terrain")
		p.PreferredTerrain = &v
		changed = true
	}
	if cmd.Flags().Changed("weekly-km") {
		v, _ := cmd.Flags().GetFloat64("weekly-km")
		p.WeeklyMileageKm = &v
		changed = true
	}
	if cmd.Flags().Changed("ultras") {
		v, _ := cmd.Flags().GetInt("ultras")
		p.UltraExperience = &v
		changed = true
	}

	if changed {
		if err := s.UpsertProfile(cmd.Context(), p); err != nil {
			exitErr("profile", err)
		}
	}

	prof, err := s.GetProfile(cmd.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fmt.Println("no profile yet; set fields with the profile flags")
			return
		}
		exitErr("profile", err)
	}

	b, _ := json.MarshalIndent(prof, "", "  ")
	fmt.Println(string(b))
}
