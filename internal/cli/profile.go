package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/macrobot-go/internal/store"
)

var (
	profileDescription     string
	profileSpecializations []string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage profiles",
	Long: `Manage profiles, the top-level workspaces that own macros and
accumulate learned patterns.

Examples:
  macroctl profile add "Editor" --description "video editing workflows"
  macroctl profile list
  macroctl profile delete profile-1234`,
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		p, err := profiles.AddProfile(store.ProfileData{
			Name:            args[0],
			Description:     profileDescription,
			Specializations: profileSpecializations,
		})
		if err != nil {
			return err
		}
		if err := saveProfile(ctx, p.ID); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		fmt.Printf("Created profile %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		all := profiles.ListProfiles()
		if len(all) == 0 {
			fmt.Println("No profiles.")
			return nil
		}
		for _, p := range all {
			fmt.Printf("%s  %-20s  %d macros, %d memory entries\n",
				p.ID, p.Name, len(p.Macros), len(p.AIMemory))
		}
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show <profile-id>",
	Short: "Show a profile's macros, steps and learned memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profiles.GetProfile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", p.Name, p.ID)
		if p.Description != "" {
			fmt.Printf("  %s\n", p.Description)
		}
		if len(p.Specializations) > 0 {
			fmt.Printf("  specializations: %s\n", strings.Join(p.Specializations, ", "))
		}
		for _, m := range p.Macros {
			fmt.Printf("\n  %s  %s (%d steps)\n", m.ID, m.Name, len(m.Steps))
			for i, st := range m.Steps {
				fmt.Printf("    %d. %s  frames=%d audio=%d\n",
					i+1, st.Name, len(st.Screenshots), len(st.AudioNotes))
			}
		}
		if len(p.AIMemory) > 0 {
			fmt.Printf("\n  memory (%d entries):\n", len(p.AIMemory))
			for _, entry := range p.AIMemory {
				fmt.Printf("    - %s\n", entry)
			}
		}
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <profile-id>",
	Short: "Delete a profile and everything under it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := profiles.DeleteProfile(args[0]); err != nil {
			return err
		}
		if err := dbClient.DeleteProfile(ctx, args[0]); err != nil {
			return fmt.Errorf("delete stored profile: %w", err)
		}
		fmt.Printf("Deleted profile %s\n", args[0])
		return nil
	},
}

func init() {
	profileAddCmd.Flags().StringVarP(&profileDescription, "description", "d", "", "what the profile is for")
	profileAddCmd.Flags().StringSliceVarP(&profileSpecializations, "specializations", "s", nil, "topics the profile specializes in")

	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileDeleteCmd)
}
