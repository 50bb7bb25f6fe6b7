package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/macrobot-go/internal/store"
)

var (
	macroProfileID string
	macroCategory  string
)

var macroCmd = &cobra.Command{
	Use:   "macro",
	Short: "Manage macros",
	Long: `Manage macros, the ordered step sequences inside a profile.

Examples:
  macroctl macro add "CapCut Export" --profile profile-1234 --category editing
  macroctl macro list profile-1234
  macroctl macro delete macro-5678`,
}

var macroAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a macro in a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if macroProfileID == "" {
			return fmt.Errorf("--profile is required")
		}
		ctx := context.Background()
		m, err := profiles.AddMacro(macroProfileID, store.MacroData{
			Name:     args[0],
			Category: macroCategory,
		})
		if err != nil {
			return err
		}
		if err := saveProfile(ctx, macroProfileID); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		fmt.Printf("Created macro %s (%s)\n", m.Name, m.ID)
		return nil
	},
}

var macroListCmd = &cobra.Command{
	Use:   "list <profile-id>",
	Short: "List a profile's macros with their steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profiles.GetProfile(args[0])
		if err != nil {
			return err
		}
		if len(p.Macros) == 0 {
			fmt.Println("No macros.")
			return nil
		}
		for _, m := range p.Macros {
			fmt.Printf("%s  %s", m.ID, m.Name)
			if m.Category != "" {
				fmt.Printf(" [%s]", m.Category)
			}
			fmt.Println()
			for i, st := range m.Steps {
				fmt.Printf("  %d. %s (%s)\n", i+1, st.Name, st.ID)
			}
		}
		return nil
	},
}

var macroDeleteCmd = &cobra.Command{
	Use:   "delete <macro-id>",
	Short: "Delete a macro and its steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		profileID, err := owningProfileOfMacro(args[0])
		if err != nil {
			return err
		}
		if err := profiles.DeleteMacro(args[0]); err != nil {
			return err
		}
		if err := saveProfile(ctx, profileID); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		fmt.Printf("Deleted macro %s\n", args[0])
		return nil
	},
}

// owningProfileOfMacro finds the profile that holds the macro.
func owningProfileOfMacro(macroID string) (string, error) {
	for _, p := range profiles.ListProfiles() {
		if p.FindMacro(macroID) != nil {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("macro %s not found", macroID)
}

// owningProfileOfStep finds the profile that holds the step.
func owningProfileOfStep(stepID string) (string, error) {
	for _, p := range profiles.ListProfiles() {
		for _, m := range p.Macros {
			if m.FindStep(stepID) != nil {
				return p.ID, nil
			}
		}
	}
	return "", fmt.Errorf("step %s not found", stepID)
}

func init() {
	macroAddCmd.Flags().StringVarP(&macroProfileID, "profile", "p", "", "owning profile id (required)")
	macroAddCmd.Flags().StringVarP(&macroCategory, "category", "c", "", "free-form grouping label")

	macroCmd.AddCommand(macroAddCmd)
	macroCmd.AddCommand(macroListCmd)
	macroCmd.AddCommand(macroDeleteCmd)
}
