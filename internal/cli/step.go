package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/macrobot-go/internal/store"
)

var (
	stepMacroID     string
	stepDescription string
	stepExplanation string
	stepWait        string
	stepTips        []string
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Manage macro steps",
	Long: `Manage the steps inside a macro.

Examples:
  macroctl step add "Open App" --macro macro-5678 --explain "Click the app icon."
  macroctl step update step-9012 --explain "Double-click the app icon."
  macroctl step tip add step-9012 "pin it to the taskbar"
  macroctl step tip remove step-9012 0
  macroctl step delete step-9012`,
}

var stepAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Append a step to a macro",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if stepMacroID == "" {
			return fmt.Errorf("--macro is required")
		}
		ctx := context.Background()
		st, err := profiles.AddStep(stepMacroID, store.StepData{
			Name:               args[0],
			Description:        stepDescription,
			UserExplanation:    stepExplanation,
			UserWaitConditions: stepWait,
			UserTips:           stepTips,
		})
		if err != nil {
			return err
		}
		profileID, err := owningProfileOfMacro(stepMacroID)
		if err != nil {
			return err
		}
		if err := saveProfile(ctx, profileID); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		fmt.Printf("Created step %s (%s)\n", st.Name, st.ID)
		return nil
	},
}

var stepUpdateCmd = &cobra.Command{
	Use:   "update <step-id>",
	Short: "Update step fields; unset flags keep their value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var patch store.StepPatch
		if cmd.Flags().Changed("description") {
			patch.Description = &stepDescription
		}
		if cmd.Flags().Changed("explain") {
			patch.UserExplanation = &stepExplanation
		}
		if cmd.Flags().Changed("wait") {
			patch.UserWaitConditions = &stepWait
		}
		if cmd.Flags().Changed("tips") {
			patch.UserTips = &stepTips
		}

		if _, err := profiles.UpdateStep(args[0], patch); err != nil {
			return err
		}
		profileID, err := owningProfileOfStep(args[0])
		if err != nil {
			return err
		}
		if err := saveProfile(ctx, profileID); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		fmt.Printf("Updated step %s\n", args[0])
		return nil
	},
}

var stepDeleteCmd = &cobra.Command{
	Use:   "delete <step-id>",
	Short: "Delete a step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		profileID, err := owningProfileOfStep(args[0])
		if err != nil {
			return err
		}
		if err := profiles.DeleteStep(args[0]); err != nil {
			return err
		}
		if err := saveProfile(ctx, profileID); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		fmt.Printf("Deleted step %s\n", args[0])
		return nil
	},
}

var stepTipCmd = &cobra.Command{
	Use:   "tip",
	Short: "Manage a step's tips",
}

var stepTipAddCmd = &cobra.Command{
	Use:   "add <step-id> <tip>",
	Short: "Append a tip to a step",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := profiles.AddStepTip(args[0], args[1]); err != nil {
			return err
		}
		profileID, err := owningProfileOfStep(args[0])
		if err != nil {
			return err
		}
		if err := saveProfile(ctx, profileID); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		fmt.Printf("Added tip to step %s\n", args[0])
		return nil
	},
}

var stepTipRemoveCmd = &cobra.Command{
	Use:   "remove <step-id> <index>",
	Short: "Remove a step tip by zero-based index",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("index must be a number: %w", err)
		}
		if err := profiles.RemoveStepTip(args[0], index); err != nil {
			return err
		}
		profileID, err := owningProfileOfStep(args[0])
		if err != nil {
			return err
		}
		if err := saveProfile(ctx, profileID); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		fmt.Printf("Removed tip %d from step %s\n", index, args[0])
		return nil
	},
}

func init() {
	stepAddCmd.Flags().StringVarP(&stepMacroID, "macro", "m", "", "owning macro id (required)")
	stepAddCmd.Flags().StringVarP(&stepDescription, "description", "d", "", "short description")
	stepAddCmd.Flags().StringVarP(&stepExplanation, "explain", "e", "", "how to perform this step")
	stepAddCmd.Flags().StringVarP(&stepWait, "wait", "w", "", "what to wait for before the next step")
	stepAddCmd.Flags().StringSliceVarP(&stepTips, "tips", "t", nil, "free-form tips")

	stepUpdateCmd.Flags().StringVarP(&stepDescription, "description", "d", "", "new description")
	stepUpdateCmd.Flags().StringVarP(&stepExplanation, "explain", "e", "", "new explanation")
	stepUpdateCmd.Flags().StringVarP(&stepWait, "wait", "w", "", "new wait conditions")
	stepUpdateCmd.Flags().StringSliceVarP(&stepTips, "tips", "t", nil, "replacement tip list")

	stepTipCmd.AddCommand(stepTipAddCmd)
	stepTipCmd.AddCommand(stepTipRemoveCmd)

	stepCmd.AddCommand(stepAddCmd)
	stepCmd.AddCommand(stepUpdateCmd)
	stepCmd.AddCommand(stepDeleteCmd)
	stepCmd.AddCommand(stepTipCmd)
}
