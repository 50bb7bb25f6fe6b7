package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Run synthesis over steps and macros",
	Long: `Run synthesis: derive an enhanced explanation plus learned patterns
for a step, or a summary plus improvement tips for a macro. Step patterns
are appended to the owning profile's memory.

Examples:
  macroctl synth step step-9012
  macroctl synth macro macro-5678`,
}

var synthStepCmd = &cobra.Command{
	Use:   "step <step-id>",
	Short: "Enhance a step and learn patterns from it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		out, err := profiles.GenerateStepAI(args[0])
		if err != nil {
			return err
		}
		profileID, err := owningProfileOfStep(args[0])
		if err != nil {
			return err
		}
		if err := saveProfile(ctx, profileID); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}

		fmt.Println(out.Explanation)
		fmt.Printf("\nLearned %d patterns:\n", len(out.Patterns))
		for _, p := range out.Patterns {
			fmt.Printf("  - %s\n", p)
		}
		return nil
	},
}

var synthMacroCmd = &cobra.Command{
	Use:   "macro <macro-id>",
	Short: "Summarize a macro and derive improvement tips",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		out, err := profiles.SynthesizeMacro(args[0])
		if err != nil {
			return err
		}
		profileID, err := owningProfileOfMacro(args[0])
		if err != nil {
			return err
		}
		if err := saveProfile(ctx, profileID); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}

		fmt.Println(out.Summary)
		if len(out.ImprovementTips) > 0 {
			fmt.Println("\nImprovement tips:")
			for _, tip := range out.ImprovementTips {
				fmt.Printf("  - %s\n", tip)
			}
		}
		return nil
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <profile-id>",
	Short: "Suggest new macros from a profile's learned patterns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		suggestions, err := profiles.SuggestMacros(args[0])
		if err != nil {
			return err
		}
		for _, s := range suggestions {
			fmt.Printf("  - %s\n", s)
		}
		return nil
	},
}

func init() {
	synthCmd.AddCommand(synthStepCmd)
	synthCmd.AddCommand(synthMacroCmd)
}
