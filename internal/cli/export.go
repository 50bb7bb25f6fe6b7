package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/macrobot-go/internal/export"
	"github.com/raphaelgruber/macrobot-go/internal/models"
)

var exportCmd = &cobra.Command{
	Use:   "export <profile-id|macro-id> <path>",
	Short: "Export a profile or macro to a JSON document",
	Long: `Export a profile (or a single macro) to a self-contained JSON
document. All captured screenshots and audio notes are inlined, so the file
can be imported on another machine without the original session.

Examples:
  macroctl export profile-1234 editor.json
  macroctl export macro-5678 capcut-export.json`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	id, path := args[0], args[1]

	var doc *models.ProfileDocument
	err := runWithProgress("Exporting", func(report func(done, total int)) error {
		var buildErr error
		if strings.HasPrefix(id, "macro-") {
			doc, buildErr = profiles.ExportMacro(id, export.WithProgress(report))
		} else {
			doc, buildErr = profiles.ExportProfile(id, export.WithProgress(report))
		}
		return buildErr
	})
	if err != nil {
		return err
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Printf("Wrote %s (%d macros)\n", path, len(doc.Macros))
	return nil
}

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import a profile document as a new profile",
	Long: `Import a JSON document produced by export. A valid document becomes
a new profile with a fresh identity; an invalid one creates nothing.

Example:
  macroctl import editor.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	var doc models.ProfileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	p, err := profiles.ImportProfile(&doc)
	if err != nil {
		return err
	}
	if err := saveProfile(context.Background(), p.ID); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	fmt.Printf("Imported profile %s (%s) with %d macros\n", p.Name, p.ID, len(p.Macros))
	return nil
}
