package synthesis

import (
	"fmt"
	"strings"

	"github.com/raphaelgruber/macrobot-go/internal/models"
)

// Icon is an entry in the screen-control icon library.
type Icon struct {
	ID       string
	Label    string
	Keywords []string
}

// IconLibrary lists the application icons the screen-control simulation
// knows how to locate.
var IconLibrary = []Icon{
	{ID: "capcut", Label: "CapCut", Keywords: []string{"video", "edit", "logo"}},
	{ID: "edge", Label: "Microsoft Edge", Keywords: []string{"browser", "blue", "e"}},
	{ID: "chrome", Label: "Google Chrome", Keywords: []string{"browser", "multi-color", "round"}},
	{ID: "youtube", Label: "YouTube", Keywords: []string{"red", "play", "video"}},
}

// FindIcon looks up an icon by id. Returns nil when unknown.
func FindIcon(id string) *Icon {
	for i := range IconLibrary {
		if IconLibrary[i].ID == id {
			return &IconLibrary[i]
		}
	}
	return nil
}

// SimulateStep builds the ordered cue list for driving the screen toward
// a step: icon lookup, OCR verification, text entry, and post-click
// monitoring derived from the step's wait conditions.
func SimulateStep(step *models.Step, iconID, typedText string) ([]string, error) {
	icon := FindIcon(iconID)
	if icon == nil {
		return nil, fmt.Errorf("unknown icon %q", iconID)
	}

	cues := []string{
		fmt.Sprintf("Locate the icon by keywords: %s.", strings.Join(icon.Keywords, ", ")),
		"Verify the surrounding label text with OCR.",
	}
	if typedText != "" {
		cues = append(cues, fmt.Sprintf("Prepare to type into the field: %q.", typedText))
	} else {
		cues = append(cues, "Add text input as needed.")
	}
	if step.UserWaitConditions != "" {
		cues = append(cues, fmt.Sprintf("After clicking, watch for: %s.", step.UserWaitConditions))
	} else {
		cues = append(cues, "Add progress monitoring after the application activates.")
	}
	return cues, nil
}
