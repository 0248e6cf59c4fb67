package outwriter

import (
	"os"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"golang.org/x/term"
)

// Table layouts, used to size the free-text column.
type tableLayout int

const (
	processLayout  tableLayout = iota // Rank, Class, Interface, Before, After, Label
	inspectLayout                     // Class, Super, Interfaces, Java, Manifest
	manifestLayout                    // Class, Interface, Signature
)

// GetMaxTablePathWidth calculates the maximum width for class names and
// signatures in table output based on terminal width and table layout.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	return getMaxTableWidth(cfg, processLayout)
}

func getMaxTableWidth(cfg *contract.Config, layout tableLayout) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the fixed columns of each layout
	var baseWidth int
	switch layout {
	case inspectLayout:
		baseWidth = 30 // Java + Manifest, plus half for super and interfaces
	case manifestLayout:
		baseWidth = 10
	default:
		baseWidth = 40 // Rank + Before + After + Label
	}

	// Reserve generous space for table borders, separators, and padding
	baseWidth += 20

	// The free-text columns split what is left
	available := (termWidth - baseWidth) / 2
	if available < 15 {
		// Minimum reasonable column width
		return 15
	}
	if available > 70 {
		// Maximum column width to prevent overly long rows
		return 70
	}
	return available
}
