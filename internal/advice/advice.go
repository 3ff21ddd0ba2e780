// Package advice turns rain and sunlight probabilities into plain farming
// guidance.
package advice

import "github.com/rewired-gh/whetherai/internal/inference"

// Threshold is the probability above which an outcome is called likely.
const Threshold = 0.5

// Note closes every advisory.
const Note = "This is an AI-based prediction. Always check local weather updates!"

// Outlook is the guidance for one outcome.
type Outlook struct {
	Likely   bool     `json:"likely"`
	Headline string   `json:"headline"`
	Tips     []string `json:"tips"`
}

// Advice is the full advisory for a prediction.
type Advice struct {
	Rain Outlook `json:"rain"`
	Sun  Outlook `json:"sun"`
	Note string  `json:"note"`
}

// For builds the advisory for p.
func For(p inference.Prediction) Advice {
	return Advice{
		Rain: rainOutlook(p.RainChance),
		Sun:  sunOutlook(p.Sunlight),
		Note: Note,
	}
}

func rainOutlook(chance float64) Outlook {
	if chance > Threshold {
		return Outlook{
			Likely:   true,
			Headline: "It may rain today.",
			Tips: []string{
				"Keep your crops covered if needed.",
				"Avoid harvesting today.",
				"Check drainage to avoid waterlogging.",
			},
		}
	}
	return Outlook{
		Headline: "No rain expected today.",
		Tips: []string{
			"Good day for farming work.",
			"You may need to water your crops.",
		},
	}
}

func sunOutlook(chance float64) Outlook {
	if chance > Threshold {
		return Outlook{
			Likely:   true,
			Headline: "Expect bright sunlight today.",
			Tips: []string{
				"Wear protection against heat.",
				"Irrigate crops early in the morning.",
				"Solar-powered equipment will work well.",
			},
		}
	}
	return Outlook{
		Headline: "Cloudy weather expected.",
		Tips: []string{
			"Less sunlight for crops.",
			"It may be a cooler day.",
		},
	}
}
