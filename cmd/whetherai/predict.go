package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/whetherai/internal/advice"
	"github.com/rewired-gh/whetherai/internal/inference"
)

func newPredictCmd() *cobra.Command {
	var (
		cloudy, humid, warm bool
		asJSON              bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict rain and sunlight from observations, without fetching weather",
		Example: `  whetherai predict --cloudy --humid
  whetherai predict --warm --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(true); err != nil {
				return err
			}
			engine, err := newEngine()
			if err != nil {
				return err
			}

			prediction, err := engine.Predict(inference.NewEvidence(cloudy, humid, warm))
			if err != nil {
				return err
			}
			if asJSON {
				return writePredictionJSON(cmd.OutOrStdout(), prediction)
			}
			writePrediction(cmd.OutOrStdout(), prediction)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cloudy, "cloudy", false, "The sky is mostly covered with clouds")
	cmd.Flags().BoolVar(&humid, "humid", false, "The air is humid")
	cmd.Flags().BoolVar(&warm, "warm", false, "The weather is warm")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the prediction as JSON")
	return cmd
}

func writePredictionJSON(w io.Writer, p inference.Prediction) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		inference.Prediction
		Advice advice.Advice `json:"advice"`
	}{p, advice.For(p)})
}

func writePrediction(w io.Writer, p inference.Prediction) {
	a := advice.For(p)
	fmt.Fprintf(w, "Rain chance: %.0f%%\n", p.RainChance*100)
	fmt.Fprintf(w, "Sunlight:    %.0f%%\n\n", p.Sunlight*100)
	for _, o := range []advice.Outlook{a.Rain, a.Sun} {
		fmt.Fprintln(w, o.Headline)
		for _, tip := range o.Tips {
			fmt.Fprintf(w, "- %s\n", tip)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Note: %s\n", a.Note)
}
