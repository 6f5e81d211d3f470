package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"digitpad/internal/classifier"
	"digitpad/internal/presenter"
)

var predictCmd = &cobra.Command{
	Use:   "predict <drawing.png>",
	Short: "Normalize a drawing and ask the classifier which digit it is",
	Args:  cobra.ExactArgs(1),
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().IntP("expected", "e", 0, "expected digit (0-9)")
	predictCmd.Flags().String("chart", "", "write the confidence chart PNG to this path")
	predictCmd.Flags().String("preview", "", "write the processed 28x28 PNG to this path")
	predictCmd.Flags().Bool("json", false, "print the prediction as JSON")
	rootCmd.AddCommand(predictCmd)
}

type predictOutput struct {
	Prediction  int                `json:"prediction"`
	Expected    *int               `json:"expected"`
	Correct     bool               `json:"correct"`
	Predictions map[string]float64 `json:"predictions"`
}

func runPredict(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.load(args[0]); err != nil {
		return err
	}
	if err := a.selectLabel(cmd); err != nil {
		return err
	}

	pred, err := a.ctrl.Predict(cmd.Context())
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("chart"); path != "" {
		if err := writePNG(path, a.board.Chart()); err != nil {
			return fmt.Errorf("writing chart: %w", err)
		}
	}
	if path, _ := cmd.Flags().GetString("preview"); path != "" {
		if err := writePNG(path, a.preview.Image().Image()); err != nil {
			return fmt.Errorf("writing preview: %w", err)
		}
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		out := predictOutput{
			Prediction:  pred.Digit,
			Expected:    pred.Expected,
			Correct:     pred.Correct,
			Predictions: make(map[string]float64, classifier.Classes),
		}
		labels := presenter.Labels()
		for i, v := range pred.Confidences {
			out.Predictions[labels[i]] = v
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println(a.ctrl.State().Summary)
	printBars(pred)
	return nil
}

func printBars(pred *classifier.Prediction) {
	for i, v := range pred.Confidences {
		n := int(v*40 + 0.5)
		bar := make([]byte, n)
		for j := range bar {
			bar[j] = '#'
		}
		fmt.Printf("  %d %5.1f%% %s\n", i, v*100, bar)
	}
}
