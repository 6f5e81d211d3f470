package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Ask the classifier to start a training run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ctrl.Train(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Training started")
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <drawing.png>",
	Short: "Send a labelled drawing to the classifier as training data",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubmit,
}

func init() {
	submitCmd.Flags().IntP("expected", "e", 0, "digit the drawing shows (0-9)")
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.load(args[0]); err != nil {
		return err
	}
	// without --expected the controller refuses with its own notice
	if err := a.selectLabel(cmd); err != nil {
		return err
	}
	if err := a.ctrl.SubmitForTraining(cmd.Context()); err != nil {
		return err
	}
	fmt.Println(a.ctrl.State().Summary)
	fmt.Println("Training data sent")
	return nil
}
