package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kilianp07/evroute/core/energy"
	"github.com/kilianp07/evroute/core/vehicle"
)

var datasetOpts struct {
	samples      int
	seed         uint64
	out          string
	vehiclesFile string
}

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Generate a synthetic training dataset as CSV",
	RunE:  runDataset,
}

var trainOpts struct {
	in           string
	out          string
	seed         uint64
	testFraction float64
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the regression model on a dataset and write it as JSON",
	RunE:  runTrain,
}

func init() {
	f := datasetCmd.Flags()
	f.IntVarP(&datasetOpts.samples, "samples", "n", 5000, "number of trips to generate")
	f.Uint64Var(&datasetOpts.seed, "seed", 42, "random seed")
	f.StringVarP(&datasetOpts.out, "out", "o", "ev_dataset.csv", "output file, .parquet selects Parquet, anything else CSV")
	f.StringVar(&datasetOpts.vehiclesFile, "vehicles", "", "vehicle catalog file, defaults to the built-in presets")

	t := trainCmd.Flags()
	t.StringVarP(&trainOpts.in, "in", "i", "ev_dataset.csv", "input CSV or Parquet file")
	t.StringVarP(&trainOpts.out, "out", "o", "ev_energy_model.json", "output model file")
	t.Uint64Var(&trainOpts.seed, "seed", energy.DefaultTrainOptions().Seed, "split seed")
	t.Float64Var(&trainOpts.testFraction, "test-fraction", energy.DefaultTrainOptions().TestFraction, "held-out share of the samples")

	rootCmd.AddCommand(datasetCmd, trainCmd)
}

func runDataset(cmd *cobra.Command, args []string) error {
	cat := vehicle.Default()
	if datasetOpts.vehiclesFile != "" {
		var err error
		if cat, err = vehicle.LoadFile(datasetOpts.vehiclesFile); err != nil {
			return err
		}
	}
	bar := progressbar.NewOptions(datasetOpts.samples,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("generating"),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(0),
		progressbar.OptionClearOnFinish(),
	)
	samples, err := energy.GenerateDataset(datasetOpts.samples, datasetOpts.seed, cat.List(), func() { _ = bar.Add(1) })
	if err != nil {
		return err
	}
	_ = bar.Finish()

	if err := writeSamples(datasetOpts.out, samples); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d samples to %s\n", len(samples), datasetOpts.out)
	return err
}

func runTrain(cmd *cobra.Command, args []string) error {
	samples, err := readSamples(trainOpts.in)
	if err != nil {
		return fmt.Errorf("read %s: %w", trainOpts.in, err)
	}
	m, err := energy.Train(samples, energy.TrainOptions{TestFraction: trainOpts.testFraction, Seed: trainOpts.seed})
	if err != nil {
		return err
	}
	if err := m.Save(trainOpts.out); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "trained on %d samples, R2 %.4f, model written to %s\n", m.Samples, m.R2, trainOpts.out)
	return err
}

func isParquet(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".parquet")
}

func writeSamples(path string, samples []energy.Sample) error {
	if isParquet(path) {
		return energy.WriteDatasetParquet(path, samples)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := energy.WriteDataset(f, samples); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func readSamples(path string) ([]energy.Sample, error) {
	if isParquet(path) {
		return energy.ReadDatasetParquet(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return energy.ReadDataset(f)
}
