package energy

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// TrainOptions controls the train/test split.
type TrainOptions struct {
	TestFraction float64
	Seed         uint64
}

// DefaultTrainOptions holds out 20% of the samples with seed 42.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{TestFraction: 0.2, Seed: 42}
}

// Train fits an ordinary least squares model on the samples and reports R²
// on the held-out split. The first level of each categorical column is the
// baseline and gets no indicator column.
func Train(samples []Sample, opts TrainOptions) (*RegressionModel, error) {
	if opts.TestFraction < 0 || opts.TestFraction >= 1 {
		return nil, fmt.Errorf("test fraction %v out of range", opts.TestFraction)
	}
	features := featureColumns(samples)
	p := len(features) + 1

	idx := make([]int, len(samples))
	for i := range idx {
		idx[i] = i
	}
	rnd := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	rnd.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	nTest := int(math.Ceil(float64(len(samples)) * opts.TestFraction))
	trainIdx, testIdx := idx[nTest:], idx[:nTest]
	if len(trainIdx) <= p {
		return nil, fmt.Errorf("need more than %d training samples, have %d", p, len(trainIdx))
	}

	x := mat.NewDense(len(trainIdx), p, nil)
	y := mat.NewVecDense(len(trainIdx), nil)
	for r, i := range trainIdx {
		row := encode(samples[i].row())
		x.Set(r, 0, 1)
		for c, name := range features {
			x.Set(r, c+1, row[name])
		}
		y.SetVec(r, samples[i].EnergyKWh)
	}

	var qr mat.QR
	qr.Factorize(x)
	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, y); err != nil {
		return nil, fmt.Errorf("solve least squares: %w", err)
	}

	m := &RegressionModel{
		Features:     features,
		Coefficients: make([]float64, len(features)),
		Intercept:    beta.AtVec(0),
		Samples:      len(samples),
		TrainedAt:    time.Now().UTC(),
	}
	for i := range features {
		m.Coefficients[i] = beta.AtVec(i + 1)
	}

	eval := testIdx
	if len(eval) == 0 {
		eval = trainIdx
	}
	pred := make([]float64, len(eval))
	actual := make([]float64, len(eval))
	for k, i := range eval {
		s := samples[i]
		row := encode(s.row())
		v := m.Intercept
		for c, name := range features {
			v += m.Coefficients[c] * row[name]
		}
		pred[k] = v
		actual[k] = s.EnergyKWh
	}
	m.R2 = stat.RSquaredFrom(pred, actual, nil)
	return m, nil
}

func featureColumns(samples []Sample) []string {
	vehicles := map[string]struct{}{}
	modes := map[string]struct{}{}
	for _, s := range samples {
		vehicles[s.VehicleType] = struct{}{}
		modes[string(s.DriveMode)] = struct{}{}
	}
	cols := append([]string(nil), numericColumns...)
	cols = append(cols, dummies(vehiclePrefix, vehicles)...)
	cols = append(cols, dummies(driveModePrefix, modes)...)
	return cols
}

func dummies(prefix string, levels map[string]struct{}) []string {
	names := make([]string, 0, len(levels))
	for l := range levels {
		names = append(names, l)
	}
	sort.Strings(names)
	if len(names) > 0 {
		names = names[1:]
	}
	for i, n := range names {
		names[i] = prefix + n
	}
	return names
}
