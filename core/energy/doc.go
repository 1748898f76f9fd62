// Package energy estimates trip energy. A Predictor produces the base
// estimate, either from a trained linear model or from a physics based
// formula, and Adjust scales it by weather, elevation and traffic
// multipliers. GenerateDataset and Train provide the offline tooling that
// produces the model file.
package energy
