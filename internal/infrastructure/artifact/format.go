package artifact

// Document format identifiers.
const (
	PreprocessorFormat = "strokeguard.preprocessor/v1"
	ClassifierFormat   = "strokeguard.mlp/v1"
)

// Layer type identifiers in classifier documents.
const (
	LayerDense     = "dense"
	LayerBatchNorm = "batch_norm"
	LayerDropout   = "dropout"
)

// PreprocessorDocument is the on-disk form of a fitted transform.
type PreprocessorDocument struct {
	Format      string             `json:"format"`
	FillValue   string             `json:"fill_value,omitempty"`
	Numeric     []NumericDocument  `json:"numeric"`
	Categorical []CategoryDocument `json:"categorical"`
}

// NumericDocument holds one numeric column's statistics.
type NumericDocument struct {
	Name   string  `json:"name"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	Scale  float64 `json:"scale"`
}

// CategoryDocument holds one categorical column's ordered categories.
type CategoryDocument struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

// ClassifierDocument is the on-disk form of the trained network. Dense
// weights are indexed [input][unit].
type ClassifierDocument struct {
	Format   string          `json:"format"`
	Layers   []LayerDocument `json:"layers"`
	InputDim int             `json:"input_dim"`
}

// LayerDocument is a tagged union over the supported layer types. Only the
// fields relevant to Type are read.
type LayerDocument struct {
	Type       string      `json:"type"`
	Activation string      `json:"activation,omitempty"`
	Weights    [][]float64 `json:"weights,omitempty"`
	Bias       []float64   `json:"bias,omitempty"`

	Gamma          []float64 `json:"gamma,omitempty"`
	Beta           []float64 `json:"beta,omitempty"`
	MovingMean     []float64 `json:"moving_mean,omitempty"`
	MovingVariance []float64 `json:"moving_variance,omitempty"`
	Epsilon        *float64  `json:"epsilon,omitempty"`

	Rate float64 `json:"rate,omitempty"`
}
