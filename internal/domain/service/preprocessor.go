package service

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/strokeguard/strokeguard/internal/domain/model"
)

// FillValue replaces missing categorical values before encoding.
const FillValue = "missing"

// Column names as fitted by the training pipeline. Residence_type keeps the
// dataset's header spelling.
const (
	ColumnAge             = "age"
	ColumnAvgGlucoseLevel = "avg_glucose_level"
	ColumnBMI             = "bmi"

	ColumnGender        = "gender"
	ColumnHypertension  = "hypertension"
	ColumnHeartDisease  = "heart_disease"
	ColumnEverMarried   = "ever_married"
	ColumnWorkType      = "work_type"
	ColumnResidenceType = "Residence_type"
	ColumnSmokingStatus = "smoking_status"
)

var (
	numericColumnNames     = []string{ColumnAge, ColumnAvgGlucoseLevel, ColumnBMI}
	categoricalColumnNames = []string{
		ColumnGender, ColumnHypertension, ColumnHeartDisease, ColumnEverMarried,
		ColumnWorkType, ColumnResidenceType, ColumnSmokingStatus,
	}
)

// ErrTransformCorrupt marks a transform artifact that parsed but is not usable.
var ErrTransformCorrupt = errors.New("transform artifact corrupt")

// TransformError reports that the preprocessing transform could not be loaded.
type TransformError struct {
	Path string
	Err  error
}

func (e *TransformError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("transform unavailable: %v", e.Err)
	}
	return fmt.Sprintf("transform unavailable (%s): %v", e.Path, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// NumericColumn holds the fitted imputation and scaling statistics for one
// numeric column.
type NumericColumn struct {
	Name   string
	Median float64
	Mean   float64
	Scale  float64
}

// CategoricalColumn holds the fitted, ordered category list for one column.
type CategoricalColumn struct {
	Name       string
	Categories []string
}

// Preprocessor maps a FeatureRecord to the dense vector the classifier was
// trained on: scaled numeric columns first, then one-hot blocks in fitted
// order. It is read-only after construction and safe for concurrent use.
type Preprocessor struct {
	numeric     []NumericColumn
	categorical []CategoricalColumn
	width       int
}

// NewPreprocessor builds a Preprocessor from fitted columns. The inputs are
// copied. The result is validated.
func NewPreprocessor(numeric []NumericColumn, categorical []CategoricalColumn) (*Preprocessor, error) {
	p := &Preprocessor{
		numeric:     slices.Clone(numeric),
		categorical: make([]CategoricalColumn, len(categorical)),
	}
	for i, c := range categorical {
		p.categorical[i] = CategoricalColumn{Name: c.Name, Categories: slices.Clone(c.Categories)}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.width = len(p.numeric)
	for _, c := range p.categorical {
		p.width += len(c.Categories)
	}
	return p, nil
}

// Validate checks structural integrity: every expected column exactly once,
// finite statistics with a positive scale, and non-empty, duplicate-free
// category lists.
func (p *Preprocessor) Validate() error {
	if err := checkNames("numeric", columnNames(p.numeric, func(c NumericColumn) string { return c.Name }), numericColumnNames); err != nil {
		return err
	}
	if err := checkNames("categorical", columnNames(p.categorical, func(c CategoricalColumn) string { return c.Name }), categoricalColumnNames); err != nil {
		return err
	}

	for _, c := range p.numeric {
		for _, v := range []float64{c.Median, c.Mean, c.Scale} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: column %s has non-finite statistics", ErrTransformCorrupt, c.Name)
			}
		}
		if c.Scale <= 0 {
			return fmt.Errorf("%w: column %s has non-positive scale %v", ErrTransformCorrupt, c.Name, c.Scale)
		}
	}

	for _, c := range p.categorical {
		if len(c.Categories) == 0 {
			return fmt.Errorf("%w: column %s has no categories", ErrTransformCorrupt, c.Name)
		}
		seen := make(map[string]struct{}, len(c.Categories))
		for _, cat := range c.Categories {
			if _, dup := seen[cat]; dup {
				return fmt.Errorf("%w: column %s repeats category %q", ErrTransformCorrupt, c.Name, cat)
			}
			seen[cat] = struct{}{}
		}
	}
	return nil
}

func columnNames[T any](cols []T, name func(T) string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = name(c)
	}
	return out
}

func checkNames(kind string, got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: expected %d %s columns, got %d", ErrTransformCorrupt, len(want), kind, len(got))
	}
	seen := make(map[string]struct{}, len(got))
	for _, n := range got {
		if !slices.Contains(want, n) {
			return fmt.Errorf("%w: unknown %s column %q", ErrTransformCorrupt, kind, n)
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: duplicate %s column %q", ErrTransformCorrupt, kind, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// Width is the length of every vector Transform returns.
func (p *Preprocessor) Width() int {
	return p.width
}

// NumericColumns returns a copy of the fitted numeric columns.
func (p *Preprocessor) NumericColumns() []NumericColumn {
	return slices.Clone(p.numeric)
}

// CategoricalColumns returns a copy of the fitted categorical columns.
func (p *Preprocessor) CategoricalColumns() []CategoricalColumn {
	out := make([]CategoricalColumn, len(p.categorical))
	for i, c := range p.categorical {
		out[i] = CategoricalColumn{Name: c.Name, Categories: slices.Clone(c.Categories)}
	}
	return out
}

// FeatureNames labels each output position, e.g. "age" or "gender_Female".
func (p *Preprocessor) FeatureNames() []string {
	names := make([]string, 0, p.width)
	for _, c := range p.numeric {
		names = append(names, c.Name)
	}
	for _, c := range p.categorical {
		for _, cat := range c.Categories {
			names = append(names, c.Name+"_"+cat)
		}
	}
	return names
}

// Transform encodes rec. Missing numeric values take the fitted median.
// Categories not seen during fitting produce an all-zero block.
func (p *Preprocessor) Transform(rec model.FeatureRecord) []float64 {
	out := make([]float64, 0, p.width)
	for _, c := range p.numeric {
		v, ok := numericValue(rec, c.Name)
		if !ok {
			v = c.Median
		}
		out = append(out, (v-c.Mean)/c.Scale)
	}
	for _, c := range p.categorical {
		v := categoricalValue(rec, c.Name)
		if v == "" {
			v = FillValue
		}
		for _, cat := range c.Categories {
			if cat == v {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	}
	return out
}

func numericValue(rec model.FeatureRecord, column string) (float64, bool) {
	switch column {
	case ColumnAge:
		return rec.Age, true
	case ColumnAvgGlucoseLevel:
		return rec.AvgGlucoseLevel, true
	case ColumnBMI:
		return rec.BMIValue()
	default:
		return 0, false
	}
}

func categoricalValue(rec model.FeatureRecord, column string) string {
	switch column {
	case ColumnGender:
		return rec.Gender
	case ColumnHypertension:
		return strconv.Itoa(rec.Hypertension)
	case ColumnHeartDisease:
		return strconv.Itoa(rec.HeartDisease)
	case ColumnEverMarried:
		return rec.EverMarried
	case ColumnWorkType:
		return rec.WorkType
	case ColumnResidenceType:
		return rec.ResidenceType
	case ColumnSmokingStatus:
		return rec.SmokingStatus
	default:
		return ""
	}
}

// FitPreprocessor fits a Preprocessor from training records: medians over
// observed values, then mean and population standard deviation over the
// imputed column, and sorted category lists.
func FitPreprocessor(records []model.FeatureRecord) (*Preprocessor, error) {
	if len(records) == 0 {
		return nil, errors.New("fit preprocessor: no records")
	}

	numeric := make([]NumericColumn, 0, len(numericColumnNames))
	for _, name := range numericColumnNames {
		observed := make([]float64, 0, len(records))
		for _, r := range records {
			if v, ok := numericValue(r, name); ok {
				observed = append(observed, v)
			}
		}
		if len(observed) == 0 {
			return nil, fmt.Errorf("fit preprocessor: column %s has no observed values", name)
		}
		med := median(observed)

		imputed := make([]float64, len(records))
		for i, r := range records {
			v, ok := numericValue(r, name)
			if !ok {
				v = med
			}
			imputed[i] = v
		}
		mean, std := meanStd(imputed)
		if std == 0 {
			std = 1
		}
		numeric = append(numeric, NumericColumn{Name: name, Median: med, Mean: mean, Scale: std})
	}

	categorical := make([]CategoricalColumn, 0, len(categoricalColumnNames))
	for _, name := range categoricalColumnNames {
		set := make(map[string]struct{})
		for _, r := range records {
			v := categoricalValue(r, name)
			if v == "" {
				v = FillValue
			}
			set[v] = struct{}{}
		}
		cats := make([]string, 0, len(set))
		for v := range set {
			cats = append(cats, v)
		}
		slices.Sort(cats)
		categorical = append(categorical, CategoricalColumn{Name: name, Categories: cats})
	}

	return NewPreprocessor(numeric, categorical)
}

func median(values []float64) float64 {
	s := slices.Clone(values)
	slices.Sort(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

func meanStd(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(values)))
}
