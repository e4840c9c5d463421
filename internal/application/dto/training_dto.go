package dto

// LabeledRow is a raw record with its ground-truth stroke label (0 or 1).
type LabeledRow struct {
	Raw   map[string]any
	Label int
}

// ClassMetrics are per-class precision, recall and F1 at the decision threshold.
type ClassMetrics struct {
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
	Support   int     `json:"support" yaml:"support"`
}

// ConfusionMatrix counts outcomes at the decision threshold.
type ConfusionMatrix struct {
	TrueNegatives  int `json:"true_negatives" yaml:"true_negatives"`
	FalsePositives int `json:"false_positives" yaml:"false_positives"`
	FalseNegatives int `json:"false_negatives" yaml:"false_negatives"`
	TruePositives  int `json:"true_positives" yaml:"true_positives"`
}

// EvaluationReport summarises scorer quality on a labelled dataset.
type EvaluationReport struct {
	Classes   map[string]ClassMetrics `json:"classes" yaml:"classes"`
	Method    string                  `json:"method" yaml:"method"`
	Confusion ConfusionMatrix         `json:"confusion_matrix" yaml:"confusion_matrix"`
	ROCAUC    float64                 `json:"roc_auc" yaml:"roc_auc"`
	Accuracy  float64                 `json:"accuracy" yaml:"accuracy"`
	Threshold float64                 `json:"threshold" yaml:"threshold"`
	Evaluated int                     `json:"evaluated" yaml:"evaluated"`
	Skipped   int                     `json:"skipped" yaml:"skipped"`
}

// FitReport describes a freshly fitted transform.
type FitReport struct {
	Path         string   `json:"path" yaml:"path"`
	FeatureNames []string `json:"feature_names" yaml:"feature_names"`
	Rows         int      `json:"rows" yaml:"rows"`
	Skipped      int      `json:"skipped" yaml:"skipped"`
	Width        int      `json:"width" yaml:"width"`
}
