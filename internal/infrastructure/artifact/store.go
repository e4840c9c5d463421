package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/strokeguard/strokeguard/internal/domain/port"
	"github.com/strokeguard/strokeguard/internal/domain/service"
)

// DefaultBatchNormEpsilon applies when a batch norm layer omits epsilon.
const DefaultBatchNormEpsilon = 1e-3

// FileStore implements port.ArtifactStore on the local filesystem.
type FileStore struct{}

// NewFileStore creates a new filesystem artifact store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

var _ port.ArtifactStore = (*FileStore)(nil)

// LoadPreprocessor reads a transform document. Every failure is returned as
// a *service.TransformError; structural problems also match
// service.ErrTransformCorrupt.
func (s *FileStore) LoadPreprocessor(ctx context.Context, path string) (*service.Preprocessor, port.ArtifactInfo, error) {
	fail := func(err error) (*service.Preprocessor, port.ArtifactInfo, error) {
		return nil, port.ArtifactInfo{}, &service.TransformError{Path: path, Err: err}
	}

	data, info, err := read(ctx, path)
	if err != nil {
		return fail(err)
	}

	var doc PreprocessorDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fail(fmt.Errorf("%w: %w", service.ErrTransformCorrupt, err))
	}

	prep, err := DecodePreprocessor(doc)
	if err != nil {
		return fail(err)
	}
	return prep, info, nil
}

// DecodePreprocessor converts a parsed document into a validated Preprocessor.
func DecodePreprocessor(doc PreprocessorDocument) (*service.Preprocessor, error) {
	if doc.Format != PreprocessorFormat {
		return nil, fmt.Errorf("%w: unsupported format %q", service.ErrTransformCorrupt, doc.Format)
	}
	if doc.FillValue != "" && doc.FillValue != service.FillValue {
		return nil, fmt.Errorf("%w: unsupported fill value %q", service.ErrTransformCorrupt, doc.FillValue)
	}

	numeric := make([]service.NumericColumn, len(doc.Numeric))
	for i, n := range doc.Numeric {
		numeric[i] = service.NumericColumn{Name: n.Name, Median: n.Median, Mean: n.Mean, Scale: n.Scale}
	}
	categorical := make([]service.CategoricalColumn, len(doc.Categorical))
	for i, c := range doc.Categorical {
		categorical[i] = service.CategoricalColumn{Name: c.Name, Categories: c.Categories}
	}
	return service.NewPreprocessor(numeric, categorical)
}

// EncodePreprocessor converts a Preprocessor into its document form.
func EncodePreprocessor(p *service.Preprocessor) PreprocessorDocument {
	doc := PreprocessorDocument{Format: PreprocessorFormat, FillValue: service.FillValue}
	for _, n := range p.NumericColumns() {
		doc.Numeric = append(doc.Numeric, NumericDocument{Name: n.Name, Median: n.Median, Mean: n.Mean, Scale: n.Scale})
	}
	for _, c := range p.CategoricalColumns() {
		doc.Categorical = append(doc.Categorical, CategoryDocument{Name: c.Name, Categories: c.Categories})
	}
	return doc
}

// SavePreprocessor writes p to path as indented JSON, creating parent
// directories. The file is replaced atomically.
func (s *FileStore) SavePreprocessor(ctx context.Context, path string, p *service.Preprocessor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(EncodePreprocessor(p), "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: encode preprocessor: %w", err)
	}
	return writeAtomic(path, append(data, '\n'))
}

// LoadClassifier reads a network document and builds the classifier.
func (s *FileStore) LoadClassifier(ctx context.Context, path string) (service.Classifier, port.ArtifactInfo, error) {
	data, info, err := read(ctx, path)
	if err != nil {
		return nil, port.ArtifactInfo{}, err
	}

	var doc ClassifierDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, port.ArtifactInfo{}, fmt.Errorf("artifact: decode classifier %s: %w", path, err)
	}

	c, err := DecodeClassifier(doc)
	if err != nil {
		return nil, port.ArtifactInfo{}, fmt.Errorf("artifact: classifier %s: %w", path, err)
	}
	return c, info, nil
}

// DecodeClassifier converts a parsed document into a NeuralClassifier.
func DecodeClassifier(doc ClassifierDocument) (*service.NeuralClassifier, error) {
	if doc.Format != ClassifierFormat {
		return nil, fmt.Errorf("%w: unsupported format %q", service.ErrInvalidArchitecture, doc.Format)
	}

	layers := make([]service.Layer, 0, len(doc.Layers))
	for i, l := range doc.Layers {
		switch l.Type {
		case LayerDense:
			layers = append(layers, service.DenseLayer{
				Activation: service.Activation(l.Activation),
				Weights:    l.Weights,
				Bias:       l.Bias,
			})
		case LayerBatchNorm:
			eps := DefaultBatchNormEpsilon
			if l.Epsilon != nil {
				eps = *l.Epsilon
			}
			layers = append(layers, service.BatchNormLayer{
				Gamma:          l.Gamma,
				Beta:           l.Beta,
				MovingMean:     l.MovingMean,
				MovingVariance: l.MovingVariance,
				Epsilon:        eps,
			})
		case LayerDropout:
			layers = append(layers, service.DropoutLayer{Rate: l.Rate})
		default:
			return nil, fmt.Errorf("%w: layer %d has unsupported type %q", service.ErrInvalidArchitecture, i, l.Type)
		}
	}
	return service.NewNeuralClassifier(doc.InputDim, layers)
}

func read(ctx context.Context, path string) ([]byte, port.ArtifactInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, port.ArtifactInfo{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, port.ArtifactInfo{}, err
	}
	sum := sha256.Sum256(data)
	return data, port.ArtifactInfo{Path: path, Checksum: hex.EncodeToString(sum[:])}, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("artifact: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("artifact: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("artifact: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("artifact: close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("artifact: rename to %s: %w", path, err)
	}
	return nil
}
