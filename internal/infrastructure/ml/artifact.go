package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/bibbank/fraudscore/internal/domain/feature"
	"github.com/bibbank/fraudscore/internal/domain/port"
)

// Model kinds understood in an artifact file.
const (
	KindLogisticRegression = "logistic_regression"
	KindLinearSVM          = "linear_svm"
	KindStumpEnsemble      = "stump_ensemble"
)

var errNoWeights = errors.New("artifact has no coefficients")

// Artifact is the serialized form of a trained classifier.
type Artifact struct {
	Kind         string      `json:"kind"`
	Coef         [][]float64 `json:"coef,omitempty"`
	Intercept    []float64   `json:"intercept,omitempty"`
	FeatureMeans []float64   `json:"feature_means,omitempty"`
	Stumps       []Stump     `json:"stumps,omitempty"`
	BaseScore    float64     `json:"base_score,omitempty"`
	LearningRate float64     `json:"learning_rate,omitempty"`
	NFeatures    int         `json:"n_features,omitempty"`
}

// ReadArtifact loads and builds the classifier stored at path.
func ReadArtifact(path string) (port.Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}
	c, err := a.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build %q model: %w", a.Kind, err)
	}
	return c, nil
}

// Build turns the artifact into a ready classifier.
func (a Artifact) Build() (port.Classifier, error) {
	switch a.Kind {
	case KindLogisticRegression:
		l, err := a.linear()
		if err != nil {
			return nil, err
		}
		if len(a.FeatureMeans) > 0 && len(a.FeatureMeans) != len(l.coef[0]) {
			return nil, fmt.Errorf("feature_means has %d entries, coef has %d", len(a.FeatureMeans), len(l.coef[0]))
		}
		return &LogisticRegression{linear: l, means: a.FeatureMeans}, nil

	case KindLinearSVM:
		l, err := a.linear()
		if err != nil {
			return nil, err
		}
		return &LinearSVM{linear: l}, nil

	case KindStumpEnsemble:
		width := a.NFeatures
		if width == 0 {
			width = len(feature.DefaultOrder)
		}
		return newStumpEnsemble(a.Stumps, a.BaseScore, a.LearningRate, width)

	default:
		return nil, fmt.Errorf("unknown model kind %q", a.Kind)
	}
}

func (a Artifact) linear() (linear, error) {
	if len(a.Coef) == 0 || len(a.Coef[0]) == 0 {
		return linear{}, errNoWeights
	}
	return linear{coef: a.Coef, intercept: a.Intercept}, nil
}

// ReadMetadata loads encoder metadata. A missing path yields empty metadata.
func ReadMetadata(path string) (feature.Metadata, error) {
	if path == "" {
		return feature.Metadata{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return feature.Metadata{}, fmt.Errorf("failed to read model metadata: %w", err)
	}
	var meta feature.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return feature.Metadata{}, fmt.Errorf("failed to decode model metadata: %w", err)
	}
	return meta, nil
}
