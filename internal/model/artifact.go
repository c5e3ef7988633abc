package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wonny/hivdash/internal/contracts"
)

// KindLinearRegression is the only supported artifact kind
const KindLinearRegression = "linear_regression"

// Artifact is the on-disk form of a trained regression model
//
//	kind: linear_regression
//	features: [Laki-Laki, Perempuan]
//	coefficients: [0.98, 1.02]
//	intercept: 0.1
type Artifact struct {
	Kind         string    `yaml:"kind"`
	Name         string    `yaml:"name,omitempty"`
	Version      string    `yaml:"version,omitempty"`
	TrainedAt    time.Time `yaml:"trained_at,omitempty"`
	Features     []string  `yaml:"features"`
	Coefficients []float64 `yaml:"coefficients"`
	Intercept    float64   `yaml:"intercept"`
}

// LoadArtifact reads and validates a model artifact.
// Every failure wraps ErrModelLoad; a missing or unreadable file also wraps ErrIO.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact %s: %v: %w: %w", path, err, contracts.ErrIO, contracts.ErrModelLoad)
	}
	return DecodeArtifact(bytes.NewReader(data))
}

// DecodeArtifact decodes an artifact strictly: unknown fields fail
func DecodeArtifact(r io.Reader) (*Artifact, error) {
	var a Artifact

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty model artifact: %w", contracts.ErrModelLoad)
		}
		return nil, fmt.Errorf("decode model artifact: %v: %w", err, contracts.ErrModelLoad)
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks the artifact describes a two-feature linear model
func (a *Artifact) Validate() error {
	if a.Kind != KindLinearRegression {
		return fmt.Errorf("unsupported model kind %q: %w", a.Kind, contracts.ErrModelLoad)
	}
	if len(a.Features) != 2 {
		return fmt.Errorf("model expects %d features, want 2: %w", len(a.Features), contracts.ErrModelLoad)
	}
	if a.Features[0] == "" || a.Features[1] == "" || a.Features[0] == a.Features[1] {
		return fmt.Errorf("model feature names must be distinct and non-empty: %w", contracts.ErrModelLoad)
	}
	// Features name the pivot columns, so they must be the gender categories
	canon := contracts.CanonicalGenders()
	for _, f := range a.Features {
		if f != canon[0] && f != canon[1] {
			return fmt.Errorf("model feature %q is not one of %v: %w", f, canon, contracts.ErrModelLoad)
		}
	}
	if len(a.Coefficients) != len(a.Features) {
		return fmt.Errorf("model has %d coefficients for %d features: %w",
			len(a.Coefficients), len(a.Features), contracts.ErrModelLoad)
	}
	for _, c := range append([]float64{a.Intercept}, a.Coefficients...) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("model parameters must be finite: %w", contracts.ErrModelLoad)
		}
	}
	return nil
}

// FeatureOrder returns the trained column order
func (a *Artifact) FeatureOrder() [2]string {
	return [2]string{a.Features[0], a.Features[1]}
}

// DisplayName returns name@version, falling back to the kind
func (a *Artifact) DisplayName() string {
	name := a.Name
	if name == "" {
		name = a.Kind
	}
	if a.Version != "" {
		return name + "@" + a.Version
	}
	return name
}
