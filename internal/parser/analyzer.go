// Package parser turns exported bot components into a typed agent model and a
// dialog dependency graph. Everything here is a pure computation over records
// that were already fetched; diagnostics go to the injected logger and
// recorder and never change the returned values.
package parser

import (
	"fmt"

	"go.uber.org/zap"
)

// TypeCodes holds the numeric component type codes whose meaning varies per
// environment. A zero Topic or Action code disables the matching rule, since
// records without a type code decode as zero.
type TypeCodes struct {
	Topic   int
	Action  int
	Channel []int
}

// DefaultTypeCodes returns the codes observed on the common platform release.
func DefaultTypeCodes() TypeCodes {
	return TypeCodes{Topic: 10}
}

// EdgeDedup selects how repeated references between two dialogs are reported.
type EdgeDedup string

const (
	// DedupByReference keeps one edge per textual reference occurrence, so
	// several patterns matching the same token produce a single edge while
	// genuinely repeated calls are all kept.
	DedupByReference EdgeDedup = "reference"
	// DedupByTriple keeps one edge per (from, to, kind).
	DedupByTriple EdgeDedup = "triple"
	// DedupNone keeps every pattern hit.
	DedupNone EdgeDedup = "none"
)

// ParseEdgeDedup maps a configuration value to an EdgeDedup.
func ParseEdgeDedup(s string) (EdgeDedup, error) {
	switch EdgeDedup(s) {
	case "", DedupByReference:
		return DedupByReference, nil
	case DedupByTriple:
		return DedupByTriple, nil
	case DedupNone:
		return DedupNone, nil
	}
	return "", fmt.Errorf("unknown edge dedup mode %q", s)
}

// Recorder receives counts from the pipeline. metrics.Registry implements it.
type Recorder interface {
	ComponentClassified(label string)
	EdgeEmitted(kind string)
	ReferenceUnresolved()
}

type nopRecorder struct{}

func (nopRecorder) ComponentClassified(string) {}
func (nopRecorder) EdgeEmitted(string)         {}
func (nopRecorder) ReferenceUnresolved()       {}

// Analyzer runs the classification, extraction and graph stages. It holds
// only configuration and is safe for concurrent use.
type Analyzer struct {
	classifier *Classifier
	dedup      EdgeDedup
	logger     *zap.Logger
	recorder   Recorder
}

type Option func(*Analyzer)

func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(a *Analyzer) {
		if r != nil {
			a.recorder = r
		}
	}
}

func WithTypeCodes(codes TypeCodes) Option {
	return func(a *Analyzer) {
		a.classifier = NewClassifier(codes)
	}
}

func WithEdgeDedup(mode EdgeDedup) Option {
	return func(a *Analyzer) {
		a.dedup = mode
	}
}

func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		classifier: NewClassifier(DefaultTypeCodes()),
		dedup:      DedupByReference,
		logger:     zap.NewNop(),
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Classifier returns the classifier the analyzer was configured with.
func (a *Analyzer) Classifier() *Classifier {
	return a.classifier
}
