package ml

import (
	"log/slog"
	"time"

	"github.com/bibbank/fraudscore/internal/domain/feature"
	"github.com/bibbank/fraudscore/internal/domain/port"
	"github.com/bibbank/fraudscore/internal/domain/service"
)

// Options locate the model to serve.
type Options struct {
	ModelPath    string
	MetadataPath string
	RemoteAddr   string
	RemoteCA     string
	Timeout      time.Duration
}

// Loaded is the scorer chosen at startup.
type Loaded struct {
	Scorer       service.Scorer
	Source       string
	Capabilities service.Capability
	closer       func() error
}

// Close releases the remote connection, if any.
func (l Loaded) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer()
}

// Load picks the scorer once: a remote classifier when an address is set,
// then a local artifact, and the rule scorer when neither is available.
// Load never fails; problems are logged and the rule scorer is returned.
func Load(opts Options, logger *slog.Logger) Loaded {
	placeholder := Loaded{Scorer: service.NewRuleScorer(), Source: service.SourceRules, Capabilities: service.OpaqueOnly}

	if opts.RemoteAddr == "" && opts.ModelPath == "" {
		logger.Info("no model configured, using rule scoring")
		return placeholder
	}

	meta, err := ReadMetadata(opts.MetadataPath)
	if err != nil {
		logger.Warn("ignoring model metadata", "path", opts.MetadataPath, "error", err)
		meta = feature.Metadata{}
	}

	var (
		classifier port.Classifier
		closer     func() error
	)
	if opts.RemoteAddr != "" {
		remote, err := DialRemote(opts.RemoteAddr, opts.RemoteCA, opts.Timeout, logger)
		if err != nil {
			logger.Warn("remote model unavailable, using rule scoring", "addr", opts.RemoteAddr, "error", err)
			return placeholder
		}
		classifier, closer = remote, remote.Close
	} else {
		classifier, err = ReadArtifact(opts.ModelPath)
		if err != nil {
			logger.Warn("model failed to load, using rule scoring", "path", opts.ModelPath, "error", err)
			return placeholder
		}
	}

	scorer := service.NewModelScorer(classifier, meta, logger)
	logger.Info("model loaded",
		"capabilities", scorer.Capabilities().String(),
		"one_hot", meta.HasOneHot(),
		"features", len(meta.Order()),
	)
	return Loaded{
		Scorer:       scorer,
		Source:       service.SourceTrainedModel,
		Capabilities: scorer.Capabilities(),
		closer:       closer,
	}
}
