package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/shootings-etl/internal/domain"
	"github.com/couchcryptid/shootings-etl/internal/observability"
)

// Extractor reads every raw row from the source.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.RawIncident, error)
}

// Transformer converts a raw row into an enriched incident.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawIncident) (domain.Incident, error)
}

// Loader writes one year partition to a destination.
type Loader interface {
	Load(ctx context.Context, p domain.YearPartition) error
}

// Summary describes a completed run.
type Summary struct {
	Fetched int
	Years   []int
}

// Pipeline orchestrates a single extract-transform-partition-load pass.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loaders     []Loader
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline. Loaders run in the given order for every year.
func New(e Extractor, t Transformer, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loaders:     loaders,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run executes the pass once. The first error from any stage stops the run;
// files already written for earlier years are left in place.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := domain.Now()
	p.logger.Info("pipeline started", "loaders", len(p.loaders))

	raws, err := p.extractor.Extract(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("extract: %w", err)
	}
	p.metrics.IncidentsFetched.Add(float64(len(raws)))

	incidents, err := p.transformAll(ctx, raws)
	if err != nil {
		return Summary{}, err
	}

	partitions := domain.PartitionByYear(domain.SortIncidents(incidents))
	summary := Summary{Fetched: len(raws), Years: make([]int, 0, len(partitions))}

	for _, part := range partitions {
		for _, l := range p.loaders {
			if err := l.Load(ctx, part); err != nil {
				return summary, fmt.Errorf("load %d: %w", part.Year, err)
			}
		}
		p.metrics.YearsExported.Inc()
		summary.Years = append(summary.Years, part.Year)
	}

	elapsed := domain.Since(start)
	p.metrics.RunDuration.Set(elapsed.Seconds())
	p.metrics.LastSuccessSeconds.Set(float64(domain.Now().Unix()))
	p.logger.Info("pipeline finished",
		"incidents", summary.Fetched,
		"years", len(summary.Years),
		"duration", elapsed,
	)
	return summary, nil
}

func (p *Pipeline) transformAll(ctx context.Context, raws []domain.RawIncident) ([]domain.Incident, error) {
	incidents := make([]domain.Incident, 0, len(raws))
	for i, raw := range raws {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inc, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.metrics.TransformErrors.Inc()
			p.logger.Error("transform failed",
				"error", err,
				"dc_key", raw.DCKey,
				"objectid", raw.ObjectID,
			)
			return nil, fmt.Errorf("transform: %w", err)
		}
		incidents = append(incidents, inc.WithSequence(i))
	}
	return incidents, nil
}
