package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/shootings-etl/internal/domain"
)

// IncidentTransformer implements Transformer using domain enrichment
// functions with optional geocoding of missing points.
type IncidentTransformer struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewTransformer creates an IncidentTransformer. Pass a nil geocoder to
// disable geocoding enrichment.
func NewTransformer(geocoder domain.Geocoder, logger *slog.Logger) *IncidentTransformer {
	return &IncidentTransformer{
		geocoder: geocoder,
		logger:   logger,
	}
}

func (t *IncidentTransformer) Transform(ctx context.Context, raw domain.RawIncident) (domain.Incident, error) {
	inc, err := domain.EnrichIncident(raw)
	if err != nil {
		return domain.Incident{}, err
	}
	return domain.EnrichWithGeocoding(ctx, inc, t.geocoder, t.logger), nil
}
