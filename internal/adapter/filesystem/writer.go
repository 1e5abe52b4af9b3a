package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/shootings-etl/internal/domain"
	"github.com/couchcryptid/shootings-etl/internal/observability"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Writer exports year partitions as files in a local directory.
// It implements pipeline.Loader. Existing files are overwritten.
type Writer struct {
	dir     string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Writer rooted at dir. The directory is created on
// first write if it does not exist.
func NewWriter(dir string, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, metrics: metrics, logger: logger}
}

// FeaturesPath is the GeoJSON file for a year.
func FeaturesPath(dir string, year int) string {
	return filepath.Join(dir, fmt.Sprintf("shootings_%d.json", year))
}

// DailyPath is the daily-count file for a year.
func DailyPath(dir string, year int) string {
	return filepath.Join(dir, fmt.Sprintf("shootings_%d_daily.json", year))
}

// Load writes the feature collection and the daily-count series for one year.
func (w *Writer) Load(_ context.Context, p domain.YearPartition) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	features, err := json.Marshal(featureCollection(p.Incidents))
	if err != nil {
		return fmt.Errorf("encode features for %d: %w", p.Year, err)
	}
	if err := w.write(FeaturesPath(w.dir, p.Year), features); err != nil {
		return err
	}

	daily, err := json.Marshal(domain.DailyCounts(p.Incidents))
	if err != nil {
		return fmt.Errorf("encode daily counts for %d: %w", p.Year, err)
	}
	if err := w.write(DailyPath(w.dir, p.Year), daily); err != nil {
		return err
	}

	w.metrics.IncidentsExported.Add(float64(len(p.Incidents)))
	w.logger.Info("exported year", "year", p.Year, "incidents", len(p.Incidents))
	return nil
}

func (w *Writer) write(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.metrics.FilesWritten.Inc()
	return nil
}

// featureCollection projects incidents onto the exported GeoJSON schema.
func featureCollection(incidents []domain.Incident) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, inc := range incidents {
		fc.Append(feature(inc))
	}
	return fc
}

func feature(inc domain.Incident) *geojson.Feature {
	var geom orb.Geometry
	if inc.Point != nil {
		geom = orb.Point{inc.Point.Lon, inc.Point.Lat}
	}

	f := geojson.NewFeature(geom)
	f.Properties["dc_key"] = inc.DCKey
	f.Properties["race"] = inc.Race
	f.Properties["sex"] = inc.Sex
	f.Properties["age"] = nil
	if inc.HasAge() {
		f.Properties["age"] = inc.Age
	}
	f.Properties["latino"] = inc.Latino
	f.Properties["fatal"] = inc.Fatal
	f.Properties["date"] = inc.Date.Format(domain.DateLayout)
	f.Properties["age_group"] = string(inc.AgeGroup)
	return f
}
