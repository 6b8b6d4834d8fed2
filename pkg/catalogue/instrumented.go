package catalogue

import (
	"context"
	"time"

	"github.com/marmos91/dittotape/internal/logger"
	"github.com/marmos91/dittotape/internal/telemetry"
	"github.com/marmos91/dittotape/pkg/metrics"
	"github.com/marmos91/dittotape/pkg/rao"
)

// Instrumented wraps a Store with metrics, tracing and debug logging.
// A nil metrics value records nothing.
type Instrumented struct {
	Store
	metrics metrics.CatalogueMetrics
}

// Instrument wraps s. Wrapping an Instrumented store replaces its metrics.
func Instrument(s Store, m metrics.CatalogueMetrics) *Instrumented {
	if inner, ok := s.(*Instrumented); ok {
		s = inner.Store
	}
	return &Instrumented{Store: s, metrics: m}
}

// Unwrap returns the wrapped store.
func (s *Instrumented) Unwrap() Store {
	return s.Store
}

func (s *Instrumented) observe(op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(string(s.Type()), op, time.Since(start), err)
	}
}

// MediaGeometry traces the lookup and records it.
func (s *Instrumented) MediaGeometry(ctx context.Context, vid string) (*rao.MediaGeometry, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanCatalogueMedia)
	defer span.End()
	telemetry.SetAttributes(ctx, telemetry.VID(vid), telemetry.StoreType(string(s.Type())))

	start := time.Now()
	geo, err := s.Store.MediaGeometry(ctx, vid)
	s.observe("media_geometry", start, err)
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.DebugCtx(ctx, "Media geometry lookup failed", logger.VID(vid), logger.StoreType(string(s.Type())), logger.Err(err))
		return nil, err
	}

	logger.DebugCtx(ctx, "Media geometry resolved",
		logger.VID(vid),
		logger.KeyMediaType, geo.Name,
		logger.StoreType(string(s.Type())),
		logger.DurationMs(float64(time.Since(start).Microseconds())/1000),
	)
	return geo, nil
}

func (s *Instrumented) GetTape(ctx context.Context, vid string) (*Tape, error) {
	start := time.Now()
	t, err := s.Store.GetTape(ctx, vid)
	s.observe("get_tape", start, err)
	return t, err
}

func (s *Instrumented) GetMediaType(ctx context.Context, name string) (*MediaType, error) {
	start := time.Now()
	mt, err := s.Store.GetMediaType(ctx, name)
	s.observe("get_media_type", start, err)
	return mt, err
}

func (s *Instrumented) CreateTape(ctx context.Context, tape *Tape) error {
	start := time.Now()
	err := s.Store.CreateTape(ctx, tape)
	s.observe("create_tape", start, err)
	return err
}

func (s *Instrumented) CreateMediaType(ctx context.Context, mt *MediaType) error {
	start := time.Now()
	err := s.Store.CreateMediaType(ctx, mt)
	s.observe("create_media_type", start, err)
	return err
}

var _ Store = (*Instrumented)(nil)
