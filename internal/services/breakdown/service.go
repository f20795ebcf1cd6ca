package breakdown

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/fundmix/internal/common"
	"github.com/bobmcallan/fundmix/internal/interfaces"
	"github.com/bobmcallan/fundmix/internal/models"
)

// Compile-time interface check
var _ interfaces.BreakdownService = (*Service)(nil)

// ErrSuperseded is returned by Ingest when a later ingestion was started
// before this one could publish. The result is discarded.
var ErrSuperseded = errors.New("ingestion superseded by a later upload")

// Ingestion results reported to metrics.
const (
	ResultPublished  = "published"
	ResultFormat     = "format_error"
	ResultSuperseded = "superseded"
)

// snapshot is the published state. It is replaced, never modified.
type snapshot struct {
	index   *models.PortfolioIndex
	summary *models.IngestionSummary
}

// Service implements BreakdownService
type Service struct {
	resolver *ColorResolver
	metrics  interfaces.MetricsRecorder
	logger   *common.Logger
	now      func() time.Time

	generation atomic.Uint64

	mu       sync.RWMutex
	current  snapshot
	selector Selector

	// beforePublish runs after a result is built and before the generation check.
	beforePublish func()
}

// NewService creates a new breakdown service with an empty index.
// A nil metrics recorder is allowed.
func NewService(resolver *ColorResolver, metrics interfaces.MetricsRecorder, logger *common.Logger) *Service {
	index := models.EmptyIndex()
	return &Service{
		resolver: resolver,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		current:  snapshot{index: index},
		selector: NewSelector(index),
	}
}

// Ingest parses and indexes CSV from r and publishes the result unless
// another ingestion started after this one. On any failure the previous
// index stays current.
func (s *Service) Ingest(ctx context.Context, source string, r io.Reader) (*models.IngestionSummary, error) {
	gen := s.generation.Add(1)
	start := s.now()

	log := s.logger.With().Str("source", source).Uint64("generation", gen).Logger()

	rows, err := ParseRows(r)
	if err != nil {
		log.Warn().Err(err).Msg("Ingestion rejected")
		s.reportFailure(ResultFormat, start)
		return nil, err
	}

	index, stats := BuildIndex(rows)
	summary := &models.IngestionSummary{
		ID:             uuid.New().String(),
		Source:         source,
		Rows:           stats.Rows,
		Entries:        stats.Entries,
		DroppedEmpty:   stats.DroppedEmpty,
		DroppedInvalid: stats.DroppedInvalid,
		Funds:          index.Funds(),
		IngestedAt:     s.now(),
	}
	summary.Duration = summary.IngestedAt.Sub(start)

	if s.beforePublish != nil {
		s.beforePublish()
	}

	s.mu.Lock()
	if gen != s.generation.Load() {
		s.mu.Unlock()
		log.Info().Msg("Ingestion superseded, result discarded")
		s.reportFailure(ResultSuperseded, start)
		return nil, ErrSuperseded
	}
	s.current = snapshot{index: index, summary: summary}
	s.selector = NewSelector(index)
	// Recorded under the lock so gauges follow publish order.
	if s.metrics != nil {
		s.metrics.IngestionCompleted(summary)
	}
	s.mu.Unlock()

	log.Info().
		Str("ingestion_id", summary.ID).
		Int("rows", summary.Rows).
		Int("entries", summary.Entries).
		Int("dropped_empty", summary.DroppedEmpty).
		Int("dropped_invalid", summary.DroppedInvalid).
		Int("funds", len(summary.Funds)).
		Dur("duration", summary.Duration).
		Msg("Ingestion published")

	copied := *summary
	copied.Funds = append([]string{}, summary.Funds...)
	return &copied, nil
}

func (s *Service) reportFailure(result string, start time.Time) {
	if s.metrics != nil {
		s.metrics.IngestionFailed(result, s.now().Sub(start))
	}
}

func (s *Service) state() (snapshot, Selector) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.selector
}

// ListFunds returns funds of the current index in first-appearance order.
func (s *Service) ListFunds(ctx context.Context) []string {
	_, sel := s.state()
	return sel.AvailableFunds()
}

// SelectFund selects fund. Unknown funds are accepted.
func (s *Service) SelectFund(ctx context.Context, fund string) {
	s.mu.Lock()
	s.selector = s.selector.Select(fund)
	known := s.selector.Known()
	s.mu.Unlock()

	if !known {
		s.logger.Debug().Str("fund", fund).Msg("Selected fund not in current index")
	}
}

// SelectedFund returns the selected fund, or "".
func (s *Service) SelectedFund(ctx context.Context) string {
	_, sel := s.state()
	return sel.Selected()
}

// GetBreakdowns returns chart type -> sorted, colored entries for fund.
func (s *Service) GetBreakdowns(ctx context.Context, fund string) map[string][]models.ChartEntry {
	snap, _ := s.state()
	return BreakdownMap(snap.index, fund, s.resolver)
}

// GetCharts returns the charts of fund in chart type order.
func (s *Service) GetCharts(ctx context.Context, fund string) []models.Chart {
	snap, _ := s.state()
	return Charts(snap.index, fund, s.resolver)
}

// GetSelectedCharts returns the selected fund and its charts, both read
// from the same published index.
func (s *Service) GetSelectedCharts(ctx context.Context) (string, []models.Chart) {
	snap, sel := s.state()
	fund := sel.Selected()
	return fund, Charts(snap.index, fund, s.resolver)
}

// LastIngestion returns the summary of the published index, or nil before the first upload.
func (s *Service) LastIngestion(ctx context.Context) *models.IngestionSummary {
	snap, _ := s.state()
	if snap.summary == nil {
		return nil
	}
	copied := *snap.summary
	copied.Funds = append([]string{}, snap.summary.Funds...)
	return &copied
}
