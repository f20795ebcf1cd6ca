package breakdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fundmix/internal/common"
	"github.com/bobmcallan/fundmix/internal/models"
)

// recordingMetrics implements interfaces.MetricsRecorder for testing.
type recordingMetrics struct {
	mu        sync.Mutex
	completed []*models.IngestionSummary
	failed    []string
}

func (m *recordingMetrics) IngestionCompleted(summary *models.IngestionSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, summary)
}

func (m *recordingMetrics) IngestionFailed(result string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, result)
}

func newTestService(t *testing.T) (*Service, *recordingMetrics) {
	t.Helper()
	metrics := &recordingMetrics{}
	svc := NewService(NewColorResolver(DefaultPolicies()), metrics, common.NewSilentLogger())
	return svc, metrics
}

const endToEndCSV = `Fund,ChartType,Category,Value
FundA,Asset classes,Bonds,40
FundA,Asset classes,Equity,60
FundB,Regions,US,70
FundB,Regions,Europe,30
`

func TestService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	svc, metrics := newTestService(t)

	f, err := os.Open("testdata/funds.csv")
	require.NoError(t, err)
	defer f.Close()

	summary, err := svc.Ingest(ctx, "funds.csv", f)
	require.NoError(t, err)
	assert.Equal(t, "funds.csv", summary.Source)
	assert.Equal(t, 4, summary.Rows)
	assert.Equal(t, 4, summary.Entries)
	assert.NotEmpty(t, summary.ID)

	assert.Equal(t, []string{"FundA", "FundB"}, svc.ListFunds(ctx))
	assert.Equal(t, "FundA", svc.SelectedFund(ctx))

	breakdowns := svc.GetBreakdowns(ctx, "FundA")
	require.Contains(t, breakdowns, "Asset classes")
	assets := breakdowns["Asset classes"]
	require.Len(t, assets, 2)
	assert.Equal(t, "Equity", assets[0].Category)
	assert.Equal(t, 60.0, assets[0].Value)
	assert.Equal(t, "#de6106", assets[0].Color)
	assert.Equal(t, "Bonds", assets[1].Category)
	assert.Equal(t, 40.0, assets[1].Value)
	assert.Equal(t, "#007BC4", assets[1].Color)

	regions := svc.GetBreakdowns(ctx, "FundB")["Regions"]
	require.Len(t, regions, 2)
	assert.Equal(t, "#E196AA", regions[0].Color)
	assert.Equal(t, "#678A81", regions[1].Color)

	require.Len(t, metrics.completed, 1)
	assert.Empty(t, metrics.failed)
}

func TestService_EmptyBeforeIngestion(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	assert.Empty(t, svc.ListFunds(ctx))
	assert.Equal(t, "", svc.SelectedFund(ctx))
	assert.Empty(t, svc.GetBreakdowns(ctx, "FundA"))
	assert.Empty(t, svc.GetCharts(ctx, "FundA"))
	assert.Nil(t, svc.LastIngestion(ctx))
}

func TestService_SelectFund(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, err := svc.Ingest(ctx, "upload", strings.NewReader(endToEndCSV))
	require.NoError(t, err)

	svc.SelectFund(ctx, "FundB")
	assert.Equal(t, "FundB", svc.SelectedFund(ctx))

	svc.SelectFund(ctx, "Unknown")
	assert.Equal(t, "Unknown", svc.SelectedFund(ctx))
	assert.Empty(t, svc.GetBreakdowns(ctx, svc.SelectedFund(ctx)))

	svc.SelectFund(ctx, "FundA")
	assert.Len(t, svc.GetBreakdowns(ctx, svc.SelectedFund(ctx)), 1)
}

func TestService_ReingestReplacesEverything(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Ingest(ctx, "first", strings.NewReader(endToEndCSV))
	require.NoError(t, err)
	svc.SelectFund(ctx, "FundB")

	second := "Fund,ChartType,Category,Value\nFundC,Sectors,Tech,100\n"
	summary, err := svc.Ingest(ctx, "second", strings.NewReader(second))
	require.NoError(t, err)
	assert.Equal(t, []string{"FundC"}, summary.Funds)

	assert.Equal(t, []string{"FundC"}, svc.ListFunds(ctx))
	assert.Equal(t, "FundC", svc.SelectedFund(ctx))
	assert.Empty(t, svc.GetBreakdowns(ctx, "FundA"))
	assert.Empty(t, svc.GetBreakdowns(ctx, "FundB"))
	assert.Equal(t, "second", svc.LastIngestion(ctx).Source)
}

func TestService_FormatErrorKeepsPreviousIndex(t *testing.T) {
	ctx := context.Background()
	svc, metrics := newTestService(t)

	_, err := svc.Ingest(ctx, "good", strings.NewReader(endToEndCSV))
	require.NoError(t, err)

	summary, err := svc.Ingest(ctx, "bad", strings.NewReader("Fund,Category\nX,Y\n"))
	assert.Nil(t, summary)
	assert.True(t, errors.Is(err, ErrIngestionFormat))

	assert.Equal(t, []string{"FundA", "FundB"}, svc.ListFunds(ctx))
	assert.Equal(t, "good", svc.LastIngestion(ctx).Source)
	assert.Equal(t, []string{ResultFormat}, metrics.failed)
}

func TestService_SupersededIngestionDiscarded(t *testing.T) {
	ctx := context.Background()
	svc, metrics := newTestService(t)

	// While the first ingestion is between building and publishing, a second
	// one starts and completes. The first must not overwrite it.
	fired := false
	var secondErr error
	svc.beforePublish = func() {
		if fired {
			return
		}
		fired = true
		_, secondErr = svc.Ingest(ctx, "second", strings.NewReader("Fund,ChartType,Category,Value\nLate,Regions,US,100\n"))
	}

	summary, err := svc.Ingest(ctx, "first", strings.NewReader(endToEndCSV))
	require.NoError(t, secondErr)
	assert.Nil(t, summary)
	assert.True(t, errors.Is(err, ErrSuperseded))

	assert.Equal(t, []string{"Late"}, svc.ListFunds(ctx))
	assert.Equal(t, "second", svc.LastIngestion(ctx).Source)
	assert.Equal(t, []string{ResultSuperseded}, metrics.failed)
	assert.Len(t, metrics.completed, 1)
}

func TestService_DiscardedWhenLaterIngestionStillRunning(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	// First ingestion blocks before publishing until the second has started.
	started := make(chan struct{})
	release := make(chan struct{})
	svc.beforePublish = func() {
		close(started)
		<-release
	}

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = svc.Ingest(ctx, "first", strings.NewReader(endToEndCSV))
	}()
	<-started

	// A second ingestion has been initiated but has not published yet.
	svc.generation.Add(1)
	close(release)
	wg.Wait()

	assert.True(t, errors.Is(firstErr, ErrSuperseded))
	assert.Empty(t, svc.ListFunds(ctx))
}

func TestService_MetricsFollowPublishOrder(t *testing.T) {
	ctx := context.Background()
	svc, metrics := newTestService(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input := fmt.Sprintf("Fund,ChartType,Category,Value\nFund%d,Regions,US,100\n", i)
			svc.Ingest(ctx, fmt.Sprintf("upload-%d", i), strings.NewReader(input))
		}(i)
	}
	wg.Wait()

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	require.NotEmpty(t, metrics.completed)
	last := metrics.completed[len(metrics.completed)-1]
	published := svc.LastIngestion(ctx)
	assert.Equal(t, published.ID, last.ID)
	assert.Equal(t, published.Funds, last.Funds)
}

func TestService_SelectedChartsShareOneIndex(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	fund, charts := svc.GetSelectedCharts(ctx)
	assert.Equal(t, "", fund)
	assert.Empty(t, charts)

	_, err := svc.Ingest(ctx, "upload", strings.NewReader(endToEndCSV))
	require.NoError(t, err)
	svc.SelectFund(ctx, "FundB")

	fund, charts = svc.GetSelectedCharts(ctx)
	assert.Equal(t, "FundB", fund)
	require.Len(t, charts, 1)
	assert.Equal(t, "Regions", charts[0].ChartType)
	assert.Equal(t, "US", charts[0].Entries[0].Category)
}

func TestService_ReturnedSummaryIsACopy(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	summary, err := svc.Ingest(ctx, "upload", strings.NewReader(endToEndCSV))
	require.NoError(t, err)
	summary.Funds[0] = "mutated"
	summary.Source = "mutated"

	last := svc.LastIngestion(ctx)
	assert.Equal(t, "upload", last.Source)
	assert.Equal(t, []string{"FundA", "FundB"}, last.Funds)
}

func TestService_DroppedRowsCounted(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	input := "Fund,ChartType,Category,Value\nF,Regions,US,\nF,Regions,UK,abc\nF,Regions,Japan,5\n"
	summary, err := svc.Ingest(ctx, "upload", strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DroppedEmpty)
	assert.Equal(t, 1, summary.DroppedInvalid)
	assert.Equal(t, 2, summary.Dropped())
	assert.Equal(t, 1, summary.Entries)
}

func TestService_NilMetricsAllowed(t *testing.T) {
	svc := NewService(NewColorResolver(DefaultPolicies()), nil, common.NewSilentLogger())
	_, err := svc.Ingest(context.Background(), "upload", strings.NewReader(endToEndCSV))
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), "bad", strings.NewReader(""))
	assert.Error(t, err)
}

func TestService_ConcurrentReadsDuringIngest(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.Ingest(ctx, "upload", strings.NewReader(endToEndCSV))
		}()
		go func() {
			defer wg.Done()
			for _, fund := range svc.ListFunds(ctx) {
				svc.GetCharts(ctx, fund)
			}
			svc.SelectFund(ctx, "FundB")
		}()
	}
	wg.Wait()

	// Whichever ingestion published last, the data is the same.
	assert.Equal(t, []string{"FundA", "FundB"}, svc.ListFunds(ctx))
}
