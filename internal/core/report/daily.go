package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/agent-console/internal/core/export"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/snapshot"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/upload"
	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/models"
)

// Recorder logs produced export files
type Recorder interface {
	RecordExport(ctx context.Context, format, location string, size int64, report models.Report) (*snapshot.ExportRecord, error)
}

// DailyExport fetches the previous day's report and stores it as a file
type DailyExport struct {
	src      Source
	svc      *Service
	storage  upload.Provider
	recorder Recorder
	format   export.Format
	timeout  time.Duration
	now      func() time.Time
}

func NewDailyExport(src Source, svc *Service, storage upload.Provider, recorder Recorder, format export.Format, timeout time.Duration) *DailyExport {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &DailyExport{
		src:      src,
		svc:      svc,
		storage:  storage,
		recorder: recorder,
		format:   format,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Run exports yesterday's report. It does not touch the service's current report.
func (d *DailyExport) Run(ctx context.Context) (*upload.Result, error) {
	day, _, err := PeriodRange("yesterday", d.now())
	if err != nil {
		return nil, err
	}

	r, err := d.src.GetReport(ctx, day, day)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report for %s: %w", day, err)
	}

	file, name, err := d.svc.Render(r, d.format)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(name, file.Extension)
	key := fmt.Sprintf("%s/%s_%s%s", day[:7], base, uuid.NewString()[:8], file.Extension)
	res, err := d.storage.Put(ctx, key, file.ContentType, file.Data)
	if err != nil {
		return nil, err
	}

	if d.recorder != nil {
		if _, err := d.recorder.RecordExport(ctx, string(d.format), res.URL, res.Size, r); err != nil {
			log.Warn().Err(err).Str("location", res.URL).Msg("export stored but not recorded")
		}
	}

	log.Info().Str("day", day).Str("format", string(d.format)).Str("location", res.URL).Msg("daily report exported")
	return res, nil
}

// Job adapts Run to the scheduler's func()
func (d *DailyExport) Job(parent context.Context) func() {
	return func() {
		ctx, cancel := context.WithTimeout(parent, d.timeout)
		defer cancel()
		if _, err := d.Run(ctx); err != nil {
			log.Error().Err(err).Msg("daily report export failed")
		}
	}
}
