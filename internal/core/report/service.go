package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MuhamadAgungGumelar/agent-console/internal/core/export"
	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/models"
)

const dateLayout = "2006-01-02"

var ErrNoReport = errors.New("no report generated")

// Source is the part of the backend client the service depends on
type Source interface {
	GetReport(ctx context.Context, start, end string) (models.Report, error)
}

// Service holds the most recently generated report
type Service struct {
	src      Source
	exporter *export.Service

	mu      sync.RWMutex
	current *models.Report
	err     error
}

func NewService(src Source, exporter *export.Service) *Service {
	return &Service{src: src, exporter: exporter}
}

// Generate fetches the report for [start, end] (YYYY-MM-DD) and makes it current
func (s *Service) Generate(ctx context.Context, start, end string) (models.Report, error) {
	if err := ValidateRange(start, end); err != nil {
		return models.Report{}, err
	}

	r, err := s.src.GetReport(ctx, start, end)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.err = err
		return models.Report{}, err
	}
	s.current = &r
	s.err = nil
	return r, nil
}

// Current returns the last generated report
func (s *Service) Current() (models.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return models.Report{}, false
	}
	return *s.current, true
}

// Clear drops the current report and any error
func (s *Service) Clear() {
	s.mu.Lock()
	s.current = nil
	s.err = nil
	s.mu.Unlock()
}

func (s *Service) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Export renders the current report
func (s *Service) Export(format export.Format) (*export.File, string, error) {
	r, ok := s.Current()
	if !ok {
		return nil, "", ErrNoReport
	}
	return s.Render(r, format)
}

// Render renders r and returns the file with its suggested name
func (s *Service) Render(r models.Report, format export.Format) (*export.File, string, error) {
	file, err := s.exporter.Export(Table(r), format)
	if err != nil {
		return nil, "", err
	}
	return file, FileName(r, file.Extension), nil
}

// Table lays a report out as the fixed Metric/Value list
func Table(r models.Report) *export.Table {
	return &export.Table{
		Title:       "Conversation Report",
		Description: fmt.Sprintf("%s to %s", r.StartDate, r.EndDate),
		CreatedAt:   time.Now(),
		Headers:     []string{"Metric", "Value"},
		Rows: [][]interface{}{
			{"Total Conversations", r.TotalConversations},
			{"Closed Sales", r.Classified.ClosedSale},
			{"Interested Customers", r.Classified.InterestedCustomer},
			{"Requires Follow-up", r.Classified.RequiresFollowup},
			{"Information Requested", r.Classified.InformationRequested},
			{"Average Response Time (min)", r.AverageResponseTime},
			{"Customer Satisfaction", r.CustomerSatisfaction},
		},
		Style: export.DefaultStyle(),
	}
}

func FileName(r models.Report, ext string) string {
	return fmt.Sprintf("report-%s-%s%s", r.StartDate, r.EndDate, ext)
}

// ValidateRange checks both dates parse and start is not after end
func ValidateRange(start, end string) error {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return fmt.Errorf("invalid start date %q: expected YYYY-MM-DD", start)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return fmt.Errorf("invalid end date %q: expected YYYY-MM-DD", end)
	}
	if s.After(e) {
		return fmt.Errorf("start date %s is after end date %s", start, end)
	}
	return nil
}
