// Package usage reports embedding token consumption against the budget.
package usage

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/mailsense/internal/domain"
)

// Period is the reporting window.
type Period string

// Reporting windows.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// Report is the budget state for one window. Limit and Remaining are -1 when unlimited.
type Report struct {
	Period      Period    `json:"period"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Limit       int64     `json:"limit"`
	Used        int64     `json:"used"`
	Remaining   int64     `json:"remaining"`
	Exhausted   bool      `json:"exhausted"`
}

// Service builds usage reports.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil when no budget is configured.
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// Report returns the usage for period. An empty period means day.
func (s *Service) Report(period Period) (Report, error) {
	now := s.now().UTC()
	r := Report{Period: period, Limit: -1, Remaining: -1}

	switch period {
	case PeriodDay, "":
		r.Period = PeriodDay
		r.PeriodStart = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		r.PeriodEnd = r.PeriodStart.AddDate(0, 0, 1)
		if s.br != nil {
			r.Used = s.br.DailyUsed()
			if l := s.br.DailyLimit(); l > 0 {
				r.Limit, r.Remaining = l, s.br.RemainingDaily()
			}
		}
	case PeriodMonth:
		r.PeriodStart = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		r.PeriodEnd = r.PeriodStart.AddDate(0, 1, 0)
		if s.br != nil {
			r.Used = s.br.MonthlyUsed()
			if l := s.br.MonthlyLimit(); l > 0 {
				r.Limit, r.Remaining = l, s.br.RemainingMonthly()
			}
		}
	default:
		return Report{}, fmt.Errorf("%w: period must be day or month, got %q", domain.ErrInvalidRequest, period)
	}

	r.Exhausted = r.Limit > 0 && r.Remaining <= 0
	return r, nil
}
