package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"preschoolfees/internal/logger"
	"preschoolfees/internal/models"
)

// StatementSender delivers a family's fee statement
type StatementSender interface {
	SendFeeStatement(ctx context.Context, report FamilyFeeReport, on time.Time) (int, error)
}

// NoticeResult summarises one notice run
type NoticeResult struct {
	Families int
	Sent     int
	Failed   int
}

// NoticeService sends fee statements to every paying family
type NoticeService struct {
	fees     *FeeService
	sender   StatementSender
	location *time.Location
	now      func() time.Time
}

// NewNoticeService creates a notice service; scheduled runs use the calendar
// day in location as the reference date.
func NewNoticeService(fees *FeeService, sender StatementSender, location *time.Location) *NoticeService {
	if location == nil {
		location = time.UTC
	}
	return &NoticeService{
		fees:     fees,
		sender:   sender,
		location: location,
		now:      time.Now,
	}
}

// SendAll mails a statement to every family with a non-zero fee on the given
// date. A failing family is logged and counted; the run continues.
func (s *NoticeService) SendAll(ctx context.Context, on time.Time) (NoticeResult, error) {
	reports, err := s.fees.Reports(on)
	if err != nil {
		return NoticeResult{}, err
	}

	log := logger.With("date", on.Format(time.DateOnly))
	result := NoticeResult{Families: len(reports)}
	for _, report := range reports {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		sent, err := s.sender.SendFeeStatement(ctx, report, on)
		result.Sent += sent
		if err != nil {
			result.Failed++
			log.Error().Err(err).Int64("family_id", report.FamilyID).Msg("fee statement failed")
		}
	}

	log.Info().
		Int("families", result.Families).
		Int("sent", result.Sent).
		Int("failed", result.Failed).
		Msg("fee statements sent")
	return result, nil
}

// Today is the current calendar day in the service's location
func (s *NoticeService) Today() time.Time {
	return models.Date(s.now().In(s.location))
}

// Schedule registers SendAll on a cron schedule. The caller starts and stops
// the returned scheduler.
func (s *NoticeService) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(s.location))
	_, err := c.AddFunc(spec, func() {
		if _, err := s.SendAll(ctx, s.Today()); err != nil {
			logger.Error().Err(err).Msg("scheduled fee notice failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid notice schedule %q: %w", spec, err)
	}
	return c, nil
}
