package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var ErrDigestNotConfigured = errors.New("digest has no recipients")

type MailSender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// DigestService mails the day's standings and goal check.
type DigestService struct {
	meals      *MealService
	mailer     MailSender
	recipients []string
	log        *zap.Logger
}

func NewDigestService(meals *MealService, mailer MailSender, recipients []string, log *zap.Logger) *DigestService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DigestService{meals: meals, mailer: mailer, recipients: recipients, log: log}
}

type DigestResult struct {
	Subject    string   `json:"subject"`
	Recipients []string `json:"recipients"`
	Warnings   []string `json:"warnings"`
}

// Compose renders the digest from a fresh dashboard.
func (d *DigestService) Compose(ctx context.Context) (subject, body string, warnings []string) {
	view := d.meals.Dashboard(ctx)
	subject = fmt.Sprintf("Meal Shame digest for %s", view.Today)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", subject)

	b.WriteString("Today's leaderboard\n")
	if len(view.Leaderboard) == 0 {
		b.WriteString("  no meals logged today\n")
	}
	for _, s := range view.Leaderboard {
		fmt.Fprintf(&b, "  %d. %s  %d kcal (%d meals)\n", s.Rank, s.Person, s.TotalCalories, s.MealCount)
	}

	b.WriteString("\nGoal check\n")
	for _, c := range view.Comparisons {
		g := c.Goal
		if !g.HasData {
			fmt.Fprintf(&b, "  %s: no meals logged yet\n", c.Person)
			continue
		}
		fmt.Fprintf(&b, "  %s: %d kcal over %d days vs %d goal (%+d kcal, %+.2f lb)\n",
			c.Person, g.Actual, g.Days, g.Expected, g.Delta, g.EstimatedWeightChangeLb)
	}

	if len(view.Warnings) > 0 {
		b.WriteString("\nWarnings\n")
		for _, w := range view.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	return subject, b.String(), view.Warnings
}

func (d *DigestService) Send(ctx context.Context) (*DigestResult, error) {
	if len(d.recipients) == 0 {
		return nil, ErrDigestNotConfigured
	}
	subject, body, warnings := d.Compose(ctx)
	if err := d.mailer.Send(ctx, d.recipients, subject, body); err != nil {
		d.log.Error("digest send failed", zap.Error(err))
		return nil, err
	}
	d.log.Info("digest sent", zap.String("subject", subject), zap.Int("recipients", len(d.recipients)))
	return &DigestResult{Subject: subject, Recipients: d.recipients, Warnings: warnings}, nil
}
