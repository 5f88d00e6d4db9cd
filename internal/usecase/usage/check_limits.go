package usage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/logger"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
	"github.com/BruksfildServices01/groomer-scheduler/internal/timezone"
)

type Usage struct {
	Clients      int `json:"clients"`
	Pets         int `json:"pets"`
	Appointments int `json:"appointments"`
}

func (u Usage) For(r Resource) int {
	switch r {
	case ResourceClients:
		return u.Clients
	case ResourcePets:
		return u.Pets
	case ResourceAppointments:
		return u.Appointments
	}
	return 0
}

type Warning struct {
	Resource   Resource `json:"resource"`
	Percentage int      `json:"percentage"`
}

type Report struct {
	PlanName      string            `json:"plan_name"`
	Usage         Usage             `json:"usage"`
	Limits        Limits            `json:"limits"`
	Warnings      []Warning         `json:"warnings"`
	LimitsReached []Resource        `json:"limits_reached"`
	CanAdd        map[Resource]bool `json:"can_add"`
}

// ======================================================
// USE CASE
// ======================================================

type CheckUsage struct {
	db  *gorm.DB
	bus realtime.Publisher
	now func() time.Time
}

func NewCheckUsage(
	db *gorm.DB,
	bus realtime.Publisher,
) *CheckUsage {
	return &CheckUsage{
		db:  db,
		bus: bus,
		now: time.Now,
	}
}

// Execute computes the month's usage and writes a notification per warning
// and per limit reached.
func (uc *CheckUsage) Execute(
	ctx context.Context,
	salonID uuid.UUID,
) (*Report, error) {

	report, err := uc.Report(ctx, salonID)
	if err != nil {
		return nil, err
	}

	var notes []models.Notification
	for _, w := range report.Warnings {
		notes = append(notes, models.Notification{
			SalonID: salonID,
			Type:    "usage_warning",
			Title:   fmt.Sprintf("%s Usage Warning", title(w.Resource)),
			Message: fmt.Sprintf("You've used %d%% of your %s limit this month.", w.Percentage, w.Resource),
		})
	}
	for _, r := range report.LimitsReached {
		notes = append(notes, models.Notification{
			SalonID: salonID,
			Type:    "limit_reached",
			Title:   fmt.Sprintf("%s Limit Reached", title(r)),
			Message: fmt.Sprintf("You've reached your %s limit for this month. Consider upgrading your plan.", r),
		})
	}

	if len(notes) == 0 {
		return report, nil
	}

	if err := uc.db.WithContext(ctx).Create(&notes).Error; err != nil {
		return nil, httperr.ErrStorage("create_notifications", err)
	}

	logger.Get().Info("usage notifications created",
		zap.String("salon_id", salonID.String()),
		zap.Int("count", len(notes)),
	)

	if uc.bus != nil {
		changes := make([]realtime.Change, 0, len(notes))
		for _, n := range notes {
			changes = append(changes, realtime.Change{
				SalonID: salonID,
				Table:   realtime.TableNotifications,
				Op:      realtime.OpInsert,
				RowID:   n.ID,
				At:      uc.now(),
			})
		}
		uc.bus.Publish(ctx, changes...)
	}

	return report, nil
}

// Report computes usage without side effects.
func (uc *CheckUsage) Report(
	ctx context.Context,
	salonID uuid.UUID,
) (*Report, error) {

	var salon models.Salon
	if err := uc.db.WithContext(ctx).First(&salon, "id = ?", salonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrNotFound("salon_not_found")
		}
		return nil, httperr.ErrStorage("get_salon", err)
	}

	monthStart := timezone.MonthStart(uc.now().In(timezone.Location(salon.Timezone)))

	var used Usage
	counts := []struct {
		model any
		dst   *int
	}{
		{&models.Client{}, &used.Clients},
		{&models.Pet{}, &used.Pets},
		{&models.Appointment{}, &used.Appointments},
	}
	for _, c := range counts {
		var n int64
		if err := uc.db.WithContext(ctx).
			Model(c.model).
			Where("salon_id = ? AND created_at >= ?", salonID, monthStart).
			Count(&n).Error; err != nil {
			return nil, httperr.ErrStorage("count_usage", err)
		}
		*c.dst = int(n)
	}

	plan, limits := PlanLimits(salon.Plan)

	report := &Report{
		PlanName:      plan,
		Usage:         used,
		Limits:        limits,
		Warnings:      []Warning{},
		LimitsReached: []Resource{},
		CanAdd:        make(map[Resource]bool, len(resources)),
	}

	for _, r := range resources {
		u, l := used.For(r), limits.For(r)
		if warning(u, l) {
			report.Warnings = append(report.Warnings, Warning{Resource: r, Percentage: percentage(u, l)})
		}
		if reached(u, l) {
			report.LimitsReached = append(report.LimitsReached, r)
		}
		report.CanAdd[r] = !reached(u, l)
	}

	return report, nil
}

// EnsureCanAdd fails with usage_limit_reached when the salon's plan does not
// allow another r this month.
func (uc *CheckUsage) EnsureCanAdd(
	ctx context.Context,
	salonID uuid.UUID,
	r Resource,
) error {

	report, err := uc.Report(ctx, salonID)
	if err != nil {
		return err
	}
	if !report.CanAdd[r] {
		return ErrLimitReached
	}
	return nil
}

func title(r Resource) string {
	s := string(r)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
