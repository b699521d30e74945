package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSweepSchedule runs the appointment sweep every five minutes.
const DefaultSweepSchedule = "@every 5m"

// OverdueAppointmentCompleter marks scheduled appointments older than cutoff as completed.
type OverdueAppointmentCompleter interface {
	CompleteOverdueAppointments(ctx context.Context, cutoff time.Time) (int64, error)
}

// AppointmentSweeper periodically completes appointments whose time has passed by more
// than age. Only scheduled appointments are touched.
type AppointmentSweeper struct {
	store OverdueAppointmentCompleter
	age   time.Duration
	log   logrus.FieldLogger
	cron  *cron.Cron
	now   func() time.Time
}

func NewAppointmentSweeper(store OverdueAppointmentCompleter, age time.Duration, log logrus.FieldLogger) *AppointmentSweeper {
	return &AppointmentSweeper{
		store: store,
		age:   age,
		log:   log,
		cron:  cron.New(),
		now:   time.Now,
	}
}

// Start schedules the sweep. A zero age disables the sweeper.
func (s *AppointmentSweeper) Start(schedule string) error {
	if s.age <= 0 {
		s.log.Info("appointment auto-complete disabled")
		return nil
	}
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.Sweep(ctx)
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.log.WithFields(logrus.Fields{"schedule": schedule, "age": s.age.String()}).Info("appointment sweeper started")
	return nil
}

// Stop waits for a running sweep to finish or ctx to end.
func (s *AppointmentSweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Sweep runs one pass and returns how many appointments were completed.
func (s *AppointmentSweeper) Sweep(ctx context.Context) int64 {
	cutoff := s.now().Add(-s.age)
	n, err := s.store.CompleteOverdueAppointments(ctx, cutoff)
	if err != nil {
		s.log.WithError(err).Error("appointment sweep failed")
		return 0
	}
	if n > 0 {
		s.log.WithField("completed", n).Info("auto-completed overdue appointments")
	}
	return n
}
