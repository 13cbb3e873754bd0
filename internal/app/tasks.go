package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/oneshowhq/oneshow/internal/domain"
)

const (
	TypeBookingExpire = "booking:expire"
	TypeBookingSweep  = "bookings:sweep"

	// The periodic sweep backstops per-booking expiry tasks that were lost,
	// e.g. because Redis was unavailable at reservation time.
	sweepSchedule = "*/5 * * * *"
)

type BookingExpirePayload struct {
	BookingID int64 `json:"booking_id"`
}

func (app *Application) taskRoutes() *asynq.ServeMux {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TypeBookingExpire, app.HandleBookingExpire)
	mux.HandleFunc(TypeBookingSweep, app.HandleBookingSweep)

	return mux
}

func (app *Application) registerPeriodicTasks(scheduler *asynq.Scheduler) error {
	_, err := scheduler.Register(sweepSchedule, asynq.NewTask(TypeBookingSweep, nil))

	return err
}

// scheduleBookingExpiry enqueues the expiry check for a fresh booking. The
// task fires once the unpaid window has passed; the handler re-checks the
// booking state, so a paid or cancelled booking is untouched.
func (app *Application) scheduleBookingExpiry(booking *domain.Booking) error {
	if app.tasks == nil {
		return nil
	}

	payload, err := json.Marshal(BookingExpirePayload{BookingID: booking.ID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TypeBookingExpire, payload)

	_, err = app.tasks.Enqueue(task,
		asynq.ProcessAt(booking.ExpiresAt()),
		asynq.MaxRetry(3),
	)

	return err
}

func (app *Application) HandleBookingExpire(ctx context.Context, t *asynq.Task) error {
	var payload BookingExpirePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}

	err := app.bookingRepo.Expire(ctx, payload.BookingID, time.Now())
	if err != nil {
		return err
	}

	app.logger.Info("processed booking expiry", "bookingId", payload.BookingID)

	return nil
}

func (app *Application) HandleBookingSweep(ctx context.Context, t *asynq.Task) error {
	removed, err := app.bookingRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return err
	}

	if removed > 0 {
		app.logger.Info("swept expired bookings", "removed", removed)
	}

	return nil
}
