// Package booking applies the rescheduling rules to existing reservations.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodai-backend/internal/logger"
	"foodai-backend/internal/model"
	"foodai-backend/internal/notification"
	"foodai-backend/internal/parse"
	"foodai-backend/internal/store"
)

var (
	// ErrInvalid is returned when a request breaks a rescheduling rule.
	ErrInvalid = errors.New("invalid reschedule request")
	// ErrSlotFull is returned when the target slot already has too many confirmed reservations.
	ErrSlotFull = errors.New("time slot has high demand")
)

// Rules are the opening hours and limits applied to every reschedule.
type Rules struct {
	Location       *time.Location
	OpenHour       int // first bookable hour
	CloseHour      int // bookings must start before this hour
	MaxAdvanceDays int
	MinLead        time.Duration
	SlotCapacity   int
}

// Notifier queues notification jobs.
type Notifier interface {
	Dispatch(ctx context.Context, job notification.Job) error
}

// Request moves a reservation to a new date and time.
type Request struct {
	Date   string  `json:"reservation_date" binding:"required"`
	Time   string  `json:"reservation_time" binding:"required"`
	Reason *string `json:"reason"`
}

// Slot is a date and HH:MM time as shown to clients.
type Slot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type EmailsQueued struct {
	Customer   bool `json:"customer"`
	Restaurant bool `json:"restaurant"`
}

// Result describes a completed reschedule.
type Result struct {
	Success       bool         `json:"success"`
	Message       string       `json:"message"`
	ReservationID string       `json:"reservation_id"`
	Old           Slot         `json:"old_datetime"`
	New           Slot         `json:"new_datetime"`
	Emails        EmailsQueued `json:"emails_sent"`
}

// Availability reports how busy a slot is for a reservation's restaurant.
type Availability struct {
	Available bool   `json:"available"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Existing  int    `json:"existing_reservations"`
	Message   string `json:"message"`
}

type Service struct {
	store    store.Store
	notifier Notifier
	rules    Rules
	log      *logger.Logger
	now      func() time.Time
}

func NewService(s store.Store, n Notifier, rules Rules, log *logger.Logger) *Service {
	if rules.Location == nil {
		rules.Location = time.UTC
	}
	return &Service{store: s, notifier: n, rules: rules, log: log.With("service", "booking"), now: time.Now}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// target validates the requested slot and returns it with the time in HH:MM:SS form.
func (s *Service) target(date, clock string, now time.Time) (time.Time, string, error) {
	loc := s.rules.Location
	day, err := time.ParseInLocation(parse.DateLayout, date, loc)
	if err != nil {
		return time.Time{}, "", invalid("invalid date format, use YYYY-MM-DD")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if day.Before(today) {
		return time.Time{}, "", invalid("cannot book a date in the past")
	}
	if day.After(today.AddDate(0, 0, s.rules.MaxAdvanceDays)) {
		return time.Time{}, "", invalid("cannot book more than %d days ahead", s.rules.MaxAdvanceDays)
	}

	hour, minute, err := parse.Clock(clock)
	if err != nil {
		return time.Time{}, "", invalid("invalid time format, use HH:MM (24h)")
	}
	if hour < s.rules.OpenHour || hour >= s.rules.CloseHour {
		return time.Time{}, "", invalid("reservations must start between %02d:00 and %02d:00", s.rules.OpenHour, s.rules.CloseHour)
	}
	if minute != 0 && minute != 30 {
		return time.Time{}, "", invalid("reservations are only available on the hour or half hour")
	}
	at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
	return at, fmt.Sprintf("%02d:%02d:00", hour, minute), nil
}

// Reschedule moves reservation id to the requested slot and queues notices
// for the customer, the restaurant and its push subscribers.
func (s *Service) Reschedule(ctx context.Context, id string, req Request) (*Result, error) {
	now := s.now().In(s.rules.Location)
	newAt, newClock, err := s.target(req.Date, req.Time, now)
	if err != nil {
		return nil, err
	}

	current, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Cancelled() || current.Status == model.StatusCompleted {
		return nil, invalid("cannot modify a %s reservation", current.Status)
	}

	original, err := parse.ParseSlot(current.ReservationDate, current.ReservationTime)
	if err != nil {
		return nil, invalid("stored reservation slot is unreadable: %v", err)
	}
	originalAt := original.At(s.rules.Location)
	if originalAt.Sub(now) < s.rules.MinLead {
		return nil, invalid("reservations cannot be modified less than %.0f hours before they start", s.rules.MinLead.Hours())
	}
	if newAt.Equal(originalAt) {
		return nil, invalid("the new date and time match the current ones")
	}

	conflicts, err := s.store.ListReservations(ctx, store.ReservationFilter{
		RestaurantID: current.RestaurantID,
		Statuses:     []model.Status{model.StatusConfirmed},
		Date:         req.Date,
		Time:         newClock,
		ExcludeID:    id,
	})
	if err != nil {
		return nil, err
	}
	if len(conflicts) >= s.rules.SlotCapacity {
		return nil, fmt.Errorf("%w: please choose another time", ErrSlotFull)
	}

	oldDate := original.Date.Format(parse.DateLayout)
	oldClock := fmt.Sprintf("%02d:%02d:00", original.Hour, original.Minute)
	err = s.store.UpdateReservation(ctx, id, model.ReservationUpdate{
		ReservationDate:    req.Date,
		ReservationTime:    newClock,
		UpdatedAt:          s.now().UTC(),
		ModificationReason: req.Reason,
		LastModifiedDate:   oldDate,
		LastModifiedTime:   oldClock,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("reservation rescheduled", "reservation_id", id, "from", oldDate+" "+oldClock, "to", req.Date+" "+newClock)

	c := change{
		ReservationID: id,
		Customer:      current.CustomerName,
		Guests:        current.GuestsCount,
		Old:           Slot{Date: oldDate, Time: parse.ShortClock(oldClock)},
		New:           Slot{Date: req.Date, Time: parse.ShortClock(newClock)},
		Reason:        req.Reason,
	}
	if c.Customer == "" {
		c.Customer = "Cliente"
	}
	emails := s.notify(ctx, current, c)

	return &Result{
		Success:       true,
		Message:       "reservation updated",
		ReservationID: id,
		Old:           c.Old,
		New:           c.New,
		Emails:        emails,
	}, nil
}

// notify queues the customer and restaurant emails plus a push notice.
// Failures are logged; the reschedule itself has already been stored.
func (s *Service) notify(ctx context.Context, r *model.Reservation, c change) EmailsQueued {
	var queued EmailsQueued
	if s.notifier == nil {
		return queued
	}

	restaurantEmail := ""
	c.Restaurant = "Restaurante"
	restaurant, err := s.store.GetRestaurant(ctx, r.RestaurantID)
	switch {
	case err == nil:
		c.Restaurant = restaurant.Name
		restaurantEmail = restaurant.Email
	case !errors.Is(err, store.ErrNotFound):
		s.log.Warn("restaurant lookup failed", "restaurant_id", r.RestaurantID, "error", err)
	}

	if r.CustomerEmail != "" {
		queued.Customer = s.dispatchEmail(ctx, r.CustomerEmail, "Cambio de fecha/hora - Reservación en "+c.Restaurant, customerTemplate, c)
	}
	if restaurantEmail != "" {
		queued.Restaurant = s.dispatchEmail(ctx, restaurantEmail, "Modificación de reservación - "+c.Customer, restaurantTemplate, c)
	}

	push := &notification.Push{
		RestaurantID: r.RestaurantID,
		Title:        "Reservación modificada",
		Body:         fmt.Sprintf("%s: %s %s", c.Customer, c.New.Date, c.New.Time),
	}
	if err := s.notifier.Dispatch(ctx, notification.Job{Push: push}); err != nil {
		s.log.Warn("queueing push notification failed", "restaurant_id", r.RestaurantID, "error", err)
	}
	return queued
}

func (s *Service) dispatchEmail(ctx context.Context, to, subject string, tmpl templateName, c change) bool {
	body, err := render(tmpl, c)
	if err != nil {
		s.log.Error("rendering email failed", "template", tmpl, "error", err)
		return false
	}
	if err := s.notifier.Dispatch(ctx, notification.Job{Email: &notification.Email{To: to, Subject: subject, HTML: body}}); err != nil {
		s.log.Warn("queueing email failed", "to", to, "error", err)
		return false
	}
	return true
}

// Availability counts the other confirmed or pending reservations of the
// same restaurant in the given slot.
func (s *Service) Availability(ctx context.Context, id, date, clock string) (*Availability, error) {
	if _, err := time.Parse(parse.DateLayout, date); err != nil {
		return nil, invalid("invalid date format, use YYYY-MM-DD")
	}
	normalized, err := parse.NormalizeClock(clock)
	if err != nil {
		return nil, invalid("invalid time format, use HH:MM (24h)")
	}

	current, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.ListReservations(ctx, store.ReservationFilter{
		RestaurantID: current.RestaurantID,
		Statuses:     []model.Status{model.StatusConfirmed, model.StatusPending},
		Date:         date,
		Time:         normalized,
		ExcludeID:    id,
	})
	if err != nil {
		return nil, err
	}

	out := &Availability{
		Available: len(existing) < s.rules.SlotCapacity,
		Date:      date,
		Time:      clock,
		Existing:  len(existing),
		Message:   "slot available",
	}
	if !out.Available {
		out.Message = "this slot has high demand"
	}
	return out, nil
}
