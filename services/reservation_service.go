package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"tableorder/events"
	"tableorder/lifecycle"
	"tableorder/models"
)

type ReservationRepository interface {
	FindWhere(ctx context.Context, match func(models.Reservation) bool) ([]models.Reservation, error)
	FindByID(ctx context.Context, id string) (models.Reservation, error)
	Create(ctx context.Context, r models.Reservation) (models.Reservation, error)
	Update(ctx context.Context, id string, mutate func(*models.Reservation) error) (models.Reservation, error)
}

type ReservationService struct {
	repo      ReservationRepository
	publisher events.Publisher
	machine   lifecycle.ReservationMachine
	newID     func() string
}

// NewReservationService uses now to stamp check-in times; nil means time.Now.
func NewReservationService(repo ReservationRepository, publisher events.Publisher, strict bool, now func() time.Time) *ReservationService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &ReservationService{
		repo:      repo,
		publisher: publisher,
		machine:   lifecycle.ReservationMachine{Strict: strict, Now: now},
		newID:     uuid.NewString,
	}
}

// Create falls back to 現場 and 待入座 for a missing or unknown source and status.
func (s *ReservationService) Create(ctx context.Context, in models.CreateReservationInput) (models.Reservation, error) {
	for _, f := range []struct{ name, value string }{
		{"shopId", in.ShopID},
		{"tableNo", in.TableNo},
		{"time", in.Time},
	} {
		if err := required(f.name, f.value); err != nil {
			return models.Reservation{}, err
		}
	}

	source := in.Source
	if !source.Valid() {
		source = models.SourceWalkIn
	}
	status := in.Status
	if !lifecycle.ValidReservationStatus(status) {
		status = models.ReservationPending
	}

	r := models.Reservation{
		ID:      s.newID(),
		ShopID:  strings.TrimSpace(in.ShopID),
		TableNo: strings.TrimSpace(in.TableNo),
		Time:    in.Time,
		Phone:   in.Phone,
		Source:  source,
		Status:  models.ReservationPending,
	}
	// a reservation created already seated still gets its check-in stamp
	if status != models.ReservationPending {
		if err := s.machine.Apply(&r, status); err != nil {
			return models.Reservation{}, err
		}
	}

	created, err := s.repo.Create(ctx, r)
	if err != nil {
		return models.Reservation{}, fmt.Errorf("create reservation: %w", err)
	}
	return created, nil
}

func (s *ReservationService) Get(ctx context.Context, id string) (models.Reservation, error) {
	r, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return models.Reservation{}, &models.NotFoundError{Entity: "reservation", ID: id}
	}
	if err != nil {
		return models.Reservation{}, fmt.Errorf("get reservation %s: %w", id, err)
	}
	return r, nil
}

// List returns a shop's reservations ordered by time; an empty shopID lists all.
func (s *ReservationService) List(ctx context.Context, shopID string) ([]models.Reservation, error) {
	list, err := s.repo.FindWhere(ctx, func(r models.Reservation) bool {
		return shopID == "" || r.ShopID == shopID
	})
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Time < list[j].Time })
	return list, nil
}

func (s *ReservationService) Transition(ctx context.Context, id string, next models.ReservationStatus) (models.Reservation, error) {
	if !lifecycle.ValidReservationStatus(next) {
		return models.Reservation{}, &models.InvalidStatusError{Status: string(next), Reason: models.ReasonUnknownStatus}
	}
	var changed bool
	r, err := s.repo.Update(ctx, id, func(cur *models.Reservation) error {
		work := *cur
		changed = work.Status != next
		if err := s.machine.Apply(&work, next); err != nil {
			return err
		}
		*cur = work
		return nil
	})
	if errors.Is(err, models.ErrNotFound) {
		return models.Reservation{}, &models.NotFoundError{Entity: "reservation", ID: id}
	}
	if err != nil {
		var se *models.InvalidStatusError
		if errors.As(err, &se) {
			return models.Reservation{}, err
		}
		return models.Reservation{}, fmt.Errorf("update reservation %s: %w", id, err)
	}
	if changed {
		if err := s.publisher.Publish(ctx, models.NewReservationEvent(r)); err != nil {
			slog.Warn("failed to publish reservation event", "reservation_id", r.ID, "error", err)
		}
	}
	return r, nil
}

func (s *ReservationService) CheckIn(ctx context.Context, id string) (models.Reservation, error) {
	return s.Transition(ctx, id, models.ReservationSeated)
}

func (s *ReservationService) Cancel(ctx context.Context, id string) (models.Reservation, error) {
	return s.Transition(ctx, id, models.ReservationCancelled)
}
