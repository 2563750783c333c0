package service

import (
	"context"

	"github.com/harborcrest/pms/internal/apperr"
	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/platform/sanitize"
	"github.com/harborcrest/pms/internal/repo/postgres"
	"github.com/harborcrest/pms/pkg/clock"
)

type GuestService struct {
	guests  postgres.GuestsRepo
	loyalty postgres.LoyaltyRepo
	clock   clock.Clock
}

func NewGuestService(guests postgres.GuestsRepo, loyalty postgres.LoyaltyRepo, c clock.Clock) *GuestService {
	return &GuestService{guests: guests, loyalty: loyalty, clock: c}
}

func cleanGuestInput(in *domain.GuestInput) error {
	in.FirstName = sanitize.Name(in.FirstName)
	in.LastName = sanitize.Name(in.LastName)
	if in.Email != nil {
		e := sanitize.Email(*in.Email)
		in.Email = &e
	}
	if in.Phone != nil {
		p := sanitize.Phone(*in.Phone)
		if p != "" && !sanitize.ValidPhone(p) {
			return apperr.BadRequest("invalid phone number")
		}
		in.Phone = &p
	}
	for _, f := range []**string{&in.ICNumber, &in.Nationality, &in.AddressLine1, &in.City, &in.StateProvince, &in.PostalCode, &in.Country} {
		if *f != nil {
			v := sanitize.Text(**f)
			*f = &v
		}
	}
	return nil
}

func (s *GuestService) Create(ctx context.Context, in *domain.GuestInput) (*domain.Guest, error) {
	if err := cleanGuestInput(in); err != nil {
		return nil, err
	}
	if in.FirstName == "" || in.LastName == "" {
		return nil, apperr.BadRequest("first and last name are required")
	}
	g, err := s.guests.Create(ctx, nil, in)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return g, nil
}

func (s *GuestService) Get(ctx context.Context, id int64) (*domain.Guest, error) {
	g, err := s.guests.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if g == nil {
		return nil, apperr.NotFound("guest not found")
	}
	return g, nil
}

func (s *GuestService) Update(ctx context.Context, id int64, in *domain.GuestInput) (*domain.Guest, error) {
	if err := cleanGuestInput(in); err != nil {
		return nil, err
	}
	g, err := s.guests.Update(ctx, nil, id, in)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if g == nil {
		return nil, apperr.NotFound("guest not found")
	}
	return g, nil
}

func (s *GuestService) List(ctx context.Context, limit, offset int) ([]domain.Guest, error) {
	return s.guests.List(ctx, limit, offset)
}

// Delete soft-deletes; guests with non-terminal bookings are protected.
func (s *GuestService) Delete(ctx context.Context, id int64) error {
	active, err := s.guests.HasActiveBookings(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if active {
		return apperr.Conflict("guest has active bookings")
	}
	deleted, err := s.guests.SoftDelete(ctx, id, s.clock.Now())
	if err != nil {
		return apperr.Internal(err)
	}
	if !deleted {
		return apperr.NotFound("guest not found")
	}
	return nil
}

func (s *GuestService) Loyalty(ctx context.Context, guestID int64) (*domain.LoyaltyMembership, error) {
	m, err := s.loyalty.MembershipForGuest(ctx, guestID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if m == nil {
		return nil, apperr.NotFound("guest has no loyalty membership")
	}
	return m, nil
}
