package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/harborcrest/pms/internal/apperr"
	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/platform/sanitize"
	"github.com/harborcrest/pms/internal/repo/postgres"
	"github.com/harborcrest/pms/pkg/clock"
	"github.com/harborcrest/pms/pkg/config"
	"github.com/harborcrest/pms/pkg/events"
	"github.com/harborcrest/pms/pkg/logger"
)

type ReservationService struct {
	pool        *pgxpool.Pool
	bookings    postgres.BookingsRepo
	guests      postgres.GuestsRepo
	rooms       postgres.RoomsRepo
	idempotency postgres.IdempotencyRepo
	rateplan    *RatePlanService
	audit       *AuditLogService
	bus         events.Publisher
	clock       clock.Clock
	cfg         config.AuthConfig
}

func NewReservationService(
	pool *pgxpool.Pool,
	bookings postgres.BookingsRepo,
	guests postgres.GuestsRepo,
	rooms postgres.RoomsRepo,
	idempotency postgres.IdempotencyRepo,
	rateplan *RatePlanService,
	audit *AuditLogService,
	bus events.Publisher,
	c clock.Clock,
	cfg config.AuthConfig,
) *ReservationService {
	return &ReservationService{
		pool: pool, bookings: bookings, guests: guests, rooms: rooms,
		idempotency: idempotency, rateplan: rateplan, audit: audit,
		bus: bus, clock: c, cfg: cfg,
	}
}

// Create books a room inside a serializable transaction: overlap check,
// rate quote (engine or explicit override), booking number, audit entry.
// idempotencyKey may be empty; a repeated key returns the original booking.
func (s *ReservationService) Create(ctx context.Context, req *domain.CreateBookingRequest, createdBy *int64, idempotencyKey string) (*domain.Booking, error) {
	if !req.CheckOutDate.After(req.CheckInDate) {
		return nil, apperr.BadRequest("check-out must be after check-in")
	}
	if req.Adults < 1 {
		return nil, apperr.BadRequest("at least one adult is required")
	}

	var booking *domain.Booking
	err := postgres.InSerializableTx(ctx, s.pool, func(tx pgx.Tx) error {
		guest, err := s.guests.GetByID(ctx, tx, req.GuestID)
		if err != nil {
			return err
		}
		if guest == nil {
			return apperr.NotFound("guest not found")
		}
		room, err := s.rooms.GetByID(ctx, tx, req.RoomID)
		if err != nil {
			return err
		}
		if room == nil {
			return apperr.NotFound("room not found")
		}

		overlaps, err := s.bookings.HasOverlap(ctx, tx, req.RoomID, req.CheckInDate, req.CheckOutDate, 0)
		if err != nil {
			return err
		}
		if overlaps {
			return apperr.Conflict("room is already booked for those dates")
		}

		nights := domain.Nights(req.CheckInDate, req.CheckOutDate)
		nightly, err := s.nightlyRate(ctx, room, req)
		if err != nil {
			return err
		}
		subtotal := nightly.Mul(decimal.NewFromInt(int64(nights))).RoundBank(2)
		discount := decimal.Zero
		if req.DiscountAmount != nil {
			if req.DiscountAmount.IsNegative() {
				return apperr.BadRequest("discount must not be negative")
			}
			discount = req.DiscountAmount.RoundBank(2)
		}
		total := subtotal.Sub(discount)
		if total.IsNegative() {
			total = decimal.Zero
		}

		number, err := s.nextBookingNumber(ctx, tx)
		if err != nil {
			return err
		}

		booking, err = s.bookings.Create(ctx, tx, &domain.Booking{
			BookingNumber:   number,
			GuestID:         req.GuestID,
			RoomID:          req.RoomID,
			CheckInDate:     req.CheckInDate,
			CheckOutDate:    req.CheckOutDate,
			RoomRate:        nightly,
			Subtotal:        subtotal,
			TaxAmount:       decimal.Zero,
			DiscountAmount:  discount,
			TotalAmount:     total,
			Status:          domain.BookingPending,
			PaymentStatus:   domain.PayUnpaid,
			Adults:          req.Adults,
			Children:        req.Children,
			MarketCode:      req.MarketCode,
			SpecialRequests: req.SpecialRequests,
			CompanyID:       req.CompanyID,
			CreatedBy:       createdBy,
		})
		if err != nil {
			return err
		}

		if idempotencyKey != "" {
			existingID, err := s.idempotency.Reserve(ctx, tx, idempotencyKey, booking.ID)
			if err != nil {
				return err
			}
			if existingID != 0 && existingID != booking.ID {
				prior, err := s.bookings.GetByID(ctx, tx, existingID)
				if err != nil {
					return err
				}
				if prior != nil {
					booking = prior
					return errIdempotentReplay
				}
			}
		}
		return nil
	})
	if err == errIdempotentReplay {
		return booking, nil
	}
	if err != nil {
		return nil, wrap(err)
	}

	s.audit.Append(ctx, createdBy, domain.ActionBookingCreated, "booking", &booking.ID, map[string]string{"bookingNumber": booking.BookingNumber})
	s.publish(ctx, events.BookingCreated, booking)
	return booking, nil
}

// errIdempotentReplay aborts the creating transaction so the replayed
// request's duplicate row is rolled back and the original returned.
var errIdempotentReplay = fmt.Errorf("idempotent replay")

func (s *ReservationService) nightlyRate(ctx context.Context, room *domain.Room, req *domain.CreateBookingRequest) (decimal.Decimal, error) {
	if req.RateOverride != nil {
		if req.RateOverride.IsNegative() {
			return decimal.Zero, apperr.BadRequest("rate override must not be negative")
		}
		return req.RateOverride.RoundBank(2), nil
	}
	quote, err := s.rateplan.Quote(ctx, room.RoomTypeID, req.CheckInDate, req.CheckOutDate)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return room.PricePerNight.RoundBank(2), nil
		}
		return decimal.Zero, err
	}
	return quote.NightlyRate, nil
}

func (s *ReservationService) nextBookingNumber(ctx context.Context, tx pgx.Tx) (string, error) {
	today := s.clock.Today()
	seq, err := s.bookings.NextSequenceForDay(ctx, tx, today)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("BK-%s-%06d", today.Format("20060102"), seq), nil
}

func (s *ReservationService) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if b == nil {
		return nil, apperr.NotFound("booking not found")
	}
	return b, nil
}

func (s *ReservationService) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	return s.bookings.List(ctx, f)
}

// Confirm moves a pending booking to confirmed.
func (s *ReservationService) Confirm(ctx context.Context, id int64, actorID *int64) (*domain.Booking, error) {
	b, err := s.transition(ctx, id, domain.BookingConfirmed, actorID, nil)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingConfirmed, b)
	return b, nil
}

// CheckIn requires today >= check-in date.
func (s *ReservationService) CheckIn(ctx context.Context, id int64, actorID *int64) (*domain.Booking, error) {
	gate := func(b *domain.Booking) error {
		if s.clock.Today().Before(b.CheckInDate) {
			return apperr.BadRequest("cannot check in before the check-in date")
		}
		switch b.Status {
		case domain.BookingConfirmed, domain.BookingPending, domain.BookingAutoCheckedIn:
			return nil
		}
		return apperr.BadRequest(fmt.Sprintf("cannot check in from status %s", b.Status))
	}
	b, err := s.transitionWith(ctx, id, domain.BookingCheckedIn, actorID, gate, func(tx pgx.Tx, b *domain.Booking) error {
		_, err := s.rooms.UpdateStatus(ctx, tx, b.RoomID, domain.RoomOccupied)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingCheckedIn, b)
	return b, nil
}

// CheckOut sets the actual check-out time and sends the room to cleaning.
func (s *ReservationService) CheckOut(ctx context.Context, id int64, actorID *int64) (*domain.Booking, error) {
	gate := func(b *domain.Booking) error {
		if s.clock.Today().Before(b.CheckInDate) {
			return apperr.BadRequest("cannot check out before the check-in date")
		}
		if !b.Status.InHouse() {
			return apperr.BadRequest(fmt.Sprintf("cannot check out from status %s", b.Status))
		}
		return nil
	}
	b, err := s.transitionWith(ctx, id, domain.BookingCheckedOut, actorID, gate, func(tx pgx.Tx, b *domain.Booking) error {
		if err := s.bookings.SetActualCheckOut(ctx, tx, b.ID, s.clock.Now()); err != nil {
			return err
		}
		_, err := s.rooms.UpdateStatus(ctx, tx, b.RoomID, domain.RoomCleaning)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingCheckedOut, b)
	return b, nil
}

func (s *ReservationService) Cancel(ctx context.Context, id int64, actorID *int64) (*domain.Booking, error) {
	b, err := s.transition(ctx, id, domain.BookingCancelled, actorID, nil)
	if err != nil {
		return nil, err
	}
	s.audit.Append(ctx, actorID, domain.ActionBookingCancelled, "booking", &b.ID, nil)
	s.publish(ctx, events.BookingCancelled, b)
	return b, nil
}

func (s *ReservationService) MarkNoShow(ctx context.Context, id int64, actorID *int64) (*domain.Booking, error) {
	return s.transition(ctx, id, domain.BookingNoShow, actorID, nil)
}

func (s *ReservationService) transition(ctx context.Context, id int64, to domain.BookingStatus, actorID *int64, gate func(*domain.Booking) error) (*domain.Booking, error) {
	return s.transitionWith(ctx, id, to, actorID, gate, nil)
}

// transitionWith validates the state machine inside a serializable
// transaction and applies extra per-transition effects atomically.
func (s *ReservationService) transitionWith(ctx context.Context, id int64, to domain.BookingStatus, actorID *int64, gate func(*domain.Booking) error, also func(pgx.Tx, *domain.Booking) error) (*domain.Booking, error) {
	var out *domain.Booking

	err := postgres.InSerializableTx(ctx, s.pool, func(tx pgx.Tx) error {
		b, err := s.bookings.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return apperr.NotFound("booking not found")
		}
		if gate != nil {
			if err := gate(b); err != nil {
				return err
			}
		}
		if !domain.CanTransition(b.Status, to) {
			return apperr.BadRequest(fmt.Sprintf("cannot transition booking from %s to %s", b.Status, to))
		}

		now := s.clock.Now()
		if err := s.bookings.UpdateStatus(ctx, tx, id, to, now); err != nil {
			return err
		}
		if also != nil {
			if err := also(tx, b); err != nil {
				return err
			}
		}

		b.Status = to
		b.UpdatedAt = now
		out = b
		return nil
	})
	if err != nil {
		return nil, wrap(err)
	}

	s.audit.Append(ctx, actorID, domain.ActionBookingUpdated, "booking", &id, map[string]string{"status": string(to)})
	return out, nil
}

// PortalVerify checks booking number + guest email and mints a 48-hour
// pre-check-in token. Arrival must fall within the next seven days.
func (s *ReservationService) PortalVerify(ctx context.Context, bookingNumber, email string) (string, error) {
	email = sanitize.Email(email)
	b, err := s.bookings.GetByNumber(ctx, bookingNumber)
	if err != nil {
		return "", apperr.Internal(err)
	}
	if b == nil || b.Status.Terminal() {
		return "", apperr.NotFound("booking not found")
	}

	guest, err := s.guests.GetByID(ctx, nil, b.GuestID)
	if err != nil {
		return "", apperr.Internal(err)
	}
	if guest == nil || guest.Email == nil || sanitize.Email(*guest.Email) != email {
		return "", apperr.NotFound("booking not found")
	}

	today := s.clock.Today()
	if b.CheckInDate.Before(today) || b.CheckInDate.After(today.AddDate(0, 0, 7)) {
		return "", apperr.BadRequest("pre-check-in opens seven days before arrival")
	}

	token := uuid.NewString()
	if err := s.bookings.SetPreCheckinToken(ctx, b.ID, token, s.clock.Now().Add(s.cfg.PreCheckinTokenTTL)); err != nil {
		return "", apperr.Internal(err)
	}
	return token, nil
}

func (s *ReservationService) PortalGet(ctx context.Context, token string) (*domain.Booking, error) {
	b, err := s.bookings.GetByPreCheckinToken(ctx, token)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if b == nil || b.PreCheckinTokenExpiresAt == nil || s.clock.Now().After(*b.PreCheckinTokenExpiresAt) {
		return nil, apperr.Unauthorized("invalid or expired pre-check-in token")
	}
	return b, nil
}

// PortalSubmit applies the whitelisted guest and booking fields and marks
// pre-check-in complete.
func (s *ReservationService) PortalSubmit(ctx context.Context, token string, update *domain.PreCheckinUpdate) (*domain.Booking, error) {
	b, err := s.PortalGet(ctx, token)
	if err != nil {
		return nil, err
	}

	var marketCode, specialRequests *string
	if update.MarketCode != nil {
		v := sanitize.Text(*update.MarketCode)
		marketCode = &v
	}
	if update.SpecialRequests != nil {
		v := sanitize.Notes(*update.SpecialRequests)
		specialRequests = &v
	}

	err = postgres.InSerializableTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := s.guests.Update(ctx, tx, b.GuestID, &update.Guest); err != nil {
			return err
		}
		return s.bookings.CompletePreCheckin(ctx, tx, b.ID, marketCode, specialRequests, s.clock.Now())
	})
	if err != nil {
		return nil, wrap(err)
	}
	return s.Get(ctx, b.ID)
}

// MarkComplimentary zeroes the booking total and records the covered span.
func (s *ReservationService) MarkComplimentary(ctx context.Context, id int64, reason string, start, end time.Time, actorID *int64) (*domain.Booking, error) {
	reason = sanitize.Text(reason)
	if reason == "" {
		return nil, apperr.BadRequest("reason is required")
	}
	if !end.After(start) {
		return nil, apperr.BadRequest("end must be after start")
	}

	err := postgres.InSerializableTx(ctx, s.pool, func(tx pgx.Tx) error {
		b, err := s.bookings.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return apperr.NotFound("booking not found")
		}
		if b.IsComplimentary {
			return apperr.Conflict("booking is already complimentary")
		}
		nights := domain.Nights(start, end)
		return s.bookings.MarkComplimentary(ctx, tx, id, reason, start, end, nights, b.TotalAmount)
	})
	if err != nil {
		return nil, wrap(err)
	}

	s.audit.Append(ctx, actorID, domain.ActionBookingUpdated, "booking", &id, map[string]string{"complimentary": reason})
	return s.Get(ctx, id)
}

// ConvertToCredits moves a complimentary booking's nights onto the guest's
// credit balance. A booking converts at most once.
func (s *ReservationService) ConvertToCredits(ctx context.Context, id int64, actorID *int64) (*domain.Guest, error) {
	var guestID int64

	err := postgres.InSerializableTx(ctx, s.pool, func(tx pgx.Tx) error {
		b, err := s.bookings.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return apperr.NotFound("booking not found")
		}
		if !b.IsComplimentary || b.ComplimentaryNights == nil {
			return apperr.BadRequest("booking is not complimentary")
		}
		if b.CreditsConverted {
			return apperr.Conflict("complimentary nights already converted")
		}

		if _, err := s.guests.AdjustCredits(ctx, tx, b.GuestID, *b.ComplimentaryNights); err != nil {
			return err
		}
		if err := s.bookings.SetCreditsConverted(ctx, tx, id); err != nil {
			return err
		}
		guestID = b.GuestID
		return nil
	})
	if err != nil {
		return nil, wrap(err)
	}

	s.audit.Append(ctx, actorID, domain.ActionBookingUpdated, "booking", &id, map[string]string{"creditsConverted": "true"})
	g, err := s.guests.GetByID(ctx, nil, guestID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return g, nil
}

// BookWithCredits creates a zero-total booking paid in complimentary
// nights, atomically decrementing the guest's balance.
func (s *ReservationService) BookWithCredits(ctx context.Context, guestID, roomID int64, checkIn, checkOut time.Time, adults int, actorID *int64) (*domain.Booking, error) {
	if !checkOut.After(checkIn) {
		return nil, apperr.BadRequest("check-out must be after check-in")
	}
	if adults < 1 {
		adults = 1
	}
	nights := domain.Nights(checkIn, checkOut)

	var booking *domain.Booking
	err := postgres.InSerializableTx(ctx, s.pool, func(tx pgx.Tx) error {
		ok, err := s.guests.AdjustCredits(ctx, tx, guestID, -nights)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.BadRequest("insufficient complimentary night credits")
		}

		room, err := s.rooms.GetByID(ctx, tx, roomID)
		if err != nil {
			return err
		}
		if room == nil {
			return apperr.NotFound("room not found")
		}
		overlaps, err := s.bookings.HasOverlap(ctx, tx, roomID, checkIn, checkOut, 0)
		if err != nil {
			return err
		}
		if overlaps {
			return apperr.Conflict("room is already booked for those dates")
		}

		number, err := s.nextBookingNumber(ctx, tx)
		if err != nil {
			return err
		}
		booking, err = s.bookings.Create(ctx, tx, &domain.Booking{
			BookingNumber:  number,
			GuestID:        guestID,
			RoomID:         roomID,
			CheckInDate:    checkIn,
			CheckOutDate:   checkOut,
			RoomRate:       decimal.Zero,
			Subtotal:       decimal.Zero,
			TaxAmount:      decimal.Zero,
			DiscountAmount: decimal.Zero,
			TotalAmount:    decimal.Zero,
			Status:         domain.BookingPending,
			PaymentStatus:  domain.PayPaid,
			Adults:         adults,
			IsComplimentary: true,
			CreatedBy:      actorID,
		})
		return err
	})
	if err != nil {
		return nil, wrap(err)
	}

	s.audit.Append(ctx, actorID, domain.ActionBookingCreated, "booking", &booking.ID, map[string]string{"paidWithCredits": "true"})
	s.publish(ctx, events.BookingCreated, booking)
	return booking, nil
}

func (s *ReservationService) publish(ctx context.Context, subject string, b *domain.Booking) {
	ev := events.BookingEvent{
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		GuestID:       b.GuestID,
		RoomID:        b.RoomID,
		Status:        string(b.Status),
	}
	if err := s.bus.Publish(ctx, subject, ev); err != nil {
		logger.WarnContext(ctx, "event publish failed", "subject", subject, "error", err)
	}
}

// wrap leaves tagged application errors alone and folds anything else
// into an internal error.
func wrap(err error) error {
	if apperr.KindOf(err) != apperr.KindInternal {
		return err
	}
	if _, ok := err.(*apperr.Error); ok {
		return err
	}
	return apperr.Internal(err)
}
