package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/queue"
	"github.com/iliyamo/airline-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/airline-reservation/internal/service"
)

// maxReferenceAttempts bounds the retry loop for the randomly generated
// booking reference. Collisions on a 32^6 space are rare; hitting the
// bound means something else is wrong.
const maxReferenceAttempts = 5

// BookingHandler turns active seat sessions into durable bookings and
// manages booking retrieval and cancellation. Creation runs as a single
// serializable transaction: either every leg and extra is written and every
// consumed session deleted, or nothing is. The unique key on
// booking_flights (flight_id, seat_number) is the final arbiter; a
// duplicate there aborts the whole transaction regardless of what the
// session checks saw.
type BookingHandler struct {
	BookingRepo *repository.BookingRepo
	SessionRepo *repository.SeatSessionRepo
	FlightRepo  *repository.FlightRepo
	ExtraRepo   *repository.ExtraRepo
}

// NewBookingHandler constructs a BookingHandler. All dependencies must be
// non-nil.
func NewBookingHandler(bookingRepo *repository.BookingRepo, sessionRepo *repository.SeatSessionRepo, flightRepo *repository.FlightRepo, extraRepo *repository.ExtraRepo) *BookingHandler {
	if bookingRepo == nil || sessionRepo == nil || flightRepo == nil || extraRepo == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{
		BookingRepo: bookingRepo,
		SessionRepo: sessionRepo,
		FlightRepo:  flightRepo,
		ExtraRepo:   extraRepo,
	}
}

type extraRequest struct {
	ID       uint64 `json:"id"`
	Quantity uint32 `json:"quantity"`
}

type createBookingRequest struct {
	SessionID        uint64         `json:"session_id"`
	SessionIDs       []uint64       `json:"session_ids"`
	DepartureFlights []uint64       `json:"departure_flights"`
	ReturnFlights    []uint64       `json:"return_flights"`
	Extras           []extraRequest `json:"extras"`
	HasInsurance     bool           `json:"has_booking_insurance"`
}

// sessionIDList merges session_id and session_ids into one deduplicated
// list, preserving order.
func (r createBookingRequest) sessionIDList() []uint64 {
	ids := make([]uint64, 0, 1+len(r.SessionIDs))
	seen := make(map[uint64]struct{})
	add := func(id uint64) {
		if id == 0 {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	add(r.SessionID)
	for _, id := range r.SessionIDs {
		add(id)
	}
	return ids
}

// Create handles POST /v1/bookings. Every referenced seat session must be
// active and owned by the caller, and each session's flight must appear in
// exactly one of the departure_flights / return_flights lists so the leg
// gets a direction. Legs are priced at the flight's current class price,
// extras at their current unit price. Consumed sessions are deleted inside
// the same transaction.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body createBookingRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	sessionIDs := body.sessionIDList()
	if len(sessionIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one session_id is required"})
	}

	departure := make(map[uint64]struct{}, len(body.DepartureFlights))
	for _, id := range body.DepartureFlights {
		departure[id] = struct{}{}
	}
	ret := make(map[uint64]struct{}, len(body.ReturnFlights))
	for _, id := range body.ReturnFlights {
		ret[id] = struct{}{}
		if _, both := departure[id]; both {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "flight listed as both departure and return", "flight_id": id,
			})
		}
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()
	tx, err := h.BookingRepo.DB().BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock and validate every session before writing anything.
	sessions := make([]*model.SeatSession, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		session, err := h.SessionRepo.GetOwnedActiveTx(ctx, tx, id, userID, now)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found", "session_id": id})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrSessionExpired):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "session expired", "session_id": id})
		case err != nil:
			return txError(c, err, "database error")
		}
		sessions = append(sessions, session)
	}

	// Resolve each held seat to a leg direction from the request lists and
	// load its flight so legs and insurance can be priced.
	covered := make(map[uint64]struct{}, len(sessions))
	directions := make([]model.LegDirection, 0, len(sessions))
	flights := make([]*model.Flight, 0, len(sessions))
	for _, session := range sessions {
		var dir model.LegDirection
		switch {
		case hasID(departure, session.FlightID):
			dir = model.DirectionDeparture
		case hasID(ret, session.FlightID):
			dir = model.DirectionReturn
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "held flight missing from departure_flights and return_flights", "flight_id": session.FlightID,
			})
		}
		covered[session.FlightID] = struct{}{}
		directions = append(directions, dir)

		flight, err := h.FlightRepo.GetTx(ctx, tx, session.FlightID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found", "flight_id": session.FlightID})
			}
			return txError(c, err, "database error")
		}
		flights = append(flights, flight)
	}
	for id := range departure {
		if _, ok := covered[id]; !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no held seat for listed flight", "flight_id": id})
		}
	}
	for id := range ret {
		if _, ok := covered[id]; !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no held seat for listed flight", "flight_id": id})
		}
	}

	// Insurance is priced per leg and frozen onto the booking row so the
	// stored total never drifts when flight prices change later.
	insurance := model.InsurancePremiumCents(body.HasInsurance, flights...)
	booking := &model.Booking{UserID: userID, HasInsurance: body.HasInsurance, InsuranceCents: insurance}
	for attempt := 0; ; attempt++ {
		ref, err := repository.GenerateReference()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate booking reference"})
		}
		booking.Reference = ref
		err = h.BookingRepo.CreateTx(ctx, tx, booking)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrConflict) && attempt < maxReferenceAttempts-1 {
			continue
		}
		return txError(c, err, "failed to create booking")
	}

	total := insurance
	seatNumbers := make([]string, 0, len(sessions))
	flightIDs := make([]uint64, 0, len(sessions))
	for i, session := range sessions {
		flight := flights[i]
		leg := &model.BookingFlight{
			BookingID:  booking.ID,
			FlightID:   session.FlightID,
			SeatNumber: session.SeatNumber,
			ClassType:  session.ClassType,
			Direction:  directions[i],
			PriceCents: flight.PriceCents(session.ClassType),
		}
		if err := h.BookingRepo.InsertLegTx(ctx, tx, leg); err != nil {
			if errors.Is(err, repository.ErrSeatTaken) {
				return c.JSON(http.StatusConflict, echo.Map{"error": "seat already booked", "retryable": false})
			}
			return txError(c, err, "failed to create booking leg")
		}
		if err := h.FlightRepo.RecomputeFullyBookedTx(ctx, tx, session.FlightID); err != nil {
			return txError(c, err, "failed to update flight availability")
		}
		total += leg.PriceCents
		seatNumbers = append(seatNumbers, session.SeatNumber)
		flightIDs = append(flightIDs, session.FlightID)
	}

	for _, req := range body.Extras {
		if req.ID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "extras require an id"})
		}
		extra, err := h.ExtraRepo.GetTx(ctx, tx, req.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "extra not found", "extra_id": req.ID})
			}
			return txError(c, err, "database error")
		}
		switch err := repository.ValidateExtra(extra, covered, req.Quantity); {
		case errors.Is(err, repository.ErrExtraNotOffered):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "extra not offered on any booked flight", "extra_id": req.ID})
		case errors.Is(err, repository.ErrExtraQuantity):
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "extra quantity exceeds limit", "extra_id": req.ID, "max_quantity": extra.MaxQuantity(),
			})
		case err != nil:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		line := &model.BookingExtra{
			BookingID:      booking.ID,
			ExtraID:        extra.ID,
			FlightID:       extra.FlightID,
			Quantity:       req.Quantity,
			UnitPriceCents: extra.PriceCents,
		}
		if err := h.BookingRepo.InsertExtraTx(ctx, tx, line); err != nil {
			return txError(c, err, "failed to create booking extra")
		}
		total += extra.PriceCents * req.Quantity
	}

	for _, session := range sessions {
		if err := h.SessionRepo.DeleteTx(ctx, tx, session.ID); err != nil {
			return txError(c, err, "failed to consume session")
		}
	}

	if err := tx.Commit(); err != nil {
		if repository.IsSerializationFailure(err) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking conflicted with a concurrent request", "retryable": true})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	event := queue.BookingConfirmedEvent{
		EventID:          uuid.NewString(),
		BookingID:        booking.ID,
		Reference:        booking.Reference,
		UserID:           userID,
		FlightIDs:        flightIDs,
		SeatNumbers:      seatNumbers,
		HasInsurance:     booking.HasInsurance,
		TotalAmountCents: total,
		ConfirmedAt:      now.Format(time.RFC3339),
	}
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := queue_publisher.PublishBookingConfirmed(pubCtx, event); err != nil {
			log.Printf("booking: publish confirmed event failed: %v", err)
		}
	}()

	return c.JSON(http.StatusCreated, echo.Map{
		"id":                 booking.ID,
		"booking_reference":  booking.Reference,
		"total_amount_cents": total,
	})
}

// Get handles GET /v1/bookings/:id. Owner or admin only. Returns the
// booking with its legs and extra line items.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	booking, err := h.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if booking.UserID != userID && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	legs, err := h.BookingRepo.ListLegs(ctx, bookingID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking legs"})
	}
	extras, err := h.BookingRepo.ListExtras(ctx, bookingID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking extras"})
	}

	legItems := make([]echo.Map, 0, len(legs))
	var total uint32
	for _, leg := range legs {
		legItems = append(legItems, echo.Map{
			"flight_id":   leg.FlightID,
			"seat_number": leg.SeatNumber,
			"class_type":  leg.ClassType,
			"direction":   leg.Direction,
			"price_cents": leg.PriceCents,
		})
		total += leg.PriceCents
	}
	extraItems := make([]echo.Map, 0, len(extras))
	for _, ex := range extras {
		extraItems = append(extraItems, echo.Map{
			"extra_id":         ex.ExtraID,
			"flight_id":        ex.FlightID,
			"quantity":         ex.Quantity,
			"unit_price_cents": ex.UnitPriceCents,
		})
		total += ex.UnitPriceCents * ex.Quantity
	}
	total += booking.InsuranceCents
	return c.JSON(http.StatusOK, echo.Map{
		"id":                 booking.ID,
		"booking_reference":  booking.Reference,
		"has_insurance":      booking.HasInsurance,
		"insurance_cents":    booking.InsuranceCents,
		"created_at":         booking.CreatedAt.UTC().Format(time.RFC3339),
		"flights":            legItems,
		"extras":             extraItems,
		"total_amount_cents": total,
	})
}

// Delete handles DELETE /v1/bookings/:id. Owner or admin. Cancellation is
// refused once any leg has departed. Legs and extras cascade with the
// booking row; each touched flight has fully_booked recomputed so its
// seats return to the searchable pool.
func (h *BookingHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	tx, err := h.BookingRepo.DB().BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ownerID, flightIDs, err := h.BookingRepo.GetInfoForDeleteTx(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return txError(c, err, "database error")
	}
	if ownerID != userID && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	now := time.Now().UTC()
	for _, flightID := range flightIDs {
		flight, err := h.FlightRepo.GetTx(ctx, tx, flightID)
		if err != nil {
			return txError(c, err, "database error")
		}
		if !flight.DepartureTime.After(now) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "flight already departed", "flight_id": flightID})
		}
	}
	if err := h.BookingRepo.DeleteTx(ctx, tx, bookingID); err != nil {
		return txError(c, err, "failed to delete booking")
	}
	for _, flightID := range flightIDs {
		if err := h.FlightRepo.RecomputeFullyBookedTx(ctx, tx, flightID); err != nil {
			return txError(c, err, "failed to update flight availability")
		}
	}
	if err := tx.Commit(); err != nil {
		return txError(c, err, "failed to commit transaction")
	}
	committed = true
	return c.NoContent(http.StatusNoContent)
}

func hasID(set map[uint64]struct{}, id uint64) bool {
	_, ok := set[id]
	return ok
}
