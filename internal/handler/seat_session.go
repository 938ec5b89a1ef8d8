package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/repository"
)

// SessionHandler manages seat reservation sessions: the short-lived
// exclusive holds created between seat selection and checkout. Creation
// runs inside a serializable transaction so two concurrent attempts on the
// same seat can never both pass the availability checks.
type SessionHandler struct {
	SessionRepo *repository.SeatSessionRepo
	FlightRepo  *repository.FlightRepo
	HoldTTL     time.Duration
}

// NewSessionHandler constructs a SessionHandler. Both repositories must be
// non-nil; ttl is the fixed session lifetime.
func NewSessionHandler(sessionRepo *repository.SeatSessionRepo, flightRepo *repository.FlightRepo, ttl time.Duration) *SessionHandler {
	if sessionRepo == nil || flightRepo == nil {
		panic("nil repository passed to NewSessionHandler")
	}
	return &SessionHandler{SessionRepo: sessionRepo, FlightRepo: flightRepo, HoldTTL: ttl}
}

// Create handles POST /v1/seat-sessions. The request body names a flight
// and a seat number. On success it returns 201 with the session id and
// its end time. A seat already attached to a confirmed booking yields a
// non-retryable 409; a seat held by another active session yields a
// retryable 409. An expired hold on the seat never blocks: it is removed
// inside the same transaction before the insert.
func (h *SessionHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		FlightID   uint64 `json:"flight_id"`
		SeatNumber string `json:"seat_number"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.SeatNumber = strings.ToUpper(strings.TrimSpace(body.SeatNumber))
	if body.FlightID == 0 || body.SeatNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "flight_id and seat_number are required"})
	}

	ctx := c.Request().Context()
	tx, err := h.SessionRepo.DB().BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := h.FlightRepo.GetTx(ctx, tx, body.FlightID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return txError(c, err, "database error")
	}
	cfg, err := h.FlightRepo.ConfigForFlightTx(ctx, tx, body.FlightID)
	if err != nil {
		return txError(c, err, "database error")
	}
	class, ok := cfg.ClassOf(body.SeatNumber)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "validation_error", "field": "seat_number",
			"message": "seat does not exist on this aircraft",
		})
	}

	taken, err := h.SessionRepo.SeatConfirmedTx(ctx, tx, body.FlightID, body.SeatNumber)
	if err != nil {
		return txError(c, err, "database error")
	}
	if taken {
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat already booked", "retryable": false})
	}

	// Drop an expired hold on this seat so it cannot block the insert.
	if err := h.SessionRepo.ReapSeatTx(ctx, tx, body.FlightID, body.SeatNumber); err != nil {
		return txError(c, err, "database error")
	}

	session, err := h.SessionRepo.CreateTx(ctx, tx, userID, body.FlightID, body.SeatNumber, class, h.HoldTTL)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat is currently held", "retryable": true})
		}
		return txError(c, err, "failed to create session")
	}

	if err := tx.Commit(); err != nil {
		if repository.IsSerializationFailure(err) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat is currently held", "retryable": true})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, echo.Map{
		"id":               session.ID,
		"session_end_time": session.EndsAt.Format(time.RFC3339),
	})
}

// Get handles GET /v1/seat-sessions/:id. Owner-only; an expired session is
// treated as absent.
func (h *SessionHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	session, err := h.SessionRepo.GetByID(c.Request().Context(), sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if session.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if !session.Active(time.Now().UTC()) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":               session.ID,
		"flight_id":        session.FlightID,
		"seat_number":      session.SeatNumber,
		"class_type":       session.ClassType,
		"session_end_time": session.EndsAt.Format(time.RFC3339),
	})
}

// Release handles DELETE /v1/seat-sessions/:id. Releasing before expiry
// frees the seat immediately for others.
func (h *SessionHandler) Release(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	err = h.SessionRepo.DeleteOwned(c.Request().Context(), sessionID, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
