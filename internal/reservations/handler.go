package reservations

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eclat-backend/internal/httpx"
	"eclat-backend/internal/middleware"
	"eclat-backend/internal/schedule"
	"eclat-backend/internal/transport"
	"eclat-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

// ConfirmationSender delivers the booking confirmation email. May be nil.
type ConfirmationSender interface {
	SendReservationConfirmation(ctx context.Context, reservation Reservation) (string, error)
}

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
	mailer  ConfirmationSender
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger, mailer ConfirmationSender) *Handler {
	return &Handler{
		service: service,
		val:     val,
		log:     log,
		mailer:  mailer,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("reservations create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("reservations create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	reservation, err := h.service.Create(ctx, req, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrTargetRequired),
			errors.Is(err, schedule.ErrInvalidDate),
			errors.Is(err, schedule.ErrInvalidTime),
			errors.Is(err, ErrPastDate),
			errors.Is(err, ErrSlotNotAllowed),
			errors.Is(err, ErrClientNotFound),
			errors.Is(err, ErrServiceNotFound),
			errors.Is(err, ErrFormationNotFound):
			log.Warn("reservations create: rejected", slog.String("reason", err.Error()))
			transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, ErrSlotTaken):
			log.Warn("reservations create: slot taken", slog.String("date", req.Date), slog.String("time", req.Time))
			transport.WriteError(w, http.StatusConflict, "slot already booked", nil)
		default:
			log.Error("reservations create: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	if h.mailer != nil {
		go h.sendConfirmation(log, reservation)
	}

	log.Info("reservations create: booked",
		slog.String("reservation_id", reservation.ID),
		slog.String("date", reservation.Date),
		slog.String("time", reservation.Time),
	)
	transport.WriteJSON(w, http.StatusCreated, reservation)
}

func (h *Handler) sendConfirmation(log *slog.Logger, reservation Reservation) {
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	messageID, err := h.mailer.SendReservationConfirmation(ctx, reservation)
	if err != nil {
		log.Warn("reservations email: send failed",
			slog.String("reservation_id", reservation.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	log.Info("reservations email: sent",
		slog.String("reservation_id", reservation.ID),
		slog.String("message_id", messageID),
	)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 50, 200)
	if err != nil {
		log.Warn("reservations list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	filter := ListFilter{
		Date:     strings.TrimSpace(r.URL.Query().Get("date")),
		Status:   strings.TrimSpace(r.URL.Query().Get("status")),
		ClientID: strings.TrimSpace(r.URL.Query().Get("clientId")),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, total, err := h.service.List(ctx, filter, limit, offset)
	if err != nil {
		log.Error("reservations list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("reservations list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	reservation, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("reservations get: not found", slog.String("reservation_id", id))
			transport.WriteError(w, http.StatusNotFound, "reservation not found", nil)
			return
		}
		log.Error("reservations get: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, reservation)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req UpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("reservations update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("reservations update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	reservation, err := h.service.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("reservations update: not found", slog.String("reservation_id", id))
			transport.WriteError(w, http.StatusNotFound, "reservation not found", nil)
			return
		}
		log.Error("reservations update: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("reservations update: ok", slog.String("reservation_id", id))
	transport.WriteJSON(w, http.StatusOK, reservation)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req StatusRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("reservations status: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("reservations status: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	reservation, err := h.service.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("reservations status: not found", slog.String("reservation_id", id))
			transport.WriteError(w, http.StatusNotFound, "reservation not found", nil)
			return
		}
		log.Error("reservations status: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("reservations status: ok", slog.String("reservation_id", id), slog.String("status", req.Status))
	transport.WriteJSON(w, http.StatusOK, reservation)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("reservations delete: not found", slog.String("reservation_id", id))
			transport.WriteError(w, http.StatusNotFound, "reservation not found", nil)
			return
		}
		log.Error("reservations delete: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("reservations delete: ok", slog.String("reservation_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing date", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	slots, err := h.service.Availability(ctx, date, time.Now())
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidDate) {
			log.Warn("reservations availability: invalid date", slog.String("date", date))
			transport.WriteError(w, http.StatusBadRequest, "invalid date", nil)
			return
		}
		log.Error("reservations availability: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("reservations availability: ok", slog.String("date", date), slog.Int("count", len(slots)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"date":  date,
		"slots": slots,
	})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
