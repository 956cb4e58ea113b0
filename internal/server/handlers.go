package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"easypark/internal/logging"
	"easypark/internal/parking"

	"github.com/go-chi/chi/v5"
)

const (
	errLotNotCreated = "Parking lot not created. Create parking lot first"
	unknownColor     = "Unknown"
)

// Handler owns the current parking lot. Mutations take the write lock and
// queries the read lock.
type Handler struct {
	parkingLot    *parking.InstrumentedParkingLot
	mu            sync.RWMutex
	telemetry     *parking.TelemetryProvider
	defaultPolicy parking.Policy
	serviceName   string
}

func NewHandler(telemetry *parking.TelemetryProvider, defaultPolicy parking.Policy, serviceName string) *Handler {
	return &Handler{
		telemetry:     telemetry,
		defaultPolicy: defaultPolicy,
		serviceName:   serviceName,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) CreateParkingLot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ParkingLotCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	policy := h.defaultPolicy
	if req.Policy != "" {
		p, err := parking.ParsePolicy(req.Policy)
		if err != nil {
			WriteError(ctx, w, http.StatusBadRequest, err.Error())
			return
		}
		policy = p
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	parkingLot, err := parking.NewInstrumentedParkingLot(ctx, req.RegularSlots, req.EVSlots, req.Floors, policy, h.telemetry)
	if err != nil {
		writeLotError(ctx, w, err)
		return
	}

	if h.parkingLot != nil {
		h.parkingLot.Retire(ctx)
	}
	h.parkingLot = parkingLot

	WriteSuccess(ctx, w, "Parking lot created successfully", ParkingLotCreateResponse{
		RegularSlots: req.RegularSlots,
		EVSlots:      req.EVSlots,
		Floors:       req.Floors,
		Capacity:     parkingLot.Capacity(),
		Policy:       policy.String(),
	})
}

func (h *Handler) ParkVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ParkVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Registration = strings.TrimSpace(req.Registration)
	if req.Registration == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Registration is required")
		return
	}
	if req.Color = strings.TrimSpace(req.Color); req.Color == "" {
		req.Color = unknownColor
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.parkingLot == nil {
		WriteError(ctx, w, http.StatusBadRequest, errLotNotCreated)
		return
	}

	vehicle := parking.NewVehicle(req.Registration, req.Make, req.Model, req.Color, req.Electric, req.Motorcycle)
	slotNumber, err := h.parkingLot.Park(ctx, vehicle)
	if err != nil {
		writeLotError(ctx, w, err)
		return
	}

	slot, _ := h.parkingLot.Slot(slotNumber)
	WriteSuccess(ctx, w, "Vehicle parked successfully", ParkVehicleResponse{
		SlotNumber:   slotNumber,
		Floor:        slot.Floor,
		SlotKind:     slot.Kind.String(),
		Registration: vehicle.RegistrationNumber,
	})
}

func (h *Handler) LeaveSlot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req LeaveSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.parkingLot == nil {
		WriteError(ctx, w, http.StatusBadRequest, errLotNotCreated)
		return
	}

	vehicle, err := h.parkingLot.Remove(ctx, req.SlotNumber)
	if err != nil {
		writeLotError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, "Slot vacated successfully", LeaveSlotResponse{
		SlotNumber: req.SlotNumber,
		Vehicle:    newVehicleResponse(vehicle),
	})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.parkingLot == nil {
		WriteError(ctx, w, http.StatusBadRequest, errLotNotCreated)
		return
	}

	status := h.parkingLot.Status(ctx)
	slots := make([]SlotStatus, 0, len(status))
	for _, slot := range status {
		slots = append(slots, newSlotStatus(slot))
	}
	occupied := len(h.parkingLot.OccupiedSlots())

	WriteSuccess(ctx, w, "Status retrieved successfully", StatusResponse{
		Capacity:  len(status),
		Occupied:  occupied,
		Available: len(status) - occupied,
		Floors:    h.parkingLot.Floors(),
		Policy:    h.parkingLot.Policy().String(),
		Slots:     slots,
	})
}

func (h *Handler) FindByRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	registration := chi.URLParam(r, "registration")

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.parkingLot == nil {
		WriteError(ctx, w, http.StatusBadRequest, errLotNotCreated)
		return
	}

	slot, found := h.parkingLot.FindByRegistration(ctx, registration)
	if !found {
		WriteError(ctx, w, http.StatusNotFound, "Vehicle not found")
		return
	}

	WriteSuccess(ctx, w, "Vehicle found", newSlotStatus(slot))
}

func (h *Handler) FindByColor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	color := chi.URLParam(r, "color")

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.parkingLot == nil {
		WriteError(ctx, w, http.StatusBadRequest, errLotNotCreated)
		return
	}

	matches := h.parkingLot.FindByColor(ctx, color)
	slots := make([]SlotStatus, 0, len(matches))
	for _, slot := range matches {
		slots = append(slots, newSlotStatus(slot))
	}

	WriteSuccess(ctx, w, "Vehicles retrieved successfully", slots)
}

func (h *Handler) EVChargeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.parkingLot == nil {
		WriteError(ctx, w, http.StatusBadRequest, errLotNotCreated)
		return
	}

	entries := h.parkingLot.EVChargeStatus(ctx)
	charges := make([]ChargeStatus, 0, len(entries))
	for _, e := range entries {
		charges = append(charges, ChargeStatus{
			SlotNumber:   e.SlotNumber,
			Floor:        e.Floor,
			SlotKind:     e.SlotKind.String(),
			Registration: e.RegistrationNumber,
			Charge:       e.Level,
			Band:         string(parking.ChargeBandFor(e.Level)),
		})
	}

	WriteSuccess(ctx, w, "Charge status retrieved successfully", charges)
}

// withLot runs fn against the current lot under the read lock. fn is not
// called when no lot exists.
func (h *Handler) withLot(fn func(*parking.ParkingLot)) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.parkingLot != nil {
		fn(h.parkingLot.ParkingLot)
	}
}

func writeLotError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, parking.ErrInvalidLotSize):
		status = http.StatusBadRequest
	case errors.Is(err, parking.ErrNoAvailableSlot),
		errors.Is(err, parking.ErrAlreadyParked),
		errors.Is(err, parking.ErrSlotAlreadyEmpty):
		status = http.StatusConflict
	case errors.Is(err, parking.ErrInvalidSlot):
		status = http.StatusNotFound
	default:
		logging.Error(ctx, "unexpected parking lot error", "error", err)
	}
	WriteError(ctx, w, status, err.Error())
}
