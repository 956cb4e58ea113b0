package server

import (
	"context"
	"encoding/json"
	"net/http"

	"easypark/internal/parking"

	"go.opentelemetry.io/otel/trace"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type ParkingLotCreateRequest struct {
	RegularSlots int    `json:"regular_slots"`
	EVSlots      int    `json:"ev_slots"`
	Floors       int    `json:"floors"`
	Policy       string `json:"policy,omitempty"`
}

type ParkingLotCreateResponse struct {
	RegularSlots int    `json:"regular_slots"`
	EVSlots      int    `json:"ev_slots"`
	Floors       int    `json:"floors"`
	Capacity     int    `json:"capacity"`
	Policy       string `json:"policy"`
}

type ParkVehicleRequest struct {
	Registration string `json:"registration"`
	Color        string `json:"color"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Electric     bool   `json:"electric"`
	Motorcycle   bool   `json:"motorcycle"`
}

type ParkVehicleResponse struct {
	SlotNumber   int    `json:"slot_number"`
	Floor        int    `json:"floor"`
	SlotKind     string `json:"slot_kind"`
	Registration string `json:"registration"`
}

type LeaveSlotRequest struct {
	SlotNumber int `json:"slot_number"`
}

type VehicleResponse struct {
	Registration string `json:"registration"`
	Color        string `json:"color"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Type         string `json:"type"`
	Electric     bool   `json:"electric"`
	Charge       *int   `json:"charge,omitempty"`
}

type LeaveSlotResponse struct {
	SlotNumber int             `json:"slot_number"`
	Vehicle    VehicleResponse `json:"vehicle"`
}

type SlotStatus struct {
	SlotNumber int              `json:"slot_number"`
	Floor      int              `json:"floor"`
	Kind       string           `json:"kind"`
	Occupied   bool             `json:"occupied"`
	Vehicle    *VehicleResponse `json:"vehicle,omitempty"`
}

type StatusResponse struct {
	Capacity  int          `json:"capacity"`
	Occupied  int          `json:"occupied"`
	Available int          `json:"available"`
	Floors    int          `json:"floors"`
	Policy    string       `json:"policy"`
	Slots     []SlotStatus `json:"slots"`
}

type ChargeStatus struct {
	SlotNumber   int    `json:"slot_number"`
	Floor        int    `json:"floor"`
	SlotKind     string `json:"slot_kind"`
	Registration string `json:"registration"`
	Charge       int    `json:"charge"`
	Band         string `json:"band"`
}

func newVehicleResponse(v *parking.Vehicle) VehicleResponse {
	resp := VehicleResponse{
		Registration: v.RegistrationNumber,
		Color:        v.Color,
		Make:         v.Make,
		Model:        v.Model,
		Type:         v.Type(),
		Electric:     v.IsElectric(),
	}
	if v.IsElectric() {
		charge := v.Charge()
		resp.Charge = &charge
	}
	return resp
}

func newSlotStatus(slot parking.Slot) SlotStatus {
	status := SlotStatus{
		SlotNumber: slot.Number,
		Floor:      slot.Floor,
		Kind:       slot.Kind.String(),
		Occupied:   slot.IsOccupied(),
	}
	if status.Occupied {
		vehicle := newVehicleResponse(slot.Vehicle)
		status.Vehicle = &vehicle
	}
	return status
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
