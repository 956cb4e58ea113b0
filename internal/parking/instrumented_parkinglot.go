package parking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"easypark/internal/logging"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type InstrumentedParkingLot struct {
	*ParkingLot
	telemetry *TelemetryProvider

	parkingOperations metric.Int64Counter
	leavingOperations metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	operationDuration metric.Float64Histogram
	totalSlotsGauge   metric.Int64UpDownCounter
}

func NewInstrumentedParkingLot(ctx context.Context, regularPerFloor, evPerFloor, floors int, policy Policy, telemetry *TelemetryProvider) (*InstrumentedParkingLot, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "parking_lot.create",
		trace.WithAttributes(
			attribute.Int("parking_lot.regular_slots_per_floor", regularPerFloor),
			attribute.Int("parking_lot.ev_slots_per_floor", evPerFloor),
			attribute.Int("parking_lot.floors", floors),
			attribute.String("parking_lot.policy", policy.String()),
		))
	defer span.End()

	baseParkingLot, err := NewParkingLot(regularPerFloor, evPerFloor, floors, policy)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ipl := &InstrumentedParkingLot{
		ParkingLot: baseParkingLot,
		telemetry:  telemetry,
	}
	if err := ipl.createInstruments(telemetry.Meter()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	for _, kind := range []SlotKind{RegularSlot, EVSlot} {
		ipl.totalSlotsGauge.Add(ctx, int64(baseParkingLot.CapacityByKind(kind)),
			metric.WithAttributes(attribute.String("slot_kind", kind.String())))
	}

	span.SetAttributes(attribute.Int("parking_lot.capacity", baseParkingLot.Capacity()))
	logging.Info(ctx, "parking lot created",
		"capacity", baseParkingLot.Capacity(),
		"floors", floors,
		"policy", policy.String(),
	)

	return ipl, nil
}

func (ipl *InstrumentedParkingLot) createInstruments(meter metric.Meter) error {
	var err error

	if ipl.parkingOperations, err = meter.Int64Counter("parking_operations_total",
		metric.WithDescription("Total number of parking operations"),
		metric.WithUnit("1")); err != nil {
		return fmt.Errorf("parking operations counter: %w", err)
	}

	if ipl.leavingOperations, err = meter.Int64Counter("leaving_operations_total",
		metric.WithDescription("Total number of leaving operations"),
		metric.WithUnit("1")); err != nil {
		return fmt.Errorf("leaving operations counter: %w", err)
	}

	if ipl.occupancyGauge, err = meter.Int64UpDownCounter("parking_lot_occupancy",
		metric.WithDescription("Current number of occupied parking slots"),
		metric.WithUnit("1")); err != nil {
		return fmt.Errorf("occupancy gauge: %w", err)
	}

	if ipl.operationDuration, err = meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of parking lot operations"),
		metric.WithUnit("s")); err != nil {
		return fmt.Errorf("operation duration histogram: %w", err)
	}

	if ipl.totalSlotsGauge, err = meter.Int64UpDownCounter("parking_lot_total_slots",
		metric.WithDescription("Total number of parking slots"),
		metric.WithUnit("1")); err != nil {
		return fmt.Errorf("total slots gauge: %w", err)
	}

	return nil
}

// Retire withdraws this lot's slots and occupancy from the gauges. Call it
// when the lot is replaced.
func (ipl *InstrumentedParkingLot) Retire(ctx context.Context) {
	for _, kind := range []SlotKind{RegularSlot, EVSlot} {
		kindAttr := metric.WithAttributes(attribute.String("slot_kind", kind.String()))
		ipl.totalSlotsGauge.Add(ctx, -int64(ipl.CapacityByKind(kind)), kindAttr)
		ipl.occupancyGauge.Add(ctx, -int64(ipl.OccupiedByKind(kind)), kindAttr)
	}
}

func (ipl *InstrumentedParkingLot) Park(ctx context.Context, vehicle *Vehicle) (int, error) {
	tracer := ipl.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking_lot.park",
		trace.WithAttributes(
			attribute.String("vehicle.registration_number", vehicle.RegistrationNumber),
			attribute.String("vehicle.color", vehicle.Color),
			attribute.String("vehicle.kind", vehicle.Kind.String()),
			attribute.String("vehicle.type", vehicle.Type()),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("finding_available_slot")

	slotNumber, err := ipl.ParkingLot.Park(vehicle)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "park"),
		attribute.String("vehicle_kind", vehicle.Kind.String()),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", failureStatus(err)))
		logging.Warn(ctx, "parking failed",
			"registration", vehicle.RegistrationNumber,
			"error", err,
		)
	} else {
		slot, _ := ipl.ParkingLot.Slot(slotNumber)
		labels = append(labels,
			attribute.String("status", "success"),
			attribute.String("slot_kind", slot.Kind.String()),
		)
		span.SetAttributes(
			attribute.Int("allocated_slot_number", slotNumber),
			attribute.Int("allocated_slot_floor", slot.Floor),
		)
		span.AddEvent("slot_allocated", trace.WithAttributes(
			attribute.Int("slot_number", slotNumber),
		))
		ipl.occupancyGauge.Add(ctx, 1,
			metric.WithAttributes(attribute.String("slot_kind", slot.Kind.String())))
		logging.Debug(ctx, "vehicle parked",
			"registration", vehicle.RegistrationNumber,
			"slot_number", slotNumber,
			"slot_kind", slot.Kind.String(),
		)
	}

	ipl.parkingOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return slotNumber, err
}

func (ipl *InstrumentedParkingLot) Remove(ctx context.Context, slotNumber int) (*Vehicle, error) {
	tracer := ipl.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking_lot.remove",
		trace.WithAttributes(
			attribute.Int("slot_number", slotNumber),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("releasing_slot")

	vehicle, err := ipl.ParkingLot.Remove(slotNumber)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "leave"),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", failureStatus(err)))
		logging.Warn(ctx, "removal failed", "slot_number", slotNumber, "error", err)
	} else {
		slot, _ := ipl.ParkingLot.Slot(slotNumber)
		labels = append(labels,
			attribute.String("status", "success"),
			attribute.String("slot_kind", slot.Kind.String()),
			attribute.String("vehicle_kind", vehicle.Kind.String()),
		)
		span.SetAttributes(
			attribute.String("vehicle.registration_number", vehicle.RegistrationNumber),
			attribute.String("vehicle.color", vehicle.Color),
		)
		span.AddEvent("slot_released")
		ipl.occupancyGauge.Add(ctx, -1,
			metric.WithAttributes(attribute.String("slot_kind", slot.Kind.String())))
		logging.Debug(ctx, "vehicle removed",
			"registration", vehicle.RegistrationNumber,
			"slot_number", slotNumber,
		)
	}

	ipl.leavingOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return vehicle, err
}

func (ipl *InstrumentedParkingLot) Status(ctx context.Context) []Slot {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.status")
	defer span.End()

	start := time.Now()
	status := ipl.ParkingLot.Status()

	span.SetAttributes(
		attribute.Int("occupied_slots_count", ipl.ParkingLot.Occupied()),
		attribute.Int("total_capacity", ipl.ParkingLot.Capacity()),
	)
	ipl.recordQuery(ctx, "status", start)

	return status
}

func (ipl *InstrumentedParkingLot) FindByRegistration(ctx context.Context, registrationNumber string) (Slot, bool) {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.find_by_registration",
		trace.WithAttributes(
			attribute.String("registration_number", registrationNumber),
		))
	defer span.End()

	start := time.Now()
	slot, found := ipl.ParkingLot.FindByRegistration(registrationNumber)

	if found {
		span.AddEvent("vehicle_found", trace.WithAttributes(
			attribute.Int("slot_number", slot.Number),
		))
	} else {
		span.AddEvent("vehicle_not_found")
	}
	ipl.recordQuery(ctx, "find_by_registration", start)

	return slot, found
}

func (ipl *InstrumentedParkingLot) FindByColor(ctx context.Context, color string) []Slot {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.find_by_color",
		trace.WithAttributes(
			attribute.String("vehicle.color", color),
		))
	defer span.End()

	start := time.Now()
	slots := ipl.ParkingLot.FindByColor(color)

	span.SetAttributes(attribute.Int("matched_slots_count", len(slots)))
	ipl.recordQuery(ctx, "find_by_color", start)

	return slots
}

func (ipl *InstrumentedParkingLot) EVChargeStatus(ctx context.Context) []ChargeEntry {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.ev_charge_status")
	defer span.End()

	start := time.Now()
	entries := ipl.ParkingLot.EVChargeStatus()

	span.SetAttributes(attribute.Int("electric_vehicles_count", len(entries)))
	ipl.recordQuery(ctx, "ev_charge_status", start)

	return entries
}

func (ipl *InstrumentedParkingLot) recordQuery(ctx context.Context, operation string, start time.Time) {
	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("status", "success"),
		))
}

func failureStatus(err error) string {
	switch {
	case errors.Is(err, ErrNoAvailableSlot):
		return "no_available_slot"
	case errors.Is(err, ErrAlreadyParked):
		return "already_parked"
	case errors.Is(err, ErrInvalidSlot):
		return "invalid_slot"
	case errors.Is(err, ErrSlotAlreadyEmpty):
		return "slot_already_empty"
	default:
		return "failed"
	}
}
