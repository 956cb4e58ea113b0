package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"easypark/internal/logging"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Shell drives a single parking lot from line commands.
type Shell struct {
	parkingLot    *InstrumentedParkingLot
	scanner       *bufio.Scanner
	out           io.Writer
	telemetry     *TelemetryProvider
	defaultPolicy Policy
}

func NewShell(in io.Reader, out io.Writer, telemetry *TelemetryProvider, defaultPolicy Policy) *Shell {
	return &Shell{
		scanner:       bufio.NewScanner(in),
		out:           out,
		telemetry:     telemetry,
		defaultPolicy: defaultPolicy,
	}
}

func (s *Shell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for ctx.Err() == nil && s.scanner.Scan() {
		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	if err := s.scanner.Err(); err != nil {
		span.RecordError(err)
		logging.Error(ctx, "reading shell input", "error", err)
	}

	span.AddEvent("shell_ended")
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	parts := strings.Fields(input)
	command := parts[0]

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("command.name", command))

	switch command {
	case "create_parking_lot":
		s.handleCreateParkingLot(ctx, parts)
	case "park":
		if s.lotReady(span) {
			s.handlePark(ctx, parts)
		}
	case "leave":
		if s.lotReady(span) {
			s.handleLeave(ctx, parts)
		}
	case "status":
		if s.lotReady(span) {
			s.handleStatus(ctx)
		}
	case "slot_number_for_registration_number":
		if s.lotReady(span) {
			s.handleSlotNumberForRegistrationNumber(ctx, parts)
		}
	case "slot_numbers_for_cars_with_colour":
		if s.lotReady(span) {
			s.handleColour(ctx, parts, func(slot Slot) string { return strconv.Itoa(slot.Number) })
		}
	case "registration_numbers_for_cars_with_colour":
		if s.lotReady(span) {
			s.handleColour(ctx, parts, func(slot Slot) string { return slot.Vehicle.RegistrationNumber })
		}
	case "ev_charge_status":
		if s.lotReady(span) {
			s.handleEVChargeStatus(ctx)
		}
	default:
		span.AddEvent("unknown_command", trace.WithAttributes(
			attribute.String("unknown_command", command),
		))
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *Shell) lotReady(span trace.Span) bool {
	if s.parkingLot == nil {
		span.AddEvent("parking_lot_not_created")
		s.println("Parking lot not created")
		return false
	}
	return true
}

func (s *Shell) handleCreateParkingLot(ctx context.Context, parts []string) {
	if len(parts) != 4 && len(parts) != 5 {
		s.println("Usage: create_parking_lot <regular_slots> <ev_slots> <floors> [strict|permissive]")
		return
	}

	counts := make([]int, 3)
	for i, raw := range parts[1:4] {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.printf("Invalid number: %s\n", raw)
			return
		}
		counts[i] = n
	}

	policy := s.defaultPolicy
	if len(parts) == 5 {
		p, err := ParsePolicy(parts[4])
		if err != nil {
			s.printf("Error: %s\n", err)
			return
		}
		policy = p
	}

	lot, err := NewInstrumentedParkingLot(ctx, counts[0], counts[1], counts[2], policy, s.telemetry)
	if err != nil {
		s.printf("Error: %s\n", err)
		return
	}

	if s.parkingLot != nil {
		s.parkingLot.Retire(ctx)
	}
	s.parkingLot = lot
	s.printf("Created a parking lot with %d regular and %d EV slots per floor on %d floors (%d slots, %s policy)\n",
		counts[0], counts[1], counts[2], lot.Capacity(), policy)
}

func (s *Shell) handlePark(ctx context.Context, parts []string) {
	if len(parts) < 5 || len(parts) > 7 {
		s.println("Usage: park <registration_number> <colour> <make> <model> [ev] [motorcycle]")
		return
	}

	var isElectric, isMotorcycle bool
	for _, flag := range parts[5:] {
		switch strings.ToLower(flag) {
		case "ev":
			isElectric = true
		case "motorcycle":
			isMotorcycle = true
		default:
			s.printf("Unknown vehicle flag: %s\n", flag)
			return
		}
	}

	vehicle := NewVehicle(parts[1], parts[3], parts[4], parts[2], isElectric, isMotorcycle)

	slotNumber, err := s.parkingLot.Park(ctx, vehicle)
	switch {
	case errors.Is(err, ErrAlreadyParked):
		s.printf("Vehicle %s is already parked\n", vehicle.RegistrationNumber)
		return
	case err != nil:
		pool := RegularSlot
		if vehicle.IsElectric() {
			pool = EVSlot
		}
		s.printf("Sorry, %s parking lot is full\n", kindLabel(pool))
		return
	}

	slot, _ := s.parkingLot.Slot(slotNumber)
	s.printf("Allocated %s slot number: %d on floor %d for %s %s\n",
		kindLabel(slot.Kind), slotNumber, slot.Floor, vehicle.Type(), vehicle.RegistrationNumber)
}

func (s *Shell) handleLeave(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.println("Usage: leave <slot_number>")
		return
	}

	slotNumber, err := strconv.Atoi(parts[1])
	if err != nil {
		s.println("Invalid slot number")
		return
	}

	vehicle, err := s.parkingLot.Remove(ctx, slotNumber)
	if err != nil {
		s.printf("Error: %s\n", err)
		return
	}

	s.printf("Slot number %d is free, was %s\n", slotNumber, vehicle.RegistrationNumber)
}

func (s *Shell) handleStatus(ctx context.Context) {
	status := s.parkingLot.Status(ctx)

	s.println("Slot No.\tFloor\tKind\tRegistration No\tColour\tMake\tModel\tType")
	for _, slot := range status {
		if !slot.IsOccupied() {
			s.printf("%d\t%d\t%s\t(empty)\n", slot.Number, slot.Floor, kindLabel(slot.Kind))
			continue
		}
		v := slot.Vehicle
		s.printf("%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			slot.Number, slot.Floor, kindLabel(slot.Kind),
			v.RegistrationNumber, v.Color, v.Make, v.Model, v.Type())
	}
}

func (s *Shell) handleSlotNumberForRegistrationNumber(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.println("Usage: slot_number_for_registration_number <registration_number>")
		return
	}

	slot, found := s.parkingLot.FindByRegistration(ctx, parts[1])
	if !found {
		s.println("Not found")
		return
	}

	s.printf("%d\n", slot.Number)
}

func (s *Shell) handleColour(ctx context.Context, parts []string, field func(Slot) string) {
	if len(parts) != 2 {
		s.printf("Usage: %s <colour>\n", parts[0])
		return
	}

	slots := s.parkingLot.FindByColor(ctx, parts[1])
	if len(slots) == 0 {
		s.println("Not found")
		return
	}

	values := make([]string, len(slots))
	for i, slot := range slots {
		values[i] = field(slot)
	}
	s.println(strings.Join(values, ", "))
}

func (s *Shell) handleEVChargeStatus(ctx context.Context) {
	entries := s.parkingLot.EVChargeStatus(ctx)
	if len(entries) == 0 {
		s.println("No electric vehicles parked")
		return
	}

	s.println("Slot No.\tFloor\tRegistration No\tCharge %\tLevel")
	for _, e := range entries {
		s.printf("%d\t%d\t%s\t%d%%\t%s\n", e.SlotNumber, e.Floor, e.RegistrationNumber, e.Level, ChargeBandFor(e.Level))
	}
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}

func kindLabel(kind SlotKind) string {
	if kind == EVSlot {
		return "EV"
	}
	return "regular"
}
