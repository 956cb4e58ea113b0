package parking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoAvailableSlot  = errors.New("no available slot")
	ErrInvalidSlot      = errors.New("invalid slot number")
	ErrSlotAlreadyEmpty = errors.New("slot is already empty")
	ErrAlreadyParked    = errors.New("vehicle is already parked")
	ErrInvalidLotSize   = errors.New("invalid parking lot size")
)

// ParkingLot holds every slot of every floor. Slots are numbered from 1,
// floor by floor, regular slots before EV slots within a floor. It is not
// safe for concurrent use.
type ParkingLot struct {
	regularPerFloor int
	evPerFloor      int
	floors          int
	policy          Policy
	slots           []*Slot
}

// MaxSlots bounds the total number of slots a lot may hold.
const MaxSlots = 100_000

type ChargeEntry struct {
	SlotNumber         int
	Floor              int
	SlotKind           SlotKind
	RegistrationNumber string
	Level              int
}

func NewParkingLot(regularPerFloor, evPerFloor, floors int, policy Policy) (*ParkingLot, error) {
	if floors < 1 || regularPerFloor < 0 || evPerFloor < 0 || regularPerFloor+evPerFloor == 0 {
		return nil, fmt.Errorf("%w: %d regular and %d ev slots on %d floors",
			ErrInvalidLotSize, regularPerFloor, evPerFloor, floors)
	}
	// Compare before adding or multiplying so huge inputs cannot overflow.
	if regularPerFloor > MaxSlots || evPerFloor > MaxSlots ||
		floors > MaxSlots/(regularPerFloor+evPerFloor) {
		return nil, fmt.Errorf("%w: more than %d slots", ErrInvalidLotSize, MaxSlots)
	}

	slots := make([]*Slot, 0, floors*(regularPerFloor+evPerFloor))
	for floor := 1; floor <= floors; floor++ {
		for i := 0; i < regularPerFloor; i++ {
			slots = append(slots, NewSlot(len(slots)+1, floor, RegularSlot))
		}
		for i := 0; i < evPerFloor; i++ {
			slots = append(slots, NewSlot(len(slots)+1, floor, EVSlot))
		}
	}

	return &ParkingLot{
		regularPerFloor: regularPerFloor,
		evPerFloor:      evPerFloor,
		floors:          floors,
		policy:          policy,
		slots:           slots,
	}, nil
}

func (pl *ParkingLot) Capacity() int {
	return len(pl.slots)
}

// CapacityByKind returns the total number of slots of the given kind.
func (pl *ParkingLot) CapacityByKind(kind SlotKind) int {
	if kind == EVSlot {
		return pl.evPerFloor * pl.floors
	}
	return pl.regularPerFloor * pl.floors
}

func (pl *ParkingLot) Floors() int {
	return pl.floors
}

func (pl *ParkingLot) Policy() Policy {
	return pl.policy
}

func (pl *ParkingLot) Occupied() int {
	n := 0
	for _, slot := range pl.slots {
		if slot.IsOccupied() {
			n++
		}
	}
	return n
}

// OccupiedByKind counts occupied slots of the given kind.
func (pl *ParkingLot) OccupiedByKind(kind SlotKind) int {
	n := 0
	for _, slot := range pl.slots {
		if slot.Kind == kind && slot.IsOccupied() {
			n++
		}
	}
	return n
}

// Park assigns the vehicle to the first empty slot that accepts it and
// returns the slot number.
func (pl *ParkingLot) Park(vehicle *Vehicle) (int, error) {
	if _, found := pl.FindByRegistration(vehicle.RegistrationNumber); found {
		return 0, fmt.Errorf("%w: %s", ErrAlreadyParked, vehicle.RegistrationNumber)
	}

	for _, slot := range pl.slots {
		if !slot.IsOccupied() && pl.policy.Accepts(slot.Kind, vehicle) {
			slot.Park(vehicle)
			return slot.Number, nil
		}
	}
	return 0, fmt.Errorf("%w for %s vehicle", ErrNoAvailableSlot, vehicle.Kind)
}

// Remove empties the slot and returns the vehicle that occupied it.
func (pl *ParkingLot) Remove(slotNumber int) (*Vehicle, error) {
	slot, err := pl.slot(slotNumber)
	if err != nil {
		return nil, err
	}

	if !slot.IsOccupied() {
		return nil, fmt.Errorf("%w: %d", ErrSlotAlreadyEmpty, slotNumber)
	}

	return slot.Leave(), nil
}

// Slot returns a snapshot of a single slot.
func (pl *ParkingLot) Slot(slotNumber int) (Slot, error) {
	slot, err := pl.slot(slotNumber)
	if err != nil {
		return Slot{}, err
	}
	return slot.snapshot(), nil
}

func (pl *ParkingLot) slot(slotNumber int) (*Slot, error) {
	if slotNumber < 1 || slotNumber > len(pl.slots) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlot, slotNumber)
	}
	return pl.slots[slotNumber-1], nil
}

// Status lists every slot in numbering order, empty ones included.
func (pl *ParkingLot) Status() []Slot {
	status := make([]Slot, 0, len(pl.slots))
	for _, slot := range pl.slots {
		status = append(status, slot.snapshot())
	}
	return status
}

// OccupiedSlots lists only occupied slots in numbering order.
func (pl *ParkingLot) OccupiedSlots() []Slot {
	var occupied []Slot
	for _, slot := range pl.slots {
		if slot.IsOccupied() {
			occupied = append(occupied, slot.snapshot())
		}
	}
	return occupied
}

func (pl *ParkingLot) FindByRegistration(registrationNumber string) (Slot, bool) {
	for _, slot := range pl.slots {
		if slot.IsOccupied() && slot.Vehicle.RegistrationNumber == registrationNumber {
			return slot.snapshot(), true
		}
	}
	return Slot{}, false
}

// FindByColor matches colors case-insensitively.
func (pl *ParkingLot) FindByColor(color string) []Slot {
	var matches []Slot
	for _, slot := range pl.slots {
		if slot.IsOccupied() && strings.EqualFold(slot.Vehicle.Color, color) {
			matches = append(matches, slot.snapshot())
		}
	}
	return matches
}

// EVChargeStatus reports the charge of every parked electric vehicle.
func (pl *ParkingLot) EVChargeStatus() []ChargeEntry {
	var entries []ChargeEntry
	for _, slot := range pl.slots {
		if !slot.IsOccupied() || !slot.Vehicle.IsElectric() {
			continue
		}
		entries = append(entries, ChargeEntry{
			SlotNumber:         slot.Number,
			Floor:              slot.Floor,
			SlotKind:           slot.Kind,
			RegistrationNumber: slot.Vehicle.RegistrationNumber,
			Level:              slot.Vehicle.Charge(),
		})
	}
	return entries
}
