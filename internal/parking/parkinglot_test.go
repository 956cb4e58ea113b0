package parking

import (
	"errors"
	"math"
	"testing"
)

func newLot(t *testing.T, regular, ev, floors int, policy Policy) *ParkingLot {
	t.Helper()
	pl, err := NewParkingLot(regular, ev, floors, policy)
	if err != nil {
		t.Fatalf("Unexpected error creating lot: %v", err)
	}
	return pl
}

func car(reg, color string) *Vehicle {
	return NewVehicle(reg, "Toyota", "Corolla", color, false, false)
}

func ev(reg, color string) *Vehicle {
	return NewVehicle(reg, "Tesla", "Model 3", color, true, false)
}

func TestNewParkingLot(t *testing.T) {
	pl := newLot(t, 3, 2, 2, PolicyStrict)

	if pl.Capacity() != 10 {
		t.Errorf("Expected capacity 10, got %d", pl.Capacity())
	}

	if pl.CapacityByKind(RegularSlot) != 6 || pl.CapacityByKind(EVSlot) != 4 {
		t.Errorf("Expected 6 regular and 4 EV slots, got %d and %d",
			pl.CapacityByKind(RegularSlot), pl.CapacityByKind(EVSlot))
	}

	expected := []struct {
		floor int
		kind  SlotKind
	}{
		{1, RegularSlot}, {1, RegularSlot}, {1, RegularSlot}, {1, EVSlot}, {1, EVSlot},
		{2, RegularSlot}, {2, RegularSlot}, {2, RegularSlot}, {2, EVSlot}, {2, EVSlot},
	}

	status := pl.Status()
	if len(status) != len(expected) {
		t.Fatalf("Expected %d slots, got %d", len(expected), len(status))
	}

	for i, slot := range status {
		if slot.Number != i+1 {
			t.Errorf("Expected slot number %d, got %d", i+1, slot.Number)
		}
		if slot.Floor != expected[i].floor || slot.Kind != expected[i].kind {
			t.Errorf("Slot %d: expected floor %d %s, got floor %d %s",
				slot.Number, expected[i].floor, expected[i].kind, slot.Floor, slot.Kind)
		}
		if slot.IsOccupied() {
			t.Errorf("Expected slot %d to be unoccupied", slot.Number)
		}
	}
}

func TestNewParkingLotRejectsInvalidSizes(t *testing.T) {
	tests := []struct {
		name                string
		regular, ev, floors int
	}{
		{"no floors", 2, 1, 0},
		{"negative floors", 2, 1, -1},
		{"negative regular", -1, 1, 1},
		{"negative ev", 1, -1, 1},
		{"no slots", 0, 0, 3},
		{"too many slots", MaxSlots, 1, 1},
		{"too many floors", 10, 0, MaxSlots/10 + 1},
		{"huge regular count", 1 << 40, 0, 1},
		{"overflowing product", 1 << 62, 0, 4},
		{"overflowing sum", math.MaxInt, math.MaxInt, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParkingLot(tt.regular, tt.ev, tt.floors, PolicyStrict)
			if !errors.Is(err, ErrInvalidLotSize) {
				t.Errorf("Expected ErrInvalidLotSize, got %v", err)
			}
		})
	}
}

func TestNewParkingLotAcceptsMaxSlots(t *testing.T) {
	pl := newLot(t, MaxSlots/4, MaxSlots/4, 2, PolicyStrict)

	if pl.Capacity() != MaxSlots {
		t.Errorf("Expected capacity %d, got %d", MaxSlots, pl.Capacity())
	}
}

func TestStatusSizeForManyShapes(t *testing.T) {
	for r := 0; r <= 3; r++ {
		for e := 0; e <= 3; e++ {
			for f := 1; f <= 3; f++ {
				if r+e == 0 {
					continue
				}
				pl := newLot(t, r, e, f, PolicyStrict)
				status := pl.Status()
				if len(status) != f*(r+e) {
					t.Errorf("r=%d e=%d f=%d: expected %d entries, got %d", r, e, f, f*(r+e), len(status))
				}
				for _, slot := range status {
					if slot.IsOccupied() {
						t.Errorf("r=%d e=%d f=%d: slot %d occupied on creation", r, e, f, slot.Number)
					}
				}
			}
		}
	}
}

func TestParkingLotScenarioStrict(t *testing.T) {
	pl := newLot(t, 2, 1, 1, PolicyStrict)

	slotNumber, err := pl.Park(car("ABC123", "White"))
	if err != nil || slotNumber != 1 {
		t.Errorf("Expected slot 1, got %d (%v)", slotNumber, err)
	}

	slotNumber, err = pl.Park(ev("EV001", "Red"))
	if err != nil || slotNumber != 3 {
		t.Errorf("Expected EV slot 3, got %d (%v)", slotNumber, err)
	}

	slotNumber, err = pl.Park(car("XYZ789", "Black"))
	if err != nil || slotNumber != 2 {
		t.Errorf("Expected slot 2, got %d (%v)", slotNumber, err)
	}

	_, err = pl.Park(car("LATE001", "Blue"))
	if !errors.Is(err, ErrNoAvailableSlot) {
		t.Errorf("Expected ErrNoAvailableSlot, got %v", err)
	}

	charges := pl.EVChargeStatus()
	if len(charges) != 1 {
		t.Fatalf("Expected 1 charge entry, got %d", len(charges))
	}
	if charges[0].RegistrationNumber != "EV001" || charges[0].Level != FullCharge || charges[0].SlotNumber != 3 {
		t.Errorf("Unexpected charge entry: %+v", charges[0])
	}
}

func TestParkingLotScenarioPermissive(t *testing.T) {
	pl := newLot(t, 2, 1, 1, PolicyPermissive)

	if n, _ := pl.Park(car("ABC123", "White")); n != 1 {
		t.Errorf("Expected slot 1, got %d", n)
	}

	slotNumber, err := pl.Park(ev("EV001", "Red"))
	if err != nil || slotNumber != 2 {
		t.Errorf("Expected EV to take regular slot 2, got %d (%v)", slotNumber, err)
	}

	_, err = pl.Park(car("XYZ789", "Black"))
	if !errors.Is(err, ErrNoAvailableSlot) {
		t.Errorf("Expected ErrNoAvailableSlot, got %v", err)
	}

	slotNumber, err = pl.Park(ev("EV002", "Blue"))
	if err != nil || slotNumber != 3 {
		t.Errorf("Expected second EV in slot 3, got %d (%v)", slotNumber, err)
	}

	charges := pl.EVChargeStatus()
	if len(charges) != 2 {
		t.Fatalf("Expected 2 charge entries, got %d", len(charges))
	}
	if charges[0].SlotKind != RegularSlot || charges[1].SlotKind != EVSlot {
		t.Errorf("Unexpected charge entries: %+v", charges)
	}
}

func TestStrictPolicyKeepsKindsApart(t *testing.T) {
	pl := newLot(t, 1, 1, 1, PolicyStrict)

	if _, err := pl.Park(ev("EV001", "Red")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err := pl.Park(ev("EV002", "Red"))
	if !errors.Is(err, ErrNoAvailableSlot) {
		t.Errorf("Expected EV to be refused a regular slot, got %v", err)
	}

	if _, err := pl.Park(car("ABC123", "White")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err = pl.Park(car("XYZ789", "White"))
	if !errors.Is(err, ErrNoAvailableSlot) {
		t.Errorf("Expected car to be refused, got %v", err)
	}
}

func TestEVSlotsNeverTakeStandardVehicles(t *testing.T) {
	for _, policy := range []Policy{PolicyStrict, PolicyPermissive} {
		pl := newLot(t, 0, 2, 1, policy)
		_, err := pl.Park(car("ABC123", "White"))
		if !errors.Is(err, ErrNoAvailableSlot) {
			t.Errorf("%s: expected ErrNoAvailableSlot, got %v", policy, err)
		}
	}
}

func TestFailedParkLeavesOccupancyUnchanged(t *testing.T) {
	pl := newLot(t, 1, 0, 1, PolicyStrict)
	pl.Park(car("ABC123", "White"))

	before := pl.Status()
	if _, err := pl.Park(car("XYZ789", "White")); err == nil {
		t.Fatal("Expected error when lot is full")
	}
	after := pl.Status()

	if len(before) != len(after) || after[0].Vehicle.RegistrationNumber != "ABC123" {
		t.Errorf("Occupancy changed after failed park: %+v", after)
	}
}

func TestParkRejectsDuplicateRegistration(t *testing.T) {
	pl := newLot(t, 3, 0, 1, PolicyStrict)
	pl.Park(car("ABC123", "White"))

	_, err := pl.Park(car("ABC123", "Black"))
	if !errors.Is(err, ErrAlreadyParked) {
		t.Errorf("Expected ErrAlreadyParked, got %v", err)
	}

	if pl.Occupied() != 1 {
		t.Errorf("Expected 1 occupied slot, got %d", pl.Occupied())
	}
}

func TestParkingLotRemove(t *testing.T) {
	pl := newLot(t, 3, 0, 1, PolicyStrict)
	pl.Park(car("KA01HH1234", "White"))
	pl.Park(car("KA01HH9999", "Black"))

	vehicle, err := pl.Remove(1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if vehicle.RegistrationNumber != "KA01HH1234" {
		t.Errorf("Expected removed vehicle KA01HH1234, got %s", vehicle.RegistrationNumber)
	}

	slotNumber, err := pl.Park(car("KA01BB0001", "Red"))
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if slotNumber != 1 {
		t.Errorf("Expected to reuse slot 1, got slot %d", slotNumber)
	}
}

func TestParkThenRemoveRestoresState(t *testing.T) {
	pl := newLot(t, 2, 2, 2, PolicyStrict)
	pl.Park(car("ABC123", "White"))
	before := pl.Status()

	slotNumber, _ := pl.Park(ev("EV001", "Red"))
	if _, err := pl.Remove(slotNumber); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	after := pl.Status()
	for i := range before {
		if before[i].IsOccupied() != after[i].IsOccupied() {
			t.Errorf("Slot %d occupancy differs after round trip", before[i].Number)
		}
	}
}

func TestParkingLotRemoveErrors(t *testing.T) {
	pl := newLot(t, 2, 1, 1, PolicyStrict)

	for _, n := range []int{0, -1, 4, 100} {
		if _, err := pl.Remove(n); !errors.Is(err, ErrInvalidSlot) {
			t.Errorf("Remove(%d): expected ErrInvalidSlot, got %v", n, err)
		}
	}

	if _, err := pl.Remove(2); !errors.Is(err, ErrSlotAlreadyEmpty) {
		t.Errorf("Expected ErrSlotAlreadyEmpty, got %v", err)
	}
}

func TestParkingLotFindByRegistration(t *testing.T) {
	pl := newLot(t, 3, 0, 1, PolicyStrict)
	pl.Park(car("KA01HH1234", "White"))
	pl.Park(car("KA01HH9999", "Black"))

	slot, found := pl.FindByRegistration("KA01HH9999")
	if !found || slot.Number != 2 {
		t.Errorf("Expected slot 2, got %d (found=%v)", slot.Number, found)
	}

	pl.Remove(2)

	if _, found := pl.FindByRegistration("KA01HH9999"); found {
		t.Error("Expected vehicle not to be found after removal")
	}

	if _, found := pl.FindByRegistration("NOTFOUND"); found {
		t.Error("Expected unknown registration not to be found")
	}
}

func TestParkingLotFindByColor(t *testing.T) {
	pl := newLot(t, 4, 2, 1, PolicyStrict)
	pl.Park(car("KA01HH1234", "White"))
	pl.Park(car("KA01HH9999", "Black"))
	pl.Park(ev("EV001", "white"))
	pl.Park(car("KA01BB0001", "WHITE"))

	slots := pl.FindByColor("White")
	expected := []int{1, 3, 5}

	if len(slots) != len(expected) {
		t.Fatalf("Expected %d slots, got %d", len(expected), len(slots))
	}
	for i, slot := range slots {
		if slot.Number != expected[i] {
			t.Errorf("Expected slot %d at position %d, got %d", expected[i], i, slot.Number)
		}
	}

	if got := pl.FindByColor("Green"); len(got) != 0 {
		t.Errorf("Expected no matches, got %d", len(got))
	}
}

func TestParkingLotStatusAfterLeave(t *testing.T) {
	pl := newLot(t, 6, 0, 1, PolicyStrict)
	pl.Park(car("KA01HH1234", "White"))
	pl.Park(car("KA01HH9999", "White"))
	pl.Park(car("KA01BB0001", "Black"))
	pl.Park(car("KA01HH7777", "Red"))
	pl.Park(car("KA01HH2701", "Blue"))
	pl.Park(car("KA01HH3141", "Black"))

	pl.Remove(4)

	occupied := pl.OccupiedSlots()
	expectedSlots := []int{1, 2, 3, 5, 6}

	if len(occupied) != len(expectedSlots) {
		t.Errorf("Expected %d occupied slots, got %d", len(expectedSlots), len(occupied))
	}

	for i, slot := range occupied {
		if slot.Number != expectedSlots[i] {
			t.Errorf("Expected slot number %d at position %d, got %d", expectedSlots[i], i, slot.Number)
		}
	}

	status := pl.Status()
	if status[3].IsOccupied() {
		t.Error("Expected slot 4 to be empty in status")
	}
}

func TestQueriesDoNotExposeLotState(t *testing.T) {
	pl := newLot(t, 1, 0, 1, PolicyStrict)
	pl.Park(car("ABC123", "White"))

	status := pl.Status()
	status[0].Vehicle.RegistrationNumber = "CHANGED"
	status[0].Vehicle = nil

	if _, found := pl.FindByRegistration("ABC123"); !found {
		t.Error("Expected lot to be unaffected by changes to a status snapshot")
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{
		"":            PolicyStrict,
		"strict":      PolicyStrict,
		"Permissive":  PolicyPermissive,
		" permissive": PolicyPermissive,
	} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Errorf("ParsePolicy(%q): expected %s, got %s (%v)", in, want, got, err)
		}
	}

	if _, err := ParsePolicy("exclusive"); err == nil {
		t.Error("Expected error for unknown policy")
	}
}
