package parking

type SlotKind int

const (
	RegularSlot SlotKind = iota
	EVSlot
)

func (k SlotKind) String() string {
	if k == EVSlot {
		return "ev"
	}
	return "regular"
}

type Slot struct {
	Number  int
	Floor   int
	Kind    SlotKind
	Vehicle *Vehicle
}

func NewSlot(number, floor int, kind SlotKind) *Slot {
	return &Slot{
		Number:  number,
		Floor:   floor,
		Kind:    kind,
		Vehicle: nil,
	}
}

func (s *Slot) IsOccupied() bool {
	return s.Vehicle != nil
}

func (s *Slot) Park(vehicle *Vehicle) {
	s.Vehicle = vehicle
}

func (s *Slot) Leave() *Vehicle {
	vehicle := s.Vehicle
	s.Vehicle = nil
	return vehicle
}

// snapshot returns a detached copy safe to hand out of the lot.
func (s *Slot) snapshot() Slot {
	c := *s
	if s.Vehicle != nil {
		c.Vehicle = s.Vehicle.clone()
	}
	return c
}
