package parking

// VehicleKind distinguishes standard vehicles from electric ones.
type VehicleKind int

const (
	Standard VehicleKind = iota
	Electric
)

func (k VehicleKind) String() string {
	if k == Electric {
		return "electric"
	}
	return "standard"
}

const (
	FullCharge = 100
	NoCharge   = 0
)

type Battery struct {
	Level int
}

// SetLevel clamps level to [NoCharge, FullCharge].
func (b *Battery) SetLevel(level int) {
	b.Level = max(NoCharge, min(FullCharge, level))
}

type Vehicle struct {
	RegistrationNumber string
	Make               string
	Model              string
	Color              string
	Kind               VehicleKind
	Motorcycle         bool

	// Battery is set only for electric vehicles.
	Battery *Battery
}

// NewVehicle builds the vehicle variant matching the electric flag. Electric
// vehicles start fully charged.
func NewVehicle(registrationNumber, vehicleMake, model, color string, isElectric, isMotorcycle bool) *Vehicle {
	v := &Vehicle{
		RegistrationNumber: registrationNumber,
		Make:               vehicleMake,
		Model:              model,
		Color:              color,
		Kind:               Standard,
		Motorcycle:         isMotorcycle,
	}

	if isElectric {
		v.Kind = Electric
		v.Battery = &Battery{Level: FullCharge}
	}

	return v
}

func (v *Vehicle) IsElectric() bool {
	return v.Kind == Electric
}

// Type returns the body type label shown to operators.
func (v *Vehicle) Type() string {
	if v.Motorcycle {
		return "Motorcycle"
	}
	return "Car"
}

// Charge returns the battery level, or NoCharge for standard vehicles.
func (v *Vehicle) Charge() int {
	if v.Battery == nil {
		return NoCharge
	}
	return v.Battery.Level
}

func (v *Vehicle) clone() *Vehicle {
	c := *v
	if v.Battery != nil {
		b := *v.Battery
		c.Battery = &b
	}
	return &c
}

type ChargeBand string

const (
	ChargeLow    ChargeBand = "low"
	ChargeMedium ChargeBand = "medium"
	ChargeHigh   ChargeBand = "high"
)

func ChargeBandFor(level int) ChargeBand {
	switch {
	case level < 20:
		return ChargeLow
	case level < 50:
		return ChargeMedium
	default:
		return ChargeHigh
	}
}
