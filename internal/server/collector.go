package server

import (
	"strconv"

	"easypark/internal/parking"

	"github.com/prometheus/client_golang/prometheus"
)

// lotSource exposes the current lot to a scrape. fn is skipped when no lot
// exists yet.
type lotSource interface {
	withLot(fn func(*parking.ParkingLot))
}

// lotCollector reports the state of the current lot at scrape time, so a
// replaced lot never leaves stale series behind.
type lotCollector struct {
	source lotSource

	slots    *prometheus.Desc
	occupied *prometheus.Desc
	charge   *prometheus.Desc
}

func newLotCollector(source lotSource) *lotCollector {
	return &lotCollector{
		source: source,
		slots: prometheus.NewDesc("easypark_slots",
			"Number of parking slots by kind.",
			[]string{"kind"}, nil),
		occupied: prometheus.NewDesc("easypark_slots_occupied",
			"Number of occupied parking slots by kind.",
			[]string{"kind"}, nil),
		charge: prometheus.NewDesc("easypark_ev_charge_percent",
			"Battery charge of each parked electric vehicle.",
			[]string{"slot"}, nil),
	}
}

func (c *lotCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.slots
	ch <- c.occupied
	ch <- c.charge
}

func (c *lotCollector) Collect(ch chan<- prometheus.Metric) {
	c.source.withLot(func(lot *parking.ParkingLot) {
		for _, kind := range []parking.SlotKind{parking.RegularSlot, parking.EVSlot} {
			ch <- prometheus.MustNewConstMetric(c.slots, prometheus.GaugeValue,
				float64(lot.CapacityByKind(kind)), kind.String())
			ch <- prometheus.MustNewConstMetric(c.occupied, prometheus.GaugeValue,
				float64(lot.OccupiedByKind(kind)), kind.String())
		}

		for _, e := range lot.EVChargeStatus() {
			ch <- prometheus.MustNewConstMetric(c.charge, prometheus.GaugeValue,
				float64(e.Level), strconv.Itoa(e.SlotNumber))
		}
	})
}
