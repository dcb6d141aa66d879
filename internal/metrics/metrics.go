// Package metrics exposes Prometheus counters for the reservation core.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "studyroom",
		Name:      "reservations_created_total",
		Help:      "Reservations successfully created.",
	})
	slotConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "studyroom",
		Name:      "reservation_slot_conflicts_total",
		Help:      "Booking attempts rejected because a slot was already claimed.",
	})
	checkins = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "studyroom",
		Name:      "checkins_total",
		Help:      "Successful check-ins.",
	})
	noShowsReclaimed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "studyroom",
		Name:      "no_shows_reclaimed_total",
		Help:      "Reservations cancelled for missing the check-in deadline.",
	})
)

// Register registers the counters with the default registry. Safe to call
// multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(reservationsCreated, slotConflicts, checkins, noShowsReclaimed)
	})
}

// IncReservationCreated counts a successful booking.
func IncReservationCreated() { reservationsCreated.Inc() }

// IncSlotConflict counts a booking rejected on the exclusivity check.
func IncSlotConflict() { slotConflicts.Inc() }

// IncCheckin counts a successful check-in.
func IncCheckin() { checkins.Inc() }

// IncNoShowReclaimed counts a reservation reclaimed as a no-show.
func IncNoShowReclaimed() { noShowsReclaimed.Inc() }
