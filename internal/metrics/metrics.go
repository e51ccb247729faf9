package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks ride settlement and promo activity.
type Metrics struct {
	RidesCompleted   prometheus.Counter
	FaresCharged     prometheus.Counter
	Reimbursements   prometheus.Counter
	PromoRedemptions prometheus.Counter
}

// New registers the counters on reg. Passing nil uses the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		RidesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "strappon_rides_completed_total",
			Help: "Total number of rides completed and settled",
		}),
		FaresCharged: factory.NewCounter(prometheus.CounterOpts{
			Name: "strappon_fares_charged_credits_total",
			Help: "Credits charged to passengers for completed rides",
		}),
		Reimbursements: factory.NewCounter(prometheus.CounterOpts{
			Name: "strappon_reimbursements_credits_total",
			Help: "Credits paid out to drivers for completed rides",
		}),
		PromoRedemptions: factory.NewCounter(prometheus.CounterOpts{
			Name: "strappon_promo_redemptions_total",
			Help: "Total number of promo codes redeemed",
		}),
	}
}

// RideSettled records a completed ride with its fare and reimbursement.
// Safe on a nil receiver.
func (m *Metrics) RideSettled(fare, reimbursement int64) {
	if m == nil {
		return
	}
	m.RidesCompleted.Inc()
	m.FaresCharged.Add(float64(fare))
	m.Reimbursements.Add(float64(reimbursement))
}

func (m *Metrics) PromoRedeemed() {
	if m == nil {
		return
	}
	m.PromoRedemptions.Inc()
}
