package plan

import (
	"time"

	"github.com/google/uuid"

	"fleetopt/internal/model"
)

const (
	// Delivery window granted to freshly produced goods.
	producedWindowStart = 75 * time.Minute
	producedWindowEnd   = 4 * time.Hour
)

// Composer merges pending orders with recent factory output into the demand
// set for a reoptimization pass.
type Composer struct {
	Factory  model.GeoPoint
	Lookback time.Duration // batches older than now-Lookback are dropped
}

// Compose returns pending orders verbatim, then one synthesized demand per
// production batch timestamped strictly after now-Lookback. Provider order
// is preserved within each group. A batch still inside the window on the
// next pass is composed again; dedup by batch identity is intentionally not
// done here.
func (c Composer) Compose(pending []model.DeliveryDemand, batches []model.FactoryProduction, now time.Time) []model.DeliveryDemand {
	out := make([]model.DeliveryDemand, 0, len(pending)+len(batches))
	out = append(out, pending...)
	cutoff := now.Add(-c.Lookback)
	for _, b := range batches {
		if !b.Timestamp.After(cutoff) {
			continue
		}
		out = append(out, model.DeliveryDemand{
			ID:          uuid.New().String(),
			ProductType: b.ProductType,
			Quantity:    b.Amount,
			Location:    c.Factory,
			Window: model.TimeWindow{
				Start: now.Add(producedWindowStart),
				End:   now.Add(producedWindowEnd),
			},
		})
	}
	return out
}
