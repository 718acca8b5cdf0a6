package workload

// Interaction identifies one of the three workload interactions.
type Interaction int

const (
	InteractionRare Interaction = iota
	InteractionFrequent
	InteractionCustomer
)

// Interactions lists every interaction in routing order.
var Interactions = []Interaction{InteractionRare, InteractionFrequent, InteractionCustomer}

func (i Interaction) String() string {
	switch i {
	case InteractionRare:
		return "rare"
	case InteractionFrequent:
		return "frequent"
	case InteractionCustomer:
		return "customer"
	default:
		return "unknown"
	}
}

// Route maps a draw r in [0, 100) to an interaction. Comparisons are strict, so a
// draw equal to a threshold falls through to the next branch.
func Route(r, rareThreshold, frequentThreshold float64) Interaction {
	switch {
	case r < rareThreshold:
		return InteractionRare
	case r < frequentThreshold:
		return InteractionFrequent
	default:
		return InteractionCustomer
	}
}
