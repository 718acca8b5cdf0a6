package metrics

import "sort"

// FailureBucket is the failure count of one interaction for one reason.
type FailureBucket struct {
	Interaction string
	Reason      string
	Count       int
}

// FlattenFailureReasons converts Stats.FailureReasons into sorted rows: descending
// count, then interaction and reason for stability.
func FlattenFailureReasons(reasons map[string]map[string]int) []FailureBucket {
	if len(reasons) == 0 {
		return nil
	}
	rows := make([]FailureBucket, 0)
	for interaction, byReason := range reasons {
		for reason, count := range byReason {
			rows = append(rows, FailureBucket{Interaction: interaction, Reason: reason, Count: count})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			if rows[i].Interaction == rows[j].Interaction {
				return rows[i].Reason < rows[j].Reason
			}
			return rows[i].Interaction < rows[j].Interaction
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}
