package claims

import "github.com/businessinrwanda/marketplace/internal/server/models"

// Progression of applications and proposals:
//
//	applied ──► reviewed ──► interview_scheduled ──► hired
//	   │            │                 │
//	   └────────────┴─────────────────┴──► rejected
//
// hired and rejected are terminal.
var applicationTransitions = map[models.ApplicationStatus][]models.ApplicationStatus{
	models.ApplicationApplied:            {models.ApplicationReviewed, models.ApplicationRejected},
	models.ApplicationReviewed:           {models.ApplicationInterviewScheduled, models.ApplicationRejected},
	models.ApplicationInterviewScheduled: {models.ApplicationHired, models.ApplicationRejected},
}

// IsTransitionAllowed reports whether an application or proposal may move
// from one status to another.
func IsTransitionAllowed(from, to models.ApplicationStatus) bool {
	for _, s := range applicationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist from s.
func IsTerminal(s models.ApplicationStatus) bool {
	_, ok := applicationTransitions[s]
	return !ok
}
