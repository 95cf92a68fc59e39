// internal/workers/matching/notify-match-results/models.go
package notifymatchresults

type Input struct {
	UserID        string       `json:"userId"`
	Email         string       `json:"email"`
	PhoneNumber   string       `json:"phoneNumber,omitempty"`
	TopMatches    []MatchBrief `json:"topMatches"`
	TotalEligible int          `json:"totalEligible"`
}

// MatchBrief is the slim projection of a match result carried through the
// process instance; the full rationale stays with the matching output.
type MatchBrief struct {
	ProgramID   string  `json:"programId"`
	ProgramName string  `json:"programName"`
	University  string  `json:"university"`
	Score       float64 `json:"score"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	EmailSent      bool   `json:"emailSent"`
	SMSSent        bool   `json:"smsSent"`
}
