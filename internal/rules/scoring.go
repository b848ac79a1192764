package rules

// ScoreInput carries the contact fields the lead score reads.
type ScoreInput struct {
	Email         string
	Phone         string
	Title         string
	Company       string
	IsCompetitor  bool
	ActivityCount int
}

// ScoreBreakdown itemizes the lead score so the UI can explain it.
type ScoreBreakdown struct {
	Base              int `json:"base"`
	Fields            int `json:"fields"`
	Seniority         int `json:"seniority"`
	Engagement        int `json:"engagement"`
	CompetitorPenalty int `json:"competitor_penalty"`
	Total             int `json:"total"`
}

const (
	scoreBase        = 10
	scoreEmail       = 10
	scorePhone       = 10
	scoreTitle       = 5
	scoreCompany     = 5
	scoreVIP         = 25
	scoreSenior      = 10
	competitorDemote = 30
	scoreMax         = 100
)

// ScoreLead computes the lead score: base + field presence + title seniority
// + engagement buckets - competitor penalty, clamped to [0, 100].
func (r *Ruleset) ScoreLead(in ScoreInput) ScoreBreakdown {
	b := ScoreBreakdown{Base: scoreBase}

	if in.Email != "" {
		b.Fields += scoreEmail
	}
	if in.Phone != "" {
		b.Fields += scorePhone
	}
	if in.Title != "" {
		b.Fields += scoreTitle
	}
	if in.Company != "" {
		b.Fields += scoreCompany
	}

	switch {
	case r.IsVIPTitle(in.Title):
		b.Seniority = scoreVIP
	case r.IsSeniorTitle(in.Title):
		b.Seniority = scoreSenior
	}

	b.Engagement = engagementPoints(in.ActivityCount)

	if in.IsCompetitor || r.IsCompetitor(in.Company) {
		b.CompetitorPenalty = -competitorDemote
	}

	total := b.Base + b.Fields + b.Seniority + b.Engagement + b.CompetitorPenalty
	if total < 0 {
		total = 0
	}
	if total > scoreMax {
		total = scoreMax
	}
	b.Total = total
	return b
}

func engagementPoints(activityCount int) int {
	switch {
	case activityCount <= 0:
		return 0
	case activityCount <= 2:
		return 5
	case activityCount <= 5:
		return 10
	case activityCount <= 10:
		return 15
	default:
		return 20
	}
}

// ChannelCounts tallies recent activity per channel for one contact.
type ChannelCounts struct {
	Email    int
	SMS      int
	Calls    int
	Meetings int
}

// ChannelScores sums per-channel engagement: email and sms weight their own
// history, calls and meetings count toward both as generic responsiveness.
func ChannelScores(c ChannelCounts) map[string]int {
	shared := 2*c.Calls + 3*c.Meetings
	return map[string]int{
		"email": 3*c.Email + shared,
		"sms":   4*c.SMS + shared,
	}
}

// PreferredChannel picks the higher-scoring channel; ties go to email, and
// sms is only eligible when the contact has a phone number.
func PreferredChannel(c ChannelCounts, hasPhone bool) string {
	scores := ChannelScores(c)
	if hasPhone && scores["sms"] > scores["email"] {
		return "sms"
	}
	return "email"
}
