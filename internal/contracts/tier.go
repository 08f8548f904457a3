package contracts

// Tier is a bucket of the overall score with its report marker
type Tier struct {
	Min    float64 `json:"min"`
	Marker string  `json:"marker"`
	Label  string  `json:"label"`
}

// Tiers are ordered highest first. Lower bounds are inclusive.
// ⭐ SSOT: 종합 점수 등급표
var Tiers = []Tier{
	{Min: 3.5, Marker: "🔥🔥", Label: "strong buy"},
	{Min: 3.25, Marker: "🔥", Label: "buy"},
	{Min: 2.75, Marker: "👍", Label: "positive"},
	{Min: 2.5, Marker: "👌", Label: "neutral"},
	{Min: 2.0, Marker: "🧐", Label: "watch"},
	{Min: 0, Marker: "👎", Label: "caution"},
}

// TierFor maps an overall score to its tier
func TierFor(score float64) Tier {
	for _, t := range Tiers {
		if score >= t.Min {
			return t
		}
	}
	return Tiers[len(Tiers)-1]
}
