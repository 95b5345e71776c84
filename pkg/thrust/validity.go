package thrust

// Verdict is the overall validity assessment of a recording.
type Verdict string

const (
	HighlyValid     Verdict = "HIGHLY VALID"
	Valid           Verdict = "VALID"
	ModeratelyValid Verdict = "MODERATELY VALID"
	Questionable    Verdict = "QUESTIONABLE"
)

// MaxScore is the best achievable validity score.
const MaxScore = 4

var verdictDetails = map[Verdict]string{
	HighlyValid:     "Excellent repeatability",
	Valid:           "Good repeatability with minor variations",
	ModeratelyValid: "Acceptable with some concerns",
	Questionable:    "Poor repeatability, review test conditions",
}

// Detail is the explanation printed next to the verdict.
func (v Verdict) Detail() string {
	return verdictDetails[v]
}

// Validity scores how far a recording can be trusted.
type Validity struct {
	Score           int      `json:"score"`
	Verdict         Verdict  `json:"verdict"`
	Detail          string   `json:"detail"`
	Reliable        bool     `json:"reliable"`
	Recommendations []string `json:"recommendations"`
}

var (
	reliableRecommendations = []string{
		"Data shows good consistency between attempts",
		"Results are reliable for analysis and reporting",
		"Test methodology appears sound",
	}
	unreliableRecommendations = []string{
		"Consider reviewing test setup and conditions",
		"May need additional test runs for better statistics",
		"Check for external factors affecting measurements",
	}
)

// Assess scores one point for each of: peak, impulse and mean CV under 10%,
// and mean correlation above 0.90.
func Assess(peakCV, impulseCV, meanCV, meanCorrelation float64) Validity {
	score := 0
	for _, cv := range []float64{peakCV, impulseCV, meanCV} {
		if cv < 10 {
			score++
		}
	}
	if meanCorrelation > 0.90 {
		score++
	}

	var v Verdict
	switch score {
	case 4:
		v = HighlyValid
	case 3:
		v = Valid
	case 2:
		v = ModeratelyValid
	default:
		v = Questionable
	}

	reliable := score >= 3
	recs := unreliableRecommendations
	if reliable {
		recs = reliableRecommendations
	}

	return Validity{
		Score:           score,
		Verdict:         v,
		Detail:          v.Detail(),
		Reliable:        reliable,
		Recommendations: append([]string(nil), recs...),
	}
}
