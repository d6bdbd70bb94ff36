package skinmetric

import "math"

const (
	maxScore = 10

	// balancedSkinType is the combination skin code; dryness grows with the
	// distance from it in either direction.
	balancedSkinType = 2
)

var agingKeys = []string{
	KeyForeheadWrinkle,
	KeyCrowsFeet,
	KeyEyeFinelines,
	KeyGlabellaWrinkle,
	KeyNasolabialFold,
	KeyNasolabialFoldSeverity,
	KeyDarkCircle,
	KeyEyePouch,
}

var wrinkleKeys = []string{
	KeyForeheadWrinkle,
	KeyCrowsFeet,
	KeyEyeFinelines,
	KeyGlabellaWrinkle,
	KeyNasolabialFold,
}

func Derive(r Result) DerivedScores {
	score, status := AgingScore(r)

	return DerivedScores{
		AgingScore:   score,
		AgingStatus:  status,
		Wrinkles:     WrinklesScore(r),
		Pigmentation: PigmentationScore(r),
		Dryness:      DrynessScore(r),
	}
}

// AgingScore averages the eight aging measurements onto a 0-10 scale with one
// decimal.
func AgingScore(r Result) (float64, AgingStatus) {
	avg := average(r, agingKeys)
	score := math.Round(avg*5*10) / 10
	if math.IsNaN(score) {
		score = 0
	}
	score = math.Max(0, math.Min(maxScore, score))

	return score, ClassifyAging(score)
}

// ClassifyAging is first-match: exactly 5 and exactly 7 both land on Normal.
func ClassifyAging(score float64) AgingStatus {
	switch {
	case score < 3:
		return AgingExcellent
	case score < 5:
		return AgingGood
	case score > 7:
		return AgingConcerning
	default:
		return AgingNormal
	}
}

func WrinklesScore(r Result) int {
	return toScore(average(r, wrinkleKeys) * 5)
}

func PigmentationScore(r Result) int {
	var spots float64
	if r.Measurement(KeySkinSpot).Rectangles > 0 {
		spots = 2
	}

	return toScore((spots + r.Value(KeyBlackhead)) / 2 * 5)
}

// DrynessScore is zero when no skin type measurement was returned at all. An
// undetermined skin type (0) is still scored.
func DrynessScore(r Result) int {
	if !r.HasSkinType {
		return 0
	}

	distance := math.Abs(float64(r.SkinType - balancedSkinType))
	return toScore(distance*3 + 4)
}

func SeverityOf(score int) Severity {
	switch {
	case score <= 4:
		return SeverityMild
	case score <= 7:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

func Areas(s DerivedScores) []AreaScore {
	return []AreaScore{
		{Area: AreaWrinkles, Score: s.Wrinkles, Severity: SeverityOf(s.Wrinkles)},
		{Area: AreaPigmentation, Score: s.Pigmentation, Severity: SeverityOf(s.Pigmentation)},
		{Area: AreaDryness, Score: s.Dryness, Severity: SeverityOf(s.Dryness)},
	}
}

func average(r Result, keys []string) float64 {
	var sum float64
	for _, key := range keys {
		sum += r.Value(key)
	}
	return sum / float64(len(keys))
}

func toScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Max(0, math.Min(maxScore, math.Round(v))))
}
