package skinmetric

const (
	AreaAging        = "aging"
	AreaAcne         = "acne"
	AreaWrinkles     = "wrinkles"
	AreaPigmentation = "pigmentation"
	AreaDryness      = "dryness"
)

var adviceTable = map[string]AdviceCard{
	AreaAging: {
		Area:  AreaAging,
		Title: "Anti-aging",
		Tips: []string{
			"Use a vitamin C serum in the morning",
			"Moisturize with hyaluronic acid",
			"Apply retinol 2-3 evenings a week",
			"Wear SPF 50+ sunscreen every day",
		},
	},
	AreaAcne: {
		Area:  AreaAcne,
		Title: "Acne control",
		Tips: []string{
			"Wash your face twice a day with a gentle cleanser",
			"Use a pH-balancing toner",
			"Spot-treat with benzoyl peroxide",
			"Choose an oil-free moisturizer",
		},
	},
	AreaPigmentation: {
		Area:  AreaPigmentation,
		Title: "Dark spot treatment",
		Tips: []string{
			"Use a high-concentration vitamin C serum",
			"Add a niacinamide product",
			"Exfoliate chemically with AHA/BHA",
			"Consider laser therapy if spots persist",
		},
	},
	AreaDryness: {
		Area:  AreaDryness,
		Title: "Oil and moisture balance",
		Tips: []string{
			"Match the moisturizer weight to your skin type",
			"Layer hyaluronic acid on damp skin",
			"Avoid hot water and harsh foaming cleansers",
		},
	},
}

// AcneSeverity grades acne by how many lesions were detected.
func AcneSeverity(r Result) Severity {
	n := len(r.Measurement(KeyAcne).Detections)
	switch {
	case n == 0:
		return SeverityMild
	case n <= 5:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

func agingSeverity(status AgingStatus) Severity {
	switch status {
	case AgingConcerning:
		return SeveritySevere
	case AgingNormal:
		return SeverityModerate
	default:
		return SeverityMild
	}
}

// Advice returns the cards for every area that is at least Moderate, in a
// fixed area order.
func Advice(r Result, s DerivedScores) []AdviceCard {
	graded := []struct {
		area     string
		severity Severity
	}{
		{AreaAging, agingSeverity(s.AgingStatus)},
		{AreaAcne, AcneSeverity(r)},
		{AreaPigmentation, SeverityOf(s.Pigmentation)},
		{AreaDryness, SeverityOf(s.Dryness)},
	}

	cards := make([]AdviceCard, 0, len(graded))
	for _, g := range graded {
		if g.severity == SeverityMild {
			continue
		}
		card := adviceTable[g.area]
		card.Severity = g.severity
		card.Tips = append([]string(nil), card.Tips...)
		cards = append(cards, card)
	}

	return cards
}
