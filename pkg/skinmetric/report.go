package skinmetric

var skinTypeNames = map[int]string{
	0: "Undetermined",
	1: "Dry",
	2: "Combination",
	3: "Oily",
}

func SkinTypeOf(r Result) SkinTypeInfo {
	name, ok := skinTypeNames[r.SkinType]
	if !ok {
		name = skinTypeNames[0]
	}
	return SkinTypeInfo{Code: r.SkinType, Name: name}
}

// BuildReport derives everything the presentation layer needs from an
// ingested result. It keeps no state between calls.
func BuildReport(r Result) Report {
	scores := Derive(r)

	warnings := append([]string{}, r.Warnings...)

	return Report{
		Scores:        scores,
		Areas:         Areas(scores),
		SkinType:      SkinTypeOf(r),
		Sensitivity:   r.Sensitivity,
		FaceRectangle: r.FaceRectangle,
		Overlays:      BuildOverlays(r),
		Warnings:      warnings,
		Advice:        Advice(r, scores),
	}
}

// Analyze ingests a raw detection response and builds its report.
func Analyze(data []byte) Report {
	return BuildReport(Ingest(data))
}
