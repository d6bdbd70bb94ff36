package skinmetric

import "math"

const markerPadding = 4

// zoneRule places a marker at a fixed fraction of the face box. X and Y are
// the marker's top-left corner, all four are fractions of face width/height.
type zoneRule struct {
	key   string
	label string
	x     float64
	y     float64
	w     float64
	h     float64
}

var zoneTable = []zoneRule{
	{key: KeyForeheadWrinkle, label: "Forehead wrinkle", x: 0.5 - 0.25, y: 1.0 / 12, w: 0.5, h: 1.0 / 8},
	{key: KeyGlabellaWrinkle, label: "Glabella wrinkle", x: 0.5 - 1.0/16, y: 0.2, w: 1.0 / 8, h: 0.1},
	{key: KeyCrowsFeet, label: "Crow's feet", x: 1 - 1.0/8, y: 1.0 / 3, w: 1.0 / 8, h: 0.1},
	{key: KeyEyeFinelines, label: "Eye fine lines", x: 0.25 - 0.1, y: 1.0/3 + 1.0/12, w: 0.2, h: 1.0 / 16},
	{key: KeyDarkCircle, label: "Dark circle", x: 0.25 - 0.1, y: 1.0 / 3, w: 0.2, h: 0.1},
	{key: KeyEyePouch, label: "Eye pouch", x: 0.75 - 0.1, y: 1.0 / 3, w: 0.2, h: 0.1},
	{key: KeyNasolabialFold, label: "Nasolabial fold", x: 1 - 0.2, y: 0.5, w: 1.0 / 8, h: 0.2},
}

var detectionLabels = map[string]string{
	KeyAcne:     "Acne",
	KeyMole:     "Mole",
	KeySkinSpot: "Skin spot",
}

func BuildOverlays(r Result) Overlays {
	return Overlays{
		Acne:     DetectionMarkers(r, KeyAcne),
		Mole:     DetectionMarkers(r, KeyMole),
		SkinSpot: DetectionMarkers(r, KeySkinSpot),
		Zones:    ZoneMarkers(r),
	}
}

// DetectionMarkers returns one padded marker per detected rectangle, in the
// order the detection service listed them.
func DetectionMarkers(r Result, key string) []OverlayMarker {
	detections := r.Measurement(key).Detections
	markers := make([]OverlayMarker, 0, len(detections))

	label, ok := detectionLabels[key]
	if !ok {
		label = key
	}

	for _, d := range detections {
		markers = append(markers, OverlayMarker{
			X:                 d.Rect.Left,
			Y:                 d.Rect.Top,
			Width:             d.Rect.Width + markerPadding,
			Height:            d.Rect.Height + markerPadding,
			Label:             label,
			ConfidencePercent: percent(d.Confidence),
		})
	}

	return markers
}

func ZoneMarkers(r Result) []OverlayMarker {
	markers := make([]OverlayMarker, 0, len(zoneTable))

	face := r.FaceRectangle
	if face.Width <= 0 || face.Height <= 0 {
		return markers
	}

	for _, rule := range zoneTable {
		m := r.Measurement(rule.key)
		if m.Value <= 0 {
			continue
		}
		markers = append(markers, rule.place(face, m.Confidence))
	}

	return markers
}

func (z zoneRule) place(face Rect, confidence float64) OverlayMarker {
	w := float64(face.Width)
	h := float64(face.Height)

	return OverlayMarker{
		X:                 face.Left + round(z.x*w),
		Y:                 face.Top + round(z.y*h),
		Width:             round(z.w * w),
		Height:            round(z.h * h),
		Label:             z.label,
		ConfidencePercent: percent(confidence),
	}
}

func percent(confidence float64) int {
	return round(confidence * 100)
}

func round(v float64) int {
	return int(math.Round(v))
}
