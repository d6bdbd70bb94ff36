package skinmetric

import (
	"math"

	jsoniter "github.com/json-iterator/go"
)

// Ingest reads a detection response document into a Result. It never fails:
// a missing field, a value of the wrong JSON type or an undecodable document
// all read as the zero default.
func Ingest(data []byte) Result {
	res := Result{
		Measurements: map[string]Measurement{},
		Warnings:     []string{},
	}

	if !jsoniter.Valid(data) {
		return res
	}

	doc := jsoniter.Get(data)
	if doc.ValueType() != jsoniter.ObjectValue {
		return res
	}

	res.FaceRectangle = readRect(doc.Get("face_rectangle"))

	for _, w := range elements(doc.Get("warning")) {
		if w.ValueType() == jsoniter.StringValue {
			res.Warnings = append(res.Warnings, w.ToString())
		}
	}

	result := doc.Get("result")
	if result.ValueType() != jsoniter.ObjectValue {
		return res
	}

	for key, raw := range fields(result) {
		if raw.ValueType() != jsoniter.ObjectValue {
			continue
		}
		res.Measurements[key] = readMeasurement(raw)
	}

	if skinType := result.Get(KeySkinType); skinType.ValueType() == jsoniter.ObjectValue {
		res.HasSkinType = true
		res.SkinType = int(math.Round(number(skinType.Get("skin_type"))))
	}

	sensitivity := result.Get(KeySensitivity)
	res.Sensitivity = Sensitivity{
		Area:      number(sensitivity.Get("sensitivity_area")),
		Intensity: number(sensitivity.Get("sensitivity_intensity")),
	}

	return res
}

func readMeasurement(raw jsoniter.Any) Measurement {
	m := Measurement{
		Value: number(raw.Get("value")),
	}

	confidence := raw.Get("confidence")
	if confidence.ValueType() == jsoniter.NumberValue {
		m.Confidence = confidence.ToFloat64()
	}

	rects := elements(raw.Get("rectangle"))
	m.Rectangles = len(rects)
	confidences := elements(confidence)

	// Confidences stay aligned with the original rectangle index even when a
	// malformed rectangle entry is dropped.
	for i, entry := range rects {
		if entry.ValueType() != jsoniter.ObjectValue {
			continue
		}

		d := Detection{Rect: readRect(entry)}
		if i < len(confidences) {
			d.Confidence = number(confidences[i])
		}
		m.Detections = append(m.Detections, d)
	}

	return m
}

// elements decodes an array in a single pass. Indexing a lazy Any re-scans the
// array from the start on every call.
func elements(raw jsoniter.Any) []jsoniter.Any {
	if raw.ValueType() != jsoniter.ArrayValue {
		return nil
	}

	var out []jsoniter.Any
	raw.ToVal(&out)
	return out
}

func fields(raw jsoniter.Any) map[string]jsoniter.Any {
	if raw.ValueType() != jsoniter.ObjectValue {
		return nil
	}

	out := map[string]jsoniter.Any{}
	raw.ToVal(&out)
	return out
}

func readRect(raw jsoniter.Any) Rect {
	if raw.ValueType() != jsoniter.ObjectValue {
		return Rect{}
	}

	return Rect{
		Left:   pixel(raw.Get("left")),
		Top:    pixel(raw.Get("top")),
		Width:  pixel(raw.Get("width")),
		Height: pixel(raw.Get("height")),
	}
}

func number(raw jsoniter.Any) float64 {
	if raw.ValueType() != jsoniter.NumberValue {
		return 0
	}

	v := raw.ToFloat64()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func pixel(raw jsoniter.Any) int {
	return int(math.Round(number(raw)))
}
