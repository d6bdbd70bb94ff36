package skinmetric

const (
	KeyForeheadWrinkle        = "forehead_wrinkle"
	KeyCrowsFeet              = "crows_feet"
	KeyEyeFinelines           = "eye_finelines"
	KeyGlabellaWrinkle        = "glabella_wrinkle"
	KeyNasolabialFold         = "nasolabial_fold"
	KeyNasolabialFoldSeverity = "nasolabial_fold_severity"
	KeyDarkCircle             = "dark_circle"
	KeyEyePouch               = "eye_pouch"
	KeyAcne                   = "acne"
	KeyMole                   = "mole"
	KeySkinSpot               = "skin_spot"
	KeyBlackhead              = "blackhead"
	KeySkinType               = "skin_type"
	KeySensitivity            = "sensitivity"
)

type Rect struct {
	Left   int `json:"left" yaml:"left"`
	Top    int `json:"top" yaml:"top"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Detection pairs a detected rectangle with the confidence reported at the
// same index of the measurement's confidence list.
type Detection struct {
	Rect       Rect
	Confidence float64
}

// Rectangles counts every entry of the rectangle list, including malformed
// ones that produced no Detection.
type Measurement struct {
	Value      float64
	Confidence float64
	Rectangles int
	Detections []Detection
}

type Sensitivity struct {
	Area      float64 `json:"area" yaml:"area"`
	Intensity float64 `json:"intensity" yaml:"intensity"`
}

// Result is the fully defaulted view of a detection response. Every lookup on
// it is total.
type Result struct {
	Measurements  map[string]Measurement
	SkinType      int
	HasSkinType   bool
	Sensitivity   Sensitivity
	FaceRectangle Rect
	Warnings      []string
}

func (r Result) Measurement(key string) Measurement {
	return r.Measurements[key]
}

func (r Result) Value(key string) float64 {
	return r.Measurements[key].Value
}

type AgingStatus string

const (
	AgingExcellent  AgingStatus = "Excellent"
	AgingGood       AgingStatus = "Good"
	AgingNormal     AgingStatus = "Normal"
	AgingConcerning AgingStatus = "Concerning"
)

type DerivedScores struct {
	AgingScore   float64     `json:"aging_score" yaml:"aging_score"`
	AgingStatus  AgingStatus `json:"aging_status" yaml:"aging_status"`
	Wrinkles     int         `json:"wrinkles" yaml:"wrinkles"`
	Pigmentation int         `json:"pigmentation" yaml:"pigmentation"`
	Dryness      int         `json:"dryness" yaml:"dryness"`
}

type Severity string

const (
	SeverityMild     Severity = "Mild"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
)

type AreaScore struct {
	Area     string   `json:"area" yaml:"area"`
	Score    int      `json:"score" yaml:"score"`
	Severity Severity `json:"severity" yaml:"severity"`
}

type OverlayMarker struct {
	X                 int    `json:"x" yaml:"x"`
	Y                 int    `json:"y" yaml:"y"`
	Width             int    `json:"width" yaml:"width"`
	Height            int    `json:"height" yaml:"height"`
	Label             string `json:"label" yaml:"label"`
	ConfidencePercent int    `json:"confidence_percent" yaml:"confidence_percent"`
}

type Overlays struct {
	Acne     []OverlayMarker `json:"acne" yaml:"acne"`
	Mole     []OverlayMarker `json:"mole" yaml:"mole"`
	SkinSpot []OverlayMarker `json:"skin_spot" yaml:"skin_spot"`
	Zones    []OverlayMarker `json:"zones" yaml:"zones"`
}

type SkinTypeInfo struct {
	Code int    `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

type AdviceCard struct {
	Area     string   `json:"area" yaml:"area"`
	Title    string   `json:"title" yaml:"title"`
	Severity Severity `json:"severity" yaml:"severity"`
	Tips     []string `json:"tips" yaml:"tips"`
}

type Report struct {
	Scores        DerivedScores `json:"scores" yaml:"scores"`
	Areas         []AreaScore   `json:"areas" yaml:"areas"`
	SkinType      SkinTypeInfo  `json:"skin_type" yaml:"skin_type"`
	Sensitivity   Sensitivity   `json:"sensitivity" yaml:"sensitivity"`
	FaceRectangle Rect          `json:"face_rectangle" yaml:"face_rectangle"`
	Overlays      Overlays      `json:"overlays" yaml:"overlays"`
	Warnings      []string      `json:"warnings" yaml:"warnings"`
	Advice        []AdviceCard  `json:"advice" yaml:"advice"`
}
