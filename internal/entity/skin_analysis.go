package entity

import "time"

type SkinAnalysis struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	ImageURL     string    `db:"image_url"`
	RawResult    []byte    `db:"raw_result"`
	AgingScore   float64   `db:"aging_score"`
	AgingStatus  string    `db:"aging_status"`
	Wrinkles     int       `db:"wrinkles"`
	Pigmentation int       `db:"pigmentation"`
	Dryness      int       `db:"dryness"`
	CreatedAt    time.Time `db:"created_at"`
}
