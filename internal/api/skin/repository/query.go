package skinRepository

const (
	queryCreateAnalysis = `
		INSERT INTO skin_analyses (
			id,
			user_id,
			image_url,
			raw_result,
			aging_score,
			aging_status,
			wrinkles,
			pigmentation,
			dryness,
			created_at
		) VALUES (
			:id,
			:user_id,
			:image_url,
			:raw_result,
			:aging_score,
			:aging_status,
			:wrinkles,
			:pigmentation,
			:dryness,
			:created_at
		)
	`

	queryGetAnalysisByID = `
		SELECT
			id,
			user_id,
			image_url,
			raw_result,
			aging_score,
			aging_status,
			wrinkles,
			pigmentation,
			dryness,
			created_at
		FROM skin_analyses
		WHERE id = :id
	`

	queryGetAnalysesByUser = `
		SELECT
			id,
			user_id,
			image_url,
			aging_score,
			aging_status,
			wrinkles,
			pigmentation,
			dryness,
			created_at
		FROM skin_analyses
		WHERE user_id = :user_id
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset
	`

	queryCountAnalysesByUser = `
		SELECT COUNT(*)
		FROM skin_analyses
		WHERE user_id = :user_id
	`

	queryDeleteAnalysis = `
		DELETE FROM skin_analyses
		WHERE id = :id
	`
)
