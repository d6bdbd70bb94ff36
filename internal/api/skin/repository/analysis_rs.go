package skinRepository

import (
	"SkinLens/internal/api/skin"
	"SkinLens/internal/entity"
	contextPkg "SkinLens/pkg/context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type AnalysisDB struct {
	ID           sql.NullString  `db:"id"`
	UserID       sql.NullString  `db:"user_id"`
	ImageURL     sql.NullString  `db:"image_url"`
	RawResult    []byte          `db:"raw_result"`
	AgingScore   sql.NullFloat64 `db:"aging_score"`
	AgingStatus  sql.NullString  `db:"aging_status"`
	Wrinkles     sql.NullInt64   `db:"wrinkles"`
	Pigmentation sql.NullInt64   `db:"pigmentation"`
	Dryness      sql.NullInt64   `db:"dryness"`
	CreatedAt    time.Time       `db:"created_at"`
}

func (r *analysesRepository) CreateAnalysis(ctx context.Context, analysis entity.SkinAnalysis) error {
	requestID := contextPkg.GetRequestID(ctx)
	// lib/pq sends []byte as bytea; jsonb needs the text form.
	argsKV := map[string]interface{}{
		"id":           analysis.ID,
		"user_id":      analysis.UserID,
		"image_url":    analysis.ImageURL,
		"raw_result":   string(analysis.RawResult),
		"aging_score":  analysis.AgingScore,
		"aging_status": analysis.AgingStatus,
		"wrinkles":     analysis.Wrinkles,
		"pigmentation": analysis.Pigmentation,
		"dryness":      analysis.Dryness,
		"created_at":   analysis.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateAnalysis, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateAnalysis")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating skin analysis")
		return err
	}

	return nil
}

func (r *analysesRepository) GetAnalysisByID(ctx context.Context, id string) (entity.SkinAnalysis, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var analysis AnalysisDB

	query, args, err := sqlx.Named(queryGetAnalysisByID, map[string]interface{}{
		"id": id,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAnalysisByID named query preparation err")
		return entity.SkinAnalysis{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&analysis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"id":         id,
			}).Warn("GetAnalysisByID no rows found")
			return entity.SkinAnalysis{}, skin.ErrAnalysisNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAnalysisByID execution err")
		return entity.SkinAnalysis{}, err
	}

	return r.makeAnalysis(analysis), nil
}

func (r *analysesRepository) GetAnalysesByUser(ctx context.Context, userID string, limit, offset int) ([]entity.SkinAnalysis, int, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var total int

	countQuery, countArgs, err := sqlx.Named(queryCountAnalysesByUser, map[string]interface{}{
		"user_id": userID,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountAnalysesByUser named query preparation err")
		return nil, 0, err
	}
	countQuery = r.q.Rebind(countQuery)

	if err := r.q.QueryRowxContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountAnalysesByUser execution err")
		return nil, 0, err
	}

	query, args, err := sqlx.Named(queryGetAnalysesByUser, map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
		"offset":  offset,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAnalysesByUser named query preparation err")
		return nil, 0, err
	}
	query = r.q.Rebind(query)

	var rows []AnalysisDB
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAnalysesByUser execution err")
		return nil, 0, err
	}

	analyses := make([]entity.SkinAnalysis, 0, len(rows))
	for _, row := range rows {
		analyses = append(analyses, r.makeAnalysis(row))
	}

	return analyses, total, nil
}

func (r *analysesRepository) DeleteAnalysis(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryDeleteAnalysis, map[string]interface{}{
		"id": id,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteAnalysis named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteAnalysis execution err")
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return skin.ErrAnalysisNotFound
	}

	return nil
}

func (r *analysesRepository) makeAnalysis(row AnalysisDB) entity.SkinAnalysis {
	return entity.SkinAnalysis{
		ID:           row.ID.String,
		UserID:       row.UserID.String,
		ImageURL:     row.ImageURL.String,
		RawResult:    row.RawResult,
		AgingScore:   row.AgingScore.Float64,
		AgingStatus:  row.AgingStatus.String,
		Wrinkles:     int(row.Wrinkles.Int64),
		Pigmentation: int(row.Pigmentation.Int64),
		Dryness:      int(row.Dryness.Int64),
		CreatedAt:    row.CreatedAt,
	}
}
