package skinService

import (
	"SkinLens/internal/api/skin"
	"SkinLens/internal/entity"
	contextPkg "SkinLens/pkg/context"
	"SkinLens/pkg/redis"
	"SkinLens/pkg/skinmetric"
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *skinService) GetHistory(ctx context.Context, userID string, page, limit int) (*skin.HistoryListResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	repo, err := s.skinRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, skin.ErrInternalServerError
	}

	analyses, total, err := repo.Analyses.GetAnalysesByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to list skin analyses")
		return nil, skin.ErrInternalServerError
	}

	items := make([]skin.HistoryItem, 0, len(analyses))
	for _, a := range analyses {
		items = append(items, skin.HistoryItem{
			ID:           a.ID,
			ImageURL:     s.presign(ctx, a.ImageURL),
			AgingScore:   a.AgingScore,
			AgingStatus:  a.AgingStatus,
			Wrinkles:     a.Wrinkles,
			Pigmentation: a.Pigmentation,
			Dryness:      a.Dryness,
			CreatedAt:    a.CreatedAt,
		})
	}

	return &skin.HistoryListResponse{
		Analyses: items,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}, nil
}

func (s *skinService) GetAnalysis(ctx context.Context, userID, id string) (*skin.AnalysisResponse, error) {
	resp, err := s.loadAnalysis(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	out := *resp
	out.ImageURL = s.presign(ctx, resp.ImageURL)
	return &out, nil
}

func (s *skinService) DeleteAnalysis(ctx context.Context, userID, id string) error {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.skinRepo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return skin.ErrDeleteAnalysis
	}
	defer repo.Rollback()

	analysis, err := repo.Analyses.GetAnalysisByID(ctx, id)
	if err != nil {
		if errors.Is(err, skin.ErrAnalysisNotFound) {
			return skin.ErrAnalysisNotFound
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get skin analysis")
		return skin.ErrDeleteAnalysis
	}

	if analysis.UserID != userID {
		s.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"analysis_id": id,
			"user_id":     userID,
		}).Warn("Unauthorized delete attempt")
		return skin.ErrAnalysisNotOwned
	}

	if err := repo.Analyses.DeleteAnalysis(ctx, id); err != nil {
		if errors.Is(err, skin.ErrAnalysisNotFound) {
			return skin.ErrAnalysisNotFound
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to delete skin analysis")
		return skin.ErrDeleteAnalysis
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit transaction")
		return skin.ErrDeleteAnalysis
	}

	s.evictAnalysis(ctx, id)
	s.discardPhoto(ctx, analysis.ImageURL)

	return nil
}

func (s *skinService) GeneratePersonalAdvice(ctx context.Context, userID, id string) (*skin.PersonalAdviceResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if s.gemini == nil {
		return nil, skin.ErrAdviceUnavailable
	}

	resp, err := s.loadAnalysis(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	text, err := s.gemini.GenerateText(ctx, advicePrompt(resp.Report))
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"analysis_id": id,
			"error":       err.Error(),
		}).Error("Failed to generate personalized advice")
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, skin.ErrAdviceUnavailable
	}

	cards := resp.Report.Advice
	if cards == nil {
		cards = []skinmetric.AdviceCard{}
	}

	return &skin.PersonalAdviceResponse{
		AnalysisID: id,
		Advice:     strings.TrimSpace(text),
		Cards:      cards,
	}, nil
}

// loadAnalysis returns the stored analysis with a freshly derived report,
// preferring the cached record over the database. The returned image URL is
// not presigned.
func (s *skinService) loadAnalysis(ctx context.Context, userID, id string) (*skin.AnalysisResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if cached, ok := s.cachedAnalysis(ctx, id); ok {
		if cached.UserID != userID {
			return nil, skin.ErrAnalysisNotOwned
		}
		return makeAnalysisResponse(entity.SkinAnalysis{
			ID:        cached.ID,
			UserID:    cached.UserID,
			ImageURL:  cached.ImageURL,
			RawResult: cached.RawResult,
			CreatedAt: cached.CreatedAt,
		}), nil
	}

	repo, err := s.skinRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, skin.ErrInternalServerError
	}

	analysis, err := repo.Analyses.GetAnalysisByID(ctx, id)
	if err != nil {
		if errors.Is(err, skin.ErrAnalysisNotFound) {
			return nil, skin.ErrAnalysisNotFound
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get skin analysis")
		return nil, skin.ErrInternalServerError
	}

	if analysis.UserID != userID {
		s.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"analysis_id": id,
			"user_id":     userID,
		}).Warn("Unauthorized access attempt")
		return nil, skin.ErrAnalysisNotOwned
	}

	s.cacheAnalysis(ctx, analysis)

	return makeAnalysisResponse(analysis), nil
}

func makeAnalysisResponse(analysis entity.SkinAnalysis) *skin.AnalysisResponse {
	return &skin.AnalysisResponse{
		ID:        analysis.ID,
		ImageURL:  analysis.ImageURL,
		CreatedAt: analysis.CreatedAt,
		Report:    skinmetric.Analyze(analysis.RawResult),
	}
}

func (s *skinService) cachedAnalysis(ctx context.Context, id string) (*skin.CachedAnalysis, bool) {
	if s.redis == nil {
		return nil, false
	}

	data, err := s.redis.Get(ctx, analysisCachePrefix+id)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"error":      err.Error(),
			}).Warn("Failed to read analysis cache")
		}
		return nil, false
	}

	var cached skin.CachedAnalysis
	if err := jsoniter.Unmarshal(data, &cached); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Discarding malformed cache entry")
		return nil, false
	}

	return &cached, true
}

func (s *skinService) cacheAnalysis(ctx context.Context, analysis entity.SkinAnalysis) {
	if s.redis == nil {
		return
	}

	data, err := jsoniter.Marshal(skin.CachedAnalysis{
		ID:        analysis.ID,
		UserID:    analysis.UserID,
		ImageURL:  analysis.ImageURL,
		RawResult: analysis.RawResult,
		CreatedAt: analysis.CreatedAt,
	})
	if err != nil {
		return
	}

	if err := s.redis.Set(ctx, analysisCachePrefix+analysis.ID, data, analysisCacheTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Failed to cache skin analysis")
	}
}

func (s *skinService) evictAnalysis(ctx context.Context, id string) {
	if s.redis == nil {
		return
	}

	if err := s.redis.Delete(ctx, analysisCachePrefix+id); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Failed to evict skin analysis")
	}
}

func advicePrompt(report skinmetric.Report) string {
	var b strings.Builder

	b.WriteString("You are a skincare assistant. Based on the skin analysis below, ")
	b.WriteString("write short, practical skincare advice in plain text (no markdown). ")
	b.WriteString("Do not give a medical diagnosis.\n\n")

	fmt.Fprintf(&b, "Aging score: %.1f (%s)\n", report.Scores.AgingScore, report.Scores.AgingStatus)
	for _, area := range report.Areas {
		fmt.Fprintf(&b, "%s: %d/10 (%s)\n", area.Area, area.Score, area.Severity)
	}
	fmt.Fprintf(&b, "Skin type: %s\n", report.SkinType.Name)
	fmt.Fprintf(&b, "Acne spots detected: %d\n", len(report.Overlays.Acne))
	fmt.Fprintf(&b, "Skin spots detected: %d\n", len(report.Overlays.SkinSpot))

	return b.String()
}
