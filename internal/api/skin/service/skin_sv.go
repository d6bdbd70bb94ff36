package skinService

import (
	"SkinLens/internal/api/skin"
	"SkinLens/internal/entity"
	contextPkg "SkinLens/pkg/context"
	"SkinLens/pkg/facepp"
	"SkinLens/pkg/skinmetric"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *skinService) AnalyzeImage(ctx context.Context, userID, base64Image string) (*skin.AnalysisResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	image, contentType, err := s.utils.DecodeBase64Image(base64Image)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Invalid image payload")
		return nil, skin.ErrInvalidImage
	}

	raw, err := s.detect(ctx, base64.StdEncoding.EncodeToString(image))
	if err != nil {
		return nil, err
	}

	analysisID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return nil, skin.ErrInternalServerError
	}

	report := skinmetric.Analyze(raw)
	imageURL := s.uploadPhoto(ctx, userID, analysisID, image, contentType)
	stored := false
	defer func() {
		if !stored {
			s.discardPhoto(ctx, imageURL)
		}
	}()

	analysis := entity.SkinAnalysis{
		ID:           analysisID,
		UserID:       userID,
		ImageURL:     imageURL,
		RawResult:    raw,
		AgingScore:   report.Scores.AgingScore,
		AgingStatus:  string(report.Scores.AgingStatus),
		Wrinkles:     report.Scores.Wrinkles,
		Pigmentation: report.Scores.Pigmentation,
		Dryness:      report.Scores.Dryness,
		CreatedAt:    time.Now(),
	}

	repo, err := s.skinRepo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, skin.ErrCreateAnalysis
	}
	defer repo.Rollback()

	if err := repo.Analyses.CreateAnalysis(ctx, analysis); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create skin analysis")
		return nil, skin.ErrCreateAnalysis
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit transaction")
		return nil, skin.ErrCreateAnalysis
	}
	stored = true

	resp := &skin.AnalysisResponse{
		ID:        analysis.ID,
		ImageURL:  analysis.ImageURL,
		CreatedAt: analysis.CreatedAt,
		Report:    report,
	}
	s.cacheAnalysis(ctx, analysis)

	s.log.WithFields(logrus.Fields{
		"request_id":   requestID,
		"analysis_id":  analysis.ID,
		"aging_status": analysis.AgingStatus,
	}).Info("Skin analysis stored")

	resp.ImageURL = s.presign(ctx, resp.ImageURL)
	return resp, nil
}

func (s *skinService) DeriveReport(ctx context.Context, raw []byte) (skinmetric.Report, error) {
	if !jsoniter.Valid(raw) {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"size":       len(raw),
		}).Warn("Result document is not valid JSON")
		return skinmetric.Report{}, skin.ErrInvalidResultDocument
	}

	return skinmetric.Analyze(raw), nil
}

func (s *skinService) ProcessFrame(ctx context.Context, frame []byte) (skinmetric.Report, error) {
	encoded, err := s.utils.EncodeImageFrame(frame)
	if err != nil {
		return skinmetric.Report{}, skin.ErrInvalidImage
	}

	raw, err := s.detect(ctx, encoded)
	if err != nil {
		return skinmetric.Report{}, err
	}

	return skinmetric.Analyze(raw), nil
}

func (s *skinService) detect(ctx context.Context, base64Image string) ([]byte, error) {
	requestID := contextPkg.GetRequestID(ctx)

	raw, err := s.facepp.AnalyzeSkin(ctx, base64Image)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Skin detection request failed")

		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			return nil, err
		case errors.Is(err, facepp.ErrMissingImage):
			return nil, skin.ErrInvalidImage
		default:
			return nil, skin.ErrDetectionFailed
		}
	}

	return raw, nil
}

func (s *skinService) uploadPhoto(ctx context.Context, userID, analysisID string, image []byte, contentType string) string {
	if s.s3Client == nil {
		return ""
	}

	key := fmt.Sprintf("skin-analyses/%s/%s%s", userID, analysisID, extensionFor(contentType))
	url, err := s.s3Client.UploadImage(key, image, contentType)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"key":        key,
			"error":      err.Error(),
		}).Warn("Failed to upload analysis photo")
		return ""
	}

	return url
}

func (s *skinService) discardPhoto(ctx context.Context, url string) {
	if url == "" || s.s3Client == nil {
		return
	}

	if err := s.s3Client.DeleteFile(url); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Failed to delete analysis photo")
	}
}

func (s *skinService) presign(ctx context.Context, url string) string {
	if url == "" || s.s3Client == nil {
		return url
	}

	signed, err := s.s3Client.PresignUrl(url)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Failed to presign analysis photo")
		return url
	}

	return signed
}

func extensionFor(contentType string) string {
	switch strings.TrimPrefix(contentType, "image/") {
	case "jpeg":
		return ".jpg"
	case "png":
		return ".png"
	case "webp":
		return ".webp"
	case "gif":
		return ".gif"
	case "bmp":
		return ".bmp"
	default:
		return ""
	}
}
