package skinService

import (
	"SkinLens/internal/api/skin"
	skinRepository "SkinLens/internal/api/skin/repository"
	"SkinLens/pkg/facepp"
	"SkinLens/pkg/gemini"
	"SkinLens/pkg/redis"
	"SkinLens/pkg/s3"
	"SkinLens/pkg/skinmetric"
	"SkinLens/pkg/utils"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	analysisCacheTTL    = 10 * time.Minute
	analysisCachePrefix = "skin:analysis:"
	defaultPageLimit    = 10
	maxPageLimit        = 50
)

type ISkinService interface {
	AnalyzeImage(ctx context.Context, userID, base64Image string) (*skin.AnalysisResponse, error)
	DeriveReport(ctx context.Context, raw []byte) (skinmetric.Report, error)
	ProcessFrame(ctx context.Context, frame []byte) (skinmetric.Report, error)
	GetHistory(ctx context.Context, userID string, page, limit int) (*skin.HistoryListResponse, error)
	GetAnalysis(ctx context.Context, userID, id string) (*skin.AnalysisResponse, error)
	DeleteAnalysis(ctx context.Context, userID, id string) error
	GeneratePersonalAdvice(ctx context.Context, userID, id string) (*skin.PersonalAdviceResponse, error)
}

type skinService struct {
	log      *logrus.Logger
	skinRepo skinRepository.Repository
	facepp   facepp.IFacepp
	redis    redis.IRedis
	s3Client s3.ItfS3
	gemini   gemini.IGemini
	utils    utils.IUtils
}

// NewSkinService wires the analysis workflow. redis, s3Client and gemini may
// be nil; the features backed by them are then skipped or reported as
// unavailable.
func NewSkinService(
	log *logrus.Logger,
	skinRepo skinRepository.Repository,
	faceppClient facepp.IFacepp,
	redisClient redis.IRedis,
	s3Client s3.ItfS3,
	geminiClient gemini.IGemini,
	utils utils.IUtils,
) ISkinService {
	return &skinService{
		log:      log,
		skinRepo: skinRepo,
		facepp:   faceppClient,
		redis:    redisClient,
		s3Client: s3Client,
		gemini:   geminiClient,
		utils:    utils,
	}
}
