package skinService

import (
	"SkinLens/internal/api/skin"
	skinRepository "SkinLens/internal/api/skin/repository"
	"SkinLens/internal/entity"
	"SkinLens/pkg/facepp"
	"SkinLens/pkg/redis"
	"SkinLens/pkg/skinmetric"
	"SkinLens/pkg/utils"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const sampleResult = `{
	"face_rectangle": {"left": 100, "top": 100, "width": 240, "height": 240},
	"result": {
		"forehead_wrinkle": {"value": 1, "confidence": 0.93},
		"crows_feet": {"value": 1, "confidence": 0.8},
		"eye_finelines": {"value": 0, "confidence": 0.9},
		"glabella_wrinkle": {"value": 0, "confidence": 0.9},
		"nasolabial_fold": {"value": 1, "confidence": 0.7},
		"acne": {"rectangle": [{"left": 10, "top": 20, "width": 30, "height": 40}], "confidence": [0.85]},
		"skin_type": {"skin_type": 2}
	}
}`

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeAnalyses struct {
	mu   sync.Mutex
	rows map[string]entity.SkinAnalysis
	err  error
}

func (f *fakeAnalyses) CreateAnalysis(_ context.Context, a entity.SkinAnalysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows[a.ID] = a
	return nil
}

func (f *fakeAnalyses) GetAnalysisByID(_ context.Context, id string) (entity.SkinAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return entity.SkinAnalysis{}, skin.ErrAnalysisNotFound
	}
	return a, nil
}

func (f *fakeAnalyses) GetAnalysesByUser(_ context.Context, userID string, limit, offset int) ([]entity.SkinAnalysis, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.SkinAnalysis
	for _, a := range f.rows {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	total := len(out)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func (f *fakeAnalyses) DeleteAnalysis(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return skin.ErrAnalysisNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeRepository struct {
	analyses *fakeAnalyses
}

func (f *fakeRepository) NewClient(bool) (skinRepository.Client, error) {
	return skinRepository.Client{
		Analyses: f.analyses,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

type fakeFacepp struct {
	body  []byte
	err   error
	calls int
	last  string
}

func (f *fakeFacepp) AnalyzeSkin(_ context.Context, base64Image string) ([]byte, error) {
	f.calls++
	f.last = base64Image
	return f.body, f.err
}

type fakeRedis struct {
	mu    sync.Mutex
	items map[string][]byte
}

func (f *fakeRedis) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value
	return nil
}

func (f *fakeRedis) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[key]
	if !ok {
		return nil, redis.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeRedis) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, key)
	return nil
}

type fakeS3 struct {
	uploaded []string
	deleted  []string
	err      error
}

func (f *fakeS3) UploadImage(key string, _ []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploaded = append(f.uploaded, key)
	return "https://bucket.example/" + key, nil
}

func (f *fakeS3) PresignUrl(fileUrl string) (string, error) {
	return fileUrl + "?signed", nil
}

func (f *fakeS3) DeleteFile(fileUrl string) error {
	f.deleted = append(f.deleted, fileUrl)
	return nil
}

type fakeGemini struct {
	prompt string
	text   string
	err    error
}

func (f *fakeGemini) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

type fixture struct {
	svc      ISkinService
	analyses *fakeAnalyses
	facepp   *fakeFacepp
	redis    *fakeRedis
	s3       *fakeS3
	gemini   *fakeGemini
}

func newFixture() *fixture {
	log := logrus.New()
	log.SetOutput(io.Discard)

	f := &fixture{
		analyses: &fakeAnalyses{rows: map[string]entity.SkinAnalysis{}},
		facepp:   &fakeFacepp{body: []byte(sampleResult)},
		redis:    &fakeRedis{items: map[string][]byte{}},
		s3:       &fakeS3{},
		gemini:   &fakeGemini{text: "  Use a gentle cleanser.  "},
	}
	f.svc = NewSkinService(log, &fakeRepository{analyses: f.analyses}, f.facepp, f.redis, f.s3, f.gemini, utils.New())
	return f
}

func (f *fixture) seed(id, userID string) {
	f.analyses.rows[id] = entity.SkinAnalysis{
		ID:        id,
		UserID:    userID,
		ImageURL:  "https://bucket.example/" + id + ".png",
		RawResult: []byte(sampleResult),
		CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAnalyzeImage(t *testing.T) {
	f := newFixture()
	image := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)

	resp, err := f.svc.AnalyzeImage(context.Background(), "user-1", image)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.facepp.last != base64.StdEncoding.EncodeToString(pngHeader) {
		t.Fatalf("detection should receive bare base64, got %q", f.facepp.last)
	}
	if resp.Report.Scores.Wrinkles != 3 {
		t.Fatalf("expected wrinkles 3, got %d", resp.Report.Scores.Wrinkles)
	}
	if len(resp.Report.Overlays.Acne) != 1 {
		t.Fatalf("expected one acne marker, got %d", len(resp.Report.Overlays.Acne))
	}
	if !strings.HasSuffix(resp.ImageURL, ".png?signed") {
		t.Fatalf("expected presigned png url, got %q", resp.ImageURL)
	}

	stored, ok := f.analyses.rows[resp.ID]
	if !ok {
		t.Fatalf("analysis %s was not stored", resp.ID)
	}
	if stored.UserID != "user-1" || string(stored.RawResult) != sampleResult {
		t.Fatalf("unexpected stored analysis %+v", stored)
	}
	if stored.Dryness != 4 {
		t.Fatalf("expected dryness 4, got %d", stored.Dryness)
	}
	if _, ok := f.redis.items[analysisCachePrefix+resp.ID]; !ok {
		t.Fatal("expected report to be cached")
	}
}

func TestAnalyzeImageUploadFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.s3.err = errors.New("bucket unavailable")

	resp, err := f.svc.AnalyzeImage(context.Background(), "user-1", base64.StdEncoding.EncodeToString(pngHeader))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ImageURL != "" {
		t.Fatalf("expected empty image url, got %q", resp.ImageURL)
	}
}

func TestAnalyzeImageStoreFailureRemovesPhoto(t *testing.T) {
	f := newFixture()
	f.analyses.err = errors.New("db down")

	_, err := f.svc.AnalyzeImage(context.Background(), "user-1", base64.StdEncoding.EncodeToString(pngHeader))
	if !errors.Is(err, skin.ErrCreateAnalysis) {
		t.Fatalf("expected ErrCreateAnalysis, got %v", err)
	}
	if len(f.s3.uploaded) != 1 {
		t.Fatalf("expected one upload, got %v", f.s3.uploaded)
	}
	if len(f.s3.deleted) != 1 || f.s3.deleted[0] != "https://bucket.example/"+f.s3.uploaded[0] {
		t.Fatalf("expected uploaded photo to be removed, got %v", f.s3.deleted)
	}
}

func TestAnalyzeImageErrors(t *testing.T) {
	tests := []struct {
		name      string
		image     string
		detectErr error
		storeErr  error
		want      error
	}{
		{"not base64", "%%%", nil, nil, skin.ErrInvalidImage},
		{"not an image", base64.StdEncoding.EncodeToString([]byte("just text")), nil, nil, skin.ErrInvalidImage},
		{"detection failed", base64.StdEncoding.EncodeToString(pngHeader), fmt.Errorf("%w: status 401", facepp.ErrDetectionFailed), nil, skin.ErrDetectionFailed},
		{"deadline", base64.StdEncoding.EncodeToString(pngHeader), context.DeadlineExceeded, nil, context.DeadlineExceeded},
		{"store failed", base64.StdEncoding.EncodeToString(pngHeader), nil, errors.New("db down"), skin.ErrCreateAnalysis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.facepp.err = tt.detectErr
			f.analyses.err = tt.storeErr

			_, err := f.svc.AnalyzeImage(context.Background(), "user-1", tt.image)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDeriveReport(t *testing.T) {
	f := newFixture()

	report, err := f.svc.DeriveReport(context.Background(), []byte(`{"result": {}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Scores.AgingStatus != skinmetric.AgingExcellent {
		t.Fatalf("expected Excellent, got %s", report.Scores.AgingStatus)
	}

	if _, err := f.svc.DeriveReport(context.Background(), []byte("not json")); !errors.Is(err, skin.ErrInvalidResultDocument) {
		t.Fatalf("expected ErrInvalidResultDocument, got %v", err)
	}
	if f.facepp.calls != 0 {
		t.Fatal("derive must not call the detection service")
	}
}

func TestProcessFrame(t *testing.T) {
	f := newFixture()

	report, err := f.svc.ProcessFrame(context.Background(), pngHeader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.FaceRectangle.Width != 240 {
		t.Fatalf("unexpected face rectangle %+v", report.FaceRectangle)
	}

	if _, err := f.svc.ProcessFrame(context.Background(), []byte("hello")); !errors.Is(err, skin.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestGetAnalysisUsesCache(t *testing.T) {
	f := newFixture()
	f.seed("a1", "user-1")

	first, err := f.svc.GetAnalysis(context.Background(), "user-1", "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ImageURL != "https://bucket.example/a1.png?signed" {
		t.Fatalf("unexpected image url %q", first.ImageURL)
	}

	delete(f.analyses.rows, "a1")

	second, err := f.svc.GetAnalysis(context.Background(), "user-1", "a1")
	if err != nil {
		t.Fatalf("expected cache hit, got %v", err)
	}
	if second.Report.Scores != first.Report.Scores {
		t.Fatalf("cached report differs: %+v vs %+v", second.Report.Scores, first.Report.Scores)
	}
	if second.ImageURL != first.ImageURL {
		t.Fatalf("cached url should be presigned once, got %q", second.ImageURL)
	}
}

func TestCacheHoldsRawResultOnly(t *testing.T) {
	f := newFixture()
	f.seed("a1", "user-1")

	if _, err := f.svc.GetAnalysis(context.Background(), "user-1", "a1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry := string(f.redis.items[analysisCachePrefix+"a1"])
	if entry == "" {
		t.Fatal("expected analysis to be cached")
	}
	if strings.Contains(entry, "aging_score") || strings.Contains(entry, "overlays") {
		t.Fatalf("cache entry must not hold derived data: %s", entry)
	}
	if !strings.Contains(entry, `"raw_result"`) {
		t.Fatalf("cache entry is missing the raw result: %s", entry)
	}
}

func TestGetAnalysisOwnership(t *testing.T) {
	f := newFixture()
	f.seed("a1", "user-1")

	if _, err := f.svc.GetAnalysis(context.Background(), "user-2", "a1"); !errors.Is(err, skin.ErrAnalysisNotOwned) {
		t.Fatalf("expected ErrAnalysisNotOwned, got %v", err)
	}

	// Populate the cache, then check the owner is still enforced on a hit.
	if _, err := f.svc.GetAnalysis(context.Background(), "user-1", "a1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.GetAnalysis(context.Background(), "user-2", "a1"); !errors.Is(err, skin.ErrAnalysisNotOwned) {
		t.Fatalf("expected ErrAnalysisNotOwned on cache hit, got %v", err)
	}

	if _, err := f.svc.GetAnalysis(context.Background(), "user-1", "missing"); !errors.Is(err, skin.ErrAnalysisNotFound) {
		t.Fatalf("expected ErrAnalysisNotFound, got %v", err)
	}
}

func TestGetHistoryPagination(t *testing.T) {
	f := newFixture()
	for i := 0; i < 3; i++ {
		f.seed(fmt.Sprintf("a%d", i), "user-1")
	}
	f.seed("other", "user-2")

	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
		wantItems int
	}{
		{"defaults", 0, 0, 1, defaultPageLimit, 3},
		{"second page", 2, 2, 2, 2, 1},
		{"limit capped", 1, 500, 1, maxPageLimit, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.svc.GetHistory(context.Background(), "user-1", tt.page, tt.limit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Page != tt.wantPage || resp.Limit != tt.wantLimit {
				t.Fatalf("expected page %d limit %d, got %d %d", tt.wantPage, tt.wantLimit, resp.Page, resp.Limit)
			}
			if len(resp.Analyses) != tt.wantItems || resp.Total != 3 {
				t.Fatalf("expected %d items of 3, got %d of %d", tt.wantItems, len(resp.Analyses), resp.Total)
			}
		})
	}
}

func TestDeleteAnalysis(t *testing.T) {
	f := newFixture()
	f.seed("a1", "user-1")
	if _, err := f.svc.GetAnalysis(context.Background(), "user-1", "a1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.svc.DeleteAnalysis(context.Background(), "user-2", "a1"); !errors.Is(err, skin.ErrAnalysisNotOwned) {
		t.Fatalf("expected ErrAnalysisNotOwned, got %v", err)
	}

	if err := f.svc.DeleteAnalysis(context.Background(), "user-1", "a1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := f.analyses.rows["a1"]; ok {
		t.Fatal("analysis still stored")
	}
	if _, ok := f.redis.items[analysisCachePrefix+"a1"]; ok {
		t.Fatal("cache entry not evicted")
	}
	if len(f.s3.deleted) != 1 {
		t.Fatalf("expected photo deletion, got %v", f.s3.deleted)
	}

	if err := f.svc.DeleteAnalysis(context.Background(), "user-1", "a1"); !errors.Is(err, skin.ErrAnalysisNotFound) {
		t.Fatalf("expected ErrAnalysisNotFound, got %v", err)
	}
}

func TestGeneratePersonalAdvice(t *testing.T) {
	f := newFixture()
	f.seed("a1", "user-1")

	resp, err := f.svc.GeneratePersonalAdvice(context.Background(), "user-1", "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Advice != "Use a gentle cleanser." {
		t.Fatalf("unexpected advice %q", resp.Advice)
	}
	if !strings.Contains(f.gemini.prompt, "Skin type: Combination") {
		t.Fatalf("prompt is missing skin type: %q", f.gemini.prompt)
	}
	if resp.Cards == nil {
		t.Fatal("cards should never be nil")
	}

	f.gemini.err = errors.New("quota exceeded")
	if _, err := f.svc.GeneratePersonalAdvice(context.Background(), "user-1", "a1"); !errors.Is(err, skin.ErrAdviceUnavailable) {
		t.Fatalf("expected ErrAdviceUnavailable, got %v", err)
	}
}

func TestGeneratePersonalAdviceWithoutGemini(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	analyses := &fakeAnalyses{rows: map[string]entity.SkinAnalysis{}}
	svc := NewSkinService(log, &fakeRepository{analyses: analyses}, &fakeFacepp{}, nil, nil, nil, utils.New())

	if _, err := svc.GeneratePersonalAdvice(context.Background(), "user-1", "a1"); !errors.Is(err, skin.ErrAdviceUnavailable) {
		t.Fatalf("expected ErrAdviceUnavailable, got %v", err)
	}
}
