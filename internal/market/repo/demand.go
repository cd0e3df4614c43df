package repo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	errx "github.com/Market-intel-core-v1/server/internal/core/error"
	"github.com/Market-intel-core-v1/server/internal/market/model"
	logx "github.com/Market-intel-core-v1/server/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Hash fields of product:<id>:demand.
const (
	fieldScore            = "score"
	fieldExternalInterest = "external_interest"
	fieldMarketAverage    = "market_average"
	fieldAnalysisID       = "analysis_id"
	fieldAnalyzedAt       = "analyzed_at"
)

// DefaultHistoryLimit bounds the per-product analysis log.
const DefaultHistoryLimit = 20

// DemandRepository stores the demand snapshot written onto a product after
// analysis, plus a short log of full analyses.
type DemandRepository interface {
	Save(ctx context.Context, rec model.DemandRecord) error
	Get(ctx context.Context, productID string) (*model.DemandRecord, error)
	AppendAnalysis(ctx context.Context, a *model.Analysis) error
	ListAnalyses(ctx context.Context, productID string) ([]model.Analysis, error)
}

type RedisDemandRepository struct {
	rdb   redis.Cmdable
	ttl   time.Duration
	limit int64
}

// NewRedisDemandRepository builds the repository. ttl <= 0 keeps keys forever.
func NewRedisDemandRepository(rdb redis.Cmdable, ttl time.Duration, historyLimit int) *RedisDemandRepository {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &RedisDemandRepository{rdb: rdb, ttl: ttl, limit: int64(historyLimit)}
}

func (r *RedisDemandRepository) demandKey(productID string) string {
	return fmt.Sprintf("product:%s:demand", productID)
}

func (r *RedisDemandRepository) analysesKey(productID string) string {
	return fmt.Sprintf("product:%s:analyses", productID)
}

func (r *RedisDemandRepository) Save(ctx context.Context, rec model.DemandRecord) error {
	key := r.demandKey(rec.ProductID)

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		fieldScore:            rec.DemandScore,
		fieldExternalInterest: rec.ExternalInterest,
		fieldMarketAverage:    rec.MarketAverage.StringFixed(2),
		fieldAnalysisID:       rec.AnalysisID,
		fieldAnalyzedAt:       rec.AnalyzedAt.UTC().Format(time.RFC3339),
	})
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save demand record")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisDemandRepository) Get(ctx context.Context, productID string) (*model.DemandRecord, error) {
	key := r.demandKey(productID)

	fields, err := r.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to load demand record")
		return nil, errx.WrapRedis(err)
	}
	if len(fields) == 0 {
		return nil, errx.NotFound(fmt.Sprintf("no demand analysis for product %s", productID))
	}

	rec := &model.DemandRecord{
		ProductID:        productID,
		AnalysisID:       fields[fieldAnalysisID],
		ExternalInterest: fields[fieldExternalInterest],
	}
	if rec.DemandScore, err = strconv.Atoi(fields[fieldScore]); err != nil {
		return nil, fmt.Errorf("parse %s score: %w", key, err)
	}
	if rec.MarketAverage, err = decimal.NewFromString(fields[fieldMarketAverage]); err != nil {
		return nil, fmt.Errorf("parse %s market average: %w", key, err)
	}
	if rec.AnalyzedAt, err = time.Parse(time.RFC3339, fields[fieldAnalyzedAt]); err != nil {
		return nil, fmt.Errorf("parse %s analyzed_at: %w", key, err)
	}
	return rec, nil
}

// AppendAnalysis pushes a onto the product's log, keeping the newest entries.
func (r *RedisDemandRepository) AppendAnalysis(ctx context.Context, a *model.Analysis) error {
	b, err := json.Marshal(a)
	if err != nil {
		logx.Error().Err(err).Str("productID", a.ProductID).Msg("failed to marshal analysis")
		return fmt.Errorf("marshal analysis: %w", err)
	}
	key := r.analysesKey(a.ProductID)

	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key, b)
	pipe.LTrim(ctx, key, -r.limit, -1)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to append analysis")
		return errx.WrapRedis(err)
	}
	return nil
}

// ListAnalyses returns the logged analyses, oldest first.
func (r *RedisDemandRepository) ListAnalyses(ctx context.Context, productID string) ([]model.Analysis, error) {
	key := r.analysesKey(productID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to load analyses")
		return nil, errx.WrapRedis(err)
	}

	out := make([]model.Analysis, 0, len(rows))
	for i, s := range rows {
		var a model.Analysis
		if err := json.Unmarshal([]byte(s), &a); err != nil {
			logx.Error().Err(err).Str("productID", productID).Int("index", i).Msg("failed to unmarshal analysis")
			return nil, fmt.Errorf("unmarshal analysis at index %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// FormatInterest renders the product's external interest line, e.g.
// "Upward trend (+12.5% growth)".
func FormatInterest(trend model.Trend, growth decimal.Decimal) string {
	t := string(trend)
	if t != "" {
		t = strings.ToUpper(t[:1]) + t[1:]
	}
	return fmt.Sprintf("%s trend (+%s%% growth)", t, growth.StringFixed(1))
}

var _ DemandRepository = (*RedisDemandRepository)(nil)
