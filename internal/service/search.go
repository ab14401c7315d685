package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"agentmarket/config"
	"agentmarket/internal/core"
	"agentmarket/internal/database/mongodb/model"
	"agentmarket/internal/dto"
	cErr "agentmarket/internal/pkg/error"
	"agentmarket/internal/search"
	"agentmarket/internal/service/embedding"
	"agentmarket/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type SearchService struct {
	logger      *zap.Logger
	trace       *telemetry.Trace
	metric      *telemetry.Metric
	config      *config.Configuration
	listingRepo ListingStore
	cache       EmbeddingCache
	embedder    embedding.Embedder
	index       *search.Index
	// 重建彼此互斥，避免較舊的快照後寫入
	rebuildMu sync.Mutex
}

func NewSearchService(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	config *config.Configuration,
	listingRepo ListingStore,
	cache EmbeddingCache,
	embedder embedding.Embedder,
	index *search.Index,
) *SearchService {
	return &SearchService{
		logger:      logger,
		trace:       trace,
		metric:      metric,
		config:      config,
		listingRepo: listingRepo,
		cache:       cache,
		embedder:    embedder,
		index:       index,
	}
}

// Search 依語意相似度回傳最多 limit 筆 listing
func (s *SearchService) Search(ctx context.Context, query string, limit int) (_ *dto.SearchResponseDto, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < s.config.Search.MinQueryLength {
		return nil, cErr.QueryTooShort("query must be at least " + strconv.Itoa(s.config.Search.MinQueryLength) + " characters")
	}
	if limit <= 0 {
		limit = s.config.Search.DefaultLimit
	}
	if limit > s.config.Search.MaxLimit {
		limit = s.config.Search.MaxLimit
	}

	meta := core.TraceSearchMeta{Query: query, Limit: limit}
	vector, cacheHit, err := s.queryVector(ctx, query)
	if err != nil {
		return nil, err
	}
	meta.CacheHit = cacheHit

	start := time.Now()
	hits := s.index.Search(vector, limit)
	s.metric.ObserveSearch(time.Since(start))
	meta.IndexSize = s.index.Len()
	meta.HitCount = len(hits)

	results := make([]*dto.SearchResultDto, 0, len(hits))
	if len(hits) > 0 {
		ids := make([]primitive.ObjectID, 0, len(hits))
		for _, hit := range hits {
			if id, err := primitive.ObjectIDFromHex(hit.ID); err == nil {
				ids = append(ids, id)
			}
		}
		listings, err := s.listingRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, cErr.DatabaseError("database GetListingsByIDs error")
		}
		for _, hit := range hits {
			id, _ := primitive.ObjectIDFromHex(hit.ID)
			listing, ok := listings[id]
			if !ok {
				// 索引尚未同步到刪除
				continue
			}
			results = append(results, &dto.SearchResultDto{
				Score:   hit.Score,
				Listing: modelToListingResponseDto(listing),
			})
		}
	}
	meta.ResultCount = len(results)
	s.trace.ApplyTraceAttributes(span, meta)

	return &dto.SearchResponseDto{Query: query, Results: results}, nil
}

// queryVector 先查 Redis 快取；快取錯誤只記 log
func (s *SearchService) queryVector(ctx context.Context, query string) ([]float32, bool, error) {
	modelName := s.embedder.Model()
	ttl := time.Duration(s.config.Search.QueryCacheTTLSeconds) * time.Second

	if ttl > 0 && s.cache != nil {
		vector, found, err := s.cache.Get(ctx, modelName, query)
		switch {
		case err != nil:
			s.metric.ObserveCacheLookup("error")
			s.logger.Warn("embedding cache lookup failed", zap.Error(err))
		case found:
			s.metric.ObserveCacheLookup("hit")
			return vector, true, nil
		default:
			s.metric.ObserveCacheLookup("miss")
		}
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, false, err
	}
	if ttl > 0 && s.cache != nil {
		if err := s.cache.Set(ctx, modelName, query, vector, ttl); err != nil {
			s.logger.Warn("embedding cache store failed", zap.Error(err))
		}
	}
	return vector, false, nil
}

// Rebuild 從 MongoDB 重新載入整個索引
func (s *SearchService) Rebuild(ctx context.Context, trigger string) (_ int, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx, string(core.SpanIndexRebuild))
	defer func() { end(returnedError) }()

	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	start := time.Now()
	meta := core.TraceIndexRebuildMeta{Trigger: trigger}
	since := s.index.Generation()
	entries := make([]search.Entry, 0, s.index.Len())
	err := s.listingRepo.ForEachIndexable(ctx, func(listing *model.Listing) error {
		meta.Scanned++
		entries = append(entries, search.Entry{
			ID:        listing.ID.Hex(),
			Vector:    listing.Embedding,
			UpdatedAt: listing.UpdatedAt,
		})
		return nil
	})
	if err != nil {
		return 0, cErr.DatabaseError("database ScanListings error")
	}

	meta.Indexed = s.index.Replace(since, entries)
	meta.Skipped = meta.Scanned - meta.Indexed
	meta.Duration = time.Since(start).Milliseconds()
	s.trace.ApplyTraceAttributes(span, meta)
	s.metric.SetIndexSize(meta.Indexed)

	s.logger.Info("search index rebuilt",
		zap.String("trigger", trigger),
		zap.Int("scanned", meta.Scanned),
		zap.Int("indexed", meta.Indexed),
		zap.Int("skipped", meta.Skipped),
		zap.Int64("durationMs", meta.Duration),
	)
	return meta.Indexed, nil
}

// BackfillResult reindex 指令的統計
type BackfillResult struct {
	Candidates int
	Embedded   int
	// Skipped 產生向量期間描述已被改動，保留較新的向量
	Skipped int
	Failed  int
}

// Backfill 為缺向量（或 all=true 時全部）的 listing 重新產生向量，再重建索引。
// 單筆失敗不會中斷其他筆。
func (s *SearchService) Backfill(ctx context.Context, all bool) (_ BackfillResult, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	var result BackfillResult
	modelName := s.embedder.Model()
	listings, err := s.listingRepo.ListForReindex(ctx, modelName, all)
	if err != nil {
		return result, cErr.DatabaseError("database ListForReindex error")
	}
	result.Candidates = len(listings)

	var embedded, skipped, failed atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	concurrency := s.config.Search.ReindexConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	group.SetLimit(concurrency)
	for _, listing := range listings {
		group.Go(func() error {
			vector, err := s.embedder.Embed(groupCtx, listing.Description)
			if err != nil || len(vector) == 0 {
				failed.Add(1)
				s.logger.Warn("reindex embed failed", zap.String("listingID", listing.ID.Hex()), zap.Error(err))
				return nil
			}
			matched, err := s.listingRepo.SetEmbedding(groupCtx, listing.ID, listing.Description, vector, modelName)
			if err != nil {
				// 資料庫錯誤通常是全面性的，直接中止
				return err
			}
			if matched == 0 {
				skipped.Add(1)
				s.logger.Info("reindex skipped changed listing", zap.String("listingID", listing.ID.Hex()))
				return nil
			}
			embedded.Add(1)
			return nil
		})
	}
	err = group.Wait()
	result.Embedded = int(embedded.Load())
	result.Skipped = int(skipped.Load())
	result.Failed = int(failed.Load())
	if err != nil {
		return result, cErr.DatabaseError("database SetEmbedding error")
	}

	if _, err := s.Rebuild(ctx, "backfill"); err != nil {
		return result, err
	}
	return result, nil
}
