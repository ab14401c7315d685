package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	fluentdModel "agentmarket/internal/database/fluentd/model"
	"agentmarket/internal/database/mongodb/model"
	cErr "agentmarket/internal/pkg/error"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// 以記憶體實作 service 層的 store 介面，供 service/handler 測試使用

// ---- provider store ----

type ProviderStore struct {
	mu        sync.Mutex
	Providers map[primitive.ObjectID]*model.Provider
	Err       error
}

func NewProviderStore() *ProviderStore {
	return &ProviderStore{Providers: map[primitive.ObjectID]*model.Provider{}}
}

func (f *ProviderStore) Create(_ context.Context, p *model.Provider) (*model.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	for _, existing := range f.Providers {
		if existing.Email == p.Email {
			return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "duplicate key"}}}
		}
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	copied := *p
	f.Providers[p.ID] = &copied
	return p, nil
}

func (f *ProviderStore) GetByID(_ context.Context, id primitive.ObjectID) (*model.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	p, ok := f.Providers[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *p
	return &copied, nil
}

func (f *ProviderStore) GetByEmail(_ context.Context, email string) (*model.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	for _, p := range f.Providers {
		if p.Email == email {
			copied := *p
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

// Remove 模擬帳號被移除
func (f *ProviderStore) Remove(id primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Providers, id)
}

// ---- listing store ----

type ListingStore struct {
	mu       sync.Mutex
	Listings map[primitive.ObjectID]*model.Listing
	clock    time.Time
	Err      error
}

func NewListingStore() *ListingStore {
	return &ListingStore{
		Listings: map[primitive.ObjectID]*model.Listing{},
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *ListingStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func cloneListing(l *model.Listing) *model.Listing {
	copied := *l
	copied.Embedding = append([]float32(nil), l.Embedding...)
	copied.Categories = append([]string(nil), l.Categories...)
	copied.Tags = append([]string(nil), l.Tags...)
	return &copied
}

func (f *ListingStore) Create(_ context.Context, l *model.Listing) (*model.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	now := f.tick()
	l.CreatedAt, l.UpdatedAt = now, now
	f.Listings[l.ID] = cloneListing(l)
	return l, nil
}

func (f *ListingStore) GetByID(_ context.Context, id primitive.ObjectID) (*model.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	l, ok := f.Listings[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return cloneListing(l), nil
}

func (f *ListingStore) GetByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	out := map[primitive.ObjectID]*model.Listing{}
	for _, id := range ids {
		if l, ok := f.Listings[id]; ok {
			out[id] = cloneListing(l)
		}
	}
	return out, nil
}

func (f *ListingStore) UpdateByID(_ context.Context, id primitive.ObjectID, set bson.M) (*model.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	l, ok := f.Listings[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	for key, value := range set {
		switch key {
		case "name":
			l.Name = value.(string)
		case "description":
			l.Description = value.(string)
		case "categories":
			l.Categories = value.([]string)
		case "tags":
			l.Tags = value.([]string)
		case "api":
			l.API = value.(model.ListingAPI)
		case "openapiSpec":
			l.OpenAPISpec = value.(string)
		case "embedding":
			l.Embedding = value.([]float32)
		case "embeddingModel":
			l.EmbeddingModel = value.(string)
		default:
			return nil, errors.New("unexpected update field " + key)
		}
	}
	l.UpdatedAt = f.tick()
	return cloneListing(l), nil
}

func (f *ListingStore) SetEmbedding(_ context.Context, id primitive.ObjectID, description string, embedding []float32, embeddingModel string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	l, ok := f.Listings[id]
	if !ok || l.Description != description {
		return 0, nil
	}
	l.Embedding = append([]float32(nil), embedding...)
	l.EmbeddingModel = embeddingModel
	return 1, nil
}

func (f *ListingStore) DeleteByID(_ context.Context, id primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	if _, ok := f.Listings[id]; !ok {
		return 0, nil
	}
	delete(f.Listings, id)
	return 1, nil
}

func (f *ListingStore) ListByProvider(_ context.Context, providerID primitive.ObjectID, page, size int64) ([]*model.Listing, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, 0, f.Err
	}
	var mine []*model.Listing
	for _, l := range f.Listings {
		if l.ProviderID == providerID {
			mine = append(mine, cloneListing(l))
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })
	total := int64(len(mine))
	start := page * size
	if start >= total {
		return []*model.Listing{}, total, nil
	}
	stop := start + size
	if stop > total {
		stop = total
	}
	return mine[start:stop], total, nil
}

func (f *ListingStore) ForEachIndexable(_ context.Context, visit func(*model.Listing) error) error {
	f.mu.Lock()
	snapshot := make([]*model.Listing, 0, len(f.Listings))
	for _, l := range f.Listings {
		if len(l.Embedding) > 0 {
			snapshot = append(snapshot, cloneListing(l))
		}
	}
	err := f.Err
	f.mu.Unlock()
	if err != nil {
		return err
	}
	for _, l := range snapshot {
		if err := visit(l); err != nil {
			return err
		}
	}
	return nil
}

func (f *ListingStore) ListForReindex(_ context.Context, embeddingModel string, all bool) ([]*model.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var out []*model.Listing
	for _, l := range f.Listings {
		if all || len(l.Embedding) == 0 || l.EmbeddingModel != embeddingModel {
			out = append(out, cloneListing(l))
		}
	}
	return out, nil
}

func (f *ListingStore) IncrementUsage(_ context.Context, id primitive.ObjectID, usedAt time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	l, ok := f.Listings[id]
	if !ok {
		return 0, nil
	}
	l.UsageCount++
	t := usedAt
	l.LastUsedAt = &t
	return 1, nil
}

// ---- usage store ----

type UsageStore struct {
	mu     sync.Mutex
	Events []*model.UsageEvent
	Err    error
}

func (f *UsageStore) Create(_ context.Context, e *model.UsageEvent) (*model.UsageEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	copied := *e
	f.Events = append(f.Events, &copied)
	return e, nil
}

func (f *UsageStore) ListByListing(_ context.Context, listingID primitive.ObjectID, page, size int64) ([]*model.UsageEvent, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.UsageEvent
	for i := len(f.Events) - 1; i >= 0; i-- {
		if f.Events[i].ListingID == listingID {
			out = append(out, f.Events[i])
		}
	}
	total := int64(len(out))
	start := page * size
	if start >= total {
		return []*model.UsageEvent{}, total, nil
	}
	stop := start + size
	if stop > total {
		stop = total
	}
	return out[start:stop], total, nil
}

func (f *UsageStore) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Events)
}

// ---- embedder ----

// Embedder 以詞袋向量模擬語意：共享字詞越多越相似
type Embedder struct {
	mu    sync.Mutex
	vocab map[string]int
	calls int
	fail  bool
	model string
}

const embedderDims = 64

func NewEmbedder() *Embedder {
	return &Embedder{vocab: map[string]int{}, model: "fake-embed"}
}

func (f *Embedder) Model() string { return f.model }

func (f *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return nil, cErr.UpstreamUnavailable("embedding provider unavailable")
	}
	vector := make([]float32, embedderDims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?")
		if len(word) < 3 {
			continue
		}
		idx, ok := f.vocab[word]
		if !ok {
			idx = len(f.vocab) % embedderDims
			f.vocab[word] = idx
		}
		vector[idx]++
	}
	return vector, nil
}

func (f *Embedder) SetFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *Embedder) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// ---- cache ----

type Cache struct {
	mu      sync.Mutex
	Entries map[string][]float32
	GetErr  error
}

func NewCache() *Cache { return &Cache{Entries: map[string][]float32{}} }

func (f *Cache) Get(_ context.Context, model, text string) ([]float32, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return nil, false, f.GetErr
	}
	v, ok := f.Entries[model+"|"+text]
	return v, ok, nil
}

func (f *Cache) Set(_ context.Context, model, text string, vector []float32, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Entries[model+"|"+text] = vector
	return nil
}

// ---- usage logger ----

type UsageLogger struct {
	mu     sync.Mutex
	Events []fluentdModel.UsageEventLog
	Err    error
}

func (f *UsageLogger) LogUsageEvent(_ context.Context, e fluentdModel.UsageEventLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = append(f.Events, e)
	return f.Err
}
