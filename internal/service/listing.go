package service

import (
	"context"
	"errors"

	"agentmarket/internal/database/mongodb/model"
	"agentmarket/internal/dto"
	cErr "agentmarket/internal/pkg/error"
	"agentmarket/internal/search"
	"agentmarket/internal/service/embedding"
	"agentmarket/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type ListingService struct {
	logger      *zap.Logger
	trace       *telemetry.Trace
	metric      *telemetry.Metric
	listingRepo ListingStore
	embedder    embedding.Embedder
	index       *search.Index
}

func NewListingService(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	listingRepo ListingStore,
	embedder embedding.Embedder,
	index *search.Index,
) *ListingService {
	return &ListingService{
		logger:      logger,
		trace:       trace,
		metric:      metric,
		listingRepo: listingRepo,
		embedder:    embedder,
		index:       index,
	}
}

// Create 先產生向量再寫入；embedding 失敗時不寫入任何資料
func (s *ListingService) Create(ctx context.Context, ownerID primitive.ObjectID, input *dto.CreateListingDto) (_ *dto.ListingResponseDto, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	if input.ProviderID != "" && input.ProviderID != ownerID.Hex() {
		return nil, cErr.Forbidden("cannot create a listing for another provider")
	}
	if err := validateOpenAPISpec(ctx, input.OpenAPISpec); err != nil {
		return nil, err
	}

	vector, err := s.embedder.Embed(ctx, input.Description)
	if err != nil {
		return nil, err
	}

	listing := &model.Listing{
		ID:             primitive.NewObjectID(),
		ProviderID:     ownerID,
		Name:           input.Name,
		Description:    input.Description,
		Categories:     input.Categories,
		Tags:           input.Tags,
		API:            apiDtoToModel(input.API),
		OpenAPISpec:    input.OpenAPISpec,
		Embedding:      vector,
		EmbeddingModel: s.embedder.Model(),
	}
	created, err := s.listingRepo.Create(ctx, listing)
	if err != nil {
		return nil, cErr.DatabaseError("database CreateListing error")
	}
	s.syncIndex(created)
	s.logger.Info("listing created",
		zap.String("listingID", created.ID.Hex()),
		zap.String("providerID", ownerID.Hex()),
		zap.Int("dimensions", len(vector)),
	)
	return modelToListingResponseDto(created), nil
}

func (s *ListingService) Get(ctx context.Context, id primitive.ObjectID) (_ *dto.ListingResponseDto, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return modelToListingResponseDto(listing), nil
}

// ListMine 登入者自己的 listing，新到舊
func (s *ListingService) ListMine(ctx context.Context, ownerID primitive.ObjectID, page, size int64) (_ *dto.ListingPageDto, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	listings, total, err := s.listingRepo.ListByProvider(ctx, ownerID, page, size)
	if err != nil {
		return nil, cErr.DatabaseError("database ListListings error")
	}
	items := make([]*dto.ListingResponseDto, len(listings))
	for i, l := range listings {
		items[i] = modelToListingResponseDto(l)
	}
	return &dto.ListingPageDto{Items: items, Page: page, Size: size, Total: total}, nil
}

// Update 描述有變時先重新產生向量；embedding 失敗時原文件不變
func (s *ListingService) Update(ctx context.Context, ownerID, id primitive.ObjectID, patch *dto.UpdateListingDto) (_ *dto.ListingResponseDto, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	existing, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return modelToListingResponseDto(existing), nil
	}

	update := bson.M{}
	if patch.Name != nil {
		update["name"] = *patch.Name
	}
	if patch.Categories != nil {
		update["categories"] = *patch.Categories
	}
	if patch.Tags != nil {
		update["tags"] = *patch.Tags
	}
	if patch.API != nil {
		update["api"] = apiDtoToModel(*patch.API)
	}
	if patch.OpenAPISpec != nil {
		if err := validateOpenAPISpec(ctx, *patch.OpenAPISpec); err != nil {
			return nil, err
		}
		update["openapiSpec"] = *patch.OpenAPISpec
	}
	if patch.Description != nil {
		update["description"] = *patch.Description
		if *patch.Description != existing.Description || !existing.HasEmbedding() {
			vector, err := s.embedder.Embed(ctx, *patch.Description)
			if err != nil {
				return nil, err
			}
			update["embedding"] = vector
			update["embeddingModel"] = s.embedder.Model()
		}
	}

	updated, err := s.listingRepo.UpdateByID(ctx, id, update)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("listing not found")
		}
		return nil, cErr.DatabaseError("database UpdateListing error")
	}
	s.syncIndex(updated)
	return modelToListingResponseDto(updated), nil
}

// Delete 刪除 listing 與索引；usage events 保留
func (s *ListingService) Delete(ctx context.Context, ownerID, id primitive.ObjectID) (returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	if _, err := s.loadOwned(ctx, ownerID, id); err != nil {
		return err
	}
	deleted, err := s.listingRepo.DeleteByID(ctx, id)
	if err != nil {
		return cErr.DatabaseError("database DeleteListing error")
	}
	s.index.Remove(id.Hex())
	s.metric.SetIndexSize(s.index.Len())
	if deleted == 0 {
		return cErr.NotFound("listing not found")
	}
	s.logger.Info("listing deleted", zap.String("listingID", id.Hex()), zap.String("providerID", ownerID.Hex()))
	return nil
}

func (s *ListingService) load(ctx context.Context, id primitive.ObjectID) (*model.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapListingLookupError(err)
	}
	return listing, nil
}

func mapListingLookupError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return cErr.NotFound("listing not found")
	}
	return cErr.DatabaseError("database GetListing error")
}

func (s *ListingService) loadOwned(ctx context.Context, ownerID, id primitive.ObjectID) (*model.Listing, error) {
	listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.ProviderID != ownerID {
		return nil, cErr.Forbidden("listing belongs to another provider")
	}
	return listing, nil
}

func (s *ListingService) syncIndex(listing *model.Listing) {
	if listing.HasEmbedding() {
		s.index.Upsert(listing.ID.Hex(), listing.Embedding, listing.UpdatedAt)
	} else {
		s.index.Remove(listing.ID.Hex())
	}
	s.metric.SetIndexSize(s.index.Len())
}

func apiDtoToModel(api dto.ListingAPIDto) model.ListingAPI {
	return model.ListingAPI{
		Endpoint:     api.Endpoint,
		Method:       api.Method,
		InputSchema:  api.InputSchema,
		OutputSchema: api.OutputSchema,
	}
}

func modelToListingResponseDto(listing *model.Listing) *dto.ListingResponseDto {
	categories := listing.Categories
	if categories == nil {
		categories = []string{}
	}
	tags := listing.Tags
	if tags == nil {
		tags = []string{}
	}
	return &dto.ListingResponseDto{
		ID:          listing.ID.Hex(),
		ProviderID:  listing.ProviderID.Hex(),
		Name:        listing.Name,
		Description: listing.Description,
		Categories:  categories,
		Tags:        tags,
		API: dto.ListingAPIDto{
			Endpoint:     listing.API.Endpoint,
			Method:       listing.API.Method,
			InputSchema:  listing.API.InputSchema,
			OutputSchema: listing.API.OutputSchema,
		},
		OpenAPISpec:    listing.OpenAPISpec,
		EmbeddingModel: listing.EmbeddingModel,
		UsageCount:     listing.UsageCount,
		LastUsedAt:     listing.LastUsedAt,
		CreatedAt:      listing.CreatedAt,
		UpdatedAt:      listing.UpdatedAt,
	}
}
