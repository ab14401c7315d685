package repository

import (
	"context"
	"fmt"
	"time"

	"agentmarket/internal/core"
	client "agentmarket/internal/database/client"
	"agentmarket/internal/database/mongodb/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ListingRepository struct {
	collection *mongo.Collection
}

func NewListingRepository(mongoClient *client.MongoClient) *ListingRepository {
	repository := &ListingRepository{
		collection: mongoClient.Database().Collection(string(core.MongoCollectionListings)),
	}
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *ListingRepository) ensureIndexes(contextValue context.Context) error {
	indexModels := []mongo.IndexModel{
		{ // provider 自己的列表
			Keys:    bson.D{{Key: "providerID", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_providerID_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "updatedAt", Value: -1}},
			Options: options.Index().SetName("idx_updatedAt_desc"),
		},
		{ // reindex 找缺向量或模型不符的文件
			Keys:    bson.D{{Key: "embeddingModel", Value: 1}},
			Options: options.Index().SetName("idx_embeddingModel"),
		},
	}
	_, err := repository.collection.Indexes().CreateMany(contextValue, indexModels)
	return err
}

// Create：單文件插入
func (repository *ListingRepository) Create(
	contextValue context.Context,
	listing *model.Listing,
) (_ *model.Listing, returnedError error) {

	now := nowUTC()
	if listing.ID.IsZero() {
		listing.ID = primitive.NewObjectID()
	}
	if listing.Categories == nil {
		listing.Categories = []string{}
	}
	if listing.Tags == nil {
		listing.Tags = []string{}
	}
	listing.UsageCount = 0
	listing.LastUsedAt = nil
	listing.CreatedAt = now
	listing.UpdatedAt = now

	insertResult, insertError := repository.collection.InsertOne(contextValue, listing)
	if insertError != nil {
		return nil, insertError
	}
	objectID, ok := insertResult.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected InsertedID type: %T", insertResult.InsertedID)
	}
	listing.ID = objectID
	return listing, nil
}

// GetByID：單文件讀取
func (repository *ListingRepository) GetByID(
	contextValue context.Context,
	listingIdentifier primitive.ObjectID,
) (_ *model.Listing, returnedError error) {

	var listing model.Listing
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": listingIdentifier}).Decode(&listing); returnedError != nil {
		return nil, returnedError
	}
	return &listing, nil
}

// GetByIDs：批次讀取，不存在的 ID 直接略過；回傳順序不保證
func (repository *ListingRepository) GetByIDs(
	contextValue context.Context,
	listingIdentifiers []primitive.ObjectID,
) (_ map[primitive.ObjectID]*model.Listing, returnedError error) {

	listings := make(map[primitive.ObjectID]*model.Listing, len(listingIdentifiers))
	if len(listingIdentifiers) == 0 {
		return listings, nil
	}
	cursor, findError := repository.collection.Find(contextValue, bson.M{"_id": bson.M{"$in": listingIdentifiers}})
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	for cursor.Next(contextValue) {
		var listing model.Listing
		if decodeError := cursor.Decode(&listing); decodeError != nil {
			return nil, decodeError
		}
		listings[listing.ID] = &listing
	}
	if cursorError := cursor.Err(); cursorError != nil {
		return nil, cursorError
	}
	return listings, nil
}

// UpdateByID：$set 指定欄位並回傳更新後文件；找不到回傳 mongo.ErrNoDocuments
func (repository *ListingRepository) UpdateByID(
	contextValue context.Context,
	listingIdentifier primitive.ObjectID,
	setFields bson.M,
) (_ *model.Listing, returnedError error) {

	update := bson.M{"$set": setFields}
	findOptions := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var listing model.Listing
	if returnedError = repository.collection.FindOneAndUpdate(
		contextValue,
		bson.M{"_id": listingIdentifier},
		withUpdatedAt(update),
		findOptions,
	).Decode(&listing); returnedError != nil {
		return nil, returnedError
	}
	return &listing, nil
}

// SetEmbedding：只更新向量，不動 updatedAt（reindex 使用）。
// 只在描述仍是產生向量時的內容才寫入；回傳 0 代表 listing 已刪除或描述已改動
func (repository *ListingRepository) SetEmbedding(
	contextValue context.Context,
	listingIdentifier primitive.ObjectID,
	description string,
	embedding []float32,
	embeddingModel string,
) (_ int64, returnedError error) {

	filter := bson.M{"_id": listingIdentifier, "description": description}
	update := bson.M{"$set": bson.M{"embedding": embedding, "embeddingModel": embeddingModel}}
	result, updateError := repository.collection.UpdateOne(contextValue, filter, update)
	if updateError != nil {
		return 0, updateError
	}
	return result.MatchedCount, nil
}

// DeleteByID：單文件刪除，回傳刪除筆數
func (repository *ListingRepository) DeleteByID(
	contextValue context.Context,
	listingIdentifier primitive.ObjectID,
) (_ int64, returnedError error) {
	result, deleteError := repository.collection.DeleteOne(contextValue, bson.M{"_id": listingIdentifier})
	if deleteError != nil {
		return 0, deleteError
	}
	return result.DeletedCount, nil
}

// ListByProvider：分頁查詢（page 0 起算），依建立時間倒序
func (repository *ListingRepository) ListByProvider(
	contextValue context.Context,
	providerIdentifier primitive.ObjectID,
	page int64,
	size int64,
) (_ []*model.Listing, total int64, returnedError error) {

	filter := bson.M{"providerID": providerIdentifier}
	total, returnedError = repository.collection.CountDocuments(contextValue, filter)
	if returnedError != nil {
		return nil, 0, returnedError
	}

	skip, limit := pageOptions(page, size)
	findOptions := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.M{"embedding": 0})

	cursor, findError := repository.collection.Find(contextValue, filter, findOptions)
	if findError != nil {
		return nil, 0, findError
	}
	defer cursor.Close(contextValue)

	listings := []*model.Listing{}
	if returnedError = cursor.All(contextValue, &listings); returnedError != nil {
		return nil, 0, returnedError
	}
	return listings, total, nil
}

// ForEachIndexable：逐筆走訪有向量的 listing（只取索引需要的欄位）
func (repository *ListingRepository) ForEachIndexable(
	contextValue context.Context,
	visit func(listing *model.Listing) error,
) (returnedError error) {

	filter := bson.M{"embedding.0": bson.M{"$exists": true}}
	findOptions := options.Find().
		SetProjection(bson.M{"_id": 1, "embedding": 1, "embeddingModel": 1, "updatedAt": 1}).
		SetBatchSize(500)

	cursor, findError := repository.collection.Find(contextValue, filter, findOptions)
	if findError != nil {
		return findError
	}
	defer cursor.Close(contextValue)

	for cursor.Next(contextValue) {
		var listing model.Listing
		if decodeError := cursor.Decode(&listing); decodeError != nil {
			return decodeError
		}
		if visitError := visit(&listing); visitError != nil {
			return visitError
		}
	}
	return cursor.Err()
}

// ListForReindex：all=false 時只取缺向量或模型不同者
func (repository *ListingRepository) ListForReindex(
	contextValue context.Context,
	embeddingModel string,
	all bool,
) (_ []*model.Listing, returnedError error) {

	filter := bson.M{}
	if !all {
		filter = bson.M{"$or": bson.A{
			bson.M{"embedding.0": bson.M{"$exists": false}},
			bson.M{"embeddingModel": bson.M{"$ne": embeddingModel}},
		}}
	}
	findOptions := options.Find().SetProjection(bson.M{"_id": 1, "description": 1, "updatedAt": 1})

	cursor, findError := repository.collection.Find(contextValue, filter, findOptions)
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	listings := []*model.Listing{}
	if returnedError = cursor.All(contextValue, &listings); returnedError != nil {
		return nil, returnedError
	}
	return listings, nil
}

// IncrementUsage：usageCount +1 並記錄最後使用時間；回傳符合筆數
func (repository *ListingRepository) IncrementUsage(
	contextValue context.Context,
	listingIdentifier primitive.ObjectID,
	usedAt time.Time,
) (_ int64, returnedError error) {

	update := bson.M{
		"$inc": bson.M{"usageCount": 1},
		"$max": bson.M{"lastUsedAt": usedAt.UTC()},
	}
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": listingIdentifier}, update)
	if updateError != nil {
		return 0, updateError
	}
	return result.MatchedCount, nil
}
