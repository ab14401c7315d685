package repository

import (
	"context"
	"fmt"

	"agentmarket/internal/core"
	client "agentmarket/internal/database/client"
	"agentmarket/internal/database/mongodb/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UsageEventRepository struct {
	collection *mongo.Collection
}

func NewUsageEventRepository(mongoClient *client.MongoClient) *UsageEventRepository {
	repository := &UsageEventRepository{
		collection: mongoClient.Database().Collection(string(core.MongoCollectionUsageEvents)),
	}
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *UsageEventRepository) ensureIndexes(contextValue context.Context) error {
	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "listingID", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_listingID_createdAt"),
		},
	}
	_, err := repository.collection.Indexes().CreateMany(contextValue, indexModels)
	return err
}

// Create：只新增
func (repository *UsageEventRepository) Create(
	contextValue context.Context,
	event *model.UsageEvent,
) (_ *model.UsageEvent, returnedError error) {

	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = nowUTC()
	}

	insertResult, insertError := repository.collection.InsertOne(contextValue, event)
	if insertError != nil {
		return nil, insertError
	}
	objectID, ok := insertResult.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected InsertedID type: %T", insertResult.InsertedID)
	}
	event.ID = objectID
	return event, nil
}

// ListByListing：分頁查詢（page 0 起算），最新在前
func (repository *UsageEventRepository) ListByListing(
	contextValue context.Context,
	listingIdentifier primitive.ObjectID,
	page int64,
	size int64,
) (_ []*model.UsageEvent, total int64, returnedError error) {

	filter := bson.M{"listingID": listingIdentifier}
	total, returnedError = repository.collection.CountDocuments(contextValue, filter)
	if returnedError != nil {
		return nil, 0, returnedError
	}

	skip, limit := pageOptions(page, size)
	findOptions := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, findError := repository.collection.Find(contextValue, filter, findOptions)
	if findError != nil {
		return nil, 0, findError
	}
	defer cursor.Close(contextValue)

	events := []*model.UsageEvent{}
	if returnedError = cursor.All(contextValue, &events); returnedError != nil {
		return nil, 0, returnedError
	}
	return events, total, nil
}
