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

type ProviderRepository struct {
	collection *mongo.Collection
}

func NewProviderRepository(mongoClient *client.MongoClient) *ProviderRepository {
	repository := &ProviderRepository{
		collection: mongoClient.Database().Collection(string(core.MongoCollectionProviders)),
	}
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *ProviderRepository) ensureIndexes(contextValue context.Context) error {
	indexModels := []mongo.IndexModel{
		{ // email 唯一；註冊重複由 duplicate key 擋下
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
	}
	_, err := repository.collection.Indexes().CreateMany(contextValue, indexModels)
	return err
}

// Create：單文件插入；email 重複時回傳 mongo duplicate key error
func (repository *ProviderRepository) Create(
	contextValue context.Context,
	provider *model.Provider,
) (_ *model.Provider, returnedError error) {

	now := nowUTC()
	if provider.ID.IsZero() {
		provider.ID = primitive.NewObjectID()
	}
	provider.CreatedAt = now
	provider.UpdatedAt = now

	insertResult, insertError := repository.collection.InsertOne(contextValue, provider)
	if insertError != nil {
		return nil, insertError
	}
	objectID, ok := insertResult.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected InsertedID type: %T", insertResult.InsertedID)
	}
	provider.ID = objectID
	return provider, nil
}

// GetByID：單文件讀取
func (repository *ProviderRepository) GetByID(
	contextValue context.Context,
	providerIdentifier primitive.ObjectID,
) (_ *model.Provider, returnedError error) {

	var provider model.Provider
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": providerIdentifier}).Decode(&provider); returnedError != nil {
		return nil, returnedError
	}
	return &provider, nil
}

// GetByEmail：email 需由呼叫端先正規化（小寫、去空白）
func (repository *ProviderRepository) GetByEmail(
	contextValue context.Context,
	email string,
) (_ *model.Provider, returnedError error) {

	var provider model.Provider
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"email": email}).Decode(&provider); returnedError != nil {
		return nil, returnedError
	}
	return &provider, nil
}
