package handler

import (
	"agentmarket/internal/core"
	cErr "agentmarket/internal/pkg/error"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProviderSet Provider对象集合
var ProviderSet = wire.NewSet(
	NewProviderHandler,
	NewListingHandler,
	NewSearchHandler,
	NewUsageHandler,
	NewHealthHandler,
	NewInfoHandler,
)

// callerID 取出 Auth middleware 放入的 provider ID
func callerID(c *gin.Context) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.GetString(core.ContextProviderID))
	if err != nil {
		return primitive.NilObjectID, cErr.Unauthorized("not authenticated")
	}
	return id, nil
}
