package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pingmaster-dev/pingmaster/internal/middleware"
	"github.com/pingmaster-dev/pingmaster/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("user not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uuid.UUID, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return uuid.Nil, err
	}

	return user.ID, nil
}

// GetServiceID parses the service_id path parameter.
func GetServiceID(ctx *gin.Context) (uuid.UUID, error) {
	serviceIDStr := ctx.Param("service_id")

	if serviceIDStr == "" {
		return uuid.Nil, fmt.Errorf("service ID not found")
	}

	serviceID, err := uuid.Parse(serviceIDStr)

	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid service ID")
	}

	return serviceID, nil
}
