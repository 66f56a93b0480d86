package public

import (
	handlershared "github.com/giftify-next/internal/http/handlers/shared"
	"github.com/giftify-next/internal/http/response"
	"github.com/giftify-next/internal/service"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

func getUserRole(c *gin.Context) (string, bool) {
	value, exists := c.Get("user_role")
	if !exists {
		respondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return "", false
	}
	role, ok := value.(string)
	if !ok || role == "" {
		respondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return "", false
	}
	return role, true
}

// getActor 从请求上下文组装操作者身份。
func getActor(c *gin.Context) (service.Actor, bool) {
	id, ok := getUserID(c)
	if !ok {
		return service.Actor{}, false
	}
	role, ok := getUserRole(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{ID: id, Role: role}, true
}
