package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tableorder/utils"
)

const (
	TableTokenHeader = "X-Table-Token"

	ContextShopID  = "shopId"
	ContextTableNo = "tableNo"
)

// TableTokenMiddleware 校验桌码令牌，并把店铺和桌号写入上下文
func TableTokenMiddleware(tokens *utils.TableTokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(TableTokenHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "table token is required"})
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid table token"})
			return
		}
		c.Set(ContextShopID, claims.ShopID)
		c.Set(ContextTableNo, claims.TableNo)
		c.Next()
	}
}
