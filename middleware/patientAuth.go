package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"radbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// JWTAuthPatientMiddleware authenticates the patient bearer token. Validated
// token hashes are cached in Redis so repeated requests skip signature
// verification; a cache outage falls back to full validation.
func JWTAuthPatientMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
					"code":  500,
				})
			}
		}()

		ctx := context.Background()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
				"code":  0,
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
				"code":  0,
			})
			return
		}

		computedHash := utils.HashToken(tokenString)

		authCache := utils.GetAuthCacheClient()
		cacheEnabled := authCache != nil
		if cacheEnabled {
			cachedPatientID, err := authCache.Get(ctx, utils.AuthCachePrefix+computedHash).Result()
			if err == nil && cachedPatientID != "" {
				c.Set("patientID", cachedPatientID)
				c.Next()
				return
			} else if err != redis.Nil {
				log.Printf("WARNING: Error retrieving auth cache key: %v. Falling back to token validation.", err)
			}
		}

		patientID, err := utils.ExtractPatientIDFromToken(tokenString)
		if err != nil || patientID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
				"code":  0,
			})
			return
		}

		if cacheEnabled {
			_ = authCache.Set(ctx, utils.AuthCachePrefix+computedHash, patientID, time.Hour).Err()
		}

		c.Set("patientID", patientID)
		c.Next()
	}
}
