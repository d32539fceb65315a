package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studygate-bot/internal/api/auth"
	"studygate-bot/pkg/config"
)

// GenerateJWTHandler exchanges an admin id plus HMAC signature for a
// short-lived bearer token.
func GenerateJWTHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			AdminID   string `json:"adminId" binding:"required"`
			Signature string `json:"signature" binding:"required"`
		}

		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "adminId and signature are required"})
			return
		}

		adminID, err := strconv.ParseInt(request.AdminID, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "adminId must be a number"})
			return
		}

		if !config.IsAdmin(adminID) || !auth.ValidateSignature(adminID, request.Signature, config.SecretKey) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		token, err := auth.GenerateTokenJWT(adminID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// VerifyJWTHandler reports whether a presented token is still valid.
func VerifyJWTHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "error": "missing token"})
			return
		}

		tokenString := authHeader
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenString = authHeader[7:]
		}

		claims, err := auth.ValidateTokenJWT(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "error": "invalid token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"valid":      true,
			"admin_id":   claims.AdminID,
			"expires_at": claims.ExpiresAt.Time,
		})
	}
}
