package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/pophero110/trackly-sub002/services"
	"github.com/pophero110/trackly-sub002/utils"
)

// RefreshTokenHandler rotates the token pair: the presented refresh token is
// blacklisted and a fresh access/refresh pair is issued.
func RefreshTokenHandler(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		utils.Unauthorized(c, "Missing or invalid refresh token")
		return
	}

	refreshToken := strings.TrimPrefix(authHeader, "Bearer ")

	if services.IsTokenBlacklisted(refreshToken) {
		utils.Unauthorized(c, "Refresh token has been revoked")
		return
	}

	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(utils.JWTSecretKey), nil
	})
	if err != nil || !token.Valid {
		utils.Unauthorized(c, "Invalid refresh token")
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["type"] != "refresh" || claims["user_id"] == nil {
		utils.Unauthorized(c, "Invalid token claims")
		return
	}

	if exp, ok := claims["exp"].(float64); ok && time.Unix(int64(exp), 0).Before(time.Now()) {
		utils.TokenUsage.WithLabelValues("refresh", "expired").Inc()
		utils.Unauthorized(c, "Refresh token has expired")
		return
	}

	userID := claims["user_id"].(string)

	newAccessToken, err := services.GenerateToken(userID)
	if err != nil {
		utils.InternalError(c, "Failed to generate access token")
		return
	}
	newRefreshToken, err := services.GenerateRefreshToken(userID)
	if err != nil {
		utils.InternalError(c, "Failed to generate refresh token")
		return
	}

	// Best effort: rotation should not fail just because Redis is down.
	if err := services.BlacklistTokens("", refreshToken); err != nil {
		utils.TrackError("cache", "blacklist_failed")
	}

	utils.TokenUsage.WithLabelValues("refresh", "rotated").Inc()
	utils.Success(c, gin.H{
		"token":   newAccessToken,
		"refresh": newRefreshToken,
	})
}
