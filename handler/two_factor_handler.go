package handler

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"

	"github.com/pophero110/trackly-sub002/repository"
	"github.com/pophero110/trackly-sub002/utils"
)

type TwoFactorSecretResponse struct {
	Secret string `json:"secret"`
	QRCode string `json:"qrCode"`
}

// Generate2FASecretHandler generates a new TOTP secret and QR code for
// enrollment. Nothing is persisted until the code is confirmed.
func Generate2FASecretHandler(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	userRepo := repository.GetUserRepo(utils.MongoClient)
	user, err := userRepo.FindUser(userID.(string))
	if err != nil {
		utils.InternalError(c, "Failed to fetch user")
		return
	}

	if user.TwoFactorEnabled {
		utils.BadRequest(c, "2FA is already enabled")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Trackly",
		AccountName: user.Email,
	})
	if err != nil {
		utils.InternalError(c, "Failed to generate 2FA secret")
		return
	}

	var buf bytes.Buffer
	img, err := key.Image(200, 200)
	if err != nil {
		utils.InternalError(c, "Failed to generate QR code")
		return
	}
	if err := png.Encode(&buf, img); err != nil {
		utils.InternalError(c, "Failed to encode QR code")
		return
	}

	utils.Success(c, TwoFactorSecretResponse{
		Secret: key.Secret(),
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
}

func Enable2FAHandler(c *gin.Context) {
	var req struct {
		Secret string `json:"secret" binding:"required"`
		Code   string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	userID, _ := c.Get("user_id")
	userRepo := repository.GetUserRepo(utils.MongoClient)

	user, err := userRepo.FindUser(userID.(string))
	if err != nil {
		utils.InternalError(c, "Failed to fetch user")
		return
	}
	if user.TwoFactorEnabled {
		utils.BadRequest(c, "2FA is already enabled")
		return
	}

	if !totp.Validate(req.Code, req.Secret) {
		utils.BadRequest(c, "Invalid 2FA code")
		return
	}

	recoveryCodes, err := utils.GenerateRecoveryCodes()
	if err != nil {
		utils.InternalError(c, "Failed to generate recovery codes")
		return
	}

	// Only hashes are stored; the plain codes are shown once below.
	hashedCodes := utils.HashRecoveryCodes(recoveryCodes)

	if err := userRepo.Enable2FAWithRecoveryCodes(userID.(string), req.Secret, hashedCodes); err != nil {
		utils.InternalError(c, "Failed to enable 2FA")
		return
	}

	utils.Success(c, gin.H{
		"message":       "2FA enabled successfully",
		"recoveryCodes": recoveryCodes,
		"warning":       "Save these recovery codes securely. They will not be shown again.",
	})
}

func Disable2FAHandler(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	userID, _ := c.Get("user_id")
	userRepo := repository.GetUserRepo(utils.MongoClient)
	user, err := userRepo.FindUser(userID.(string))
	if err != nil {
		utils.InternalError(c, "Failed to fetch user")
		return
	}

	if !user.TwoFactorEnabled {
		utils.BadRequest(c, "2FA is not enabled")
		return
	}

	if !totp.Validate(req.Code, user.TwoFactorSecret) {
		utils.Unauthorized(c, "Invalid 2FA code")
		return
	}

	if err := userRepo.Disable2FA(userID.(string)); err != nil {
		utils.InternalError(c, "Failed to disable 2FA")
		return
	}

	utils.Success(c, gin.H{"message": "2FA disabled successfully"})
}

func UseRecoveryCodeHandler(c *gin.Context) {
	var req struct {
		RecoveryCode string `json:"recoveryCode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	userID, _ := c.Get("user_id")
	userRepo := repository.GetUserRepo(utils.MongoClient)
	user, err := userRepo.FindUser(userID.(string))
	if err != nil {
		utils.InternalError(c, "Failed to fetch user")
		return
	}

	code := strings.ToUpper(strings.ReplaceAll(req.RecoveryCode, "-", ""))
	hashedCode := utils.HashString(code)

	// Each code is single use: a match is removed from the stored set.
	found := false
	remaining := make([]string, 0, len(user.RecoveryCodes))
	for _, stored := range user.RecoveryCodes {
		if stored == hashedCode {
			found = true
		} else {
			remaining = append(remaining, stored)
		}
	}

	if !found {
		utils.Unauthorized(c, "Invalid recovery code")
		return
	}

	if err := userRepo.UpdateRecoveryCodes(userID.(string), remaining); err != nil {
		utils.InternalError(c, "Failed to update recovery codes")
		return
	}

	utils.Success(c, gin.H{
		"message":        "Recovery code accepted",
		"remainingCodes": len(remaining),
		"warning":        "Please set up a new authenticator app as soon as possible",
	})
}
