package handler

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pophero110/trackly-sub002/dto"
	"github.com/pophero110/trackly-sub002/repository"
	"github.com/pophero110/trackly-sub002/services"
	"github.com/pophero110/trackly-sub002/utils"
)

// Email and password changes are rate limited to one per two weeks.
const credentialChangeCooldown = 14 * 24 * time.Hour

type ChangeEmailRequest struct {
	NewEmail string `json:"newEmail" binding:"required,email"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func GetUserProfileHandler(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Unauthorized")
		return
	}

	userRepo := repository.GetUserRepo(utils.MongoClient)
	user, err := userRepo.FindUser(userID.(string))
	if err != nil {
		utils.InternalError(c, "Could not fetch user details")
		return
	}
	if user == nil {
		utils.NotFound(c, "User not found")
		return
	}

	utils.Success(c, dto.ToUserProfileResponse(user))
}

func ChangeEmailHandler(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	var req ChangeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid email format")
		return
	}

	userRepo := repository.GetUserRepo(utils.MongoClient)
	currentUser, err := userRepo.FindUser(userID.(string))
	if err != nil {
		log.Printf("Error fetching user %s: %v", userID, err)
		utils.InternalError(c, "Failed to fetch user details")
		return
	}
	if currentUser == nil {
		utils.NotFound(c, "User not found")
		return
	}

	if currentUser.Email == req.NewEmail {
		utils.BadRequest(c, "New email is same as current email")
		return
	}

	if currentUser.LastEmailChange != nil && time.Since(*currentUser.LastEmailChange) < credentialChangeCooldown {
		utils.TooManyRequests(c, "Email can only be changed every 2 weeks", gin.H{
			"nextAllowedChange": currentUser.LastEmailChange.Add(credentialChangeCooldown),
		})
		return
	}

	result, err := userRepo.UpdateUserEmail(userID.(string), req.NewEmail)
	if err != nil {
		log.Printf("Failed to update email for user %s: %v", userID, err)
		utils.InternalError(c, "Database error while updating email")
		return
	}
	if result == 0 {
		utils.NotFound(c, "User not found")
		return
	}

	utils.Success(c, gin.H{
		"message": "Email updated successfully",
		"email":   req.NewEmail,
	})
}

func ChangePasswordHandler(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format")
		return
	}

	userRepo := repository.GetUserRepo(utils.MongoClient)
	user, err := userRepo.FindUser(userID.(string))
	if err != nil {
		log.Printf("Error fetching user %s: %v", userID, err)
		utils.InternalError(c, "Failed to fetch user details")
		return
	}
	if user == nil {
		utils.NotFound(c, "User not found")
		return
	}

	if !services.ComparePasswords(user.Password, req.OldPassword) {
		utils.Unauthorized(c, "Current password is incorrect")
		return
	}

	if !utils.ValidatePassword(req.NewPassword) {
		utils.BadRequest(c, "New password does not meet requirements")
		return
	}

	if services.ComparePasswords(user.Password, req.NewPassword) {
		utils.BadRequest(c, "New password cannot be the same as current password")
		return
	}

	if user.LastPasswordChange != nil && time.Since(*user.LastPasswordChange) < credentialChangeCooldown {
		utils.TooManyRequests(c, "Password can only be changed every 2 weeks", gin.H{
			"nextAllowedChange": user.LastPasswordChange.Add(credentialChangeCooldown),
		})
		return
	}

	hashedPassword, err := services.HashPassword(req.NewPassword)
	if err != nil {
		log.Printf("Error hashing password for user %s: %v", userID, err)
		utils.InternalError(c, "Failed to process new password")
		return
	}

	result, err := userRepo.UpdateUserPassword(userID.(string), hashedPassword)
	if err != nil {
		log.Printf("Failed to update password for user %s: %v", userID, err)
		utils.InternalError(c, "Failed to update password")
		return
	}
	if result == 0 {
		utils.NotFound(c, "User not found")
		return
	}

	utils.Success(c, gin.H{"message": "Password updated successfully"})
}

// DeleteUserHandler removes the account and everything it owns: sessions,
// tags, and entries.
func DeleteUserHandler(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	uid := userID.(string)
	userRepo := repository.GetUserRepo(utils.MongoClient)
	sessionRepo := repository.GetSessionRepo(utils.MongoClient)
	tagsRepo := repository.GetTagsRepo(utils.MongoClient)
	entriesRepo := repository.GetEntriesRepo(utils.MongoClient)

	ctx := c.Request.Context()
	if err := sessionRepo.DeleteUserSessions(uid); err != nil {
		log.Printf("Error ending user sessions: %v", err)
	}
	if err := entriesRepo.DeleteUserEntries(ctx, uid); err != nil {
		log.Printf("Error deleting user entries: %v", err)
	}
	if err := tagsRepo.DeleteUserTags(ctx, uid); err != nil {
		log.Printf("Error deleting user tags: %v", err)
	}

	deletedCount, err := userRepo.DeleteUserByID(uid)
	if err != nil {
		log.Printf("Failed to delete user %s: %v", uid, err)
		utils.InternalError(c, "Failed to delete user")
		return
	}
	if deletedCount == 0 {
		utils.NotFound(c, "User not found")
		return
	}

	c.SetCookie("session_id", "", -1, "/", "", true, true)

	log.Printf("User deleted successfully: %s", uid)
	utils.Success(c, gin.H{"message": "User deleted successfully"})
}
