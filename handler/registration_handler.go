package handler

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/pophero110/trackly-sub002/dto"
	"github.com/pophero110/trackly-sub002/model"
	"github.com/pophero110/trackly-sub002/repository"
	"github.com/pophero110/trackly-sub002/services"
	"github.com/pophero110/trackly-sub002/usecase"
	"github.com/pophero110/trackly-sub002/utils"
)

func RegistrationHandler(c *gin.Context) {
	var req model.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.TrackAuthAttempt("failure", "validation")
		utils.BadRequest(c, "invalid request")
		return
	}

	userService := &usecase.UserService{
		UsersRepo: repository.GetUserRepo(utils.MongoClient),
	}

	user, err := userService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrEmailTaken) {
			utils.Conflict(c, "email already registered")
			return
		}
		log.Printf("CreateUser error: %v", err)
		utils.BadRequest(c, "invalid request")
		return
	}

	token, err := services.GenerateToken(user.UserID)
	if err != nil {
		utils.TrackError("auth", "token_generation")
		utils.InternalError(c, "failed to generate token")
		return
	}

	refreshToken, err := services.GenerateRefreshToken(user.UserID)
	if err != nil {
		utils.TrackError("auth", "refresh_token_generation")
		utils.InternalError(c, "failed to generate refresh token")
		return
	}

	utils.TrackAuthAttempt("success", "register")
	utils.Created(c, dto.AuthResponse{
		User:    dto.ToUserResponse(user),
		Token:   token,
		Refresh: refreshToken,
	})
}
