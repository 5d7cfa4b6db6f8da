package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/pophero110/trackly-sub002/dto"
	"github.com/pophero110/trackly-sub002/repository"
	"github.com/pophero110/trackly-sub002/usecase"
	"github.com/pophero110/trackly-sub002/utils"
)

func ListTagsHandler(c *gin.Context, tagsService *usecase.TagsService) {
	userID := c.GetString("user_id")

	tags, err := tagsService.GetUserTags(c.Request.Context(), userID)
	if err != nil {
		utils.InternalError(c, "Failed to fetch tags")
		return
	}

	utils.Success(c, gin.H{"tags": tags})
}

func CreateTagHandler(c *gin.Context, tagsService *usecase.TagsService) {
	userID := c.GetString("user_id")

	var req dto.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	tag, err := tagsService.CreateTag(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, usecase.ErrTagNameTaken) {
			utils.Conflict(c, err.Error())
			return
		}
		utils.BadRequest(c, err.Error())
		return
	}

	utils.Created(c, gin.H{"tag": tag})
}

func UpdateTagHandler(c *gin.Context, tagsService *usecase.TagsService) {
	tagID := c.Param("id")
	userID := c.GetString("user_id")

	var req dto.UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	tag, err := tagsService.UpdateTag(c.Request.Context(), tagID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTagNotFound):
			utils.NotFound(c, "Tag not found")
		case errors.Is(err, usecase.ErrTagNameTaken):
			utils.Conflict(c, err.Error())
		default:
			utils.BadRequest(c, err.Error())
		}
		return
	}

	utils.Success(c, gin.H{"tag": tag})
}

func DeleteTagHandler(c *gin.Context, tagsService *usecase.TagsService) {
	tagID := c.Param("id")
	userID := c.GetString("user_id")

	if err := tagsService.DeleteTag(c.Request.Context(), tagID, userID); err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			utils.NotFound(c, "Tag not found")
			return
		}
		utils.InternalError(c, "Failed to delete tag")
		return
	}

	utils.NoContent(c)
}
