package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pophero110/trackly-sub002/dto"
	"github.com/pophero110/trackly-sub002/repository"
	"github.com/pophero110/trackly-sub002/usecase"
	"github.com/pophero110/trackly-sub002/utils"
)

// ListEntriesHandler serves the cursor-paginated entry feed. Repeating the
// previous response's cursor in after/afterId fetches the next page.
func ListEntriesHandler(c *gin.Context, entriesService *usecase.EntriesService) {
	userID := c.GetString("user_id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	opts := usecase.EntryListOptions{
		UserID:          userID,
		TagIDs:          c.QueryArray("tagIds"),
		Hashtags:        c.QueryArray("hashtags"),
		SortBy:          c.Query("sortBy"),
		SortOrder:       c.Query("sortOrder"),
		Limit:           limit,
		After:           c.Query("after"),
		AfterID:         c.Query("afterId"),
		IncludeArchived: c.Query("includeArchived") == "true",
	}

	page, err := entriesService.ListEntries(c.Request.Context(), opts)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	utils.Success(c, page)
}

func GetEntryHandler(c *gin.Context, entriesService *usecase.EntriesService) {
	entryID := c.Param("id")
	userID := c.GetString("user_id")

	entry, err := entriesService.GetEntry(c.Request.Context(), entryID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			utils.NotFound(c, "Entry not found")
			return
		}
		utils.InternalError(c, "Failed to fetch entry")
		return
	}

	utils.Success(c, gin.H{"entry": entry})
}

func CreateEntryHandler(c *gin.Context, entriesService *usecase.EntriesService) {
	userID := c.GetString("user_id")

	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	entry, err := entriesService.CreateEntry(c.Request.Context(), userID, &req)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	utils.Created(c, gin.H{"entry": entry})
}

func UpdateEntryHandler(c *gin.Context, entriesService *usecase.EntriesService) {
	entryID := c.Param("id")
	userID := c.GetString("user_id")

	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	entry, err := entriesService.UpdateEntry(c.Request.Context(), entryID, userID, &req)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			utils.NotFound(c, "Entry not found")
			return
		}
		utils.BadRequest(c, err.Error())
		return
	}

	utils.Success(c, gin.H{"entry": entry})
}

func DeleteEntryHandler(c *gin.Context, entriesService *usecase.EntriesService) {
	entryID := c.Param("id")
	userID := c.GetString("user_id")

	if err := entriesService.DeleteEntry(c.Request.Context(), entryID, userID); err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			utils.NotFound(c, "Entry not found")
			return
		}
		utils.InternalError(c, "Failed to delete entry")
		return
	}

	utils.NoContent(c)
}
