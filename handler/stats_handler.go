package handler

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/pophero110/trackly-sub002/model"
	"github.com/pophero110/trackly-sub002/repository"
	"github.com/pophero110/trackly-sub002/utils"
)

type StatsHandler struct {
	userRepo    *repository.UserRepo
	tagsRepo    *repository.TagsRepo
	entriesRepo *repository.EntriesRepo
	sessionRepo *repository.SessionRepo
}

func NewStatsHandler(
	userRepo *repository.UserRepo,
	tagsRepo *repository.TagsRepo,
	entriesRepo *repository.EntriesRepo,
	sessionRepo *repository.SessionRepo,
) *StatsHandler {
	return &StatsHandler{
		userRepo:    userRepo,
		tagsRepo:    tagsRepo,
		entriesRepo: entriesRepo,
		sessionRepo: sessionRepo,
	}
}

func (h *StatsHandler) GetUserStats(c *gin.Context) {
	ctx := c.Request.Context()
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}
	uid := userID.(string)

	user, err := h.userRepo.FindUser(uid)
	if err != nil {
		log.Printf("Error fetching user %s: %v", uid, err)
		utils.InternalError(c, "Failed to fetch user details")
		return
	}
	if user == nil {
		utils.NotFound(c, "User not found")
		return
	}

	var stats model.UserStats

	activeEntries, err := h.entriesRepo.CountUserEntries(ctx, uid, false)
	if err != nil {
		log.Printf("Error counting entries: %v", err)
		utils.InternalError(c, "Failed to count entries")
		return
	}

	archivedEntries, err := h.entriesRepo.CountUserEntries(ctx, uid, true)
	if err != nil {
		log.Printf("Error counting archived entries: %v", err)
		utils.InternalError(c, "Failed to count archived entries")
		return
	}
	stats.EntryStats.Total = activeEntries + archivedEntries
	stats.EntryStats.Archived = archivedEntries

	tagCounts, err := h.entriesRepo.CountEntriesByTag(ctx, uid)
	if err != nil {
		log.Printf("Error counting entries by tag: %v", err)
		utils.InternalError(c, "Failed to count entries by tag")
		return
	}
	stats.EntryStats.TagCounts = tagCounts

	totalTags, err := h.tagsRepo.CountUserTags(ctx, uid)
	if err != nil {
		log.Printf("Error counting tags: %v", err)
		utils.InternalError(c, "Failed to count tags")
		return
	}
	stats.TagStats.Total = totalTags

	sessions, err := h.sessionRepo.GetUserActiveSessions(uid)
	if err != nil {
		log.Printf("Error getting sessions: %v", err)
		utils.InternalError(c, "Failed to get sessions")
		return
	}

	stats.ActivityStats.AccountCreated = user.CreatedAt
	stats.ActivityStats.TotalSessions = len(sessions)

	if len(sessions) > 0 {
		lastActive := sessions[0].LastActivityAt
		for _, session := range sessions {
			if session.LastActivityAt.After(lastActive) {
				lastActive = session.LastActivityAt
			}
		}
		stats.ActivityStats.LastActive = lastActive
	}

	utils.Success(c, gin.H{
		"stats": stats,
	})
}
