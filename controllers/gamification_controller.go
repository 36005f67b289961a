package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"learnhub/db"
	"learnhub/models"
	"learnhub/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const leaderboardCacheTTL = 60 * time.Second

// EarnXPRequest represents a client-initiated XP award
type EarnXPRequest struct {
	Action      string `json:"action" binding:"required"`
	ReferenceID string `json:"referenceId"`
}

// Actions clients may claim directly. Lesson, video and course XP is awarded
// server-side by the learning endpoints so clients cannot mint it.
var clientActions = map[string]bool{
	services.ActionDailyActivity: true,
	services.ActionQuizPass:      true,
}

// EarnXP awards XP for a client-reported action
func EarnXP(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req EarnXPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !clientActions[req.Action] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
		return
	}

	referenceID := req.ReferenceID
	if req.Action == services.ActionDailyActivity {
		// the server owns the calendar; clients cannot backfill streaks
		referenceID = time.Now().UTC().Format(services.DateLayout)
	}
	if referenceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "referenceId is required"})
		return
	}

	result, err := services.GetGamificationService().EarnXP(c.Request.Context(), userID, req.Action, referenceID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAction) || errors.Is(err, services.ErrInvalidReference) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("Failed to award XP: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to award XP"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetGamificationProfile returns stats, badges, rank and next-level XP
func GetGamificationProfile(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	profile, err := services.GetGamificationService().Profile(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Failed to load gamification profile: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	// decorate earned badges with catalog metadata
	type badgeView struct {
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Icon        string    `json:"icon"`
		EarnedAt    time.Time `json:"earnedAt"`
	}
	badges := []badgeView{}
	for _, earned := range profile.Badges {
		view := badgeView{Name: earned.BadgeName, EarnedAt: earned.EarnedAt}
		if catalog, ok := services.BadgeByName(earned.BadgeName); ok {
			view.Description = catalog.Description
			view.Icon = catalog.Icon
		}
		badges = append(badges, view)
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":       profile.Stats,
		"badges":      badges,
		"rank":        profile.Rank,
		"nextLevelXp": profile.NextLevelXP,
	})
}

// LeaderboardEntry is one row of the XP leaderboard
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatarUrl"`
	TotalXP     int    `json:"totalXp"`
	Level       int    `json:"level"`
	Streak      int    `json:"streak"`
	CurrentUser bool   `json:"currentUser"`
}

// GetLeaderboard returns the top users by total XP. Results are cached in
// Redis briefly; the CurrentUser flag is stamped per request after the cache.
func GetLeaderboard(c *gin.Context) {
	currentUserID := c.GetString("userID")

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := parseInt(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	entries, err := loadLeaderboard(c.Request.Context(), int64(limit))
	if err != nil {
		log.Printf("Failed to fetch leaderboard: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard data"})
		return
	}

	for i := range entries {
		entries[i].CurrentUser = entries[i].UserID == currentUserID
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": entries,
		"total":       len(entries),
	})
}

func loadLeaderboard(ctx context.Context, limit int64) ([]LeaderboardEntry, error) {
	cacheKey := fmt.Sprintf("leaderboard:%d", limit)
	if rdb := db.GetRedisClient(); rdb != nil {
		if cached, err := rdb.Get(ctx, cacheKey).Result(); err == nil {
			var entries []LeaderboardEntry
			if json.Unmarshal([]byte(cached), &entries) == nil {
				return entries, nil
			}
		}
	}

	stats, err := services.GetGamificationService().Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entries := []LeaderboardEntry{}
	rank := 1
	for _, stat := range stats {
		entry := LeaderboardEntry{
			Rank:    rank,
			UserID:  stat.UserID,
			TotalXP: stat.TotalXP,
			Level:   stat.Level,
			Streak:  stat.CurrentStreak,
		}

		if objID, err := primitive.ObjectIDFromHex(stat.UserID); err == nil {
			var user models.User
			if db.GetCollection("users").FindOne(dbCtx, bson.M{"_id": objID}).Decode(&user) == nil {
				entry.Name = user.Name
				entry.AvatarURL = user.AvatarURL
			}
		}
		if entry.Name == "" {
			entry.Name = "Learner"
		}
		if entry.AvatarURL == "" {
			entry.AvatarURL = "https://api.dicebear.com/9.x/adventurer/svg?seed=" + entry.Name
		}

		entries = append(entries, entry)
		rank++
	}

	if rdb := db.GetRedisClient(); rdb != nil {
		if data, err := json.Marshal(entries); err == nil {
			rdb.Set(ctx, cacheKey, data, leaderboardCacheTTL)
		}
	}

	return entries, nil
}

// parseInt parses a decimal integer
func parseInt(s string) (int, error) {
	var result int
	_, err := fmt.Sscanf(s, "%d", &result)
	return result, err
}
