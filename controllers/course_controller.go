package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"learnhub/db"
	"learnhub/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const suggestionCacheTTL = 5 * time.Minute

// ListCourses returns the published catalog with optional filters and paging
func ListCourses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if limit < 1 || limit > 50 {
		limit = 12
	}
	if page < 1 {
		page = 1
	}

	filter := bson.M{"published": true}
	if category := c.Query("category"); category != "" {
		filter["category"] = category
	}
	if level := c.Query("level"); level != "" {
		filter["level"] = level
	}
	if search := c.Query("search"); search != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	}

	sortField := bson.D{{Key: "createdAt", Value: -1}}
	switch c.Query("sort") {
	case "price_asc":
		sortField = bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		sortField = bson.D{{Key: "price", Value: -1}}
	case "popular":
		sortField = bson.D{{Key: "enrollCount", Value: -1}}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := db.GetCollection("courses")

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		log.Printf("Failed to count courses: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
		return
	}

	findOptions := options.Find().
		SetSort(sortField).
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		log.Printf("Failed to fetch courses: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
		return
	}
	defer cursor.Close(ctx)

	var courses []models.Course
	if err := cursor.All(ctx, &courses); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode courses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"courses": courses,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// GetCourse returns a single course. Video URLs of non-preview lessons are
// stripped for callers who are not enrolled; the learn endpoints serve those.
func GetCourse(c *gin.Context) {
	courseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var course models.Course
	err = db.GetCollection("courses").FindOne(ctx, bson.M{"_id": courseID, "published": true}).Decode(&course)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	for si := range course.Sections {
		for li := range course.Sections[si].Lessons {
			if !course.Sections[si].Lessons[li].Preview {
				course.Sections[si].Lessons[li].VideoURL = ""
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"course": course})
}

// SearchSuggestions returns up to 8 course titles matching a prefix, cached
// in Redis for a few minutes since the catalog changes rarely.
func SearchSuggestions(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len(query) < 2 {
		c.JSON(http.StatusOK, gin.H{"suggestions": []string{}})
		return
	}

	cacheKey := "suggest:" + strings.ToLower(query)
	if rdb := db.GetRedisClient(); rdb != nil {
		if cached, err := rdb.Get(c.Request.Context(), cacheKey).Result(); err == nil {
			var suggestions []string
			if json.Unmarshal([]byte(cached), &suggestions) == nil {
				c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
				return
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{
		"published": true,
		"title":     bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"},
	}
	findOptions := options.Find().
		SetLimit(8).
		SetProjection(bson.M{"title": 1})

	cursor, err := db.GetCollection("courses").Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch suggestions"})
		return
	}
	defer cursor.Close(ctx)

	suggestions := []string{}
	for cursor.Next(ctx) {
		var course struct {
			Title string `bson:"title"`
		}
		if cursor.Decode(&course) == nil {
			suggestions = append(suggestions, course.Title)
		}
	}

	if rdb := db.GetRedisClient(); rdb != nil {
		if data, err := json.Marshal(suggestions); err == nil {
			rdb.Set(c.Request.Context(), cacheKey, data, suggestionCacheTTL)
		}
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// CreateCourse lets an instructor author a new (unpublished) course
func CreateCourse(c *gin.Context) {
	userID, err := currentUserObjectID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req struct {
		Title        string           `json:"title" binding:"required"`
		Description  string           `json:"description" binding:"required"`
		Category     string           `json:"category" binding:"required"`
		Level        string           `json:"level" binding:"required"`
		Language     string           `json:"language"`
		Price        int64            `json:"price" binding:"min=0"`
		Currency     string           `json:"currency"`
		ThumbnailURL string           `json:"thumbnailUrl"`
		Sections     []models.Section `json:"sections"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.Currency == "" {
		req.Currency = "INR"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var instructor models.User
	if err := db.GetCollection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&instructor); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load instructor"})
		return
	}

	now := time.Now()
	course := models.Course{
		ID:             primitive.NewObjectID(),
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Level:          req.Level,
		Language:       req.Language,
		Price:          req.Price,
		Currency:       req.Currency,
		ThumbnailURL:   req.ThumbnailURL,
		InstructorID:   userID,
		InstructorName: instructor.Name,
		Sections:       req.Sections,
		Published:      false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := db.GetCollection("courses").InsertOne(ctx, course); err != nil {
		log.Printf("Failed to create course: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"course": course, "message": "Course created; awaiting admin approval"})
}

// UpdateCourse lets the owning instructor edit course content
func UpdateCourse(c *gin.Context) {
	userID, err := currentUserObjectID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	courseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID"})
		return
	}

	var req struct {
		Title        string           `json:"title"`
		Description  string           `json:"description"`
		Category     string           `json:"category"`
		Level        string           `json:"level"`
		Price        *int64           `json:"price"`
		ThumbnailURL string           `json:"thumbnailUrl"`
		Sections     []models.Section `json:"sections"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Title != "" {
		set["title"] = req.Title
	}
	if req.Description != "" {
		set["description"] = req.Description
	}
	if req.Category != "" {
		set["category"] = req.Category
	}
	if req.Level != "" {
		set["level"] = req.Level
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.ThumbnailURL != "" {
		set["thumbnailUrl"] = req.ThumbnailURL
	}
	if req.Sections != nil {
		set["sections"] = req.Sections
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := db.GetCollection("courses").UpdateOne(
		ctx,
		bson.M{"_id": courseID, "instructorId": userID},
		bson.M{"$set": set},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update course"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Course not found or you don't own it"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Course updated successfully"})
}

// currentUserObjectID resolves the authenticated user id set by the JWT
// middleware into a Mongo ObjectID
func currentUserObjectID(c *gin.Context) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.GetString("userID"))
}
