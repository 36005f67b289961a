package controllers

import (
	"context"
	"net/http"
	"time"

	"learnhub/db"
	"learnhub/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetCart returns the user's cart items with their course details and total
func GetCart(c *gin.Context) {
	userID, err := currentUserObjectID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := db.GetCollection("cart_items").Find(ctx, bson.M{"userId": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}
	defer cursor.Close(ctx)

	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode cart"})
		return
	}

	type cartEntry struct {
		Item   models.CartItem `json:"item"`
		Course models.Course   `json:"course"`
	}

	entries := []cartEntry{}
	var total int64
	for _, item := range items {
		var course models.Course
		err := db.GetCollection("courses").FindOne(ctx, bson.M{"_id": item.CourseID, "published": true}).Decode(&course)
		if err != nil {
			// course unpublished since it was added; skip it
			continue
		}
		entries = append(entries, cartEntry{Item: item, Course: course})
		total += course.Price
	}

	c.JSON(http.StatusOK, gin.H{"items": entries, "total": total})
}

// AddToCart puts a course in the user's cart
func AddToCart(c *gin.Context) {
	userID, err := currentUserObjectID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req struct {
		CourseID string `json:"courseId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	courseID, err := primitive.ObjectIDFromHex(req.CourseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var course models.Course
	if err := db.GetCollection("courses").FindOne(ctx, bson.M{"_id": courseID, "published": true}).Decode(&course); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	// already enrolled means nothing to buy
	err = db.GetCollection("enrollments").FindOne(ctx, bson.M{"userId": userID, "courseId": courseID}).Err()
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Already enrolled in this course"})
		return
	}
	if err != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check enrollment"})
		return
	}

	item := models.CartItem{
		UserID:   userID,
		CourseID: courseID,
		AddedAt:  time.Now(),
	}
	if _, err := db.GetCollection("cart_items").InsertOne(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusOK, gin.H{"message": "Course already in cart"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to cart"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Added to cart"})
}

// RemoveFromCart deletes a course from the user's cart
func RemoveFromCart(c *gin.Context) {
	userID, err := currentUserObjectID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	courseID, err := primitive.ObjectIDFromHex(c.Param("courseId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := db.GetCollection("cart_items").DeleteOne(ctx, bson.M{"userId": userID, "courseId": courseID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove from cart"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not in cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Removed from cart"})
}
