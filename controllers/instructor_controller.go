package controllers

import (
	"context"
	"net/http"
	"time"

	"learnhub/db"
	"learnhub/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ApplyInstructor files an application to become an instructor
func ApplyInstructor(c *gin.Context) {
	userID, err := currentUserObjectID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req struct {
		Expertise string `json:"expertise" binding:"required"`
		Bio       string `json:"bio" binding:"required"`
		ResumeURL string `json:"resumeUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := db.GetCollection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}
	if user.Role == models.RoleInstructor {
		c.JSON(http.StatusConflict, gin.H{"error": "You are already an instructor"})
		return
	}

	collection := db.GetCollection("instructor_applications")

	pending, err := collection.CountDocuments(ctx, bson.M{
		"userId": userID,
		"status": models.ApplicationPending,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check applications"})
		return
	}
	if pending > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "You already have a pending application"})
		return
	}

	application := models.InstructorApplication{
		UserID:    userID,
		Name:      user.Name,
		Email:     user.Email,
		Expertise: req.Expertise,
		Bio:       req.Bio,
		ResumeURL: req.ResumeURL,
		Status:    models.ApplicationPending,
		CreatedAt: time.Now(),
	}

	result, err := collection.InsertOne(ctx, application)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Application submitted",
		"id":      result.InsertedID,
	})
}

// GetInstructorCourses lists the caller's courses, published or not
func GetInstructorCourses(c *gin.Context) {
	instructorID, err := currentUserObjectID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := db.GetCollection("courses").Find(ctx, bson.M{"instructorId": instructorID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
		return
	}
	defer cursor.Close(ctx)

	var courses []models.Course
	if err := cursor.All(ctx, &courses); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode courses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// GetInstructorStats aggregates enrollments and revenue for the caller's
// courses
func GetInstructorStats(c *gin.Context) {
	instructorID, err := currentUserObjectID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cursor, err := db.GetCollection("courses").Find(ctx, bson.M{"instructorId": instructorID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
		return
	}
	defer cursor.Close(ctx)

	var courses []models.Course
	if err := cursor.All(ctx, &courses); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode courses"})
		return
	}

	courseIDs := make([]interface{}, 0, len(courses))
	var totalEnrollments int64
	for _, course := range courses {
		courseIDs = append(courseIDs, course.ID)
		totalEnrollments += course.EnrollCount
	}

	var revenue int64
	if len(courseIDs) > 0 {
		// revenue is attributed per course item across paid orders
		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: bson.M{"status": models.OrderStatusPaid}}},
			{{Key: "$unwind", Value: "$courseIds"}},
			{{Key: "$match", Value: bson.M{"courseIds": bson.M{"$in": courseIDs}}}},
			{{Key: "$lookup", Value: bson.M{
				"from":         "courses",
				"localField":   "courseIds",
				"foreignField": "_id",
				"as":           "course",
			}}},
			{{Key: "$unwind", Value: "$course"}},
			{{Key: "$group", Value: bson.M{
				"_id":     nil,
				"revenue": bson.M{"$sum": "$course.price"},
			}}},
		}
		aggCursor, err := db.GetCollection("orders").Aggregate(ctx, pipeline)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute revenue"})
			return
		}
		defer aggCursor.Close(ctx)

		var row struct {
			Revenue int64 `bson:"revenue"`
		}
		if aggCursor.Next(ctx) {
			aggCursor.Decode(&row)
		}
		revenue = row.Revenue
	}

	c.JSON(http.StatusOK, gin.H{
		"courses":     len(courses),
		"enrollments": totalEnrollments,
		"revenue":     revenue,
	})
}
