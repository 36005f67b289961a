package controllers

import (
	"context"
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

// GetMyCourses lists the user's enrollments with course details
func GetMyCourses(c *gin.Context) {
	userID, err := currentUserObjectID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := db.GetCollection("enrollments").Find(ctx, bson.M{"userId": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch enrollments"})
		return
	}
	defer cursor.Close(ctx)

	var enrollments []models.Enrollment
	if err := cursor.All(ctx, &enrollments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode enrollments"})
		return
	}

	type enrolledCourse struct {
		Enrollment models.Enrollment `json:"enrollment"`
		Course     models.Course     `json:"course"`
	}

	result := []enrolledCourse{}
	for _, enrollment := range enrollments {
		var course models.Course
		if err := db.GetCollection("courses").FindOne(ctx, bson.M{"_id": enrollment.CourseID}).Decode(&course); err != nil {
			continue
		}
		result = append(result, enrolledCourse{Enrollment: enrollment, Course: course})
	}

	c.JSON(http.StatusOK, gin.H{"courses": result})
}

// GetCourseContent serves the full course to an enrolled user, video URLs
// included
func GetCourseContent(c *gin.Context) {
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var enrollment models.Enrollment
	err = db.GetCollection("enrollments").FindOne(ctx, bson.M{"userId": userID, "courseId": courseID}).Decode(&enrollment)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enrolled in this course"})
		return
	}

	var course models.Course
	if err := db.GetCollection("courses").FindOne(ctx, bson.M{"_id": courseID}).Decode(&course); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"course": course, "enrollment": enrollment})
}

// MarkVideoWatched records playback of a lesson video and awards video XP
// once per video
func MarkVideoWatched(c *gin.Context) {
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
	lessonID := c.Param("lessonId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, _, ok := loadEnrollmentAndCourse(ctx, c, userID, courseID, lessonID); !ok {
		return
	}

	db.GetCollection("enrollments").UpdateOne(
		ctx,
		bson.M{"userId": userID, "courseId": courseID},
		bson.M{"$addToSet": bson.M{"watchedVideos": lessonID}, "$set": bson.M{"updatedAt": time.Now()}},
	)

	// the engine's event uniqueness makes re-watching award nothing
	xp, err := services.GetGamificationService().EarnXP(c.Request.Context(), userID.Hex(), services.ActionVideoWatch, "video_"+lessonID)
	if err != nil {
		log.Printf("Failed to award video XP for %s: %v", lessonID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Video progress recorded", "xp": xp})
}

// CompleteLesson marks a lesson done, awards lesson XP and, when it was the
// last open lesson, course-completion XP on top.
func CompleteLesson(c *gin.Context) {
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
	lessonID := c.Param("lessonId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	enrollment, course, ok := loadEnrollmentAndCourse(ctx, c, userID, courseID, lessonID)
	if !ok {
		return
	}

	completed := enrollment.CompletedLessons
	if !enrollment.HasCompleted(lessonID) {
		completed = append(completed, lessonID)
	}
	totalLessons := course.LessonCount()
	progress := 0.0
	if totalLessons > 0 {
		progress = float64(len(completed)) / float64(totalLessons) * 100
	}

	update := bson.M{
		"$addToSet": bson.M{"completedLessons": lessonID},
		"$set":      bson.M{"progress": progress, "updatedAt": time.Now()},
	}
	courseDone := totalLessons > 0 && len(completed) == totalLessons
	if courseDone && enrollment.CompletedAt == nil {
		update["$set"].(bson.M)["completedAt"] = time.Now()
	}

	if _, err := db.GetCollection("enrollments").UpdateOne(ctx, bson.M{"userId": userID, "courseId": courseID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update progress"})
		return
	}

	engine := services.GetGamificationService()
	xp, err := engine.EarnXP(c.Request.Context(), userID.Hex(), services.ActionLessonComplete, "lesson_"+lessonID)
	if err != nil {
		log.Printf("Failed to award lesson XP for %s: %v", lessonID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record progress"})
		return
	}

	response := gin.H{
		"message":  "Lesson completed",
		"progress": progress,
		"xp":       xp,
	}

	if courseDone {
		courseXP, err := engine.EarnXP(c.Request.Context(), userID.Hex(), services.ActionCourseComplete, "course_"+courseID.Hex())
		if err != nil {
			log.Printf("Failed to award course XP for %s: %v", courseID.Hex(), err)
		} else {
			response["courseCompleted"] = true
			response["courseXp"] = courseXP
		}
	}

	c.JSON(http.StatusOK, response)
}

// loadEnrollmentAndCourse fetches the caller's enrollment and the course,
// verifying the lesson actually exists. Writes the error response itself.
func loadEnrollmentAndCourse(ctx context.Context, c *gin.Context, userID, courseID primitive.ObjectID, lessonID string) (*models.Enrollment, *models.Course, bool) {
	var enrollment models.Enrollment
	err := db.GetCollection("enrollments").FindOne(ctx, bson.M{"userId": userID, "courseId": courseID}).Decode(&enrollment)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enrolled in this course"})
		return nil, nil, false
	}

	var course models.Course
	if err := db.GetCollection("courses").FindOne(ctx, bson.M{"_id": courseID}).Decode(&course); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return nil, nil, false
	}

	found := false
	for _, section := range course.Sections {
		for _, lesson := range section.Lessons {
			if lesson.ID == lessonID {
				found = true
			}
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found in course"})
		return nil, nil, false
	}

	return &enrollment, &course, true
}
