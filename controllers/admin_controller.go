package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"learnhub/db"
	"learnhub/models"
	"learnhub/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AdminSignupRequest carries the payload to create an admin account
type AdminSignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role"`
}

// AdminLoginRequest carries admin dashboard credentials
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AdminSignup creates a new admin or moderator account. The route itself is
// behind RBAC, so only an existing admin can mint new ones; the initial
// account comes from the addadmin command.
func AdminSignup(c *gin.Context) {
	var req AdminSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.Role == "" {
		req.Role = models.RoleAdmin
	}
	if req.Role != models.RoleAdmin && req.Role != "moderator" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be admin or moderator"})
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now()
	admin := models.Admin{
		Email:     req.Email,
		Password:  hashed,
		Name:      req.Name,
		Role:      req.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := db.GetCollection("admins").InsertOne(ctx, admin)
	if mongo.IsDuplicateKeyError(err) {
		c.JSON(http.StatusConflict, gin.H{"error": "An admin with this email already exists"})
		return
	}
	if err != nil {
		log.Printf("Failed to create admin: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create admin"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Admin created successfully",
		"id":      result.InsertedID,
	})
}

// AdminLogin verifies dashboard credentials and issues a JWT with the
// admin's role claim
func AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var admin models.Admin
	err := db.GetCollection("admins").FindOne(ctx, bson.M{"email": req.Email}).Decode(&admin)
	if err != nil || !utils.CheckPasswordHash(req.Password, admin.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := utils.GenerateJWTToken(admin.ID.Hex(), admin.Email, admin.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"admin": gin.H{
			"id":    admin.ID.Hex(),
			"email": admin.Email,
			"name":  admin.Name,
			"role":  admin.Role,
		},
	})
}

// GetDashboardStats aggregates platform totals for the admin dashboard
func GetDashboardStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	userCount, err := db.GetCollection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	courseCount, _ := db.GetCollection("courses").CountDocuments(ctx, bson.M{"published": true})
	enrollmentCount, _ := db.GetCollection("enrollments").CountDocuments(ctx, bson.M{})
	pendingApps, _ := db.GetCollection("instructor_applications").CountDocuments(ctx, bson.M{"status": models.ApplicationPending})

	// total revenue across paid orders, in minor units
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.OrderStatusPaid}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": "$amount"},
			"orders":  bson.M{"$sum": 1},
		}}},
	}
	cursor, err := db.GetCollection("orders").Aggregate(ctx, pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute revenue"})
		return
	}
	defer cursor.Close(ctx)

	var revenue struct {
		Revenue int64 `bson:"revenue"`
		Orders  int64 `bson:"orders"`
	}
	if cursor.Next(ctx) {
		cursor.Decode(&revenue)
	}

	c.JSON(http.StatusOK, gin.H{
		"users":               userCount,
		"publishedCourses":    courseCount,
		"enrollments":         enrollmentCount,
		"paidOrders":          revenue.Orders,
		"totalRevenue":        revenue.Revenue,
		"pendingApplications": pendingApps,
	})
}

// ListUsers returns all platform users for the admin dashboard
func ListUsers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := db.GetCollection("users").Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateUserRole changes a user's platform role
func UpdateUserRole(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Role != models.RoleStudent && req.Role != models.RoleInstructor && req.Role != models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := db.GetCollection("users").UpdateOne(ctx,
		bson.M{"_id": targetID},
		bson.M{"$set": bson.M{"role": req.Role, "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

// ListPendingCourses returns unpublished courses waiting for approval
func ListPendingCourses(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := db.GetCollection("courses").Find(ctx, bson.M{"published": false})
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

// PublishCourse approves an instructor's course and makes it visible in the
// catalog
func PublishCourse(c *gin.Context) {
	courseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := db.GetCollection("courses").UpdateOne(ctx,
		bson.M{"_id": courseID},
		bson.M{"$set": bson.M{"published": true, "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish course"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Course published"})
}

// ListInstructorApplications returns applications, optionally by status
func ListInstructorApplications(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := db.GetCollection("instructor_applications").Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}
	defer cursor.Close(ctx)

	var applications []models.InstructorApplication
	if err := cursor.All(ctx, &applications); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": applications})
}

// ReviewInstructorApplication approves or rejects a pending application.
// Approval also promotes the applicant to instructor.
func ReviewInstructorApplication(c *gin.Context) {
	appID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	var req struct {
		Decision string `json:"decision" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Decision != models.ApplicationApproved && req.Decision != models.ApplicationRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Decision must be approved or rejected"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := db.GetCollection("instructor_applications")

	var application models.InstructorApplication
	if err := collection.FindOne(ctx, bson.M{"_id": appID}).Decode(&application); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}
	if application.Status != models.ApplicationPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Application has already been reviewed"})
		return
	}

	now := time.Now()
	_, err = collection.UpdateOne(ctx,
		bson.M{"_id": appID},
		bson.M{"$set": bson.M{
			"status":     req.Decision,
			"reviewedBy": c.GetString("email"),
			"reviewedAt": now,
		}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update application"})
		return
	}

	if req.Decision == models.ApplicationApproved {
		_, err = db.GetCollection("users").UpdateOne(ctx,
			bson.M{"_id": application.UserID},
			bson.M{"$set": bson.M{"role": models.RoleInstructor, "updatedAt": now}})
		if err != nil {
			log.Printf("Failed to promote user %s to instructor: %v", application.UserID.Hex(), err)
		}
	}

	go func(email, status string) {
		if err := utils.SendApplicationStatusEmail(email, status); err != nil {
			log.Printf("Failed to send application status email: %v", err)
		}
	}(application.Email, req.Decision)

	c.JSON(http.StatusOK, gin.H{"message": "Application " + req.Decision})
}
