package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"learnhub/db"
	"learnhub/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateBlog publishes a new blog post
func CreateBlog(c *gin.Context) {
	userID, err := currentUserObjectID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req struct {
		Title    string   `json:"title" binding:"required"`
		Content  string   `json:"content" binding:"required"`
		CoverURL string   `json:"coverUrl"`
		Tags     []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var author models.User
	if err := db.GetCollection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&author); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	now := time.Now()
	blog := models.Blog{
		ID:           primitive.NewObjectID(),
		AuthorID:     userID,
		AuthorName:   author.Name,
		AuthorAvatar: author.AvatarURL,
		Title:        req.Title,
		Content:      req.Content,
		CoverURL:     req.CoverURL,
		Tags:         req.Tags,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := db.GetCollection("blogs").InsertOne(ctx, blog); err != nil {
		log.Printf("Failed to create blog: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create blog"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"blog": blog, "message": "Blog created successfully"})
}

// GetBlogFeed returns paginated blog posts, newest first
func GetBlogFeed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if limit < 1 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := db.GetCollection("blogs")

	filter := bson.M{}
	if tag := c.Query("tag"); tag != "" {
		filter["tags"] = tag
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch blogs"})
		return
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch blogs"})
		return
	}
	defer cursor.Close(ctx)

	var blogs []models.Blog
	if err := cursor.All(ctx, &blogs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode blogs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"blogs": blogs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetBlog retrieves a single blog post
func GetBlog(c *gin.Context) {
	blogID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid blog ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var blog models.Blog
	if err := db.GetCollection("blogs").FindOne(ctx, bson.M{"_id": blogID}).Decode(&blog); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Blog not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"blog": blog})
}

// DeleteBlog removes a post; only the author (or an admin via the admin
// surface) can do this
func DeleteBlog(c *gin.Context) {
	userID, err := currentUserObjectID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	blogID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid blog ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"_id": blogID}
	role := c.GetString("role")
	if role != models.RoleAdmin && role != "moderator" {
		filter["authorId"] = userID
	}

	result, err := db.GetCollection("blogs").DeleteOne(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete blog"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Blog not found or you don't have permission"})
		return
	}

	db.GetCollection("blog_comments").DeleteMany(ctx, bson.M{"blogId": blogID})
	db.GetCollection("blog_likes").DeleteMany(ctx, bson.M{"blogId": blogID})

	c.JSON(http.StatusOK, gin.H{"message": "Blog deleted successfully"})
}

// LikeBlog toggles the caller's like on a post
func LikeBlog(c *gin.Context) {
	userID, err := currentUserObjectID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	blogID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid blog ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	like := models.BlogLike{
		UserID:    userID,
		BlogID:    blogID,
		CreatedAt: time.Now(),
	}
	_, err = db.GetCollection("blog_likes").InsertOne(ctx, like)
	if mongo.IsDuplicateKeyError(err) {
		// already liked: unlike
		db.GetCollection("blog_likes").DeleteOne(ctx, bson.M{"userId": userID, "blogId": blogID})
		db.GetCollection("blogs").UpdateOne(ctx, bson.M{"_id": blogID}, bson.M{"$inc": bson.M{"likeCount": -1}})
		c.JSON(http.StatusOK, gin.H{"message": "Blog unliked", "liked": false})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to like blog"})
		return
	}

	db.GetCollection("blogs").UpdateOne(ctx, bson.M{"_id": blogID}, bson.M{"$inc": bson.M{"likeCount": 1}})
	c.JSON(http.StatusOK, gin.H{"message": "Blog liked", "liked": true})
}

// CommentOnBlog adds a comment under a post
func CommentOnBlog(c *gin.Context) {
	userID, err := currentUserObjectID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	blogID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid blog ID"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var author models.User
	if err := db.GetCollection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&author); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	comment := models.BlogComment{
		ID:         primitive.NewObjectID(),
		BlogID:     blogID,
		UserID:     userID,
		AuthorName: author.Name,
		Content:    req.Content,
		CreatedAt:  time.Now(),
	}

	if _, err := db.GetCollection("blog_comments").InsertOne(ctx, comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}

	db.GetCollection("blogs").UpdateOne(ctx, bson.M{"_id": blogID}, bson.M{"$inc": bson.M{"commentCount": 1}})
	c.JSON(http.StatusCreated, gin.H{"comment": comment, "message": "Comment added"})
}

// GetBlogComments lists comments for a post, oldest first
func GetBlogComments(c *gin.Context) {
	blogID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid blog ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := db.GetCollection("blog_comments").Find(ctx, bson.M{"blogId": blogID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}
	defer cursor.Close(ctx)

	var comments []models.BlogComment
	if err := cursor.All(ctx, &comments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
