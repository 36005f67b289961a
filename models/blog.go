package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Blog is a post on the platform blog
type Blog struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	AuthorID     primitive.ObjectID `bson:"authorId" json:"authorId"`
	AuthorName   string             `bson:"authorName" json:"authorName"`
	AuthorAvatar string             `bson:"authorAvatar,omitempty" json:"authorAvatar,omitempty"`
	Title        string             `bson:"title" json:"title"`
	Content      string             `bson:"content" json:"content"`
	CoverURL     string             `bson:"coverUrl,omitempty" json:"coverUrl,omitempty"`
	Tags         []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	LikeCount    int64              `bson:"likeCount" json:"likeCount"`
	CommentCount int64              `bson:"commentCount" json:"commentCount"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// BlogLike marks that a user liked a blog (unique per user+blog)
type BlogLike struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	BlogID    primitive.ObjectID `bson:"blogId" json:"blogId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// BlogComment is a comment under a blog post
type BlogComment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	BlogID     primitive.ObjectID `bson:"blogId" json:"blogId"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	AuthorName string             `bson:"authorName" json:"authorName"`
	Content    string             `bson:"content" json:"content"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
