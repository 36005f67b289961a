package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Instructor application statuses
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// InstructorApplication is a request from a student to become an instructor
type InstructorApplication struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Expertise  string             `bson:"expertise" json:"expertise"`
	Bio        string             `bson:"bio" json:"bio"`
	ResumeURL  string             `bson:"resumeUrl,omitempty" json:"resumeUrl,omitempty"`
	Status     string             `bson:"status" json:"status"`
	ReviewedBy string             `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time         `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
