package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enrollment links a user to a purchased course. Uniqueness on
// (userId, courseId) is enforced by an index.
type Enrollment struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	CourseID         primitive.ObjectID `bson:"courseId" json:"courseId"`
	OrderID          string             `bson:"orderId,omitempty" json:"orderId,omitempty"`
	CompletedLessons []string           `bson:"completedLessons" json:"completedLessons"`
	WatchedVideos    []string           `bson:"watchedVideos" json:"watchedVideos"`
	Progress         float64            `bson:"progress" json:"progress"` // 0..100
	CompletedAt      *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasCompleted reports whether a lesson is already marked complete
func (e *Enrollment) HasCompleted(lessonID string) bool {
	for _, id := range e.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}
