package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lesson is a single unit of course content. The ID is a stable string so it
// can double as the reference for XP awards (lesson_<id>, video_<id>).
type Lesson struct {
	ID       string `bson:"id" json:"id"`
	Title    string `bson:"title" json:"title"`
	VideoURL string `bson:"videoUrl" json:"videoUrl"`
	Duration int    `bson:"duration" json:"duration"` // seconds
	Preview  bool   `bson:"preview" json:"preview"`
}

// Section groups lessons inside a course
type Section struct {
	Title   string   `bson:"title" json:"title"`
	Lessons []Lesson `bson:"lessons" json:"lessons"`
}

// Course represents a sellable course in the catalog
type Course struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description"`
	Category       string             `bson:"category" json:"category"`
	Level          string             `bson:"level" json:"level"` // "beginner", "intermediate", "advanced"
	Language       string             `bson:"language" json:"language"`
	Price          int64              `bson:"price" json:"price"` // minor units
	Currency       string             `bson:"currency" json:"currency"`
	ThumbnailURL   string             `bson:"thumbnailUrl" json:"thumbnailUrl"`
	InstructorID   primitive.ObjectID `bson:"instructorId" json:"instructorId"`
	InstructorName string             `bson:"instructorName" json:"instructorName"`
	Sections       []Section          `bson:"sections" json:"sections"`
	Published      bool               `bson:"published" json:"published"`
	EnrollCount    int64              `bson:"enrollCount" json:"enrollCount"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LessonCount returns the total number of lessons across all sections
func (c *Course) LessonCount() int {
	count := 0
	for _, s := range c.Sections {
		count += len(s.Lessons)
	}
	return count
}
