package utils

import (
	"context"
	"time"

	"learnhub/db"
	"learnhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PopulateSampleCourses inserts demo catalog data when the collection is empty
func PopulateSampleCourses() {
	collection := db.MongoDatabase.Collection("courses")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil || count > 0 {
		return
	}

	now := time.Now()
	courses := []interface{}{
		models.Course{
			ID:             primitive.NewObjectID(),
			Title:          "Go for Backend Developers",
			Description:    "Build production web services in Go",
			Category:       "programming",
			Level:          "intermediate",
			Language:       "en",
			Price:          149900,
			Currency:       "INR",
			InstructorName: "Priya Sharma",
			Published:      true,
			Sections: []models.Section{
				{
					Title: "Getting Started",
					Lessons: []models.Lesson{
						{ID: "l-go-101", Title: "Why Go", VideoURL: "https://cdn.learnhub.dev/go/101.mp4", Duration: 540, Preview: true},
						{ID: "l-go-102", Title: "Tooling", VideoURL: "https://cdn.learnhub.dev/go/102.mp4", Duration: 720},
					},
				},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		models.Course{
			ID:             primitive.NewObjectID(),
			Title:          "Fullstack React",
			Description:    "From components to deployment",
			Category:       "web-development",
			Level:          "beginner",
			Language:       "en",
			Price:          99900,
			Currency:       "INR",
			InstructorName: "Arjun Mehta",
			Published:      true,
			Sections: []models.Section{
				{
					Title: "React Basics",
					Lessons: []models.Lesson{
						{ID: "l-react-101", Title: "JSX and Components", VideoURL: "https://cdn.learnhub.dev/react/101.mp4", Duration: 660, Preview: true},
					},
				},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	collection.InsertMany(ctx, courses)
}
