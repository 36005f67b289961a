package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GamificationStats is the per-user XP record. Level is always derived from
// TotalXP; the two are never written independently.
type GamificationStats struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID           string             `bson:"userId" json:"userId"`
	TotalXP          int                `bson:"totalXp" json:"totalXp"`
	Level            int                `bson:"level" json:"level"`
	CurrentStreak    int                `bson:"currentStreak" json:"currentStreak"`
	LastActivityDate time.Time          `bson:"lastActivityDate,omitempty" json:"lastActivityDate,omitempty"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// XpEvent is the append-only record of a single XP award. The unique index on
// (userId, action, referenceId) is what prevents double awards.
type XpEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      string             `bson:"userId" json:"userId"`
	Action      string             `bson:"action" json:"action"`
	ReferenceID string             `bson:"referenceId" json:"referenceId"`
	XP          int                `bson:"xp" json:"xp"`
	AwardedAt   time.Time          `bson:"awardedAt" json:"awardedAt"`
}

// EarnedBadge records a badge unlocked by a user
type EarnedBadge struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string             `bson:"userId" json:"userId"`
	BadgeName string             `bson:"badgeName" json:"badgeName"`
	EarnedAt  time.Time          `bson:"earnedAt" json:"earnedAt"`
}
