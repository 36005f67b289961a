package services

import (
	"context"

	"learnhub/db"
	"learnhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoGamificationStore persists gamification data in MongoDB. The unique
// index on xp_events (userId, action, referenceId) created at boot is the
// atomic duplicate check InsertEvent relies on.
type MongoGamificationStore struct{}

func NewMongoGamificationStore() *MongoGamificationStore {
	return &MongoGamificationStore{}
}

func (m *MongoGamificationStore) InsertEvent(ctx context.Context, event models.XpEvent) error {
	_, err := db.GetCollection("xp_events").InsertOne(ctx, event)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEvent
	}
	return err
}

func (m *MongoGamificationStore) GetStats(ctx context.Context, userID string) (*models.GamificationStats, error) {
	var stats models.GamificationStats
	err := db.GetCollection("gamification_stats").FindOne(ctx, bson.M{"userId": userID}).Decode(&stats)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (m *MongoGamificationStore) SaveStats(ctx context.Context, stats *models.GamificationStats) error {
	update := bson.M{"$set": bson.M{
		"totalXp":          stats.TotalXP,
		"level":            stats.Level,
		"currentStreak":    stats.CurrentStreak,
		"lastActivityDate": stats.LastActivityDate,
		"updatedAt":        stats.UpdatedAt,
	}}
	opts := options.Update().SetUpsert(true)
	_, err := db.GetCollection("gamification_stats").UpdateOne(ctx, bson.M{"userId": stats.UserID}, update, opts)
	return err
}

func (m *MongoGamificationStore) CountEvents(ctx context.Context, userID, action string) (int64, error) {
	return db.GetCollection("xp_events").CountDocuments(ctx, bson.M{"userId": userID, "action": action})
}

func (m *MongoGamificationStore) EarnedBadges(ctx context.Context, userID string) ([]models.EarnedBadge, error) {
	cursor, err := db.GetCollection("earned_badges").Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var badges []models.EarnedBadge
	if err := cursor.All(ctx, &badges); err != nil {
		return nil, err
	}
	return badges, nil
}

func (m *MongoGamificationStore) InsertEarnedBadge(ctx context.Context, badge models.EarnedBadge) error {
	_, err := db.GetCollection("earned_badges").InsertOne(ctx, badge)
	if mongo.IsDuplicateKeyError(err) {
		// another request unlocked it first
		return nil
	}
	return err
}

// CountRankedAbove counts users strictly ahead on the leaderboard: higher
// total XP, or equal XP achieved earlier.
func (m *MongoGamificationStore) CountRankedAbove(ctx context.Context, stats *models.GamificationStats) (int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"totalXp": bson.M{"$gt": stats.TotalXP}},
		bson.M{
			"totalXp":   stats.TotalXP,
			"userId":    bson.M{"$ne": stats.UserID},
			"updatedAt": bson.M{"$lt": stats.UpdatedAt},
		},
	}}
	return db.GetCollection("gamification_stats").CountDocuments(ctx, filter)
}

func (m *MongoGamificationStore) TopStats(ctx context.Context, limit int64) ([]models.GamificationStats, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "totalXp", Value: -1}, {Key: "updatedAt", Value: 1}}).
		SetLimit(limit)

	cursor, err := db.GetCollection("gamification_stats").Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stats []models.GamificationStats
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}
