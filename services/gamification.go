package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"learnhub/models"
)

// XP-earning actions
const (
	ActionVideoWatch     = "video_watch"
	ActionLessonComplete = "lesson_complete"
	ActionQuizPass       = "quiz_pass"
	ActionDailyActivity  = "daily_activity"
	ActionCourseComplete = "course_complete"
)

// XP awarded per action. These values are load-bearing: changing them changes
// every user's leaderboard position.
var xpValues = map[string]int{
	ActionVideoWatch:     20,
	ActionLessonComplete: 50,
	ActionQuizPass:       30,
	ActionDailyActivity:  10,
	ActionCourseComplete: 200,
}

// Level thresholds. Level N+1 is reached once total XP exceeds thresholds[N-1].
var levelThresholds = []int{500, 1500, 3000}

// DateLayout is the reference format for daily_activity awards
const DateLayout = "2006-01-02"

var (
	ErrInvalidAction    = errors.New("invalid xp action")
	ErrDuplicateEvent   = errors.New("xp event already recorded")
	ErrInvalidReference = errors.New("invalid reference id")
)

// GamificationStore is the persistence surface the engine needs. InsertEvent
// must return ErrDuplicateEvent when an event with the same
// (userID, action, referenceID) already exists.
type GamificationStore interface {
	InsertEvent(ctx context.Context, event models.XpEvent) error
	GetStats(ctx context.Context, userID string) (*models.GamificationStats, error)
	SaveStats(ctx context.Context, stats *models.GamificationStats) error
	CountEvents(ctx context.Context, userID, action string) (int64, error)
	EarnedBadges(ctx context.Context, userID string) ([]models.EarnedBadge, error)
	InsertEarnedBadge(ctx context.Context, badge models.EarnedBadge) error
	CountRankedAbove(ctx context.Context, stats *models.GamificationStats) (int64, error)
	TopStats(ctx context.Context, limit int64) ([]models.GamificationStats, error)
}

// Badge is a static catalog entry. Unlock receives the freshly updated stats,
// the action that triggered the evaluation and how many events of that action
// the user has recorded.
type Badge struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlock      func(stats *models.GamificationStats, action string, actionCount int64) bool `json:"-"`
}

// BadgeCatalog is the fixed set of unlockable badges
var BadgeCatalog = []Badge{
	{
		Name:        "First Steps",
		Description: "Complete your first lesson",
		Icon:        "🎯",
		Unlock: func(stats *models.GamificationStats, action string, actionCount int64) bool {
			return action == ActionLessonComplete && actionCount >= 1
		},
	},
	{
		Name:        "Week Warrior",
		Description: "Keep a 7-day learning streak",
		Icon:        "🔥",
		Unlock: func(stats *models.GamificationStats, action string, actionCount int64) bool {
			return stats.CurrentStreak >= 7
		},
	},
	{
		Name:        "Quiz Whiz",
		Description: "Pass 10 quizzes",
		Icon:        "🧠",
		Unlock: func(stats *models.GamificationStats, action string, actionCount int64) bool {
			return action == ActionQuizPass && actionCount >= 10
		},
	},
	{
		Name:        "Course Conqueror",
		Description: "Finish a full course",
		Icon:        "🏆",
		Unlock: func(stats *models.GamificationStats, action string, actionCount int64) bool {
			return action == ActionCourseComplete && actionCount >= 1
		},
	},
	{
		Name:        "Rising Star",
		Description: "Reach level 3",
		Icon:        "⭐",
		Unlock: func(stats *models.GamificationStats, action string, actionCount int64) bool {
			return stats.Level >= 3
		},
	},
}

// XPResult is the outcome of an EarnXP call
type XPResult struct {
	Earned  bool     `json:"earned"`
	XPAdded int      `json:"xpAdded"`
	TotalXP int      `json:"totalXp"`
	Level   int      `json:"level"`
	LevelUp bool     `json:"levelUp"`
	Streak  int      `json:"streak"`
	Badges  []string `json:"badges"`
}

// ProfileResult is the outcome of a Profile call
type ProfileResult struct {
	Stats       models.GamificationStats `json:"stats"`
	Badges      []models.EarnedBadge     `json:"badges"`
	Rank        int64                    `json:"rank"`
	NextLevelXP int                      `json:"nextLevelXp"` // -1 at max level
}

// GamificationService awards XP, maintains streaks and unlocks badges
type GamificationService struct {
	store GamificationStore

	// per-user serialization so concurrent awards for the same user cannot
	// both read stale stats and double-count
	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

var (
	gamificationService *GamificationService
	gamificationOnce    sync.Once
)

// NewGamificationService creates an engine over the given store
func NewGamificationService(store GamificationStore) *GamificationService {
	return &GamificationService{
		store:     store,
		userLocks: make(map[string]*sync.Mutex),
	}
}

// InitGamificationService wires the singleton engine to MongoDB
func InitGamificationService() {
	gamificationOnce.Do(func() {
		gamificationService = NewGamificationService(NewMongoGamificationStore())
	})
}

// GetGamificationService returns the singleton engine
func GetGamificationService() *GamificationService {
	if gamificationService == nil {
		InitGamificationService()
	}
	return gamificationService
}

func (s *GamificationService) lockUser(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// LevelForXP derives the level from total XP: 1 plus the number of thresholds
// strictly below the total, capped by the highest defined level.
func LevelForXP(totalXP int) int {
	level := 1
	for _, threshold := range levelThresholds {
		if totalXP > threshold {
			level++
		}
	}
	return level
}

// NextLevelXP returns the XP needed for the next level, or -1 at max level
func NextLevelXP(level int) int {
	if level > len(levelThresholds) {
		return -1
	}
	return levelThresholds[level-1]
}

// EarnXP awards XP for an action exactly once per (user, action, reference).
// A repeated award is not an error: it reports Earned=false and leaves every
// stat untouched.
func (s *GamificationService) EarnXP(ctx context.Context, userID, action, referenceID string) (*XPResult, error) {
	amount, ok := xpValues[action]
	if !ok {
		return nil, ErrInvalidAction
	}
	if referenceID == "" {
		return nil, ErrInvalidReference
	}

	// daily_activity references a calendar date; validate before mutating
	var activityDay time.Time
	if action == ActionDailyActivity {
		day, err := time.Parse(DateLayout, referenceID)
		if err != nil {
			return nil, fmt.Errorf("%w: daily activity reference must be %s", ErrInvalidReference, DateLayout)
		}
		activityDay = day
	}

	lock := s.lockUser(userID)
	lock.Lock()
	defer lock.Unlock()

	err := s.store.InsertEvent(ctx, models.XpEvent{
		UserID:      userID,
		Action:      action,
		ReferenceID: referenceID,
		XP:          amount,
		AwardedAt:   time.Now(),
	})
	if errors.Is(err, ErrDuplicateEvent) {
		stats, statsErr := s.statsOrDefault(ctx, userID)
		if statsErr != nil {
			return nil, statsErr
		}
		return &XPResult{
			Earned:  false,
			TotalXP: stats.TotalXP,
			Level:   stats.Level,
			Streak:  stats.CurrentStreak,
			Badges:  []string{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record xp event: %w", err)
	}

	stats, err := s.statsOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}

	previousLevel := stats.Level
	stats.TotalXP += amount
	stats.Level = LevelForXP(stats.TotalXP)

	if action == ActionDailyActivity {
		s.advanceStreak(stats, activityDay)
	}

	stats.UpdatedAt = time.Now()
	if err := s.store.SaveStats(ctx, stats); err != nil {
		return nil, fmt.Errorf("failed to save stats: %w", err)
	}

	newBadges, err := s.evaluateBadges(ctx, stats, action)
	if err != nil {
		return nil, err
	}

	return &XPResult{
		Earned:  true,
		XPAdded: amount,
		TotalXP: stats.TotalXP,
		Level:   stats.Level,
		LevelUp: stats.Level > previousLevel,
		Streak:  stats.CurrentStreak,
		Badges:  newBadges,
	}, nil
}

// advanceStreak applies the day-streak rules: consecutive day increments,
// same day is a no-op, any gap resets to 1.
func (s *GamificationService) advanceStreak(stats *models.GamificationStats, day time.Time) {
	last := stats.LastActivityDate
	switch {
	case last.IsZero():
		stats.CurrentStreak = 1
	case sameDay(day, last):
		return
	case sameDay(day, last.AddDate(0, 0, 1)):
		stats.CurrentStreak++
	default:
		stats.CurrentStreak = 1
	}
	stats.LastActivityDate = day
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (s *GamificationService) statsOrDefault(ctx context.Context, userID string) (*models.GamificationStats, error) {
	stats, err := s.store.GetStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	if stats == nil {
		stats = &models.GamificationStats{
			UserID:  userID,
			TotalXP: 0,
			Level:   1,
		}
	}
	return stats, nil
}

func (s *GamificationService) evaluateBadges(ctx context.Context, stats *models.GamificationStats, action string) ([]string, error) {
	earned, err := s.store.EarnedBadges(ctx, stats.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load earned badges: %w", err)
	}
	owned := make(map[string]bool, len(earned))
	for _, badge := range earned {
		owned[badge.BadgeName] = true
	}

	actionCount, err := s.store.CountEvents(ctx, stats.UserID, action)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	newBadges := []string{}
	for _, badge := range BadgeCatalog {
		if owned[badge.Name] || !badge.Unlock(stats, action, actionCount) {
			continue
		}
		err := s.store.InsertEarnedBadge(ctx, models.EarnedBadge{
			UserID:    stats.UserID,
			BadgeName: badge.Name,
			EarnedAt:  time.Now(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to save badge: %w", err)
		}
		newBadges = append(newBadges, badge.Name)
	}
	return newBadges, nil
}

// Profile returns a user's stats, earned badges, leaderboard rank and the XP
// needed for the next level. Users without a stats row get level-1 defaults.
func (s *GamificationService) Profile(ctx context.Context, userID string) (*ProfileResult, error) {
	stats, err := s.statsOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}

	badges, err := s.store.EarnedBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load earned badges: %w", err)
	}
	if badges == nil {
		badges = []models.EarnedBadge{}
	}

	above, err := s.store.CountRankedAbove(ctx, stats)
	if err != nil {
		return nil, fmt.Errorf("failed to compute rank: %w", err)
	}

	return &ProfileResult{
		Stats:       *stats,
		Badges:      badges,
		Rank:        above + 1,
		NextLevelXP: NextLevelXP(stats.Level),
	}, nil
}

// Leaderboard returns the top users by total XP, descending
func (s *GamificationService) Leaderboard(ctx context.Context, limit int64) ([]models.GamificationStats, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.TopStats(ctx, limit)
}

// BadgeByName looks up a catalog badge
func BadgeByName(name string) (Badge, bool) {
	for _, badge := range BadgeCatalog {
		if badge.Name == name {
			return badge, true
		}
	}
	return Badge{}, false
}
