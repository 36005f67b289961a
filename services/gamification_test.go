package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"learnhub/models"

	"github.com/stretchr/testify/require"
)

// memGamificationStore is an in-memory GamificationStore with the same
// uniqueness and ordering semantics as the Mongo implementation.
type memGamificationStore struct {
	mu     sync.Mutex
	events map[string]models.XpEvent // key: userID|action|referenceID
	stats  map[string]*models.GamificationStats
	badges map[string][]models.EarnedBadge
}

func newMemStore() *memGamificationStore {
	return &memGamificationStore{
		events: make(map[string]models.XpEvent),
		stats:  make(map[string]*models.GamificationStats),
		badges: make(map[string][]models.EarnedBadge),
	}
}

func eventKey(userID, action, referenceID string) string {
	return userID + "|" + action + "|" + referenceID
}

func (m *memGamificationStore) InsertEvent(_ context.Context, event models.XpEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := eventKey(event.UserID, event.Action, event.ReferenceID)
	if _, exists := m.events[key]; exists {
		return ErrDuplicateEvent
	}
	m.events[key] = event
	return nil
}

func (m *memGamificationStore) GetStats(_ context.Context, userID string) (*models.GamificationStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats, ok := m.stats[userID]
	if !ok {
		return nil, nil
	}
	copied := *stats
	return &copied, nil
}

func (m *memGamificationStore) SaveStats(_ context.Context, stats *models.GamificationStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *stats
	m.stats[stats.UserID] = &copied
	return nil
}

func (m *memGamificationStore) CountEvents(_ context.Context, userID, action string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, event := range m.events {
		if event.UserID == userID && event.Action == action {
			count++
		}
	}
	return count, nil
}

func (m *memGamificationStore) EarnedBadges(_ context.Context, userID string) ([]models.EarnedBadge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.EarnedBadge(nil), m.badges[userID]...), nil
}

func (m *memGamificationStore) InsertEarnedBadge(_ context.Context, badge models.EarnedBadge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, owned := range m.badges[badge.UserID] {
		if owned.BadgeName == badge.BadgeName {
			return fmt.Errorf("badge already earned")
		}
	}
	m.badges[badge.UserID] = append(m.badges[badge.UserID], badge)
	return nil
}

func (m *memGamificationStore) CountRankedAbove(_ context.Context, stats *models.GamificationStats) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var above int64
	for _, other := range m.stats {
		if other.UserID == stats.UserID {
			continue
		}
		if other.TotalXP > stats.TotalXP ||
			(other.TotalXP == stats.TotalXP && other.UpdatedAt.Before(stats.UpdatedAt)) {
			above++
		}
	}
	return above, nil
}

func (m *memGamificationStore) TopStats(_ context.Context, limit int64) ([]models.GamificationStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]models.GamificationStats, 0, len(m.stats))
	for _, stats := range m.stats {
		all = append(all, *stats)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].TotalXP != all[j].TotalXP {
			return all[i].TotalXP > all[j].TotalXP
		}
		return all[i].UpdatedAt.Before(all[j].UpdatedAt)
	})
	if int64(len(all)) > limit {
		all = all[:limit]
	}
	return all, nil
}

func newTestService() (*GamificationService, *memGamificationStore) {
	store := newMemStore()
	return NewGamificationService(store), store
}

func TestEarnXPFirstLesson(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	result, err := service.EarnXP(ctx, "user-1", ActionLessonComplete, "lesson_a1")
	require.NoError(t, err)
	require.True(t, result.Earned)
	require.Equal(t, 50, result.XPAdded)
	require.Equal(t, 50, result.TotalXP)
	require.Equal(t, 1, result.Level)
	require.False(t, result.LevelUp)
	require.Contains(t, result.Badges, "First Steps")
}

func TestEarnXPDuplicateIsNoOp(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	first, err := service.EarnXP(ctx, "user-1", ActionLessonComplete, "lesson_a1")
	require.NoError(t, err)
	require.True(t, first.Earned)

	second, err := service.EarnXP(ctx, "user-1", ActionLessonComplete, "lesson_a1")
	require.NoError(t, err)
	require.False(t, second.Earned)
	require.Equal(t, 0, second.XPAdded)
	require.Equal(t, 50, second.TotalXP)
	require.Equal(t, 1, second.Level)
	require.Empty(t, second.Badges)
}

func TestEarnXPInvalidAction(t *testing.T) {
	service, _ := newTestService()

	_, err := service.EarnXP(context.Background(), "user-1", "give_me_xp", "ref")
	require.ErrorIs(t, err, ErrInvalidAction)
}

func TestEarnXPInvalidDailyReference(t *testing.T) {
	service, _ := newTestService()

	_, err := service.EarnXP(context.Background(), "user-1", ActionDailyActivity, "not-a-date")
	require.ErrorIs(t, err, ErrInvalidReference)

	_, err = service.EarnXP(context.Background(), "user-1", ActionLessonComplete, "")
	require.ErrorIs(t, err, ErrInvalidReference)
}

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{499, 1},
		{500, 1},
		{501, 2},
		{1500, 2},
		{1501, 3},
		{3000, 3},
		{3001, 4},
		{100000, 4},
	}
	for _, tc := range cases {
		require.Equal(t, tc.level, LevelForXP(tc.xp), "xp=%d", tc.xp)
	}
}

func TestNextLevelXP(t *testing.T) {
	require.Equal(t, 500, NextLevelXP(1))
	require.Equal(t, 1500, NextLevelXP(2))
	require.Equal(t, 3000, NextLevelXP(3))
	require.Equal(t, -1, NextLevelXP(4))
}

func TestEarnXPLevelUpOnCrossingThreshold(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	// ten lesson completions put the user exactly at 500 XP, still level 1
	var result *XPResult
	var err error
	for i := 0; i < 10; i++ {
		result, err = service.EarnXP(ctx, "user-1", ActionLessonComplete, fmt.Sprintf("lesson_%d", i))
		require.NoError(t, err)
	}
	require.Equal(t, 500, result.TotalXP)
	require.Equal(t, 1, result.Level)
	require.False(t, result.LevelUp)

	// the next award crosses the threshold
	result, err = service.EarnXP(ctx, "user-1", ActionLessonComplete, "lesson_10")
	require.NoError(t, err)
	require.Equal(t, 550, result.TotalXP)
	require.Equal(t, 2, result.Level)
	require.True(t, result.LevelUp)
}

func TestStreakProgression(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for want := 1; want <= 3; want++ {
		result, err := service.EarnXP(ctx, "user-1", ActionDailyActivity, day.Format(DateLayout))
		require.NoError(t, err)
		require.True(t, result.Earned)
		require.Equal(t, want, result.Streak)
		day = day.AddDate(0, 0, 1)
	}
}

func TestStreakSameDayNoOp(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Format(DateLayout)

	first, err := service.EarnXP(ctx, "user-1", ActionDailyActivity, day)
	require.NoError(t, err)
	require.Equal(t, 1, first.Streak)

	// the unique event index already blocks a second same-day award
	second, err := service.EarnXP(ctx, "user-1", ActionDailyActivity, day)
	require.NoError(t, err)
	require.False(t, second.Earned)
	require.Equal(t, 1, second.Streak)
	require.Equal(t, 10, second.TotalXP)
}

func TestStreakResetAfterGap(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	result, err := service.EarnXP(ctx, "user-1", ActionDailyActivity, day.Format(DateLayout))
	require.NoError(t, err)
	require.Equal(t, 1, result.Streak)

	result, err = service.EarnXP(ctx, "user-1", ActionDailyActivity, day.AddDate(0, 0, 1).Format(DateLayout))
	require.NoError(t, err)
	require.Equal(t, 2, result.Streak)

	// skipping a day resets the streak
	result, err = service.EarnXP(ctx, "user-1", ActionDailyActivity, day.AddDate(0, 0, 3).Format(DateLayout))
	require.NoError(t, err)
	require.Equal(t, 1, result.Streak)
}

func TestConcurrentAwardsSameReference(t *testing.T) {
	service, store := newTestService()
	ctx := context.Background()

	const workers = 32
	results := make(chan *XPResult, workers)
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := service.EarnXP(ctx, "user-1", ActionLessonComplete, "lesson_a1")
			if err != nil {
				errs <- err
				return
			}
			results <- result
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	var earned int
	for result := range results {
		if result.Earned {
			earned++
		}
	}
	require.Equal(t, 1, earned)

	stats, err := store.GetStats(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 50, stats.TotalXP)
}

func TestConcurrentAwardsDistinctReferences(t *testing.T) {
	service, store := newTestService()
	ctx := context.Background()

	const workers = 20
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := service.EarnXP(ctx, "user-1", ActionVideoWatch, fmt.Sprintf("video_%d", n)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stats, err := store.GetStats(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, workers*20, stats.TotalXP)
}

func TestQuizWhizBadge(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	var result *XPResult
	var err error
	for i := 0; i < 10; i++ {
		result, err = service.EarnXP(ctx, "user-1", ActionQuizPass, fmt.Sprintf("quiz_%d", i))
		require.NoError(t, err)
		if i < 9 {
			require.NotContains(t, result.Badges, "Quiz Whiz")
		}
	}
	require.Contains(t, result.Badges, "Quiz Whiz")
}

func TestWeekWarriorBadge(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	var result *XPResult
	var err error
	for i := 0; i < 7; i++ {
		result, err = service.EarnXP(ctx, "user-1", ActionDailyActivity, day.AddDate(0, 0, i).Format(DateLayout))
		require.NoError(t, err)
	}
	require.Equal(t, 7, result.Streak)
	require.Contains(t, result.Badges, "Week Warrior")
}

func TestCourseConquerorBadge(t *testing.T) {
	service, _ := newTestService()

	result, err := service.EarnXP(context.Background(), "user-1", ActionCourseComplete, "course_abc")
	require.NoError(t, err)
	require.Equal(t, 200, result.TotalXP)
	require.Contains(t, result.Badges, "Course Conqueror")
}

func TestBadgeAwardedOnce(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	first, err := service.EarnXP(ctx, "user-1", ActionLessonComplete, "lesson_a1")
	require.NoError(t, err)
	require.Contains(t, first.Badges, "First Steps")

	second, err := service.EarnXP(ctx, "user-1", ActionLessonComplete, "lesson_a2")
	require.NoError(t, err)
	require.NotContains(t, second.Badges, "First Steps")
}

func TestProfileDefaultsForNewUser(t *testing.T) {
	service, _ := newTestService()

	profile, err := service.Profile(context.Background(), "nobody")
	require.NoError(t, err)
	require.Equal(t, 0, profile.Stats.TotalXP)
	require.Equal(t, 1, profile.Stats.Level)
	require.Equal(t, int64(1), profile.Rank)
	require.Equal(t, 500, profile.NextLevelXP)
	require.Empty(t, profile.Badges)
}

func TestProfileRank(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	_, err := service.EarnXP(ctx, "leader", ActionCourseComplete, "course_a")
	require.NoError(t, err)
	_, err = service.EarnXP(ctx, "runner-up", ActionLessonComplete, "lesson_a")
	require.NoError(t, err)

	profile, err := service.Profile(ctx, "runner-up")
	require.NoError(t, err)
	require.Equal(t, int64(2), profile.Rank)

	profile, err = service.Profile(ctx, "leader")
	require.NoError(t, err)
	require.Equal(t, int64(1), profile.Rank)
}

func TestLeaderboardOrdering(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	_, err := service.EarnXP(ctx, "bronze", ActionDailyActivity, "2026-03-01")
	require.NoError(t, err)
	_, err = service.EarnXP(ctx, "gold", ActionCourseComplete, "course_a")
	require.NoError(t, err)
	_, err = service.EarnXP(ctx, "silver", ActionLessonComplete, "lesson_a")
	require.NoError(t, err)

	top, err := service.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	require.Equal(t, "gold", top[0].UserID)
	require.Equal(t, "silver", top[1].UserID)
	require.Equal(t, "bronze", top[2].UserID)
}

func TestLeaderboardLimit(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := service.EarnXP(ctx, fmt.Sprintf("user-%d", i), ActionVideoWatch, "video_a")
		require.NoError(t, err)
	}

	top, err := service.Leaderboard(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
}
