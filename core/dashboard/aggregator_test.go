package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathsol/academy/core/classroom"
	"github.com/mathsol/academy/core/dashboard"
	"github.com/mathsol/academy/core/evaluation"
	"github.com/mathsol/academy/core/student"
	testutil "github.com/mathsol/academy/tests"
)

func TestAggregate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	opts := dashboard.Options{RollingWindow: 3, RiskThreshold: 60, Timezone: loc}
	monday := time.Date(2024, 3, 4, 20, 0, 0, 0, loc)

	snap := dashboard.Snapshot{
		Classes: []classroom.Class{
			{ID: 1, Schedule: "월요일 19:00 / 수요일 19:00"},
			{ID: 2, Schedule: "화요일 19:00"},
			{ID: 3, Schedule: "수시"},
			{ID: 4, Schedule: "mon 10:00"},
		},
		Students: []student.Student{
			{ID: 1, Name: "김철수", Grade: "중1"},
			{ID: 2, Name: "이영희", Grade: "중2"},
			{ID: 3, Name: "박민수", Grade: "중1"},
			{ID: 4, Name: "최지우", Grade: "고1"},
			{ID: 5, Name: "정하늘", Grade: "중3"},
		},
		// newest first
		Logs: []evaluation.Log{
			{StudentID: 1, Score: 50, CreatedAt: time.Date(2024, 3, 4, 14, 59, 0, 0, time.UTC)}, // 23:59 KST, today
			{StudentID: 3, Score: 40, CreatedAt: time.Date(2024, 3, 4, 1, 0, 0, 0, time.UTC)},   // today
			{StudentID: 2, Score: 55, CreatedAt: time.Date(2024, 3, 3, 15, 0, 0, 0, time.UTC)},  // 00:00 KST, today
			{StudentID: 2, Score: 60, CreatedAt: time.Date(2024, 3, 3, 14, 59, 0, 0, time.UTC)}, // yesterday
			{StudentID: 1, Score: 60, CreatedAt: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
			{StudentID: 4, Score: 90, CreatedAt: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
			{StudentID: 1, Score: 70, CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
			{StudentID: 1, Score: 0, CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}, // outside the window
			{StudentID: 99, Score: 0, CreatedAt: time.Date(2024, 3, 4, 2, 0, 0, 0, time.UTC)}, // not in scope
		},
	}

	d, skipped := dashboard.Aggregate(snap, monday, opts)
	assert.Equal(t, "2024-03-04", d.Date)
	assert.Equal(t, 2, d.TodayClasses)
	assert.Equal(t, 5, d.TotalStudents)
	assert.Equal(t, 3, d.TodayEvals)
	require.Len(t, skipped, 1)
	assert.Equal(t, int64(3), skipped[0].ID)

	// 박민수 40, 이영희 57.5, 김철수 60 (not below), 최지우 90, 정하늘 no history
	assert.Equal(t, []dashboard.RiskEntry{
		{StudentID: 3, Name: "박민수", Grade: "중1", RollingAverage: 40},
		{StudentID: 2, Name: "이영희", Grade: "중2", RollingAverage: 57.5},
	}, d.RiskStudents)
}

func TestAggregate_ties(t *testing.T) {
	opts := dashboard.Options{RollingWindow: 5, RiskThreshold: 60, Timezone: time.UTC}
	snap := dashboard.Snapshot{
		Students: []student.Student{{ID: 7, Name: "b"}, {ID: 3, Name: "a"}},
		Logs: []evaluation.Log{
			{StudentID: 7, Score: 30},
			{StudentID: 3, Score: 30},
		},
	}
	d, _ := dashboard.Aggregate(snap, time.Now(), opts)
	require.Len(t, d.RiskStudents, 2)
	assert.Equal(t, int64(3), d.RiskStudents[0].StudentID)
	assert.Equal(t, int64(7), d.RiskStudents[1].StudentID)

	d, _ = dashboard.Aggregate(dashboard.Snapshot{}, time.Now(), opts)
	assert.NotNil(t, d.RiskStudents)
	assert.Empty(t, d.RiskStudents)
}

func TestAggregate_todayClasses(t *testing.T) {
	opts := dashboard.Options{RollingWindow: 5, RiskThreshold: 60, Timezone: time.UTC}
	classes := []classroom.Class{
		{ID: 1, Schedule: "월요일 수요일 오후 07:00"},
		{ID: 2, Schedule: "월 수 금 19:00"},
		{ID: 3, Schedule: "월수금 19:00"},
		{ID: 4, Schedule: "mon wed 7pm"},
		{ID: 5, Schedule: "매주 수요일에"},
		{ID: 6, Schedule: "화 / 목"},
		{ID: 7, Schedule: "수시"},
	}

	tests := []struct {
		name        string
		day         time.Time
		wantClasses int
	}{
		{name: "monday", day: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), wantClasses: 4},
		{name: "wednesday", day: time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC), wantClasses: 5},
		{name: "friday", day: time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC), wantClasses: 2},
		{name: "sunday", day: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), wantClasses: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, skipped := dashboard.Aggregate(dashboard.Snapshot{Classes: classes}, tt.day, opts)
			assert.Equal(t, tt.wantClasses, d.TodayClasses)
			require.Len(t, skipped, 1)
			assert.Equal(t, int64(7), skipped[0].ID)
		})
	}
}

func TestAggregate_windowAtLeastOne(t *testing.T) {
	snap := dashboard.Snapshot{
		Students: []student.Student{{ID: 1, Name: "김철수"}},
		// newest first
		Logs: []evaluation.Log{{StudentID: 1, Score: 40}, {StudentID: 1, Score: 100}},
	}
	for _, window := range []int{0, -3, 1} {
		d, _ := dashboard.Aggregate(snap, time.Now(), dashboard.Options{RollingWindow: window, RiskThreshold: 60, Timezone: time.UTC})
		assert.Equal(t, []dashboard.RiskEntry{{StudentID: 1, Name: "김철수", RollingAverage: 40}}, d.RiskStudents, "window %d", window)
	}
}

func TestAggregator_Compute(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	loc := env.Conf.Timezone
	monday := time.Date(2024, 3, 4, 12, 0, 0, 0, loc)

	a := testutil.CreateClass(t, env.ClassRepo, "A반", "월요일 19:00", "중1")
	b := testutil.CreateClass(t, env.ClassRepo, "B반", "화요일 19:00", "중2")
	testutil.CreateClass(t, env.ClassRepo, "C반", "수시", "중3")

	s1 := testutil.CreateStudent(t, env.StudentRepo, "김철수", "중1", "010-1111-2222", a.ID)
	s2 := testutil.CreateStudent(t, env.StudentRepo, "이영희", "중2", "010-3333-4444", b.ID)
	s3 := testutil.CreateStudent(t, env.StudentRepo, "박민수", "중3", "010-5555-6666")

	testutil.CreateLog(t, env.LogRepo, s1.ID, monday, 30, evaluation.HomeworkDone)
	testutil.CreateLog(t, env.LogRepo, s2.ID, monday, 45, evaluation.HomeworkDone)
	testutil.CreateLog(t, env.LogRepo, s3.ID, monday.AddDate(0, 0, -1), 95, evaluation.HomeworkDone)

	tests := []struct {
		name          string
		scope         dashboard.Scope
		wantClasses   int
		wantStudents  int
		wantEvals     int
		wantRiskNames []string
	}{
		{
			name: "whole academy", wantClasses: 1, wantStudents: 3, wantEvals: 2,
			wantRiskNames: []string{"김철수", "이영희"},
		},
		{
			name: "one class", scope: dashboard.Scope{ClassIDs: []int64{b.ID}},
			wantClasses: 0, wantStudents: 1, wantEvals: 1, wantRiskNames: []string{"이영희"},
		},
		{
			name: "two classes", scope: dashboard.Scope{ClassIDs: []int64{b.ID, a.ID, b.ID}},
			wantClasses: 1, wantStudents: 2, wantEvals: 2, wantRiskNames: []string{"김철수", "이영희"},
		},
		{name: "unknown class", scope: dashboard.Scope{ClassIDs: []int64{999}}, wantRiskNames: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := env.Aggregator.Compute(ctx, tt.scope, monday)
			require.NoError(t, err)
			assert.Equal(t, "2024-03-04", d.Date)
			assert.Equal(t, tt.wantClasses, d.TodayClasses)
			assert.Equal(t, tt.wantStudents, d.TotalStudents)
			assert.Equal(t, tt.wantEvals, d.TodayEvals)

			names := make([]string, 0, len(d.RiskStudents))
			for _, r := range d.RiskStudents {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.wantRiskNames, names)
		})
	}
}
