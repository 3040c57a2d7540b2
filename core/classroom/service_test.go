package classroom_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/classroom"
	"github.com/mathsol/academy/core/evaluation"
	"github.com/mathsol/academy/core/student"
	testutil "github.com/mathsol/academy/tests"
)

func TestWeekdays(t *testing.T) {
	tests := []struct {
		schedule string
		want     []time.Weekday
	}{
		{schedule: "월요일 오후 07:00 / 수요일 오후 07:00", want: []time.Weekday{time.Monday, time.Wednesday}},
		{schedule: "Fri 18:00, mon 18:00\n금 20:00", want: []time.Weekday{time.Monday, time.Friday}},
		{schedule: "(토) 10:00", want: []time.Weekday{time.Saturday}},
		{schedule: "월요일 수요일 오후 07:00", want: []time.Weekday{time.Monday, time.Wednesday}},
		{schedule: "월 수 금 19:00", want: []time.Weekday{time.Monday, time.Wednesday, time.Friday}},
		{schedule: "mon wed 7pm", want: []time.Weekday{time.Monday, time.Wednesday}},
		{schedule: "월수금 19:00", want: []time.Weekday{time.Monday, time.Wednesday, time.Friday}},
		{schedule: "화·목 16:00", want: []time.Weekday{time.Tuesday, time.Thursday}},
		{schedule: "월요일수요일 17:00", want: []time.Weekday{time.Monday, time.Wednesday}},
		{schedule: "매주 토요일에 10시", want: []time.Weekday{time.Saturday}},
		{schedule: "매주토요일", want: []time.Weekday{time.Saturday}},
		{schedule: "매일 오후", want: []time.Weekday{}},
		{schedule: "수시", want: []time.Weekday{}},
		{schedule: "", want: []time.Weekday{}},
	}
	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			assert.Equal(t, tt.want, classroom.Weekdays(tt.schedule))
		})
	}
}

func TestDaysUntilNext(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		from     time.Weekday
		want     int
		wantOK   bool
	}{
		{name: "today", schedule: "월요일 19:00", from: time.Monday, want: 0, wantOK: true},
		{name: "later this week", schedule: "월 / 목", from: time.Tuesday, want: 2, wantOK: true},
		{name: "wraps around", schedule: "월", from: time.Saturday, want: 2, wantOK: true},
		{name: "no weekday", schedule: "수시", from: time.Monday, want: 7},
		{name: "several days in one slot", schedule: "월 수 금 19:00", from: time.Thursday, want: 1, wantOK: true},
		{name: "compact", schedule: "월수금", from: time.Wednesday, want: 0, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := classroom.DaysUntilNext(tt.schedule, tt.from)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantOK && tt.want == 0, classroom.MeetsOn(tt.schedule, tt.from))
		})
	}
}

func TestService_Create(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		nc        classroom.NewClass
		wantField string
	}{
		{name: "missing name", nc: classroom.NewClass{Schedule: "월요일 19:00"}, wantField: "name"},
		{name: "missing schedule", nc: classroom.NewClass{Name: "A반"}, wantField: "schedule"},
		{name: "schedule without weekday", nc: classroom.NewClass{Name: "A반", Schedule: "매일 19:00"}, wantField: "schedule"},
		{name: "create", nc: classroom.NewClass{Name: " A반 ", Schedule: "월요일 19:00", TargetGrade: "중1"}},
		{name: "compact schedule", nc: classroom.NewClass{Name: "A반", Schedule: "월수금 19:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := env.ClassSvc.Create(ctx, tt.nc)
			if tt.wantField != "" {
				verrs, ok := err.(validator.ValidationErrors)
				require.True(t, ok, "want validator.ValidationErrors, got %v", err)
				assert.Equal(t, tt.wantField, verrs[0].Field())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "A반", c.Name)

			got, err := env.ClassSvc.GetByID(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, c.ID, got.ID)
		})
	}

	_, err := env.ClassSvc.GetByID(ctx, 999)
	assert.Equal(t, classroom.ErrNotFound, err)
}

func TestService_List(t *testing.T) {
	env := testutil.NewEnv(t)
	loc := env.Conf.Timezone
	wednesday := time.Date(2024, 3, 6, 10, 0, 0, 0, loc)

	mon := testutil.CreateClass(t, env.ClassRepo, "월반", "월요일 19:00", "중1")
	none := testutil.CreateClass(t, env.ClassRepo, "수시반", "수시", "중2")
	wed := testutil.CreateClass(t, env.ClassRepo, "수반", "수요일 19:00", "중1")
	fri := testutil.CreateClass(t, env.ClassRepo, "금반", "금요일 19:00", "중3")
	wed2 := testutil.CreateClass(t, env.ClassRepo, "월수반", "월요일 19:00 / 수요일 19:00", "중2")

	classes, err := env.ClassSvc.List(context.Background(), wednesday)
	require.NoError(t, err)

	ids := make([]int64, 0, len(classes))
	for _, c := range classes {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int64{wed.ID, wed2.ID, fri.ID, mon.ID, none.ID}, ids)
}

func TestService_Assign(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	c5 := testutil.CreateClass(t, env.ClassRepo, "A반", "월요일 19:00", "중1")
	other := testutil.CreateClass(t, env.ClassRepo, "B반", "화요일 19:00", "중1")
	s1 := testutil.CreateStudent(t, env.StudentRepo, "김철수", "중1", "010-1111-2222")
	s2 := testutil.CreateStudent(t, env.StudentRepo, "이영희", "중1", "010-3333-4444", other.ID)
	s3 := testutil.CreateStudent(t, env.StudentRepo, "박민수", "중1", "010-5555-6666", c5.ID)

	tests := []struct {
		name    string
		classID int64
		ids     []int64
		want    int
		wantErr error
	}{
		{name: "unknown class", classID: 999, ids: []int64{s1.ID}, wantErr: classroom.ErrNotFound},
		{name: "empty list", classID: c5.ID, want: 0},
		{name: "unknown students are skipped", classID: c5.ID, ids: []int64{s1.ID, s2.ID, 999}, want: 2},
		{name: "already assigned and duplicates", classID: c5.ID, ids: []int64{s3.ID, s3.ID}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := env.ClassSvc.Assign(ctx, tt.classID, tt.ids)
			if tt.wantErr != nil {
				assert.True(t, core.IsNotFound(err), "unexpected error %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.AssignedCount)
		})
	}

	students, err := env.StudentSvc.Query(ctx, &student.QueryFilter{ClassID: &c5.ID}, nil)
	require.NoError(t, err)
	assert.Len(t, students, 3)
}

func TestService_Roster(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	loc := env.Conf.Timezone
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, loc)

	c := testutil.CreateClass(t, env.ClassRepo, "A반", "월요일 19:00", "중1")
	empty := testutil.CreateClass(t, env.ClassRepo, "B반", "화요일 19:00", "중1")
	park := testutil.CreateStudent(t, env.StudentRepo, "박민수", "중1", "010-5555-6666", c.ID)
	kim := testutil.CreateStudent(t, env.StudentRepo, "김철수", "중1", "010-1111-2222", c.ID)
	testutil.CreateStudent(t, env.StudentRepo, "이영희", "중1", "010-3333-4444")

	// 23:30 KST is still the same day; 00:10 the next day is not
	testutil.CreateLog(t, env.LogRepo, kim.ID, day.Add(23*time.Hour+30*time.Minute), 80, evaluation.HomeworkDone)
	testutil.CreateLog(t, env.LogRepo, park.ID, day.Add(24*time.Hour+10*time.Minute), 80, evaluation.HomeworkDone)

	roster, err := env.ClassSvc.Roster(ctx, c.ID, day.Add(9*time.Hour))
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, kim.ID, roster[0].ID)
	assert.True(t, roster[0].EvaluatedToday)
	assert.Equal(t, park.ID, roster[1].ID)
	assert.False(t, roster[1].EvaluatedToday)

	roster, err = env.ClassSvc.Roster(ctx, empty.ID, day)
	require.NoError(t, err)
	assert.Empty(t, roster)

	_, err = env.ClassSvc.Roster(ctx, 999, day)
	assert.True(t, core.IsNotFound(err))
}

func TestService_Available(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	c := testutil.CreateClass(t, env.ClassRepo, "A반", "월요일 19:00", "중2")
	a := testutil.CreateStudent(t, env.StudentRepo, "가나", "중1", "010-1111-1111")
	b := testutil.CreateStudent(t, env.StudentRepo, "다라", "중2", "010-2222-2222")
	testutil.CreateStudent(t, env.StudentRepo, "마바", "중2", "010-3333-3333", c.ID)
	d := testutil.CreateStudent(t, env.StudentRepo, "사아", "고1", "010-4444-4444")
	e := testutil.CreateStudent(t, env.StudentRepo, "가가", "중2", "010-5555-5555")

	ids := func(students []student.Student) []int64 {
		res := make([]int64, 0, len(students))
		for _, st := range students {
			res = append(res, st.ID)
		}
		return res
	}

	tests := []struct {
		name  string
		grade string
		want  []int64
	}{
		{name: "no target grade", want: []int64{d.ID, a.ID, e.ID, b.ID}},
		{name: "target grade first", grade: "중2", want: []int64{e.ID, b.ID, d.ID, a.ID}},
		{name: "unknown grade", grade: "초6", want: []int64{d.ID, a.ID, e.ID, b.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			students, err := env.ClassSvc.Available(ctx, tt.grade)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(students))
		})
	}
}
