package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mathsol/academy/core/curriculum"
	"github.com/mathsol/academy/core/dashboard"
	"github.com/mathsol/academy/core/evaluation"
	testutil "github.com/mathsol/academy/tests"
)

func Test_dashboardApi(t *testing.T) {
	server, env := setup(t)
	ctx := context.Background()

	loc := env.Conf.Timezone
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, loc)
	a := testutil.CreateClass(t, env.ClassRepo, "A반", "월요일 19:00", "중1")
	b := testutil.CreateClass(t, env.ClassRepo, "B반", "화요일 19:00", "중2")
	s1 := testutil.CreateStudent(t, env.StudentRepo, "김철수", "중1", "010-1111-2222", a.ID)
	s2 := testutil.CreateStudent(t, env.StudentRepo, "이영희", "중2", "010-3333-4444", b.ID)
	testutil.CreateLog(t, env.LogRepo, s1.ID, monday.Add(19*time.Hour), 30, evaluation.HomeworkIncomplete)
	testutil.CreateLog(t, env.LogRepo, s2.ID, monday.Add(-5*time.Hour), 90, evaluation.HomeworkDone)

	want := func(scope dashboard.Scope) []byte {
		d, err := env.Aggregator.Compute(ctx, scope, monday)
		require.NoError(t, err)
		return marshalObj(t, d)
	}

	tests := []httpTest{
		{name: "academy", path: "/v1/dashboard?date=2024-03-04", wantData: want(dashboard.Scope{})},
		{
			name: "classes", path: fmt.Sprintf("/v1/dashboard?date=2024-03-04&class_id=%d&class_id=%d", a.ID, b.ID),
			wantData: want(dashboard.Scope{ClassIDs: []int64{a.ID, b.ID}}),
		},
		{
			name: "comma separated", path: fmt.Sprintf("/v1/dashboard?date=2024-03-04&class_id=%d,%d", b.ID, a.ID),
			wantData: want(dashboard.Scope{ClassIDs: []int64{a.ID, b.ID}}),
		},
		{
			name: "one class", path: fmt.Sprintf("/v1/dashboard?date=2024-03-04&class_id=%d", b.ID),
			wantData: marshalObj(t, dashboard.Dashboard{Date: "2024-03-04", TotalStudents: 1, RiskStudents: []dashboard.RiskEntry{}}),
		},
		{
			name: "at risk", path: fmt.Sprintf("/v1/dashboard?date=2024-03-04&class_id=%d", a.ID),
			wantData: marshalObj(t, dashboard.Dashboard{
				Date: "2024-03-04", TodayClasses: 1, TotalStudents: 1, TodayEvals: 1,
				RiskStudents: []dashboard.RiskEntry{{StudentID: s1.ID, Name: "김철수", Grade: "중1", RollingAverage: 30}},
			}),
		},
		{name: "today", path: "/v1/dashboard"},
		{name: "bad date", path: "/v1/dashboard?date=lol", wantCode: http.StatusBadRequest, wantData: marshalErr(t, "date must be formatted as YYYY-MM-DD")},
		{name: "bad class id", path: "/v1/dashboard?class_id=1,lol", wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"class_id": "must be a list of integers"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run(t, server, tt)
		})
	}
}

func Test_curriculumApi(t *testing.T) {
	server, env := setup(t)

	run(t, server, httpTest{name: "empty", path: "/v1/curriculum", wantData: []byte(`[]`)})

	units := testutil.CreateUnits(t, env.UnitRepo, 3)
	run(t, server, httpTest{name: "catalog", path: "/v1/curriculum", wantData: marshalObj(t, curriculum.NewCatalog(units))})
}
