package echoapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mathsol/academy/core/evaluation"
	"github.com/mathsol/academy/core/student"
	exportsvc "github.com/mathsol/academy/services/export"
	testutil "github.com/mathsol/academy/tests"
)

func Test_home(t *testing.T) {
	server, _ := setup(t)
	req, rec := newRequest(http.MethodGet, "/")
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to MathSol Academy API!", rec.Body.String())
}

func Test_studentApi_create(t *testing.T) {
	server, _ := setup(t)

	tests := []httpTest{
		{name: "malformed json", body: []byte(`{"name":`), wantCode: http.StatusBadRequest},
		{
			name: "invalid", body: []byte(`{"name": "", "guardian_phone": "010"}`), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"name":           "this field is required",
				"guardian_phone": "phone number must contain at least 8 digits",
			}),
		},
		{
			name: "create", body: []byte(`{"name": " 김철수 ", "school_type": "중", "grade_num": "1", "guardian_phone": "010-1234-5678"}`),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/students"
		t.Run(tt.name, func(t *testing.T) {
			rec := run(t, server, tt)
			if rec.Code == http.StatusCreated {
				var st student.Student
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
				assert.NotZero(t, st.ID)
				assert.Equal(t, "김철수", st.Name)
				assert.Equal(t, "중1", st.Grade)
				assert.Nil(t, st.ClassID)
			}
		})
	}
}

func Test_studentApi_query(t *testing.T) {
	server, env := setup(t)

	cls := testutil.CreateClass(t, env.ClassRepo, "A반", "월요일 19:00", "중1")
	kim := testutil.CreateStudent(t, env.StudentRepo, "김철수", "중1", "010-1111-2222", cls.ID)
	lee := testutil.CreateStudent(t, env.StudentRepo, "이영희", "중2", "010-3333-4444")
	park := testutil.CreateStudent(t, env.StudentRepo, "박민수", "중1", "010-5555-6666", cls.ID)
	empty := marshalObj(t, []student.Student{})

	tests := []httpTest{
		{name: "all", path: "/v1/students", wantData: marshalObj(t, []student.Student{kim, lee, park})},
		{name: "search", path: "/v1/students?search=%EC%98%81%ED%9D%AC", wantData: marshalObj(t, []student.Student{lee})}, // 영희
		{name: "search (unknown)", path: "/v1/students?search=lol", wantData: empty},
		{name: "class", path: fmt.Sprintf("/v1/students?class_id=%d", cls.ID), wantData: marshalObj(t, []student.Student{kim, park})},
		{name: "class (malformed)", path: "/v1/students?class_id=lol", wantData: empty},
		{name: "unassigned", path: "/v1/students?unassigned=true", wantData: marshalObj(t, []student.Student{lee})},
		{name: "order by -name", path: "/v1/students?ordering=-name", wantData: marshalObj(t, []student.Student{lee, park, kim})},
		{name: "trailing slash", path: "/v1/students/", wantData: marshalObj(t, []student.Student{kim, lee, park})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run(t, server, tt)
		})
	}
}

func Test_studentApi_retrieve(t *testing.T) {
	server, env := setup(t)
	kim := testutil.CreateStudent(t, env.StudentRepo, "김철수", "중1", "010-1111-2222")

	tests := []httpTest{
		{name: "malformed id", path: "/v1/students/lol", wantCode: http.StatusNotFound, wantData: marshalErr(t, "not found")},
		{name: "unknown", path: "/v1/students/999", wantCode: http.StatusNotFound, wantData: marshalErr(t, "student not found")},
		{name: "found", path: fmt.Sprintf("/v1/students/%d", kim.ID), wantData: marshalObj(t, kim)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run(t, server, tt)
		})
	}
}

func Test_studentApi_recommendation(t *testing.T) {
	server, env := setup(t)
	ctx := context.Background()

	units := testutil.CreateUnits(t, env.UnitRepo, 4)
	fresh := testutil.CreateStudent(t, env.StudentRepo, "김철수", "중1", "010-1111-2222")
	good := testutil.CreateStudent(t, env.StudentRepo, "이영희", "중1", "010-3333-4444")
	weak := testutil.CreateStudent(t, env.StudentRepo, "박민수", "중1", "010-5555-6666")
	testutil.CreateLog(t, env.LogRepo, good.ID, time.Now(), 85, evaluation.HomeworkDone, units[0].ID, units[1].ID)
	testutil.CreateLog(t, env.LogRepo, weak.ID, time.Now(), 40, evaluation.HomeworkDone, units[0].ID, units[1].ID)

	want := func(id int64) []byte {
		rec, err := env.Engine.Recommend(ctx, id)
		require.NoError(t, err)
		return marshalObj(t, rec)
	}
	wantForm := func(id int64) []byte {
		form, err := env.Engine.Prepare(ctx, id)
		require.NoError(t, err)
		return marshalObj(t, form)
	}

	tests := []httpTest{
		{name: "unknown student", path: "/v1/students/999/recommendation", wantCode: http.StatusNotFound, wantData: marshalErr(t, "student not found")},
		{name: "new student", path: fmt.Sprintf("/v1/students/%d/recommendation", fresh.ID), wantData: want(fresh.ID)},
		{name: "progress", path: fmt.Sprintf("/v1/students/%d/recommendation", good.ID), wantData: want(good.ID)},
		{name: "reinforce", path: fmt.Sprintf("/v1/students/%d/recommendation", weak.ID), wantData: want(weak.ID)},
		{name: "form", path: fmt.Sprintf("/v1/students/%d/evaluation-form", weak.ID), wantData: wantForm(weak.ID)},
		{name: "form (unknown)", path: "/v1/students/999/evaluation-form", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run(t, server, tt)
		})
	}

	req, rec := newRequest(http.MethodGet, fmt.Sprintf("/v1/students/%d/recommendation", good.ID))
	server.ServeHTTP(rec, req)
	var got struct {
		UnitIDs []int64 `json:"unit_ids"`
		Reason  string  `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []int64{units[2].ID, units[3].ID}, got.UnitIDs)
	assert.Contains(t, got.Reason, "진도")
}

func Test_studentApi_evaluate(t *testing.T) {
	server, env := setup(t)

	units := testutil.CreateUnits(t, env.UnitRepo, 2)
	kim := testutil.CreateStudent(t, env.StudentRepo, "김철수", "중1", "010-1111-2222")
	path := fmt.Sprintf("/v1/students/%d/evaluations", kim.ID)

	tests := []httpTest{
		{name: "unknown student", path: "/v1/students/999/evaluations", body: []byte(`{"score": 80, "homework": "done", "attitude": "high"}`), wantCode: http.StatusNotFound, wantData: marshalErr(t, "student not found")},
		{name: "missing score", path: path, body: []byte(`{"homework": "done", "attitude": "high"}`), wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"score": "this field is required"})},
		{name: "score out of range", path: path, body: []byte(`{"score": 101, "homework": "done", "attitude": "high"}`), wantCode: http.StatusBadRequest},
		{
			name: "unknown unit", path: path, wantCode: http.StatusBadRequest,
			body:     []byte(`{"score": 80, "homework": "done", "attitude": "high", "completed_unit_ids": [999]}`),
			wantData: marshalObj(t, map[string]string{"completed_unit_ids": "unknown curriculum units: 999"}),
		},
		{
			name: "submit", path: path, wantCode: http.StatusCreated,
			body:  []byte(fmt.Sprintf(`{"score": 90, "homework": "done", "attitude": "high", "completed_unit_ids": [%d, %d], "comment": "굿"}`, units[1].ID, units[0].ID)),
			extra: []int64{units[0].ID, units[1].ID},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		t.Run(tt.name, func(t *testing.T) {
			rec := run(t, server, tt)
			if rec.Code == http.StatusCreated {
				var l evaluation.Log
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &l))
				assert.Equal(t, kim.ID, l.StudentID)
				assert.Equal(t, 90, l.Score)
				assert.Equal(t, tt.extra, l.CompletedUnitIDs)
			}
		})
	}
}

func Test_studentApi_history(t *testing.T) {
	server, env := setup(t)

	kim := testutil.CreateStudent(t, env.StudentRepo, "김철수", "중1", "010-1111-2222")
	now := time.Now()
	l1 := testutil.CreateLog(t, env.LogRepo, kim.ID, now.Add(-2*time.Hour), 70, evaluation.HomeworkDone)
	l2 := testutil.CreateLog(t, env.LogRepo, kim.ID, now.Add(-1*time.Hour), 80, evaluation.HomeworkNone)
	path := fmt.Sprintf("/v1/students/%d/evaluations", kim.ID)

	tests := []httpTest{
		{name: "all", path: path, wantData: marshalObj(t, []evaluation.Log{l2, l1})},
		{name: "limit", path: path + "?limit=1", wantData: marshalObj(t, []evaluation.Log{l2})},
		{name: "bad limit", path: path + "?limit=lol", wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"limit": "must be an integer"})},
		{name: "unknown student", path: "/v1/students/999/evaluations", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run(t, server, tt)
		})
	}
}

func Test_studentApi_export(t *testing.T) {
	server, env := setup(t)

	units := testutil.CreateUnits(t, env.UnitRepo, 2)
	kim := testutil.CreateStudent(t, env.StudentRepo, "김철수", "중1", "010-1111-2222")
	now := time.Now()
	testutil.CreateLog(t, env.LogRepo, kim.ID, now.Add(-2*time.Hour), 70, evaluation.HomeworkDone, units[0].ID)
	testutil.CreateLog(t, env.LogRepo, kim.ID, now.Add(-1*time.Hour), 95, evaluation.HomeworkDone, units[1].ID)

	run(t, server, httpTest{path: "/v1/students/999/evaluations/export", wantCode: http.StatusNotFound})

	req, rec := newRequest(http.MethodGet, fmt.Sprintf("/v1/students/%d/evaluations/export", kim.ID))
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, exportsvc.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, fmt.Sprintf("attachment; filename=evaluations_%d.xlsx", kim.ID), rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	score, err := f.GetCellValue("평가기록", "B3")
	require.NoError(t, err)
	assert.Equal(t, "95", score)
	unit, err := f.GetCellValue("평가기록", "C3")
	require.NoError(t, err)
	assert.Equal(t, "u2", unit)
}
