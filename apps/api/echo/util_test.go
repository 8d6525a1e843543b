package echoapi

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/auth"
	"github.com/trezcool/masomo-admin/core/classroom"
	"github.com/trezcool/masomo-admin/core/course"
	"github.com/trezcool/masomo-admin/core/group"
	"github.com/trezcool/masomo-admin/core/subject"
	logsvc "github.com/trezcool/masomo-admin/services/logger"
	inmemdb "github.com/trezcool/masomo-admin/storage/database/inmem"
)

var (
	errMissingTokenBody = httpErr{Error: "missing or malformed jwt"}
	errNotFoundBody     = httpErr{Error: "not found"}
)

type httpErr struct {
	Error string `json:"error"`
}

type validationErr struct {
	Errors map[string][]string `json:"errors"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type testApp struct {
	server        *Server
	issuer        *auth.Issuer
	classroomRepo classroom.Repository
	courseRepo    course.Repository
	groupRepo     group.Repository
	subjectRepo   subject.Repository
}

func setup(t *testing.T) *testApp {
	conf := core.NewTestConfig()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)

	app := &testApp{
		issuer:        auth.NewIssuer(conf),
		classroomRepo: inmemdb.NewClassroomRepository(db),
		courseRepo:    inmemdb.NewCourseRepository(db),
		groupRepo:     inmemdb.NewGroupRepository(db),
		subjectRepo:   inmemdb.NewSubjectRepository(db),
	}
	app.server = NewServer(Options{
		Conf:         conf,
		Logger:       logsvc.NewStdLogger(log.New(&bytes.Buffer{}, "", 0), false),
		Issuer:       app.issuer,
		Validate:     validate,
		Translator:   translator,
		ClassroomSvc: classroom.NewService(app.classroomRepo, validate),
		CourseSvc:    course.NewService(app.courseRepo, app.subjectRepo, app.groupRepo, validate),
		GroupSvc:     group.NewService(app.groupRepo, validate),
		SubjectSvc:   subject.NewService(app.subjectRepo, validate),
	})
	return app
}

func (app *testApp) getToken(t *testing.T, p core.Principal) string {
	token, err := app.issuer.Generate(p)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "code")
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func (app *testApp) runTests(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
