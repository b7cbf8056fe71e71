package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/school"
)

type httpErr struct {
	Error string `json:"error"`
}

type httpMsg struct {
	Message string `json:"message"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
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

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// Fixtures; panic-free creation straight through the services.

func createSchool(t *testing.T, name, email string) school.School {
	t.Helper()
	sch, err := schoolSvc.CreateSchool(school.NewSchool{Name: name, Email: email, Password: testPassword})
	if err != nil {
		t.Fatalf("createSchool(): %v", err)
	}
	return sch
}

func createTeacher(t *testing.T, schoolID int, name, email string) school.Teacher {
	t.Helper()
	tch, err := schoolSvc.CreateTeacher(schoolID, school.NewTeacher{Name: name, Email: email, Password: testPassword})
	if err != nil {
		t.Fatalf("createTeacher(): %v", err)
	}
	return tch
}

func createStudent(t *testing.T, schoolID int, name, email string) school.Student {
	t.Helper()
	std, err := schoolSvc.CreateStudent(schoolID, school.NewStudent{Name: name, Email: email, Password: testPassword})
	if err != nil {
		t.Fatalf("createStudent(): %v", err)
	}
	return std
}

func createClass(t *testing.T, schoolID int, name string) school.Class {
	t.Helper()
	cls, err := schoolSvc.CreateClass(schoolID, school.NewClass{Name: name})
	if err != nil {
		t.Fatalf("createClass(): %v", err)
	}
	return cls
}

func createSuperAdmin(t *testing.T, name, identifier string) auth.SuperAdmin {
	t.Helper()
	sa := auth.SuperAdmin{Name: name, Email: identifier}
	if err := sa.SetPassword(testPassword); err != nil {
		t.Fatalf("createSuperAdmin(): %v", err)
	}
	sa, err := idnRepo.CreateSuperAdmin(sa)
	if err != nil {
		t.Fatalf("createSuperAdmin(): %v", err)
	}
	return sa
}

// getToken issues a live bearer token for the given principal kind and id.
func getToken(t *testing.T, kind auth.Kind, identifier string) string {
	t.Helper()
	prin, err := authSvc.Authenticate(kind, identifier, testPassword)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	token, err := authSvc.IssueToken(prin, "test")
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
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
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
