package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harborcrest/pms/internal/apperr"
	"github.com/harborcrest/pms/internal/http/response"
)

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantBody   string
	}{
		{apperr.BadRequest("bad input"), http.StatusBadRequest, "bad input"},
		{apperr.Unauthorized("no token"), http.StatusUnauthorized, "no token"},
		{apperr.Forbidden("not allowed"), http.StatusForbidden, "not allowed"},
		{apperr.NotFound("missing"), http.StatusNotFound, "missing"},
		{apperr.Conflict("duplicate"), http.StatusConflict, "duplicate"},
		{apperr.Internal(errors.New("boom")), http.StatusInternalServerError, "internal server error"},
		{errors.New("raw"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		response.Error(rec, tc.err)

		if rec.Code != tc.wantStatus {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.wantStatus)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%v: bad body: %v", tc.err, err)
		}
		if body["error"] != tc.wantBody {
			t.Errorf("%v: body error = %q, want %q", tc.err, body["error"], tc.wantBody)
		}
	}
}

func TestJSONWritesContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	response.JSON(rec, http.StatusCreated, map[string]int{"id": 7})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}
