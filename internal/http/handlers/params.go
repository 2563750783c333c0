package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

func int64Param(r *http.Request, key string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	return v, err == nil && v > 0
}

func queryInt64(r *http.Request, key string) (int64, bool) {
	v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return v, err == nil && v > 0
}

func queryDate(r *http.Request, key string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", r.URL.Query().Get(key))
	return t, err == nil
}
