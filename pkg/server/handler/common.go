package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"shopcore/pkg/server/middleware"
	"shopcore/pkg/service"
)

type ListPageResp[T any] struct {
	Page  []T `json:"page"`
	Total int `json:"total"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("can't encode response: %v", err), http.StatusInternalServerError)
	}
}

func parsePagination(r *http.Request) (pageNum, pageSize int, err error) {
	pageNum, pageSize = service.DefaultPageNum, service.DefaultPageSize

	q := r.URL.Query()

	if pn := q.Get("page_num"); pn != "" {
		pageNum, err = strconv.Atoi(pn)
		if err != nil {
			return 0, 0, fmt.Errorf("can't parse page_num: %w", err)
		}
	}

	if ps := q.Get("page_size"); ps != "" {
		pageSize, err = strconv.Atoi(ps)
		if err != nil {
			return 0, 0, fmt.Errorf("can't parse page_size: %w", err)
		}
	}

	if pageNum < 1 || pageSize < 1 {
		return 0, 0, fmt.Errorf("page_num and page_size must be positive")
	}

	return pageNum, pageSize, nil
}

func identity(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
	}
	return id, ok
}

func adminIdentity(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	id, ok := identity(w, r)
	if !ok {
		return id, false
	}

	if !id.Role.Privileged() {
		http.Error(w, "admin role required", http.StatusForbidden)
		return id, false
	}

	return id, true
}
