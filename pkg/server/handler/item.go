package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"shopcore/pkg/database"
	"shopcore/pkg/model"
	"shopcore/pkg/service"
)

func Items(svc service.Item) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listItems(svc, w, r)
		case http.MethodPost:
			createItems(svc, w, r)
		default:
			http.Error(w, "only GET and POST methods allowed", http.StatusMethodNotAllowed)
		}
	}
}

func listItems(svc service.Item, w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	pageNum, pageSize, err := parsePagination(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f := service.ListFilter{
		Query:    r.URL.Query().Get("q"),
		PageNum:  pageNum,
		PageSize: pageSize,
	}

	var resp ListPageResp[model.Item]

	resp.Page, resp.Total, err = svc.ListPage(r.Context(), id.Role, f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func createItems(svc service.Item, w http.ResponseWriter, r *http.Request) {
	if _, ok := adminIdentity(w, r); !ok {
		return
	}

	var items []model.Item
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	added, err := svc.Create(r.Context(), items...)
	if err != nil {
		writeItemError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, added)
}

func Item(svc service.Item) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := strconv.Atoi(r.URL.Query().Get("id"))
		if err != nil {
			http.Error(w, fmt.Sprintf("can't parse id: %v", err), http.StatusBadRequest)
			return
		}

		switch r.Method {
		case http.MethodGet:
			getItem(svc, w, r, itemID)
		case http.MethodPut:
			updateItem(svc, w, r, itemID)
		case http.MethodDelete:
			deleteItem(svc, w, r, itemID)
		default:
			http.Error(w, "only GET, PUT and DELETE methods allowed", http.StatusMethodNotAllowed)
		}
	}
}

func getItem(svc service.Item, w http.ResponseWriter, r *http.Request, itemID int) {
	item, err := svc.Get(r.Context(), itemID)
	if err != nil {
		writeItemError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func updateItem(svc service.Item, w http.ResponseWriter, r *http.Request, itemID int) {
	if _, ok := adminIdentity(w, r); !ok {
		return
	}

	var item model.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	item.ID = itemID

	if err := svc.Update(r.Context(), item); err != nil {
		writeItemError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func deleteItem(svc service.Item, w http.ResponseWriter, r *http.Request, itemID int) {
	if _, ok := adminIdentity(w, r); !ok {
		return
	}

	if err := svc.Delete(r.Context(), itemID); err != nil {
		writeItemError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type restockReq struct {
	ItemID int `json:"item_id"`
	Delta  int `json:"delta"`
}

func ItemRestock(svc service.Item) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST method allowed", http.StatusMethodNotAllowed)
			return
		}

		if _, ok := adminIdentity(w, r); !ok {
			return
		}

		var req restockReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
			return
		}

		if err := svc.Restock(r.Context(), req.ItemID, req.Delta); err != nil {
			writeItemError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func writeItemError(w http.ResponseWriter, err error) {
	var (
		validation   *model.ValidationError
		notFound     *model.NotFoundError
		insufficient *model.InsufficientStockError
	)

	switch {
	case errors.As(err, &validation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &notFound), errors.Is(err, database.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &insufficient):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
