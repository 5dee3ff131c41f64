package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopcore/pkg/database"
	"shopcore/pkg/model"
	"shopcore/pkg/service"
)

type placeOrderReq struct {
	Lines []model.OrderLine `json:"lines"`
}

type orderFailureResp struct {
	Error     string `json:"error"`
	ItemID    int    `json:"item_id,omitempty"`
	Requested int    `json:"requested,omitempty"`
	Available int    `json:"available,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func Orders(svc service.Order) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			placeOrder(svc, w, r)
		case http.MethodGet:
			listOrders(svc, w, r)
		default:
			http.Error(w, "only GET and POST methods allowed", http.StatusMethodNotAllowed)
		}
	}
}

func placeOrder(svc service.Order, w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, orderFailureResp{Error: "invalid request body: " + err.Error()})
		return
	}

	orders, err := svc.PlaceOrder(r.Context(), id.UserID, req.Lines)
	if err != nil {
		writeOrderFailure(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, orders)
}

// writeOrderFailure maps coordinator failures onto statuses. Whatever the
// status, by this point the request has left no trace: every reservation it
// made has been released and no order records exist.
func writeOrderFailure(w http.ResponseWriter, err error) {
	var (
		validation   *model.ValidationError
		notFound     *model.NotFoundError
		insufficient *model.InsufficientStockError
		retryable    *model.RetryableError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, orderFailureResp{Error: validation.Error()})

	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, orderFailureResp{Error: notFound.Error(), ItemID: notFound.ItemID})

	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusConflict, orderFailureResp{
			Error:     insufficient.Error(),
			ItemID:    insufficient.ItemID,
			Requested: insufficient.Requested,
			Available: insufficient.Available,
		})

	case errors.Is(err, service.ErrLimitExceeded):
		writeJSON(w, http.StatusTooManyRequests, orderFailureResp{Error: err.Error()})

	case errors.As(err, &retryable):
		writeJSON(w, http.StatusServiceUnavailable, orderFailureResp{Error: retryable.Error(), Retryable: true})

	default:
		writeJSON(w, http.StatusInternalServerError, orderFailureResp{Error: err.Error()})
	}
}

func listOrders(svc service.Order, w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	pageNum, pageSize, err := parsePagination(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f := database.OrderFilter{PageNum: pageNum, PageSize: pageSize}
	if !id.Role.Privileged() {
		f.OrderedBy = &id.UserID
	}

	var resp ListPageResp[model.Order]

	resp.Page, resp.Total, err = svc.ListPage(r.Context(), f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
