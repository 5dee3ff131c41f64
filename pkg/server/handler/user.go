package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"shopcore/pkg/model"
	"shopcore/pkg/service"
)

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func UserRegister(svc service.User) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST method allowed", http.StatusMethodNotAllowed)
			return
		}

		var req registerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
			return
		}

		// self-registration always produces a regular user; admins are
		// provisioned out of band
		user, err := svc.Register(r.Context(), req.Name, req.Email, req.Password, model.RoleUser)
		if err != nil {
			var validation *model.ValidationError

			switch {
			case errors.As(err, &validation):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, model.ErrEmailTaken):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, user)
	}
}
