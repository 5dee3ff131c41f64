package server

import (
	"net/http"
	"time"

	"shopcore/pkg/server/handler"
	"shopcore/pkg/server/middleware"
	"shopcore/pkg/service"
)

const (
	readTimeout  = 5 * time.Second
	writeTimeout = 5 * time.Second
)

func New(addr string, itemSvc service.Item, orderSvc service.Order, userSvc service.User) (*http.Server, error) {
	mux := http.NewServeMux()

	mux.Handle("/items", handler.Items(itemSvc))
	mux.Handle("/item", handler.Item(itemSvc))
	mux.Handle("/item/restock", handler.ItemRestock(itemSvc))
	mux.Handle("/orders", handler.Orders(orderSvc))
	mux.Handle("/users", handler.UserRegister(userSvc))

	chain := middleware.Chain{
		middleware.Log,
		middleware.Recovery,
		middleware.ResolveIdentity,
	}

	return &http.Server{
		Addr:         addr,
		Handler:      chain.Then(mux),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}, nil
}
