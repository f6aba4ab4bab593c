package web

// This file describes the web server for this project.
//
// Note that modules called by this server should provide self-describing
// errors since these are inspected and translated to http statuses by
//
//	web.respondError(w, r, err)
//
// This web server also sets out each endpoint handler as a HandlerFunc.
// This allows for the router to provide arguments to the handler, as
// discussed in Mat Ryer's post at
//
//	https://grafana.com/blog/how-i-write-http-services-in-go-after-13-years/
//
// Helper functions, such as `respondError` and `clientError`, are in
// respond.go.

import (
	"context"
	"net/http"
	"os"
	"time"

	"invoicebox/config"
	"invoicebox/db"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// WebApp is the configuration object for the web server.
type WebApp struct {
	logger *log.Logger
	cfg    *config.Config
	db     *db.DB
	server *http.Server
}

// New initialises a WebApp. An error type is returned for future use.
func New(logger *log.Logger, cfg *config.Config, d *db.DB) (*WebApp, error) {

	server := &http.Server{
		Addr:              cfg.Web.ListenAddress,
		ReadHeaderTimeout: time.Duration(30 * time.Second),
		WriteTimeout:      time.Duration(30 * time.Second),
		MaxHeaderBytes:    1 << 19, // 100k ish
	}

	webApp := &WebApp{
		logger: logger,
		cfg:    cfg,
		db:     d,
		server: server,
	}
	return webApp, nil
}

// StartServer starts a WebApp.
func (web *WebApp) StartServer() error {
	web.server.Handler = web.routes()
	web.logger.Info("starting server", "address", web.cfg.Web.ListenAddress)
	err := web.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server.
func (web *WebApp) Shutdown(ctx context.Context) error {
	return web.server.Shutdown(ctx)
}

// routes connects all of the endpoints and provides middleware.
func (web *WebApp) routes() http.Handler {

	r := mux.NewRouter()

	// Clients.
	r.Handle("/clients", web.handleClientsList()).Methods("GET")
	r.Handle("/clients", web.handleClientCreate()).Methods("POST")
	r.Handle("/clients/{id:[0-9]+}", web.handleClientGet()).Methods("GET")
	r.Handle("/clients/{id:[0-9]+}", web.handleClientUpdate()).Methods("PUT")
	r.Handle("/clients/{id:[0-9]+}", web.handleClientDelete()).Methods("DELETE")

	// Documents.
	r.Handle("/documents", web.handleDocumentsList()).Methods("GET")
	r.Handle("/documents", web.handleDocumentCreate()).Methods("POST")
	r.Handle("/documents/{id:[0-9]+}", web.handleDocumentGet()).Methods("GET")
	r.Handle("/documents/{id:[0-9]+}", web.handleDocumentDelete()).Methods("DELETE")
	r.Handle(
		"/documents/{id:[0-9]+}/convert-to-invoice",
		web.handleConvertToInvoice(),
	).Methods("POST")

	// User profile.
	r.Handle("/profile", web.handleProfileGet()).Methods("GET")
	r.Handle("/profile", web.handleProfileUpdate()).Methods("PUT")
	r.Handle("/profile/address", web.handleProfileAddress()).Methods("GET")

	// Document counters.
	r.Handle("/counters", web.handleCountersGet()).Methods("GET")
	r.Handle("/counters", web.handleCounterSet()).Methods("PUT")

	logging := handlers.LoggingHandler(os.Stdout, r)
	return logging
}
