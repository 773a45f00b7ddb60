// Package api exposes the daemon's read-only status surface over HTTP. It
// serves the same report as the CLI status mode so operators can scrape
// coverage and queue health without shelling into the host.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// Register wires the status routes into the given router.
func Register(rootRouter *mux.Router, context *Context) {
	addContext := func(handler contextHandlerFunc) *contextHandler {
		return newContextHandler(context, handler)
	}

	rootRouter.Handle("/health", addContext(handleHealth)).Methods("GET")
	rootRouter.Handle("/api/status", addContext(handleStatus)).Methods("GET")
	rootRouter.Handle("/api/jobs", addContext(handleJobs)).Methods("GET")
}

func handleHealth(c *Context, w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func handleStatus(c *Context, w http.ResponseWriter, r *http.Request) {
	report, err := c.Reporter.Status(r.Context())
	if err != nil {
		c.Logger.WithError(err).Error("failed to assemble the status report")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	outputJSON(c, w, report)
}

func handleJobs(c *Context, w http.ResponseWriter, r *http.Request) {
	report, err := c.Reporter.Status(r.Context())
	if err != nil {
		c.Logger.WithError(err).Error("failed to assemble the job summary")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	outputJSON(c, w, report.Jobs)
}

func outputJSON(c *Context, w http.ResponseWriter, o interface{}) {
	encoder := json.NewEncoder(w)
	err := encoder.Encode(o)
	if err != nil {
		c.Logger.WithError(err).Error("failed to encode the response")
	}
}
