package handler

import (
	"net/http"

	"scrapmarket-backend/bootstrap"
)

var appHandler http.Handler

func init() {
	var err error
	appHandler, err = bootstrap.Handler()
	if err != nil {
		panic("app create: " + err.Error())
	}
}

// Handler is the Vercel serverless entry point. All requests are rewritten here.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()
	appHandler.ServeHTTP(w, r)
}
