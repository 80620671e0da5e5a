package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

func requestLogger(req *http.Request) *logrus.Entry {
	return log.WithField("request_id", RequestIDFrom(req.Context()))
}

func logRequest(req *http.Request) {
	requestLogger(req).Infof("%s -- %s -- %s", req.RemoteAddr, req.Method, req.URL.Path)
}

func logAndReturnError(w http.ResponseWriter, req *http.Request, httpResponseStr string, code int, consoleStr ...string) {
	// consoleStr is optional.
	if len(consoleStr) > 0 {
		requestLogger(req).Errorln(consoleStr[0])
	} else {
		requestLogger(req).Errorln(httpResponseStr)
	}
	http.Error(w, httpResponseStr, code)
}

func writeJSON(w http.ResponseWriter, req *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		requestLogger(req).Warnf("Failed to write response: %v", err)
	}
}
