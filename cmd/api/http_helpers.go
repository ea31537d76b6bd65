package main

import (
	"log/slog"
	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/lib/validator"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Http struct {
	log *slog.Logger
	cfg *config.Config
}

// envelop keys are written next to success and message at the top level.
type envelop map[string]any

const defaultErrMsg = "Sorry! Can't process your request. Please try again later."

func (h *Http) setupLogPerReq(r *http.Request) *slog.Logger {
	return h.log.With(
		"request_id",
		middleware.GetReqID(r.Context()),
		"method",
		r.Method,
		"path",
		r.URL.Path,
	)
}

func (h *Http) NewResponse(data envelop, msg string, status int) envelop {
	success := status >= 200 && status < 400
	if msg == "" && !success {
		msg = http.StatusText(status)
	}
	body := make(envelop, len(data)+2)
	for k, v := range data {
		body[k] = v
	}
	body["success"] = success
	if msg != "" {
		body["message"] = msg
	}
	return body
}

func (h *Http) Response(w http.ResponseWriter, r *http.Request, data envelop, msg string, status int) {
	render.Status(r, status)
	render.JSON(w, r, h.NewResponse(data, msg, status))
}

func (h *Http) Ok(w http.ResponseWriter, r *http.Request, data envelop, msg string) {
	h.Response(w, r, data, msg, http.StatusOK)
}

func (h *Http) Created(w http.ResponseWriter, r *http.Request, data envelop, msg string) {
	h.Response(w, r, data, msg, http.StatusCreated)
}

func (h *Http) BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	h.Response(w, r, nil, msg, http.StatusBadRequest)
}

// ValidationFailed answers 400 with the first violation as the message and
// every violation under errors.
func (h *Http) ValidationFailed(w http.ResponseWriter, r *http.Request, violations validator.Violations) {
	msg := ""
	if len(violations) > 0 {
		msg = violations[0].Message
	}
	h.Response(w, r, envelop{"errors": violations}, msg, http.StatusBadRequest)
}

func (h *Http) Unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	h.Response(w, r, nil, msg, http.StatusUnauthorized)
}

func (h *Http) Forbidden(w http.ResponseWriter, r *http.Request, msg string) {
	h.Response(w, r, nil, msg, http.StatusForbidden)
}

func (h *Http) NotFound(w http.ResponseWriter, r *http.Request, msg string) {
	h.Response(w, r, nil, msg, http.StatusNotFound)
}

func (h *Http) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.Response(w, r, nil, "", http.StatusMethodNotAllowed)
}

func (h *Http) Conflict(w http.ResponseWriter, r *http.Request, msg string) {
	h.Response(w, r, nil, msg, http.StatusConflict)
}

func (h *Http) BadGateway(w http.ResponseWriter, r *http.Request, msg string) {
	h.Response(w, r, nil, msg, http.StatusBadGateway)
}

func (h *Http) ServiceUnavailable(w http.ResponseWriter, r *http.Request, msg string) {
	h.Response(w, r, nil, msg, http.StatusServiceUnavailable)
}

// ServerError logs err and answers 500 without exposing it.
func (h *Http) ServerError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log := h.setupLogPerReq(r)
	if err != nil {
		if h.cfg.Debug {
			log.Error(err.Error(), "stack", string(debug.Stack()))
		} else {
			log.Error(err.Error())
		}
	}
	if msg == "" {
		msg = defaultErrMsg
	}
	h.Response(w, r, nil, msg, http.StatusInternalServerError)
}
