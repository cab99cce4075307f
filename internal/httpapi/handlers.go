package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/whiskies/internal/service/catalog"
)

const contentTypeJSON = "application/json; charset=utf-8"

// catalogHandlers только извлекает id и тело и отдаёт результат Dispatcher'а.
type catalogHandlers struct {
	dispatcher *catalog.Dispatcher
	logger     *log.Entry
}

func (h *catalogHandlers) list(w http.ResponseWriter, r *http.Request) {
	h.render(w, h.dispatcher.List(r.Context()))
}

func (h *catalogHandlers) create(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	h.render(w, h.dispatcher.Create(r.Context(), body))
}

func (h *catalogHandlers) get(w http.ResponseWriter, r *http.Request) {
	h.render(w, h.dispatcher.Get(r.Context(), chi.URLParam(r, "id")))
}

func (h *catalogHandlers) update(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	h.render(w, h.dispatcher.Update(r.Context(), chi.URLParam(r, "id"), body))
}

func (h *catalogHandlers) delete(w http.ResponseWriter, r *http.Request) {
	h.render(w, h.dispatcher.Delete(r.Context(), chi.URLParam(r, "id")))
}

func (h *catalogHandlers) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.render(w, catalog.Result{
				Status: http.StatusRequestEntityTooLarge,
				Body:   catalog.ErrorBody{Code: catalog.CodeInvalidArgument, Message: "request body is too large"},
			})
			return nil, false
		}
		h.render(w, catalog.Result{
			Status: http.StatusBadRequest,
			Body:   catalog.ErrorBody{Code: catalog.CodeInvalidArgument, Message: "failed to read request body"},
		})
		return nil, false
	}
	return body, true
}

func (h *catalogHandlers) render(w http.ResponseWriter, res catalog.Result) {
	if res.Body == nil {
		w.WriteHeader(res.Status)
		return
	}

	payload, err := json.Marshal(res.Body)
	if err != nil {
		h.logger.WithError(err).Error("failed to encode response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(res.Status)
	_, _ = w.Write(payload)
}
