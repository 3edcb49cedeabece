package handlerews

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/openews/report-server/internal/ingest"
	"github.com/openews/report-server/internal/keystore"
)

// enqueueHandler serves one url-encoded report channel.
func (he *HandlerEws) enqueueHandler(n ingest.Normalizer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			he.logger.Error("failed to read report body", "channel", n.Channel(), "error", err.Error())
			http.Error(w, "failed to read request body", http.StatusInternalServerError)
			return
		} // .if

		if _, err := he.Gateway.Submit(r.Context(), n, string(body)); err != nil {
			http.Error(w, err.Error(), submitStatusCode(err))
			return
		}

		w.WriteHeader(http.StatusOK)
	})
} // .enqueueHandler

// enqueueMtnHandler serves the MTN json channel, which expects a synchronous
// delivery receipt on both the success and the failure path.
func (he *HandlerEws) enqueueMtnHandler() http.Handler {
	n := ingest.NewMtnNormalizer()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			he.logger.Error("failed to read mtn report body", "error", err.Error())
			he.writeMtnAck(w, http.StatusInternalServerError, ingest.MtnAck{Status: ingest.MtnStatusError})
			return
		} // .if

		evt, err := he.Gateway.Submit(r.Context(), n, string(body))
		if err != nil {
			he.writeMtnAck(w, submitStatusCode(err), ingest.MtnAck{Status: ingest.MtnStatusError})
			return
		}

		he.writeMtnAck(w, http.StatusOK, ingest.MtnAck{
			Status:        ingest.MtnStatusProcessed,
			TransactionId: &evt.TransactionId,
		})
	})
} // .enqueueMtnHandler

func (he *HandlerEws) writeMtnAck(w http.ResponseWriter, code int, ack ingest.MtnAck) {
	jsonResp, err := json.Marshal(ack)
	if err != nil {
		errMsg := "error marshal json for mtn ack response"
		he.logger.Error(errMsg, "error", err.Error())
		http.Error(w, errMsg, http.StatusInternalServerError)
		return
	} // .if

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResp)
}

func submitStatusCode(err error) int {
	switch {
	case errors.Is(err, ingest.ErrEmptyBody), errors.Is(err, ingest.ErrMalformedPayload):
		return http.StatusBadRequest
	case errors.Is(err, ingest.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, keystore.ErrPathNotConfigured), errors.Is(err, keystore.ErrStoreRead):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
