package handler

import (
	"errors"
	"net/http"

	"github.com/helpdock/helpdock/internal/api/response"
	"github.com/helpdock/helpdock/internal/domain"
)

// storeError maps store error kinds onto protocol responses. The store's job
// ends at classifying the error; this is the calling layer's half of that
// contract.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrUnsupported):
		response.NotImplemented(w, err.Error())
	default:
		response.InternalError(w, "internal error")
	}
}
