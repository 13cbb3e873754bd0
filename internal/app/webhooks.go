package app

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/oneshowhq/oneshow/internal/domain"
)

// IdentityWebhookHandler keeps the local users table in sync with the
// external identity provider. The provider retries deliveries, so every event
// is handled idempotently.
func (app *Application) IdentityWebhookHandler(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(app.config.Identity.WebhookSecret)) != 1 {
		app.unauthorizedAccessResponse(w, r)
		return
	}

	var input IdentityWebhookRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	switch input.Type {
	case "user.created", "user.updated":
		user := &domain.User{
			ID:       input.Data.Id,
			Email:    input.Data.Email,
			Name:     input.Data.Name,
			ImageURL: input.Data.ImageUrl,
		}

		err = app.userRepo.Upsert(r.Context(), user)

	case "user.deleted":
		err = app.userRepo.Delete(r.Context(), input.Data.Id)

	default:
		app.badRequestResponse(w, r, fmt.Errorf("unsupported event type %q", input.Type))
		return
	}

	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := MessageResponse{
		Success: true,
		Message: "Event processed",
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
