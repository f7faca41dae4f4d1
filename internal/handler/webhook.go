package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/zeno-labs/museum-companion/internal/model"
	"github.com/zeno-labs/museum-companion/internal/repository"
	"github.com/zeno-labs/museum-companion/internal/webhook"
)

// defaultCredits is the balance granted to every newly provisioned
// owner account.
const defaultCredits = 1000

// WebhookHandler ingests identity-provider events.  User records in
// this service exist only as mirrors of what the provider pushes here.
type WebhookHandler struct {
	Verifier *webhook.Verifier
	Users    *repository.UserRepo
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(verifier *webhook.Verifier, users *repository.UserRepo) *WebhookHandler {
	if verifier == nil || users == nil {
		panic("nil dependency passed to NewWebhookHandler")
	}
	return &WebhookHandler{Verifier: verifier, Users: users}
}

// clerkEvent mirrors the provider's webhook envelope for the user
// lifecycle events this service consumes.
type clerkEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		ImageURL       string `json:"image_url"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
		PhoneNumbers []struct {
			PhoneNumber string `json:"phone_number"`
		} `json:"phone_numbers"`
	} `json:"data"`
}

// Receive handles POST /api/webhooks/clerk.  Deliveries are rejected
// unless the svix signature headers check out against the shared
// secret; verified user.created and user.updated events are upserted,
// anything else is acknowledged and ignored.
func (h *WebhookHandler) Receive(c echo.Context) error {
	req := c.Request()
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Unable to read request body")
	}

	err = h.Verifier.Verify(
		req.Header.Get(webhook.HeaderID),
		req.Header.Get(webhook.HeaderTimestamp),
		req.Header.Get(webhook.HeaderSignature),
		body,
	)
	if err != nil {
		log.Printf("webhook delivery rejected: %v", err)
		return fail(c, http.StatusBadRequest, "Invalid webhook signature")
	}

	var event clerkEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid webhook payload")
	}

	switch event.Type {
	case "user.created", "user.updated":
		if event.Data.ID == "" {
			return fail(c, http.StatusBadRequest, "Webhook payload missing user id")
		}
		user := &model.User{
			ClerkID: event.Data.ID,
			Role:    model.RoleOwner,
			Name:    strings.TrimSpace(event.Data.FirstName + " " + event.Data.LastName),
			Avatar:  event.Data.ImageURL,
			Credits: defaultCredits,
		}
		if len(event.Data.EmailAddresses) > 0 {
			user.Email = event.Data.EmailAddresses[0].EmailAddress
		}
		if len(event.Data.PhoneNumbers) > 0 {
			user.Phone = event.Data.PhoneNumbers[0].PhoneNumber
		}
		if _, err := h.Users.Upsert(c.Request().Context(), user); err != nil {
			return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
		}
		return respond(c, http.StatusOK, "User synced", echo.Map{"clerkId": user.ClerkID})
	default:
		// Unsubscribed event types are acknowledged so the provider
		// does not retry them forever.
		return respond(c, http.StatusOK, "Event ignored", nil)
	}
}
