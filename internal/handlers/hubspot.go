package handlers

import (
	"net/http"

	"hubspot-connector/internal/oauth2"
)

// popupCloser is served once the callback completes so the browser popup
// that ran the consent screen closes itself.
const popupCloser = `<html><script>window.close();</script></html>`

// identityForm names the user and organization a flow belongs to. Both values
// become segments of colon separated cache keys.
type identityForm struct {
	UserID string `form:"user_id" validate:"required,max=256,key_segment"`
	OrgID  string `form:"org_id" validate:"required,max=256,key_segment"`
}

type loadForm struct {
	Credentials string `form:"credentials" validate:"required,json"`
}

func (h *Handlers) identity(r *http.Request) (identityForm, error) {
	form := identityForm{UserID: r.FormValue("user_id"), OrgID: r.FormValue("org_id")}
	return form, h.validate.Struct(form)
}

// AuthorizeHubSpot handles POST /integrations/hubspot/authorize.
// Form fields user_id and org_id; responds with the authorization URL as a JSON string.
// @Summary Start a HubSpot authorization
// @Description Stores a pending state for the user and returns the HubSpot consent URL
// @Tags hubspot
// @Accept x-www-form-urlencoded
// @Produce json
// @Param user_id formData string true "User ID"
// @Param org_id formData string true "Organization ID"
// @Success 200 {string} string "Authorization URL"
// @Failure 400 {object} errorResponse "Invalid identity"
// @Failure 429 {object} errorResponse "Rate limit exceeded"
// @Failure 503 {object} errorResponse "Cache unavailable"
// @Router /integrations/hubspot/authorize [post]
func (h *Handlers) AuthorizeHubSpot(w http.ResponseWriter, r *http.Request) {
	id, err := h.identity(r)
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	authURL, err := h.flow.Authorize(r.Context(), id.UserID, id.OrgID)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, authURL)
}

// HubSpotCallback handles GET /integrations/hubspot/oauth2callback, the
// redirect target registered with HubSpot.
// @Summary HubSpot OAuth redirect target
// @Description Verifies the state, exchanges the code and stores the credentials, then closes the popup
// @Tags hubspot
// @Produce html
// @Param code query string false "Authorization code"
// @Param state query string false "State issued by authorize"
// @Param error query string false "Error reported by HubSpot"
// @Param error_description query string false "Error description reported by HubSpot"
// @Success 200 {string} string "Page that closes the popup"
// @Failure 400 {object} errorResponse "State mismatch or provider error"
// @Failure 503 {object} errorResponse "HubSpot or cache unavailable"
// @Router /integrations/hubspot/oauth2callback [get]
func (h *Handlers) HubSpotCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	err := h.flow.Callback(r.Context(), oauth2.CallbackParams{
		Code:             query.Get("code"),
		State:            query.Get("state"),
		Error:            query.Get("error"),
		ErrorDescription: query.Get("error_description"),
	})
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(popupCloser))
}

// HubSpotCredentials handles POST /integrations/hubspot/credentials. The
// credentials can be read once per completed flow.
// @Summary Collect stored credentials
// @Description Returns and deletes the token response saved by the callback
// @Tags hubspot
// @Accept x-www-form-urlencoded
// @Produce json
// @Param user_id formData string true "User ID"
// @Param org_id formData string true "Organization ID"
// @Success 200 {object} map[string]interface{} "HubSpot token response"
// @Failure 400 {object} errorResponse "No credentials found"
// @Failure 503 {object} errorResponse "Cache unavailable"
// @Router /integrations/hubspot/credentials [post]
func (h *Handlers) HubSpotCredentials(w http.ResponseWriter, r *http.Request) {
	id, err := h.identity(r)
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	creds, err := h.flow.Credentials(r.Context(), id.UserID, id.OrgID)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, creds)
}

// LoadHubSpotItems handles POST /integrations/hubspot/load with the
// credential blob in the credentials form field.
// @Summary Load contacts and companies
// @Description Lists the account's contacts followed by its companies
// @Tags hubspot
// @Accept x-www-form-urlencoded
// @Produce json
// @Param credentials formData string true "Credential JSON returned by the credentials endpoint"
// @Success 200 {array} models.Item
// @Failure 400 {object} errorResponse "Invalid credentials"
// @Failure 503 {object} errorResponse "HubSpot unavailable"
// @Router /integrations/hubspot/load [post]
func (h *Handlers) LoadHubSpotItems(w http.ResponseWriter, r *http.Request) {
	form := loadForm{Credentials: r.FormValue("credentials")}
	if err := h.validate.Struct(form); err != nil {
		h.sendError(w, r, err)
		return
	}

	items, err := h.items.Items(r.Context(), form.Credentials)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, items)
}
