package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/eventcal/eventcal/internal/config"
	"github.com/eventcal/eventcal/internal/rest"
	"github.com/eventcal/eventcal/pkg/integration"
	"github.com/eventcal/eventcal/pkg/storage"
	"github.com/eventcal/eventcal/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

const stateKeyPrefix = "google-oauth-state:"

type googleAuthRedirect struct {
	RedirectUrl string `json:"redirectUrl"`
}

// authState is what the login stores under the OAuth state nonce until Google calls back.
type authState struct {
	UserUid       string `json:"userUid"`
	IntegrationId string `json:"integrationId"`
	FinalURL      string `json:"finalUrl"`
}

type UserFinder interface {
	GetUserByUid(ctx context.Context, uid string) (user.User, error)
}

type GoogleAuth struct {
	kv           storage.KeyValue
	users        UserFinder
	integrations integration.Service
	oauthConfig  *oauth2.Config
}

func NewGoogleAuth(kv storage.KeyValue, users UserFinder, integrations integration.Service, cfg config.Application) *GoogleAuth {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + "/api/integrations/google/auth/callback",
		Scopes:       []string{calendar.CalendarReadonlyScope},
	}

	return &GoogleAuth{kv: kv, users: users, integrations: integrations, oauthConfig: oauthConfig}
}

// OAuthLogin godoc
// @Summary Start the Google Calendar authorization
// @Description Connects the google-calendar integration if needed and returns the Google consent URL
// @Tags Integration
// @Produce json
// @Param finalUrl query string false "Where to send the browser after the callback"
// @Success 200 {object} googleAuthRedirect
// @Router /api/integrations/google/auth/login [get]
// @Security XUserId
func (g *GoogleAuth) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	currentUser, err := user.CurrentUser(r.Context())
	if err != nil {
		http.Error(w, "unable to retrieve current user", http.StatusForbidden)
		return
	}

	connected, ok, err := g.integrations.GetByType(r.Context(), integration.TypeGoogleCalendar)
	if err == nil && !ok {
		connected, err = g.integrations.Connect(r.Context(), integration.TypeGoogleCalendar)
	}
	if err != nil {
		log.Errorf("failed to connect Google integration for user %s: %v", currentUser.Uid, err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", "")
		return
	}

	finalUrl := r.URL.Query().Get("finalUrl")
	if finalUrl == "" {
		finalUrl = "/"
	}
	stateNonce := uuid.New().String()
	state, err := json.Marshal(authState{UserUid: currentUser.Uid, IntegrationId: connected.Id, FinalURL: finalUrl})
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", "")
		return
	}
	if err := g.kv.Save(r.Context(), stateKeyPrefix+stateNonce, state); err != nil {
		log.Errorf("failed to store Google auth nonce for user %s: %v", currentUser.Uid, err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", "")
		return
	}

	log.Tracef("Redirecting to Google auth URL with nonce: %s", stateNonce)
	u := g.oauthConfig.AuthCodeURL(stateNonce, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	rest.WriteJSON(w, http.StatusOK, googleAuthRedirect{RedirectUrl: u})
}

// OAuthCallback godoc
// @Summary Google OAuth callback
// @Description Stores the refresh token on the google-calendar integration and redirects to the final URL
// @Tags Integration
// @Param code query string true "Authorization code"
// @Param state query string true "State nonce"
// @Success 302 "Found"
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/integrations/google/auth/callback [get]
func (g *GoogleAuth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("code")
	nonce := r.FormValue("state")

	state, err := g.consumeState(r.Context(), nonce)
	if err != nil {
		log.Warnf("rejecting Google callback: %v", err)
		rest.WriteError(w, http.StatusBadRequest, "Invalid authentication state", "")
		return
	}

	token, err := g.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		log.Errorf("unable to exchange code for token: %v", err)
		http.Redirect(w, r, withSuccess(state.FinalURL, false), http.StatusFound)
		return
	}

	if err := g.storeRefreshToken(r.Context(), state, token.RefreshToken); err != nil {
		log.Errorf("unable to store Google refresh token: %v", err)
		http.Redirect(w, r, withSuccess(state.FinalURL, false), http.StatusFound)
		return
	}
	log.Debugf("Stored Google refresh token for integration %s", state.IntegrationId)
	http.Redirect(w, r, withSuccess(state.FinalURL, true), http.StatusFound)
}

func (g *GoogleAuth) consumeState(ctx context.Context, nonce string) (authState, error) {
	if nonce == "" {
		return authState{}, errors.New("missing state")
	}
	data, err := g.kv.Load(ctx, stateKeyPrefix+nonce)
	if err != nil {
		return authState{}, fmt.Errorf("unknown state %s: %w", nonce, err)
	}
	if err := g.kv.Delete(ctx, stateKeyPrefix+nonce); err != nil {
		log.Warnf("failed to delete Google auth nonce %s: %v", nonce, err)
	}
	var state authState
	if err := json.Unmarshal(data, &state); err != nil {
		return authState{}, fmt.Errorf("corrupt state %s: %w", nonce, err)
	}
	return state, nil
}

func (g *GoogleAuth) storeRefreshToken(ctx context.Context, state authState, refreshToken string) error {
	if refreshToken == "" {
		return errors.New("google returned no refresh token")
	}
	owner, err := g.users.GetUserByUid(ctx, state.UserUid)
	if err != nil {
		return fmt.Errorf("failed to load user %s: %w", state.UserUid, err)
	}
	_, err = g.integrations.Configure(user.WithUser(ctx, owner), state.IntegrationId, integration.Credentials{RefreshToken: refreshToken})
	return err
}

func withSuccess(finalUrl string, success bool) string {
	u, err := url.Parse(finalUrl)
	if err != nil {
		return "/"
	}
	q := u.Query()
	q.Set("success", fmt.Sprintf("%t", success))
	u.RawQuery = q.Encode()
	return u.String()
}
