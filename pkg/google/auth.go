package google

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/daypanel/daypanel/internal/config"
	"github.com/daypanel/daypanel/internal/rest"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

type googleAuthRedirect struct {
	RedirectUrl string `json:"redirectUrl"`
}

type authStatus struct {
	Authenticated bool `json:"authenticated"`
}

// Auth owns the OAuth flow and the stored token of the panel's single user.
// Registered change listeners are notified after every login and logout so
// the poll scheduler can start or stop with the session.
type Auth struct {
	db          *sql.DB
	oauthConfig *oauth2.Config

	mu        sync.Mutex
	listeners []func(authenticated bool)
}

func NewAuth(db *sql.DB, cfg config.Application) *Auth {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + "/api/auth/google/callback",
		Scopes:       []string{calendar.CalendarEventsScope, calendar.CalendarReadonlyScope},
	}

	return &Auth{db: db, oauthConfig: oauthConfig}
}

// OnChange registers a listener called after login and logout.
func (g *Auth) OnChange(fn func(authenticated bool)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

func (g *Auth) notify(authenticated bool) {
	g.mu.Lock()
	listeners := make([]func(bool), len(g.listeners))
	copy(listeners, g.listeners)
	g.mu.Unlock()
	for _, fn := range listeners {
		fn(authenticated)
	}
}

func (g *Auth) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	_, err := g.db.Exec("DELETE FROM google_auth")
	if err != nil {
		log.Errorf("failed to delete old Google auth row: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Failed to handle Google authentication",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	stateNonce := uuid.New().String()
	finalUrl := r.URL.Query().Get("finalUrl")

	// the nonce ties the callback to this login attempt
	_, err = g.db.Exec("INSERT INTO google_auth (nonce) VALUES (?)", stateNonce)
	if err != nil {
		log.Errorf("failed to store Google auth nonce: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Failed to handle Google authentication",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	log.Tracef("Redirecting to Google auth URL with nonce: %s", stateNonce)
	u := g.oauthConfig.AuthCodeURL(finalUrl+"|"+stateNonce, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	w.WriteHeader(http.StatusOK)
	encodeErr := json.NewEncoder(w).Encode(googleAuthRedirect{
		RedirectUrl: u,
	})
	if encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}

func (g *Auth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	code := r.FormValue("code")
	state := r.FormValue("state")

	parts := strings.SplitN(state, "|", 2)
	if len(parts) != 2 {
		log.Error("malformed OAuth state: ", state)
		http.Error(w, "malformed OAuth state", http.StatusBadRequest)
		return
	}
	finalUrl := parts[0]
	nonce := parts[1]

	token, err := g.oauthConfig.Exchange(context.Background(), code)
	if err != nil {
		err := fmt.Errorf("unable to exchange code for token: %v", err)
		log.Error(err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}

	result, err := g.db.Exec("UPDATE google_auth SET access_token = ?, refresh_token = ?, expiry = ? WHERE nonce = ?",
		token.AccessToken, token.RefreshToken, token.Expiry.Unix(), nonce)
	if err != nil {
		err := fmt.Errorf("unable to store Google auth token for nonce: %v", err)
		log.Error(err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		log.Error("no pending login attempt for nonce: ", nonce)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}
	log.Debug("Successfully stored Google auth token for nonce: ", nonce)
	g.notify(true)
	http.Redirect(w, r, finalUrl+"?success=true", http.StatusFound)
}

func (g *Auth) OAuthLogout(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, err := g.db.Exec("DELETE FROM google_auth")
	if err != nil {
		log.Errorf("failed to delete Google auth row: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Failed to handle Google authentication",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}
	g.notify(false)
	w.WriteHeader(http.StatusNoContent)
}

func (g *Auth) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	token, err := g.getToken(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Failed to read authentication state"})
		return
	}
	_ = json.NewEncoder(w).Encode(authStatus{Authenticated: token != nil})
}

// Authenticated reports whether a token is stored. The token may still be
// rejected by Google, which surfaces as a fetch error later.
func (g *Auth) Authenticated(ctx context.Context) bool {
	token, err := g.getToken(ctx)
	return err == nil && token != nil
}

func (g *Auth) getToken(ctx context.Context) (*oauth2.Token, error) {
	var token oauth2.Token
	var accessToken, refreshToken sql.NullString
	var expiryTimestamp sql.NullInt64
	err := g.db.QueryRowContext(ctx, "SELECT access_token, refresh_token, expiry FROM google_auth").
		Scan(&accessToken, &refreshToken, &expiryTimestamp)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google auth token: %v", err)
	}
	if !accessToken.Valid {
		// login started but the callback never completed
		return nil, nil
	}

	token.AccessToken = accessToken.String
	token.RefreshToken = refreshToken.String
	token.Expiry = time.Unix(expiryTimestamp.Int64, 0)
	return &token, nil
}

func (g *Auth) client(ctx context.Context) (*http.Client, error) {
	token, err := g.getToken(ctx)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	if token == nil {
		return nil, nil
	}
	return g.oauthConfig.Client(context.Background(), token), nil
}
