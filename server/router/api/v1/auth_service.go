package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hisr2024/MindVibe-sub009/server/auth"
	"github.com/hisr2024/MindVibe-sub009/store"
)

// userKeyContextKey is where the auth middleware stashes the verified
// pairing name for downstream handlers.
const userKeyContextKey = "mindvibe.userKey"

// PairDeviceRequest exchanges a pairing name and code for a token.
type PairDeviceRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// PairDeviceResponse carries the issued bearer token.
type PairDeviceResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
}

// PairDevice verifies the pairing code and issues an access token whose
// subject is the pairing name.
func (s *APIV1Service) PairDevice(c echo.Context) error {
	ctx := c.Request().Context()

	req := &PairDeviceRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := validateUserKey(req.Name, false); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}

	pairing, err := s.Store.GetPairing(ctx, &store.FindPairing{Name: &req.Name})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to look up pairing")
	}
	// Unknown name and wrong code produce the same answer so the
	// endpoint cannot be used to enumerate pairing names.
	if pairing == nil || !auth.VerifyPairingCode(req.Code, pairing.KeyHash) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid pairing credentials")
	}

	expiresAt := time.Now().Add(auth.AccessTokenDuration)
	token, err := auth.GenerateAccessToken(pairing.Name, expiresAt, []byte(s.Secret))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}

	if err := s.Store.UpdatePairingLastSeen(ctx, pairing.ID, time.Now().Unix()); err != nil {
		// Last-seen bookkeeping is advisory.
		c.Logger().Warnf("failed to update pairing last seen: %v", err)
	}

	return c.JSON(http.StatusOK, &PairDeviceResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt.Unix(),
	})
}

// requireAuth is the middleware guarding profile-scoped endpoints. It
// validates the bearer token and records the verified pairing name.
func (s *APIV1Service) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}

		name, err := auth.ParseAccessToken(tokenString, []byte(s.Secret))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		c.Set(userKeyContextKey, name)
		return next(c)
	}
}

// authenticatedUserKey returns the pairing name the middleware
// verified, or empty when the request is unauthenticated.
func authenticatedUserKey(c echo.Context) string {
	if v, ok := c.Get(userKeyContextKey).(string); ok {
		return v
	}
	return ""
}
