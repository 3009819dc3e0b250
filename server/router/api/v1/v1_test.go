package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hisr2024/MindVibe-sub009/ai/metrics"
	"github.com/hisr2024/MindVibe-sub009/internal/profile"
	"github.com/hisr2024/MindVibe-sub009/server/auth"
	"github.com/hisr2024/MindVibe-sub009/store"
	"github.com/hisr2024/MindVibe-sub009/store/db/sqlite"
)

func newTestService(t *testing.T) *APIV1Service {
	t.Helper()

	testProfile := &profile.Profile{
		Mode:      "dev",
		Driver:    "sqlite",
		DSN:       filepath.Join(t.TempDir(), "mindvibe_test.db"),
		JWTSecret: "test-secret",
	}

	driver, err := sqlite.NewDB(testProfile)
	require.NoError(t, err)
	testStore := store.New(driver, testProfile)
	require.NoError(t, testStore.Migrate(context.Background()))
	t.Cleanup(func() { _ = testStore.Close() })

	svc, err := NewAPIV1Service(testProfile.JWTSecret, testProfile, testStore, metrics.NewExporter(metrics.DefaultConfig()))
	require.NoError(t, err)
	return svc
}

func doJSON(t *testing.T, e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) *T {
	t.Helper()
	out := new(T)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	return out
}

func TestChatSessionFlow(t *testing.T) {
	svc := newTestService(t)
	e := echo.New()

	// Open a session bound to a user key.
	c, rec := doJSON(t, e, http.MethodPost, "/api/v1/chat/sessions", `{"userKey":"user-a"}`)
	require.NoError(t, svc.CreateChatSession(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[ChatSessionResponse](t, rec)
	require.NotEmpty(t, created.ID)

	// One anxious turn.
	c, rec = doJSON(t, e, http.MethodPost, "/", `{"message":"I am so anxious about my job, I keep overthinking everything"}`)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	require.NoError(t, svc.PostChatMessage(c))
	require.Equal(t, http.StatusOK, rec.Code)

	turn := decode[ChatMessageResponse](t, rec)
	assert.Equal(t, "anxious", turn.Mood)
	assert.Greater(t, turn.MoodIntensity, 0.0)
	assert.Equal(t, "connect", turn.Phase)
	assert.NotEmpty(t, turn.Response)
	assert.Nil(t, turn.WisdomUsed, "no wisdom in connect phase")
	assert.Equal(t, 1, turn.TurnCount)

	// Close the session; the merge must persist a profile.
	c, rec = doJSON(t, e, http.MethodPost, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	require.NoError(t, svc.EndChatSession(c))
	require.Equal(t, http.StatusOK, rec.Code)

	ended := decode[EndChatSessionResponse](t, rec)
	assert.True(t, ended.Persisted)
	assert.Equal(t, 1, ended.Turns)
	require.NotNil(t, ended.Profile)
	assert.Equal(t, 1, ended.Profile.SessionCount)
	assert.Contains(t, ended.Profile.Themes, "anxiety")

	// The session is gone after end.
	c, _ = doJSON(t, e, http.MethodPost, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	err := svc.EndChatSession(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestEndChatSessionWithZeroTurnsStillMerges(t *testing.T) {
	svc := newTestService(t)
	e := echo.New()

	conv := svc.Sessions.Create("user-b")

	c, rec := doJSON(t, e, http.MethodPost, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(conv.ID)
	require.NoError(t, svc.EndChatSession(c))

	ended := decode[EndChatSessionResponse](t, rec)
	assert.Equal(t, 1, ended.Profile.SessionCount)
	assert.Empty(t, ended.Profile.Themes)
	assert.True(t, ended.Persisted)
}

func TestAnonymousSessionIsNotPersisted(t *testing.T) {
	svc := newTestService(t)
	e := echo.New()

	conv := svc.Sessions.Create("")

	c, rec := doJSON(t, e, http.MethodPost, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(conv.ID)
	require.NoError(t, svc.EndChatSession(c))

	ended := decode[EndChatSessionResponse](t, rec)
	assert.False(t, ended.Persisted)
	assert.Equal(t, 1, ended.Profile.SessionCount)
}

func TestPostChatMessageCrisisShortCircuit(t *testing.T) {
	svc := newTestService(t)
	e := echo.New()
	conv := svc.Sessions.Create("")

	c, rec := doJSON(t, e, http.MethodPost, "/", `{"message":"sometimes I want to end my life"}`)
	c.SetParamNames("id")
	c.SetParamValues(conv.ID)
	require.NoError(t, svc.PostChatMessage(c))

	turn := decode[ChatMessageResponse](t, rec)
	assert.True(t, turn.Crisis)
	assert.Equal(t, "connect", turn.Phase)
	assert.Nil(t, turn.WisdomUsed)
	assert.NotEmpty(t, turn.Hotline)
	assert.Equal(t, 0, turn.TurnCount, "crisis turns do not advance the conversation")
}

func TestClassify(t *testing.T) {
	svc := newTestService(t)
	e := echo.New()

	t.Run("KeywordFreeMessageIsNeutral", func(t *testing.T) {
		c, rec := doJSON(t, e, http.MethodPost, "/api/v1/classify", `{"message":"the sky is blue"}`)
		require.NoError(t, svc.Classify(c))

		got := decode[ClassifyResponse](t, rec)
		assert.Equal(t, "neutral", got.Mood)
		assert.InDelta(t, 0.3, got.MoodIntensity, 1e-9)
		assert.Equal(t, "general", got.Topic)
		assert.Equal(t, "sharing", got.Intent)
		assert.False(t, got.Crisis)
	})

	t.Run("CrisisBypassesExtraction", func(t *testing.T) {
		c, rec := doJSON(t, e, http.MethodPost, "/api/v1/classify", `{"message":"I just want to hurt myself"}`)
		require.NoError(t, svc.Classify(c))

		got := decode[ClassifyResponse](t, rec)
		assert.True(t, got.Crisis)
		assert.NotEmpty(t, got.Message)
		assert.NotEmpty(t, got.Hotline)
	})

	t.Run("OversizedMessageRejected", func(t *testing.T) {
		big := strings.Repeat("a", maxMessageLength+1)
		c, _ := doJSON(t, e, http.MethodPost, "/api/v1/classify", `{"message":"`+big+`"}`)
		err := svc.Classify(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})
}

func TestGetSuggestion(t *testing.T) {
	svc := newTestService(t)
	e := echo.New()

	t.Run("ViyogaAlwaysSuggestsArdha", func(t *testing.T) {
		c, rec := doJSON(t, e, http.MethodPost, "/api/v1/suggestions", `{"tool":"viyoga","userText":"whatever text"}`)
		require.NoError(t, svc.GetSuggestion(c))

		got := decode[SuggestionResponse](t, rec)
		require.NotNil(t, got.Suggestion)
		assert.Equal(t, "ardha", string(got.Suggestion.TargetTool))
		assert.NotEmpty(t, got.Suggestion.Href)
	})

	t.Run("KiaanSingleThemeDoesNotTrigger", func(t *testing.T) {
		c, rec := doJSON(t, e, http.MethodPost, "/api/v1/suggestions", `{"tool":"kiaan","sessionSignals":{"themeCounts":{"anxiety":1}}}`)
		require.NoError(t, svc.GetSuggestion(c))

		got := decode[SuggestionResponse](t, rec)
		assert.Nil(t, got.Suggestion)
	})

	t.Run("KiaanRecurringThemeSuggestsJourney", func(t *testing.T) {
		c, rec := doJSON(t, e, http.MethodPost, "/api/v1/suggestions", `{"tool":"kiaan","sessionSignals":{"themeCounts":{"anxiety":2}}}`)
		require.NoError(t, svc.GetSuggestion(c))

		got := decode[SuggestionResponse](t, rec)
		require.NotNil(t, got.Suggestion)
		assert.Equal(t, "journey", string(got.Suggestion.TargetTool))
	})

	t.Run("MissingToolRejected", func(t *testing.T) {
		c, _ := doJSON(t, e, http.MethodPost, "/api/v1/suggestions", `{"userText":"hello"}`)
		err := svc.GetSuggestion(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})
}

func TestProfileEndpointsRequireMatchingToken(t *testing.T) {
	svc := newTestService(t)
	e := echo.New()

	token, err := auth.GenerateAccessToken("user-a", time.Now().Add(time.Hour), []byte(svc.Secret))
	require.NoError(t, err)

	authedContext := func(method, uid string) (echo.Context, *httptest.ResponseRecorder) {
		c, rec := doJSON(t, e, method, "/", "")
		c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		c.SetParamNames("uid")
		c.SetParamValues(uid)
		return c, rec
	}

	t.Run("MissingTokenRejected", func(t *testing.T) {
		c, _ := doJSON(t, e, http.MethodGet, "/", "")
		c.SetParamNames("uid")
		c.SetParamValues("user-a")
		err := svc.requireAuth(svc.GetProfile)(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("ForeignUIDForbidden", func(t *testing.T) {
		c, _ := authedContext(http.MethodGet, "user-b")
		err := svc.requireAuth(svc.GetProfile)(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	})

	t.Run("OwnProfileRoundTrip", func(t *testing.T) {
		// Persist a profile by running a session through the chat flow.
		conv := svc.Sessions.Create("user-a")
		conv.Respond("I am anxious about my exam and keep worrying")
		c, _ := doJSON(t, e, http.MethodPost, "/", "")
		c.SetParamNames("id")
		c.SetParamValues(conv.ID)
		require.NoError(t, svc.EndChatSession(c))

		c, rec := authedContext(http.MethodGet, "user-a")
		require.NoError(t, svc.requireAuth(svc.GetProfile)(c))
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[ProfileResponse](t, rec)
		assert.Equal(t, "user-a", got.UserKey)
		assert.Equal(t, 1, got.Profile.SessionCount)

		// Right to forget.
		c, rec = authedContext(http.MethodDelete, "user-a")
		require.NoError(t, svc.requireAuth(svc.DeleteProfile)(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		c, _ = authedContext(http.MethodGet, "user-a")
		err := svc.requireAuth(svc.GetProfile)(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusNotFound, httpErr.Code)
	})
}

func TestPairDevice(t *testing.T) {
	svc := newTestService(t)
	e := echo.New()
	ctx := context.Background()

	hash, err := auth.HashPairingCode("secret-code")
	require.NoError(t, err)
	_, err = svc.Store.CreatePairing(ctx, &store.CreatePairing{Name: "device-1", KeyHash: hash})
	require.NoError(t, err)

	t.Run("ValidCodeIssuesToken", func(t *testing.T) {
		c, rec := doJSON(t, e, http.MethodPost, "/api/v1/auth/pair", `{"name":"device-1","code":"secret-code"}`)
		require.NoError(t, svc.PairDevice(c))

		got := decode[PairDeviceResponse](t, rec)
		require.NotEmpty(t, got.AccessToken)

		name, err := auth.ParseAccessToken(got.AccessToken, []byte(svc.Secret))
		require.NoError(t, err)
		assert.Equal(t, "device-1", name)
	})

	t.Run("WrongCodeRejected", func(t *testing.T) {
		c, _ := doJSON(t, e, http.MethodPost, "/api/v1/auth/pair", `{"name":"device-1","code":"wrong"}`)
		err := svc.PairDevice(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("UnknownNameSameAnswerAsWrongCode", func(t *testing.T) {
		c, _ := doJSON(t, e, http.MethodPost, "/api/v1/auth/pair", `{"name":"no-such-device","code":"secret-code"}`)
		err := svc.PairDevice(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}

func TestAcceptSuggestionEvent(t *testing.T) {
	svc := newTestService(t)
	e := echo.New()
	ctx := context.Background()

	event, err := svc.Store.CreateSuggestionEvent(ctx, &store.SuggestionEvent{
		UserKey:    "user-a",
		SessionID:  "s1",
		SourceTool: "kiaan",
		TargetTool: "journey",
		ThemeCount: 2,
		CreatedTs:  time.Now().Unix(),
	})
	require.NoError(t, err)

	acceptContext := func(userKey, id string) (echo.Context, *httptest.ResponseRecorder) {
		token, err := auth.GenerateAccessToken(userKey, time.Now().Add(time.Hour), []byte(svc.Secret))
		require.NoError(t, err)
		c, rec := doJSON(t, e, http.MethodPost, "/", "")
		c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		c.SetParamNames("id")
		c.SetParamValues(id)
		return c, rec
	}

	t.Run("ForeignEventLooksMissing", func(t *testing.T) {
		c, _ := acceptContext("user-b", strconv.FormatInt(event.ID, 10))
		err := svc.requireAuth(svc.AcceptSuggestionEvent)(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusNotFound, httpErr.Code)
	})

	t.Run("MalformedIDRejected", func(t *testing.T) {
		c, _ := acceptContext("user-a", "not-a-number")
		err := svc.requireAuth(svc.AcceptSuggestionEvent)(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})

	t.Run("OwnerAccepts", func(t *testing.T) {
		c, rec := acceptContext("user-a", strconv.FormatInt(event.ID, 10))
		require.NoError(t, svc.requireAuth(svc.AcceptSuggestionEvent)(c))
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[SuggestionEventResponse](t, rec)
		assert.True(t, got.Accepted)
		assert.Equal(t, event.ID, got.ID)
	})
}

func TestGetDailyWisdom(t *testing.T) {
	svc := newTestService(t)
	e := echo.New()

	c, rec := doJSON(t, e, http.MethodGet, "/api/v1/wisdom/daily", "")
	require.NoError(t, svc.GetDailyWisdom(c))

	got := decode[DailyWisdomResponse](t, rec)
	assert.NotEmpty(t, got.Text)
	assert.NotEmpty(t, got.Principle)
	assert.Contains(t, got.HTML, "<p>")
}

func TestGetSystemOverview(t *testing.T) {
	svc := newTestService(t)
	e := echo.New()

	c, rec := doJSON(t, e, http.MethodGet, "/api/v1/system/metrics/overview", "")
	require.NoError(t, svc.GetSystemOverview(c))

	got := decode[SystemOverviewResponse](t, rec)
	assert.NotEmpty(t, got.TableVersions)
	assert.Contains(t, got.TableVersions, "moods")
	assert.Equal(t, 0, got.ActiveSessions)
	assert.Len(t, got.Suggestions, len(suggestionLegs))
}

func TestSystemOverviewAcceptanceRate(t *testing.T) {
	svc := newTestService(t)
	e := echo.New()
	ctx := context.Background()

	now := time.Now().Unix()
	var accepted *store.SuggestionEvent
	for i := 0; i < 4; i++ {
		event, err := svc.Store.CreateSuggestionEvent(ctx, &store.SuggestionEvent{
			UserKey:    "user-a",
			SourceTool: "kiaan",
			TargetTool: "journey",
			CreatedTs:  now,
		})
		require.NoError(t, err)
		if accepted == nil {
			accepted = event
		}
	}
	_, err := svc.Store.AcceptSuggestionEvent(ctx, &store.AcceptSuggestionEvent{ID: accepted.ID, UserKey: "user-a"})
	require.NoError(t, err)

	c, rec := doJSON(t, e, http.MethodGet, "/api/v1/system/metrics/overview", "")
	require.NoError(t, svc.GetSystemOverview(c))

	got := decode[SystemOverviewResponse](t, rec)
	var leg *SuggestionLeg
	for _, candidate := range got.Suggestions {
		if candidate.SourceTool == "kiaan" && candidate.TargetTool == "journey" {
			leg = candidate
		}
	}
	require.NotNil(t, leg)
	assert.Equal(t, int64(4), leg.Count)
	assert.Equal(t, int64(1), leg.Accepted)
	assert.InDelta(t, 0.25, leg.AcceptanceRate, 1e-9)

	// Legs with no hand-outs report a zero rate, not NaN.
	for _, candidate := range got.Suggestions {
		if candidate.Count == 0 {
			assert.Zero(t, candidate.AcceptanceRate)
		}
	}
}
