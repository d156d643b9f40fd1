package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func loginStub(mux *http.ServeMux, token string) {
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message":      "Login successful",
			"access_token": token,
			"profile": Profile{
				ID: 7, Username: "founder", Role: "user",
				Telegram: "@founder", ResumeLink: "https://example.com/cv",
			},
		})
	})
}

func TestLoginInstallsSession(t *testing.T) {
	mux := http.NewServeMux()
	loginStub(mux, "tok-123")
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New(srv.URL)
	profile, err := c.Login(context.Background(), "founder", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(7), profile.ID)
	require.NotNil(t, c.Session())
	assert.Equal(t, "tok-123", c.Session().Token)
	assert.Equal(t, int64(7), c.Session().UserID)
}

func TestMutationReplacesCachedEntityWholesale(t *testing.T) {
	mux := http.NewServeMux()
	loginStub(mux, "tok")
	mux.HandleFunc("GET /startups", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Startups loaded",
			"startups": []Startup{{
				ID: 1, Name: "Chainlytics", Status: "approved", Version: 1,
				FundsRaised: map[string]string{"ETH": "1", "BTC": "0.5"},
			}},
		})
	})
	mux.HandleFunc("PUT /startups/1/funds", func(w http.ResponseWriter, r *http.Request) {
		// Server truth drops BTC entirely; a field merge would keep it.
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Funds updated",
			"startup": Startup{
				ID: 1, Name: "Chainlytics", Status: "approved", Version: 2,
				FundsRaised: map[string]string{"ETH": "9"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New(srv.URL)
	_, err := c.Login(context.Background(), "founder", "pw")
	require.NoError(t, err)

	_, err = c.ListStartups(context.Background(), false)
	require.NoError(t, err)

	updated, err := c.UpdateStartupFunds(context.Background(), 1, map[string]string{"ETH": "9"}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	cached, ok := c.CachedStartup(1)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"ETH": "9"}, cached.FundsRaised)
	_, btcKept := cached.FundsRaised["BTC"]
	assert.False(t, btcKept, "stale fields must not survive a replace")
}

func TestAuthFailureTearsSessionDown(t *testing.T) {
	mux := http.NewServeMux()
	loginStub(mux, "tok")
	mux.HandleFunc("GET /startups", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message":  "Startups loaded",
			"startups": []Startup{{ID: 1, Name: "Chainlytics", Status: "approved"}},
		})
	})
	mux.HandleFunc("GET /profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token has expired"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New(srv.URL)
	_, err := c.Login(context.Background(), "founder", "pw")
	require.NoError(t, err)
	_, err = c.ListStartups(context.Background(), false)
	require.NoError(t, err)
	require.NotEmpty(t, c.CachedStartups())

	_, err = c.FetchProfile(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	assert.Nil(t, c.Session(), "session must be torn down")
	assert.Nil(t, c.Profile())
	assert.Empty(t, c.CachedStartups(), "entity caches must be cleared with the session")
}

func TestApplyCheckedLocallyBeforeNetwork(t *testing.T) {
	var calls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "tok",
			"profile":      Profile{ID: 7, Username: "newbie", Role: "user"},
		})
	})
	mux.HandleFunc("POST /vacancies/1/apply", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"vacancy": Vacancy{ID: 1}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New(srv.URL)
	_, err := c.Login(context.Background(), "newbie", "pw")
	require.NoError(t, err)

	_, err = c.Apply(context.Background(), 1)
	var precondition *PreconditionError
	require.ErrorAs(t, err, &precondition)
	assert.Equal(t, []string{"telegram", "resume_link"}, precondition.MissingFields)
	assert.Zero(t, calls.Load(), "no network call may happen on a failed precondition")
}

func TestMineOnlyToggleReissuesRequest(t *testing.T) {
	var mineRequests, allRequests atomic.Int64
	mux := http.NewServeMux()
	loginStub(mux, "tok")
	mux.HandleFunc("GET /vacancies", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("filter_by_creator") == "true" {
			mineRequests.Add(1)
			writeJSON(w, http.StatusOK, map[string]any{"vacancies": []Vacancy{{ID: 2, CreatorID: 7}}})
			return
		}
		allRequests.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"vacancies": []Vacancy{{ID: 1}, {ID: 2, CreatorID: 7}}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New(srv.URL)
	_, err := c.Login(context.Background(), "founder", "pw")
	require.NoError(t, err)

	all, err := c.ListVacancies(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := c.ListVacancies(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Len(t, c.CachedVacancies(), 1, "cache must hold the latest listing only")

	assert.Equal(t, int64(1), allRequests.Load())
	assert.Equal(t, int64(1), mineRequests.Load())
}

func TestDeleteRemovesFromCache(t *testing.T) {
	mux := http.NewServeMux()
	loginStub(mux, "tok")
	mux.HandleFunc("GET /vacancies", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"vacancies": []Vacancy{{ID: 1}, {ID: 2}}})
	})
	mux.HandleFunc("DELETE /vacancies/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Vacancy deleted"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New(srv.URL)
	_, err := c.Login(context.Background(), "founder", "pw")
	require.NoError(t, err)
	_, err = c.ListVacancies(context.Background(), false)
	require.NoError(t, err)

	require.NoError(t, c.DeleteVacancy(context.Background(), 1))
	assert.Len(t, c.CachedVacancies(), 1)
	_, ok := c.CachedVacancy(1)
	assert.False(t, ok)
}
