package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "500", "1001", slog.Default())
}

func TestExecute_DecodesEnvelope(t *testing.T) {
	var gotPath, gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total_count": 1,
			"data":        []any{map[string]any{"id": "1001", "name": "a defect"}},
		})
	}))

	env, err := c.Entity("defects").
		Fields("id", "name").
		Query(Field("id").Equal("1001")).
		Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/api/shared_spaces/500/workspaces/1001/defects", gotPath)
	assert.Equal(t, `"id EQ ^1001^"`, gotQuery)
	assert.Equal(t, 1, env.TotalCount)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "1001", env.Data[0]["id"])
}

func TestExecuteOne_DecodesRecord(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/shared_spaces/500/workspaces/1001/defects/1001", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "1001", "name": "a defect"})
	}))

	record, err := c.Entity("defects").At("1001").Fields("id", "name").ExecuteOne(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a defect", record["name"])
}

func TestExecuteOne_RequiresID(t *testing.T) {
	c := New("http://localhost", "500", "1001", slog.Default())
	_, err := c.Entity("defects").ExecuteOne(context.Background())
	require.Error(t, err)
}

func TestGet_StatusMapping(t *testing.T) {
	status := http.StatusNotFound
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", status)
	}))

	_, err := c.Entity("defects").At("1").ExecuteOne(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)

	status = http.StatusForbidden
	_, err = c.Entity("defects").At("1").ExecuteOne(context.Background())
	assert.ErrorIs(t, err, ErrForbidden)

	status = http.StatusInternalServerError
	_, err = c.Entity("defects").At("1").ExecuteOne(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
}

func TestTestAuth(t *testing.T) {
	var gotUser, gotPassword string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/authentication/sign_in", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotUser, gotPassword = body["user"], body["password"]
		if body["password"] != "secret" {
			http.Error(w, "denied", http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, c.TestAuth(context.Background(), "jane", "secret"))
	assert.Equal(t, "jane", gotUser)
	assert.Equal(t, "secret", gotPassword)

	require.Error(t, c.TestAuth(context.Background(), "jane", "wrong"))
}

func TestAuthTokenFlow(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/authentication/tokens":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"id":                 "tok-1",
				"authentication_url": "https://example.test/login",
			})
		case r.Method == http.MethodGet && r.URL.Path == "/authentication/tokens/tok-1":
			assert.Equal(t, "jane", r.URL.Query().Get("userName"))
			_ = json.NewEncoder(w).Encode(map[string]string{
				"access_token": "granted-token",
				"cookie_name":  "LWSSO",
			})
		default:
			http.NotFound(w, r)
		}
	}))

	tok, err := c.CreateAuthToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok.ID)
	assert.Equal(t, "https://example.test/login", tok.AuthenticationURL)

	grant, err := c.GetAuthToken(context.Background(), tok.ID, "jane")
	require.NoError(t, err)
	assert.Equal(t, "granted-token", grant.AccessToken)
	assert.Equal(t, "LWSSO", grant.CookieName)
}

func TestGetAuthToken_NotReady(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "pending", http.StatusNotFound)
	}))

	_, err := c.GetAuthToken(context.Background(), "tok-1", "jane")
	require.Error(t, err)
}

func TestCredentials_BasicAuthAndCookie(t *testing.T) {
	var gotAuth, gotCookie string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if ck, err := r.Cookie("LWSSO"); err == nil {
			gotCookie = ck.Value
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))

	c.SetCredentials(Credentials{User: "jane", Secret: "pw"})
	_, err := c.Entity("defects").Execute(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, gotAuth)
	assert.Empty(t, gotCookie)

	gotAuth = ""
	c.SetCredentials(Credentials{User: "jane", Secret: "tok", CookieName: "LWSSO"})
	_, err = c.Entity("defects").Execute(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "tok", gotCookie)
}

// Session validation rotates credentials while search goroutines still
// hold the client; the rotation must not race in-flight requests.
func TestSetCredentials_ConcurrentWithRequests(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	c.SetCredentials(Credentials{User: "jane", Secret: "pw"})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := c.Entity("defects").Execute(context.Background())
				assert.NoError(t, err)
			}
		}()
	}

	for i := 0; i < 200; i++ {
		c.SetCredentials(Credentials{User: "jane", Secret: fmt.Sprintf("rotated-%d", i)})
	}
	wg.Wait()
}

func TestEndpointForType(t *testing.T) {
	ep, ok := EndpointForType("defect")
	require.True(t, ok)
	assert.Equal(t, "defects", ep)

	ep, ok = EndpointForType("workspace_user")
	require.True(t, ok)
	assert.Equal(t, "workspace_users", ep)

	ep, ok = EndpointForType("commit")
	require.True(t, ok)
	assert.Equal(t, "scm_commits", ep)

	_, ok = EndpointForType("no_such_type")
	assert.False(t, ok)
}
