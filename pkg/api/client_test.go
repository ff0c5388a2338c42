package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	for _, bad := range []string{"", "not a url", "localhost:8080", "/just/a/path"} {
		_, err := NewClient(bad)
		assert.Error(t, err, "base URL %q", bad)
	}

	c, err := NewClient("https://api.example.com")
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestClient_StaticTokenHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(Location{ID: "l1", Name: "HQ"})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithToken("tok-123"))
	require.NoError(t, err)

	loc, err := c.GetLocation(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, "HQ", loc.Name)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClient_TokenFetchAndRefresh(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/token", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "key-1", creds["key"])
		assert.Equal(t, "secret-1", creds["secret"])

		n := atomic.AddInt32(&tokenCalls, 1)
		expiry := time.Now().Add(time.Hour)
		if n == 1 {
			// first token is already inside the refresh window
			expiry = time.Now().Add(10 * time.Second)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":      fmt.Sprintf("tok-%d", n),
			"expires_at": expiry,
		})
	})
	var seenTokens []string
	mux.HandleFunc("/api/v1/locations/l1", func(w http.ResponseWriter, r *http.Request) {
		seenTokens = append(seenTokens, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(Location{ID: "l1", Name: "HQ"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewClient(srv.URL, WithCredentials("key-1", "secret-1"))
	require.NoError(t, err)

	_, err = c.GetLocation(context.Background(), "l1")
	require.NoError(t, err)
	_, err = c.GetLocation(context.Background(), "l1")
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&tokenCalls))
	assert.Equal(t, []string{"Bearer tok-1", "Bearer tok-2"}, seenTokens)
}

func TestClient_NoCredentials(t *testing.T) {
	c, err := NewClient("https://api.example.com")
	require.NoError(t, err)

	_, err = c.GetLocation(context.Background(), "l1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no credentials")
}

func TestClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(APIError{Message: "location not found", Code: "not_found"})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithToken("tok"))
	require.NoError(t, err)

	_, err = c.GetLocation(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "location not found (not_found)")
}

func TestClient_NonEnvelopeErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream blew up"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithToken("tok"))
	require.NoError(t, err)

	_, err = c.GetLocation(context.Background(), "l1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=502")
	assert.Contains(t, err.Error(), "upstream blew up")
}

func TestClient_ListLocationsPaginates(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/locations", r.URL.Path)
		assert.Equal(t, "co-1", r.URL.Query().Get("company_id"))
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))

		page := r.URL.Query().Get("page")
		pages = append(pages, page)

		n, err := strconv.Atoi(page)
		require.NoError(t, err)
		var out []Location
		if n == 1 {
			out = []Location{{ID: "l1", Name: "HQ"}, {ID: "l2", Name: "Depot"}}
		} else {
			out = []Location{{ID: "l3", Name: "Annex"}} // short page ends the walk
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithToken("tok"), WithPageSize(2))
	require.NoError(t, err)

	locations, err := c.ListLocations(context.Background(), LocationFilter{CompanyID: "co-1"})
	require.NoError(t, err)
	require.Len(t, locations, 3)
	assert.Equal(t, []string{"1", "2"}, pages)
	assert.Equal(t, "Annex", locations[2].Name)
}

func TestClient_CreateLocationSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req CreateLocationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "HQ", req.Name)
		assert.Equal(t, "Austin", req.City)

		_ = json.NewEncoder(w).Encode(Location{ID: "l1", Name: req.Name})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithToken("tok"))
	require.NoError(t, err)

	loc, err := c.CreateLocation(context.Background(), CreateLocationRequest{
		Name:          "HQ",
		CompanyID:     "co-1",
		LocationAttrs: LocationAttrs{City: "Austin"},
	})
	require.NoError(t, err)
	assert.Equal(t, "l1", loc.ID)
}

func TestClient_ListRegistryJoinsHardwareIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/registry", r.URL.Path)
		assert.Equal(t, "a1,a2", r.URL.Query().Get("hardware_ids"))
		_ = json.NewEncoder(w).Encode([]RegistryEntry{{HardwareID: "a1"}})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithToken("tok"))
	require.NoError(t, err)

	entries, err := c.ListRegistry(context.Background(), RegistryFilter{
		CompanyID:   "co-1",
		HardwareIDs: []string{"a1", "a2"},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a1", entries[0].HardwareID)
}
