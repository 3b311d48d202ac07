// ABOUTME: Test helpers for command tests
// ABOUTME: Provides a fake control plane and a ready-to-use test config

package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/config"
)

const amcPrefix = "/amc/application-manager/api/v2/organizations/{org}/environments/{env}/deployments/"

// fakeControlPlane serves the accounts and application manager endpoints
// for an org "Acme" (root-id) with a business group "Acme-Dev" (sub-id).
type fakeControlPlane struct {
	*httptest.Server

	mu    sync.Mutex
	calls []string

	// failPath answers 500 for a request path when set
	failPath string
}

func newFakeControlPlane(t *testing.T) *fakeControlPlane {
	t.Helper()
	f := &fakeControlPlane{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /accounts/api/v2/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ClientID     string `json:"client_id"`
			ClientSecret string `json:"client_secret"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClientID != "id" || req.ClientSecret != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		writeBody(w, `{"access_token":"tok","token_type":"bearer"}`)
	})
	mux.HandleFunc("GET /accounts/api/me", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `{"user":{"organization":{"id":"root-id"}}}`)
	})
	mux.HandleFunc("GET /accounts/api/organizations/root-id/hierarchy", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `{"id":"root-id","name":"Acme","subOrganizations":[{"id":"sub-id","name":"Acme-Dev"}]}`)
	})
	mux.HandleFunc("GET /accounts/api/organizations/{org}/environments", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("org") {
		case "root-id":
			writeBody(w, `{"data":[{"id":"env-prod","name":"Prod"},{"id":"env-dev","name":"Dev"}]}`)
		case "sub-id":
			writeBody(w, `{"data":[{"id":"env-sandbox","name":"Sandbox"}]}`)
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("GET "+amcPrefix+"{$}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("env") {
		case "env-prod":
			writeBody(w, `{"items":[
				{"id":"dep-a","name":"orders-api","application":{"status":"RUNNING"}},
				{"id":"dep-b","name":"billing-api","application":{"status":"RUNNING"}},
				{"id":"dep-c","name":"legacy-api","application":{"status":"STOPPED"}}]}`)
		case "env-dev":
			writeBody(w, `{"items":[{"id":"dep-d","name":"orders-api","application":{"status":"STOPPED"}}]}`)
		case "env-sandbox":
			writeBody(w, `{"items":[{"id":"dep-e","name":"poc-api","application":{"status":"RUNNING"}}]}`)
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("GET "+amcPrefix+"{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "dep-a":
			writeBody(w, `{"id":"dep-a","application":{"vCores":0.1,"status":"RUNNING"},"target":{"replicas":3}}`)
		case "dep-b":
			writeBody(w, `{"id":"dep-b","application":{"vCores":0.2,"status":"RUNNING"},"target":{"replicas":1}}`)
		case "dep-e":
			writeBody(w, `{"id":"dep-e","application":{"vCores":1,"status":"RUNNING"},"target":{"replicas":2}}`)
		default:
			http.NotFound(w, r)
		}
	})

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)
		fail := f.failPath != "" && r.URL.Path == f.failPath
		f.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"internal error"}`))
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

// called reports whether any request path contained fragment
func (f *fakeControlPlane) called(fragment string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, call := range f.calls {
		if strings.Contains(call, fragment) {
			return true
		}
	}
	return false
}

func writeBody(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

// testConfig returns a non-interactive config pointed at the fake
func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	return &config.Config{
		BaseURL:        baseURL,
		ClientID:       "id",
		ClientSecret:   "secret",
		Org:            "Acme",
		Envs:           []string{"Prod", "Dev"},
		Output:         config.OutputTable,
		Workers:        1,
		Timeout:        5 * time.Second,
		DebugFile:      filepath.Join(t.TempDir(), "data.json"),
		NonInteractive: true,
	}
}
