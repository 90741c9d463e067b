// Package integration provides end-to-end integration tests for the API.
// Tests all endpoints against both PostgreSQL and MySQL databases.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biodidseq/bioseq/internal/app"
	"github.com/biodidseq/bioseq/internal/config"
	httpServer "github.com/biodidseq/bioseq/internal/http"
	"github.com/biodidseq/bioseq/internal/testutil"
)

const (
	ownerUserID = "42"
	otherUserID = "7"

	testServiceDID = "did:key:z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK"
)

// integrationTestContext holds all dependencies and state for integration testing.
type integrationTestContext struct {
	container *app.Container
	server    *httptest.Server
	dbDriver  string
}

// makeRequest performs an HTTP request and returns the response and body. An
// empty userID sends the request without an identity header.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body interface{},
	userID string,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if userID != "" {
		req.Header.Set(httpServer.UserIDHeader, userID)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	//nolint:gosec // controlled test environment with localhost URLs
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	if closeErr := resp.Body.Close(); closeErr != nil {
		t.Logf("Warning: failed to close response body: %v", closeErr)
	}

	return resp, respBody
}

// setupIntegrationTest initializes all components for integration testing.
func setupIntegrationTest(t *testing.T, dbDriver string) *integrationTestContext {
	t.Helper()

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	// Setup database
	var dsn string
	if dbDriver == "postgres" {
		db := testutil.SetupPostgresDB(t)
		testutil.TeardownDB(t, db)
		dsn = testutil.GetPostgresTestDSN()
	} else {
		db := testutil.SetupMySQLDB(t)
		testutil.TeardownDB(t, db)
		dsn = testutil.GetMySQLTestDSN()
	}

	// Create configuration with an ephemeral in-memory content store
	cfg := &config.Config{
		DBDriver:             dbDriver,
		DBConnectionString:   dsn,
		DBMaxOpenConnections: 10,
		DBMaxIdleConnections: 5,
		DBConnMaxLifetime:    time.Hour,
		ServerHost:           "localhost",
		ServerPort:           8080,
		ContentBucketURL:     "mem://",
		ServiceDID:           testServiceDID,
		TokenDefaultTTL:      24 * time.Hour,
		StorageEndpoint:      "https://storage.example/api",
		LogLevel:             "error",
	}

	// Create DI container
	container := app.NewContainer(cfg)

	// Setup HTTP server
	httpSrv, err := container.HTTPServer()
	require.NoError(t, err, "failed to get HTTP server")

	// Get the handler from the server
	// The SetupRouter has already been called by container.HTTPServer()
	handler := httpSrv.GetHandler()
	require.NotNil(t, handler, "handler should not be nil after SetupRouter")

	// Create test server with the handler
	testServer := httptest.NewServer(handler)

	t.Logf("Integration test setup complete for %s", dbDriver)

	return &integrationTestContext{
		container: container,
		server:    testServer,
		dbDriver:  dbDriver,
	}
}

// teardownIntegrationTest cleans up all resources.
func teardownIntegrationTest(t *testing.T, ctx *integrationTestContext) {
	t.Helper()

	if ctx.server != nil {
		ctx.server.Close()
	}

	if ctx.container != nil {
		err := ctx.container.Shutdown(context.Background())
		if err != nil {
			t.Logf("Warning: container shutdown error: %v", err)
		}
	}
}

// databaseTestCases returns the drivers to run every flow against.
func databaseTestCases() []struct {
	name   string
	driver string
	skip   func(t *testing.T)
} {
	return []struct {
		name   string
		driver string
		skip   func(t *testing.T)
	}{
		{name: "PostgreSQL", driver: "postgres", skip: testutil.SkipIfNoPostgres},
		{name: "MySQL", driver: "mysql", skip: testutil.SkipIfNoMySQL},
	}
}

func decodeJSON(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &result), "failed to decode response: %s", string(body))
	return result
}

func TestIntegration_Health_BasicChecks(t *testing.T) {
	for _, tc := range databaseTestCases() {
		t.Run(tc.name, func(t *testing.T) {
			tc.skip(t)

			ctx := setupIntegrationTest(t, tc.driver)
			defer teardownIntegrationTest(t, ctx)

			t.Run("01_HealthCheck", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/health", nil, "")
				assert.Equal(t, http.StatusOK, resp.StatusCode)

				result := decodeJSON(t, body)
				assert.Equal(t, "healthy", result["status"])
			})

			t.Run("02_ReadinessCheck", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/ready", nil, "")
				assert.Equal(t, http.StatusOK, resp.StatusCode)

				result := decodeJSON(t, body)
				assert.Equal(t, "ready", result["status"])

				components, ok := result["components"].(map[string]interface{})
				require.True(t, ok, "components should be an object")
				assert.Equal(t, "ok", components["database"])
			})
		})
	}
}

func TestIntegration_Identity_CompleteFlow(t *testing.T) {
	for _, tc := range databaseTestCases() {
		t.Run(tc.name, func(t *testing.T) {
			tc.skip(t)

			ctx := setupIntegrationTest(t, tc.driver)
			defer teardownIntegrationTest(t, ctx)

			var did string
			var firstContentAddress string

			t.Run("01_CreateDocument", func(t *testing.T) {
				createReq := map[string]interface{}{
					"public_key": "z6MkpTHR8VNsBxYAAWHut2Geadd9jSwuBV8xRoAnwWsdvktH",
					"metadata": map[string]interface{}{
						"title":     "Soil microbiome survey",
						"data_type": "genomic",
						"license":   "CC-BY-4.0",
						"keywords":  []string{"soil", "16S"},
						"researchers": []map[string]interface{}{
							{"name": "R. Vasquez", "role": "Lead"},
						},
					},
				}

				resp, body := ctx.makeRequest(t, http.MethodPost, "/api/did", createReq, ownerUserID)
				require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", string(body))

				result := decodeJSON(t, body)
				did, _ = result["id"].(string)
				require.NotEmpty(t, did)
				assert.Contains(t, did, "did:bio:")
				assert.NotEmpty(t, result["verificationMethod"])
				assert.NotEmpty(t, result["service"])
			})

			t.Run("02_GetDocument", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/api/did/"+did, nil, "")
				require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))

				result := decodeJSON(t, body)
				assert.Equal(t, did, result["id"])
			})

			t.Run("03_ResolveDocument", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/api/did/resolve/"+did, nil, "")
				require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))

				result := decodeJSON(t, body)
				firstContentAddress, _ = result["content_address"].(string)
				assert.NotEmpty(t, firstContentAddress)

				document, ok := result["document"].(map[string]interface{})
				require.True(t, ok, "resolution should embed the document")
				assert.Equal(t, did, document["id"])
			})

			t.Run("04_UpdateDocument", func(t *testing.T) {
				updateReq := map[string]interface{}{
					"add_service": []map[string]interface{}{
						{
							"id":              did + "#mirror",
							"type":            "DataStorage",
							"serviceEndpoint": "https://mirror.example/api",
						},
					},
				}

				resp, body := ctx.makeRequest(t, http.MethodPut, "/api/did/"+did, updateReq, ownerUserID)
				require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))

				result := decodeJSON(t, body)
				services, ok := result["service"].([]interface{})
				require.True(t, ok)
				assert.Len(t, services, 2)
			})

			t.Run("05_ResolveAfterUpdate", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/api/did/resolve/"+did, nil, "")
				require.Equal(t, http.StatusOK, resp.StatusCode)

				result := decodeJSON(t, body)
				newContentAddress, _ := result["content_address"].(string)
				assert.NotEmpty(t, newContentAddress)
				assert.NotEqual(t, firstContentAddress, newContentAddress,
					"update should move the pointer to a new content address")

				// The superseded version stays fetchable at its old address.
				store, err := ctx.container.ContentStore()
				require.NoError(t, err)
				previous, err := store.Get(context.Background(), firstContentAddress)
				require.NoError(t, err, "previous document version should not be deleted")
				assert.NotEmpty(t, previous)
			})

			t.Run("06_LinkDataverse", func(t *testing.T) {
				linkReq := map[string]interface{}{
					"dataverse_doi": "doi:10.70122/FK2/ABCDEF",
				}

				resp, body := ctx.makeRequest(t, http.MethodPost, "/api/did/"+did+"/dataverse", linkReq, ownerUserID)
				require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))

				result := decodeJSON(t, body)
				assert.Equal(t, "DID successfully linked to Dataverse dataset", result["message"])
				assert.Equal(t, did, result["did"])
				assert.Equal(t, "doi:10.70122/FK2/ABCDEF", result["dataverse_doi"])
			})

			t.Run("07_ResolveShowsExternalLink", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/api/did/resolve/"+did, nil, "")
				require.Equal(t, http.StatusOK, resp.StatusCode)

				result := decodeJSON(t, body)
				assert.Equal(t, "doi:10.70122/FK2/ABCDEF", result["external_link"])
			})

			t.Run("08_GetUnknownDocument", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet,
					"/api/did/did:bio:00000000-0000-0000-0000-000000000000", nil, "")
				assert.Equal(t, http.StatusNotFound, resp.StatusCode)

				result := decodeJSON(t, body)
				assert.Equal(t, "not_found", result["error"])
			})

			t.Run("09_CreateWithoutIdentity", func(t *testing.T) {
				createReq := map[string]interface{}{
					"public_key": "z6MkpTHR8VNsBxYAAWHut2Geadd9jSwuBV8xRoAnwWsdvktH",
				}

				resp, _ := ctx.makeRequest(t, http.MethodPost, "/api/did", createReq, "")
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})

			t.Run("10_UpdateByNonOwner", func(t *testing.T) {
				controller := "did:bio:attacker"
				updateReq := map[string]interface{}{
					"controller": controller,
				}

				resp, body := ctx.makeRequest(t, http.MethodPut, "/api/did/"+did, updateReq, otherUserID)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode, "body: %s", string(body))

				result := decodeJSON(t, body)
				assert.Equal(t, "forbidden", result["error"])
			})
		})
	}
}

func TestIntegration_Capability_CompleteFlow(t *testing.T) {
	for _, tc := range databaseTestCases() {
		t.Run(tc.name, func(t *testing.T) {
			tc.skip(t)

			ctx := setupIntegrationTest(t, tc.driver)
			defer teardownIntegrationTest(t, ctx)

			audienceDID := "did:bio:0196a1b2-0000-7000-8000-000000000001"
			delegateDID := "did:bio:0196a1b2-0000-7000-8000-000000000002"

			var token string
			var delegatedToken string

			t.Run("01_IssueToken", func(t *testing.T) {
				issueReq := map[string]interface{}{
					"audience": audienceDID,
					"capabilities": []map[string]string{
						{"with": "dataset:ds-42", "can": "read"},
						{"with": "file:bafy123", "can": "download"},
					},
					"expiration": 3600,
				}

				resp, body := ctx.makeRequest(t, http.MethodPost, "/api/ucan/issue", issueReq, ownerUserID)
				require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", string(body))

				result := decodeJSON(t, body)
				token, _ = result["token"].(string)
				assert.NotEmpty(t, token)
				assert.NotEmpty(t, result["expires_at"])
			})

			t.Run("02_ValidateToken", func(t *testing.T) {
				validateReq := map[string]string{"token": token}

				resp, body := ctx.makeRequest(t, http.MethodPost, "/api/ucan/validate", validateReq, "")
				require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))

				result := decodeJSON(t, body)
				assert.Equal(t, true, result["valid"])
				assert.Equal(t, testServiceDID, result["issuer"])
				assert.Equal(t, audienceDID, result["audience"])

				capabilities, ok := result["capabilities"].([]interface{})
				require.True(t, ok)
				assert.Len(t, capabilities, 2)
			})

			t.Run("03_DelegateToken", func(t *testing.T) {
				delegateReq := map[string]interface{}{
					"parent_token": token,
					"audience":     delegateDID,
					"capabilities": []map[string]string{
						{"with": "dataset:ds-42", "can": "read"},
					},
				}

				resp, body := ctx.makeRequest(t, http.MethodPost, "/api/ucan/delegate", delegateReq, ownerUserID)
				require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", string(body))

				result := decodeJSON(t, body)
				delegatedToken, _ = result["token"].(string)
				assert.NotEmpty(t, delegatedToken)
			})

			t.Run("04_ValidateDelegatedToken", func(t *testing.T) {
				validateReq := map[string]string{"token": delegatedToken}

				resp, body := ctx.makeRequest(t, http.MethodPost, "/api/ucan/validate", validateReq, "")
				require.Equal(t, http.StatusOK, resp.StatusCode)

				result := decodeJSON(t, body)
				assert.Equal(t, true, result["valid"])
				assert.Equal(t, delegateDID, result["audience"])
			})

			t.Run("05_RevokeToken", func(t *testing.T) {
				revokeReq := map[string]string{"token": token}

				resp, body := ctx.makeRequest(t, http.MethodPost, "/api/ucan/revoke", revokeReq, ownerUserID)
				require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))

				result := decodeJSON(t, body)
				assert.Equal(t, "success", result["status"])
				assert.Equal(t, "Token revoked successfully", result["message"])
			})

			t.Run("06_ValidateRevokedToken", func(t *testing.T) {
				validateReq := map[string]string{"token": token}

				resp, body := ctx.makeRequest(t, http.MethodPost, "/api/ucan/validate", validateReq, "")
				require.Equal(t, http.StatusOK, resp.StatusCode)

				result := decodeJSON(t, body)
				assert.Equal(t, false, result["valid"])
				assert.NotEmpty(t, result["reason"])
			})

			t.Run("07_RevokeByNonOwner", func(t *testing.T) {
				revokeReq := map[string]string{"token": delegatedToken}

				resp, body := ctx.makeRequest(t, http.MethodPost, "/api/ucan/revoke", revokeReq, otherUserID)
				assert.Equal(t, http.StatusNotFound, resp.StatusCode, "body: %s", string(body))
			})

			t.Run("08_RevokeMalformedToken", func(t *testing.T) {
				revokeReq := map[string]string{"token": "not-a-token"}

				resp, body := ctx.makeRequest(t, http.MethodPost, "/api/ucan/revoke", revokeReq, ownerUserID)
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

				result := decodeJSON(t, body)
				assert.Equal(t, "token_decode_error", result["error"])
			})

			t.Run("09_IssueWithoutIdentity", func(t *testing.T) {
				issueReq := map[string]interface{}{
					"audience": audienceDID,
					"capabilities": []map[string]string{
						{"with": "dataset:ds-42", "can": "read"},
					},
					"expiration": 3600,
				}

				resp, _ := ctx.makeRequest(t, http.MethodPost, "/api/ucan/issue", issueReq, "")
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})

			t.Run("10_IssueUnknownCapability", func(t *testing.T) {
				issueReq := map[string]interface{}{
					"audience": audienceDID,
					"capabilities": []map[string]string{
						{"with": fmt.Sprintf("blob:%s", "x"), "can": "read"},
					},
					"expiration": 3600,
				}

				resp, body := ctx.makeRequest(t, http.MethodPost, "/api/ucan/issue", issueReq, ownerUserID)
				assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "body: %s", string(body))
			})
		})
	}
}
