// internal/handlers/item_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authentrace/provenance-backend/internal/config"
	"github.com/authentrace/provenance-backend/internal/ledger"
	"github.com/authentrace/provenance-backend/internal/middleware"
	"github.com/authentrace/provenance-backend/internal/models"
	"github.com/authentrace/provenance-backend/internal/services"
	"github.com/authentrace/provenance-backend/internal/utils"
)

type apiEnv struct {
	router       *gin.Engine
	store        *ledger.MemoryStore
	manufacturer *models.User
	alice        *models.User
	admin        *models.User
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Frontend: config.FrontendConfig{BaseURL: "http://localhost:5173"},
	}

	store := ledger.NewMemoryStore()
	guard := ledger.NewGuard(store, store, store)
	resolver := ledger.NewResolver(store)
	storage, err := services.NewStorageService(cfg)
	require.NoError(t, err)
	itemService := services.NewItemService(guard, resolver, store, store, storage, nil, cfg)

	itemHandler := NewItemHandler(itemService, store)
	verificationHandler := NewVerificationHandler(itemService)

	r := gin.New()
	v1 := r.Group("/v1")
	items := v1.Group("/items")
	{
		items.GET("/:itemId/history", itemHandler.History)
		items.GET("/:itemId/qr", itemHandler.QRPayload)

		protected := items.Group("")
		protected.Use(middleware.AuthRequired(nil))
		{
			protected.POST("", middleware.ManufacturerRequired(), itemHandler.Mint)
			protected.GET("/owned", itemHandler.Owned)
			protected.POST("/:itemId/transfer", itemHandler.Transfer)
		}
	}
	v1.GET("/verify/:itemId", verificationHandler.VerifyItem)

	env := &apiEnv{
		router:       r,
		store:        store,
		manufacturer: testAccount(store, models.RoleManufacturer, true),
		alice:        testAccount(store, models.RoleUser, false),
		admin:        testAccount(store, models.RoleAdmin, true),
	}
	return env
}

func testAccount(store *ledger.MemoryStore, role models.AccountRole, verified bool) *models.User {
	u := &models.User{
		Email:    fmt.Sprintf("%s-%s@example.com", role, uuid.NewString()[:8]),
		Role:     role,
		Verified: verified,
		Status:   models.UserStatusActive,
	}
	u.ID = uuid.New()
	store.AddAccount(u)
	return u
}

func (env *apiEnv) request(t *testing.T, method, path string, body interface{}, as *models.User) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		token, err := utils.GenerateJWT(as.ID, as.Email, string(as.Role), as.Verified, 1)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *apiEnv) mint(t *testing.T, productID string) string {
	t.Helper()

	w := env.request(t, http.MethodPost, "/v1/items", gin.H{"product_id": productID}, env.manufacturer)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Item struct {
				ItemID string `json:"item_id"`
			} `json:"item"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Item.ItemID)
	return resp.Data.Item.ItemID
}

func TestMintEndpoint(t *testing.T) {
	env := newAPIEnv(t)

	itemID := env.mint(t, "sku-100")
	assert.Contains(t, itemID, "item_")
}

func TestMintRequiresAuth(t *testing.T) {
	env := newAPIEnv(t)

	w := env.request(t, http.MethodPost, "/v1/items", gin.H{"product_id": "sku-100"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMintRejectsNonManufacturer(t *testing.T) {
	env := newAPIEnv(t)

	w := env.request(t, http.MethodPost, "/v1/items", gin.H{"product_id": "sku-100"}, env.alice)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTransferEndpoint(t *testing.T) {
	env := newAPIEnv(t)
	itemID := env.mint(t, "sku-100")

	w := env.request(t, http.MethodPost, "/v1/items/"+itemID+"/transfer",
		gin.H{"new_owner_id": env.alice.ID}, env.manufacturer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Alice now owns it; the manufacturer cannot transfer it again.
	w = env.request(t, http.MethodPost, "/v1/items/"+itemID+"/transfer",
		gin.H{"new_owner_id": env.admin.ID}, env.manufacturer)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTransferUnknownItem(t *testing.T) {
	env := newAPIEnv(t)

	w := env.request(t, http.MethodPost, "/v1/items/item_missing/transfer",
		gin.H{"new_owner_id": env.alice.ID}, env.manufacturer)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransferToUnknownAccount(t *testing.T) {
	env := newAPIEnv(t)
	itemID := env.mint(t, "sku-100")

	w := env.request(t, http.MethodPost, "/v1/items/"+itemID+"/transfer",
		gin.H{"new_owner_id": uuid.New()}, env.manufacturer)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	env := newAPIEnv(t)
	itemID := env.mint(t, "sku-100")

	w := env.request(t, http.MethodPost, "/v1/items/"+itemID+"/transfer",
		gin.H{"new_owner_id": env.alice.ID}, env.manufacturer)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/v1/items/"+itemID+"/history", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			CurrentOwner uuid.UUID `json:"current_owner"`
			Transactions []struct {
				TransactionID   string  `json:"transaction_id"`
				PreviousOwnerID *string `json:"previous_owner_id"`
			} `json:"transactions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, env.alice.ID, resp.Data.CurrentOwner)
	require.Len(t, resp.Data.Transactions, 2)
	assert.Nil(t, resp.Data.Transactions[0].PreviousOwnerID)
	assert.NotNil(t, resp.Data.Transactions[1].PreviousOwnerID)
}

func TestHistoryUnknownItem(t *testing.T) {
	env := newAPIEnv(t)

	w := env.request(t, http.MethodGet, "/v1/items/item_missing/history", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOwnedEndpoint(t *testing.T) {
	env := newAPIEnv(t)
	itemA := env.mint(t, "sku-1")
	env.mint(t, "sku-2")

	w := env.request(t, http.MethodPost, "/v1/items/"+itemA+"/transfer",
		gin.H{"new_owner_id": env.alice.ID}, env.manufacturer)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/v1/items/owned", nil, env.alice)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Count int `json:"count"`
			Items []struct {
				Item struct {
					ItemID string `json:"item_id"`
				} `json:"item"`
			} `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Data.Count)
	assert.Equal(t, itemA, resp.Data.Items[0].Item.ItemID)
}

func TestPublicVerifyEndpoint(t *testing.T) {
	env := newAPIEnv(t)
	itemID := env.mint(t, "sku-100")

	// No Authorization header at all.
	w := env.request(t, http.MethodGet, "/v1/verify/"+itemID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Authentic bool `json:"authentic"`
			Item      struct {
				ProductID string `json:"product_id"`
			} `json:"item"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Authentic)
	assert.Equal(t, "sku-100", resp.Data.Item.ProductID)

	w = env.request(t, http.MethodGet, "/v1/verify/item_missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQRPayloadEndpoint(t *testing.T) {
	env := newAPIEnv(t)
	itemID := env.mint(t, "sku-100")

	w := env.request(t, http.MethodGet, "/v1/items/"+itemID+"/qr", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			QRPayload string `json:"qr_payload"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "http://localhost:5173/verify/"+itemID, resp.Data.QRPayload)
}
