package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldtechnologies/bazaar/internal/api"
	"github.com/eldtechnologies/bazaar/internal/assets"
	"github.com/eldtechnologies/bazaar/internal/config"
	"github.com/eldtechnologies/bazaar/internal/hub"
	"github.com/eldtechnologies/bazaar/internal/models"
	"github.com/eldtechnologies/bazaar/internal/service"
	"github.com/eldtechnologies/bazaar/internal/store"
)

type env struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zerolog.Nop()

	db := store.NewMemoryDataStore()
	messages := store.NewMemoryMessageStore()
	liveHub := hub.New()

	dir := t.TempDir()
	uploader, err := assets.NewLocalUploader(dir, "http://localhost:8080")
	require.NoError(t, err)
	janitor := assets.NewJanitor(uploader, logger)
	t.Cleanup(janitor.Close)

	catalog := service.NewCatalog(db, uploader, janitor, logger)
	chat := service.NewChat(db, messages, liveHub, logger)

	cfg := &config.Config{Port: "0", Env: "test", UploadDir: dir}
	router := api.NewRouter(logger, cfg, db, messages, catalog, chat, liveHub, nil)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, env) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, srv.URL+path, buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var e env
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return resp.StatusCode, e
}

func register(t *testing.T, srv *httptest.Server, wallet string) (id, token string) {
	t.Helper()
	status, e := doJSON(t, srv, http.MethodPost, "/register", "", map[string]string{"wallet_address": wallet})
	require.Equal(t, http.StatusCreated, status)
	require.True(t, e.Success)

	var resp struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(e.Data, &resp))
	require.NotEmpty(t, resp.Token)
	return resp.ID, resp.Token
}

func createStore(t *testing.T, srv *httptest.Server, token, name string) models.Store {
	t.Helper()
	status, e := doJSON(t, srv, http.MethodPost, "/stores", token, map[string]string{
		"name":              name,
		"short_description": "test store",
	})
	require.Equal(t, http.StatusCreated, status)
	var st models.Store
	require.NoError(t, json.Unmarshal(e.Data, &st))
	return st
}

func createProduct(t *testing.T, srv *httptest.Server, token, storeID string) models.Product {
	t.Helper()
	status, e := doJSON(t, srv, http.MethodPost, "/products", token, map[string]any{
		"name":              "Desk Lamp",
		"short_description": "a lamp",
		"store_id":          storeID,
		"price":             1999,
	})
	require.Equal(t, http.StatusCreated, status)
	var p models.Product
	require.NoError(t, json.Unmarshal(e.Data, &p))
	return p
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)

	status, e := doJSON(t, srv, http.MethodPost, "/register", "", map[string]string{"wallet_address": "not-a-wallet"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, e.Success)

	status, _ = doJSON(t, srv, http.MethodPost, "/register", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRegisterIsIdempotent(t *testing.T) {
	srv := newTestServer(t)
	wallet := "0x1111111111111111111111111111111111111111"

	id, _ := register(t, srv, wallet)

	// Second registration returns the same identity, no new token
	status, e := doJSON(t, srv, http.MethodPost, "/register", "", map[string]string{"wallet_address": wallet})
	require.Equal(t, http.StatusOK, status)
	var resp struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(e.Data, &resp))
	assert.Equal(t, id, resp.ID)
	assert.Empty(t, resp.Token)
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	status, e := doJSON(t, srv, http.MethodPost, "/stores", "", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, e.Success)

	status, _ = doJSON(t, srv, http.MethodPost, "/stores", "garbage-token", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestStoreLifecycle(t *testing.T) {
	srv := newTestServer(t)
	wallet := "0x1111111111111111111111111111111111111111"
	_, token := register(t, srv, wallet)

	st := createStore(t, srv, token, "Gadget Garden")
	assert.Equal(t, wallet, st.OwnerWallet)

	// Public views work unauthenticated
	status, e := doJSON(t, srv, http.MethodGet, "/stores/public/all", "", nil)
	require.Equal(t, http.StatusOK, status)
	var all []models.Store
	require.NoError(t, json.Unmarshal(e.Data, &all))
	require.Len(t, all, 1)

	status, e = doJSON(t, srv, http.MethodGet, "/stores/public/"+st.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, status)
	var got models.Store
	require.NoError(t, json.Unmarshal(e.Data, &got))
	assert.Equal(t, "Gadget Garden", got.Name)

	// Partial update leaves other fields alone
	status, e = doJSON(t, srv, http.MethodPut, "/stores/"+st.ID.String(), token, map[string]string{"name": "Widget World"})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(e.Data, &got))
	assert.Equal(t, "Widget World", got.Name)
	assert.Equal(t, "test store", got.ShortDescription)

	// Delete, then public lookup 404s
	status, e = doJSON(t, srv, http.MethodDelete, "/stores/"+st.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "store deleted successfully", e.Message)

	status, _ = doJSON(t, srv, http.MethodGet, "/stores/public/"+st.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCrossOwnerMutationForbidden(t *testing.T) {
	srv := newTestServer(t)
	_, aliceToken := register(t, srv, "0x1111111111111111111111111111111111111111")
	_, bobToken := register(t, srv, "0x2222222222222222222222222222222222222222")

	st := createStore(t, srv, aliceToken, "Alice's")

	status, e := doJSON(t, srv, http.MethodPut, "/stores/"+st.ID.String(), bobToken, map[string]string{"name": "Bob's now"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.False(t, e.Success)

	status, _ = doJSON(t, srv, http.MethodDelete, "/stores/"+st.ID.String(), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Bob creating a product in Alice's store is rejected too
	status, _ = doJSON(t, srv, http.MethodPost, "/products", bobToken, map[string]any{
		"name":              "Sneaky",
		"short_description": "x",
		"store_id":          st.ID.String(),
	})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestInvalidIDsAreBadRequests(t *testing.T) {
	srv := newTestServer(t)
	_, token := register(t, srv, "0x1111111111111111111111111111111111111111")

	status, _ := doJSON(t, srv, http.MethodGet, "/stores/public/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, srv, http.MethodDelete, "/products/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMultipartCreateWithImage(t *testing.T) {
	srv := newTestServer(t)
	_, token := register(t, srv, "0x1111111111111111111111111111111111111111")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "Gadget Garden"))
	require.NoError(t, w.WriteField("short_description", "gadgets"))
	fw, err := w.CreateFormFile("image", "logo.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake png bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/stores", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var e env
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	var st models.Store
	require.NoError(t, json.Unmarshal(e.Data, &st))
	assert.Contains(t, st.ImageURL, "/uploads/")
	assert.True(t, strings.HasSuffix(st.ImageURL, "-logo.png"), st.ImageURL)
}

func TestChatFlow(t *testing.T) {
	srv := newTestServer(t)
	_, sellerToken := register(t, srv, "0x1111111111111111111111111111111111111111")
	_, buyerToken := register(t, srv, "0x2222222222222222222222222222222222222222")

	st := createStore(t, srv, sellerToken, "Lamps")
	p := createProduct(t, srv, sellerToken, st.ID.String())

	// Seller cannot open a conversation on their own product
	status, _ := doJSON(t, srv, http.MethodPost, "/chat/send", sellerToken, map[string]string{
		"product_id": p.ID.String(),
		"message":    "hello me",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Buyer sends, both sides see it
	status, e := doJSON(t, srv, http.MethodPost, "/chat/send", buyerToken, map[string]string{
		"product_id": p.ID.String(),
		"message":    "is this available?",
	})
	require.Equal(t, http.StatusCreated, status)
	var sent models.Message
	require.NoError(t, json.Unmarshal(e.Data, &sent))
	assert.NotEmpty(t, sent.ID)

	for _, token := range []string{buyerToken, sellerToken} {
		status, e := doJSON(t, srv, http.MethodGet, "/chat/product/"+p.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, status)
		var msgs []models.Message
		require.NoError(t, json.Unmarshal(e.Data, &msgs))
		require.Len(t, msgs, 1)
		assert.Equal(t, "is this available?", msgs[0].Body)
	}

	// A third party sees an empty conversation
	_, strangerToken := register(t, srv, "0x3333333333333333333333333333333333333333")
	status, e = doJSON(t, srv, http.MethodGet, "/chat/product/"+p.ID.String(), strangerToken, nil)
	require.Equal(t, http.StatusOK, status)
	var msgs []models.Message
	require.NoError(t, json.Unmarshal(e.Data, &msgs))
	assert.Empty(t, msgs)
}

func TestWebsocketReceivesLiveMessage(t *testing.T) {
	srv := newTestServer(t)
	_, sellerToken := register(t, srv, "0x1111111111111111111111111111111111111111")
	_, buyerToken := register(t, srv, "0x2222222222222222222222222222222222222222")

	st := createStore(t, srv, sellerToken, "Lamps")
	p := createProduct(t, srv, sellerToken, st.ID.String())

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"/ws/product/" + p.ID.String() + "?token=" + sellerToken
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Wait until the subscription is registered before sending
	require.Eventually(t, func() bool {
		r, err := srv.Client().Get(srv.URL + "/stats")
		if err != nil {
			return false
		}
		defer r.Body.Close()
		var stats struct {
			LiveSubscribers int `json:"live_subscribers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&stats); err != nil {
			return false
		}
		return stats.LiveSubscribers == 1
	}, 2*time.Second, 10*time.Millisecond)

	status, _ := doJSON(t, srv, http.MethodPost, "/chat/send", buyerToken, map[string]string{
		"product_id": p.ID.String(),
		"message":    "ping over the wire",
	})
	require.Equal(t, http.StatusCreated, status)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.Message
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "ping over the wire", got.Body)
	assert.Equal(t, p.ID.String(), got.ProductID)
}

func TestWebsocketUnknownProduct(t *testing.T) {
	srv := newTestServer(t)
	_, token := register(t, srv, "0x1111111111111111111111111111111111111111")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"/ws/product/91f0a7ce-0000-7000-8000-000000000000?token=" + token
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthAndStats(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)

	_, token := register(t, srv, "0x1111111111111111111111111111111111111111")
	createStore(t, srv, token, "Lamps")

	r2, err := srv.Client().Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer r2.Body.Close()
	var stats struct {
		TotalUsers  int64 `json:"total_users"`
		TotalStores int64 `json:"total_stores"`
	}
	require.NoError(t, json.NewDecoder(r2.Body).Decode(&stats))
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalStores)
}

func TestPriceValidationOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	_, token := register(t, srv, "0x1111111111111111111111111111111111111111")
	st := createStore(t, srv, token, "Lamps")

	status, e := doJSON(t, srv, http.MethodPost, "/products", token, map[string]any{
		"name":              "Lamp",
		"short_description": "a lamp",
		"store_id":          st.ID.String(),
		"price":             -1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, e.Message, "price")
}

func TestCollectionScopedRoutes(t *testing.T) {
	srv := newTestServer(t)
	_, token := register(t, srv, "0x1111111111111111111111111111111111111111")
	st := createStore(t, srv, token, "Lamps")

	status, e := doJSON(t, srv, http.MethodPost, "/collections", token, map[string]any{
		"name":              "Desk Lamps",
		"short_description": "for desks",
		"store_id":          st.ID.String(),
	})
	require.Equal(t, http.StatusCreated, status)
	var col models.Collection
	require.NoError(t, json.Unmarshal(e.Data, &col))
	assert.Equal(t, "Lamps", col.StoreName)

	status, e = doJSON(t, srv, http.MethodGet, "/collections/public/store/"+st.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, status)
	var cols []models.Collection
	require.NoError(t, json.Unmarshal(e.Data, &cols))
	require.Len(t, cols, 1)

	status, e = doJSON(t, srv, http.MethodGet, "/collections/store/"+st.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(e.Data, &cols))
	assert.Len(t, cols, 1)
}

func TestRouteMessageForMissingProduct(t *testing.T) {
	srv := newTestServer(t)
	_, token := register(t, srv, "0x1111111111111111111111111111111111111111")

	status, e := doJSON(t, srv, http.MethodPost, "/chat/send", token, map[string]string{
		"product_id": "91f0a7ce-0000-7000-8000-000000000000",
		"message":    "anyone there?",
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "product not found", e.Message)
}
