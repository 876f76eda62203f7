package routes

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tryon-service/pkg/errors"
	"tryon-service/pkg/repository"
)

func TestWardrobeGetUploadURL(t *testing.T) {
	store := &fakeObjectStore{uploadURL: "https://storage/w"}
	routes := NewWardrobeRoutes(store, &fakeWardrobeStore{}, nil)

	c, rec := newAuthedContext(t, http.MethodPost, "/api/auth/wardrobe/upload-url",
		`{"category":"top","filename":"shirt.JPG","contentType":"image/jpeg","fileSize":2048}`, testProfile())

	require.NoError(t, routes.GetUploadURL(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "https://storage/w", body["uploadUrl"])

	itemID, ok := body["itemId"].(string)
	require.True(t, ok)
	_, err := uuid.Parse(itemID)
	assert.NoError(t, err)

	filePath, ok := body["filePath"].(string)
	require.True(t, ok)
	assert.Equal(t, "users/u123/wardrobe/tops/"+itemID+".jpg", filePath)
}

func TestWardrobeGetUploadURL_InvalidCategory(t *testing.T) {
	routes := NewWardrobeRoutes(&fakeObjectStore{}, &fakeWardrobeStore{}, nil)

	c, rec := newAuthedContext(t, http.MethodPost, "/api/auth/wardrobe/upload-url",
		`{"category":"hat","filename":"hat.png","contentType":"image/png","fileSize":2048}`, testProfile())

	require.NoError(t, routes.GetUploadURL(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWardrobeGetUploadURL_FreshIDPerTicket(t *testing.T) {
	store := &fakeObjectStore{uploadURL: "https://storage/w"}
	routes := NewWardrobeRoutes(store, &fakeWardrobeStore{}, nil)

	reqBody := `{"category":"top","filename":"shirt.png","contentType":"image/png","fileSize":2048}`

	c1, rec1 := newAuthedContext(t, http.MethodPost, "/api/auth/wardrobe/upload-url", reqBody, testProfile())
	require.NoError(t, routes.GetUploadURL(c1))
	c2, rec2 := newAuthedContext(t, http.MethodPost, "/api/auth/wardrobe/upload-url", reqBody, testProfile())
	require.NoError(t, routes.GetUploadURL(c2))

	first := decodeBody(t, rec1)["itemId"]
	second := decodeBody(t, rec2)["itemId"]
	assert.NotEqual(t, first, second)
}

func TestWardrobeConfirmUpload(t *testing.T) {
	store := &fakeObjectStore{exists: true, downloadURL: "https://cdn/item.png"}
	wardrobe := &fakeWardrobeStore{}
	routes := NewWardrobeRoutes(store, wardrobe, nil)

	itemID := uuid.New()
	filePath := "users/u123/wardrobe/tops/" + itemID.String() + ".png"

	c, rec := newAuthedContext(t, http.MethodPost, "/api/auth/wardrobe/confirm",
		`{"itemId":"`+itemID.String()+`","filePath":"`+filePath+`"}`, testProfile())

	require.NoError(t, routes.ConfirmUpload(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	item, ok := body["item"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, itemID.String(), item["id"])
	assert.Equal(t, "top", item["category"])
	assert.Equal(t, "https://cdn/item.png", item["url"])

	require.NotNil(t, wardrobe.created)
	assert.Equal(t, "top", wardrobe.created.Category)
	assert.Equal(t, filePath, wardrobe.created.ImagePath)
}

func TestWardrobeConfirmUpload_ForeignPath(t *testing.T) {
	wardrobe := &fakeWardrobeStore{}
	routes := NewWardrobeRoutes(&fakeObjectStore{exists: true}, wardrobe, nil)

	itemID := uuid.New()

	c, rec := newAuthedContext(t, http.MethodPost, "/api/auth/wardrobe/confirm",
		`{"itemId":"`+itemID.String()+`","filePath":"users/intruder/wardrobe/tops/`+itemID.String()+`.png"}`, testProfile())

	require.NoError(t, routes.ConfirmUpload(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, wardrobe.created)
}

func TestWardrobeConfirmUpload_BadItemID(t *testing.T) {
	routes := NewWardrobeRoutes(&fakeObjectStore{exists: true}, &fakeWardrobeStore{}, nil)

	c, rec := newAuthedContext(t, http.MethodPost, "/api/auth/wardrobe/confirm",
		`{"itemId":"not-a-uuid","filePath":"users/u123/wardrobe/tops/x.png"}`, testProfile())

	require.NoError(t, routes.ConfirmUpload(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWardrobeConfirmUpload_ObjectMissing(t *testing.T) {
	wardrobe := &fakeWardrobeStore{}
	routes := NewWardrobeRoutes(&fakeObjectStore{exists: false}, wardrobe, nil)

	itemID := uuid.New()

	c, rec := newAuthedContext(t, http.MethodPost, "/api/auth/wardrobe/confirm",
		`{"itemId":"`+itemID.String()+`","filePath":"users/u123/wardrobe/bottoms/`+itemID.String()+`.png"}`, testProfile())

	require.NoError(t, routes.ConfirmUpload(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, wardrobe.created)
}

func wardrobeFixture(profileID int64) []repository.WardrobeItem {
	return []repository.WardrobeItem{
		{ID: uuid.New(), ProfileID: profileID, Category: "top", ImagePath: "p1", ImageURL: "u1", UploadedAt: time.Now()},
		{ID: uuid.New(), ProfileID: profileID, Category: "bottom", ImagePath: "p2", ImageURL: "u2", UploadedAt: time.Now().Add(-time.Hour)},
	}
}

func TestWardrobeListItems(t *testing.T) {
	store := &fakeObjectStore{downloadURL: "https://cdn/fresh"}
	wardrobe := &fakeWardrobeStore{items: wardrobeFixture(1)}
	routes := NewWardrobeRoutes(store, wardrobe, nil)

	c, rec := newAuthedContext(t, http.MethodGet, "/api/auth/wardrobe", "", testProfile())

	require.NoError(t, routes.ListItems(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["count"])

	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)

	first := items[0].(map[string]any)
	assert.Equal(t, "https://cdn/fresh", first["url"])
}

func TestWardrobeListItems_CategoryFilter(t *testing.T) {
	store := &fakeObjectStore{downloadURL: "https://cdn/fresh"}
	wardrobe := &fakeWardrobeStore{items: wardrobeFixture(1)}
	routes := NewWardrobeRoutes(store, wardrobe, nil)

	c, rec := newAuthedContext(t, http.MethodGet, "/api/auth/wardrobe?category=top", "", testProfile())

	require.NoError(t, routes.ListItems(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["count"])
}

func TestWardrobeListItems_InvalidCategory(t *testing.T) {
	routes := NewWardrobeRoutes(&fakeObjectStore{}, &fakeWardrobeStore{}, nil)

	c, rec := newAuthedContext(t, http.MethodGet, "/api/auth/wardrobe?category=shoes", "", testProfile())

	require.NoError(t, routes.ListItems(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWardrobeDeleteItem(t *testing.T) {
	items := wardrobeFixture(1)
	store := &fakeObjectStore{}
	wardrobe := &fakeWardrobeStore{items: items}
	routes := NewWardrobeRoutes(store, wardrobe, nil)

	c, rec := newAuthedContext(t, http.MethodDelete, "/api/auth/wardrobe/"+items[0].ID.String(), "", testProfile())
	c.SetParamNames("itemId")
	c.SetParamValues(items[0].ID.String())

	require.NoError(t, routes.DeleteItem(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.True(t, strings.Contains(body["message"].(string), "deleted"))

	require.Len(t, wardrobe.deleted, 1)
	assert.Equal(t, items[0].ID, wardrobe.deleted[0])
	require.Len(t, store.deletedKeys, 1)
	assert.Equal(t, items[0].ImagePath, store.deletedKeys[0])
}

func TestWardrobeDeleteItem_NotOwned(t *testing.T) {
	wardrobe := &fakeWardrobeStore{getErr: apperrors.NotFound("item not found or does not belong to user")}
	routes := NewWardrobeRoutes(&fakeObjectStore{}, wardrobe, nil)

	itemID := uuid.New()
	c, rec := newAuthedContext(t, http.MethodDelete, "/api/auth/wardrobe/"+itemID.String(), "", testProfile())
	c.SetParamNames("itemId")
	c.SetParamValues(itemID.String())

	require.NoError(t, routes.DeleteItem(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, wardrobe.deleted)
}

func TestWardrobeDeleteItem_BadID(t *testing.T) {
	routes := NewWardrobeRoutes(&fakeObjectStore{}, &fakeWardrobeStore{}, nil)

	c, rec := newAuthedContext(t, http.MethodDelete, "/api/auth/wardrobe/nope", "", testProfile())
	c.SetParamNames("itemId")
	c.SetParamValues("nope")

	require.NoError(t, routes.DeleteItem(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
