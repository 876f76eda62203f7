package routes

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMannequinGetUploadURL(t *testing.T) {
	store := &fakeObjectStore{uploadURL: "https://storage/x"}
	routes := NewMannequinRoutes(store, &fakeProfileStore{}, nil)

	c, rec := newAuthedContext(t, http.MethodPost, "/api/auth/mannequin/upload-url",
		`{"filename":"photo.png","contentType":"image/png","fileSize":1024}`, testProfile())

	require.NoError(t, routes.GetUploadURL(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "https://storage/x", body["uploadUrl"])
	assert.Equal(t, "users/u123/mannequin", body["filePath"])
	require.Len(t, store.signedKeys, 1)
	assert.Equal(t, "users/u123/mannequin", store.signedKeys[0])
}

func TestMannequinGetUploadURL_MissingFields(t *testing.T) {
	routes := NewMannequinRoutes(&fakeObjectStore{}, &fakeProfileStore{}, nil)

	c, rec := newAuthedContext(t, http.MethodPost, "/api/auth/mannequin/upload-url",
		`{"filename":"photo.png"}`, testProfile())

	require.NoError(t, routes.GetUploadURL(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMannequinGetUploadURL_BadExtension(t *testing.T) {
	routes := NewMannequinRoutes(&fakeObjectStore{}, &fakeProfileStore{}, nil)

	c, rec := newAuthedContext(t, http.MethodPost, "/api/auth/mannequin/upload-url",
		`{"filename":"malware.exe","contentType":"image/png","fileSize":1024}`, testProfile())

	require.NoError(t, routes.GetUploadURL(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMannequinGetUploadURL_TooLarge(t *testing.T) {
	routes := NewMannequinRoutes(&fakeObjectStore{}, &fakeProfileStore{}, nil)

	c, rec := newAuthedContext(t, http.MethodPost, "/api/auth/mannequin/upload-url",
		`{"filename":"photo.png","contentType":"image/png","fileSize":10485761}`, testProfile())

	require.NoError(t, routes.GetUploadURL(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMannequinConfirmUpload(t *testing.T) {
	store := &fakeObjectStore{exists: true, downloadURL: "https://cdn/u123/mannequin.png"}
	profiles := &fakeProfileStore{}
	routes := NewMannequinRoutes(store, profiles, nil)

	c, rec := newAuthedContext(t, http.MethodPost, "/api/auth/mannequin/confirm",
		`{"filePath":"users/u123/mannequin"}`, testProfile())

	require.NoError(t, routes.ConfirmUpload(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "https://cdn/u123/mannequin.png", body["url"])
	assert.NotEmpty(t, body["uploadedAt"])

	assert.Equal(t, "users/u123/mannequin", profiles.setPath)
	assert.Equal(t, "https://cdn/u123/mannequin.png", profiles.setURL)
}

func TestMannequinConfirmUpload_ForeignPath(t *testing.T) {
	profiles := &fakeProfileStore{}
	routes := NewMannequinRoutes(&fakeObjectStore{exists: true}, profiles, nil)

	c, rec := newAuthedContext(t, http.MethodPost, "/api/auth/mannequin/confirm",
		`{"filePath":"users/someone-else/mannequin"}`, testProfile())

	require.NoError(t, routes.ConfirmUpload(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, profiles.setPath)
}

func TestMannequinConfirmUpload_ObjectMissing(t *testing.T) {
	profiles := &fakeProfileStore{}
	routes := NewMannequinRoutes(&fakeObjectStore{exists: false}, profiles, nil)

	c, rec := newAuthedContext(t, http.MethodPost, "/api/auth/mannequin/confirm",
		`{"filePath":"users/u123/mannequin"}`, testProfile())

	require.NoError(t, routes.ConfirmUpload(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, profiles.setPath)
}

func TestGetMannequin_NoneSet(t *testing.T) {
	routes := NewMannequinRoutes(&fakeObjectStore{}, &fakeProfileStore{}, nil)

	c, rec := newAuthedContext(t, http.MethodGet, "/api/auth/mannequin", "", testProfile())

	require.NoError(t, routes.GetMannequin(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Nil(t, body["url"])
	assert.Nil(t, body["uploadedAt"])
}

func TestGetMannequin_RegeneratesURL(t *testing.T) {
	store := &fakeObjectStore{downloadURL: "https://cdn/fresh"}
	routes := NewMannequinRoutes(store, &fakeProfileStore{}, nil)

	profile := testProfile()
	path := "users/u123/mannequin"
	stale := "https://cdn/stale"
	profile.MannequinPath = &path
	profile.MannequinURL = &stale

	c, rec := newAuthedContext(t, http.MethodGet, "/api/auth/mannequin", "", profile)

	require.NoError(t, routes.GetMannequin(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "https://cdn/fresh", body["url"])
}

func TestDeleteMannequin(t *testing.T) {
	store := &fakeObjectStore{}
	profiles := &fakeProfileStore{}
	routes := NewMannequinRoutes(store, profiles, nil)

	profile := testProfile()
	path := "users/u123/mannequin"
	profile.MannequinPath = &path

	c, rec := newAuthedContext(t, http.MethodDelete, "/api/auth/mannequin/delete", "", profile)

	require.NoError(t, routes.DeleteMannequin(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, profiles.cleared)
	require.Len(t, store.deletedKeys, 1)
	assert.Equal(t, path, store.deletedKeys[0])
}

func TestDeleteMannequin_NothingToDelete(t *testing.T) {
	profiles := &fakeProfileStore{}
	routes := NewMannequinRoutes(&fakeObjectStore{}, profiles, nil)

	c, rec := newAuthedContext(t, http.MethodDelete, "/api/auth/mannequin/delete", "", testProfile())

	require.NoError(t, routes.DeleteMannequin(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, profiles.cleared)
}
