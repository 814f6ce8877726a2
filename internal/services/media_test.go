package services

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mymotiv/internal/apperrors"
	"github.com/mrlokans/mymotiv/internal/database"
	mediarepo "github.com/mrlokans/mymotiv/internal/database/media"
	"github.com/mrlokans/mymotiv/internal/entities"
	"github.com/mrlokans/mymotiv/internal/storage"
)

func setupMedia(t *testing.T) (*fixture, *MediaService, *storage.LocalClient) {
	t.Helper()
	f := setup(t)
	blobs, err := storage.NewLocalClient(t.TempDir(), "/uploads")
	require.NoError(t, err)
	return f, NewMediaService(f.models, f.engine, blobs, 1024), blobs
}

func upload(t *testing.T, f *fixture, svc *MediaService, owner, name string, public bool) *entities.Media {
	t.Helper()
	content := "contents of " + name
	m, err := svc.Upload(f.ctx, owner, Upload{
		OriginalName: name,
		MimeType:     "image/png",
		Size:         int64(len(content)),
		IsPublic:     public,
		Content:      strings.NewReader(content),
	})
	require.NoError(t, err)
	return m
}

func TestMediaService_UploadStoresBlob(t *testing.T) {
	f, svc, blobs := setupMedia(t)
	owner := f.user(t, "owner")

	m := upload(t, f, svc, owner.ID, "../../sunrise.PNG", true)

	assert.Equal(t, "sunrise.PNG", m.OriginalName)
	assert.Equal(t, entities.MediaTypeImage, m.Type)
	assert.True(t, strings.HasPrefix(m.StorageKey, "media/"))
	assert.True(t, strings.HasSuffix(m.StorageKey, ".png"))
	assert.Equal(t, "/uploads/"+m.StorageKey, m.Path)
	require.NotNil(t, m.Owner)
	assert.Equal(t, "owner", m.Owner.Username)

	_, err := os.Stat(filepath.Join(blobs.Root(), filepath.FromSlash(m.StorageKey)))
	assert.NoError(t, err)

	rc, err := svc.Open(f.ctx, m.StorageKey, "")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "contents of ../../sunrise.PNG", string(body))
}

func TestMediaService_UploadRejectsOversizedFile(t *testing.T) {
	f, svc, _ := setupMedia(t)

	_, err := svc.Upload(f.ctx, "owner", Upload{
		OriginalName: "huge.mp4",
		MimeType:     "video/mp4",
		Size:         4096,
		Content:      strings.NewReader("x"),
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestMediaService_RegisterValidates(t *testing.T) {
	f, svc, _ := setupMedia(t)

	_, err := svc.Register(f.ctx, "owner", MediaInput{OriginalName: "a.txt", Path: "/x/a.txt"})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed), "mime type is required")

	m, err := svc.Register(f.ctx, "owner", MediaInput{OriginalName: "a.pdf", Path: "/x/a.pdf", MimeType: "application/pdf", Size: 10})
	require.NoError(t, err)
	assert.Equal(t, entities.MediaTypeDocument, m.Type)
	assert.Equal(t, "a.pdf", m.Filename)
	assert.False(t, m.IsPublic)
}

func TestMediaService_FilenameLimitCountsCharacters(t *testing.T) {
	f, svc, _ := setupMedia(t)

	name := strings.Repeat("ñ", entities.MaxFilenameLength-4) + ".pdf"
	m, err := svc.Register(f.ctx, "owner", MediaInput{OriginalName: name, Path: "/x/doc.pdf", MimeType: "application/pdf"})
	require.NoError(t, err)
	assert.Equal(t, name, m.OriginalName)

	_, err = svc.Register(f.ctx, "owner", MediaInput{OriginalName: "ñ" + name, Path: "/x/doc.pdf", MimeType: "application/pdf"})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestMediaService_PrivateMediaOnlyForOwner(t *testing.T) {
	f, svc, _ := setupMedia(t)
	m := upload(t, f, svc, "owner", "private.png", false)

	_, err := svc.Get(f.ctx, m.ID, "")
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	assert.Equal(t, "Access denied", apperrors.Message(err))

	got, err := svc.Get(f.ctx, m.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
}

func TestMediaService_OpenAppliesVisibility(t *testing.T) {
	f, svc, _ := setupMedia(t)
	private := upload(t, f, svc, "owner", "private.png", false)

	_, err := svc.Open(f.ctx, private.StorageKey, "")
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	_, err = svc.Open(f.ctx, private.StorageKey, "stranger")
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	rc, err := svc.Open(f.ctx, private.StorageKey, "owner")
	require.NoError(t, err)
	rc.Close()

	require.NoError(t, svc.Delete(f.ctx, "owner", private.ID))
	_, err = svc.Open(f.ctx, private.StorageKey, "owner")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = svc.Open(f.ctx, "media/unknown.png", "owner")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestMediaService_DeleteIsOwnerOnly(t *testing.T) {
	f, svc, blobs := setupMedia(t)
	m := upload(t, f, svc, "owner", "bye.png", true)

	_, err := svc.ToggleFavorite(f.ctx, "fan", m.ID)
	require.NoError(t, err)

	err = svc.Delete(f.ctx, "intruder", m.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	require.NoError(t, svc.Delete(f.ctx, "owner", m.ID))

	_, err = svc.Get(f.ctx, m.ID, "owner")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.False(t, svc.IsFavorite(f.ctx, "fan", m.ID))

	exists, err := blobs.Exists(f.ctx, m.StorageKey)
	require.NoError(t, err)
	assert.True(t, exists, "soft delete keeps the stored file")

	var stored entities.Media
	require.NoError(t, f.db(t, database.DomainMedia).First(&stored, "id = ?", m.ID).Error)
	assert.False(t, stored.IsActive)
	assert.Zero(t, stored.FavoritesCount)
}

func TestMediaService_Listings(t *testing.T) {
	f, svc, _ := setupMedia(t)
	upload(t, f, svc, "owner", "a.png", true)
	upload(t, f, svc, "owner", "b.png", false)
	popular := upload(t, f, svc, "other", "c.png", true)

	_, err := svc.ToggleFavorite(f.ctx, "fan", popular.ID)
	require.NoError(t, err)

	mine, err := svc.ListMine(f.ctx, "owner", mediarepo.ListOptions{Page: database.NewPage(1, 20)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.Total)

	public, err := svc.ListPublic(f.ctx, mediarepo.ListOptions{SortBy: "favoritesCount", Page: database.NewPage(1, 20)})
	require.NoError(t, err)
	require.Equal(t, int64(2), public.Total)
	assert.Equal(t, popular.ID, public.Items[0].ID)

	top, err := svc.ListPopular(f.ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, popular.ID, top[0].ID)
	assert.Equal(t, int64(1), top[0].FavoritesCount)
}

func TestMediaService_FavoritesArePaged(t *testing.T) {
	f, svc, _ := setupMedia(t)
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		m := upload(t, f, svc, "owner", name, true)
		_, err := svc.ToggleFavorite(f.ctx, "fan", m.ID)
		require.NoError(t, err)
	}

	page, err := svc.Favorites(f.ctx, "fan", "", database.NewPage(2, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].Media)

	videos, err := svc.Favorites(f.ctx, "fan", entities.ContentTypeVideo, database.NewPage(1, 20))
	require.NoError(t, err)
	assert.Zero(t, videos.Total)

	_, err = svc.Favorites(f.ctx, "fan", "gif", database.NewPage(1, 20))
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestTypeForMime(t *testing.T) {
	assert.Equal(t, entities.MediaTypeImage, TypeForMime("image/jpeg"))
	assert.Equal(t, entities.MediaTypeVideo, TypeForMime("video/mp4"))
	assert.Equal(t, entities.MediaTypeAudio, TypeForMime("audio/mpeg"))
	assert.Equal(t, entities.MediaTypeDocument, TypeForMime("application/pdf"))
	assert.Equal(t, entities.MediaTypeDocument, TypeForMime(""))
}
