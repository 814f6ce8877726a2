package services

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/mrlokans/mymotiv/internal/apperrors"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/database/media"
	"github.com/mrlokans/mymotiv/internal/database/users"
	"github.com/mrlokans/mymotiv/internal/entities"
	"github.com/mrlokans/mymotiv/internal/favorites"
	"github.com/mrlokans/mymotiv/internal/logging"
	"github.com/mrlokans/mymotiv/internal/storage"
	"github.com/mrlokans/mymotiv/internal/utils"
)

const uploadPrefix = "media"

// MediaInput registers a file that already lives somewhere reachable.
type MediaInput struct {
	OriginalName string             `json:"originalName"`
	Filename     string             `json:"filename"`
	Path         string             `json:"path"`
	MimeType     string             `json:"mimeType"`
	Size         int64              `json:"size"`
	Type         entities.MediaType `json:"type"`
	IsPublic     bool               `json:"isPublic"`
}

// Upload is a file received from a client.
type Upload struct {
	OriginalName string
	MimeType     string
	Size         int64
	IsPublic     bool
	Content      io.Reader
}

type MediaService struct {
	models    database.Resolver
	favorites *favorites.Engine
	blobs     storage.Client
	maxSize   int64
}

func NewMediaService(models database.Resolver, engine *favorites.Engine, blobs storage.Client, maxUploadSize int64) *MediaService {
	return &MediaService{
		models:    models,
		favorites: engine,
		blobs:     blobs,
		maxSize:   maxUploadSize,
	}
}

func (s *MediaService) repo(ctx context.Context) (*media.Repository, error) {
	db, err := s.models.DB(ctx, database.DomainMedia)
	if err != nil {
		return nil, err
	}
	return media.NewRepository(db), nil
}

// Register records media metadata for userID.
func (s *MediaService) Register(ctx context.Context, userID string, in MediaInput) (*entities.Media, error) {
	return s.create(ctx, userID, in, "")
}

func (s *MediaService) create(ctx context.Context, userID string, in MediaInput, storageKey string) (*entities.Media, error) {
	if in.Type == "" {
		in.Type = TypeForMime(in.MimeType)
	}
	if in.Filename == "" {
		in.Filename = path.Base(in.Path)
	}
	m := &entities.Media{
		UserID:       userID,
		OriginalName: strings.TrimSpace(in.OriginalName),
		Filename:     strings.TrimSpace(in.Filename),
		Path:         strings.TrimSpace(in.Path),
		StorageKey:   storageKey,
		MimeType:     strings.TrimSpace(in.MimeType),
		Size:         in.Size,
		Type:         in.Type,
		IsPublic:     in.IsPublic,
		IsActive:     true,
	}
	if err := validateMedia(m); err != nil {
		return nil, err
	}

	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	if err := repo.Create(m); err != nil {
		return nil, err
	}
	s.attachOwners(ctx, []*entities.Media{m})
	return m, nil
}

// Upload stores the file in the blob store and records it. The blob is
// removed again if the metadata cannot be saved.
func (s *MediaService) Upload(ctx context.Context, userID string, up Upload) (*entities.Media, error) {
	if up.Content == nil {
		return nil, apperrors.Validation("File is required")
	}
	if s.maxSize > 0 && up.Size > s.maxSize {
		return nil, apperrors.Validation("File exceeds the maximum upload size of %d bytes", s.maxSize)
	}
	if s.blobs == nil {
		return nil, apperrors.New(apperrors.ErrNotConnected, "Media storage is not configured")
	}

	name := utils.SanitizeFilename(up.OriginalName)
	key := storage.NewKey(uploadPrefix, name)
	obj, err := s.blobs.Put(ctx, key, up.Content, up.MimeType)
	if err != nil {
		return nil, apperrors.Internal("store upload", err)
	}

	m, err := s.create(ctx, userID, MediaInput{
		OriginalName: name,
		Filename:     path.Base(obj.Key),
		Path:         obj.URL,
		MimeType:     up.MimeType,
		Size:         obj.Size,
		IsPublic:     up.IsPublic,
	}, obj.Key)
	if err != nil {
		s.removeBlob(ctx, obj.Key)
		return nil, err
	}
	return m, nil
}

// Open streams the blob behind active media. Private media is only
// readable by its owner.
func (s *MediaService) Open(ctx context.Context, key, viewerID string) (io.ReadCloser, error) {
	if s.blobs == nil || key == "" {
		return nil, apperrors.NotFound("File")
	}
	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	m, err := repo.GetByStorageKey(key)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NotFound("File")
	}
	if err != nil {
		return nil, err
	}
	if !m.IsPublic && m.UserID != viewerID {
		return nil, apperrors.Forbidden("Access denied")
	}

	rc, err := s.blobs.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, apperrors.NotFound("File")
		}
		return nil, apperrors.Internal("open upload", err)
	}
	return rc, nil
}

// Get returns active media. Private media is only visible to its owner.
func (s *MediaService) Get(ctx context.Context, id, viewerID string) (*entities.Media, error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	m, err := repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !m.IsPublic && m.UserID != viewerID {
		return nil, apperrors.Forbidden("Access denied")
	}
	s.attachOwners(ctx, []*entities.Media{m})
	return m, nil
}

func (s *MediaService) ListMine(ctx context.Context, userID string, opts media.ListOptions) (database.Paginated[entities.Media], error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return database.Paginated[entities.Media]{}, err
	}
	result, err := repo.ListByUser(userID, opts)
	if err != nil {
		return result, err
	}
	s.attachOwnersTo(ctx, result.Items)
	return result, nil
}

func (s *MediaService) ListPublic(ctx context.Context, opts media.ListOptions) (database.Paginated[entities.Media], error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return database.Paginated[entities.Media]{}, err
	}
	result, err := repo.ListPublic(opts)
	if err != nil {
		return result, err
	}
	s.attachOwnersTo(ctx, result.Items)
	return result, nil
}

func (s *MediaService) ListPopular(ctx context.Context, minFavorites int64, limit int) ([]entities.Media, error) {
	if limit < 1 || limit > database.MaxPageSize {
		limit = 10
	}
	if minFavorites < 0 {
		minFavorites = 0
	}
	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	items, err := repo.ListPopular(minFavorites, limit)
	if err != nil {
		return nil, err
	}
	s.attachOwnersTo(ctx, items)
	return items, nil
}

// Delete soft-deletes media owned by userID, deactivating its favorites in
// the same transaction. The stored file is kept.
func (s *MediaService) Delete(ctx context.Context, userID, id string) error {
	repo, err := s.repo(ctx)
	if err != nil {
		return err
	}
	m, err := repo.GetByID(id)
	if err != nil {
		return err
	}
	if m.UserID != userID {
		return apperrors.Forbidden("Access denied")
	}
	return s.favorites.DeleteTarget(ctx, favorites.KindMedia, userID, id)
}

func (s *MediaService) ToggleFavorite(ctx context.Context, userID, id string) (favorites.Result, error) {
	return s.favorites.Toggle(ctx, favorites.KindMedia, userID, id)
}

func (s *MediaService) IsFavorite(ctx context.Context, userID, id string) bool {
	return s.favorites.IsFavorite(ctx, favorites.KindMedia, userID, id)
}

// Favorites returns one page of the user's favorited media, newest first.
func (s *MediaService) Favorites(ctx context.Context, userID string, contentType entities.ContentType, page database.Page) (database.Paginated[entities.Favorite], error) {
	if contentType != "" && !contentType.Valid() {
		return database.Paginated[entities.Favorite]{}, apperrors.Validation("Invalid content type %q", contentType)
	}
	all, err := s.favorites.List(ctx, favorites.KindMedia, userID, contentType)
	if err != nil {
		return database.Paginated[entities.Favorite]{}, err
	}

	result := database.Paginated[entities.Favorite]{Page: page, Total: int64(len(all)), Items: []entities.Favorite{}}
	start := page.Offset()
	if start < len(all) {
		end := min(start+page.Size, len(all))
		result.Items = all[start:end]
	}

	targets := make([]*entities.Media, 0, len(result.Items))
	for i := range result.Items {
		if result.Items[i].Media != nil {
			targets = append(targets, result.Items[i].Media)
		}
	}
	s.attachOwners(ctx, targets)
	return result, nil
}

func (s *MediaService) attachOwnersTo(ctx context.Context, items []entities.Media) {
	ptrs := make([]*entities.Media, len(items))
	for i := range items {
		ptrs[i] = &items[i]
	}
	s.attachOwners(ctx, ptrs)
}

// attachOwners fills in the owner's public profile from the auth domain.
// Missing owners leave the field empty.
func (s *MediaService) attachOwners(ctx context.Context, items []*entities.Media) {
	if len(items) == 0 {
		return
	}
	ids := make([]string, 0, len(items))
	for _, m := range items {
		ids = append(ids, m.UserID)
	}
	db, err := s.models.DB(ctx, database.DomainAuth)
	if err != nil {
		logging.Warn().Err(err).Msg("media owners not populated")
		return
	}
	summaries, err := users.NewRepository(db).GetSummaries(ids)
	if err != nil {
		logging.Warn().Err(err).Msg("media owners not populated")
		return
	}
	for _, m := range items {
		if owner, ok := summaries[m.UserID]; ok {
			m.Owner = &owner
		}
	}
}

func (s *MediaService) removeBlob(ctx context.Context, key string) {
	if s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("failed to remove stored file")
	}
}

// TypeForMime classifies a MIME type; anything unrecognised is a document.
func TypeForMime(mime string) entities.MediaType {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return entities.MediaTypeImage
	case strings.HasPrefix(mime, "video/"):
		return entities.MediaTypeVideo
	case strings.HasPrefix(mime, "audio/"):
		return entities.MediaTypeAudio
	default:
		return entities.MediaTypeDocument
	}
}

func validateMedia(m *entities.Media) error {
	switch {
	case m.OriginalName == "" || utf8.RuneCountInString(m.OriginalName) > entities.MaxFilenameLength:
		return apperrors.Validation("Original name must be 1 to %d characters", entities.MaxFilenameLength)
	case m.Filename == "" || utf8.RuneCountInString(m.Filename) > entities.MaxFilenameLength:
		return apperrors.Validation("Filename must be 1 to %d characters", entities.MaxFilenameLength)
	case m.Path == "":
		return apperrors.Validation("Path is required")
	case m.MimeType == "":
		return apperrors.Validation("MIME type is required")
	case m.Size < 0:
		return apperrors.Validation("Size cannot be negative")
	case !m.Type.Valid():
		return apperrors.Validation("Type must be image, video, audio or document")
	}
	return nil
}
