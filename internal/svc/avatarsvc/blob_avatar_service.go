package avatarsvc

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/blob"
)

// BlobAvatarService implements AvatarService on a blob repository.
type BlobAvatarService struct {
	repo         blob.Repository
	interpolator draw.Interpolator
	cfg          AvatarConfig
	log          logging.Logger
}

var _ AvatarService = (*BlobAvatarService)(nil)

// NewBlobAvatarService creates the "avatars" blob repository and the service on top of it.
// Returns an error if the configured interpolator is unknown.
func NewBlobAvatarService(
	ctx context.Context,
	repoFactory blob.RepositoryFactory,
	cfg AvatarConfig,
) (*BlobAvatarService, error) {
	interpolator, err := getInterpolatorByName(cfg.Interpolator)
	if err != nil {
		return nil, fmt.Errorf("get interpolator: %w", err)
	}

	repo, err := repoFactory(ctx, "avatars", "img")
	if err != nil {
		return nil, fmt.Errorf("new avatar repository: %w", err)
	}

	return &BlobAvatarService{
		repo:         repo,
		interpolator: interpolator,
		cfg:          cfg,
		log:          logging.GetLogger("svc.avatarsvc.blob_avatar_service"),
	}, nil
}

// CheckUploadConstraints implements AvatarService.CheckUploadConstraints.
func (svc *BlobAvatarService) CheckUploadConstraints(filename string, data []byte) (string, error) {
	if int64(len(data)) > svc.cfg.MaxSize {
		return "", fmt.Errorf("%w: %d bytes", domain.ErrImageTooLarge, len(data))
	}

	ext := strings.ToLower(filepath.Ext(filename))

	mimeType, ok := imageExtTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrImageTypeNotSupported, ext)
	}

	if !hasMagic(data, mimeType) {
		return "", fmt.Errorf("%w: %q", domain.ErrImageTypeMismatch, ext)
	}

	return mimeType, nil
}

// Store implements AvatarService.Store.
func (svc *BlobAvatarService) Store(
	ctx context.Context,
	userID string,
	filename string,
	data []byte,
) (_ domain.BlobID, err error) {
	id := domain.ProfilePictureBlobID(userID)
	log := svc.log.With(logging.Group("avatar", "id", id, "filename", filename, "size", len(data)))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "avatar store failed", "error", err)
		} else {
			log.DebugContext(ctx, "avatar stored")
		}
	}()

	mimeType, err := svc.CheckUploadConstraints(filename, data)
	if err != nil {
		return "", fmt.Errorf("check upload constraints: %w", err)
	}

	scaled, err := scaleDown(data, mimeType, svc.cfg.Width, svc.interpolator)
	if err != nil {
		return "", fmt.Errorf("scale down: %w", err)
	}

	if err := svc.repo.Store(ctx, domain.NewBlob(id, scaled)); err != nil {
		return "", fmt.Errorf("store blob: %w", err)
	}

	return id, nil
}

// Fetch implements AvatarService.Fetch.
func (svc *BlobAvatarService) Fetch(ctx context.Context, userID string) (domain.ProfilePicture, error) {
	id := domain.ProfilePictureBlobID(userID)
	if !svc.repo.Exists(ctx, id) {
		return domain.ProfilePicture{}, domain.ErrNoProfilePicture
	}

	stored, err := svc.repo.Fetch(ctx, id)
	if err != nil {
		if errors.Is(err, blob.ErrBlobNotFound) {
			err = errors.Join(domain.ErrNoProfilePicture, err)
		}

		return domain.ProfilePicture{}, fmt.Errorf("fetch blob: %w", err)
	}

	mimeType, err := detectType(stored.Body)
	if err != nil {
		return domain.ProfilePicture{}, fmt.Errorf("detect type: %w", err)
	}

	return domain.ProfilePicture{UserID: userID, MIMEType: mimeType, Data: stored.Body}, nil
}

// Delete implements AvatarService.Delete.
func (svc *BlobAvatarService) Delete(ctx context.Context, userID string) error {
	if err := svc.repo.Delete(ctx, domain.ProfilePictureBlobID(userID)); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}

	return nil
}
