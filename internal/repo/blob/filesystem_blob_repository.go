package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
)

var (
	ErrBytesWrittenMismatch = errors.New("bytes written mismatch")
	ErrInvalidBlobID        = errors.New("invalid blob id")
)

// FileSystemBlobRepositoryConfig holds configuration for the filesystem-based blob repository.
type FileSystemBlobRepositoryConfig struct {
	// Basedir is the root directory for blob storage
	Basedir string `env:"BASEDIR" default:"var/storage/blob"`
}

// FileSystemBlobRepositoryFactory creates a factory function that returns a new FileSystemRepository.
// The factory function implements the RepositoryFactory type.
func FileSystemBlobRepositoryFactory(cfg FileSystemBlobRepositoryConfig) RepositoryFactory {
	return func(
		ctx context.Context,
		subdir string,
		ext string,
	) (Repository, error) {
		return NewFileSystemBlobRepository(ctx, subdir, ext, cfg)
	}
}

// NewFileSystemBlobRepository creates the directory <basedir>/<subdir> and a repository
// storing one <id>.<ext> file per blob in it.
func NewFileSystemBlobRepository(
	ctx context.Context,
	subdir string,
	ext string,
	cfg FileSystemBlobRepositoryConfig,
) (*FileSystemRepository, error) {
	log := logging.GetLogger("repo.blob.filesystem_repository").With(
		logging.Group("repo",
			"basedir", cfg.Basedir,
			"subdir", subdir,
			"ext", ext,
		),
	)

	repo := &FileSystemRepository{
		dir: filepath.Join(cfg.Basedir, subdir),
		ext: ext,
		log: log,
	}

	if err := repo.initStorage(ctx); err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}

	return repo, nil
}

// FileSystemRepository implements Repository using the local filesystem.
// Writes go to a temporary file that is renamed into place.
type FileSystemRepository struct {
	dir string
	ext string
	log logging.Logger
}

var _ Repository = (*FileSystemRepository)(nil)

func (fsRepo *FileSystemRepository) initStorage(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			fsRepo.log.ErrorContext(ctx, "init storage failed", "error", err)
		} else {
			fsRepo.log.DebugContext(ctx, "init storage")
		}
	}()

	if err := os.MkdirAll(fsRepo.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir all: %w", err)
	}

	return nil
}

// GetFilename returns the full filesystem path for a blob with the given ID.
func (fsRepo *FileSystemRepository) GetFilename(id domain.BlobID) (string, error) {
	name := id.String()
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidBlobID, name)
	}

	return filepath.Join(fsRepo.dir, name+"."+fsRepo.ext), nil
}

// Exists implements Repository.Exists.
func (fsRepo *FileSystemRepository) Exists(_ context.Context, id domain.BlobID) bool {
	filename, err := fsRepo.GetFilename(id)
	if err != nil {
		return false
	}

	_, err = os.Stat(filename)

	return err == nil
}

// Store implements Repository.Store.
func (fsRepo *FileSystemRepository) Store(ctx context.Context, blob *domain.Blob) (err error) {
	filename, err := fsRepo.GetFilename(blob.ID)
	if err != nil {
		return err
	}

	defer func() {
		log := fsRepo.log.With(logging.Group("blob", "id", blob.ID, "filename", filename))
		if err != nil {
			log.ErrorContext(ctx, "blob store failed", "error", err)
		} else {
			log.DebugContext(ctx, "blob stored", "size", blob.Size())
		}
	}()

	file, err := os.CreateTemp(fsRepo.dir, "."+blob.ID.String()+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}

	tmpName := file.Name()

	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	written, err := blob.WriteTo(file)
	if err != nil {
		_ = file.Close()

		return fmt.Errorf("write: %w", err)
	}

	if err := file.Sync(); err != nil {
		_ = file.Close()

		return fmt.Errorf("sync: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if written != blob.Size() {
		return fmt.Errorf("%w: expected %d, got %d", ErrBytesWrittenMismatch, blob.Size(), written)
	}

	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// Fetch implements Repository.Fetch.
func (fsRepo *FileSystemRepository) Fetch(ctx context.Context, id domain.BlobID) (blob *domain.Blob, err error) {
	filename, err := fsRepo.GetFilename(id)
	if err != nil {
		return nil, err
	}

	defer func() {
		log := fsRepo.log.With(logging.Group("blob", "id", id, "filename", filename))
		if err != nil {
			log.DebugContext(ctx, "blob fetch failed", "error", err)
		} else {
			log.DebugContext(ctx, "blob fetched", "size", blob.Size())
		}
	}()

	body, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = errors.Join(ErrBlobNotFound, err)
		}

		return nil, fmt.Errorf("read file: %w", err)
	}

	return domain.NewBlob(id, body), nil
}

// Delete implements Repository.Delete.
func (fsRepo *FileSystemRepository) Delete(ctx context.Context, id domain.BlobID) (err error) {
	filename, err := fsRepo.GetFilename(id)
	if err != nil {
		return err
	}

	defer func() {
		log := fsRepo.log.With(logging.Group("blob", "id", id, "filename", filename))
		if err != nil {
			log.ErrorContext(ctx, "blob delete failed", "error", err)
		} else {
			log.DebugContext(ctx, "blob deleted")
		}
	}()

	if err := os.Remove(filename); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}

	return nil
}
