package album_service

import (
	"context"
	"errors"
	"path"
	"strings"

	"opengym/internal/apperr"
	"opengym/internal/models"
	"opengym/internal/repository"
	"opengym/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type albumService struct {
	tx     repository.Transactor
	albums repository.AlbumRepository
	host   service.ImageHost
	folder string
	log    *zap.Logger
}

// NewAlbumService stores every album in its own folder below rootFolder.
func NewAlbumService(
	tx repository.Transactor,
	albums repository.AlbumRepository,
	host service.ImageHost,
	rootFolder string,
	log *zap.Logger,
) service.AlbumService {
	return &albumService{tx: tx, albums: albums, host: host, folder: rootFolder, log: log}
}

func requireStaff(viewer service.Viewer) error {
	if !viewer.IsAuthenticated() || !viewer.IsStaff {
		return apperr.Denied("only staff can manage albums")
	}
	return nil
}

// CreateAlbum uploads all files; on failure the images already uploaded are
// removed from the host again.
func (s *albumService) CreateAlbum(ctx context.Context, viewer service.Viewer, title, description string, files []service.Upload) (*models.Album, error) {
	if err := requireStaff(viewer); err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		return nil, apperr.Validation("album_name", "album needs a title")
	}
	if len(files) == 0 {
		return nil, apperr.Validation("images", "album needs at least one image")
	}

	album := &models.Album{
		Folder:      path.Join(s.folder, uuid.NewString()),
		Title:       strings.TrimSpace(title),
		Description: description,
	}
	var uploaded []string
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.albums.Create(ctx, album); err != nil {
			return err
		}
		for _, f := range files {
			hosted, err := s.host.Upload(ctx, album.Folder, f.Name, f.Reader)
			if err != nil {
				return err
			}
			uploaded = append(uploaded, hosted.PublicID)
			img := &models.Image{
				AlbumID:  album.ID,
				PublicID: hosted.PublicID,
				ImageURL: hosted.URL,
				ThumbURL: hosted.ThumbURL,
			}
			if err := s.albums.AddImage(ctx, img); err != nil {
				return err
			}
			album.Images = append(album.Images, img)
		}
		return nil
	})
	if err != nil {
		for _, id := range uploaded {
			if derr := s.host.Destroy(ctx, id); derr != nil {
				s.log.Warn("orphaned image", zap.String("public_id", id), zap.Error(derr))
			}
		}
		return nil, err
	}
	s.log.Info("album created", zap.Int64("album_id", album.ID), zap.Int("images", len(album.Images)))
	return album, nil
}

func (s *albumService) GetAlbum(ctx context.Context, id int64) (*models.Album, error) {
	return s.albums.GetByID(ctx, id)
}

func (s *albumService) ListAlbums(ctx context.Context) ([]*models.Album, error) {
	return s.albums.List(ctx)
}

func (s *albumService) Favourites(ctx context.Context) ([]*models.Album, error) {
	return s.albums.ListFavourites(ctx)
}

func (s *albumService) DeleteAlbum(ctx context.Context, viewer service.Viewer, id int64) error {
	if err := requireStaff(viewer); err != nil {
		return err
	}
	album, err := s.albums.GetByID(ctx, id)
	if err != nil {
		return err
	}
	var errs []error
	for _, img := range album.Images {
		errs = append(errs, s.host.Destroy(ctx, img.PublicID))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if err := s.host.DeleteFolder(ctx, album.Folder); err != nil {
		s.log.Warn("album folder not removed", zap.String("folder", album.Folder), zap.Error(err))
	}
	return s.albums.Delete(ctx, id)
}

func (s *albumService) DeleteImage(ctx context.Context, viewer service.Viewer, imageID int64) error {
	if err := requireStaff(viewer); err != nil {
		return err
	}
	img, err := s.albums.GetImage(ctx, imageID)
	if err != nil {
		return err
	}
	if err := s.host.Destroy(ctx, img.PublicID); err != nil {
		return err
	}
	return s.albums.DeleteImage(ctx, imageID)
}

func (s *albumService) SetCover(ctx context.Context, viewer service.Viewer, albumID, imageID int64) error {
	if err := requireStaff(viewer); err != nil {
		return err
	}
	return s.albums.SetCover(ctx, albumID, imageID)
}

func (s *albumService) SetFavourite(ctx context.Context, viewer service.Viewer, albumID int64, favourite bool) error {
	if err := requireStaff(viewer); err != nil {
		return err
	}
	return s.albums.SetFavourite(ctx, albumID, favourite)
}
