package news_service

import (
	"context"
	"strings"

	"opengym/internal/apperr"
	"opengym/internal/models"
	"opengym/internal/repository"
	"opengym/internal/service"

	"go.uber.org/zap"
)

type newsService struct {
	tx   repository.Transactor
	news repository.NewsRepository
	log  *zap.Logger
}

func NewNewsService(tx repository.Transactor, news repository.NewsRepository, log *zap.Logger) service.NewsService {
	return &newsService{tx: tx, news: news, log: log}
}

func (s *newsService) CreateItem(ctx context.Context, viewer service.Viewer, item *models.NewsItem) error {
	if !viewer.IsAuthenticated() || !viewer.IsStaff {
		return apperr.Denied("only staff can publish news")
	}
	if strings.TrimSpace(item.Title) == "" {
		return apperr.Validation("title", "news item needs a title")
	}
	return s.news.CreateItem(ctx, item)
}

// SetBulletin puts the item on the landing page at level, evicting the
// bulletin that held it.
func (s *newsService) SetBulletin(ctx context.Context, viewer service.Viewer, level models.BulletinLevel, newsItemID int64) error {
	if !viewer.IsAuthenticated() || !viewer.IsStaff {
		return apperr.Denied("only staff can change bulletins")
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		item, err := s.news.GetItem(ctx, newsItemID)
		if err != nil {
			return err
		}
		bulletin := &models.NewsBulletin{Level: level, NewsItemID: item.ID, NewsItem: item}
		if err := bulletin.Validate(); err != nil {
			return err
		}
		if err := s.news.PutBulletin(ctx, bulletin); err != nil {
			return err
		}
		s.log.Info("bulletin set", zap.Int16("level", int16(level)), zap.Int64("news_item_id", item.ID))
		return nil
	})
}

func (s *newsService) Bulletins(ctx context.Context) ([]*models.NewsBulletin, error) {
	return s.news.ListBulletins(ctx)
}

func (s *newsService) LatestItems(ctx context.Context, limit int) ([]*models.NewsItem, error) {
	return s.news.ListItems(ctx, limit)
}
