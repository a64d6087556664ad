package news_service

import (
	"context"
	"errors"
	"testing"

	"opengym/internal/apperr"
	"opengym/internal/models"
	"opengym/internal/testutil/fakes"

	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

var staff = &models.User{ID: 1, IsStaff: true}

func TestSetBulletin_EvictsPreviousHolder(t *testing.T) {
	store := fakes.NewStore()
	svc := NewNewsService(store, fakes.NewsRepo{Store: store}, zap.NewNop())
	ctx := context.Background()

	first := &models.NewsItem{Title: "Zomerkamp", ShortText: strPtr("kort"), ImageURL: strPtr("https://img/1")}
	second := &models.NewsItem{Title: "Open dag", ShortText: strPtr("kort"), ImageURL: strPtr("https://img/2")}
	for _, item := range []*models.NewsItem{first, second} {
		if err := svc.CreateItem(ctx, staff, item); err != nil {
			t.Fatal(err)
		}
	}

	if err := svc.SetBulletin(ctx, staff, models.BulletinFirst, first.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetBulletin(ctx, staff, models.BulletinFirst, second.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetBulletin(ctx, staff, models.BulletinThird, first.ID); err != nil {
		t.Fatal(err)
	}

	bulletins, err := svc.Bulletins(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(bulletins) != 2 {
		t.Fatalf("want 2 bulletins, got %d", len(bulletins))
	}
	if bulletins[0].Level != models.BulletinFirst || bulletins[0].NewsItem.Title != "Open dag" {
		t.Fatalf("level 1 holds %+v", bulletins[0].NewsItem)
	}
	if bulletins[1].Level != models.BulletinThird || bulletins[1].NewsItemID != first.ID {
		t.Fatalf("level 3 holds %d", bulletins[1].NewsItemID)
	}
}

func TestSetBulletin_Rejections(t *testing.T) {
	store := fakes.NewStore()
	svc := NewNewsService(store, fakes.NewsRepo{Store: store}, zap.NewNop())
	ctx := context.Background()

	bare := &models.NewsItem{Title: "Zonder foto", ShortText: strPtr("kort")}
	if err := svc.CreateItem(ctx, staff, bare); err != nil {
		t.Fatal(err)
	}

	var ve *apperr.ValidationError
	if err := svc.SetBulletin(ctx, staff, models.BulletinSecond, bare.ID); !errors.As(err, &ve) || ve.Code != "missing image" {
		t.Fatalf("expected missing image, got %v", err)
	}
	if err := svc.SetBulletin(ctx, &models.User{ID: 2}, models.BulletinSecond, bare.ID); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("non-staff: %v", err)
	}
	if err := svc.CreateItem(ctx, nil, &models.NewsItem{Title: "x"}); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("anonymous: %v", err)
	}
	if len(store.Bulletins) != 0 {
		t.Fatal("a bulletin was stored")
	}
}
