package models

import (
	"errors"
	"testing"

	"opengym/internal/apperr"
)

func strPtr(s string) *string { return &s }

func TestNewsBulletin_Validate(t *testing.T) {
	cases := []struct {
		name string
		b    NewsBulletin
		msg  string
	}{
		{
			name: "no image",
			b:    NewsBulletin{Level: BulletinFirst, NewsItem: &NewsItem{Title: "title", ShortText: strPtr("short_text")}},
			msg:  "news item : title needs to have an image in order to become a bulletin",
		},
		{
			name: "no short text",
			b:    NewsBulletin{Level: BulletinFirst, NewsItem: &NewsItem{Title: "title", ImageURL: strPtr("https://img/x.jpg")}},
			msg:  "news item : title needs to have a short_text in order to become a bulletin",
		},
		{
			name: "bad level",
			b:    NewsBulletin{Level: 4, NewsItem: &NewsItem{Title: "t", ShortText: strPtr("s"), ImageURL: strPtr("i")}},
			msg:  "bulletin level 4 does not exist",
		},
		{
			name: "ok",
			b:    NewsBulletin{Level: BulletinThird, NewsItem: &NewsItem{Title: "t", ShortText: strPtr("s"), ImageURL: strPtr("i")}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.b.Validate()
			if tc.msg == "" {
				if err != nil {
					t.Fatalf("unexpected %v", err)
				}
				return
			}
			var ve *apperr.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("want validation error, got %v", err)
			}
			if ve.Message != tc.msg {
				t.Fatalf("message %q, want %q", ve.Message, tc.msg)
			}
		})
	}
}

func TestBuildingDay_SubscribeIdempotent(t *testing.T) {
	b := &BuildingDay{}
	if !b.SubscribeUser(1) {
		t.Fatal("first subscribe not applied")
	}
	if b.SubscribeUser(1) {
		t.Fatal("second subscribe reported a change")
	}
	if len(b.SubscribedIDs) != 1 {
		t.Fatalf("subscribed %v", b.SubscribedIDs)
	}
	if err := b.UnsubscribeUser(2); !errors.Is(err, apperr.ErrNotSubscribed) {
		t.Fatalf("got %v", err)
	}
}
