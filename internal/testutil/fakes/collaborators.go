package fakes

import (
	"context"
	"fmt"
	"io"
	"sync"

	"opengym/internal/models"
	"opengym/internal/service"
)

type Mail struct {
	To      string
	Subject string
	Body    string
}

// Mailer records every mail instead of sending it.
type Mailer struct {
	mu   sync.Mutex
	Sent []Mail
	Err  error
}

func (m *Mailer) EmailUser(_ context.Context, user *models.User, subject, body string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, Mail{To: user.Email, Subject: subject, Body: body})
	return nil
}

func (m *Mailer) Last() Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return Mail{}
	}
	return m.Sent[len(m.Sent)-1]
}

type Notifier struct {
	mu           sync.Mutex
	FullCourses  []int64
	FullSessions []int64
}

func (n *Notifier) CourseFull(_ context.Context, c *models.Course) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.FullCourses = append(n.FullCourses, c.ID)
}

func (n *Notifier) SessionFull(_ context.Context, s *models.Session) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.FullSessions = append(n.FullSessions, s.ID)
}

// ImageHost keeps uploaded images in memory.
type ImageHost struct {
	mu        sync.Mutex
	Stored    map[string][]byte
	Destroyed []string
	Folders   []string
	n         int
}

func NewImageHost() *ImageHost {
	return &ImageHost{Stored: map[string][]byte{}}
}

func (h *ImageHost) Upload(_ context.Context, folder, name string, r io.Reader) (*service.HostedImage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.n++
	publicID := fmt.Sprintf("%s/%d-%s", folder, h.n, name)
	h.Stored[publicID] = data
	return &service.HostedImage{
		PublicID: publicID,
		URL:      "https://img.test/" + publicID,
		ThumbURL: "https://img.test/thumb/" + publicID,
	}, nil
}

func (h *ImageHost) Destroy(_ context.Context, publicID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.Stored, publicID)
	h.Destroyed = append(h.Destroyed, publicID)
	return nil
}

func (h *ImageHost) DeleteFolder(_ context.Context, folder string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Folders = append(h.Folders, folder)
	return nil
}

var (
	_ service.Mailer       = (*Mailer)(nil)
	_ service.FullNotifier = (*Notifier)(nil)
	_ service.ImageHost    = (*ImageHost)(nil)
)
