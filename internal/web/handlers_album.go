package web

import (
	"io"

	"opengym/internal/apperr"
	"opengym/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Albums(c *fiber.Ctx) error {
	albums, err := h.albums.ListAlbums(c.UserContext())
	if err != nil {
		return h.internal(c, err)
	}
	return h.page(c, "albums", fiber.Map{"Albums": albums})
}

func (h *Handler) AlbumDetail(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	album, err := h.albums.GetAlbum(c.UserContext(), id)
	if err != nil {
		return h.lookupFail(c, err)
	}
	return h.page(c, "album", fiber.Map{"Album": album})
}

func (h *Handler) NewAlbumPage(c *fiber.Ctx) error {
	if !viewer(c).IsStaff {
		return c.Redirect("/not-permitted", fiber.StatusSeeOther)
	}
	return h.page(c, "album_form", nil)
}

// CreateAlbum takes a multipart form with title, description and one or
// more "images" files.
func (h *Handler) CreateAlbum(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fiber.ErrBadRequest
	}
	title := c.FormValue("title")
	description := c.FormValue("description")

	var (
		uploads []service.Upload
		opened  []io.Closer
	)
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			return h.internal(c, err)
		}
		opened = append(opened, f)
		uploads = append(uploads, service.Upload{Name: fh.Filename, Reader: f})
	}

	album, err := h.albums.CreateAlbum(c.UserContext(), viewer(c), title, description, uploads)
	if err != nil {
		data := fiber.Map{"Title": title, "Description": description}
		return h.formFail(c, "album_form", data, err)
	}
	return c.Redirect("/album/"+itoa(album.ID), fiber.StatusSeeOther)
}

// AlbumAction handles delete_album, delete_image=<id>, set_cover=<id> and
// favourite=on|off.
func (h *Handler) AlbumAction(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	v := viewer(c)

	if c.FormValue("delete_album") != "" {
		if err := h.albums.DeleteAlbum(ctx, v, id); err != nil {
			return h.fail(c, err)
		}
		return c.Redirect("/albums", fiber.StatusSeeOther)
	}

	if imageID, ok := formID(c, "delete_image"); ok {
		err = h.albums.DeleteImage(ctx, v, imageID)
	} else if imageID, ok := formID(c, "set_cover"); ok {
		err = h.albums.SetCover(ctx, v, id, imageID)
	} else if fav := c.FormValue("favourite"); fav != "" {
		err = h.albums.SetFavourite(ctx, v, id, fav == "on")
	} else {
		err = apperr.Denied("unknown album action")
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.Redirect("/album/"+itoa(id), fiber.StatusSeeOther)
}
