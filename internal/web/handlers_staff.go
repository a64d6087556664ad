package web

import (
	"strings"
	"time"

	"opengym/internal/models"

	"github.com/gofiber/fiber/v2"
)

type newsForm struct {
	Title           string `form:"title" validate:"required,max=200"`
	Text            string `form:"text" validate:"required"`
	ShortText       string `form:"short_text" validate:"max=500"`
	ImageURL        string `form:"image_url" validate:"omitempty,url"`
	PublicationDate string `form:"publication_date" validate:"omitempty,datetime=2006-01-02"`
}

type bulletinForm struct {
	Level      int16 `form:"bulletin_level" validate:"min=1,max=3"`
	NewsItemID int64 `form:"news_item_id" validate:"required,min=1"`
}

type eventForm struct {
	Name            string `form:"event_name" validate:"required,max=200"`
	Description     string `form:"description"`
	Date            string `form:"date" validate:"required,datetime=2006-01-02"`
	Time            string `form:"time" validate:"required,datetime=15:04"`
	DurationMinutes int    `form:"duration_minutes" validate:"required,min=1"`
	Link            string `form:"link" validate:"omitempty,url"`
}

type buildingDayForm struct {
	Description     string `form:"description" validate:"required"`
	Date            string `form:"date" validate:"required,datetime=2006-01-02"`
	Time            string `form:"time" validate:"required,datetime=15:04"`
	DurationMinutes int    `form:"duration_minutes" validate:"required,min=1"`
}

// StaffPage holds the forms for news, bulletins, events and building days.
func (h *Handler) StaffPage(c *fiber.Ctx) error {
	if !viewer(c).IsStaff {
		return c.Redirect("/not-permitted", fiber.StatusSeeOther)
	}
	items, err := h.news.LatestItems(c.UserContext(), 20)
	if err != nil {
		return h.internal(c, err)
	}
	return h.page(c, "staff", fiber.Map{"NewsItems": items, "Levels": models.BulletinLevels})
}

func (h *Handler) CreateNews(c *fiber.Ctx) error {
	var form newsForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	if errs := h.check(form); len(errs) > 0 {
		return h.staffErrors(c, errs)
	}
	item := &models.NewsItem{Title: strings.TrimSpace(form.Title), Text: form.Text}
	if s := strings.TrimSpace(form.ShortText); s != "" {
		item.ShortText = &s
	}
	if form.ImageURL != "" {
		item.ImageURL = &form.ImageURL
	}
	if form.PublicationDate != "" {
		item.PublicationDate, _ = time.ParseInLocation("2006-01-02", form.PublicationDate, h.loc)
	}
	if err := h.news.CreateItem(c.UserContext(), viewer(c), item); err != nil {
		return h.staffFail(c, err)
	}
	return c.Redirect("/staff", fiber.StatusSeeOther)
}

func (h *Handler) SetBulletin(c *fiber.Ctx) error {
	var form bulletinForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	if errs := h.check(form); len(errs) > 0 {
		return h.staffErrors(c, errs)
	}
	if err := h.news.SetBulletin(c.UserContext(), viewer(c), models.BulletinLevel(form.Level), form.NewsItemID); err != nil {
		return h.staffFail(c, err)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	var form eventForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	if errs := h.check(form); len(errs) > 0 {
		return h.staffErrors(c, errs)
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", form.Date+" "+form.Time, h.loc)
	if err != nil {
		return fiber.ErrBadRequest
	}
	event := &models.Event{
		Name:        strings.TrimSpace(form.Name),
		Description: form.Description,
		Start:       start,
		Duration:    models.Duration(time.Duration(form.DurationMinutes) * time.Minute),
	}
	if form.Link != "" {
		event.Link = &form.Link
	}
	if err := h.events.CreateEvent(c.UserContext(), viewer(c), event); err != nil {
		return h.staffFail(c, err)
	}
	return c.Redirect("/calendar", fiber.StatusSeeOther)
}

func (h *Handler) CreateBuildingDay(c *fiber.Ctx) error {
	var form buildingDayForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	if errs := h.check(form); len(errs) > 0 {
		return h.staffErrors(c, errs)
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", form.Date+" "+form.Time, h.loc)
	if err != nil {
		return fiber.ErrBadRequest
	}
	day := &models.BuildingDay{
		Description: strings.TrimSpace(form.Description),
		Start:       start,
		Duration:    models.Duration(time.Duration(form.DurationMinutes) * time.Minute),
	}
	if err := h.events.CreateBuildingDay(c.UserContext(), viewer(c), day); err != nil {
		return h.staffFail(c, err)
	}
	return c.Redirect("/calendar", fiber.StatusSeeOther)
}

// BuildingDayAction handles join_building_day and leave_building_day.
func (h *Handler) BuildingDayAction(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	if c.FormValue("leave_building_day") != "" {
		err = h.subscriptions.LeaveBuildingDay(ctx, viewer(c), id)
	} else {
		_, err = h.subscriptions.JoinBuildingDay(ctx, viewer(c), id)
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.Redirect("/building-day/"+itoa(id), fiber.StatusSeeOther)
}

func (h *Handler) BuildingDayDetail(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.events.GetBuildingDay(c.UserContext(), id)
	if err != nil {
		return h.lookupFail(c, err)
	}
	data := fiber.Map{
		"Detail":      detail,
		"Description": h.renderMarkdown(detail.Day.Description),
	}
	if v := viewer(c); v.IsAuthenticated() {
		data["IsSubscribed"] = detail.Day.UserIsSubscribed(v.ID)
	}
	return h.page(c, "building_day", data)
}

func (h *Handler) EventDetail(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	event, err := h.events.GetEvent(c.UserContext(), id)
	if err != nil {
		return h.lookupFail(c, err)
	}
	return h.page(c, "event", fiber.Map{
		"Event":       event,
		"Description": h.renderMarkdown(event.Description),
	})
}

func (h *Handler) staffErrors(c *fiber.Ctx, errs map[string]string) error {
	items, err := h.news.LatestItems(c.UserContext(), 20)
	if err != nil {
		return h.internal(c, err)
	}
	c.Status(fiber.StatusUnprocessableEntity)
	return h.page(c, "staff", fiber.Map{"NewsItems": items, "Levels": models.BulletinLevels, "Errors": errs})
}

func (h *Handler) staffFail(c *fiber.Ctx, err error) error {
	if msg, ok := validationMessage(err); ok {
		return h.staffErrors(c, map[string]string{"Form": msg})
	}
	return h.fail(c, err)
}
