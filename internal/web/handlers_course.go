package web

import (
	"strconv"
	"strings"
	"time"

	"opengym/internal/apperr"
	"opengym/internal/export"
	"opengym/internal/models"
	"opengym/internal/service"

	"github.com/gofiber/fiber/v2"
)

type LocationFields struct {
	Short  string `form:"location_short" validate:"max=50"`
	Street string `form:"location_street" validate:"max=200"`
	Number string `form:"location_number" validate:"max=10"`
	City   string `form:"location_city" validate:"max=100"`
}

func (l LocationFields) model() models.Location {
	return models.Location{
		Short:  strings.TrimSpace(l.Short),
		Street: strings.TrimSpace(l.Street),
		Number: strings.TrimSpace(l.Number),
		City:   strings.TrimSpace(l.City),
	}
}

type courseForm struct {
	Name               string `form:"course_name" validate:"required,max=200"`
	Level              int16  `form:"course_level" validate:"min=1,max=3"`
	BuildUpSessions    bool   `form:"build_up_sessions"`
	Description        string `form:"description"`
	MaxStudentsCourse  string `form:"max_students_course" validate:"omitempty,number"`
	MaxStudentsSession string `form:"max_students_session" validate:"omitempty,number"`
	IsActive           bool   `form:"is_active"`
	LocationFields
}

func (f courseForm) apply(c *models.Course) {
	c.Name = strings.TrimSpace(f.Name)
	c.Level = models.Level(f.Level)
	c.BuildUpSessions = f.BuildUpSessions
	c.Description = f.Description
	c.MaxStudentsCourse = optionalInt(f.MaxStudentsCourse)
	c.MaxStudentsSession = optionalInt(f.MaxStudentsSession)
	c.Location = f.LocationFields.model()
}

type sessionForm struct {
	Date                  string `form:"date" validate:"required,datetime=2006-01-02"`
	Time                  string `form:"time" validate:"required,datetime=15:04"`
	DurationMinutes       int    `form:"duration_minutes" validate:"required,min=1,max=1440"`
	ExtraInfo             string `form:"extra_info"`
	LocationDiffCourse    bool   `form:"location_diff_course"`
	MaxStudentsDiffCourse bool   `form:"max_students_diff_course"`
	MaxStudents           string `form:"max_students" validate:"omitempty,number"`
	MultipleSessions      bool   `form:"multiple_sessions"`
	WeeklyUntil           string `form:"weekly_until" validate:"required_if=MultipleSessions true,omitempty,datetime=2006-01-02"`
	LocationFields
}

func (h *Handler) Courses(c *fiber.Ctx) error {
	courses, err := h.courses.ListCourses(c.UserContext())
	if err != nil {
		return h.internal(c, err)
	}
	return h.page(c, "courses", fiber.Map{"Title": "Cursussen", "Courses": courses})
}

func (h *Handler) MyCourses(c *fiber.Ctx) error {
	courses, err := h.courses.ListUserCourses(c.UserContext(), viewer(c))
	if err != nil {
		return h.fail(c, err)
	}
	return h.page(c, "courses", fiber.Map{"Title": "Mijn cursussen", "Courses": courses})
}

func (h *Handler) CourseDetail(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.courses.GetCourse(c.UserContext(), id)
	if err != nil {
		return h.lookupFail(c, err)
	}
	v := viewer(c)
	data := fiber.Map{"Detail": detail}
	if v.IsAuthenticated() {
		data["IsTeacher"] = detail.Course.UserIsTeacher(v.ID)
		data["IsSubscribed"] = detail.Course.UserIsSubscribed(v.ID)
	}
	return h.page(c, "course", data)
}

// CourseAction handles the course page buttons. Exactly one of join_course,
// leave_course, join_session, leave_session or remove_session is expected.
func (h *Handler) CourseAction(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	v := viewer(c)

	switch {
	case c.FormValue("join_course") != "":
		err = h.subscriptions.JoinCourse(ctx, v, id)
	case c.FormValue("leave_course") != "":
		err = h.subscriptions.LeaveCourse(ctx, v, id)
	default:
		if sid, ok := formID(c, "join_session"); ok {
			err = h.subscriptions.JoinSession(ctx, v, id, sid)
		} else if sid, ok := formID(c, "leave_session"); ok {
			err = h.subscriptions.LeaveSession(ctx, v, id, sid)
		} else if sid, ok := formID(c, "remove_session"); ok {
			err = h.courses.RemoveSession(ctx, v, id, sid)
		} else {
			err = apperr.Denied("unknown course action")
		}
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.Redirect(coursePath(id), fiber.StatusSeeOther)
}

func (h *Handler) DeleteCourse(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.courses.DeleteCourse(c.UserContext(), viewer(c), id); err != nil {
		return h.fail(c, err)
	}
	return c.Redirect("/courses", fiber.StatusSeeOther)
}

func (h *Handler) NewCoursePage(c *fiber.Ctx) error {
	if v := viewer(c); !v.IsAuthenticated() || !v.IsTeacher {
		return c.Redirect("/not-permitted", fiber.StatusSeeOther)
	}
	return h.page(c, "course_form", fiber.Map{"Form": courseForm{Level: 1, IsActive: true}})
}

func (h *Handler) CreateCourse(c *fiber.Ctx) error {
	var form courseForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	if errs := h.check(form); len(errs) > 0 {
		c.Status(fiber.StatusUnprocessableEntity)
		return h.page(c, "course_form", fiber.Map{"Form": form, "Errors": errs})
	}
	course := &models.Course{}
	form.apply(course)
	if err := h.courses.CreateCourse(c.UserContext(), viewer(c), course); err != nil {
		return h.formFail(c, "course_form", fiber.Map{"Form": form}, err)
	}
	return c.Redirect(coursePath(course.ID), fiber.StatusSeeOther)
}

func (h *Handler) EditCoursePage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.courses.GetCourse(c.UserContext(), id)
	if err != nil {
		return h.lookupFail(c, err)
	}
	if !detail.Course.UserIsTeacher(viewer(c).ID) {
		return c.Redirect("/not-permitted", fiber.StatusSeeOther)
	}
	course := detail.Course
	form := courseForm{
		Name:               course.Name,
		Level:              int16(course.Level),
		BuildUpSessions:    course.BuildUpSessions,
		Description:        course.Description,
		MaxStudentsCourse:  intString(course.MaxStudentsCourse),
		MaxStudentsSession: intString(course.MaxStudentsSession),
		IsActive:           course.IsActive,
		LocationFields: LocationFields{
			Short: course.Location.Short, Street: course.Location.Street,
			Number: course.Location.Number, City: course.Location.City,
		},
	}
	return h.page(c, "course_form", fiber.Map{"Form": form, "CourseID": id})
}

func (h *Handler) UpdateCourse(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var form courseForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	data := fiber.Map{"Form": form, "CourseID": id}
	if errs := h.check(form); len(errs) > 0 {
		data["Errors"] = errs
		c.Status(fiber.StatusUnprocessableEntity)
		return h.page(c, "course_form", data)
	}
	detail, err := h.courses.GetCourse(c.UserContext(), id)
	if err != nil {
		return h.lookupFail(c, err)
	}
	course := detail.Course
	form.apply(course)
	course.IsActive = form.IsActive
	if err := h.courses.UpdateCourse(c.UserContext(), viewer(c), course); err != nil {
		return h.formFail(c, "course_form", data, err)
	}
	return c.Redirect(coursePath(id), fiber.StatusSeeOther)
}

func (h *Handler) NewSessionPage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	return h.page(c, "session_form", fiber.Map{"Form": sessionForm{DurationMinutes: 60}, "CourseID": id})
}

func (h *Handler) CreateSessions(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var form sessionForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	data := fiber.Map{"Form": form, "CourseID": id}
	if errs := h.check(form); len(errs) > 0 {
		data["Errors"] = errs
		c.Status(fiber.StatusUnprocessableEntity)
		return h.page(c, "session_form", data)
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", form.Date+" "+form.Time, h.loc)
	if err != nil {
		return fiber.ErrBadRequest
	}
	in := service.NewSessions{
		CourseID:              id,
		Start:                 start,
		Duration:              time.Duration(form.DurationMinutes) * time.Minute,
		ExtraInfo:             form.ExtraInfo,
		LocationDiffCourse:    form.LocationDiffCourse,
		Location:              form.LocationFields.model(),
		MaxStudentsDiffCourse: form.MaxStudentsDiffCourse,
		MaxStudents:           optionalInt(form.MaxStudents),
	}
	if form.MultipleSessions {
		day, err := time.ParseInLocation("2006-01-02", form.WeeklyUntil, h.loc)
		if err != nil {
			return fiber.ErrBadRequest
		}
		// the whole last day counts
		until := day.AddDate(0, 0, 1).Add(-time.Second)
		in.WeeklyUntil = &until
	}

	if _, err := h.courses.CreateSessions(c.UserContext(), viewer(c), in); err != nil {
		return h.formFail(c, "session_form", data, err)
	}
	return c.Redirect(coursePath(id), fiber.StatusSeeOther)
}

func (h *Handler) SessionDetail(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	session, err := h.courses.GetSession(c.UserContext(), id)
	if err != nil {
		return h.lookupFail(c, err)
	}
	people, err := h.users.GetByIDs(c.UserContext(), session.SubscribedIDs)
	if err != nil {
		return h.internal(c, err)
	}
	v := viewer(c)
	data := fiber.Map{
		"Session":   session,
		"Effective": session.Effective(),
		"ExtraInfo": h.renderMarkdown(session.ExtraInfo),
		"People":    people,
	}
	if v.IsAuthenticated() {
		data["IsSubscribed"] = session.UserIsSubscribed(v.ID)
		data["IsTeacher"] = session.Course.UserIsTeacher(v.ID)
	}
	return h.page(c, "session", data)
}

// Roster sends the course roster as an xlsx download to course teachers.
func (h *Handler) Roster(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	detail, err := h.courses.GetCourse(ctx, id)
	if err != nil {
		return h.lookupFail(c, err)
	}
	if !detail.Course.UserIsTeacher(viewer(c).ID) {
		return h.fail(c, apperr.Denied("only teachers can export the roster"))
	}

	ids := append(append([]int64{}, detail.Course.TeacherIDs...), detail.Course.StudentIDs...)
	for _, s := range detail.Sessions {
		ids = append(ids, s.SubscribedIDs...)
	}
	people, err := h.users.GetByIDs(ctx, ids)
	if err != nil {
		return h.internal(c, err)
	}
	data, err := export.RosterBytes(detail, people, h.loc)
	if err != nil {
		return h.internal(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Attachment(export.RosterFilename(detail.Course, h.now().In(h.loc)))
	return c.Send(data)
}

// formFail re-renders a form for validation errors and falls back to fail.
func (h *Handler) formFail(c *fiber.Ctx, tmpl string, data fiber.Map, err error) error {
	if msg, ok := validationMessage(err); ok {
		data["Errors"] = map[string]string{"Form": msg}
		c.Status(fiber.StatusUnprocessableEntity)
		return h.page(c, tmpl, data)
	}
	return h.fail(c, err)
}

func coursePath(id int64) string {
	return "/course/" + itoa(id)
}

func intString(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
