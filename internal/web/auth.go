package web

import (
	"net/url"
	"strings"
	"time"

	"opengym/internal/apperr"
	"opengym/internal/models"
	"opengym/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	sessionCookie = "opengym_session"
	viewerKey     = "viewer"
)

// Authenticate resolves the session cookie into the viewer. Invalid cookies
// leave the request anonymous.
func (h *Handler) Authenticate(c *fiber.Ctx) error {
	if token := c.Cookies(sessionCookie); token != "" {
		if u := h.users.UserFromSessionToken(c.UserContext(), token); u != nil {
			c.Locals(viewerKey, u)
		}
	}
	return c.Next()
}

// RequireLogin sends anonymous viewers to the login page.
func RequireLogin(c *fiber.Ctx) error {
	if !viewer(c).IsAuthenticated() {
		return c.Redirect("/login?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusSeeOther)
	}
	return c.Next()
}

func viewer(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(viewerKey).(*models.User)
	return u
}

type registerForm struct {
	FirstName string `form:"first_name" validate:"required,max=100"`
	LastName  string `form:"last_name" validate:"required,max=100"`
	Birthdate string `form:"birthdate" validate:"required,datetime=2006-01-02"`
	Email     string `form:"email" validate:"required,email,max=254"`
	Password  string `form:"password" validate:"required,min=8,max=72"`
	Password2 string `form:"password2" validate:"required,eqfield=Password"`
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type resendForm struct {
	Email string `form:"email" validate:"required,email"`
}

func (h *Handler) RegisterPage(c *fiber.Ctx) error {
	return h.page(c, "register", fiber.Map{"Form": registerForm{}})
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var form registerForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	if errs := h.check(form); len(errs) > 0 {
		c.Status(fiber.StatusUnprocessableEntity)
		return h.page(c, "register", fiber.Map{"Form": form, "Errors": errs})
	}
	birthdate, _ := time.ParseInLocation("2006-01-02", form.Birthdate, h.loc)

	_, err := h.users.Register(c.UserContext(), service.Registration{
		FirstName: strings.TrimSpace(form.FirstName),
		LastName:  strings.TrimSpace(form.LastName),
		Birthdate: birthdate,
		Email:     form.Email,
		Password:  form.Password,
	})
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			c.Status(fiber.StatusUnprocessableEntity)
			return h.page(c, "register", fiber.Map{"Form": form, "Errors": map[string]string{"Email": msg}})
		}
		return h.internal(c, err)
	}
	return h.page(c, "message", fiber.Map{
		"Title": "Bijna klaar",
		"Text":  "We hebben je een e-mail gestuurd met een link om je account te activeren.",
	})
}

func (h *Handler) Activate(c *fiber.Ctx) error {
	user, err := h.users.Activate(c.UserContext(), c.Params("token"))
	if err != nil {
		if apperr.IsDomain(err) {
			c.Status(fiber.StatusBadRequest)
			return h.page(c, "message", fiber.Map{
				"Title": "Activatie mislukt",
				"Text":  "Deze activatielink is ongeldig of verlopen.",
			})
		}
		return h.internal(c, err)
	}
	if err := h.setSession(c, user); err != nil {
		return h.internal(c, err)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// ResendActivation answers the same way for every address.
func (h *Handler) ResendActivation(c *fiber.Ctx) error {
	var form resendForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	if errs := h.check(form); len(errs) > 0 {
		c.Status(fiber.StatusUnprocessableEntity)
		return h.page(c, "login", fiber.Map{"Email": form.Email, "Errors": errs})
	}
	if err := h.users.ResendActivation(c.UserContext(), form.Email); err != nil {
		return h.internal(c, err)
	}
	return h.page(c, "message", fiber.Map{
		"Title": "Activatielink verstuurd",
		"Text":  "Als dit adres bij een niet-geactiveerd account hoort, ontvang je een nieuwe activatielink.",
	})
}

func (h *Handler) LoginPage(c *fiber.Ctx) error {
	return h.page(c, "login", fiber.Map{"Next": c.Query("next")})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var form loginForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	next := safeNext(c.FormValue("next"))
	if errs := h.check(form); len(errs) > 0 {
		c.Status(fiber.StatusUnprocessableEntity)
		return h.page(c, "login", fiber.Map{"Next": next, "Email": form.Email, "Failed": true})
	}

	user, err := h.users.Authenticate(c.UserContext(), form.Email, form.Password)
	if err != nil {
		if apperr.IsDomain(err) {
			h.log.Info("login failed", zap.String("email", form.Email))
			c.Status(fiber.StatusUnauthorized)
			return h.page(c, "login", fiber.Map{"Next": next, "Email": form.Email, "Failed": true})
		}
		return h.internal(c, err)
	}
	if err := h.setSession(c, user); err != nil {
		return h.internal(c, err)
	}
	return c.Redirect(next, fiber.StatusSeeOther)
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	c.ClearCookie(sessionCookie)
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) setSession(c *fiber.Ctx, user *models.User) error {
	token, err := h.users.IssueSessionToken(user)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  h.now().Add(14 * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// safeNext only follows local paths.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}
