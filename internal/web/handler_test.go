package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"opengym/internal/calendar"
	"opengym/internal/models"
	"opengym/internal/service"
	album_service "opengym/internal/service/album"
	calendar_service "opengym/internal/service/calendar"
	course_service "opengym/internal/service/course"
	event_service "opengym/internal/service/event"
	news_service "opengym/internal/service/news"
	subscription_service "opengym/internal/service/subscription"
	user_service "opengym/internal/service/user"
	"opengym/internal/testutil/fakes"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	app    *fiber.App
	store  *fakes.Store
	users  service.UserService
	mailer *fakes.Mailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()
	store := fakes.NewStore()
	userRepo := fakes.UserRepo{Store: store}
	courses := fakes.CourseRepo{Store: store}
	sessions := fakes.SessionRepo{Store: store}
	events := fakes.EventRepo{Store: store}
	days := fakes.BuildingDayRepo{Store: store}
	mailer := &fakes.Mailer{}

	users := user_service.NewUserService(userRepo, mailer, "test-secret", "https://opengym.test", log)
	h := NewHandler(Deps{
		Courses:       course_service.NewCourseService(store, courses, sessions, userRepo, time.UTC, log),
		Subscriptions: subscription_service.NewSubscriptionService(store, courses, sessions, days, nil, log),
		Calendar:      calendar_service.NewCalendarService(sessions, courses, events, days, time.UTC, calendar.Dutch),
		Users:         users,
		News:          news_service.NewNewsService(store, fakes.NewsRepo{Store: store}, log),
		Albums:        album_service.NewAlbumService(store, fakes.AlbumRepo{Store: store}, fakes.NewImageHost(), "opengym", log),
		Events:        event_service.NewEventService(store, events, days, userRepo),
		Location:      time.UTC,
		Locale:        calendar.Dutch,
		Log:           log,
	})
	return &testEnv{app: NewApp(h), store: store, users: users, mailer: mailer}
}

func (e *testEnv) user(t *testing.T, email string, teacher bool) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u := &models.User{Email: email, FirstName: strings.Split(email, "@")[0], LastName: "Test",
		IsActive: true, IsTeacher: teacher, PasswordHash: string(hash)}
	if err := (fakes.UserRepo{Store: e.store}).Create(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	token, err := e.users.IssueSessionToken(u)
	if err != nil {
		t.Fatal(err)
	}
	return u, token
}

func (e *testEnv) course(t *testing.T, teacher *models.User, maxCourse *int) *models.Course {
	t.Helper()
	ctx := context.Background()
	repo := fakes.CourseRepo{Store: e.store}
	c := &models.Course{Name: "Acro", Level: 1, IsActive: true, MaxStudentsCourse: maxCourse}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddTeacher(ctx, c.ID, teacher.ID); err != nil {
		t.Fatal(err)
	}
	return c
}

func (e *testEnv) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func post(path string, values url.Values, token string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	}
	return req
}

func get(path, token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	}
	return req
}

func assertRedirect(t *testing.T, resp *http.Response, want string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status %d, want 303", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != want {
		t.Fatalf("redirect to %q, want %q", got, want)
	}
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestCourseAction_JoinUntilFull(t *testing.T) {
	e := newTestEnv(t)
	teacher, _ := e.user(t, "tess@example.com", true)
	limit := 2
	c := e.course(t, teacher, &limit)
	path := "/course/" + itoa(c.ID)
	join := url.Values{"join_course": {"1"}}

	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, token := e.user(t, email, false)
		assertRedirect(t, e.do(t, post(path, join, token)), path)
	}
	_, late := e.user(t, "d@example.com", false)
	assertRedirect(t, e.do(t, post(path, join, late)), "/not-permitted")

	if n := len(e.store.Courses[c.ID].StudentIDs); n != 2 {
		t.Fatalf("want 2 students, got %d", n)
	}
}

func TestCourseAction_Rejections(t *testing.T) {
	e := newTestEnv(t)
	teacher, teacherToken := e.user(t, "tess@example.com", true)
	c := e.course(t, teacher, nil)
	path := "/course/" + itoa(c.ID)

	cases := []struct {
		name   string
		values url.Values
		token  string
	}{
		{"anonymous join", url.Values{"join_course": {"1"}}, ""},
		{"leave without membership", url.Values{"leave_course": {"1"}}, teacherToken},
		{"unknown session", url.Values{"join_session": {"999"}}, teacherToken},
		{"no action", url.Values{}, teacherToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertRedirect(t, e.do(t, post(path, tc.values, tc.token)), "/not-permitted")
		})
	}
}

func TestCourseAction_SessionJoinAndRemove(t *testing.T) {
	e := newTestEnv(t)
	teacher, teacherToken := e.user(t, "tess@example.com", true)
	_, studentToken := e.user(t, "a@example.com", false)
	c := e.course(t, teacher, nil)
	s := &models.Session{CourseID: c.ID, Start: time.Date(2030, 1, 7, 18, 0, 0, 0, time.UTC), Duration: models.Duration(time.Hour)}
	if err := (fakes.SessionRepo{Store: e.store}).Create(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	path := "/course/" + itoa(c.ID)
	sid := itoa(s.ID)

	assertRedirect(t, e.do(t, post(path, url.Values{"join_session": {sid}}, studentToken)), path)
	if len(e.store.Sessions[s.ID].SubscribedIDs) != 1 {
		t.Fatal("session join not stored")
	}
	// only teachers remove sessions
	assertRedirect(t, e.do(t, post(path, url.Values{"remove_session": {sid}}, studentToken)), "/not-permitted")
	assertRedirect(t, e.do(t, post(path, url.Values{"remove_session": {sid}}, teacherToken)), path)
	if _, ok := e.store.Sessions[s.ID]; ok {
		t.Fatal("session was not removed")
	}
}

func TestCourseDetail(t *testing.T) {
	e := newTestEnv(t)
	teacher, token := e.user(t, "tess@example.com", true)
	c := e.course(t, teacher, nil)

	resp := e.do(t, get("/course/"+itoa(c.ID), ""))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if b := body(t, resp); !strings.Contains(b, "Acro") || !strings.Contains(b, `name="join_course"`) {
		t.Fatalf("unexpected page:\n%s", b)
	}

	resp = e.do(t, get("/course/"+itoa(c.ID), token))
	if b := body(t, resp); !strings.Contains(b, "roster.xlsx") {
		t.Fatal("teachers see the roster link")
	}

	if resp := e.do(t, get("/course/4242", "")); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing course: status %d", resp.StatusCode)
	}
}

func TestCreateSessions_Weekly(t *testing.T) {
	e := newTestEnv(t)
	teacher, token := e.user(t, "tess@example.com", true)
	c := e.course(t, teacher, nil)
	path := "/course/" + itoa(c.ID) + "/session/new"

	form := url.Values{
		"date": {"2024-02-12"}, "time": {"18:00"}, "duration_minutes": {"90"},
		"multiple_sessions": {"true"}, "weekly_until": {"2024-03-04"},
	}
	assertRedirect(t, e.do(t, post(path, form, token)), "/course/"+itoa(c.ID))
	if n := len(e.store.Sessions); n != 4 {
		t.Fatalf("want 4 weekly sessions, got %d", n)
	}

	form.Del("weekly_until")
	resp := e.do(t, post(path, form, token))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("missing weekly_until: status %d", resp.StatusCode)
	}
}

func TestRoster(t *testing.T) {
	e := newTestEnv(t)
	teacher, token := e.user(t, "tess@example.com", true)
	_, other := e.user(t, "a@example.com", false)
	c := e.course(t, teacher, nil)
	path := "/course/" + itoa(c.ID) + "/roster.xlsx"

	resp := e.do(t, get(path, token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content type %q", ct)
	}
	assertRedirect(t, e.do(t, get(path, other)), "/not-permitted")
}

func TestRequireLogin(t *testing.T) {
	e := newTestEnv(t)
	assertRedirect(t, e.do(t, get("/courses/mine", "")), "/login?next=%2Fcourses%2Fmine")
}

func TestCalendarRoutes(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, get("/calendar/month/2024/2", ""))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("month: status %d", resp.StatusCode)
	}
	if b := body(t, resp); !strings.Contains(b, "februari 2024") || strings.Contains(b, "<nav>") {
		t.Fatalf("month partial:\n%s", b)
	}

	for _, path := range []string{"/calendar/month/2024/13", "/calendar/week/2024/2/30", "/calendar/month/x/1"} {
		if resp := e.do(t, get(path, "")); resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: status %d", path, resp.StatusCode)
		}
	}

	resp = e.do(t, get("/api/calendar?view=week&date=2024-02-14", ""))
	var week calendar.Week
	if err := json.NewDecoder(resp.Body).Decode(&week); err != nil {
		t.Fatal(err)
	}
	if week.Header != "12 - 18 februari 2024" {
		t.Fatalf("header %q", week.Header)
	}
	if resp := e.do(t, get("/api/calendar?view=day", "")); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad view: status %d", resp.StatusCode)
	}
}

func TestLandingAndHealth(t *testing.T) {
	e := newTestEnv(t)
	for _, path := range []string{"/", "/calendar", "/courses", "/albums", "/health", "/metrics"} {
		if resp := e.do(t, get(path, "")); resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d", path, resp.StatusCode)
		}
	}
}

func TestRegisterActivateLogin(t *testing.T) {
	e := newTestEnv(t)
	form := url.Values{
		"first_name": {"An"}, "last_name": {"Peeters"}, "birthdate": {"1990-05-01"},
		"email": {"An@Example.com"}, "password": {"geheim123"}, "password2": {"geheim123"},
	}

	bad := url.Values{}
	for k, v := range form {
		bad[k] = v
	}
	bad.Set("password2", "anders123")
	if resp := e.do(t, post("/register", bad, "")); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("mismatched passwords: status %d", resp.StatusCode)
	}

	if resp := e.do(t, post("/register", form, "")); resp.StatusCode != http.StatusOK {
		t.Fatalf("register: status %d", resp.StatusCode)
	}
	mail := e.mailer.Last()
	i := strings.Index(mail.Body, "/activate/")
	if mail.To != "an@example.com" || i < 0 {
		t.Fatalf("activation mail %+v", mail)
	}
	link := strings.Fields(mail.Body[i:])[0]

	// not active yet
	login := url.Values{"email": {"an@example.com"}, "password": {"geheim123"}}
	if resp := e.do(t, post("/login", login, "")); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("login before activation: status %d", resp.StatusCode)
	}

	resp := e.do(t, get(link, ""))
	assertRedirect(t, resp, "/")
	if !strings.Contains(resp.Header.Get("Set-Cookie"), sessionCookie+"=") {
		t.Fatal("activation logs the user in")
	}

	login.Set("next", "/courses")
	resp = e.do(t, post("/login", login, ""))
	assertRedirect(t, resp, "/courses")

	if resp := e.do(t, get("/activate/not-a-token", "")); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad token: status %d", resp.StatusCode)
	}
}

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"":                     "/",
		"/courses":             "/courses",
		"//evil.example":       "/",
		"https://evil.example": "/",
	}
	for in, want := range cases {
		if got := safeNext(in); got != want {
			t.Fatalf("safeNext(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCourseAction_SessionOfAnotherCourse(t *testing.T) {
	e := newTestEnv(t)
	teacher, _ := e.user(t, "tess@example.com", true)
	student, token := e.user(t, "a@example.com", false)
	a := e.course(t, teacher, nil)
	b := e.course(t, teacher, nil)
	s := &models.Session{CourseID: b.ID, Start: time.Date(2030, 1, 7, 18, 0, 0, 0, time.UTC), Duration: models.Duration(time.Hour)}
	if err := (fakes.SessionRepo{Store: e.store}).Create(context.Background(), s); err != nil {
		t.Fatal(err)
	}

	path := "/course/" + itoa(a.ID)
	assertRedirect(t, e.do(t, post(path, url.Values{"join_session": {itoa(s.ID)}}, token)), "/not-permitted")
	if e.store.Sessions[s.ID].UserIsSubscribed(student.ID) {
		t.Fatal("joined a session through the wrong course")
	}
}

func TestBuildingDay_PagesAndActions(t *testing.T) {
	e := newTestEnv(t)
	helper, token := e.user(t, "hanne@example.com", false)
	day := &models.BuildingDay{Description: "Vloer leggen", Start: time.Date(2030, 1, 12, 9, 0, 0, 0, time.UTC),
		Duration: models.Duration(5 * time.Hour)}
	if err := (fakes.BuildingDayRepo{Store: e.store}).Create(context.Background(), day); err != nil {
		t.Fatal(err)
	}
	path := "/building-day/" + itoa(day.ID)

	resp := e.do(t, get(path, ""))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if b := body(t, resp); !strings.Contains(b, "Vloer leggen") || !strings.Contains(b, "5 uur") ||
		strings.Contains(b, "join_building_day") {
		t.Fatalf("anonymous page:\n%s", b)
	}

	assertRedirect(t, e.do(t, post(path, url.Values{"join_building_day": {"1"}}, token)), path)
	if !e.store.BuildingDays[day.ID].UserIsSubscribed(helper.ID) {
		t.Fatal("join not stored")
	}
	if b := body(t, e.do(t, get(path, token))); !strings.Contains(b, "hanne Test") || !strings.Contains(b, "leave_building_day") {
		t.Fatalf("subscribed page:\n%s", b)
	}
	if b := body(t, e.do(t, get("/calendar/month/2030/1", token))); !strings.Contains(b, `name="leave_building_day"`) ||
		!strings.Contains(b, `href="`+path+`"`) {
		t.Fatalf("calendar cell:\n%s", b)
	}

	assertRedirect(t, e.do(t, post(path, url.Values{"leave_building_day": {"1"}}, token)), path)
	if e.store.BuildingDays[day.ID].UserIsSubscribed(helper.ID) {
		t.Fatal("leave not stored")
	}
	assertRedirect(t, e.do(t, post(path, url.Values{"leave_building_day": {"1"}}, token)), "/not-permitted")

	if resp := e.do(t, get("/building-day/4242", "")); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing day: status %d", resp.StatusCode)
	}
}

func TestEventDetail(t *testing.T) {
	e := newTestEnv(t)
	link := "https://opengym.test/fuif"
	event := &models.Event{Name: "Fuif", Description: "Met **muziek**", Start: time.Date(2030, 1, 18, 20, 0, 0, 0, time.UTC),
		Duration: models.Duration(3 * time.Hour), Link: &link}
	if err := (fakes.EventRepo{Store: e.store}).Create(context.Background(), event); err != nil {
		t.Fatal(err)
	}

	resp := e.do(t, get("/event/"+itoa(event.ID), ""))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if b := body(t, resp); !strings.Contains(b, "Fuif") || !strings.Contains(b, "<strong>muziek</strong>") ||
		!strings.Contains(b, link) {
		t.Fatalf("unexpected page:\n%s", b)
	}
	if resp := e.do(t, get("/event/4242", "")); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing event: status %d", resp.StatusCode)
	}
}

func TestDeleteCourse(t *testing.T) {
	e := newTestEnv(t)
	teacher, teacherToken := e.user(t, "tess@example.com", true)
	_, studentToken := e.user(t, "a@example.com", false)
	c := e.course(t, teacher, nil)
	path := "/course/" + itoa(c.ID) + "/delete"

	assertRedirect(t, e.do(t, post(path, nil, "")), "/login?next="+url.QueryEscape(path))
	assertRedirect(t, e.do(t, post(path, nil, studentToken)), "/not-permitted")
	if _, ok := e.store.Courses[c.ID]; !ok {
		t.Fatal("student deleted the course")
	}

	if b := body(t, e.do(t, get("/course/"+itoa(c.ID), teacherToken))); !strings.Contains(b, `action="`+path+`"`) {
		t.Fatal("teachers see the delete button")
	}
	assertRedirect(t, e.do(t, post(path, nil, teacherToken)), "/courses")
	if _, ok := e.store.Courses[c.ID]; ok {
		t.Fatal("course still stored")
	}
}

func TestRegister_MailFailureThenResend(t *testing.T) {
	e := newTestEnv(t)
	form := url.Values{
		"first_name": {"An"}, "last_name": {"Peeters"}, "birthdate": {"1990-05-01"},
		"email": {"an@example.com"}, "password": {"geheim123"}, "password2": {"geheim123"},
	}

	e.mailer.Err = errors.New("smtp down")
	if resp := e.do(t, post("/register", form, "")); resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("register: status %d", resp.StatusCode)
	}
	e.mailer.Err = nil

	resend := url.Values{"email": {"an@example.com"}}
	if resp := e.do(t, post("/activate/resend", resend, "")); resp.StatusCode != http.StatusOK {
		t.Fatalf("resend: status %d", resp.StatusCode)
	}
	mail := e.mailer.Last()
	i := strings.Index(mail.Body, "/activate/")
	if i < 0 {
		t.Fatalf("no activation mail %+v", mail)
	}
	assertRedirect(t, e.do(t, get(strings.Fields(mail.Body[i:])[0], "")), "/")

	if resp := e.do(t, post("/activate/resend", url.Values{"email": {"geen-adres"}}, "")); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("bad email: status %d", resp.StatusCode)
	}
}
