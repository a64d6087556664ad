package export

import (
	"bytes"
	"testing"
	"time"

	"opengym/internal/models"
	"opengym/internal/service"

	"github.com/xuri/excelize/v2"
)

func TestCourseRoster(t *testing.T) {
	limit := 2
	course := &models.Course{ID: 1, Name: "Acro/Yoga", TeacherIDs: []int64{1}, StudentIDs: []int64{2, 3},
		MaxStudentsSession: &limit, Location: models.Location{Short: "Zaal"}}
	late := &models.Session{ID: 11, CourseID: 1, Course: course, Start: time.Date(2024, 2, 19, 18, 0, 0, 0, time.UTC),
		Duration: models.Duration(time.Hour), SubscribedIDs: []int64{2}}
	early := &models.Session{ID: 10, CourseID: 1, Course: course, Start: time.Date(2024, 2, 12, 18, 0, 0, 0, time.UTC),
		Duration: models.Duration(time.Hour), SubscribedIDs: []int64{2, 4}}
	people := []*models.User{
		{ID: 1, FirstName: "Tess", LastName: "Teacher", Email: "tess@example.com"},
		{ID: 2, FirstName: "An", LastName: "A", Email: "an@example.com", Birthdate: time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 3, FirstName: "Bo", LastName: "B", Email: "bo@example.com"},
		{ID: 4, FirstName: "Cas", LastName: "C", Email: "cas@example.com"},
	}
	detail := &service.CourseDetail{Course: course, Sessions: []*models.Session{late, early}}

	data, err := RosterBytes(detail, people, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 3 || got[0] != SheetMembers {
		t.Fatalf("sheets %v", got)
	}

	members, _ := f.GetRows(SheetMembers)
	if len(members) != 4 || members[1][4] != "lesgever" || members[2][3] != "01/05/1990" {
		t.Fatalf("members %v", members)
	}

	sessions, _ := f.GetRows(SheetSessions)
	if len(sessions) != 3 {
		t.Fatalf("sessions %v", sessions)
	}
	if sessions[1][0] != "12/02/2024" || sessions[1][3] != "2" || sessions[1][4] != "2" || sessions[1][5] != "An A, Cas C" {
		t.Fatalf("first session row %v", sessions[1])
	}

	grid, _ := f.GetRows(SheetAttendance)
	want := [][]string{
		{"Naam", "12/02", "19/02"},
		{"An A", "x", "x"},
		{"Bo B"},
		{"Cas C", "x"},
	}
	if len(grid) != len(want) {
		t.Fatalf("grid %v", grid)
	}
	for i := range want {
		for j := range want[i] {
			if grid[i][j] != want[i][j] {
				t.Fatalf("grid[%d][%d] = %q, want %q", i, j, grid[i][j], want[i][j])
			}
		}
	}
}

func TestRosterFilename(t *testing.T) {
	got := RosterFilename(&models.Course{Name: "Acro/Yoga  gevorderd"}, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	if got != "Acro_Yoga gevorderd 2024-02-01.xlsx" {
		t.Fatalf("got %q", got)
	}
}
