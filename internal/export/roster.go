package export

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"opengym/internal/calendar"
	"opengym/internal/models"
	"opengym/internal/service"

	"github.com/xuri/excelize/v2"
)

const (
	SheetMembers    = "Leden"
	SheetSessions   = "Sessies"
	SheetAttendance = "Inschrijvingen"
)

// CourseRoster builds a workbook with the course members, its sessions and a
// member by session subscription grid. people must contain every user
// subscribed to the course or one of its sessions.
func CourseRoster(detail *service.CourseDetail, people []*models.User, loc *time.Location) (*excelize.File, error) {
	byID := make(map[int64]*models.User, len(people))
	for _, u := range people {
		byID[u.ID] = u
	}
	sessions := append([]*models.Session(nil), detail.Sessions...)
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].Start.Before(sessions[j].Start) })

	f := excelize.NewFile()
	sheets := []struct {
		name string
		rows [][]string
	}{
		{SheetMembers, memberRows(detail.Course, byID)},
		{SheetSessions, sessionRows(sessions, byID, loc)},
		{SheetAttendance, attendanceRows(detail.Course, sessions, byID, loc)},
	}
	for i, s := range sheets {
		if i == 0 {
			// стандартный лист переименовываем
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, fmt.Errorf("new sheet: %w", err)
		}
		if err := writeRows(f, s.name, s.rows); err != nil {
			return nil, err
		}
		if err := applyFormatting(f, s.name); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// RosterBytes renders the roster as an xlsx document.
func RosterBytes(detail *service.CourseDetail, people []*models.User, loc *time.Location) ([]byte, error) {
	f, err := CourseRoster(detail, people, loc)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func RosterFilename(course *models.Course, now time.Time) string {
	return sanitizeFileName(fmt.Sprintf("%s %s.xlsx", course.Name, now.Format("2006-01-02")))
}

func memberRows(course *models.Course, byID map[int64]*models.User) [][]string {
	rows := [][]string{{"Voornaam", "Naam", "E-mail", "Geboortedatum", "Rol"}}
	add := func(ids []int64, role string) {
		for _, id := range ids {
			u, ok := byID[id]
			if !ok {
				continue
			}
			birth := ""
			if !u.Birthdate.IsZero() {
				birth = u.Birthdate.Format("02/01/2006")
			}
			rows = append(rows, []string{u.FirstName, u.LastName, u.Email, birth, role})
		}
	}
	add(course.TeacherIDs, "lesgever")
	add(course.StudentIDs, "deelnemer")
	return rows
}

func sessionRows(sessions []*models.Session, byID map[int64]*models.User, loc *time.Location) [][]string {
	rows := [][]string{{"Datum", "Uur", "Locatie", "Ingeschreven", "Maximum", "Deelnemers"}}
	for _, s := range sessions {
		eff := s.Effective()
		limit := "-"
		if eff.MaxStudents != nil {
			limit = fmt.Sprint(*eff.MaxStudents)
		}
		var names []string
		for _, id := range s.SubscribedIDs {
			if u, ok := byID[id]; ok {
				names = append(names, u.FullName())
			}
		}
		start := s.Start.In(loc)
		rows = append(rows, []string{
			start.Format("02/01/2006"),
			calendar.TimeRange(start, s.End().In(loc)),
			strings.TrimSpace(eff.Location.Short + " " + eff.Location.Address()),
			fmt.Sprint(len(s.SubscribedIDs)),
			limit,
			strings.Join(names, ", "),
		})
	}
	return rows
}

// attendanceRows lists course students plus anyone else subscribed to a
// session, with an "x" per session they joined.
func attendanceRows(course *models.Course, sessions []*models.Session, byID map[int64]*models.User, loc *time.Location) [][]string {
	header := []string{"Naam"}
	for _, s := range sessions {
		header = append(header, s.Start.In(loc).Format("02/01"))
	}
	rows := [][]string{header}

	var ids []int64
	seen := map[int64]bool{}
	collect := func(list []int64) {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	collect(course.StudentIDs)
	for _, s := range sessions {
		collect(s.SubscribedIDs)
	}

	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			continue
		}
		row := []string{u.FullName()}
		for _, s := range sessions {
			mark := ""
			if s.UserIsSubscribed(id) {
				mark = "x"
			}
			row = append(row, mark)
		}
		rows = append(rows, row)
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]string) error {
	for r, row := range rows {
		for c, val := range row {
			if val == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(sheet, cell, val); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}
	return nil
}

// applyFormatting makes the header bold, adds a filter on it and sizes
// columns by content length.
func applyFormatting(f *excelize.File, sheet string) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	cols := len(rows[0])
	last, _ := excelize.ColumnNumberToName(cols)

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(sheet, "A1", last+"1", style)
	}
	_ = f.AutoFilter(sheet, "A1:"+last+"1", nil)

	for c := 0; c < cols; c++ {
		width := 10.0
		for _, row := range rows {
			if c < len(row) {
				if w := float64(len([]rune(row[c]))) * 1.1; w > width {
					width = w
				}
			}
		}
		if width > 60 {
			width = 60
		}
		col, _ := excelize.ColumnNumberToName(c + 1)
		_ = f.SetColWidth(sheet, col, col, width)
	}
	return nil
}

var invalidFileRe = regexp.MustCompile(`[\\/:*?"<>|]+`)

func sanitizeFileName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return invalidFileRe.ReplaceAllString(s, "_")
}
