package calendar

import "time"

// Locale holds the words used in rendered calendars and durations.
type Locale struct {
	Code     string
	Months   [12]string
	Weekdays [7]string // Monday first
	Day      string
	Days     string
	Hours    string
	Minutes  string
	And      string
}

var (
	Dutch = Locale{
		Code: "nl",
		Months: [12]string{"januari", "februari", "maart", "april", "mei", "juni",
			"juli", "augustus", "september", "oktober", "november", "december"},
		Weekdays: [7]string{"maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag", "zondag"},
		Day:      "dag",
		Days:     "dagen",
		Hours:    "uur",
		Minutes:  "minuten",
		And:      "en",
	}
	English = Locale{
		Code: "en",
		Months: [12]string{"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December"},
		Weekdays: [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
		Day:      "day",
		Days:     "days",
		Hours:    "hours",
		Minutes:  "minutes",
		And:      "and",
	}
)

func LocaleFor(code string) Locale {
	if code == English.Code {
		return English
	}
	return Dutch
}

func (l Locale) MonthName(m time.Month) string {
	return l.Months[m-1]
}

// WeekdayName takes a Go weekday (Sunday = 0).
func (l Locale) WeekdayName(d time.Weekday) string {
	return l.Weekdays[(int(d)+6)%7]
}
