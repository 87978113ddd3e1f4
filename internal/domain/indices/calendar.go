package indices

import "time"

// fixedHolidays maps month*100+day to the Brazilian national holidays that
// fall on the same date every year. Movable feasts are not tracked; the
// report stamp only needs to skip the fixed ones.
var fixedHolidays = map[int]string{
	101:  "Confraternização Universal",
	421:  "Tiradentes",
	501:  "Dia do Trabalho",
	907:  "Independência do Brasil",
	1012: "Nossa Senhora Aparecida",
	1102: "Finados",
	1115: "Proclamação da República",
	1225: "Natal",
}

// IsBusinessDay reports whether t falls on a weekday that is not a fixed
// national holiday.
func IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	_, holiday := fixedHolidays[int(t.Month())*100+t.Day()]
	return !holiday
}

// NextBusinessDay returns t when it already is a business day, otherwise the
// first business day after it.
func NextBusinessDay(t time.Time) time.Time {
	for !IsBusinessDay(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}
