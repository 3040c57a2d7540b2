package classroom

import (
	"sort"
	"strings"
	"time"
	"unicode"
)

// weekdayTokens maps every recognised day token (lower-cased) to its weekday.
var weekdayTokens = map[string]time.Weekday{
	"일요일": time.Sunday, "일": time.Sunday, "sun": time.Sunday, "sunday": time.Sunday,
	"월요일": time.Monday, "월": time.Monday, "mon": time.Monday, "monday": time.Monday,
	"화요일": time.Tuesday, "화": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"수요일": time.Wednesday, "수": time.Wednesday, "wed": time.Wednesday, "wednesday": time.Wednesday,
	"목요일": time.Thursday, "목": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"금요일": time.Friday, "금": time.Friday, "fri": time.Friday, "friday": time.Friday,
	"토요일": time.Saturday, "토": time.Saturday, "sat": time.Saturday, "saturday": time.Saturday,
}

// dayRunes are the one-letter Korean day names, as written in compact schedules like "월수금".
var dayRunes = map[rune]time.Weekday{
	'일': time.Sunday, '월': time.Monday, '화': time.Tuesday, '수': time.Wednesday,
	'목': time.Thursday, '금': time.Friday, '토': time.Saturday,
}

const dayWord = "요일"

// Weekdays returns the distinct weekdays named in a schedule such as "월요일 오후 07:00 / 수요일 오후 07:00",
// Sunday first. Every day token counts, so "월 수 금 19:00", "월수금 19:00" and "매주 월요일에" are all understood.
// Tokens that name no day are ignored.
func Weekdays(schedule string) []time.Weekday {
	seen := make(map[time.Weekday]bool, 7)
	days := make([]time.Weekday, 0, 7)
	fields := strings.FieldsFunc(schedule, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	for _, f := range fields {
		for _, wd := range tokenDays(strings.ToLower(f)) {
			if !seen[wd] {
				seen[wd] = true
				days = append(days, wd)
			}
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// tokenDays returns the weekdays named by a single lower-cased token.
func tokenDays(tok string) []time.Weekday {
	if wd, ok := weekdayTokens[tok]; ok {
		return []time.Weekday{wd}
	}

	// "월수금", "월요일수요일"
	if compact := []rune(strings.ReplaceAll(tok, dayWord, "")); len(compact) > 0 {
		days := make([]time.Weekday, 0, len(compact))
		for _, r := range compact {
			wd, ok := dayRunes[r]
			if !ok {
				days = nil
				break
			}
			days = append(days, wd)
		}
		if len(days) > 0 {
			return days
		}
	}

	// a day word inside a longer token, e.g. "매주월요일", "월요일에"
	var days []time.Weekday
	runes := []rune(tok)
	for i, r := range runes {
		wd, ok := dayRunes[r]
		if ok && strings.HasPrefix(string(runes[i+1:]), dayWord) {
			days = append(days, wd)
		}
	}
	return days
}

// MeetsOn reports whether the schedule meets on wd.
func MeetsOn(schedule string, wd time.Weekday) bool {
	for _, d := range Weekdays(schedule) {
		if d == wd {
			return true
		}
	}
	return false
}

// DaysUntilNext returns how many days after `from` the schedule next meets (0 = today).
// ok is false when the schedule has no recognised weekday.
func DaysUntilNext(schedule string, from time.Weekday) (days int, ok bool) {
	days = 7
	for _, d := range Weekdays(schedule) {
		if dist := (int(d) - int(from) + 7) % 7; dist < days {
			days = dist
			ok = true
		}
	}
	return days, ok
}
