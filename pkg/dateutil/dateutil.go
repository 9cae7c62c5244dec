package dateutil

import (
	"time"
)

// Age calculates the age at a given date
func Age(birthDate, atDate time.Time) int {
	age := atDate.Year() - birthDate.Year()
	if atDate.Month() < birthDate.Month() ||
		(atDate.Month() == birthDate.Month() && atDate.Day() < birthDate.Day()) {
		age--
	}
	return age
}

// AgeInMonths returns the completed months of age at a given date
func AgeInMonths(birthDate, atDate time.Time) int {
	months := (atDate.Year()-birthDate.Year())*12 + int(atDate.Month()) - int(birthDate.Month())
	if atDate.Day() < birthDate.Day() {
		months--
	}
	return months
}

// FractionalAge returns the age in years including completed months (e.g. 30.25)
func FractionalAge(birthDate, atDate time.Time) float64 {
	return float64(AgeInMonths(birthDate, atDate)) / 12.0
}

// MonthsBetween returns the whole calendar months from one date to another,
// ignoring the day of month
func MonthsBetween(fromDate, toDate time.Time) int {
	return (toDate.Year()-fromDate.Year())*12 + int(toDate.Month()) - int(fromDate.Month())
}

// CalendarMonth returns the calendar month reached after offset months from
// startMonth (1-12)
func CalendarMonth(startMonth time.Month, offset int) time.Month {
	m := (int(startMonth) - 1 + offset) % 12
	if m < 0 {
		m += 12
	}
	return time.Month(m + 1)
}

// AddYears adds a specified number of years to a date
func AddYears(date time.Time, years int) time.Time {
	return date.AddDate(years, 0, 0)
}

// RetirementDate returns the first day of the month in which the participant
// reaches retirementAge
func RetirementDate(birthDate time.Time, retirementAge int) time.Time {
	return BeginningOfMonth(AddYears(birthDate, retirementAge))
}

// BeginningOfMonth returns the first instant of the month for a given date
func BeginningOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}
