package query

import (
	"fmt"
	"time"
)

// Date/Time Functions

// now is the clock used by now(); tests replace it
var now = time.Now

func dateFunctions() []*FunctionDef {
	return []*FunctionDef{
		scalar("now", TypeDate, nil, today),
		scalar("year", TypeNumber, []Param{{"d", TypeDate}}, datePart(func(t time.Time) int { return t.Year() })),
		scalar("month", TypeNumber, []Param{{"d", TypeDate}}, datePart(func(t time.Time) int { return int(t.Month()) })),
		scalar("day", TypeNumber, []Param{{"d", TypeDate}}, datePart(func(t time.Time) int { return t.Day() })),
		scalar("add_days", TypeDate, []Param{{"d", TypeDate}, {"days", TypeNumber}}, addDays),
		scalar("days_between", TypeNumber, []Param{{"from", TypeDate}, {"to", TypeDate}}, daysBetween),
	}
}

// truncateDate drops the time of day, in UTC
func truncateDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// today returns the current UTC date
func today(args ...interface{}) (interface{}, error) {
	return truncateDate(now()), nil
}

func argDate(args []interface{}, i int) (time.Time, error) {
	t, ok := args[i].(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("argument %d: expected date, got %s", i+1, TypeOf(args[i]))
	}
	return t, nil
}

func datePart(part func(time.Time) int) func(args ...interface{}) (interface{}, error) {
	return func(args ...interface{}) (interface{}, error) {
		t, err := argDate(args, 0)
		if err != nil {
			return nil, err
		}
		return float64(part(t.UTC())), nil
	}
}

// addDays shifts a date by a whole number of days
func addDays(args ...interface{}) (interface{}, error) {
	t, err := argDate(args, 0)
	if err != nil {
		return nil, err
	}
	days, err := argNumber(args, 1)
	if err != nil {
		return nil, err
	}
	if days != float64(int(days)) {
		return nil, fmt.Errorf("add_days: days must be a whole number, got %s", formatNumber(days))
	}
	return truncateDate(t).AddDate(0, 0, int(days)), nil
}

// daysBetween returns the number of days from the first date to the second
func daysBetween(args ...interface{}) (interface{}, error) {
	from, err := argDate(args, 0)
	if err != nil {
		return nil, err
	}
	to, err := argDate(args, 1)
	if err != nil {
		return nil, err
	}
	return truncateDate(to).Sub(truncateDate(from)).Hours() / 24, nil
}
