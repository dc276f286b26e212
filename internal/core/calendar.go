package core

import (
	"strconv"
	"strings"
	"time"
)

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// Indexed by time.Weekday (Sunday = 0).
var weekdayNames = [...]string{
	"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado",
}

// MonthName returns the Spanish name for month 1-12, or "Desconocido".
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return "Desconocido"
	}
	return monthNames[month-1]
}

// MonthNumber resolves a Spanish month name (any case) or a numeric string.
// It returns 0 when the value is not a month.
func MonthNumber(name string) int {
	name = strings.TrimSpace(name)
	if n, err := strconv.Atoi(name); err == nil {
		if n >= 1 && n <= 12 {
			return n
		}
		return 0
	}
	for i, m := range monthNames {
		if strings.EqualFold(m, name) {
			return i + 1
		}
	}
	return 0
}

// WeekdayName returns the Spanish name of a weekday.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d%7]
}

// WeekdayOrder returns the dashboard weekday labels, Monday first.
// A fresh slice is returned on every call.
func WeekdayOrder() []string {
	out := make([]string, 0, 7)
	for i := 1; i <= 7; i++ {
		out = append(out, weekdayNames[i%7])
	}
	return out
}
