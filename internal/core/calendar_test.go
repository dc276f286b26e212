package core

import (
	"reflect"
	"testing"
	"time"
)

func TestMonthName(t *testing.T) {
	cases := map[int]string{
		1:  "Enero",
		3:  "Marzo",
		9:  "Septiembre",
		12: "Diciembre",
		0:  "Desconocido",
		13: "Desconocido",
	}
	for in, want := range cases {
		if got := MonthName(in); got != want {
			t.Errorf("MonthName(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestMonthNumber(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"Enero", 1},
		{"marzo", 3},
		{" DICIEMBRE ", 12},
		{"7", 7},
		{"13", 0},
		{"March", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := MonthNumber(tc.in); got != tc.want {
			t.Errorf("MonthNumber(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestWeekdayName(t *testing.T) {
	if got := WeekdayName(time.Sunday); got != "Domingo" {
		t.Fatalf("Sunday -> %q", got)
	}
	if got := WeekdayName(time.Wednesday); got != "Miércoles" {
		t.Fatalf("Wednesday -> %q", got)
	}
}

func TestWeekdayOrder(t *testing.T) {
	want := []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}
	got := WeekdayOrder()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("WeekdayOrder() = %v, want %v", got, want)
	}
	// callers may mutate the result freely
	got[0] = "x"
	if WeekdayOrder()[0] != "Lunes" {
		t.Fatalf("WeekdayOrder returned shared storage")
	}
}
