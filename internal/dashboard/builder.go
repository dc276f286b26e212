// Package dashboard aggregates cleaned procedure records into the
// year → month summaries consumed by the reporting front-end.
package dashboard

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"tablero/internal/core"
)

// Ranking sizes of the truncated breakdowns.
const (
	TopProfessionals = 6
	TopInsurers      = 6
	TopPatients      = 10
)

// Build groups records by (year, month) and summarizes every group.
// Years and months come out in ascending calendar order.
func Build(records []core.ProcedureRecord) core.DashboardData {
	sorted := append([]core.ProcedureRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		yi, yj := sorted[i].Date.Year(), sorted[j].Date.Year()
		if yi != yj {
			return yi < yj
		}
		return sorted[i].MonthNumber() < sorted[j].MonthNumber()
	})

	var data core.DashboardData
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sameMonth(sorted[start], sorted[end]) {
			end++
		}
		group := sorted[start:end]
		year := group[0].Year()

		months, _ := data.Get(year)
		months.Set(group[0].MonthName(), Summarize(group))
		data.Set(year, months)

		start = end
	}
	return data
}

// Summarize computes the MonthSummary of one (year, month) group.
// The group must be non-empty and share a single year and month.
func Summarize(group []core.ProcedureRecord) core.MonthSummary {
	first := group[0]

	var total float64
	var maxDay int
	patients := newTally()
	origins := newTally()
	services := newTally()
	profs := newTally()
	insurers := newTally()
	weekdays := make(map[string]float64, 7)
	byInsurer := make(map[string]*tally)

	for _, r := range group {
		q := r.Quantity
		total += q
		if d := r.Day(); d > maxDay {
			maxDay = d
		}
		patients.add(r.Patient, q)
		origins.add(r.Origin, q)
		services.add(r.ServiceType, q)
		profs.add(r.Professional, q)
		insurers.add(r.Insurer, q)
		weekdays[r.WeekdayName()] += q

		if r.Insurer != "" {
			svc, ok := byInsurer[r.Insurer]
			if !ok {
				svc = newTally()
				byInsurer[r.Insurer] = svc
			}
			svc.add(r.ServiceType, q)
		}
	}

	summary := core.MonthSummary{
		Periodo: fmt.Sprintf("01 al %d de %s de %s", maxDay, first.MonthName(), first.Year()),
		KPIs: core.KPIs{
			Practicas: int64(total),
			Pacientes: patients.len(),
			Promedio:  average(total, patients.len()),
		},
		Origen:              origins.ascending(),
		TipoServicio:        services.ascending(),
		Profesionales:       profs.top(TopProfessionals),
		ObrasSociales:       insurers.top(TopInsurers),
		DiasSemana:          weekdaySeries(weekdays),
		FrecuenciaPacientes: frequency(patients),
		TopPacientes:        topPatients(patients, TopPatients),
		Meta:                core.Meta{Year: first.Date.Year()},
	}
	// insurers.order is first-appearance order
	for _, name := range insurers.order {
		summary.ServicioPorObraSocial.Set(name, byInsurer[name].ascending())
	}
	return summary
}

func sameMonth(a, b core.ProcedureRecord) bool {
	return a.Date.Year() == b.Date.Year() && a.MonthNumber() == b.MonthNumber()
}

// average returns total/patients rounded to 2 decimals, or 0 without patients.
func average(total float64, patients int) float64 {
	if patients == 0 {
		return 0
	}
	return math.Round(total/float64(patients)*100) / 100
}

func weekdaySeries(sums map[string]float64) core.Series {
	labels := core.WeekdayOrder()
	s := core.NewSeries(len(labels))
	for _, l := range labels {
		s.Add(l, sums[l])
	}
	return s
}

// frequency builds the histogram of patients per total quantity.
func frequency(patients *tally) core.Series {
	counts := make(map[float64]int)
	for _, p := range patients.order {
		counts[patients.sums[p]]++
	}
	keys := make([]float64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	s := core.NewSeries(len(keys))
	for _, k := range keys {
		s.Add(StudiesLabel(k), float64(counts[k]))
	}
	return s
}

// StudiesLabel renders k as "1 Estudio" or "3 Estudios".
func StudiesLabel(k float64) string {
	n := strconv.FormatFloat(k, 'f', -1, 64)
	if k > 1 {
		return n + " Estudios"
	}
	return n + " Estudio"
}

func topPatients(patients *tally, n int) []core.TopPatient {
	ranked := patients.ranked()
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]core.TopPatient, 0, len(ranked))
	for _, name := range ranked {
		out = append(out, core.TopPatient{Nombre: name, Cantidad: int64(patients.sums[name])})
	}
	return out
}
