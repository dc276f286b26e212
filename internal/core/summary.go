package core

import (
	"bytes"
	"encoding/json"
)

// Series is a chart-ready pair of parallel label and value arrays.
type Series struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// NewSeries returns an empty series that serializes as [] rather than null.
func NewSeries(capacity int) Series {
	return Series{
		Labels: make([]string, 0, capacity),
		Data:   make([]float64, 0, capacity),
	}
}

// Add appends one label/value pair.
func (s *Series) Add(label string, value float64) {
	s.Labels = append(s.Labels, label)
	s.Data = append(s.Data, value)
}

// Total returns the sum of Data.
func (s Series) Total() float64 {
	var t float64
	for _, v := range s.Data {
		t += v
	}
	return t
}

// KPIs are the headline numbers of a month.
type KPIs struct {
	Practicas int64   `json:"practicas"`
	Pacientes int     `json:"pacientes"`
	Promedio  float64 `json:"promedio"`
}

// TopPatient is one entry of the top-patients ranking.
type TopPatient struct {
	Nombre   string `json:"nombre"`
	Cantidad int64  `json:"cantidad"`
}

// Meta carries auxiliary data for the front-end.
type Meta struct {
	Year int `json:"year"`
}

// MonthSummary is the precomputed dashboard payload for one year+month.
type MonthSummary struct {
	Periodo               string        `json:"periodo"`
	KPIs                  KPIs          `json:"kpis"`
	Origen                Series        `json:"origen"`
	TipoServicio          Series        `json:"tipoServicio"`
	Profesionales         Series        `json:"profesionales"`
	ObrasSociales         Series        `json:"obrasSociales"`
	DiasSemana            Series        `json:"diasSemana"`
	FrecuenciaPacientes   Series        `json:"frecuenciaPacientes"`
	TopPacientes          []TopPatient  `json:"topPacientes"`
	ServicioPorObraSocial Keyed[Series] `json:"servicioPorObraSocial"`
	Meta                  Meta          `json:"meta"`
}

type (
	// YearSummary maps Spanish month names to summaries, in calendar order.
	YearSummary = Keyed[MonthSummary]

	// DashboardData maps 4-digit years to their months, in ascending order.
	DashboardData = Keyed[YearSummary]
)

// Entry is one key/value pair of a Keyed object.
type Entry[V any] struct {
	Key   string
	Value V
}

// Keyed is a JSON object that keeps insertion order when serialized.
type Keyed[V any] struct {
	entries []Entry[V]
}

// Set inserts key or replaces its value in place.
func (k *Keyed[V]) Set(key string, value V) {
	for i := range k.entries {
		if k.entries[i].Key == key {
			k.entries[i].Value = value
			return
		}
	}
	k.entries = append(k.entries, Entry[V]{Key: key, Value: value})
}

// Get returns the value stored under key.
func (k Keyed[V]) Get(key string) (V, bool) {
	for _, e := range k.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	var zero V
	return zero, false
}

// Keys returns the keys in insertion order.
func (k Keyed[V]) Keys() []string {
	out := make([]string, len(k.entries))
	for i, e := range k.entries {
		out[i] = e.Key
	}
	return out
}

// Entries returns a copy of the pairs in insertion order.
func (k Keyed[V]) Entries() []Entry[V] {
	return append([]Entry[V](nil), k.entries...)
}

// Len returns the number of keys.
func (k Keyed[V]) Len() int {
	return len(k.entries)
}

// MarshalJSON writes the pairs as an object in insertion order.
func (k Keyed[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range k.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalUnescaped(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalUnescaped(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalUnescaped is json.Marshal without HTML escaping.
func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
