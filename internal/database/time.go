package database

import (
	"fmt"
	"time"
)

// Formato gravado em todas as colunas de data, sempre em UTC
const timeLayout = "2006-01-02 15:04:05"

var readLayouts = []string{
	timeLayout,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// formatCutoff arredonda o limite para o próximo segundo inteiro. As colunas
// guardam segundos truncados, então "coluna < cutoff" equivale a comparar
// com o teto de cutoff.
func formatCutoff(cutoff time.Time) string {
	return formatTime(cutoff.Add(time.Second - 1).Truncate(time.Second))
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// dbTime lê datas independentemente do driver: cada um devolve
// time.Time, texto ou inteiro.
type dbTime struct {
	Time  time.Time
	Valid bool
}

func (t *dbTime) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		*t = dbTime{}
		return nil
	case time.Time:
		t.Time, t.Valid = x.UTC(), true
		return nil
	case string:
		return t.parse(x)
	case []byte:
		return t.parse(string(x))
	case int64:
		t.Time, t.Valid = time.Unix(x, 0).UTC(), true
		return nil
	default:
		return fmt.Errorf("tipo de data não suportado: %T", v)
	}
}

func (t *dbTime) parse(s string) error {
	if s == "" {
		*t = dbTime{}
		return nil
	}
	for _, layout := range readLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("data inválida: %q", s)
}

func (t dbTime) ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
