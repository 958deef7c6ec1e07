package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList хранит упорядоченный список строк одной колонкой TEXT (JSON).
// Используется для regions, categories и portfolio_photos профиля мастера.
// StringList stores an ordered list of strings as a single TEXT (JSON) column.
type StringList []string

// Value реализует driver.Valuer.
func (sl StringList) Value() (driver.Value, error) {
	if sl == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(sl))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan реализует sql.Scanner.
func (sl *StringList) Scan(src interface{}) error {
	if src == nil {
		*sl = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("StringList: неподдерживаемый тип колонки %T", src)
	}
	if len(data) == 0 {
		*sl = nil
		return nil
	}
	return json.Unmarshal(data, (*[]string)(sl))
}

// Contains сообщает, содержит ли список значение.
func (sl StringList) Contains(v string) bool {
	for _, s := range sl {
		if s == v {
			return true
		}
	}
	return false
}

// NullFloat64 - обертка для sql.NullFloat64 для правильной обработки JSON.
type NullFloat64 struct {
	sql.NullFloat64
}

// MarshalJSON реализует интерфейс json.Marshaler для NullFloat64.
func (nf NullFloat64) MarshalJSON() ([]byte, error) {
	if !nf.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(nf.Float64)
}

// UnmarshalJSON реализует интерфейс json.Unmarshaler для NullFloat64.
func (nf *NullFloat64) UnmarshalJSON(b []byte) error {
	var f *float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	if f != nil {
		nf.Float64 = *f
		nf.Valid = true
	} else {
		nf.Valid = false
	}
	return nil
}

// NewNullFloat64 создает валидный NullFloat64.
func NewNullFloat64(f float64) NullFloat64 {
	return NullFloat64{sql.NullFloat64{Float64: f, Valid: true}}
}

// NullTime - обертка для sql.NullTime для правильной обработки JSON.
type NullTime struct {
	sql.NullTime
}

// NewNullTime создает валидный NullTime.
func NewNullTime(t time.Time) NullTime {
	return NullTime{sql.NullTime{Time: t, Valid: true}}
}

// MarshalJSON реализует интерфейс json.Marshaler для NullTime.
func (nt NullTime) MarshalJSON() ([]byte, error) {
	if !nt.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(nt.Time)
}

// UnmarshalJSON реализует интерфейс json.Unmarshaler для NullTime.
func (nt *NullTime) UnmarshalJSON(b []byte) error {
	var t *time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	if t != nil {
		nt.Time = *t
		nt.Valid = true
	} else {
		nt.Valid = false
	}
	return nil
}
