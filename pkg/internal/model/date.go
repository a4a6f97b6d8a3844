package model

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"time"
)

// DateLayout 日期的文本格式.
const DateLayout = time.DateOnly

// Date 不含时间与时区的日历日期，JSON 与数据库中均以 YYYY-MM-DD 表示.
type Date struct {
	t time.Time
}

// NewDate 构造日期.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf 取 t 在其时区下的年月日.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()

	return NewDate(y, m, d)
}

// ParseDate 解析 YYYY-MM-DD，也接受 RFC3339 时间戳并取其日期部分.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}

	if len(s) >= len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return DateOf(t), nil
		}
	}

	return Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
}

// DatePtr 返回日期指针.
func DatePtr(d Date) *Date { return &d }

// Time 返回该日期 UTC 零点.
func (d Date) Time() time.Time { return d.t }

// IsZero 是否为零值.
func (d Date) IsZero() bool { return d.t.IsZero() }

// AddDays 返回偏移后的日期.
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

func (d Date) String() string { return d.t.Format(DateLayout) }

// MarshalJSON 输出 "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}

	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON 解析 "YYYY-MM-DD"，null 或空串得到零值.
func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*d = Date{}

		return nil
	}

	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid date %s", b)
	}

	parsed, err := ParseDate(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// Value 实现 driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}

	return d.String(), nil
}

// Scan 实现 sql.Scanner，兼容各驱动返回的 time.Time 与文本.
func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}

		return nil
	case time.Time:
		*d = DateOf(v)

		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}

		*d = parsed

		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into model.Date", value)
	}
}

// GormDataType 数据库列类型.
func (Date) GormDataType() string { return "date" }
