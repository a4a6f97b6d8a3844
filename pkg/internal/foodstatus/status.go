// Package foodstatus 根据库存数量、最低库存与保质期推导食材状态.
//
// 判定顺序（先命中者生效）：
//
//  1. 设置了最低库存，且 0 < 数量 <= 最低库存：INSUFFICIENT
//  2. 设置了到期日：已过期为 EXPIRED，距到期 0~3 天为 NEAR_EXPIRY
//  3. 其余为 NORMAL
//
// 数量为 0 不会被判定为库存不足，是否删除由调用方决定.
package foodstatus

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status 食材状态.
type Status string

const (
	Normal       Status = "NORMAL"
	Insufficient Status = "INSUFFICIENT"
	NearExpiry   Status = "NEAR_EXPIRY"
	Expired      Status = "EXPIRED"
)

// NearExpiryDays 距到期不超过该天数即为临期.
const NearExpiryDays = 3

// All 返回全部状态，顺序固定.
func All() []Status {
	return []Status{Normal, Insufficient, NearExpiry, Expired}
}

// Parse 解析状态名称（忽略大小写），未知名称返回 false.
func Parse(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case Normal, Insufficient, NearExpiry, Expired:
		return st, true
	default:
		return "", false
	}
}

func (s Status) String() string { return string(s) }

// Input 计算状态所需的字段.
type Input struct {
	Quantity    decimal.Decimal
	MinQuantity *decimal.Decimal
	// ExpiryDate 只使用年月日.
	ExpiryDate *time.Time
}

// Compute 计算状态，today 只使用年月日.
func Compute(in Input, today time.Time) Status {
	if in.MinQuantity != nil &&
		in.Quantity.LessThanOrEqual(*in.MinQuantity) &&
		in.Quantity.IsPositive() {
		return Insufficient
	}

	if in.ExpiryDate != nil {
		days := DaysBetween(today, *in.ExpiryDate)
		if days < 0 {
			return Expired
		}

		if days <= NearExpiryDays {
			return NearExpiry
		}
	}

	return Normal
}

// DaysBetween 返回 from 到 to 相差的自然日数，各自按所在时区取日期.
func DaysBetween(from, to time.Time) int {
	return int(civil(to).Sub(civil(from)).Hours() / 24)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Clock 返回当前时间，便于测试注入.
type Clock func() time.Time

// Today 返回 clock 在 loc 时区下的当前日期零点.
func (c Clock) Today(loc *time.Location) time.Time {
	now := time.Now
	if c != nil {
		now = c
	}

	if loc == nil {
		loc = time.Local
	}

	y, m, d := now().In(loc).Date()

	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
