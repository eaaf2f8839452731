// Package fixedpoint implements the 1e18-scale integer arithmetic used for
// every amount and rate in the system. All divisions truncate toward zero and
// intermediates are 256 bits wide, so principal*rate products never lose
// precision before the final scale-down.
package fixedpoint

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	// SecondsPerYear is the 360-day financial year every annual rate is
	// quoted against.
	SecondsPerYear uint64 = 360 * 86400
)

// One is the fixed-point scale: 1.0 == 1e18.
var One = uint256.NewInt(1_000_000_000_000_000_000)

// Dec is an unsigned 1e18-scale fixed-point number. The zero value is 0.
// It serializes as a decimal string both in JSON and in the database
// (decimal(65,0) on MySQL, TEXT on SQLite), so no precision is lost
// round-tripping.
type Dec struct {
	i uint256.Int
}

func Zero() *Dec { return &Dec{} }

// FromUnits returns v whole units, i.e. v * 1e18.
func FromUnits(v uint64) *Dec {
	var d Dec
	d.i.Mul(uint256.NewInt(v), One)
	return &d
}

// FromRaw returns the raw mantissa v (no scaling applied).
func FromRaw(v uint64) *Dec {
	var d Dec
	d.i.SetUint64(v)
	return &d
}

// Parse reads a non-negative decimal-string mantissa.
func Parse(s string) (*Dec, error) {
	u, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("fixedpoint: parse %q: %w", s, err)
	}
	var d Dec
	d.i.Set(u)
	return &d, nil
}

// MustParse is Parse for literals in tests and wiring code.
func MustParse(s string) *Dec {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Dec) String() string {
	if d == nil {
		return "0"
	}
	return d.i.Dec()
}

func (d *Dec) Clone() *Dec {
	var out Dec
	if d != nil {
		out.i.Set(&d.i)
	}
	return &out
}

func (d *Dec) IsZero() bool { return d == nil || d.i.IsZero() }

func (d *Dec) Cmp(o *Dec) int {
	a, b := d, o
	if a == nil {
		a = Zero()
	}
	if b == nil {
		b = Zero()
	}
	return a.i.Cmp(&b.i)
}

func (d *Dec) Equal(o *Dec) bool { return d.Cmp(o) == 0 }
func (d *Dec) Lt(o *Dec) bool    { return d.Cmp(o) < 0 }
func (d *Dec) Gt(o *Dec) bool    { return d.Cmp(o) > 0 }

// Add returns d + o.
func (d *Dec) Add(o *Dec) *Dec {
	out := d.Clone()
	if o != nil {
		out.i.Add(&out.i, &o.i)
	}
	return out
}

// Sub returns d - o, clamped at zero. Callers in the accrual math only
// subtract quantities that are provably <= d (a spread fee never exceeds the
// interest it was derived from), so the clamp is unobservable there.
func (d *Dec) Sub(o *Dec) *Dec {
	if o == nil || o.IsZero() {
		return d.Clone()
	}
	if d.Cmp(o) <= 0 {
		return Zero()
	}
	out := d.Clone()
	out.i.Sub(&out.i, &o.i)
	return out
}

// mulDiv returns d*m/div with a 256-bit intermediate, truncating.
func (d *Dec) mulDiv(m, div *uint256.Int) *Dec {
	var out Dec
	if d == nil || div.IsZero() {
		return &out
	}
	p, overflow := new(uint256.Int).MulOverflow(&d.i, m)
	if overflow {
		// unreachable with sane amounts; saturate rather than wrap
		out.i.SetAllOne()
		return &out
	}
	out.i.Div(p, div)
	return &out
}

// Apply returns base*rate/1e18, the fundamental rate application.
func Apply(base, rate *Dec) *Dec {
	if base == nil || rate == nil {
		return Zero()
	}
	return base.mulDiv(&rate.i, One)
}

// AnnualRate scales a per-year rate mantissa down to the elapsed span:
// rate * elapsed / SecondsPerYear.
func AnnualRate(rate *Dec, elapsed uint64) *Dec {
	if rate == nil {
		return Zero()
	}
	return rate.mulDiv(uint256.NewInt(elapsed), uint256.NewInt(SecondsPerYear))
}

// Interest returns principal * AnnualRate(rate, elapsed) / 1e18, keeping the
// two truncation points in that order.
func Interest(principal, rate *Dec, elapsed uint64) *Dec {
	return Apply(principal, AnnualRate(rate, elapsed))
}

// Prorate returns d * num / den (den must be nonzero; zero den yields zero).
func Prorate(d *Dec, num, den uint64) *Dec {
	if d == nil || den == 0 {
		return Zero()
	}
	return d.mulDiv(uint256.NewInt(num), uint256.NewInt(den))
}

// Sum adds all operands.
func Sum(ds ...*Dec) *Dec {
	out := Zero()
	for _, d := range ds {
		if d != nil {
			out.i.Add(&out.i, &d.i)
		}
	}
	return out
}

// --- database/sql + JSON plumbing ---

func (d *Dec) Value() (driver.Value, error) {
	if d == nil {
		return "0", nil
	}
	return d.i.Dec(), nil
}

func (d *Dec) Scan(src any) error {
	if d == nil {
		return errors.New("fixedpoint: Scan into nil Dec")
	}
	switch v := src.(type) {
	case nil:
		d.i.Clear()
		return nil
	case string:
		return d.setDecimal(v)
	case []byte:
		return d.setDecimal(string(v))
	case int64:
		if v < 0 {
			return fmt.Errorf("fixedpoint: negative value %d", v)
		}
		d.i.SetUint64(uint64(v))
		return nil
	default:
		return fmt.Errorf("fixedpoint: cannot scan %T", src)
	}
}

func (d *Dec) setDecimal(s string) error {
	u, err := uint256.FromDecimal(s)
	if err != nil {
		return fmt.Errorf("fixedpoint: scan %q: %w", s, err)
	}
	d.i.Set(u)
	return nil
}

func (d *Dec) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Dec) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.setDecimal(s)
}

// GormDataType keeps gorm from guessing a numeric column for the struct.
func (Dec) GormDataType() string { return "decimal(65,0)" }

// GormDBDataType picks the column per dialect. SQLite gives decimal columns
// NUMERIC affinity and stores 1e18-scale mantissas as floats, so the value
// travels as TEXT there; MySQL keeps the exact decimal column.
func (Dec) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "sqlite" {
		return "text"
	}
	return "decimal(65,0)"
}
