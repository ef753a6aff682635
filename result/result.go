// Package result models the raw backtest result object returned by the
// external engine. The input is semi-structured: any section may be missing,
// and the sections that are present come in a handful of inconsistent shapes
// (percent strings vs fractions, symbol objects vs plain strings, unix
// seconds vs ISO timestamps). Decoding never rejects a result outright;
// malformed entries are skipped and the rest is kept.
package result

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"time"
)

// Direction is the order side as the engine reports it.
type Direction int

const (
	Buy  Direction = 0
	Sell Direction = 1
)

func (d Direction) String() string {
	if d == Sell {
		return "Sell"
	}
	return "Buy"
}

// UnmarshalJSON accepts both numeric (0/1) and string ("Buy"/"Sell")
// encodings of the direction.
func (d *Direction) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		if n == 1 {
			*d = Sell
		} else {
			*d = Buy
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil && s == "Sell" {
		*d = Sell
		return nil
	}
	*d = Buy
	return nil
}

// Symbol carries the identifier aliases the engine attaches to an order.
// Preference when resolving: value, then permtick, else the bare string.
type Symbol struct {
	Value    string `json:"value"`
	Permtick string `json:"permtick"`
}

func (s *Symbol) UnmarshalJSON(b []byte) error {
	var plain string
	if err := json.Unmarshal(b, &plain); err == nil {
		s.Value = plain
		return nil
	}
	type alias Symbol
	var a alias
	if err := json.Unmarshal(b, &a); err == nil {
		*s = Symbol(a)
	}
	return nil
}

// Order is a single fill record from the raw result.
type Order struct {
	ID        string    `json:"-"` // map key in the raw result
	Time      Timestamp `json:"time"`
	Symbol    Symbol    `json:"symbol"`
	Direction Direction `json:"direction"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
	Value     float64   `json:"value"`
	Status    int       `json:"status"` // 3 = filled
}

// ResolveSymbol returns the best available identifier for the order,
// or "UNKNOWN" when the raw record carried none.
func (o Order) ResolveSymbol() string {
	if o.Symbol.Value != "" {
		return o.Symbol.Value
	}
	if o.Symbol.Permtick != "" {
		return o.Symbol.Permtick
	}
	return "UNKNOWN"
}

// Timestamp accepts ISO-8601 strings and unix second/millisecond numbers.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if parsed, ok := ParseTime(s); ok {
			t.Time = parsed
		}
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		t.Time = FromUnix(int64(n))
	}
	return nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses an ISO-8601-ish timestamp string. It also accepts a bare
// unix-second integer string, which is how chart series key their values.
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return FromUnix(n), true
	}
	return time.Time{}, false
}

// FromUnix converts a unix timestamp to time.Time, treating values above
// 1e12 as milliseconds.
func FromUnix(v int64) time.Time {
	if v > 1e12 {
		return time.UnixMilli(v).UTC()
	}
	return time.Unix(v, 0).UTC()
}

// Float is a numeric value that may arrive as a JSON number or a numeric
// string; unparseable values decode to NaN and are filtered downstream.
type Float float64

func (f *Float) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = Float(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			*f = Float(n)
			return nil
		}
	}
	*f = Float(math.NaN())
	return nil
}

// Valid reports whether the value parsed to a finite number.
func (f Float) Valid() bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// Stat is a summary-statistic value: a plain number, a fraction, or a
// formatted string like "35.96%" or "$100,000.00". Interpretation is
// field-specific and lives in the metrics package; Stat only preserves
// what arrived.
type Stat struct {
	Num   float64
	Str   string
	IsNum bool
}

func (s *Stat) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		s.Num = n
		s.IsNum = true
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		s.Str = str
	}
	return nil
}

// StatMap is one of the heterogeneous summary-statistics dictionaries.
type StatMap map[string]Stat

// Chart is a named chart with one or more value series.
type Chart struct {
	Series map[string]Series `json:"series"`
}

// Series holds pre-computed chart values. The values arrive either as a
// map of unix-second string -> number-or-{y} or as a list of {x,y} points;
// Points normalizes both.
type Series struct {
	Values json.RawMessage `json:"values"`
}

// TimeValue is a normalized series sample.
type TimeValue struct {
	Time  time.Time
	Value float64
}

// Points extracts the usable samples from the series, dropping entries
// whose value does not parse to a finite number. Output is sorted by time.
func (s Series) Points() []TimeValue {
	if len(s.Values) == 0 {
		return nil
	}

	var out []TimeValue

	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(s.Values, &asMap); err == nil {
		for key, rawVal := range asMap {
			ts, ok := ParseTime(key)
			if !ok {
				continue
			}
			if v, ok := seriesValue(rawVal); ok {
				out = append(out, TimeValue{Time: ts, Value: v})
			}
		}
	} else {
		var asList []json.RawMessage
		if err := json.Unmarshal(s.Values, &asList); err != nil {
			return nil
		}
		for _, rawVal := range asList {
			var pt struct {
				X Float `json:"x"`
				Y Float `json:"y"`
			}
			if err := json.Unmarshal(rawVal, &pt); err != nil {
				continue
			}
			if !pt.X.Valid() || !pt.Y.Valid() {
				continue
			}
			out = append(out, TimeValue{Time: FromUnix(int64(pt.X)), Value: float64(pt.Y)})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

func seriesValue(raw json.RawMessage) (float64, bool) {
	var f Float
	if err := json.Unmarshal(raw, &f); err == nil && f.Valid() {
		return float64(f), true
	}
	var wrapped struct {
		Y Float `json:"y"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Y.Valid() {
		return float64(wrapped.Y), true
	}
	return 0, false
}

// Raw is a decoded backtest result. Every field may be empty.
type Raw struct {
	ProfitLoss map[string]Float
	Orders     map[string]Order
	Charts     map[string]Chart

	// Candidate summary-statistics sections, probed in this order.
	TotalPerformanceStats StatMap
	Statistics            StatMap
	PortfolioStatistics   StatMap
	RuntimeStatistics     StatMap
}

// SortedOrders returns the raw order map as a slice ordered by time
// ascending, with the map key as a stable tie-break.
func (r *Raw) SortedOrders() []Order {
	if r == nil || len(r.Orders) == 0 {
		return nil
	}
	out := make([]Order, 0, len(r.Orders))
	for key, o := range r.Orders {
		o.ID = key
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Time.Equal(out[j].Time.Time) {
			return out[i].Time.Before(out[j].Time.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// HasOrders reports whether any order records decoded.
func (r *Raw) HasOrders() bool { return r != nil && len(r.Orders) > 0 }

// HasProfitLoss reports whether any usable profitLoss entries decoded.
func (r *Raw) HasProfitLoss() bool {
	if r == nil {
		return false
	}
	for _, v := range r.ProfitLoss {
		if v.Valid() {
			return true
		}
	}
	return false
}
