package datafile

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Step is the outcome of feeding one payload to an Aggregator: either the
// updated partial state (Continue) or the final value (Done).
type Step struct {
	done  bool
	state any
	value any
}

// Continue carries partial state forward to the next payload.
func Continue(state any) Step { return Step{state: state} }

// Done completes the operation with its final value. The bank will not
// invoke the aggregator again during the same scan.
func Done(value any) Step { return Step{done: true, value: value} }

// IsDone reports whether the step completes the operation.
func (s Step) IsDone() bool { return s.done }

// ScanContext describes the payload currently being visited.
type ScanContext struct {
	Payload    Payload   // full decoded file
	MetaPrefix string    // key of the metadata document within Payload
	Last       bool      // no further file will be visited by this scan
	Name       string    // name under which the operation's result is returned
	Flat       bool      // the scan returns a bare value
	Now        time.Time // time of invocation
}

// Meta returns the metadata document of the current payload, if any.
func (sc ScanContext) Meta() (map[string]any, bool) {
	v, ok := lookup(sc.Payload, sc.MetaPrefix)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// Aggregator reduces a sequence of payloads, newest first, into one value.
// Implementations must not mutate values or sc.Payload: both are shared
// with other aggregators and with the payload cache.
type Aggregator interface {
	// Apply consumes the measurement document of one payload together with
	// the state returned by the previous call (nil on the first call).
	Apply(values any, state any, sc ScanContext) Step

	// Name is the default result name of the operation.
	Name() string
}

// Finisher is implemented by aggregators that can produce a result when the
// scan ends without them having signalled completion.
type Finisher interface {
	Finish(state any, sc ScanContext) any
}

// Named keys aggregators by their default names.
func Named(aggs ...Aggregator) map[string]Aggregator {
	ops := make(map[string]Aggregator, len(aggs))
	for _, agg := range aggs {
		ops[agg.Name()] = agg
	}
	return ops
}

// Decorated is a measurement annotated with metadata fields, as returned by
// non-flat scans of decorating aggregators.
type Decorated struct {
	Measurement any            `json:"Measurement"`
	Meta        map[string]any `json:"Meta"`
}

// base holds what every aggregator shares: the key paths it reads and the
// metadata fields it decorates its values with.
type base struct {
	keys     []string
	decorate []string
}

func (b base) Name() string { return strings.Join(b.keys, "__") }

// extract resolves the key paths; one key yields a scalar, several a slice.
func (b base) extract(values any) (any, bool) {
	if len(b.keys) == 1 {
		return lookup(values, b.keys[0])
	}
	out, ok := lookupAll(values, b.keys)
	if !ok {
		return nil, false
	}
	return out, true
}

func (b base) decorateValue(value any, sc ScanContext) any {
	if len(b.decorate) == 0 {
		return value
	}

	meta, _ := sc.Meta()
	fields := make([]any, len(b.decorate))
	for i, field := range b.decorate {
		fields[i] = meta[field]
	}

	if sc.Flat {
		if len(fields) == 1 {
			return []any{value, fields[0]}
		}
		return []any{value, fields}
	}

	named := make(map[string]any, len(b.decorate))
	for i, field := range b.decorate {
		named[field] = fields[i]
	}
	return Decorated{Measurement: value, Meta: named}
}

// Last yields the most recent value of its keys.
type Last struct {
	base
}

// NewLast reads keys (dotted paths) and optionally decorates with meta fields.
func NewLast(keys []string, decorate ...string) *Last {
	return &Last{base{keys: keys, decorate: decorate}}
}

func (a *Last) Apply(values any, _ any, sc ScanContext) Step {
	value, ok := a.extract(values)
	if !ok {
		return Continue(nil)
	}
	return Done(a.decorateValue(value, sc))
}

func (a *Last) String() string { return fmt.Sprintf("Last(%s)", a.Name()) }

// Multi collects every value recorded within age of the time of invocation.
type Multi struct {
	base
	age     time.Duration
	reverse bool
	reduce  func([]any) any
}

// MultiOptions configures NewMulti.
type MultiOptions struct {
	Decorate []string
	Reverse  bool // oldest first
}

// NewMulti collects the values of keys whose records are younger than age.
func NewMulti(keys []string, age time.Duration, opts MultiOptions) *Multi {
	return &Multi{
		base:    base{keys: keys, decorate: opts.Decorate},
		age:     age,
		reverse: opts.Reverse,
	}
}

// collected accumulates newest first.
type collected []any

func (a *Multi) Apply(values any, state any, sc ScanContext) Step {
	acc, _ := state.(collected)
	if acc == nil {
		acc = collected{}
	}

	if ts, ok := a.timestamp(sc); ok {
		if sc.Now.Sub(ts) >= a.age {
			return Done(a.finalize(acc))
		}
		if value, ok := a.extract(values); ok {
			acc = append(acc, a.decorateValue(value, sc))
		}
	}

	if sc.Last {
		return Done(a.finalize(acc))
	}
	return Continue(acc)
}

// Finish completes a collection cut short by undecodable trailing files.
func (a *Multi) Finish(state any, _ ScanContext) any {
	acc, _ := state.(collected)
	return a.finalize(acc)
}

// timestamp reads the record's meta Time (epoch seconds).
func (a *Multi) timestamp(sc ScanContext) (time.Time, bool) {
	meta, ok := sc.Meta()
	if !ok {
		return time.Time{}, false
	}
	secs, ok := meta["Time"].(float64)
	if !ok {
		return time.Time{}, false
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)), true
}

func (a *Multi) finalize(acc collected) any {
	values := make([]any, len(acc))
	copy(values, acc)
	if a.reverse {
		for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
			values[i], values[j] = values[j], values[i]
		}
	}
	if a.reduce != nil {
		return a.reduce(values)
	}
	return values
}

func (a *Multi) String() string {
	return fmt.Sprintf("Multi(%s, %s, reverse=%t)", a.Name(), a.age, a.reverse)
}

// StdDev yields the sample standard deviation of the values Multi would
// collect, or nil when fewer than two numeric values were collected.
type StdDev struct {
	Multi
}

// NewStdDev reads a single numeric key.
func NewStdDev(key string, age time.Duration) *StdDev {
	agg := &StdDev{Multi: *NewMulti([]string{key}, age, MultiOptions{})}
	agg.reduce = sampleStdDev
	return agg
}

func (a *StdDev) String() string { return fmt.Sprintf("StdDev(%s, %s)", a.Name(), a.age) }

func sampleStdDev(values []any) any {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := v.(float64); ok {
			nums = append(nums, f)
		}
	}
	if len(nums) < 2 {
		return nil
	}

	var mean float64
	for _, f := range nums {
		mean += f
	}
	mean /= float64(len(nums))

	var ss float64
	for _, f := range nums {
		ss += (f - mean) * (f - mean)
	}
	return math.Sqrt(ss / float64(len(nums)-1))
}
