package rematch

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
)

// Signed is the set of signed integer types Int accepts.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is the set of unsigned integer types Uint accepts.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is the set of integer types the radix slots accept.
type Integer interface {
	Signed | Unsigned
}

// Floating is the set of floating point types Float accepts.
type Floating interface {
	~float32 | ~float64
}

// Slot is a binding destination with an explicit conversion.
//
// Slots are built by String, Bytes, Int, Uint, Float, Bool, Text, Hex,
// Octal and CRadix, and adjusted by Group, Named and Optional. Plain
// pointers passed to Bind are turned into slots automatically:
//
//	var host string
//	var port uint16
//	err := m.Bind(&host, rematch.Named("port", &port))
type Slot struct {
	group    int
	explicit bool
	name     string
	optional bool
	conv     converter
	err      *BindError
}

// converter turns captured text into a pending write. Nothing is written
// until the returned commit runs, so a failed Bind leaves every
// destination untouched.
type converter struct {
	kind  BindErrorKind
	parse func(text []byte) (commit func(), err error)
	zero  func()
}

func unsupportedSlot(dst any) Slot {
	return Slot{err: &BindError{
		Kind:  UnsupportedType,
		Group: -1,
		Err:   fmt.Errorf("cannot bind to %T", dst),
	}}
}

// String binds the captured text verbatim.
func String(dst *string) Slot {
	if dst == nil {
		return unsupportedSlot(dst)
	}
	return Slot{conv: converter{
		parse: func(text []byte) (func(), error) {
			s := string(text)
			return func() { *dst = s }, nil
		},
		zero: func() { *dst = "" },
	}}
}

// Bytes binds a copy of the captured text.
func Bytes(dst *[]byte) Slot {
	if dst == nil {
		return unsupportedSlot(dst)
	}
	return Slot{conv: converter{
		parse: func(text []byte) (func(), error) {
			b := append([]byte{}, text...)
			return func() { *dst = b }, nil
		},
		zero: func() { *dst = nil },
	}}
}

// Int parses the captured text as a base 10 signed integer.
func Int[T Signed](dst *T) Slot {
	return integerSlot(dst, 10)
}

// Uint parses the captured text as a base 10 unsigned integer.
func Uint[T Unsigned](dst *T) Slot {
	return integerSlot(dst, 10)
}

// Hex parses the captured text as a base 16 integer. A leading "0x" or
// "0X" is accepted.
func Hex[T Integer](dst *T) Slot {
	return integerSlot(dst, 16)
}

// Octal parses the captured text as a base 8 integer.
func Octal[T Integer](dst *T) Slot {
	return integerSlot(dst, 8)
}

// CRadix parses the captured text as an integer whose base follows C
// conventions: "0x" selects hex, a leading "0" octal, anything else
// decimal.
func CRadix[T Integer](dst *T) Slot {
	return integerSlot(dst, 0)
}

func integerSlot[T Integer](dst *T, base int) Slot {
	if dst == nil {
		return unsupportedSlot(dst)
	}
	return Slot{conv: converter{
		kind: NumericParseFailure,
		parse: func(text []byte) (func(), error) {
			v, err := parseInteger[T](string(text), base)
			if err != nil {
				return nil, err
			}
			return func() { *dst = v }, nil
		},
		zero: func() { *dst = 0 },
	}}
}

func parseInteger[T Integer](s string, base int) (T, error) {
	if base == 0 {
		base = cRadixBase(s)
	}
	if base == 16 {
		s = trimHexPrefix(s)
	}
	var zero T
	if zero-1 < zero {
		v, err := strconv.ParseInt(s, base, 64)
		if err != nil {
			return 0, err
		}
		if int64(T(v)) != v {
			return 0, &strconv.NumError{Func: "ParseInt", Num: s, Err: strconv.ErrRange}
		}
		return T(v), nil
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, err
	}
	if uint64(T(v)) != v {
		return 0, &strconv.NumError{Func: "ParseUint", Num: s, Err: strconv.ErrRange}
	}
	return T(v), nil
}

// cRadixBase picks the base of a C integer literal. Only the 0x and 0
// prefixes are recognized, so 0b, 0o and digit separators fail to parse.
func cRadixBase(s string) int {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	switch {
	case len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X'):
		return 16
	case len(s) > 1 && s[0] == '0':
		return 8
	}
	return 10
}

func trimHexPrefix(s string) string {
	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign, s = s[:1], s[1:]
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	return sign + s
}

// Float parses the captured text as a floating point number. Values that
// overflow the destination type fail.
func Float[T Floating](dst *T) Slot {
	if dst == nil {
		return unsupportedSlot(dst)
	}
	bits := reflect.TypeOf(dst).Elem().Bits()
	return Slot{conv: converter{
		kind: NumericParseFailure,
		parse: func(text []byte) (func(), error) {
			v, err := strconv.ParseFloat(string(text), bits)
			if err != nil {
				return nil, err
			}
			f := T(v)
			return func() { *dst = f }, nil
		},
		zero: func() { *dst = 0 },
	}}
}

// Bool parses the captured text with strconv.ParseBool.
func Bool(dst *bool) Slot {
	if dst == nil {
		return unsupportedSlot(dst)
	}
	return Slot{conv: converter{
		kind: NumericParseFailure,
		parse: func(text []byte) (func(), error) {
			v, err := strconv.ParseBool(string(text))
			if err != nil {
				return nil, err
			}
			return func() { *dst = v }, nil
		},
		zero: func() { *dst = false },
	}}
}

// Text binds through dst's UnmarshalText method. The text is unmarshaled
// into a fresh value that replaces *dst only when the whole Bind succeeds.
// dst must be a non-nil pointer.
func Text(dst encoding.TextUnmarshaler) Slot {
	rv := reflect.ValueOf(dst)
	if dst == nil || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return unsupportedSlot(dst)
	}
	elem := rv.Type().Elem()
	return Slot{conv: converter{
		kind: UnmarshalFailure,
		parse: func(text []byte) (func(), error) {
			tmp := reflect.New(elem)
			if err := tmp.Interface().(encoding.TextUnmarshaler).UnmarshalText(text); err != nil {
				return nil, err
			}
			return func() { rv.Elem().Set(tmp.Elem()) }, nil
		},
		zero: func() { rv.Elem().Set(reflect.Zero(elem)) },
	}}
}

// Group binds dst to group i instead of the group given by its position.
func Group(i int, dst any) Slot {
	s := slotFor(dst)
	s.group, s.explicit, s.name = i, true, ""
	return s
}

// Named binds dst to the group with the given name.
func Named(name string, dst any) Slot {
	s := slotFor(dst)
	s.name, s.explicit = name, false
	return s
}

// Optional lets dst's group be unset, in which case dst is reset to its
// zero value instead of failing with GroupNotParticipating.
func Optional(dst any) Slot {
	s := slotFor(dst)
	s.optional = true
	return s
}

// slotFor converts a Bind argument into a Slot.
func slotFor(dst any) Slot {
	switch d := dst.(type) {
	case Slot:
		return d
	case *string:
		return String(d)
	case *[]byte:
		return Bytes(d)
	case *int:
		return Int(d)
	case *int8:
		return Int(d)
	case *int16:
		return Int(d)
	case *int32:
		return Int(d)
	case *int64:
		return Int(d)
	case *uint:
		return Uint(d)
	case *uint8:
		return Uint(d)
	case *uint16:
		return Uint(d)
	case *uint32:
		return Uint(d)
	case *uint64:
		return Uint(d)
	case *float32:
		return Float(d)
	case *float64:
		return Float(d)
	case *bool:
		return Bool(d)
	case encoding.TextUnmarshaler:
		return Text(d)
	}
	return reflectSlot(dst)
}

// reflectSlot handles pointers to named types with a basic underlying
// type, such as *time.Duration or a caller's `type Port uint16`.
func reflectSlot(dst any) Slot {
	rv := reflect.ValueOf(dst)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return unsupportedSlot(dst)
	}
	t := rv.Type().Elem()

	var parse func(s string) (reflect.Value, error)
	kind := NumericParseFailure
	switch t.Kind() {
	case reflect.String:
		kind = UnmarshalFailure
		parse = func(s string) (reflect.Value, error) {
			return reflect.ValueOf(s), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		parse = func(s string) (reflect.Value, error) {
			v, err := strconv.ParseInt(s, 10, t.Bits())
			return reflect.ValueOf(v), err
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		parse = func(s string) (reflect.Value, error) {
			v, err := strconv.ParseUint(s, 10, t.Bits())
			return reflect.ValueOf(v), err
		}
	case reflect.Float32, reflect.Float64:
		parse = func(s string) (reflect.Value, error) {
			v, err := strconv.ParseFloat(s, t.Bits())
			return reflect.ValueOf(v), err
		}
	case reflect.Bool:
		parse = func(s string) (reflect.Value, error) {
			v, err := strconv.ParseBool(s)
			return reflect.ValueOf(v), err
		}
	default:
		return unsupportedSlot(dst)
	}

	return Slot{conv: converter{
		kind: kind,
		parse: func(text []byte) (func(), error) {
			v, err := parse(string(text))
			if err != nil {
				return nil, err
			}
			v = v.Convert(t)
			return func() { rv.Elem().Set(v) }, nil
		},
		zero: func() { rv.Elem().Set(reflect.Zero(t)) },
	}}
}

// Bind converts groups of the match into dst. dst[i] binds group i+1
// unless it is a Slot made with Group or Named. nil entries are skipped.
//
// Every conversion runs before any destination is written: on error no
// destination is modified. Bind never modifies the Match.
//
// Example:
//
//	m := rematch.MustCompile(`(\w+)-(\d+)(?:-(\d+))?`).FullMatchString("v-1")
//	var name string
//	var major, minor int
//	err := m.Bind(&name, &major, rematch.Optional(&minor))
//	// name == "v", major == 1, minor == 0
func (m *Match) Bind(dst ...any) error {
	if !m.matched {
		return &BindError{Kind: NoMatch, Group: -1}
	}
	commits := make([]func(), 0, len(dst))
	for i, d := range dst {
		if d == nil {
			continue
		}
		commit, err := m.prepare(i+1, slotFor(d))
		if err != nil {
			return err
		}
		commits = append(commits, commit)
	}
	for _, commit := range commits {
		commit()
	}
	return nil
}

// prepare resolves the group of slot s at argument position pos and
// converts its text, returning the pending write.
func (m *Match) prepare(pos int, s Slot) (func(), error) {
	group := pos
	switch {
	case s.name != "":
		group = m.pattern.SubexpIndex(s.name)
		if group < 0 {
			return nil, &BindError{Kind: UnknownGroup, Group: -1, Name: s.name}
		}
	case s.explicit:
		group = s.group
	}

	if s.err != nil {
		e := *s.err
		e.Group, e.Name = group, s.name
		return nil, &e
	}
	if s.conv.parse == nil {
		return nil, &BindError{Kind: UnsupportedType, Group: group, Name: s.name}
	}
	if group < 0 || group >= m.NumGroups() {
		return nil, &BindError{Kind: UnknownGroup, Group: group, Name: s.name}
	}

	start, end, ok := m.Range(group)
	if !ok {
		if s.optional {
			return s.conv.zero, nil
		}
		return nil, &BindError{Kind: GroupNotParticipating, Group: group, Name: s.name}
	}
	text := m.input[start:end]
	commit, err := s.conv.parse(text)
	if err != nil {
		return nil, &BindError{Kind: s.conv.kind, Group: group, Name: s.name, Text: string(text), Err: err}
	}
	return commit, nil
}
