package ios_sim

import (
	"io"
	"strings"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/shamanec/find-simulator/models"
)

var (
	ErrNoMatch        = errors.New("no matching simulator found")
	ErrMalformedInput = errors.New("malformed simctl device list")
)

// Field names in simctl output are case sensitive, unlike the defaults of the
// standard-library-compatible config.
var simctlJSON = jsoniter.Config{
	ValidateJsonRawMessage: true,
	CaseSensitive:          true,
}.Froze()

// Matcher decides whether a device record qualifies. It returns an error
// when a field it needs is missing from the record.
type Matcher func(runtime string, record models.SimctlRecord) (bool, error)

func IsMalformed(err error) bool {
	return errors.Cause(err) == ErrMalformedInput
}

func IsNoMatch(err error) bool {
	return errors.Cause(err) == ErrNoMatch
}

func malformed(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformedInput, format, args...)
}

// NameContains matches devices whose name contains substr, case sensitive.
func NameContains(substr string) Matcher {
	return func(runtime string, record models.SimctlRecord) (bool, error) {
		if record.Name == nil {
			return false, malformed("device in runtime `%s` has no name", runtime)
		}
		return strings.Contains(*record.Name, substr), nil
	}
}

// IsAvailable matches devices flagged as available.
func IsAvailable() Matcher {
	return func(runtime string, record models.SimctlRecord) (bool, error) {
		if record.IsAvailable == nil {
			return false, malformed("device `%s` in runtime `%s` has no isAvailable field", nameOf(record), runtime)
		}
		return *record.IsAvailable, nil
	}
}

// All matches when every matcher does. Evaluation stops at the first
// matcher that rejects the record, so later matchers never see it.
func All(matchers ...Matcher) Matcher {
	return func(runtime string, record models.SimctlRecord) (bool, error) {
		for _, matcher := range matchers {
			ok, err := matcher(runtime, record)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

func nameOf(record models.SimctlRecord) string {
	if record.Name == nil {
		return ""
	}
	return *record.Name
}

// FirstAvailableIPhone returns the first available simulator whose name
// contains "iPhone".
func FirstAvailableIPhone(r io.Reader) (models.SimctlDevice, error) {
	return FindFirst(r, All(NameContains("iPhone"), IsAvailable()))
}

// FindFirst reads a simctl device listing from r and returns the first device
// accepted by match. Runtimes are visited in document order and devices in
// list order. Every visited device must carry a name.
func FindFirst(r io.Reader, match Matcher) (models.SimctlDevice, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.SimctlDevice{}, errors.Wrap(err, "read simctl device list")
	}

	if err := validDocument(data); err != nil {
		return models.SimctlDevice{}, err
	}

	devicesData, err := devicesObject(data)
	if err != nil {
		return models.SimctlDevice{}, err
	}

	return scanRuntimes(devicesData, All(NameContains(""), match))
}

// validDocument checks data is UTF-8 holding exactly one JSON value followed
// by nothing but whitespace.
func validDocument(data []byte) error {
	if !utf8.Valid(data) {
		return malformed("input is not valid UTF-8")
	}

	iter := simctlJSON.BorrowIterator(data)
	defer simctlJSON.ReturnIterator(iter)

	iter.Skip()
	if iter.Error != nil {
		return malformed("invalid JSON - %s", iter.Error)
	}

	iter.WhatIsNext()
	if iter.Error != io.EOF {
		return malformed("invalid JSON - unexpected data after top-level value")
	}
	return controlCharsInStrings(data)
}

// controlCharsInStrings rejects raw control characters inside string literals.
// data must already be a structurally valid document.
func controlCharsInStrings(data []byte) error {
	inString, escaped := false, false
	for i, c := range data {
		switch {
		case !inString:
			inString = c == '"'
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = false
		case c < ' ':
			return malformed("invalid JSON - control character %#x in string at offset %d", c, i)
		}
	}
	return nil
}

// devicesObject returns the raw value of the top-level `devices` key. When the
// key repeats the last occurrence wins.
func devicesObject(data []byte) ([]byte, error) {
	iter := simctlJSON.BorrowIterator(data)
	defer simctlJSON.ReturnIterator(iter)

	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return nil, malformed("top-level value is not an object")
	}

	var devicesData []byte
	iter.ReadObjectCB(func(iter *jsoniter.Iterator, field string) bool {
		if field == "devices" {
			devicesData = append([]byte(nil), iter.SkipAndReturnBytes()...)
		} else {
			iter.Skip()
		}
		return iter.Error == nil
	})
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, malformed("read top-level object - %s", iter.Error)
	}
	if devicesData == nil {
		return nil, malformed("missing `devices` key")
	}
	return devicesData, nil
}

type runtimeDevices struct {
	runtime string
	data    []byte
}

// runtimeList returns the runtimes of the `devices` object in document order.
// A repeated runtime keeps the position of its first occurrence and the value
// of its last.
func runtimeList(devicesData []byte) ([]runtimeDevices, error) {
	iter := simctlJSON.BorrowIterator(devicesData)
	defer simctlJSON.ReturnIterator(iter)

	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return nil, malformed("`devices` is not an object")
	}

	var runtimes []runtimeDevices
	positions := map[string]int{}
	iter.ReadObjectCB(func(iter *jsoniter.Iterator, runtime string) bool {
		data := append([]byte(nil), iter.SkipAndReturnBytes()...)
		if i, ok := positions[runtime]; ok {
			runtimes[i].data = data
		} else {
			positions[runtime] = len(runtimes)
			runtimes = append(runtimes, runtimeDevices{runtime: runtime, data: data})
		}
		return iter.Error == nil
	})
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, malformed("read `devices` - %s", iter.Error)
	}
	return runtimes, nil
}

func scanRuntimes(devicesData []byte, match Matcher) (models.SimctlDevice, error) {
	runtimes, err := runtimeList(devicesData)
	if err != nil {
		return models.SimctlDevice{}, err
	}

	for _, rd := range runtimes {
		iter := simctlJSON.BorrowIterator(rd.data)
		found, err := scanDevices(iter, rd.runtime, match)
		simctlJSON.ReturnIterator(iter)
		if err != nil {
			return models.SimctlDevice{}, err
		}
		if found != nil {
			return *found, nil
		}
	}
	return models.SimctlDevice{}, ErrNoMatch
}

func scanDevices(iter *jsoniter.Iterator, runtime string, match Matcher) (*models.SimctlDevice, error) {
	if iter.WhatIsNext() != jsoniter.ArrayValue {
		return nil, malformed("devices of runtime `%s` are not a list", runtime)
	}

	var found *models.SimctlDevice
	var scanErr error
	iter.ReadArrayCB(func(iter *jsoniter.Iterator) bool {
		if iter.WhatIsNext() != jsoniter.ObjectValue {
			scanErr = malformed("device entry in runtime `%s` is not an object", runtime)
			return false
		}

		var record models.SimctlRecord
		iter.ReadVal(&record)
		if iter.Error != nil && iter.Error != io.EOF {
			scanErr = malformed("decode device in runtime `%s` - %s", runtime, iter.Error)
			return false
		}

		ok, err := match(runtime, record)
		if err != nil {
			scanErr = err
			return false
		}
		if !ok {
			return true
		}

		if record.UDID == nil {
			scanErr = malformed("device `%s` in runtime `%s` has no udid", nameOf(record), runtime)
			return false
		}
		found = &models.SimctlDevice{
			Runtime:     runtime,
			Name:        nameOf(record),
			IsAvailable: record.IsAvailable != nil && *record.IsAvailable,
			UDID:        *record.UDID,
		}
		return false
	})
	if scanErr != nil || found != nil {
		return found, scanErr
	}
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, malformed("read devices of runtime `%s` - %s", runtime, iter.Error)
	}
	return nil, nil
}
