package graphql

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"estategraph/server/internal/catalog"
	"estategraph/server/internal/models"
)

// DateLayout is the output format of the Date scalar, millisecond precision
// in UTC.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// Date accepts RFC 3339 text, a plain calendar date or epoch milliseconds.
type Date time.Time

func (Date) ImplementsGraphQLType(name string) bool {
	return name == "Date"
}

func (d *Date) UnmarshalGraphQL(input interface{}) error {
	var (
		t   time.Time
		err error
	)
	switch v := input.(type) {
	case string:
		t, err = parseDate(v)
	case float64:
		t = time.UnixMilli(int64(v)).UTC()
	case int:
		t = time.UnixMilli(int64(v)).UTC()
	case int32:
		t = time.UnixMilli(int64(v)).UTC()
	case int64:
		t = time.UnixMilli(v).UTC()
	case time.Time:
		t = v
	default:
		err = fmt.Errorf("%w: date must be a string or epoch milliseconds, got %T", catalog.ErrInvalidInput, input)
	}
	if err != nil {
		return err
	}
	*d = Date(t)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).UTC().Format(DateLayout))
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse %q as a date", catalog.ErrInvalidInput, s)
}

// JSON carries opaque structured data. Stored BSON documents are normalized
// to plain maps and slices on output.
type JSON struct {
	Value interface{}
}

func (JSON) ImplementsGraphQLType(name string) bool {
	return name == "JSON"
}

func (j *JSON) UnmarshalGraphQL(input interface{}) error {
	j.Value = input
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	return json.Marshal(models.NormalizeBSON(j.Value))
}
