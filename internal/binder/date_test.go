package binder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoLayout(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"yyyy-MM-dd", "2006-01-02"},
		{"yyyy/MM/dd HH:mm", "2006/01/02 15:04"},
		{"dd.MM.yy", "02.01.06"},
		{"yyyy-MM-dd'T'HH:mm:ss.SSSXXX", "2006-01-02T15:04:05.000Z07:00"},
		{"EEE, d MMM yyyy hh:mm a", "Mon, 2 Jan 2006 03:04 PM"},
		{"EEEE MMMM", "Monday January"},
		{"HH 'o''clock'", "15 o'clock"},
		{"''yyyy''", "'2006'"},
		{"Z z", "-0700 MST"},
		{time.RFC3339, time.RFC3339},
		{"2006-01-02", "2006-01-02"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, GoLayout(tt.pattern))
			// second call is served from the cache
			assert.Equal(t, tt.want, GoLayout(tt.pattern))
		})
	}
}

func TestDate_DecodeString(t *testing.T) {
	var none *time.Time

	got := decode(t, New(), Opt(Date()), none, `{"v": "2000-01-01"}`)
	require.NotNil(t, got)
	assert.True(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Equal(*got))

	assert.Nil(t, decode(t, New(), Opt(Date()), none, `{"v": "not-a-date"}`))
	assert.Nil(t, decode(t, New(), Opt(Date()), none, `{"v": true}`))
}

func TestDate_DecodeUnixSeconds(t *testing.T) {
	b := New()
	var zero time.Time

	got := decode(t, b, Date(), zero, `{"v": 946684800}`)
	assert.True(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Equal(got))

	got = decode(t, b, Date(), zero, `{"v": 946684800.5}`)
	assert.True(t, time.Date(2000, 1, 1, 0, 0, 0, int(500*time.Millisecond), time.UTC).Equal(got))

	got = decode(t, b, Date(), zero, `{"v": -1.5}`)
	assert.True(t, time.Unix(-2, int64(500*time.Millisecond)).Equal(got))

	got = decode(t, b, Date(), zero, `{"v": 1e30}`)
	assert.True(t, got.IsZero())
}

func TestDate_BinderFormatAndLocation(t *testing.T) {
	plus8 := time.FixedZone("UTC+8", 8*60*60)
	b := New(WithDateFormat("dd.MM.yyyy HH:mm"), WithLocation(plus8))

	var zero time.Time
	got := decode(t, b, Date(), zero, `{"v": "02.03.2021 10:30"}`)
	assert.True(t, time.Date(2021, 3, 2, 2, 30, 0, 0, time.UTC).Equal(got))

	rec := &box[time.Time]{val: got, codec: Date()}
	assert.Equal(t, `{"v":"02.03.2021 10:30"}`, b.Marshal(rec))
	assert.Equal(t, `{"v":"2021-03-02"}`, New().Marshal(rec))
}

type event struct {
	On    time.Time
	Dates []time.Time
}

func (e *event) Fields() []Descriptor {
	return []Descriptor{
		Field("on", &e.On, Date()).DateFormat("yyyy/MM/dd HH:mm"),
		Field("dates", &e.Dates, List(Date())).DateFormat("yyyyMMdd"),
	}
}

func TestDate_FieldFormatOverride(t *testing.T) {
	var e event
	require.NoError(t, Bind(&e, `{"on": "2021/03/04 05:06", "dates": ["20200101", "2020-01-02", "20200103"]}`))

	assert.True(t, time.Date(2021, 3, 4, 5, 6, 0, 0, time.UTC).Equal(e.On))
	require.Len(t, e.Dates, 2)
	assert.Equal(t, 3, e.Dates[1].Day())

	assert.Equal(t, `{"on":"2021/03/04 05:06","dates":["20200101","20200103"]}`, Marshal(&e))
}
