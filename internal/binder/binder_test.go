package binder

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mcncl/jsonbind/internal/config"
	"github.com/mcncl/jsonbind/internal/errors"
	"github.com/mcncl/jsonbind/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct {
	Title string
	Level int
}

func (p *position) Fields() []Descriptor {
	return []Descriptor{
		Field("title", &p.Title, Str()),
		Field("level", &p.Level, Int[int]()),
	}
}

type profile struct {
	FullName string
	Score    int
	ID       string
	Nickname *string
	Role     position
	Tags     *Set[string]
	Scores   map[string]float64
	Joined   *time.Time
}

func (p *profile) Fields() []Descriptor {
	return []Descriptor{
		Field("fullName", &p.FullName, Str()),
		Field("score", &p.Score, Int[int]()).Default(10),
		Field("id", &p.ID, Str()).As("ID"),
		Field("nickname", &p.Nickname, Opt(Str())),
		Field("role", &p.Role, Nested[position]()),
		Field("tags", &p.Tags, SetOf(Str())),
		Field("scores", &p.Scores, Dict(Float[float64]())),
		Field("joinedAt", &p.Joined, Opt(Date())),
	}
}

func TestBind_MatchesDeclaredNames(t *testing.T) {
	var p profile
	require.NoError(t, Bind(&p, `{"fullName": "Ann", "score": 7, "ID": 42, "id": "ignored"}`))

	assert.Equal(t, "Ann", p.FullName)
	assert.Equal(t, 7, p.Score)
	assert.Equal(t, "42", p.ID)
	assert.Nil(t, p.Nickname)
}

func TestBind_KeyStyle(t *testing.T) {
	b := New(WithKeyStyle(config.KeyStyleSnake))

	var p profile
	require.NoError(t, b.Bind(&p, `{"full_name": "Ann", "fullName": "nope", "joined_at": "2020-02-03", "ID": "x"}`))
	assert.Equal(t, "Ann", p.FullName)
	assert.Equal(t, "x", p.ID)
	require.NotNil(t, p.Joined)
	assert.Equal(t, 3, p.Joined.Day())

	out := b.Marshal(&p)
	assert.True(t, strings.HasPrefix(out, `{"full_name":"Ann","score":10,"ID":"x"`), out)
	assert.Contains(t, out, `"joined_at":"2020-02-03"`)
}

func TestBind_Default(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want int
	}{
		{"absent key takes default", `{}`, 10},
		{"uncoercible value takes default", `{"score": "abc"}`, 10},
		{"null takes default", `{"score": null}`, 10},
		{"coerced value wins", `{"score": "5"}`, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := profile{Score: 99}
			require.NoError(t, Bind(&p, tt.doc))
			assert.Equal(t, tt.want, p.Score)
		})
	}
}

func TestBind_OnChange(t *testing.T) {
	var calls [][2]string
	val := "start"
	rec := &hooked{val: &val, fn: func(old, new string) { calls = append(calls, [2]string{old, new}) }}

	require.NoError(t, Bind(rec, `{"v": "next"}`))
	require.NoError(t, Bind(rec, `{"v": {}}`))
	require.NoError(t, Bind(rec, `{}`))
	require.NoError(t, Bind(rec, `{"v": 3}`))

	assert.Equal(t, [][2]string{{"start", "next"}, {"next", "3"}}, calls)
}

type hooked struct {
	val *string
	fn  func(old, new string)
}

func (h *hooked) Fields() []Descriptor {
	return []Descriptor{Field("v", h.val, Str()).OnChange(h.fn)}
}

func TestBind_ParseErrorLeavesRecordUntouched(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"truncated", `{"fullName": `},
		{"trailing garbage", `{"fullName": "x"} x`},
		{"empty", ``},
		{"whitespace", " \n\t"},
		{"single quotes", `{'fullName': 'x'}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := profile{FullName: "kept", Score: 1}
			err := Bind(&p, tt.doc)
			require.Error(t, err)
			assert.True(t, errors.IsParseError(err))
			assert.Equal(t, profile{FullName: "kept", Score: 1}, p)
		})
	}

	err := Bind(&profile{}, "")
	assert.ErrorIs(t, err, errors.ErrEmptyInput)
}

func TestBindPath(t *testing.T) {
	doc := `{"data": {"items": [{"fullName": "A"}, {"fullName": "B"}], "count": 2}}`

	tests := []struct {
		name string
		path string
		want string
	}{
		{"dotted path", "data.items.1", "B"},
		{"slashed path", "data/items/0", "A"},
		{"redundant separators", "/data//items/0/", "A"},
		{"missing key binds nothing", "data.people", "initial"},
		{"index out of range binds nothing", "data.items.5", "initial"},
		{"scalar binds nothing", "data.count", "initial"},
		{"array binds nothing", "data.items", "initial"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := profile{FullName: "initial"}
			require.NoError(t, BindPath(&p, doc, tt.path))
			assert.Equal(t, tt.want, p.FullName)
		})
	}
}

func TestBind_TopLevelArray(t *testing.T) {
	rl := &recordingLogger{}
	p := profile{FullName: "kept"}

	require.NoError(t, New(WithLogger(rl)).Bind(&p, `[{"fullName": "x"}]`))
	assert.Equal(t, "kept", p.FullName)
	require.Len(t, rl.all(), 1)
	assert.Contains(t, rl.all()[0], "nothing to bind")
	assert.Contains(t, rl.all()[0], "array")
}

func TestBind_NestedUpdatedInPlace(t *testing.T) {
	p := profile{Role: position{Title: "dev", Level: 2}}

	require.NoError(t, Bind(&p, `{"role": {"level": "3"}}`))
	assert.Equal(t, position{Title: "dev", Level: 3}, p.Role)

	require.NoError(t, Bind(&p, `{"role": "manager"}`))
	assert.Equal(t, position{Title: "dev", Level: 3}, p.Role)
}

func TestSerialize_OmitsAbsentValues(t *testing.T) {
	p := profile{FullName: "Ann"}
	assert.Equal(t, `{"fullName":"Ann","score":0,"ID":"","role":{"title":"","level":0}}`, Marshal(&p))

	nick := "annie"
	p.Nickname = &nick
	p.Scores = map[string]float64{"b": 2.5, "a": 1}
	assert.Equal(t,
		`{"fullName":"Ann","score":0,"ID":"","nickname":"annie","role":{"title":"","level":0},"scores":{"a":1,"b":2.5}}`,
		Marshal(&p))
}

func TestSerialize_Value(t *testing.T) {
	p := profile{FullName: "Ann", Tags: NewSet("x")}
	v := Serialize(&p)

	require.Equal(t, models.Object, v.Kind())
	name, ok := v.Get("fullName")
	require.True(t, ok)
	s, _ := name.AsString()
	assert.Equal(t, "Ann", s)

	tags, ok := v.Get("tags")
	require.True(t, ok)
	assert.Equal(t, 1, tags.Len())
}

func TestRoundTrip(t *testing.T) {
	nick := "annie"
	joined := time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC)
	original := profile{
		FullName: "Ann \"the\" <Coder>",
		Score:    -4,
		ID:       "a-1",
		Nickname: &nick,
		Role:     position{Title: "lead", Level: 5},
		Tags:     NewSet("go", "json"),
		Scores:   map[string]float64{"math": 0.1, "art": 1e21},
		Joined:   &joined,
	}

	for _, b := range []*Binder{New(), New(WithKeyStyle(config.KeyStyleKebab)), New(WithPrettyOutput("\t"))} {
		var copied profile
		require.NoError(t, b.Bind(&copied, b.Marshal(&original)))
		assert.Equal(t, original.FullName, copied.FullName)
		assert.Equal(t, original.Score, copied.Score)
		assert.Equal(t, original.ID, copied.ID)
		assert.Equal(t, *original.Nickname, *copied.Nickname)
		assert.Equal(t, original.Role, copied.Role)
		assert.Equal(t, original.Tags.Values(), copied.Tags.Values())
		assert.Equal(t, original.Scores, copied.Scores)
		assert.True(t, original.Joined.Equal(*copied.Joined))
		assert.Equal(t, b.Marshal(&original), b.Marshal(&copied))
		assert.True(t, b.Serialize(&original).Equal(b.Serialize(&copied)))
	}
}

type clash struct {
	A *string
	B string
}

func (c *clash) Fields() []Descriptor {
	return []Descriptor{
		Field("a", &c.A, Opt(Str())).As("x"),
		Field("b", &c.B, Str()).As("x"),
	}
}

func TestSerialize_DuplicateKeys(t *testing.T) {
	rl := &recordingLogger{}
	b := New(WithLogger(rl))

	c := clash{B: "second"}
	assert.Equal(t, `{"x":"second"}`, b.Marshal(&c))
	assert.Empty(t, rl.all())

	first := "first"
	c.A = &first
	assert.Equal(t, `{"x":"first"}`, b.Marshal(&c))
	require.Len(t, rl.all(), 1)
	assert.Contains(t, rl.all()[0], "duplicate key ignored")
}

func TestLogger_TracesSkippedFields(t *testing.T) {
	rl := &recordingLogger{}
	b := New(WithLogger(rl))

	var p profile
	require.NoError(t, b.Bind(&p, `{"fullName": [], "role": {"level": "high"}, "tags": ["a", {}]}`))

	lines := rl.all()
	assert.Contains(t, lines, "field skipped field fullName kind string source array")
	assert.Contains(t, lines, "field skipped field role.level kind int source string")
	assert.Contains(t, lines, "element dropped field tags index 1 source object")
	// score was absent: the default applies without a trace
	for _, l := range lines {
		assert.NotContains(t, l, "field score")
	}
}

func TestDescribe(t *testing.T) {
	infos := Describe(&profile{})
	require.Len(t, infos, 8)

	assert.Equal(t, FieldInfo{Name: "fullName", Key: "fullName", Kind: KindString, Type: "string"}, infos[0])
	assert.Equal(t, FieldInfo{Name: "id", Key: "ID", Explicit: true, Kind: KindString, Type: "string"}, infos[2])
	assert.True(t, infos[3].Optional)
	assert.Equal(t, "binder.position", infos[4].Type)
	assert.Equal(t, "map<string,float64>", infos[6].Type)
	assert.Equal(t, "joinedAt (optional) optional<date>", infos[7].String())

	// callers get their own copy
	infos[0].Key = "changed"
	assert.Equal(t, "fullName", Describe(&profile{})[0].Key)

	styled := New(WithKeyStyle(config.KeyStyleSnake)).Describe(&profile{})
	assert.Equal(t, "full_name", styled[0].Key)
	assert.Equal(t, "ID", styled[2].Key)
	assert.Equal(t, "joined_at", styled[7].Key)
}

func TestDescribe_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	results := make([][]FieldInfo, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Describe(&position{})
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Binding.DateFormat = "dd/MM/yyyy"
	cfg.Binding.Timezone = "Asia/Shanghai"
	cfg.Binding.KeyStyle = config.KeyStyleSnake
	cfg.Output.Pretty = true

	rl := &recordingLogger{}
	b, err := FromConfig(cfg, rl)
	require.NoError(t, err)

	var p profile
	require.NoError(t, b.Bind(&p, `{"full_name": "Ann", "joined_at": "02/01/2020"}`))
	require.NotNil(t, p.Joined)
	assert.Equal(t, time.Date(2020, 1, 1, 16, 0, 0, 0, time.UTC), p.Joined.UTC())

	out := b.Marshal(&position{Title: "x", Level: 1})
	assert.Equal(t, "{\n  \"title\": \"x\",\n  \"level\": 1\n}", out)

	cfg.Binding.Timezone = "Nowhere/Special"
	_, err = FromConfig(cfg, nil)
	assert.Error(t, err)
}

func TestWithPrettyOutput(t *testing.T) {
	b := New(WithPrettyOutput("\t"))
	p := profile{Tags: NewSet[string]()}
	out := b.Marshal(&p)

	assert.True(t, strings.HasPrefix(out, "{\n\t\"fullName\": \"\",\n"), out)
	assert.Contains(t, out, "\t\"role\": {\n\t\t\"title\": \"\",\n")
	assert.Contains(t, out, "\t\"tags\": []")
}

func TestNilOptionsIgnored(t *testing.T) {
	b := New(WithLocation(nil), WithLogger(nil))
	var p profile
	require.NoError(t, b.Bind(&p, `{"joinedAt": "2020-01-02", "fullName": []}`))
	require.NotNil(t, p.Joined)
	assert.Equal(t, time.UTC, p.Joined.Location())
}
