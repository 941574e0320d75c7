package binder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOf_Decode(t *testing.T) {
	b := New()
	var none *Set[int]

	got := decode(t, b, SetOf(Int[int]()), none, `{"v": ["1", "2", "3"]}`)
	require.NotNil(t, got)
	assert.True(t, NewSet(1, 2, 3).Equal(got))

	got = decode(t, b, SetOf(Int[int]()), none, `{"v": ["2", 1, "x", 2.0, null]}`)
	assert.Equal(t, []int{2, 1}, got.Values())

	assert.Nil(t, decode(t, b, SetOf(Int[int]()), none, `{"v": "1,2,3"}`))
}

func TestSetOf_EncodeKeepsInsertionOrder(t *testing.T) {
	rec := &box[*Set[string]]{val: NewSet("b", "a", "c", "a"), codec: SetOf(Str())}
	assert.Equal(t, `{"v":["b","a","c"]}`, Marshal(rec))

	rec.val = nil
	assert.Equal(t, `{}`, Marshal(rec))

	rec.val = NewSet[string]()
	assert.Equal(t, `{"v":[]}`, Marshal(rec))
}

func TestList_DropsFailedElements(t *testing.T) {
	got := decode(t, New(), List(Int[int]()), nil, `{"v": ["1", "x", 3, true, null]}`)
	assert.Equal(t, []int{1, 3}, got)
}

func TestList_OptionalElementsKeepSlots(t *testing.T) {
	pets := Opt(Enum(cat, dog))

	got := decode(t, New(), List(pets), nil, `{"v": ["dog", "cat"]}`)
	require.Len(t, got, 2)
	assert.Equal(t, dog, *got[0])
	assert.Equal(t, cat, *got[1])

	got = decode(t, New(), List(pets), nil, `{"v": ["dog", "fish", null]}`)
	require.Len(t, got, 3)
	assert.Equal(t, dog, *got[0])
	assert.Nil(t, got[1])
	assert.Nil(t, got[2])

	rec := &box[[]*animal]{val: got, codec: List(pets)}
	assert.Equal(t, `{"v":["dog",null,null]}`, Marshal(rec))
}

func TestList_MismatchLeavesField(t *testing.T) {
	initial := []int{9}
	got := decode(t, New(), List(Int[int]()), initial, `{"v": {"a": 1}}`)
	assert.Equal(t, []int{9}, got)

	got = decode(t, New(), List(Int[int]()), initial, `{"v": []}`)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestList_NilOmittedEmptyWritten(t *testing.T) {
	rec := &box[[]int]{codec: List(Int[int]())}
	assert.Equal(t, `{}`, Marshal(rec))

	rec.val = []int{}
	assert.Equal(t, `{"v":[]}`, Marshal(rec))
}

func TestList_Nested(t *testing.T) {
	got := decode(t, New(), List(List(Int[int]())), nil, `{"v": [[1, "2"], "bad", [], [3]]}`)
	assert.Equal(t, [][]int{{1, 2}, {}, {3}}, got)
}

func TestDict(t *testing.T) {
	got := decode(t, New(), Dict(Int[int]()), nil, `{"v": {"b": "2", "a": 1, "c": "x"}}`)
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, got)

	rec := &box[map[string]int]{val: got, codec: Dict(Int[int]())}
	assert.Equal(t, `{"v":{"a":1,"b":2}}`, Marshal(rec))

	opt := decode(t, New(), Dict(Opt(Int[int]())), nil, `{"v": {"a": "x", "b": 2}}`)
	require.Len(t, opt, 2)
	assert.Nil(t, opt["a"])
	assert.Equal(t, 2, *opt["b"])

	assert.Nil(t, decode(t, New(), Dict(Int[int]()), nil, `{"v": [1, 2]}`))
}

func TestOpt(t *testing.T) {
	var none *int
	one := 1

	got := decode(t, New(), Opt(Int[int]()), none, `{"v": "5"}`)
	require.NotNil(t, got)
	assert.Equal(t, 5, *got)

	assert.Nil(t, decode(t, New(), Opt(Int[int]()), &one, `{"v": null}`))
	assert.Equal(t, &one, decode(t, New(), Opt(Int[int]()), &one, `{"v": "five"}`))
	assert.Equal(t, &one, decode(t, New(), Opt(Int[int]()), &one, `{}`))

	assert.Equal(t, "optional<[]int>", Opt(List(Int[int]())).Describe())
	assert.Equal(t, "map<string,set<string>>", Dict(SetOf(Str())).Describe())
}
