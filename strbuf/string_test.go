package strbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/memkit/alloc"
	"github.com/pavanmanishd/memkit/arena"
	"github.com/pavanmanishd/memkit/arena/arenatest"
	"github.com/pavanmanishd/memkit/list"
	"github.com/pavanmanishd/memkit/view"
)

func allocators() map[string]func() alloc.Allocator {
	return map[string]func() alloc.Allocator{
		"heap":  func() alloc.Allocator { return alloc.NewHeap() },
		"arena": func() alloc.Allocator { return alloc.NewOwnedArena(128) },
		"guarded": func() alloc.Allocator {
			return alloc.NewOwnedArena(128, arena.WithGuards(arena.GuardStrict))
		},
	}
}

// terminated checks the byte after the content is zero.
func terminated(t *testing.T, s *String) {
	t.Helper()
	c := s.CString()
	require.Len(t, c, s.Len()+1)
	assert.Zero(t, c[s.Len()])
}

func TestNew(t *testing.T) {
	for name, mk := range allocators() {
		t.Run(name, func(t *testing.T) {
			s := New(mk(), 10)
			defer s.Free()
			assert.Zero(t, s.Len())
			assert.Equal(t, 10, s.Cap())
			assert.Equal(t, "", s.String())
			terminated(t, s)
		})
	}
}

func TestAppend(t *testing.T) {
	for name, mk := range allocators() {
		t.Run(name, func(t *testing.T) {
			s := FromString(mk(), "hello")
			defer s.Free()
			require.True(t, s.AppendByte(' '))
			require.True(t, s.Append([]byte("wor")))
			require.True(t, s.AppendString("ld"))
			require.True(t, s.AppendView(ConstViewOf("!")))
			require.True(t, s.AppendString(""))
			assert.True(t, s.Equal("hello world!"))
			terminated(t, s)

			require.True(t, s.Append(s.Bytes()[:5]), "self append")
			assert.Equal(t, "hello world!hello", s.String())
			terminated(t, s)
		})
	}
}

func TestAppendFormat(t *testing.T) {
	for name, mk := range allocators() {
		t.Run(name, func(t *testing.T) {
			s := New(mk(), 0)
			defer s.Free()
			require.True(t, s.AppendFormat("%d-%s", 42, "ok"))
			assert.Equal(t, 5, s.Len())
			assert.Equal(t, "42-ok", s.String())
			assert.Zero(t, s.CString()[5])

			require.True(t, s.AppendFormat(" %v %.2f", []int{1, 2}, 0.5))
			assert.Equal(t, "42-ok [1 2] 0.50", s.String())
			terminated(t, s)

			require.True(t, s.AppendFormat(""))
			assert.Equal(t, 16, s.Len())
		})
	}
}

func TestFromFormat(t *testing.T) {
	s := FromFormat(alloc.NewHeap(), "%s=%d", "x", 7)
	assert.Equal(t, "x=7", s.String())
	terminated(t, s)
}

// flaky renders differently each time it is formatted.
type flaky struct{ calls *int }

func (f flaky) String() string {
	*f.calls++
	if *f.calls == 1 {
		return "ab"
	}
	return "abcdef"
}

func TestAppendFormatRollsBack(t *testing.T) {
	s := FromString(alloc.NewHeap(), "keep")
	var calls int
	assert.False(t, s.AppendFormat("%v", flaky{&calls}))
	assert.Equal(t, 2, calls)
	assert.Equal(t, "keep", s.String())
	terminated(t, s)
}

func TestGrowthFailure(t *testing.T) {
	src := &arenatest.Source{FailAfter: 1}
	s := New(alloc.NewOwnedArena(32, arena.WithSource(src)), 4)
	defer s.Free()

	require.True(t, s.AppendString("abcd"))
	assert.False(t, s.AppendString("this will not fit in the arena"))
	assert.False(t, s.AppendFormat("%s", "this will not fit either, at all"))
	assert.Equal(t, "abcd", s.String())
	terminated(t, s)
}

func TestResize(t *testing.T) {
	s := FromString(alloc.NewOwnedArena(64), "abcdef")
	defer s.Free()

	require.True(t, s.Resize(3))
	assert.Equal(t, "abc", s.String())
	terminated(t, s)

	require.True(t, s.Resize(5))
	assert.Equal(t, []byte{'a', 'b', 'c', 0, 0}, s.Bytes())
	assert.False(t, s.Resize(-1))
}

func TestSubview(t *testing.T) {
	s := FromString(alloc.NewHeap(), "hello world")

	tests := []struct {
		name          string
		index, length int
		want          string
	}{
		{"prefix", 0, 5, "hello"},
		{"to end", 6, -1, "world"},
		{"single", 4, 1, "o"},
		{"too long", 6, 6, ""},
		{"past end", 11, 1, ""},
		{"negative index", -1, 2, ""},
		{"empty", 3, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := s.ConstSubview(tt.index, tt.length)
			assert.Equal(t, tt.want, string(v.Copy(nil)))
			assert.Equal(t, len(tt.want), s.Subview(tt.index, tt.length).Len())
		})
	}

	v := s.Subview(0, 5)
	*v.At(0) = 'j'
	assert.Equal(t, "jello world", s.String(), "subviews share storage")
}

func TestFind(t *testing.T) {
	s := FromString(alloc.NewHeap(), "a,b,c")
	assert.Equal(t, 1, s.Find(','))
	assert.Equal(t, 5, s.Find('x'))
	assert.Equal(t, 2, s.Index("b,c"))
	assert.Equal(t, -1, s.Index("cd"))
	assert.Equal(t, 0, s.Index(""))
}

func TestEqual(t *testing.T) {
	s := FromBytes(alloc.NewOwnedArena(64), []byte("abc"))
	defer s.Free()
	assert.True(t, s.Equal("abc"))
	assert.False(t, s.Equal("ab"))
	assert.True(t, s.EqualView(ConstViewOf("abc")))
	assert.False(t, s.EqualView(ConstViewOf("abd")))
	assert.True(t, New(alloc.NewHeap(), 0).EqualView(view.ConstView[byte]{}))

	twice := FromString(alloc.NewHeap(), "abcabc")
	assert.False(t, twice.EqualView(twice.ConstSubview(3, -1)))
	assert.True(t, FromString(alloc.NewHeap(), "abc").EqualView(twice.ConstSubview(3, -1)))
}

func TestConstViewOf(t *testing.T) {
	v := ConstViewOf("literal")
	assert.Equal(t, 7, v.Len())
	c, ok := v.At(3)
	assert.True(t, ok)
	assert.Equal(t, byte('e'), c)
	assert.Zero(t, ConstViewOf("").Len())
}

func TestFree(t *testing.T) {
	src := &arenatest.Source{}
	owned := alloc.NewOwnedArena(64, arena.WithSource(src))
	s := FromString(owned, "abc")
	s.Free()
	assert.Nil(t, owned.Arena())
	assert.Zero(t, src.Live())
	assert.Zero(t, s.Len())
	assert.Nil(t, s.CString())
	s.Free()
}

func TestListOfStrings(t *testing.T) {
	src := &arenatest.Source{}
	l := list.New[String](alloc.NewHeap(), 0)
	for _, w := range []string{"one", "two", "three"} {
		require.True(t, l.Add(*FromString(alloc.NewOwnedArena(32, arena.WithSource(src)), w)))
	}
	assert.Equal(t, 3, src.Live())
	assert.Equal(t, "two", l.At(1).String())

	require.True(t, l.Remove(0))
	assert.Equal(t, 2, src.Live())

	l.Free()
	assert.Zero(t, src.Live(), "list teardown frees every string")
}

func BenchmarkAppendFormat(b *testing.B) {
	for name, mk := range allocators() {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				s := New(mk(), 0)
				for j := 0; j < 32; j++ {
					s.AppendFormat("%d:%s;", j, "value")
				}
				s.Free()
			}
		})
	}
}
