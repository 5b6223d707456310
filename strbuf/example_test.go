package strbuf_test

import (
	"fmt"

	"github.com/pavanmanishd/memkit/alloc"
	"github.com/pavanmanishd/memkit/strbuf"
)

func Example() {
	a := alloc.NewOwnedArena(0)
	s := strbuf.FromString(a, "id=")
	s.AppendFormat("%d-%s", 42, "ok")

	fmt.Println(s.String(), s.Len())
	fmt.Println(string(s.ConstSubview(3, -1).Copy(nil)))
	fmt.Println(s.CString()[s.Len()])

	s.Free()
	fmt.Println(a.Arena() == nil)
	// Output:
	// id=42-ok 8
	// 42-ok
	// 0
	// true
}
