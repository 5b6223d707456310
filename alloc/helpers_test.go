package alloc

import "unsafe"

// corruptAfter overwrites the byte just past the end of b, which lives in
// arena memory, the way an unchecked write would.
func corruptAfter(b []byte) {
	p := unsafe.Add(unsafe.Pointer(unsafe.SliceData(b)), len(b))
	*(*byte)(p) ^= 0xFF
}
