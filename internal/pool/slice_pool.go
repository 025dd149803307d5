package pool

import "sync"

var uint32SlicePool = sync.Pool{
	New: func() any { return &[]uint32{} },
}

// GetUint32Slice returns a slice of exactly size elements from the pool.
//
// The contents are unspecified; callers overwrite every element. The returned
// cleanup function must be called to give the slice back.
//
//	scratch, cleanup := pool.GetUint32Slice(4096)
//	defer cleanup()
func GetUint32Slice(size int) ([]uint32, func()) {
	ptr, _ := uint32SlicePool.Get().(*[]uint32)

	slice := *ptr
	if cap(slice) < size {
		slice = make([]uint32, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { uint32SlicePool.Put(ptr) }
}
