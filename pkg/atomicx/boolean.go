package atomicx

import "sync/atomic"

// Bool is a lock-free flag. The zero value is false.
type Bool uint32

func NewBool(val bool) *Bool {
	b := new(Bool)
	b.Set(val)
	return b
}

func (b *Bool) Set(val bool) {
	atomic.StoreUint32((*uint32)(b), toUint32(val))
}

func (b *Bool) T() bool {
	return atomic.LoadUint32((*uint32)(b)) == 1
}

func (b *Bool) F() bool {
	return atomic.LoadUint32((*uint32)(b)) == 0
}

// Swap stores val and reports the previous value.
func (b *Bool) Swap(val bool) bool {
	return atomic.SwapUint32((*uint32)(b), toUint32(val)) == 1
}

// CAS sets the flag to new only if it currently holds old.
func (b *Bool) CAS(old, new bool) bool {
	return atomic.CompareAndSwapUint32((*uint32)(b), toUint32(old), toUint32(new))
}

func toUint32(val bool) uint32 {
	if val {
		return 1
	}
	return 0
}
