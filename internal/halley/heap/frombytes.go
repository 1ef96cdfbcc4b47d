package heap

// FromBytes wraps pre-existing bytes (typically the decrypted data heap
// read off disk) as a Heap ready for Slice reads. It does not support
// further Add calls in a way that's safe to mix with reads that assume a
// stable backing array; callers on the read path only ever Slice.
func FromBytes(b []byte) *Heap {
	h := &Heap{}
	h.buf.Write(b)
	return h
}
