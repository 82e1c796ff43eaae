package types

// PageSize is the size of one WebAssembly linear-memory page: 64 KiB.
const PageSize = 65536

// MaxPages is the maximum number of pages a 32-bit linear memory can hold.
const MaxPages = 65536

// Pages is an amount of linear memory in units of WebAssembly pages.
type Pages uint32

// Bytes is an amount of linear memory in bytes.
type Bytes uint64

// Bytes returns the byte size of p pages.
func (p Pages) Bytes() Bytes {
	return Bytes(uint64(p) * PageSize)
}

// Pages returns b rounded down to whole pages.
func (b Bytes) Pages() Pages {
	return Pages(uint64(b) / PageSize)
}
