// Package dist implements the portable image of compiled code. A compiled
// script is flattened into CBOR so it can be cached on disk or shipped to
// another process and run without recompiling the source.
package dist

// FormatVersion is bumped whenever the opcode table or the image layout
// changes. Images of any other version are rejected.
const FormatVersion = 1

// Image is the atomic unit of distribution: a compiled script together
// with the hash of the source it was compiled from.
type Image struct {
	Version  uint16         `cbor:"1,keyasint"`
	Hash     [16]byte       `cbor:"2,keyasint"`
	Name     string         `cbor:"3,keyasint"`
	Function *FunctionImage `cbor:"4,keyasint"`
}

// FunctionImage mirrors vm.Function field for field. Nested functions are
// stored inline in the order of the constant table.
type FunctionImage struct {
	Name      string           `cbor:"1,keyasint"`
	Flags     Flags            `cbor:"2,keyasint"`
	NumParams int              `cbor:"3,keyasint"`
	Code      []uint16         `cbor:"4,keyasint"`
	Numbers   []float64        `cbor:"5,keyasint,omitempty"`
	Strings   []string         `cbor:"6,keyasint,omitempty"`
	Vars      []string         `cbor:"7,keyasint,omitempty"`
	Funcs     []*FunctionImage `cbor:"8,keyasint,omitempty"`
	Lines     []LineImage      `cbor:"9,keyasint,omitempty"`
	Jumps     []JumpImage      `cbor:"10,keyasint,omitempty"`
}

// Flags packs the boolean properties of a function.
type Flags uint8

const (
	FlagScript Flags = 1 << iota
	FlagStrict
	FlagArguments
	FlagExpression
)

// LineImage is one entry of the line table.
type LineImage struct {
	PC   int `cbor:"1,keyasint"`
	Line int `cbor:"2,keyasint"`
}

// JumpImage is one entry of the jump-table trace.
type JumpImage struct {
	Kind     string   `cbor:"1,keyasint"`
	Labels   []string `cbor:"2,keyasint,omitempty"`
	Start    int      `cbor:"3,keyasint"`
	Continue int      `cbor:"4,keyasint"`
	Exit     int      `cbor:"5,keyasint"`
}
