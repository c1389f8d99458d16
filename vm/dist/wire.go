package dist

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/xxh3"

	"github.com/chazu/teajs/vm"
)

// cborEncMode uses canonical encoding so that the same function always
// produces the same bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dist: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Hash returns the content hash of a script source. The format version is
// mixed in so that images built by an older opcode table never match.
func Hash(source string) [16]byte {
	return xxh3.HashString128(fmt.Sprintf("teajs/%d\x00%s", FormatVersion, source)).Bytes()
}

// MarshalImage serializes an Image to CBOR bytes.
func MarshalImage(img *Image) ([]byte, error) {
	return cborEncMode.Marshal(img)
}

// UnmarshalImage deserializes an Image from CBOR bytes.
func UnmarshalImage(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("dist: unmarshal image: %w", err)
	}
	return &img, nil
}

// MarshalFunction serializes a compiled script compiled from source.
func MarshalFunction(name, source string, fn *vm.Function) ([]byte, error) {
	if !fn.Script {
		return nil, fmt.Errorf("dist: %s is not a script", name)
	}
	return MarshalImage(NewImage(name, Hash(source), fn))
}

// UnmarshalFunction decodes and validates a compiled script.
func UnmarshalFunction(data []byte) (*vm.Function, error) {
	img, err := UnmarshalImage(data)
	if err != nil {
		return nil, err
	}
	return img.Load()
}
