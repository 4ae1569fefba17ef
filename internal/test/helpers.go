package test

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// DecodeHexString is a helper function for tests that decodes hex strings. It doesn't return
// an error value, which makes it usable inline.
func DecodeHexString(hexData string) []byte {
	// Strip off any leading/trailing whitespace in hex string
	hexData = strings.TrimSpace(hexData)
	decoded, err := hex.DecodeString(hexData)
	if err != nil {
		panic(fmt.Sprintf("error decoding hex: %s", err))
	}
	return decoded
}

// MakeContainer builds a well-formed save-file container around the given
// payload: signature, ASCII-hex declared size, separators, unknown field,
// and trailer. Separator and filler bytes are chosen to never collide with
// CBOR scalar encodings used in tests.
func MakeContainer(payload []byte) []byte {
	raw := make([]byte, 0, 27+len(payload))
	raw = append(raw, []byte("BGESAV20")...)
	raw = append(raw, fmt.Sprintf("%08x", len(payload))...)
	raw = append(raw, 0x2d)
	raw = append(raw, []byte("xxxxxxxx")...)
	raw = append(raw, 0x2d)
	raw = append(raw, payload...)
	raw = append(raw, 0x2e)
	return raw
}
