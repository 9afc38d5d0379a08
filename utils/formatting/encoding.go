// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package formatting encodes byte strings, such as signed txs, for API
// arguments and replies.
package formatting

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/luxfi/crypto/hash"
	"github.com/mr-tron/base58"
)

const (
	hexPrefix   = "0x"
	checksumLen = 4
)

var (
	errUnknownEncoding = errors.New("unknown encoding")
	errMissingPrefix   = errors.New("missing 0x prefix")
	errMissingChecksum = errors.New("input string is smaller than the checksum size")
	errBadChecksum     = errors.New("invalid input checksum")
)

// Encoding defines how bytes are converted to a string and vice versa.
type Encoding uint8

const (
	// Hex specifies a hex plus 4 byte checksum encoding format
	Hex Encoding = iota
	// HexNC specifies a hex encoding format without a checksum
	HexNC
	// CB58 specifies a base58 plus 4 byte checksum encoding format
	CB58
)

func (enc Encoding) String() string {
	switch enc {
	case Hex:
		return "hex"
	case HexNC:
		return "hexnc"
	case CB58:
		return "cb58"
	default:
		return errUnknownEncoding.Error()
	}
}

func (enc Encoding) MarshalJSON() ([]byte, error) {
	switch enc {
	case Hex, HexNC, CB58:
		return []byte(`"` + enc.String() + `"`), nil
	default:
		return nil, errUnknownEncoding
	}
}

func (enc *Encoding) UnmarshalJSON(b []byte) error {
	str := string(b)
	if str == "null" {
		return nil
	}
	switch strings.ToLower(str) {
	case `"hex"`:
		*enc = Hex
	case `"hexnc"`:
		*enc = HexNC
	case `"cb58"`:
		*enc = CB58
	default:
		return fmt.Errorf("%w: %s", errUnknownEncoding, str)
	}
	return nil
}

// Encode [b] to a string using the given encoding format.
func Encode(encoding Encoding, b []byte) (string, error) {
	switch encoding {
	case Hex:
		return hexPrefix + hex.EncodeToString(withChecksum(b)), nil
	case HexNC:
		return hexPrefix + hex.EncodeToString(b), nil
	case CB58:
		return base58.Encode(withChecksum(b)), nil
	default:
		return "", errUnknownEncoding
	}
}

// Decode [str] to bytes using the given encoding format.
func Decode(encoding Encoding, str string) ([]byte, error) {
	if len(str) == 0 {
		switch encoding {
		case Hex, HexNC, CB58:
			return nil, nil
		default:
			return nil, errUnknownEncoding
		}
	}

	var (
		decoded []byte
		err     error
	)
	switch encoding {
	case Hex, HexNC:
		if !strings.HasPrefix(str, hexPrefix) {
			return nil, errMissingPrefix
		}
		decoded, err = hex.DecodeString(str[len(hexPrefix):])
	case CB58:
		decoded, err = base58.Decode(str)
	default:
		return nil, errUnknownEncoding
	}
	if err != nil {
		return nil, err
	}
	if encoding == HexNC {
		return decoded, nil
	}

	if len(decoded) < checksumLen {
		return nil, errMissingChecksum
	}
	rawBytes := decoded[:len(decoded)-checksumLen]
	if !bytes.Equal(decoded[len(rawBytes):], checksum(rawBytes)) {
		return nil, errBadChecksum
	}
	return rawBytes, nil
}

// withChecksum returns a copy of [b] followed by its checksum.
func withChecksum(b []byte) []byte {
	checked := make([]byte, 0, len(b)+checksumLen)
	checked = append(checked, b...)
	return append(checked, checksum(b)...)
}

// checksum is the last 4 bytes of the SHA-256 of [b].
func checksum(b []byte) []byte {
	h := hash.ComputeHash256(b)
	return h[len(h)-checksumLen:]
}
