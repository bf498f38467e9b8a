// json.go - Text encodings for keys so they can live in JSON key files.
//
// Keys are written as standard base64 of their fixed-size binary encodings.

package encryption

import (
	"encoding/base64"
	"fmt"
)

// MarshalText implements encoding.TextMarshaler.
func (pk Pubkey) MarshalText() ([]byte, error) {
	b := pk.Bytes()
	return []byte(base64.StdEncoding.EncodeToString(b[:])), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (pk *Pubkey) UnmarshalText(text []byte) error {
	raw, err := base64.StdEncoding.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("decode pubkey text: %w", err)
	}
	p, err := PubkeyFromBytes(raw)
	if err != nil {
		return err
	}
	*pk = p
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (sk SecretKey) MarshalText() ([]byte, error) {
	b := sk.Bytes()
	return []byte(base64.StdEncoding.EncodeToString(b[:])), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (sk *SecretKey) UnmarshalText(text []byte) error {
	raw, err := base64.StdEncoding.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("decode secret key text: %w", err)
	}
	s, err := SecretKeyFromBytes(raw)
	if err != nil {
		return err
	}
	*sk = s
	return nil
}
