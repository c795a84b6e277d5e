package domain

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// EncryptedBlob is the self-describing unit of encrypted application data.
//
// A blob carries the key alias and version it was encrypted under, so
// decryption never depends on the alias's current active version: data
// encrypted before a rotation stays readable for as long as that version's
// envelope exists.
//
// Fields:
//   - AliasName: the key alias the payload was encrypted under
//   - Version: the key version used for encryption
//   - Ciphertext: nonce followed by the AEAD output, as raw bytes
type EncryptedBlob struct {
	AliasName  string
	Version    uint
	Ciphertext []byte
}

// NewEncryptedBlob parses an EncryptedBlob from its string form.
//
// The input must be "alias:version:ciphertext-base64" where the alias is
// non-empty, the version parses as an unsigned integer, and the ciphertext
// part is standard base64 (possibly empty).
//
// Returns:
//   - The parsed EncryptedBlob
//   - ErrInvalidBlobFormat if the input is not three colon-separated parts
//   - ErrEmptyBlobAlias if the alias part is empty
//   - ErrInvalidBlobVersion if the version part is not an unsigned integer
//   - ErrInvalidBlobBase64 if the ciphertext part is not valid base64
//
// Example:
//
//	blob, err := NewEncryptedBlob("payments:2:SGVsbG8gV29ybGQ=")
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("alias=%s version=%d\n", blob.AliasName, blob.Version)
func NewEncryptedBlob(content string) (EncryptedBlob, error) {
	parts := strings.Split(content, ":")
	if len(parts) != 3 {
		return EncryptedBlob{}, fmt.Errorf(
			"%w: expected format 'alias:version:ciphertext', got %d parts",
			ErrInvalidBlobFormat,
			len(parts),
		)
	}

	aliasName := parts[0]
	if aliasName == "" {
		return EncryptedBlob{}, ErrEmptyBlobAlias
	}

	version, err := strconv.ParseUint(parts[1], 10, 0)
	if err != nil {
		return EncryptedBlob{}, fmt.Errorf("%w: %v", ErrInvalidBlobVersion, err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return EncryptedBlob{}, fmt.Errorf("%w: %v", ErrInvalidBlobBase64, err)
	}

	return EncryptedBlob{
		AliasName:  aliasName,
		Version:    uint(version),
		Ciphertext: ciphertext,
	}, nil
}

// String serializes the blob to "alias:version:ciphertext-base64". The
// output round-trips through NewEncryptedBlob.
func (eb EncryptedBlob) String() string {
	encodedCiphertext := base64.StdEncoding.EncodeToString(eb.Ciphertext)
	return fmt.Sprintf("%s:%d:%s", eb.AliasName, eb.Version, encodedCiphertext)
}
