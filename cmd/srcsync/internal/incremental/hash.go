package incremental

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// HashFile returns the hex xxHash64 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return HashReader(f)
}

// HashReader returns the hex xxHash64 of everything read from r.
func HashReader(r io.Reader) (string, error) {
	d := xxhash.New()
	if _, err := io.Copy(d, r); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return encode(d.Sum64()), nil
}

// HashBytes returns the hex xxHash64 of data.
func HashBytes(data []byte) string {
	return encode(xxhash.Sum64(data))
}

func encode(sum uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], sum)
	return hex.EncodeToString(buf[:])
}
