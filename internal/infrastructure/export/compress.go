package export

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// archiver compresses exports with zstd. The encoder is reused and safe for
// concurrent EncodeAll calls.
type archiver struct {
	encoder *zstd.Encoder
}

func newArchiver() (*archiver, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &archiver{encoder: encoder}, nil
}

// compress returns the zstd frame for data.
func (a *archiver) compress(data []byte) []byte {
	return a.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
}
