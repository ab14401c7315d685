package embedding

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// 自行宣告 Accept-Encoding 時 net/http 不會自動解壓
const acceptEncoding = "gzip, br, zstd"

type decompressor func(io.Reader) (io.ReadCloser, error)

var decompressors = map[string]decompressor{
	"gzip": func(r io.Reader) (io.ReadCloser, error) { return gzip.NewReader(r) },
	"deflate": func(r io.Reader) (io.ReadCloser, error) {
		return zlib.NewReader(r)
	},
	"br": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(brotli.NewReader(r)), nil
	},
	"zstd": func(r io.Reader) (io.ReadCloser, error) {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	},
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// decodeBody 依 Content-Encoding 解壓；header 缺漏時以 magic number 判斷
func decodeBody(raw []byte, h http.Header) ([]byte, error) {
	enc := strings.ToLower(strings.TrimSpace(h.Get("Content-Encoding")))
	if enc == "" || enc == "identity" {
		enc = sniffEncoding(raw)
	}
	open, ok := decompressors[enc]
	if !ok {
		return raw, nil
	}
	rc, err := open(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func sniffEncoding(raw []byte) string {
	switch {
	case len(raw) > len(gzipMagic) && bytes.HasPrefix(raw, gzipMagic):
		return "gzip"
	case bytes.HasPrefix(raw, zstdMagic):
		return "zstd"
	default:
		return ""
	}
}
