package edit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"pgstyle/state"
)

// maxSourceSize limits how much is read from a single source. Page styles are
// tiny, anything bigger is most likely not one.
const maxSourceSize = 1 << 20

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

// detectUTF looks for byte order mark. UTF-32 must be checked first, its
// little endian mark starts with UTF-16 one.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// selectReader wraps r with decoder for detected encoding, BOM is removed.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUTF8:
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	case encUTF16BigEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF16LittleEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF32BigEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder())
	case encUTF32LittleEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder())
	}
	return r
}

// isTextFile checks that data does not look like a known binary format.
func isTextFile(data []byte) (bool, string) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return true, ""
	}
	return false, kind.MIME.Value
}

// decodeSource converts raw source bytes to text. Encoding forced on command
// line wins, then byte order mark, then content sniffing. Text which is
// already valid UTF-8 is never converted by sniffing.
func decodeSource(data []byte, forced encoding.Encoding, log *zap.Logger) (string, error) {
	if forced != nil {
		out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), forced.NewDecoder()))
		if err != nil {
			return "", fmt.Errorf("unable to decode source: %w", err)
		}
		return string(out), nil
	}

	if enc := detectUTF(data); enc != encUnknown {
		log.Debug("Byte order mark detected", zap.Int("encoding", int(enc)))
		out, err := io.ReadAll(selectReader(bytes.NewReader(data), enc))
		if err != nil {
			return "", fmt.Errorf("unable to decode source: %w", err)
		}
		return string(out), nil
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	enc, name, certain := charset.DetermineEncoding(data, "text/css")
	log.Debug("Source is not UTF-8, guessing encoding", zap.String("charset", name), zap.Bool("certain", certain))
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("unable to decode source as %s: %w", name, err)
	}
	return string(out), nil
}

// selectCharset sets encoding requested with --charset. Unknown names are
// ignored and encoding is detected as usual.
func selectCharset(env *state.LocalEnv, cs string, log *zap.Logger) {
	if len(cs) == 0 {
		return
	}
	enc, err := ianaindex.IANA.Encoding(cs)
	if err != nil || enc == nil {
		log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cs), zap.Error(err))
		env.Charset = nil
		return
	}
	n, _ := ianaindex.IANA.Name(enc)
	log.Debug("Forcefully decoding source", zap.String("charset", n))
	env.Charset = enc
}

// readSource reads page style text from file or from stdin when src is "-".
func readSource(env *state.LocalEnv, src string, log *zap.Logger) (string, error) {
	var (
		r    io.Reader
		name = src
	)
	if src == "-" {
		r, name = os.Stdin, "STDIN"
	} else {
		f, err := os.Open(src)
		if err != nil {
			return "", fmt.Errorf("unable to open source: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxSourceSize+1))
	if err != nil {
		return "", fmt.Errorf("unable to read source '%s': %w", name, err)
	}
	if len(data) > maxSourceSize {
		return "", fmt.Errorf("source '%s' is too big for a page style", name)
	}
	if ok, kind := isTextFile(data); !ok {
		return "", fmt.Errorf("source '%s' looks like %s, not a page style", name, kind)
	}

	text, err := decodeSource(data, env.Charset, log)
	if err != nil {
		return "", err
	}
	if env.Rpt != nil {
		if src != "-" {
			// raw bytes as they were before decoding
			if err := env.Rpt.StoreCopy("input/original", src); err != nil {
				log.Warn("Unable to store source copy in report", zap.Error(err))
			}
		}
		env.Rpt.StoreData("input/source.css", []byte(text))
	}
	log.Debug("Source read", zap.String("source", name), zap.Int("bytes", len(data)))
	return text, nil
}

// writeResult writes data to dst, STDOUT when dst is empty or "-".
func writeResult(env *state.LocalEnv, dst string, data []byte) error {
	if dst == "" || dst == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !env.Overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(dst, flags, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("destination '%s' already exists, use --overwrite", dst)
		}
		return fmt.Errorf("unable to create destination: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("unable to write destination: %w", err)
	}
	return f.Close()
}
