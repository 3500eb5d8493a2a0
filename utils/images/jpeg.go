package images

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

type DpiType uint8

const (
	DpiNoUnits DpiType = iota
	DpiPxPerInch
	DpiPxPerSm
)

var (
	app0Marker = []byte{0xFF, 0xE0}
	jfifID     = []byte{0x4A, 0x46, 0x49, 0x46, 0x00}
)

// SetJFIFDensity makes sure JFIF APP0 segment carries requested pixel
// density. Segment is inserted when missing and updated in place otherwise.
// Returned flag tells whether segment was inserted.
func SetJFIFDensity(jpegData []byte, dpit DpiType, xdensity, ydensity int16) ([]byte, bool, error) {
	if len(jpegData) < 4 {
		return nil, false, errors.New("jpeg too small")
	}

	// Must start with SOI marker.
	if jpegData[0] != 0xFF || jpegData[1] != 0xD8 {
		return nil, false, errors.New("not a jpeg")
	}

	if bytes.Equal(jpegData[2:4], app0Marker) {
		// units, xdensity, ydensity follow length, identifier and version
		const unitsOffset = 4 + 2 + 5 + 2
		if len(jpegData) < unitsOffset+5 || !bytes.Equal(jpegData[6:11], jfifID) {
			// APP0 which is not JFIF, leave it alone
			return jpegData, false, nil
		}
		out := bytes.Clone(jpegData)
		out[unitsOffset] = byte(dpit)
		binary.BigEndian.PutUint16(out[unitsOffset+1:], uint16(xdensity))
		binary.BigEndian.PutUint16(out[unitsOffset+3:], uint16(ydensity))
		return out, false, nil
	}

	buf := new(bytes.Buffer)
	buf.Write(jpegData[:2])
	buf.Write(app0Marker)
	_ = binary.Write(buf, binary.BigEndian, uint16(0x10)) // length
	buf.Write(jfifID)
	buf.Write([]byte{0x01, 0x02}) // version
	_ = binary.Write(buf, binary.BigEndian, uint8(dpit))
	_ = binary.Write(buf, binary.BigEndian, uint16(xdensity))
	_ = binary.Write(buf, binary.BigEndian, uint16(ydensity))
	_ = binary.Write(buf, binary.BigEndian, uint16(0)) // no thumbnail segment
	buf.Write(jpegData[2:])
	return buf.Bytes(), true, nil
}

// EncodeJPEGWithDPI encodes img to w recording its print resolution.
func EncodeJPEGWithDPI(w io.Writer, img image.Image, quality int, dpi int16) error {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return err
	}
	out, _, err := SetJFIFDensity(buf.Bytes(), DpiPxPerInch, dpi, dpi)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
