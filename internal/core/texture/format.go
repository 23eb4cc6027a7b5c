package texture

import "fmt"

// Format is the pixel format of an image resource as reported by the device.
type Format uint8

const (
	FormatInvalid Format = iota
	FormatBGRA8
	FormatBGRX8
	FormatRGBA32F
	FormatRGBA16
	FormatRGBA8
	FormatRGBX8
)

func (f Format) Valid() bool {
	return f > FormatInvalid && f <= FormatRGBX8
}

func (f Format) BytesPerPixel() int {
	switch f {
	case FormatBGRA8, FormatBGRX8, FormatRGBA8, FormatRGBX8:
		return 4
	case FormatRGBA16:
		return 8
	case FormatRGBA32F:
		return 16
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case FormatBGRA8:
		return "BGRA8"
	case FormatBGRX8:
		return "BGRX8"
	case FormatRGBA32F:
		return "RGBA32F"
	case FormatRGBA16:
		return "RGBA16"
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGBX8:
		return "RGBX8"
	case FormatInvalid:
		return "INVALID"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}
