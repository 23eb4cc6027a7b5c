package presenter

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Strategy is how the selected texture is resized into the debug window.
type Strategy int

const (
	ActualSize Strategy = iota
	Stretch
	Fill
	Fit
	Clamp
)

var strategyNames = []string{"ActualSize", "Stretch", "Fill", "Fit", "Clamp"}

func (Strategy) EnumNames() []string { return strategyNames }

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// ScaleBias returns the UV transform (scale x, scale y, offset x, offset y)
// that places a src sized image into a dst sized viewport.
func ScaleBias(s Strategy, src, dst mgl32.Vec2) mgl32.Vec4 {
	if src.X() <= 0 || src.Y() <= 0 || dst.X() <= 0 || dst.Y() <= 0 {
		return mgl32.Vec4{1, 1, 0, 0}
	}
	switch s {
	case ActualSize:
		return noResize(src, dst)
	case Fill:
		if aspect(src) < aspect(dst) {
			return fitWidth(src, dst)
		}
		return fitHeight(src, dst)
	case Fit:
		return letterbox(src, dst)
	case Clamp:
		if src.X() <= dst.X() && src.Y() <= dst.Y() {
			return noResize(src, dst)
		}
		return letterbox(src, dst)
	default:
		return mgl32.Vec4{1, 1, 0, 0}
	}
}

func aspect(v mgl32.Vec2) float32 { return v.X() / v.Y() }

func noResize(src, dst mgl32.Vec2) mgl32.Vec4 {
	sx, sy := src.X()/dst.X(), src.Y()/dst.Y()
	return mgl32.Vec4{sx, sy, (1 - sx) / 2, (1 - sy) / 2}
}

func letterbox(src, dst mgl32.Vec2) mgl32.Vec4 {
	if aspect(src) > aspect(dst) {
		return fitWidth(src, dst)
	}
	return fitHeight(src, dst)
}

func fitWidth(src, dst mgl32.Vec2) mgl32.Vec4 {
	sy := (src.Y() / src.X()) * (dst.X() / dst.Y())
	return mgl32.Vec4{1, sy, 0, (1 - sy) / 2}
}

func fitHeight(src, dst mgl32.Vec2) mgl32.Vec4 {
	sx := (src.X() / src.Y()) * (dst.Y() / dst.X())
	return mgl32.Vec4{sx, 1, (1 - sx) / 2, 0}
}
