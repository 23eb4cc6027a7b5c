package gpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/zeusync/paramsync/internal/core/texture"
)

func TestFormatFor(t *testing.T) {
	cases := []struct {
		format texture.Format
		linear bool
		want   wgpu.TextureFormat
	}{
		{texture.FormatBGRA8, false, wgpu.TextureFormatBGRA8UnormSrgb},
		{texture.FormatBGRX8, true, wgpu.TextureFormatBGRA8Unorm},
		{texture.FormatRGBA8, false, wgpu.TextureFormatRGBA8UnormSrgb},
		{texture.FormatRGBX8, true, wgpu.TextureFormatRGBA8Unorm},
		{texture.FormatRGBA16, false, wgpu.TextureFormatRGBA16Float},
		{texture.FormatRGBA32F, true, wgpu.TextureFormatRGBA32Float},
	}
	for _, tc := range cases {
		got, ok := FormatFor(tc.format, tc.linear)
		assert.True(t, ok, tc.format.String())
		assert.Equal(t, tc.want, got, tc.format.String())
	}

	_, ok := FormatFor(texture.FormatInvalid, false)
	assert.False(t, ok)
}
