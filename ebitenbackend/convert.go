package ebitenbackend

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/blaze"
)

// EbitenBlend returns the ebiten.Blend for a blaze blend mode. Color and
// alpha channels use the same factors with additive operations.
//
// Ebitengine images hold premultiplied color, so a SrcAlpha source factor
// is already applied and becomes One. BlendNormal therefore maps to
// Ebitengine's source-over.
func EbitenBlend(mode blaze.BlendMode) ebiten.Blend {
	src := ebitenFactor(mode.Src)
	if mode.Src == blaze.BlendFactorSrcAlpha {
		src = ebiten.BlendFactorOne
	}
	dst := ebitenFactor(mode.Dst)
	return ebiten.Blend{
		BlendFactorSourceRGB:        src,
		BlendFactorSourceAlpha:      src,
		BlendFactorDestinationRGB:   dst,
		BlendFactorDestinationAlpha: dst,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	}
}

func ebitenFilter(f blaze.TextureFilter) (ebiten.Filter, error) {
	switch f {
	case blaze.FilterNearest:
		return ebiten.FilterNearest, nil
	case blaze.FilterLinear:
		return ebiten.FilterLinear, nil
	default:
		return 0, fmt.Errorf("unsupported filter %s", f)
	}
}

// ebitenAddress maps a wrap mode to an address mode. Quads built by blaze
// keep coordinates inside the texture, where AddressUnsafe samples the
// same texels as clamping to the edge.
func ebitenAddress(w blaze.TextureWrap) (ebiten.Address, error) {
	switch w {
	case blaze.WrapClampToEdge:
		return ebiten.AddressUnsafe, nil
	case blaze.WrapRepeat:
		return ebiten.AddressRepeat, nil
	case blaze.WrapClampToBorder:
		return ebiten.AddressClampToZero, nil
	default:
		return 0, fmt.Errorf("unsupported wrap mode %s", w)
	}
}

func ebitenFactor(f blaze.BlendFactor) ebiten.BlendFactor {
	switch f {
	case blaze.BlendFactorZero:
		return ebiten.BlendFactorZero
	case blaze.BlendFactorOne:
		return ebiten.BlendFactorOne
	case blaze.BlendFactorSrcColor:
		return ebiten.BlendFactorSourceColor
	case blaze.BlendFactorOneMinusSrcColor:
		return ebiten.BlendFactorOneMinusSourceColor
	case blaze.BlendFactorDstColor:
		return ebiten.BlendFactorDestinationColor
	case blaze.BlendFactorOneMinusDstColor:
		return ebiten.BlendFactorOneMinusDestinationColor
	case blaze.BlendFactorSrcAlpha:
		return ebiten.BlendFactorSourceAlpha
	case blaze.BlendFactorOneMinusSrcAlpha:
		return ebiten.BlendFactorOneMinusSourceAlpha
	case blaze.BlendFactorDstAlpha:
		return ebiten.BlendFactorDestinationAlpha
	case blaze.BlendFactorOneMinusDstAlpha:
		return ebiten.BlendFactorOneMinusDestinationAlpha
	default:
		return ebiten.BlendFactorOne
	}
}

// appendVertices converts quads to Ebitengine vertices. Texture
// coordinates are scaled from [0, 1] to texels of a w x h source image.
func appendVertices(dst []ebiten.Vertex, quads []blaze.Quad, w, h float32) []ebiten.Vertex {
	for i := range quads {
		for _, v := range quads[i] {
			dst = append(dst, ebiten.Vertex{
				DstX:   v.X,
				DstY:   v.Y,
				SrcX:   v.U * w,
				SrcY:   v.V * h,
				ColorR: v.Color.R,
				ColorG: v.Color.G,
				ColorB: v.Color.B,
				ColorA: v.Color.A,
			})
		}
	}
	return dst
}

// quadIndices returns two triangles per quad for n quads in TL, TR, BR, BL
// vertex order: TL-TR-BR, TL-BR-BL.
func quadIndices(n int) []uint32 {
	inds := make([]uint32, 0, n*6)
	for i := 0; i < n; i++ {
		base := uint32(i * 4)
		inds = append(inds,
			base+0, base+1, base+2,
			base+0, base+2, base+3,
		)
	}
	return inds
}

func toNRGBA(c blaze.Color) color.NRGBA {
	return color.NRGBA{
		R: channel8(c.R),
		G: channel8(c.G),
		B: channel8(c.B),
		A: channel8(c.A),
	}
}

func channel8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xff
	default:
		return uint8(v*255 + 0.5)
	}
}
