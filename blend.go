package blaze

import (
	"fmt"
	"strings"
)

// BlendFactor is one operand weight of the blend equation.
type BlendFactor uint8

const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSrcColor
	BlendFactorOneMinusSrcColor
	BlendFactorDstColor
	BlendFactorOneMinusDstColor
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
	BlendFactorDstAlpha
	BlendFactorOneMinusDstAlpha
)

var blendFactorNames = [...]string{
	BlendFactorZero:             "Zero",
	BlendFactorOne:              "One",
	BlendFactorSrcColor:         "SrcColor",
	BlendFactorOneMinusSrcColor: "OneMinusSrcColor",
	BlendFactorDstColor:         "DstColor",
	BlendFactorOneMinusDstColor: "OneMinusDstColor",
	BlendFactorSrcAlpha:         "SrcAlpha",
	BlendFactorOneMinusSrcAlpha: "OneMinusSrcAlpha",
	BlendFactorDstAlpha:         "DstAlpha",
	BlendFactorOneMinusDstAlpha: "OneMinusDstAlpha",
}

// Valid reports whether f is one of the defined factors.
func (f BlendFactor) Valid() bool {
	return int(f) < len(blendFactorNames)
}

func (f BlendFactor) String() string {
	if f.Valid() {
		return blendFactorNames[f]
	}
	return fmt.Sprintf("BlendFactor(%d)", uint8(f))
}

// BlendMode is a source/destination factor pair.
type BlendMode struct {
	Src, Dst BlendFactor
}

var (
	// BlendNormal is standard alpha blending.
	BlendNormal = BlendMode{BlendFactorSrcAlpha, BlendFactorOneMinusSrcAlpha}
	// BlendAdditive adds source to destination (lighter).
	BlendAdditive = BlendMode{BlendFactorOne, BlendFactorOne}
	// BlendMultiply multiplies destination by source; only darkens.
	BlendMultiply = BlendMode{BlendFactorDstColor, BlendFactorZero}
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "normal"
	case BlendAdditive:
		return "additive"
	case BlendMultiply:
		return "multiply"
	}
	return fmt.Sprintf("{%s %s}", m.Src, m.Dst)
}

// ParseBlendMode resolves a preset name: "normal", "additive" or "multiply".
func ParseBlendMode(name string) (BlendMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "normal":
		return BlendNormal, nil
	case "additive", "add":
		return BlendAdditive, nil
	case "multiply":
		return BlendMultiply, nil
	}
	return BlendMode{}, invalidArg("unknown blend mode %q", name)
}

// SetBlendMode makes mode the current blend state of b. It stays in effect
// for every following present until changed again.
func SetBlendMode(b Backend, mode BlendMode) error {
	if b == nil {
		return invalidArg("nil backend")
	}
	if !mode.Src.Valid() || !mode.Dst.Valid() {
		return invalidArg("blend mode %s", mode)
	}
	if err := b.SetBlendMode(mode); err != nil {
		return backendError("set blend mode", err)
	}
	Logger().Debug("blaze: blend mode set", "mode", mode.String())
	return nil
}
