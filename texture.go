package blaze

import (
	"fmt"
	"os"
	"strings"
)

// ImageChannels forces how decoded pixel data is interpreted.
type ImageChannels uint8

const (
	ChannelsAuto           ImageChannels = iota // keep what the image stores
	ChannelsGrayscale                           // luminance only
	ChannelsGrayscaleAlpha                      // luminance + alpha
	ChannelsRGB                                 // opaque color
	ChannelsRGBA                                // color + alpha
)

func (c ImageChannels) String() string {
	switch c {
	case ChannelsAuto:
		return "auto"
	case ChannelsGrayscale:
		return "grayscale"
	case ChannelsGrayscaleAlpha:
		return "grayscale_alpha"
	case ChannelsRGB:
		return "rgb"
	case ChannelsRGBA:
		return "rgba"
	default:
		return fmt.Sprintf("ImageChannels(%d)", uint8(c))
	}
}

// ImageFlags is a bitset of independent post-load transforms. Each bit is
// applied by the image/backend layer; blaze only validates the set.
type ImageFlags uint32

const (
	ImagePowerOfTwo       ImageFlags = 1 << iota // rescale to power-of-two dimensions
	ImageMipmaps                                 // generate mipmaps
	ImageTextureRepeats                          // repeat addressing instead of clamp
	ImageMultiplyAlpha                           // premultiply color by alpha
	ImageInvertY                                 // flip rows vertically
	ImageCompressToDXT                           // compress to DXT on upload
	ImageDDSLoadDirect                           // pass DDS data straight through
	ImageNTSCSafeRGB                             // clamp color to the NTSC-safe range
	ImageCoCgY                                   // CoCg_Y color transform
	ImageTextureRectangle                        // rectangle texture target

	ImageNone ImageFlags = 0

	imageFlagsAll = ImagePowerOfTwo | ImageMipmaps | ImageTextureRepeats |
		ImageMultiplyAlpha | ImageInvertY | ImageCompressToDXT | ImageDDSLoadDirect |
		ImageNTSCSafeRGB | ImageCoCgY | ImageTextureRectangle
)

// Has reports whether every bit of f2 is set in f.
func (f ImageFlags) Has(f2 ImageFlags) bool {
	return f&f2 == f2
}

var imageFlagNames = []struct {
	flag ImageFlags
	name string
}{
	{ImagePowerOfTwo, "power_of_two"},
	{ImageMipmaps, "mipmaps"},
	{ImageTextureRepeats, "repeats"},
	{ImageMultiplyAlpha, "multiply_alpha"},
	{ImageInvertY, "invert_y"},
	{ImageCompressToDXT, "compress_to_dxt"},
	{ImageDDSLoadDirect, "dds_load_direct"},
	{ImageNTSCSafeRGB, "ntsc_safe_rgb"},
	{ImageCoCgY, "cocg_y"},
	{ImageTextureRectangle, "texture_rectangle"},
}

func (f ImageFlags) String() string {
	if f == ImageNone {
		return "none"
	}
	var parts []string
	for _, n := range imageFlagNames {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	if rest := f &^ imageFlagsAll; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseImageFlags parses names as produced by ImageFlags.String, joined
// by "|" or ",".
func ParseImageFlags(s string) (ImageFlags, error) {
	var f ImageFlags
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" || part == "none" {
			continue
		}
		found := false
		for _, n := range imageFlagNames {
			if n.name == part {
				f |= n.flag
				found = true
				break
			}
		}
		if !found {
			return 0, invalidArg("unknown image flag %q", part)
		}
	}
	return f, nil
}

// Texture is a loaded image owned by the caller. A Texture must stay alive
// (not freed) for as long as any batch holds quads drawn with it, i.e.
// until the next Present of every such batch.
type Texture struct {
	ID     uint32
	Width  int
	Height int

	handle TextureHandle
	target bool // owned by a RenderTarget
}

// TextureFilter selects how texels are sampled when a texture is scaled.
type TextureFilter uint8

const (
	FilterNearest TextureFilter = iota
	FilterLinear
)

func (f TextureFilter) String() string {
	switch f {
	case FilterNearest:
		return "nearest"
	case FilterLinear:
		return "linear"
	default:
		return fmt.Sprintf("TextureFilter(%d)", uint8(f))
	}
}

// TextureWrap selects how texture coordinates outside [0, 1] resolve.
type TextureWrap uint8

const (
	WrapClampToEdge   TextureWrap = iota // repeat the edge texels
	WrapRepeat                           // tile the texture
	WrapClampToBorder                    // transparent outside the texture
)

func (w TextureWrap) String() string {
	switch w {
	case WrapClampToEdge:
		return "clamp_to_edge"
	case WrapRepeat:
		return "repeat"
	case WrapClampToBorder:
		return "clamp_to_border"
	default:
		return fmt.Sprintf("TextureWrap(%d)", uint8(w))
	}
}

// TextureOption customizes a texture load.
type TextureOption func(*textureConfig)

type textureConfig struct {
	id    uint32
	hasID bool
}

// WithTextureID requests a specific backend texture id. The id must be
// greater than zero; omit the option to let the backend choose.
func WithTextureID(id uint32) TextureOption {
	return func(c *textureConfig) {
		c.id = id
		c.hasID = true
	}
}

// LoadTextureFromFile reads path and loads it as a texture through l.
func LoadTextureFromFile(l TextureLoader, path string, channels ImageChannels, flags ImageFlags, opts ...TextureOption) (*Texture, error) {
	if strings.TrimSpace(path) == "" {
		return nil, invalidArg("empty texture path")
	}
	if strings.IndexByte(path, 0) >= 0 {
		return nil, invalidArg("texture path contains NUL")
	}
	cfg, err := checkTextureArgs(channels, flags, opts)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("blaze: read texture %s: %w", path, err)
	}
	tex, err := loadTexture(l, data, channels, flags, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return tex, nil
}

// LoadTextureFromMemory loads encoded image bytes as a texture through l.
func LoadTextureFromMemory(l TextureLoader, data []byte, channels ImageChannels, flags ImageFlags, opts ...TextureOption) (*Texture, error) {
	if len(data) == 0 {
		return nil, invalidArg("empty texture buffer")
	}
	cfg, err := checkTextureArgs(channels, flags, opts)
	if err != nil {
		return nil, err
	}
	return loadTexture(l, data, channels, flags, cfg)
}

func checkTextureArgs(channels ImageChannels, flags ImageFlags, opts []TextureOption) (textureConfig, error) {
	var cfg textureConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.hasID && cfg.id == 0 {
		return cfg, invalidArg("texture id must be greater than zero")
	}
	if channels > ChannelsRGBA {
		return cfg, invalidArg("image channels %s", channels)
	}
	if flags&^imageFlagsAll != 0 {
		return cfg, invalidArg("undefined image flags 0x%x", uint32(flags&^imageFlagsAll))
	}
	return cfg, nil
}

func loadTexture(l TextureLoader, data []byte, channels ImageChannels, flags ImageFlags, cfg textureConfig) (*Texture, error) {
	h, err := l.LoadTexture(data, channels, cfg.id, flags)
	if err != nil {
		return nil, backendError("load texture", err)
	}
	if h == nil {
		return nil, backendError("load texture", nil)
	}
	w, ht := h.Size()
	tex := &Texture{ID: h.ID(), Width: w, Height: ht, handle: h}
	Logger().Debug("blaze: texture loaded",
		"id", tex.ID, "width", w, "height", ht, "channels", channels.String(), "flags", flags.String())
	return tex, nil
}

// NewTexture wraps a handle created directly by a backend.
func NewTexture(h TextureHandle) (*Texture, error) {
	if h == nil {
		return nil, invalidArg("nil texture handle")
	}
	w, ht := h.Size()
	return &Texture{ID: h.ID(), Width: w, Height: ht, handle: h}, nil
}

// Handle returns the backend handle, or nil once the texture is freed.
func (t *Texture) Handle() TextureHandle {
	return t.handle
}

// Freed reports whether Free has been called.
func (t *Texture) Freed() bool {
	return t.handle == nil
}

// SetFiltering selects the minification and magnification filters used
// by later draws of t.
func (t *Texture) SetFiltering(minFilter, magFilter TextureFilter) error {
	if minFilter > FilterLinear || magFilter > FilterLinear {
		return invalidArg("texture filter %s/%s", minFilter, magFilter)
	}
	if t.handle == nil {
		return fmt.Errorf("%w: texture %d", ErrFreed, t.ID)
	}
	if err := t.handle.SetFilter(minFilter, magFilter); err != nil {
		return backendError("set texture filter", err)
	}
	return nil
}

// SetWrap selects how later draws of t resolve coordinates outside the
// texture, per axis.
func (t *Texture) SetWrap(wrapS, wrapT TextureWrap) error {
	if wrapS > WrapClampToBorder || wrapT > WrapClampToBorder {
		return invalidArg("texture wrap %s/%s", wrapS, wrapT)
	}
	if t.handle == nil {
		return fmt.Errorf("%w: texture %d", ErrFreed, t.ID)
	}
	if err := t.handle.SetWrap(wrapS, wrapT); err != nil {
		return backendError("set texture wrap", err)
	}
	return nil
}

// Free releases the backend texture. Later calls do nothing. The texture
// of a RenderTarget is released through the target instead.
func (t *Texture) Free() error {
	if t.handle == nil {
		return nil
	}
	if t.target {
		return invalidArg("texture %d belongs to a render target", t.ID)
	}
	h := t.handle
	t.handle = nil
	if err := h.Free(); err != nil {
		return backendError("free texture", err)
	}
	return nil
}
