package assets

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"os"
	"sync"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// AssetId is an opaque handle minted when an asset is preloaded.
type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

type TextureFormat uint32

const (
	TextureFormatR8Uint     TextureFormat = 0x00000003
	TextureFormatRGBA8Unorm TextureFormat = 0x00000012
	TextureFormatRGBA8Uint  TextureFormat = 0x00000015
)

type TextureAsset struct {
	Texels []uint8
	Width  uint32
	Height uint32
	Format TextureFormat
}

// Manager holds immutable preloaded assets. Lookups are safe from any
// goroutine; navigation builds read models off the main loop.
type Manager struct {
	// MaxTextureSize caps the larger side of loaded textures. Bigger images
	// are downsampled keeping their aspect ratio. Zero means no cap.
	MaxTextureSize int

	mu             sync.RWMutex
	models         map[AssetId]*ModelAsset
	textures       map[AssetId]*TextureAsset
	defaultTexture AssetId
}

// NewManager returns a manager seeded with a 1x1 white default texture.
func NewManager() *Manager {
	m := &Manager{
		models:   make(map[AssetId]*ModelAsset),
		textures: make(map[AssetId]*TextureAsset),
	}
	m.defaultTexture = m.CreateTexture([]uint8{255, 255, 255, 255}, 1, 1, TextureFormatRGBA8Unorm)
	return m
}

// AddModel takes ownership of model; it must not be mutated afterwards.
func (m *Manager) AddModel(model *ModelAsset) AssetId {
	id := makeAssetId()
	m.mu.Lock()
	m.models[id] = model
	m.mu.Unlock()
	return id
}

func (m *Manager) AddTexture(tex *TextureAsset) AssetId {
	id := makeAssetId()
	m.mu.Lock()
	m.textures[id] = tex
	m.mu.Unlock()
	return id
}

func (m *Manager) CreateTexture(texels []uint8, width, height uint32, format TextureFormat) AssetId {
	return m.AddTexture(&TextureAsset{
		Texels: texels,
		Width:  width,
		Height: height,
		Format: format,
	})
}

// LoadTexture decodes a PNG, BMP, TIFF or WebP file into an RGBA8 texture.
func (m *Manager) LoadTexture(filename string) (AssetId, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("open texture %s: %w", filename, err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode texture %s: %w", filename, err)
	}

	rgba := m.toRGBA(img)
	if rgba == nil {
		return "", fmt.Errorf("texture %s (%s) is empty", filename, format)
	}
	size := rgba.Bounds().Size()
	return m.CreateTexture(rgba.Pix, uint32(size.X), uint32(size.Y), TextureFormatRGBA8Unorm), nil
}

// toRGBA converts img to a tightly packed RGBA image anchored at the origin,
// downsampling it when it exceeds MaxTextureSize.
func (m *Manager) toRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	if limit := m.MaxTextureSize; limit > 0 && (w > limit || h > limit) {
		if w >= h {
			w, h = limit, max(1, h*limit/w)
		} else {
			w, h = max(1, w*limit/h), limit
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
		return dst
	}

	if rgba, ok := img.(*image.RGBA); ok && bounds.Min == (image.Point{}) && rgba.Stride == 4*w {
		return rgba
	}
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

func (m *Manager) Model(id AssetId) (*ModelAsset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	model, ok := m.models[id]
	return model, ok
}

func (m *Manager) Texture(id AssetId) (*TextureAsset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tex, ok := m.textures[id]
	return tex, ok
}

func (m *Manager) DefaultTexture() (*TextureAsset, bool) {
	return m.Texture(m.defaultTexture)
}

func (m *Manager) DefaultTextureId() AssetId {
	return m.defaultTexture
}
