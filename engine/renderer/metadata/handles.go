package metadata

// Backend resources are exposed to the frame pipeline as small opaque
// handles. Zero is never a valid handle.
type (
	Buffer        uint32
	DescriptorSet uint32
	Texture       uint32
	Pipeline      uint32
	Framebuffer   uint32
	MeshHandle    uint32
)

func (h Buffer) IsValid() bool        { return h != 0 }
func (h DescriptorSet) IsValid() bool { return h != 0 }
func (h Texture) IsValid() bool       { return h != 0 }
func (h Pipeline) IsValid() bool      { return h != 0 }
func (h Framebuffer) IsValid() bool   { return h != 0 }
func (h MeshHandle) IsValid() bool    { return h != 0 }

// BindingClass is one of the three descriptor set layouts. Its value is the
// set index the shaders expect.
type BindingClass uint32

const (
	BindingClassGlobal BindingClass = iota
	BindingClassTexture
	BindingClassMaterial
	BindingClassCount
)

func (c BindingClass) String() string {
	switch c {
	case BindingClassGlobal:
		return "global"
	case BindingClassTexture:
		return "texture"
	case BindingClassMaterial:
		return "material"
	}
	return "unknown"
}

type BufferUsage int

const (
	BufferUsageUniform BufferUsage = iota
	BufferUsageVertex
	BufferUsageIndex
	BufferUsageInstance
)

type Extent struct {
	Width  uint32
	Height uint32
}

func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

// AspectRatio returns width/height, or 1 for a degenerate extent.
func (e Extent) AspectRatio() float32 {
	if e.IsZero() {
		return 1
	}
	return float32(e.Width) / float32(e.Height)
}

// ImageFormat identifies the presentable image format of a surface.
type ImageFormat struct {
	Format     uint32
	ColorSpace uint32
}

// SurfaceStatus is the non-fatal outcome of an acquire or a present.
type SurfaceStatus int

const (
	SurfaceOptimal SurfaceStatus = iota
	SurfaceSuboptimal
	SurfaceOutOfDate
)

func (s SurfaceStatus) String() string {
	switch s {
	case SurfaceOptimal:
		return "optimal"
	case SurfaceSuboptimal:
		return "suboptimal"
	case SurfaceOutOfDate:
		return "out of date"
	}
	return "unknown"
}

type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

type Rect2D struct {
	X, Y          int32
	Width, Height uint32
}

// FullViewport covers the whole extent with the standard 0..1 depth range.
func FullViewport(e Extent) Viewport {
	return Viewport{Width: float32(e.Width), Height: float32(e.Height), MinDepth: 0, MaxDepth: 1}
}

func FullScissor(e Extent) Rect2D {
	return Rect2D{Width: e.Width, Height: e.Height}
}

type ClearValues struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
}
