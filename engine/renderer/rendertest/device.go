package rendertest

import (
	"errors"
	"fmt"
	"image"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/renderer"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

var (
	_ renderer.Device        = (*Device)(nil)
	_ renderer.Surface       = (*Surface)(nil)
	_ renderer.CommandBuffer = (*CommandBuffer)(nil)
	_ renderer.Window        = (*Window)(nil)
)

// ErrInjected is returned by operations configured to fail.
var ErrInjected = errors.New("injected failure")

// Window is a settable drawable extent with a resize flag.
type Window struct {
	Size    metadata.Extent
	Resized bool
}

func NewWindow(width, height uint32) *Window {
	return &Window{Size: metadata.Extent{Width: width, Height: height}}
}

func (w *Window) FramebufferExtent() metadata.Extent { return w.Size }
func (w *Window) WasResized() bool                   { return w.Resized }
func (w *Window) ResetResized()                      { w.Resized = false }

// Resize changes the extent and raises the resize flag.
func (w *Window) Resize(width, height uint32) {
	w.Size = metadata.Extent{Width: width, Height: height}
	w.Resized = true
}

type BufferInfo struct {
	Usage metadata.BufferUsage
	Data  []byte
	Freed bool
}

type SetInfo struct {
	Class   metadata.BindingClass
	Buffer  metadata.Buffer
	Size    uint64
	Texture metadata.Texture
}

type TextureInfo struct {
	Name   string
	Width  int
	Height int
	SRGB   bool
	Freed  bool
}

// Device keeps every resource in maps so tests can inspect them.
type Device struct {
	Format metadata.ImageFormat
	// ImageCount is the number of images of the next created surface.
	ImageCount uint32
	// MaxSets limits allocations per binding class. Zero means unlimited.
	MaxSets map[metadata.BindingClass]int
	// FailBuffers makes CreateBuffer fail.
	FailBuffers bool
	// FailSurface makes CreateSurface fail.
	FailSurface bool

	Buffers   map[metadata.Buffer]*BufferInfo
	Sets      map[metadata.DescriptorSet]SetInfo
	Textures  map[metadata.Texture]*TextureInfo
	Pipelines []metadata.PipelineConfig
	Surfaces  []*Surface
	Commands  map[int]*CommandBuffer

	WaitIdleCalls int
	BufferWrites  int

	setsPerClass map[metadata.BindingClass]int
	nextBuffer   metadata.Buffer
	nextSet      metadata.DescriptorSet
	nextTexture  metadata.Texture
}

func NewDevice() *Device {
	return &Device{
		Format:       metadata.ImageFormat{Format: 44, ColorSpace: 0},
		ImageCount:   3,
		MaxSets:      map[metadata.BindingClass]int{},
		Buffers:      map[metadata.Buffer]*BufferInfo{},
		Sets:         map[metadata.DescriptorSet]SetInfo{},
		Textures:     map[metadata.Texture]*TextureInfo{},
		Commands:     map[int]*CommandBuffer{},
		setsPerClass: map[metadata.BindingClass]int{},
	}
}

func (d *Device) CreateBuffer(usage metadata.BufferUsage, size uint64) (metadata.Buffer, error) {
	if d.FailBuffers {
		return 0, fmt.Errorf("create buffer: %w", ErrInjected)
	}
	d.nextBuffer++
	d.Buffers[d.nextBuffer] = &BufferInfo{Usage: usage, Data: make([]byte, size)}
	return d.nextBuffer, nil
}

func (d *Device) WriteBuffer(buffer metadata.Buffer, offset uint64, data []byte) error {
	info, ok := d.Buffers[buffer]
	if !ok || info.Freed {
		return fmt.Errorf("write to unknown buffer %d", buffer)
	}
	if offset+uint64(len(data)) > uint64(len(info.Data)) {
		return fmt.Errorf("write of %d bytes at %d overflows buffer %d of %d bytes", len(data), offset, buffer, len(info.Data))
	}
	copy(info.Data[offset:], data)
	d.BufferWrites++
	return nil
}

func (d *Device) DestroyBuffer(buffer metadata.Buffer) {
	if info, ok := d.Buffers[buffer]; ok {
		info.Freed = true
	}
}

func (d *Device) allocateSet(info SetInfo) (metadata.DescriptorSet, error) {
	if limit := d.MaxSets[info.Class]; limit > 0 && d.setsPerClass[info.Class] >= limit {
		return 0, fmt.Errorf("%s set: %w", info.Class, core.ErrDescriptorPoolExhausted)
	}
	d.setsPerClass[info.Class]++
	d.nextSet++
	d.Sets[d.nextSet] = info
	return d.nextSet, nil
}

func (d *Device) AllocateBufferSet(class metadata.BindingClass, buffer metadata.Buffer, size uint64) (metadata.DescriptorSet, error) {
	if _, ok := d.Buffers[buffer]; !ok {
		return 0, fmt.Errorf("descriptor for unknown buffer %d", buffer)
	}
	return d.allocateSet(SetInfo{Class: class, Buffer: buffer, Size: size})
}

func (d *Device) AllocateTextureSet(texture metadata.Texture) (metadata.DescriptorSet, error) {
	if _, ok := d.Textures[texture]; !ok {
		return 0, fmt.Errorf("descriptor for unknown texture %d", texture)
	}
	return d.allocateSet(SetInfo{Class: metadata.BindingClassTexture, Texture: texture})
}

func (d *Device) CreateTexture(name string, img *image.RGBA, srgb bool) (metadata.Texture, error) {
	if img == nil {
		return 0, fmt.Errorf("create texture %q: nil image", name)
	}
	d.nextTexture++
	b := img.Bounds()
	d.Textures[d.nextTexture] = &TextureInfo{Name: name, Width: b.Dx(), Height: b.Dy(), SRGB: srgb}
	return d.nextTexture, nil
}

func (d *Device) DestroyTexture(texture metadata.Texture) {
	if info, ok := d.Textures[texture]; ok {
		info.Freed = true
	}
}

func (d *Device) CreateSurface(extent metadata.Extent, previous renderer.Surface) (renderer.Surface, error) {
	if d.FailSurface {
		return nil, fmt.Errorf("create surface: %w", ErrInjected)
	}
	s := &Surface{Size: extent, Format: d.Format, Images: d.ImageCount}
	if prev, ok := previous.(*Surface); ok && prev != nil {
		prev.Destroy()
	}
	d.Surfaces = append(d.Surfaces, s)
	return s, nil
}

func (d *Device) CommandBuffer(frameIndex int) renderer.CommandBuffer {
	return d.Command(frameIndex)
}

// Command returns the recording command buffer of a frame slot.
func (d *Device) Command(frameIndex int) *CommandBuffer {
	cmd, ok := d.Commands[frameIndex]
	if !ok {
		cmd = &CommandBuffer{Slot: frameIndex}
		d.Commands[frameIndex] = cmd
	}
	return cmd
}

func (d *Device) CreatePipeline(config metadata.PipelineConfig) (metadata.Pipeline, error) {
	d.Pipelines = append(d.Pipelines, config)
	return metadata.Pipeline(len(d.Pipelines)), nil
}

func (d *Device) WaitIdle() error {
	d.WaitIdleCalls++
	return nil
}

// CurrentSurface is the most recently created surface.
func (d *Device) CurrentSurface() *Surface {
	if len(d.Surfaces) == 0 {
		return nil
	}
	return d.Surfaces[len(d.Surfaces)-1]
}

// BufferData returns the bytes of buffer.
func (d *Device) BufferData(buffer metadata.Buffer) []byte {
	if info, ok := d.Buffers[buffer]; ok {
		return info.Data
	}
	return nil
}

// SetData returns the bytes of the buffer a descriptor set points at.
func (d *Device) SetData(set metadata.DescriptorSet) []byte {
	return d.BufferData(d.Sets[set].Buffer)
}

// Surface acquires images round robin. Queue statuses in AcquireStatus and
// PresentStatus to simulate a stale or suboptimal swapchain.
type Surface struct {
	Size          metadata.Extent
	Format        metadata.ImageFormat
	Images        uint32
	AcquireStatus []metadata.SurfaceStatus
	PresentStatus []metadata.SurfaceStatus
	AcquireErr    error

	Acquires  int
	Submits   int
	Destroyed bool
	// Submitted holds the frame slot of every submission.
	Submitted []int
	next      uint32
}

func (s *Surface) Extent() metadata.Extent           { return s.Size }
func (s *Surface) ImageFormat() metadata.ImageFormat { return s.Format }
func (s *Surface) ImageCount() uint32                { return s.Images }

func (s *Surface) AcquireNextImage(frameIndex int) (uint32, metadata.SurfaceStatus, error) {
	s.Acquires++
	if s.AcquireErr != nil {
		return 0, metadata.SurfaceOptimal, s.AcquireErr
	}
	status := pop(&s.AcquireStatus)
	if status == metadata.SurfaceOutOfDate {
		return 0, status, nil
	}
	img := s.next
	if s.Images > 0 {
		s.next = (s.next + 1) % s.Images
	}
	return img, status, nil
}

func (s *Surface) SubmitCommandBuffers(cmd renderer.CommandBuffer, frameIndex int, imageIndex uint32) (metadata.SurfaceStatus, error) {
	s.Submits++
	s.Submitted = append(s.Submitted, frameIndex)
	return pop(&s.PresentStatus), nil
}

// Framebuffer handles are the image index plus one.
func (s *Surface) Framebuffer(imageIndex uint32) metadata.Framebuffer {
	return metadata.Framebuffer(imageIndex + 1)
}

func (s *Surface) Destroy() {
	s.Destroyed = true
}

func pop(q *[]metadata.SurfaceStatus) metadata.SurfaceStatus {
	if len(*q) == 0 {
		return metadata.SurfaceOptimal
	}
	s := (*q)[0]
	*q = (*q)[1:]
	return s
}
