package vulkan

import (
	"fmt"
	"image"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/renderer"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

var _ renderer.Device = (*VulkanRenderer)(nil)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// WindowSurface is the part of the platform window the backend needs to
// present to it.
type WindowSurface interface {
	RequiredInstanceExtensions() []string
	CreateWindowSurface(instance interface{}) (uintptr, error)
}

type Config struct {
	AppName        string
	Validation     bool
	VSync          bool
	FramesInFlight int
	// MaxSets is the descriptor pool size of each binding class.
	MaxSets [metadata.BindingClassCount]uint32
	Shaders ShaderSource
}

type frameSlot struct {
	imageAvailable vk.Semaphore
	queueComplete  vk.Semaphore
	inFlight       *VulkanFence
	commandBuffer  *VulkanCommandBuffer
}

/**
 * @brief The Vulkan implementation of the renderer device. Backend objects
 * are exposed through handle tables.
 */
type VulkanRenderer struct {
	config  Config
	window  WindowSurface
	context *VulkanContext

	frames  []frameSlot
	classes [metadata.BindingClassCount]*VulkanDescriptorClass
	sampler vk.Sampler

	buffers      *handleTable[metadata.Buffer, *VulkanBuffer]
	sets         *handleTable[metadata.DescriptorSet, VulkanDescriptorSet]
	textures     *handleTable[metadata.Texture, *VulkanImage]
	pipelines    *handleTable[metadata.Pipeline, *VulkanPipeline]
	framebuffers *handleTable[metadata.Framebuffer, *VulkanFramebuffer]
}

func New(window WindowSurface, config Config) *VulkanRenderer {
	if config.FramesInFlight < 1 {
		config.FramesInFlight = 2
	}
	return &VulkanRenderer{
		config: config,
		window: window,
		context: &VulkanContext{
			Allocator: nil,
			locks:     NewVulkanLockPool(),
		},
		buffers:      newHandleTable[metadata.Buffer, *VulkanBuffer](),
		sets:         newHandleTable[metadata.DescriptorSet, VulkanDescriptorSet](),
		textures:     newHandleTable[metadata.Texture, *VulkanImage](),
		pipelines:    newHandleTable[metadata.Pipeline, *VulkanPipeline](),
		framebuffers: newHandleTable[metadata.Framebuffer, *VulkanFramebuffer](),
	}
}

/**
 * @brief Creates the instance, the window surface, the device and the
 * per-slot command buffers and sync objects.
 */
func (vr *VulkanRenderer) Initialize() error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return fmt.Errorf("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vk: %w", err)
	}

	if err := vr.createInstance(); err != nil {
		return err
	}

	// Surface
	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.window.CreateWindowSurface(vr.context.Instance)
	if err != nil {
		return fmt.Errorf("vulkan surface creation failed: %w", err)
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	// Device creation
	if err := DeviceCreate(vr.context); err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	if err := vr.createFrameSync(); err != nil {
		return err
	}

	for class := metadata.BindingClass(0); class < metadata.BindingClassCount; class++ {
		dc, err := NewDescriptorClass(vr.context, class, vr.config.MaxSets[class])
		if err != nil {
			return err
		}
		vr.classes[class] = dc
	}

	if err := vr.createSampler(); err != nil {
		return err
	}

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createInstance() error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(vr.config.AppName),
		PEngineName:        VulkanSafeString("Grindsim"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	// Obtain a list of required extensions
	requiredExtensions := vr.window.RequiredInstanceExtensions()
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	var layers []string
	if vr.config.Validation {
		if vr.validationLayerAvailable() {
			layers = append(layers, validationLayerName)
			requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
		} else {
			core.LogWarn("Validation requested but %s is missing, continuing without it.", validationLayerName)
		}
	}
	for _, name := range requiredExtensions {
		core.LogDebug("Required extension: %s", name)
	}

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &instance); res != vk.Success {
		return vkError("vkCreateInstance", res)
	}
	vr.context.Instance = instance
	if err := vk.InitInstance(instance); err != nil {
		return err
	}
	core.LogInfo("Vulkan Instance created.")

	if len(layers) > 0 {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if res := vk.CreateDebugReportCallback(instance, &debugCreateInfo, nil, &dbg); res != vk.Success {
			return vkError("vkCreateDebugReportCallbackEXT", res)
		}
		vr.context.debugCallback = dbg
		core.LogDebug("Vulkan debugger created.")
	}
	return nil
}

func (vr *VulkanRenderer) validationLayerAvailable() bool {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return false
	}
	layers := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, layers); res != vk.Success {
		return false
	}
	for i := range layers {
		layers[i].Deref()
		if cString(layers[i].LayerName[:]) == validationLayerName {
			return true
		}
	}
	return false
}

func (vr *VulkanRenderer) createFrameSync() error {
	context := vr.context
	vr.frames = make([]frameSlot, vr.config.FramesInFlight)
	for i := range vr.frames {
		semaphoreCreateInfo := vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}
		var available, complete vk.Semaphore
		if res := vk.CreateSemaphore(context.device(), &semaphoreCreateInfo, context.Allocator, &available); res != vk.Success {
			return vkError("vkCreateSemaphore", res)
		}
		vr.frames[i].imageAvailable = available
		if res := vk.CreateSemaphore(context.device(), &semaphoreCreateInfo, context.Allocator, &complete); res != vk.Success {
			return vkError("vkCreateSemaphore", res)
		}
		vr.frames[i].queueComplete = complete

		// Create the fence in a signaled state, indicating that the first frame has already been "rendered".
		fence, err := NewFence(context, true)
		if err != nil {
			return err
		}
		vr.frames[i].inFlight = fence

		cb, err := NewVulkanCommandBuffer(context, context.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		cb.owner = vr
		vr.frames[i].commandBuffer = cb
	}
	core.LogDebug("Vulkan command buffers and sync objects created for %d frames.", len(vr.frames))
	return nil
}

func (vr *VulkanRenderer) createSampler() error {
	device := vr.context.Device
	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
	}
	if device.Features.SamplerAnisotropy == vk.True {
		samplerInfo.AnisotropyEnable = vk.True
		samplerInfo.MaxAnisotropy = min(16, device.Properties.Limits.MaxSamplerAnisotropy)
	}
	var sampler vk.Sampler
	if res := vk.CreateSampler(vr.context.device(), &samplerInfo, vr.context.Allocator, &sampler); res != vk.Success {
		return vkError("vkCreateSampler", res)
	}
	vr.sampler = sampler
	return nil
}

func (vr *VulkanRenderer) frameSync(frameIndex int) (*frameSlot, error) {
	if frameIndex < 0 || frameIndex >= len(vr.frames) {
		return nil, fmt.Errorf("%w: %d of %d", core.ErrInvalidFrameSlot, frameIndex, len(vr.frames))
	}
	return &vr.frames[frameIndex], nil
}

func (vr *VulkanRenderer) CreateSurface(extent metadata.Extent, previous renderer.Surface) (renderer.Surface, error) {
	var old *VulkanSwapchain
	if previous != nil {
		var ok bool
		if old, ok = previous.(*VulkanSwapchain); !ok {
			return nil, fmt.Errorf("cannot retire a %T", previous)
		}
	}
	swapchain, err := createSwapchain(vr, extent.Width, extent.Height, old)
	if err != nil {
		return nil, err
	}
	if old != nil {
		old.Destroy()
	}
	return swapchain, nil
}

func (vr *VulkanRenderer) CommandBuffer(frameIndex int) renderer.CommandBuffer {
	n := len(vr.frames)
	return vr.frames[((frameIndex%n)+n)%n].commandBuffer
}

func (vr *VulkanRenderer) WaitIdle() error {
	if res := vk.DeviceWaitIdle(vr.context.device()); !VulkanResultIsSuccess(res) {
		return vkError("vkDeviceWaitIdle", res)
	}
	return nil
}

func (vr *VulkanRenderer) CreateBuffer(usage metadata.BufferUsage, size uint64) (metadata.Buffer, error) {
	flags, err := bufferUsageFlags(usage)
	if err != nil {
		return 0, err
	}
	var buffer *VulkanBuffer
	if err := vr.context.locks.SafeCall(ResourceManagement, func() error {
		buffer, err = NewVulkanBuffer(vr.context, size, flags)
		return err
	}); err != nil {
		return 0, err
	}
	return vr.buffers.add(buffer), nil
}

func (vr *VulkanRenderer) WriteBuffer(handle metadata.Buffer, offset uint64, data []byte) error {
	buffer, ok := vr.buffers.get(handle)
	if !ok {
		return fmt.Errorf("write to unknown buffer %d", handle)
	}
	return buffer.Write(offset, data)
}

func (vr *VulkanRenderer) DestroyBuffer(handle metadata.Buffer) {
	if buffer, ok := vr.buffers.remove(handle); ok {
		buffer.Destroy(vr.context)
	}
}

func (vr *VulkanRenderer) allocateSet(class metadata.BindingClass) (vk.DescriptorSet, error) {
	if class >= metadata.BindingClassCount {
		return vk.NullDescriptorSet, fmt.Errorf("unknown binding class %d", class)
	}
	var set vk.DescriptorSet
	err := vr.context.locks.SafeCall(DescriptorManagement, func() error {
		var err error
		set, err = vr.classes[class].Allocate(vr.context)
		return err
	})
	return set, err
}

func (vr *VulkanRenderer) AllocateBufferSet(class metadata.BindingClass, handle metadata.Buffer, size uint64) (metadata.DescriptorSet, error) {
	if class == metadata.BindingClassTexture {
		return 0, fmt.Errorf("binding class %s does not take a buffer", class)
	}
	buffer, ok := vr.buffers.get(handle)
	if !ok {
		return 0, fmt.Errorf("allocate %s set: unknown buffer %d", class, handle)
	}
	set, err := vr.allocateSet(class)
	if err != nil {
		return 0, err
	}
	writeBufferDescriptor(vr.context, set, buffer.Handle, size)
	return vr.sets.add(VulkanDescriptorSet{Handle: set, Class: class}), nil
}

func (vr *VulkanRenderer) AllocateTextureSet(handle metadata.Texture) (metadata.DescriptorSet, error) {
	texture, ok := vr.textures.get(handle)
	if !ok {
		return 0, fmt.Errorf("allocate texture set: unknown texture %d", handle)
	}
	set, err := vr.allocateSet(metadata.BindingClassTexture)
	if err != nil {
		return 0, err
	}
	writeImageDescriptor(vr.context, set, texture.View, vr.sampler)
	return vr.sets.add(VulkanDescriptorSet{Handle: set, Class: metadata.BindingClassTexture}), nil
}

/**
 * @brief Uploads img through a staging buffer into a device local, sampled image.
 */
func (vr *VulkanRenderer) CreateTexture(name string, img *image.RGBA, srgb bool) (metadata.Texture, error) {
	if img == nil || img.Rect.Empty() {
		return 0, fmt.Errorf("texture '%s' has no pixels", name)
	}
	width, height := uint32(img.Rect.Dx()), uint32(img.Rect.Dy())
	pixels := tightPixels(img)

	format := vk.FormatR8g8b8a8Unorm
	if srgb {
		format = vk.FormatR8g8b8a8Srgb
	}

	context := vr.context
	device := context.Device
	var texture *VulkanImage
	err := context.locks.SafeCall(ResourceManagement, func() error {
		staging, err := NewVulkanBuffer(context, uint64(len(pixels)), vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit))
		if err != nil {
			return err
		}
		defer staging.Destroy(context)
		if err := staging.Write(0, pixels); err != nil {
			return err
		}

		texture, err = ImageCreate(
			context,
			width, height,
			format,
			vk.ImageTilingOptimal,
			vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)|vk.ImageUsageFlags(vk.ImageUsageSampledBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
			true,
			vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			return err
		}

		cb, err := AllocateAndBeginSingleUse(context, device.GraphicsCommandPool)
		if err != nil {
			texture.Destroy(context)
			return err
		}
		texture.TransitionLayout(cb.Handle, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
		texture.CopyFromBuffer(cb.Handle, staging.Handle)
		texture.TransitionLayout(cb.Handle, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
		if err := cb.EndSingleUse(context, device.GraphicsCommandPool, device.GraphicsQueue, uint32(device.GraphicsQueueIndex)); err != nil {
			texture.Destroy(context)
			return err
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upload texture '%s': %w", name, err)
	}
	core.LogDebug("Texture '%s' uploaded %dx%d srgb=%t.", name, width, height, srgb)
	return vr.textures.add(texture), nil
}

// tightPixels returns the pixels of img without row padding.
func tightPixels(img *image.RGBA) []byte {
	width, height := img.Rect.Dx(), img.Rect.Dy()
	row := width * 4
	if img.Stride == row && img.Rect.Min == (image.Point{}) {
		return img.Pix[:row*height]
	}
	out := make([]byte, row*height)
	for y := 0; y < height; y++ {
		start := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(out[y*row:(y+1)*row], img.Pix[start:start+row])
	}
	return out
}

func (vr *VulkanRenderer) DestroyTexture(handle metadata.Texture) {
	if texture, ok := vr.textures.remove(handle); ok {
		texture.Destroy(vr.context)
	}
}

/**
 * @brief Builds a graphics pipeline against the main render pass. A surface
 * must exist before the first pipeline is created.
 */
func (vr *VulkanRenderer) CreatePipeline(config metadata.PipelineConfig) (metadata.Pipeline, error) {
	context := vr.context
	if context.MainRenderpass == nil {
		return 0, fmt.Errorf("create pipeline: no render pass, create a surface first")
	}

	vertex, err := NewShaderModule(context, vr.config.Shaders, config.VertexShader, vk.ShaderStageVertexBit)
	if err != nil {
		return 0, err
	}
	defer vertex.Destroy(context)
	fragment, err := NewShaderModule(context, vr.config.Shaders, config.FragmentShader, vk.ShaderStageFragmentBit)
	if err != nil {
		return 0, err
	}
	defer fragment.Destroy(context)

	layouts := make([]vk.DescriptorSetLayout, len(config.SetClasses))
	for i, class := range config.SetClasses {
		if class >= metadata.BindingClassCount {
			return 0, fmt.Errorf("create pipeline: unknown binding class %d", class)
		}
		layouts[i] = vr.classes[class].Layout
	}

	bindings, attributes := VertexInput(config.Bindings, config.Attributes)
	pipeline, err := NewGraphicsPipeline(context, &VulkanPipelineConfig{
		Renderpass:           context.MainRenderpass,
		Bindings:             bindings,
		Attributes:           attributes,
		DescriptorSetLayouts: layouts,
		Stages:               []vk.PipelineShaderStageCreateInfo{vertex.ShaderStageCreateInfo, fragment.ShaderStageCreateInfo},
		CullMode:             config.CullMode,
		DepthWrite:           config.DepthWrite,
		AlphaBlend:           config.AlphaBlend,
		PushConstantSize:     config.PushConstantSize,
		Kind:                 config.Kind,
	})
	if err != nil {
		return 0, err
	}
	return vr.pipelines.add(pipeline), nil
}

/**
 * @brief Destroys everything the backend created. Surfaces must be
 * destroyed first.
 */
func (vr *VulkanRenderer) Shutdown() error {
	context := vr.context
	if context.Device == nil || context.Device.LogicalDevice == nil {
		vr.destroyInstance()
		return nil
	}
	if err := vr.WaitIdle(); err != nil {
		core.LogError("shutdown: %s", err)
	}

	// Destroy in the opposite order of creation.
	for _, p := range vr.pipelines.drain() {
		p.Destroy(context)
	}
	for _, t := range vr.textures.drain() {
		t.Destroy(context)
	}
	for _, b := range vr.buffers.drain() {
		b.Destroy(context)
	}
	for _, fb := range vr.framebuffers.drain() {
		fb.Destroy(context)
	}
	vr.sets.drain()

	if vr.sampler != vk.NullSampler {
		vk.DestroySampler(context.device(), vr.sampler, context.Allocator)
		vr.sampler = vk.NullSampler
	}
	for i, dc := range vr.classes {
		if dc != nil {
			dc.Destroy(context)
			vr.classes[i] = nil
		}
	}

	// Sync objects
	for i := range vr.frames {
		frame := &vr.frames[i]
		if frame.imageAvailable != vk.NullSemaphore {
			vk.DestroySemaphore(context.device(), frame.imageAvailable, context.Allocator)
		}
		if frame.queueComplete != vk.NullSemaphore {
			vk.DestroySemaphore(context.device(), frame.queueComplete, context.Allocator)
		}
		if frame.inFlight != nil {
			frame.inFlight.FenceDestroy(context)
		}
		if frame.commandBuffer != nil {
			frame.commandBuffer.Free(context, context.Device.GraphicsCommandPool)
		}
	}
	vr.frames = nil

	if context.MainRenderpass != nil {
		context.MainRenderpass.RenderpassDestroy(context)
		context.MainRenderpass = nil
	}

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(context)
	vr.destroyInstance()
	return nil
}

func (vr *VulkanRenderer) destroyInstance() {
	context := vr.context
	if context.Instance == nil {
		return
	}
	core.LogDebug("Destroying Vulkan surface...")
	if context.Surface != vk.NullSurface {
		vk.DestroySurface(context.Instance, context.Surface, context.Allocator)
		context.Surface = vk.NullSurface
	}
	if context.debugCallback != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(context.Instance, context.debugCallback, context.Allocator)
		context.debugCallback = vk.NullDebugReportCallback
	}
	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(context.Instance, context.Allocator)
	context.Instance = nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
