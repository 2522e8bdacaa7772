package systems

import (
	"fmt"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/renderer"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
	"github.com/spaghettifunk/grindsim/engine/scene"
)

var _ renderer.MaterialResolver = (*MaterialSystem)(nil)

// TextureSets hands out sampler sets for image paths. TextureSystem is the
// production implementation.
type TextureSets interface {
	GetOrCreateMaterialSet(path string, srgb bool) (metadata.DescriptorSet, error)
	DummySet() metadata.DescriptorSet
}

type materialKey struct {
	id      scene.ObjectID
	submesh int
}

// materialEntry is one uniform buffer and descriptor set per frame slot plus
// a CPU copy of what was last written to each of them.
type materialEntry struct {
	buffers []metadata.Buffer
	sets    []metadata.DescriptorSet
	shadow  []metadata.MaterialParams
}

/**
 * @brief Owns the descriptor resources of the three binding classes. Global
 * and material parameter sets are duplicated per frame in flight, texture sets
 * are shared by every slot. Lookups never fail: a missing entry resolves to
 * the dummy resources created by NewMaterialSystem.
 */
type MaterialSystem struct {
	allocator      renderer.ResourceAllocator
	textures       TextureSets
	framesInFlight int

	globalBuffers []metadata.Buffer
	globalSets    []metadata.DescriptorSet

	dummyTexture  metadata.DescriptorSet
	dummyMaterial *materialEntry

	params   map[materialKey]*materialEntry
	samplers map[materialKey]metadata.DescriptorSet
}

func NewMaterialSystem(allocator renderer.ResourceAllocator, textures TextureSets, framesInFlight int) (*MaterialSystem, error) {
	if framesInFlight <= 0 {
		return nil, fmt.Errorf("func NewMaterialSystem - framesInFlight must be > 0, got %d", framesInFlight)
	}
	ms := &MaterialSystem{
		allocator:      allocator,
		textures:       textures,
		framesInFlight: framesInFlight,
		globalBuffers:  make([]metadata.Buffer, framesInFlight),
		globalSets:     make([]metadata.DescriptorSet, framesInFlight),
		params:         make(map[materialKey]*materialEntry),
		samplers:       make(map[materialKey]metadata.DescriptorSet),
	}

	for slot := 0; slot < framesInFlight; slot++ {
		buffer, err := allocator.CreateBuffer(metadata.BufferUsageUniform, metadata.GlobalUBOSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create global uniform buffer for slot %d: %w", slot, err)
		}
		ms.globalBuffers[slot] = buffer
		set, err := allocator.AllocateBufferSet(metadata.BindingClassGlobal, buffer, metadata.GlobalUBOSize)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate global descriptor for slot %d: %w", slot, err)
		}
		ms.globalSets[slot] = set
		ubo := metadata.NewGlobalUBO()
		if err := allocator.WriteBuffer(buffer, 0, ubo.Bytes()); err != nil {
			return nil, err
		}
	}

	ms.dummyTexture = textures.DummySet()
	if !ms.dummyTexture.IsValid() {
		return nil, fmt.Errorf("func NewMaterialSystem - texture cache has no dummy set")
	}

	dummy, err := ms.createEntry(metadata.DefaultMaterialParams())
	if err != nil {
		return nil, fmt.Errorf("failed to create dummy material: %w", err)
	}
	ms.dummyMaterial = dummy

	core.LogDebug("Material system initialized with %d frames in flight.", framesInFlight)
	return ms, nil
}

func (ms *MaterialSystem) createEntry(params metadata.MaterialParams) (*materialEntry, error) {
	entry := &materialEntry{
		buffers: make([]metadata.Buffer, ms.framesInFlight),
		sets:    make([]metadata.DescriptorSet, ms.framesInFlight),
		shadow:  make([]metadata.MaterialParams, ms.framesInFlight),
	}
	for slot := 0; slot < ms.framesInFlight; slot++ {
		buffer, err := ms.allocator.CreateBuffer(metadata.BufferUsageUniform, metadata.MaterialParamsSize)
		if err != nil {
			ms.destroyEntry(entry)
			return nil, err
		}
		entry.buffers[slot] = buffer
		set, err := ms.allocator.AllocateBufferSet(metadata.BindingClassMaterial, buffer, metadata.MaterialParamsSize)
		if err != nil {
			ms.destroyEntry(entry)
			return nil, err
		}
		entry.sets[slot] = set
	}
	if err := ms.writeAll(entry, params); err != nil {
		ms.destroyEntry(entry)
		return nil, err
	}
	return entry, nil
}

func (ms *MaterialSystem) destroyEntry(entry *materialEntry) {
	for _, buffer := range entry.buffers {
		if buffer.IsValid() {
			ms.allocator.DestroyBuffer(buffer)
		}
	}
}

func (ms *MaterialSystem) writeSlot(entry *materialEntry, slot int, params metadata.MaterialParams) error {
	if err := ms.allocator.WriteBuffer(entry.buffers[slot], 0, params.Bytes()); err != nil {
		return err
	}
	entry.shadow[slot] = params
	return nil
}

func (ms *MaterialSystem) writeAll(entry *materialEntry, params metadata.MaterialParams) error {
	for slot := range entry.buffers {
		if err := ms.writeSlot(entry, slot, params); err != nil {
			return err
		}
	}
	return nil
}

func (ms *MaterialSystem) assign(key materialKey, params metadata.MaterialParams) error {
	if entry, ok := ms.params[key]; ok {
		return ms.writeAll(entry, params)
	}
	entry, err := ms.createEntry(params)
	if err != nil {
		return fmt.Errorf("failed to assign material to object %d submesh %d: %w", key.id, key.submesh, err)
	}
	ms.params[key] = entry
	return nil
}

func (ms *MaterialSystem) update(key materialKey, slot int, params metadata.MaterialParams) error {
	if slot < 0 || slot >= ms.framesInFlight {
		return fmt.Errorf("slot %d of %d: %w", slot, ms.framesInFlight, core.ErrInvalidFrameSlot)
	}
	entry, ok := ms.params[key]
	if !ok {
		return fmt.Errorf("object %d submesh %d: %w", key.id, key.submesh, core.ErrNoMaterial)
	}
	return ms.writeSlot(entry, slot, params)
}

func submeshKey(id scene.ObjectID, submesh int) (materialKey, error) {
	if submesh < 0 {
		return materialKey{}, fmt.Errorf("submesh %d: %w", submesh, core.ErrInvalidSubmesh)
	}
	return materialKey{id: id, submesh: submesh}, nil
}

func wholeKey(id scene.ObjectID) materialKey {
	return materialKey{id: id, submesh: metadata.WholeObject}
}

/**
 * @brief Allocates one parameter buffer per frame slot for the whole object and
 * writes params into all of them. Assigning again rewrites the same buffers.
 */
func (ms *MaterialSystem) AssignWholeObjectMaterial(id scene.ObjectID, params metadata.MaterialParams) error {
	return ms.assign(wholeKey(id), params)
}

// AssignSubmeshMaterial is AssignWholeObjectMaterial scoped to one submesh.
func (ms *MaterialSystem) AssignSubmeshMaterial(id scene.ObjectID, submesh int, params metadata.MaterialParams) error {
	key, err := submeshKey(id, submesh)
	if err != nil {
		return err
	}
	return ms.assign(key, params)
}

// UpdateMaterialParams overwrites the whole object parameters of one frame slot.
// Only the slot that is being recorded may be written.
func (ms *MaterialSystem) UpdateMaterialParams(id scene.ObjectID, slot int, params metadata.MaterialParams) error {
	return ms.update(wholeKey(id), slot, params)
}

func (ms *MaterialSystem) UpdateSubmeshMaterialParams(id scene.ObjectID, submesh int, slot int, params metadata.MaterialParams) error {
	key, err := submeshKey(id, submesh)
	if err != nil {
		return err
	}
	return ms.update(key, slot, params)
}

func (ms *MaterialSystem) assignTexture(key materialKey, path string, srgb bool) error {
	set, err := ms.textures.GetOrCreateMaterialSet(path, srgb)
	if err != nil {
		return fmt.Errorf("failed to assign texture '%s' to object %d: %w", path, key.id, err)
	}
	ms.samplers[key] = set
	return nil
}

func (ms *MaterialSystem) AssignWholeObjectTexture(id scene.ObjectID, path string, srgb bool) error {
	return ms.assignTexture(wholeKey(id), path, srgb)
}

func (ms *MaterialSystem) AssignSubmeshTexture(id scene.ObjectID, submesh int, path string, srgb bool) error {
	key, err := submeshKey(id, submesh)
	if err != nil {
		return err
	}
	return ms.assignTexture(key, path, srgb)
}

func (ms *MaterialSystem) slot(frameSlot int) int {
	s := frameSlot % ms.framesInFlight
	if s < 0 {
		s += ms.framesInFlight
	}
	return s
}

// ResolveTexture returns the submesh texture, then the whole object texture,
// then the dummy.
func (ms *MaterialSystem) ResolveTexture(id scene.ObjectID, submesh int) metadata.DescriptorSet {
	if submesh >= 0 {
		if set, ok := ms.samplers[materialKey{id: id, submesh: submesh}]; ok {
			return set
		}
	}
	if set, ok := ms.samplers[wholeKey(id)]; ok {
		return set
	}
	return ms.dummyTexture
}

func (ms *MaterialSystem) lookup(id scene.ObjectID, submesh int) *materialEntry {
	if submesh >= 0 {
		if entry, ok := ms.params[materialKey{id: id, submesh: submesh}]; ok {
			return entry
		}
	}
	if entry, ok := ms.params[wholeKey(id)]; ok {
		return entry
	}
	return ms.dummyMaterial
}

// ResolveMaterialParams follows the same order as ResolveTexture for the
// parameter set of one frame slot.
func (ms *MaterialSystem) ResolveMaterialParams(id scene.ObjectID, frameSlot int, submesh int) metadata.DescriptorSet {
	return ms.lookup(id, submesh).sets[ms.slot(frameSlot)]
}

// MaterialParams returns the parameters last written to the set that
// ResolveMaterialParams returns for the same arguments.
func (ms *MaterialSystem) MaterialParams(id scene.ObjectID, frameSlot int, submesh int) metadata.MaterialParams {
	return ms.lookup(id, submesh).shadow[ms.slot(frameSlot)]
}

// HasMaterial reports whether params were assigned for exactly (id, submesh).
func (ms *MaterialSystem) HasMaterial(id scene.ObjectID, submesh int) bool {
	_, ok := ms.params[materialKey{id: id, submesh: submesh}]
	return ok
}

func (ms *MaterialSystem) GlobalDescriptor(frameSlot int) metadata.DescriptorSet {
	return ms.globalSets[ms.slot(frameSlot)]
}

// WriteGlobalUniforms uploads ubo into the global buffer of frameSlot.
func (ms *MaterialSystem) WriteGlobalUniforms(frameSlot int, ubo *metadata.GlobalUBO) error {
	if frameSlot < 0 || frameSlot >= ms.framesInFlight {
		return fmt.Errorf("slot %d of %d: %w", frameSlot, ms.framesInFlight, core.ErrInvalidFrameSlot)
	}
	return ms.allocator.WriteBuffer(ms.globalBuffers[frameSlot], 0, ubo.Bytes())
}

func (ms *MaterialSystem) DummyTexture() metadata.DescriptorSet {
	return ms.dummyTexture
}

func (ms *MaterialSystem) DummyMaterial(frameSlot int) metadata.DescriptorSet {
	return ms.dummyMaterial.sets[ms.slot(frameSlot)]
}

func (ms *MaterialSystem) FramesInFlight() int {
	return ms.framesInFlight
}

// Shutdown releases every buffer. Descriptor sets are returned with their
// pools by the backend. The device must be idle.
func (ms *MaterialSystem) Shutdown() error {
	for key, entry := range ms.params {
		ms.destroyEntry(entry)
		delete(ms.params, key)
	}
	for key := range ms.samplers {
		delete(ms.samplers, key)
	}
	if ms.dummyMaterial != nil {
		ms.destroyEntry(ms.dummyMaterial)
		ms.dummyMaterial = nil
	}
	for i, buffer := range ms.globalBuffers {
		if buffer.IsValid() {
			ms.allocator.DestroyBuffer(buffer)
		}
		ms.globalBuffers[i] = 0
	}
	return nil
}
