package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/resources"
)

type ShaderLoader struct{}

// Load reads a compiled SPIR-V module such as shader.vert.spv.
func (sl *ShaderLoader) Load(path string, params interface{}) (*resources.Resource, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w '%s': %v", core.ErrShaderLoad, path, err)
	}
	code, err := bytesToBytecode(data)
	if err != nil {
		return nil, fmt.Errorf("%w '%s': %v", core.ErrShaderLoad, path, err)
	}
	if len(code) == 0 || code[0] != resources.SpirvMagic {
		return nil, fmt.Errorf("%w '%s': missing SPIR-V magic number", core.ErrShaderLoad, path)
	}

	return &resources.Resource{
		Type:     resources.ResourceTypeShader,
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     &resources.ShaderResourceData{Stage: shaderStage(path), Code: code},
	}, nil
}

func (sl *ShaderLoader) Unload(*resources.Resource) error {
	return nil
}

// shaderStage is the extension before .spv, e.g. "vert" or "frag".
func shaderStage(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".spv")
	return strings.TrimPrefix(filepath.Ext(base), ".")
}
