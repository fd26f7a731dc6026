package vulkan

import (
	"encoding/binary"
	"fmt"
	"os"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/vkcore/engine/core"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// readShaderCode loads a SPIR-V file and repacks it into words.
func readShaderCode(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shader: %w", err)
	}
	return decodeShaderCode(path, data)
}

func decodeShaderCode(name string, data []byte) ([]uint32, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", name, core.ErrEmptyShader)
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%s: size %d is not a multiple of 4: %w", name, len(data), core.ErrInvalidShader)
	}
	code := make([]uint32, len(data)/4)
	for i := range code {
		code[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	if code[0] != spirvMagic {
		return nil, fmt.Errorf("%s: bad magic %#08x: %w", name, code[0], core.ErrInvalidShader)
	}
	return code, nil
}

// LoadShaderModule creates a shader module from a SPIR-V file.
func LoadShaderModule(ctx *DeviceContext, path string) (vk.ShaderModule, error) {
	code, err := readShaderCode(path)
	if err != nil {
		return vk.NullShaderModule, err
	}
	info := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code) * 4),
		PCode:    code,
	}
	var module vk.ShaderModule
	if err := check("vkCreateShaderModule", vk.CreateShaderModule(ctx.Device, &info, nil, &module)); err != nil {
		return vk.NullShaderModule, err
	}
	ctx.log.Debugf("shader module %s loaded (%d words)", path, len(code))
	return module, nil
}

func DestroyShaderModule(ctx *DeviceContext, module vk.ShaderModule) {
	if module != vk.NullShaderModule {
		vk.DestroyShaderModule(ctx.Device, module, nil)
	}
}
