package frontend

import (
	"fmt"

	"github.com/gogpu/naga"
)

// ShaderLang is the shader-language runtime. Init runs once while the
// Context is constructed; an error aborts construction.
type ShaderLang interface {
	Init() error
}

// probeShaderWGSL is compiled at startup to prove the compiler works.
const probeShaderWGSL = `
@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    let x = f32(i32(i) - 1);
    let y = f32(i32(i & 1u) * 2 - 1);
    return vec4<f32>(x, y, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 1.0, 1.0, 1.0);
}
`

// NagaShaderLang compiles WGSL to SPIR-V with naga.
type NagaShaderLang struct {
	ready bool
}

// Init compiles the probe shader.
func (n *NagaShaderLang) Init() error {
	if _, err := n.compile(probeShaderWGSL); err != nil {
		return err
	}
	n.ready = true
	return nil
}

// CompileWGSL compiles a WGSL program to little-endian SPIR-V words.
func (n *NagaShaderLang) CompileWGSL(src string) ([]uint32, error) {
	if !n.ready {
		return nil, fmt.Errorf("frontend: shader language not initialized")
	}
	return n.compile(src)
}

func (n *NagaShaderLang) compile(src string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("frontend: compile shader: %w", err)
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
