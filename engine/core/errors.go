package core

import "errors"

var (
	ErrSurfaceFormatChanged    = errors.New("surface image format changed during recreation")
	ErrDescriptorPoolExhausted = errors.New("descriptor pool exhausted")
	ErrFrameInProgress         = errors.New("cannot begin a frame while one is in progress")
	ErrNoFrameInProgress       = errors.New("no frame in progress")
	ErrPassActive              = errors.New("render pass already active")
	ErrPassNotActive           = errors.New("render pass not active")
	ErrUnknownObject           = errors.New("unknown scene object")
	ErrNoMaterial              = errors.New("no material assigned")
	ErrInvalidFrameSlot        = errors.New("invalid frame slot")
	ErrInvalidSubmesh          = errors.New("invalid submesh index")
	ErrMeshNotFound            = errors.New("mesh not found")
	ErrShaderLoad              = errors.New("failed to load shader module")
	ErrUnknown                 = errors.New("unknown error")
)
