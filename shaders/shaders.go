// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package shaders embeds the stock particle templates: VFXInit, VFXUpdate
// and VFXOutput, with the VFXCommon.hlsl helpers they include.
package shaders

import "embed"

// FS holds the stock templates at its root.
//
//go:embed *.template *.hlsl
var FS embed.FS
