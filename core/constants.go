package core

import "time"

// MaxBindGroups is the maximum number of simultaneously bound bind groups.
const MaxBindGroups = 4

// MaxVertexBuffers is the maximum number of vertex buffers bound at once.
const MaxVertexBuffers = 8

// MaxColorTargets is the maximum number of color attachments in a render
// pass.
const MaxColorTargets = 4

// MaxMipLevels is the maximum number of mip levels a texture may have.
const MaxMipLevels = 16

// BindBufferAlignment is the required alignment, in bytes, of every dynamic
// offset passed to SetBindGroup.
const BindBufferAlignment = 256

// cleanupWaitTimeout bounds how long a force-waiting maintain() call blocks
// on a single submission's fence before giving up.
const cleanupWaitTimeout = 5000 * time.Millisecond
