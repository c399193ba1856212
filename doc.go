// Package jsc implements a bounded-memory baseline JPEG compressor and
// decompressor: 8-bit precision, single-scan Huffman coding only. It is
// meant for deterministic, embedded use -- no progressive or hierarchical
// modes, no arithmetic coding. The controllers' buffers are sized from the
// image geometry and charged to an Arena (see arena.go) that Compress and
// Decompress each create internally; callers do not supply it. The
// entropy coder's output bytes and the per-MCU encode scratch are still
// allocated on the heap while the stream is produced.
//
// The four controllers that make up the compression spine -- the
// preprocessing controller, the downsampler, the forward DCT manager and
// the coefficient controller -- stream the image one iMCU row at a time,
// suspending and resuming around the entropy encoder's output buffer. The
// decompression side mirrors this with the main/post controllers and the
// inverse DCT manager.
package jsc
