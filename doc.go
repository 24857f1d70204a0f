// Package jpeg decodes baseline sequential JPEG (ISO/IEC 10918-1, SOF0,
// Huffman-coded, 8-bit samples) bitstreams into an RGB raster.
//
// The package covers parsing of the interleaved marker/entropy-coded
// structure, Huffman decoding, dequantization and the inverse DCT, MCU
// scheduling with restart-marker resynchronization, and chroma upsampling
// with YCbCr to RGB conversion. Progressive, hierarchical and lossless
// JPEG, arithmetic coding, non-YCbCr color spaces and embedded metadata
// interpretation (ICC, EXIF, thumbnails) are not supported.
package jpeg
