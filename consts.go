package huffman

// MaxCodeLen is the maximum permitted Huffman code length in bits.
// It bounds the size of the decoder's reverse dictionary
// (2^MaxCodeLen entries), so the dictionary derivation step must
// length-limit any tree that would otherwise produce a longer code.
const MaxCodeLen = 16

// HeaderSize is the fixed size, in bytes, of a container file's
// header: an 8-byte little-endian payload length followed by a
// 256-entry, 8-byte-per-entry histogram (8 + 256*8 = 2056).
const HeaderSize = 8 + 256*8
