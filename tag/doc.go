// Package tag implements the binary tag tree format.
//
// A tree is made of Tag values. The fixed kinds are plain Go types:
//
//	root := tag.NewCompound()
//	_ = root.Put("a", tag.Int(7))
//	bytes, _ := tag.NewList(tag.KindByte, tag.Byte(1), tag.Byte(2), tag.Byte(3))
//	_ = root.Put("b", bytes)
//
// A Codec turns trees into bytes and back:
//
//	codec, _ := tag.NewCodec()
//	data, _ := codec.Marshal("", root)
//	name, decoded, _ := codec.Unmarshal(data)
//
// # Wire Format
//
//	tag       := kind:u8 [name] payload   ; name omitted for End
//	name      := len:u16 bytes[len]
//	string    := len:u16 bytes[len]
//	array(n)  := len:i32 elements[len]
//	list      := elemKind:u8 count:i32 payload[count]
//	compound  := tag* end
//
// All multi-byte fields are big-endian unless the codec is built WithLittleEndian.
//
// # Depth Guard
//
// Encoding and decoding count nested compounds and lists. A tree with more than
// MaxDepth levels fails with errs.ErrMaxDepth, which is distinct from the
// errs.ErrMalformed family reported for corrupt input.
//
// # Custom Kinds
//
// Kinds outside 0..12 are supplied through the Custom interface and a Registry
// held by the Codec. Unregistered kinds fail to decode with errs.ErrUnknownKind.
// Encoding never consults the registry.
//
// # Cycles
//
// Compound.Put, List.Append and List.Set refuse values whose subtree contains the
// receiver, so a tree built through this API is always finite.
package tag
