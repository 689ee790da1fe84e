package lower

import (
	"go.bytecodealliance.org/wit"
)

// Info is the canonical memory layout of a type.
type Info struct {
	Size  uint32
	Align uint32
	// FieldOffsets holds record field offsets in declaration order.
	FieldOffsets []uint32
	// PayloadOffset is where a variant or option payload starts.
	PayloadOffset uint32
	// DiscSize is the discriminant width of a variant or option.
	DiscSize uint32
}

// Calculator computes layouts and caches them per type definition.
// Not safe for concurrent use.
type Calculator struct {
	cache map[*wit.TypeDef]Info
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[*wit.TypeDef]Info),
	}
}

func (c *Calculator) Calculate(t wit.Type) Info {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return Info{Size: 1, Align: 1}
	case wit.U16, wit.S16:
		return Info{Size: 2, Align: 2}
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return Info{Size: 4, Align: 4}
	case wit.U64, wit.S64, wit.F64:
		return Info{Size: 8, Align: 8}
	case wit.String:
		return Info{Size: 8, Align: 4}
	case *wit.TypeDef:
		return c.calculateTypeDef(typ)
	default:
		return Info{Size: 0, Align: 1}
	}
}

func (c *Calculator) calculateTypeDef(t *wit.TypeDef) Info {
	if cached, ok := c.cache[t]; ok {
		return cached
	}

	var info Info

	switch kind := t.Kind.(type) {
	case *wit.Record:
		info = c.calculateRecord(kind.Fields)
	case *wit.Variant:
		info = c.calculateVariant(kind)
	case *wit.Option:
		info = c.calculateOption(kind)
	case *wit.List:
		info = Info{Size: 8, Align: 4}
	case wit.Type:
		info = c.Calculate(kind)
	default:
		info = Info{Size: 0, Align: 1}
	}

	c.cache[t] = info
	return info
}

// Tuple lays out types as consecutive fields, the shape of a spilled
// parameter list.
func (c *Calculator) Tuple(types []wit.Type) Info {
	fields := make([]wit.Field, len(types))
	for i, t := range types {
		fields[i] = wit.Field{Type: t}
	}
	return c.calculateRecord(fields)
}

func (c *Calculator) calculateRecord(fields []wit.Field) Info {
	if len(fields) == 0 {
		return Info{Size: 0, Align: 1}
	}

	offsets := make([]uint32, len(fields))
	maxAlign := uint32(1)
	offset := uint32(0)

	for i, field := range fields {
		fieldLayout := c.Calculate(field.Type)

		offset = alignTo(offset, fieldLayout.Align)
		offsets[i] = offset

		if fieldLayout.Align > maxAlign {
			maxAlign = fieldLayout.Align
		}

		offset += fieldLayout.Size
	}

	return Info{
		Size:         alignTo(offset, maxAlign),
		Align:        maxAlign,
		FieldOffsets: offsets,
	}
}

func (c *Calculator) calculateVariant(v *wit.Variant) Info {
	discSize := discriminantSize(len(v.Cases))

	maxAlign := discSize
	maxSize := uint32(0)

	for _, cs := range v.Cases {
		if cs.Type == nil {
			continue
		}
		caseLayout := c.Calculate(cs.Type)
		if caseLayout.Align > maxAlign {
			maxAlign = caseLayout.Align
		}
		if caseLayout.Size > maxSize {
			maxSize = caseLayout.Size
		}
	}

	payloadOffset := alignTo(discSize, maxAlign)

	return Info{
		Size:          alignTo(payloadOffset+maxSize, maxAlign),
		Align:         maxAlign,
		PayloadOffset: payloadOffset,
		DiscSize:      discSize,
	}
}

func (c *Calculator) calculateOption(o *wit.Option) Info {
	inner := c.Calculate(o.Type)

	maxAlign := inner.Align
	if maxAlign < 1 {
		maxAlign = 1
	}
	payloadOffset := alignTo(1, maxAlign)

	return Info{
		Size:          alignTo(payloadOffset+inner.Size, maxAlign),
		Align:         maxAlign,
		PayloadOffset: payloadOffset,
		DiscSize:      1,
	}
}

func discriminantSize(numCases int) uint32 {
	switch {
	case numCases <= 1<<8:
		return 1
	case numCases <= 1<<16:
		return 2
	default:
		return 4
	}
}

func alignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}
