package kvstore

// Pebble is a flat key/value store; a Accumulo-style cell is a
// (row, family, qualifier) triple. encodeCellKey packs the triple into a
// single ordered pebble key so that range scans over a row prefix (or a
// row+family prefix) behave exactly like scanning a real column-family
// store: keys sort by row first, then family, then qualifier.
//
// Each segment is escaped with the same 0x00-escaping scheme rowcodec
// uses for VARCHAR (0x00 -> 0x00 0xFF, segment terminated by 0x00 0x01)
// so that a segment boundary is never ambiguous with a segment's own
// content, regardless of what bytes the caller passes in.
func encodeCellKey(row, family, qualifier []byte) []byte {
	out := make([]byte, 0, len(row)+len(family)+len(qualifier)+6)
	out = appendEscaped(out, row)
	out = appendEscaped(out, family)
	out = appendEscaped(out, qualifier)
	return out
}

// rowPrefixKey encodes just the row segment, suitable as the inclusive
// lower bound of a scan over every cell of that row (any family,
// qualifier) — every full cell key for that row has this as a prefix.
func rowPrefixKey(row []byte) []byte {
	return appendEscaped(nil, row)
}

func appendEscaped(dst, segment []byte) []byte {
	for _, c := range segment {
		if c == 0x00 {
			dst = append(dst, 0x00, 0xFF)
		} else {
			dst = append(dst, c)
		}
	}
	return append(dst, 0x00, 0x01)
}

// decodeCellKey reverses encodeCellKey.
func decodeCellKey(key []byte) (row, family, qualifier []byte, ok bool) {
	segs := make([][]byte, 0, 3)
	var cur []byte
	i := 0
	for i < len(key) {
		if key[i] == 0x00 {
			if i+1 < len(key) && key[i+1] == 0xFF {
				cur = append(cur, 0x00)
				i += 2
				continue
			}
			if i+1 < len(key) && key[i+1] == 0x01 {
				segs = append(segs, cur)
				cur = nil
				i += 2
				continue
			}
			return nil, nil, nil, false
		}
		cur = append(cur, key[i])
		i++
	}
	if len(segs) != 3 {
		return nil, nil, nil, false
	}
	return segs[0], segs[1], segs[2], true
}

// prefixUpperBound returns the smallest key that is strictly greater
// than every key sharing prefix p — i.e. the exclusive end bound of a
// scan over all keys prefixed by p. Returns nil if p is empty or all
// 0xFF (no finite upper bound exists; caller should scan unbounded).
func prefixUpperBound(p []byte) []byte {
	out := append([]byte{}, p...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] != 0xFF {
			out[i]++
			return out[:i+1]
		}
	}
	return nil
}
