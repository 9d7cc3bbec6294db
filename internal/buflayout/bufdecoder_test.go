package buflayout

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var enc BufEncoder
	enc.PutU8(7)
	enc.PutI16(-5)
	enc.PutU32(1 << 20)
	enc.PutI64(-123456789)
	enc.PutDecimal128(123, 0)

	dec := NewDecoder(enc.Bytes())
	if got := dec.U8(); got != 7 {
		t.Errorf("U8 = %d, want 7", got)
	}
	if got := dec.I16(); got != -5 {
		t.Errorf("I16 = %d, want -5", got)
	}
	if got := dec.U32(); got != 1<<20 {
		t.Errorf("U32 = %d, want %d", got, 1<<20)
	}
	if got := dec.I64(); got != -123456789 {
		t.Errorf("I64 = %d, want -123456789", got)
	}
	lo, hi := dec.Decimal128()
	if lo != 123 || hi != 0 {
		t.Errorf("Decimal128 = (%d, %d), want (123, 0)", lo, hi)
	}
	if dec.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", dec.Remaining())
	}
}

func TestBitmapLSBFirst(t *testing.T) {
	bm := NewBitmap()
	vals := []bool{true, false, true, true, false, false, false, true, true}
	for _, v := range vals {
		bm.Append(v)
	}
	for i, want := range vals {
		if got := bm.Get(i); got != want {
			t.Errorf("Get(%d) = %v, want %v", i, got, want)
		}
	}
	// First byte should be 0b1000_1101 packed LSB-first: bit0=1,bit1=0,
	// bit2=1,bit3=1,bit4=0,bit5=0,bit6=0,bit7=1 -> 0b1000_1101 = 0x8d
	if bm.Bytes()[0] != 0x8d {
		t.Errorf("byte 0 = %#x, want 0x8d", bm.Bytes()[0])
	}
	if bm.NullCount() != 4 {
		t.Errorf("NullCount = %d, want 4", bm.NullCount())
	}
}

func TestOffsets32Monotonic(t *testing.T) {
	o := NewOffsets32()
	o.Push(3)
	o.Push(0)
	o.Push(5)
	vals := o.Values()
	if vals[0] != 0 {
		t.Fatalf("offsets[0] = %d, want 0", vals[0])
	}
	for i := 1; i < len(vals); i++ {
		if vals[i] < vals[i-1] {
			t.Fatalf("offsets not monotonic at %d: %v", i, vals)
		}
	}
	if vals[len(vals)-1] != 8 {
		t.Errorf("final offset = %d, want 8", vals[len(vals)-1])
	}
}
