package lib

var LengthTable [32]byte = [32]byte{
    10, 254, 20,  2, 40,  4, 80,  6, 160,  8, 60, 10, 14, 12, 26, 14,
    12, 16, 24, 18, 48, 20, 96, 22, 192, 24, 72, 26, 16, 28, 32, 30,
}

type LengthCounter struct {
    Counter byte
}

/* load from the length table, index is the 5-bit field of the length register */
func (length *LengthCounter) SetLengthCounter(index byte) {
    length.Counter = LengthTable[index & 0x1f]
}

func (length *LengthCounter) GetLengthCounter() byte {
    return length.Counter
}

func (length *LengthCounter) Clear() {
    length.Counter = 0
}

/* clocked by every half frame */
func (length *LengthCounter) TickLengthCounter(enabled bool, halt bool) byte {
    if !enabled {
        length.Counter = 0
    } else if length.Counter > 0 && !halt {
        length.Counter -= 1
    }

    return length.Counter
}
