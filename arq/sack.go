package arq

// Sack carries the sequence numbers the receiver holds buffered but has not
// yet delivered, beyond the one named by the primary acknum. It lets the
// sender retire packets whose own acknowledgment was lost in transit.
type Sack struct {
	Seqnums []int
}

// EncodeSack packs s into an acknowledgment payload. Byte 0 is the ASCII
// digit of the count; each following pair of bytes holds the tens and ones
// digits of one sequence number; the remainder is padded with '0'.
func EncodeSack(s Sack) [PayloadSize]byte {
	var payload [PayloadSize]byte
	n := len(s.Seqnums)
	if n > MaxSack {
		n = MaxSack
	}
	payload[0] = byte('0' + n)
	for i := 0; i < n; i++ {
		payload[1+i*2] = byte('0' + s.Seqnums[i]/10)
		payload[2+i*2] = byte('0' + s.Seqnums[i]%10)
	}
	for i := 1 + n*2; i < PayloadSize; i++ {
		payload[i] = '0'
	}
	return payload
}

// DecodeSack is the inverse of EncodeSack. A payload that fails any
// validation (count out of range, non-digit bytes) decodes to the empty
// Sack: a corrupted SACK degrades to "no extra information", never to a
// fault.
func DecodeSack(payload [PayloadSize]byte) Sack {
	n := int(payload[0] - '0')
	if n < 0 || n > MaxSack {
		return Sack{}
	}
	seqnums := make([]int, 0, n)
	for i := 0; i < n; i++ {
		tens := int(payload[1+i*2] - '0')
		ones := int(payload[2+i*2] - '0')
		if tens < 0 || tens > 9 || ones < 0 || ones > 9 {
			return Sack{}
		}
		seqnums = append(seqnums, tens*10+ones)
	}
	return Sack{Seqnums: seqnums}
}
