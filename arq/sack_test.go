package arq

import "testing"

func TestSackRoundTrip(t *testing.T) {
	s := Sack{Seqnums: []int{0, 5, 11}}
	got := DecodeSack(EncodeSack(s))
	if len(got.Seqnums) != 3 {
		t.Fatalf("decoded %d seqnums, want 3", len(got.Seqnums))
	}
	for i, want := range s.Seqnums {
		if got.Seqnums[i] != want {
			t.Errorf("seqnum %d = %d, want %d", i, got.Seqnums[i], want)
		}
	}
}

func TestSackEmpty(t *testing.T) {
	got := DecodeSack(EncodeSack(Sack{}))
	if len(got.Seqnums) != 0 {
		t.Errorf("decoded %d seqnums from empty sack", len(got.Seqnums))
	}
}

func TestSackTruncatedToMax(t *testing.T) {
	s := Sack{Seqnums: []int{1, 2, 3, 4, 5, 6, 7, 8}}
	got := DecodeSack(EncodeSack(s))
	if len(got.Seqnums) != MaxSack {
		t.Errorf("decoded %d seqnums, want %d", len(got.Seqnums), MaxSack)
	}
}

func TestSackPadding(t *testing.T) {
	payload := EncodeSack(Sack{Seqnums: []int{4}})
	for i := 3; i < PayloadSize; i++ {
		if payload[i] != '0' {
			t.Errorf("payload[%d] = %q, want '0'", i, payload[i])
		}
	}
}

func TestSackMalformedCount(t *testing.T) {
	var payload [PayloadSize]byte
	payload[0] = 'z'
	if got := DecodeSack(payload); len(got.Seqnums) != 0 {
		t.Errorf("malformed count decoded to %d seqnums, want 0", len(got.Seqnums))
	}
	payload[0] = '0' + MaxSack + 1
	if got := DecodeSack(payload); len(got.Seqnums) != 0 {
		t.Errorf("oversized count decoded to %d seqnums, want 0", len(got.Seqnums))
	}
}

func TestSackMalformedDigits(t *testing.T) {
	payload := EncodeSack(Sack{Seqnums: []int{7}})
	payload[2] = 'x'
	if got := DecodeSack(payload); len(got.Seqnums) != 0 {
		t.Errorf("malformed digits decoded to %d seqnums, want 0", len(got.Seqnums))
	}
}

func TestSackAllZeroPayload(t *testing.T) {
	// an all-zero payload (as on a freshly zeroed packet) must not decode
	// to anything
	var payload [PayloadSize]byte
	if got := DecodeSack(payload); len(got.Seqnums) != 0 {
		t.Errorf("zero payload decoded to %d seqnums, want 0", len(got.Seqnums))
	}
}
