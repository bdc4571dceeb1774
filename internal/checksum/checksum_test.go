package checksum

import "testing"

func TestSum(t *testing.T) {
	const emptySHA = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != emptySHA {
		t.Errorf("Sum(nil) = %s", got)
	}
}

func TestFingerprint(t *testing.T) {
	if Fingerprint("ab", "c") == Fingerprint("a", "bc") {
		t.Error("part boundaries should change the fingerprint")
	}
	if Fingerprint("x", "y") != Fingerprint("x", "y") {
		t.Error("fingerprint not deterministic")
	}
}
