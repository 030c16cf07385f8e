package postgres

import "testing"

func TestLockKey_Deterministic(t *testing.T) {
	t.Parallel()

	a := lockKey("GK_RF")
	b := lockKey("GK_RF")
	if a != b {
		t.Errorf("lockKey not deterministic: %d != %d", a, b)
	}
}

func TestLockKey_DistinctCodes(t *testing.T) {
	t.Parallel()

	codes := []string{"GK_RF", "NK_RF", "UK_RF", "TK_RF", "KOAP_RF"}
	seen := make(map[int64]string, len(codes))
	for _, code := range codes {
		key := lockKey(code)
		if prev, ok := seen[key]; ok {
			t.Errorf("lockKey collision: %q and %q both map to %d", prev, code, key)
		}
		seen[key] = code
	}
}
