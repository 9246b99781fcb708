package diag

import "testing"

func TestListAddHas(t *testing.T) {
	var l List
	if !l.OK() {
		t.Fatal("empty list should be OK")
	}
	l.Add(KindSpringIndex, 2.5, "C=%.2f outside [3,12]", 2.5)
	if l.OK() || !l.Has(KindSpringIndex) || l.Has(KindBuckling) {
		t.Fatalf("unexpected list state: %+v", l)
	}
	if l[0].Message != "C=2.50 outside [3,12]" || l[0].Value != 2.5 {
		t.Errorf("notice = %+v", l[0])
	}
}
