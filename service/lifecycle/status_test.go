package lifecycle

import (
	"testing"

	entity "gaugetrack.GO/model/entity"
)

func member(status string, sealed bool) *entity.Gauge {
	return &entity.Gauge{Status: status, Sealed: sealed}
}

func TestCompositeStatus(t *testing.T) {
	cases := []struct {
		name        string
		a, b        string
		want        string
		canCheckout bool
	}{
		{"both available", entity.StatusAvailable, entity.StatusAvailable, entity.StatusAvailable, true},
		{"one checked out", entity.StatusCheckedOut, entity.StatusAvailable, SetStatusPartiallyCheckedOut, false},
		{"both checked out", entity.StatusCheckedOut, entity.StatusCheckedOut, entity.StatusCheckedOut, false},
		{"checked out beats calibration", entity.StatusCheckedOut, entity.StatusInCalibration, entity.StatusCheckedOut, false},
		{"out of service beats calibration due", entity.StatusOutOfService, entity.StatusCalibrationDue, entity.StatusOutOfService, false},
		{"calibration due", entity.StatusAvailable, entity.StatusCalibrationDue, entity.StatusCalibrationDue, false},
		{"in calibration", entity.StatusInCalibration, entity.StatusAvailable, entity.StatusInCalibration, false},
		{"pending qc", entity.StatusAvailable, entity.StatusPendingQC, entity.StatusPendingQC, false},
		{"pending certificate", entity.StatusPendingCertificate, entity.StatusAvailable, entity.StatusPendingCertificate, false},
		{"pending release", entity.StatusAvailable, entity.StatusPendingRelease, entity.StatusPendingRelease, false},
		{"both retired", entity.StatusRetired, entity.StatusRetired, entity.StatusRetired, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := CompositeStatus(member(c.a, false), member(c.b, false))
			if got.Status != c.want {
				t.Errorf("Status = %q, want %q", got.Status, c.want)
			}
			if got.CanCheckout != c.canCheckout {
				t.Errorf("CanCheckout = %v, want %v", got.CanCheckout, c.canCheckout)
			}
			if !got.CanCheckout && got.Reason == nil {
				t.Error("blocked status carries no reason")
			}
		})
	}
}

func TestCompositeStatus_SymmetricInMembers(t *testing.T) {
	a := member(entity.StatusCheckedOut, false)
	b := member(entity.StatusAvailable, false)
	if CompositeStatus(a, b).Status != CompositeStatus(b, a).Status {
		t.Error("composite status depends on member order")
	}
}

func TestCompositeSeal(t *testing.T) {
	cases := []struct {
		a, b bool
		want string
	}{
		{true, true, SealSealed},
		{true, false, SealSealed},
		{false, true, SealSealed},
		{false, false, SealUnsealed},
	}
	for _, c := range cases {
		got := CompositeSeal(member(entity.StatusAvailable, c.a), member(entity.StatusAvailable, c.b))
		if got != c.want {
			t.Errorf("CompositeSeal(%v, %v) = %q, want %q", c.a, c.b, got, c.want)
		}
	}
}
