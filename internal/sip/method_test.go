package sip

import "testing"

func TestMethodRoundTrip(t *testing.T) {
	methods := []Method{
		MethodRegister, MethodInvite, MethodSubscribe, MethodNotify,
		MethodOptions, MethodPublish, MethodMessage, MethodCancel,
		MethodBye, MethodAck, MethodPrack, MethodInfo, MethodRefer,
		MethodUpdate,
	}
	for _, m := range methods {
		s := MethodStr(m)
		if s == "" {
			t.Fatalf("MethodStr(%d) returned empty string", m)
		}
		if got := MethodFromStr(s); got != m {
			t.Errorf("MethodFromStr(MethodStr(%d)) = %d, want %d", m, got, m)
		}
	}
}

func TestMethodFromStrCaseInsensitive(t *testing.T) {
	tests := []struct {
		in   string
		want Method
	}{
		{"invite", MethodInvite},
		{"INVITE", MethodInvite},
		{"InViTe", MethodInvite},
		{"bogus", MethodUnknown},
		{"", MethodUnknown},
	}
	for _, tt := range tests {
		if got := MethodFromStr(tt.in); got != tt.want {
			t.Errorf("MethodFromStr(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMethodStrUnknown(t *testing.T) {
	if s := MethodStr(MethodUnknown); s != "" {
		t.Errorf("MethodStr(MethodUnknown) = %q, want empty", s)
	}
}
