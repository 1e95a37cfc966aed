package system

import (
	"net"
	"testing"
)

func TestCaptureURL(t *testing.T) {
	tests := []struct {
		listen, ip, want string
	}{
		{":80", "10.0.0.2", "http://10.0.0.2/"},
		{":8080", "10.0.0.2", "http://10.0.0.2:8080/"},
		{"0.0.0.0:9000", "192.168.1.4", "http://192.168.1.4:9000/"},
		{"", "10.0.0.2", "http://10.0.0.2/"},
		{":8080", "", ""},
	}
	for _, tt := range tests {
		if got := CaptureURL(tt.listen, tt.ip); got != tt.want {
			t.Errorf("CaptureURL(%q, %q) = %q, want %q", tt.listen, tt.ip, got, tt.want)
		}
	}
}

func TestFirstIPv4(t *testing.T) {
	addrs := []net.Addr{
		&net.IPNet{IP: net.ParseIP("127.0.0.1"), Mask: net.CIDRMask(8, 32)},
		&net.IPNet{IP: net.ParseIP("fe80::1"), Mask: net.CIDRMask(64, 128)},
		&net.IPNet{IP: net.ParseIP("169.254.3.4"), Mask: net.CIDRMask(16, 32)},
		&net.IPAddr{IP: net.ParseIP("192.168.1.20")},
	}
	if got := firstIPv4(addrs); got != "192.168.1.20" {
		t.Errorf("firstIPv4() = %q", got)
	}
	if got := firstIPv4(addrs[:3]); got != "" {
		t.Errorf("firstIPv4(loopback only) = %q", got)
	}
}

type recordingLogger struct{ infos, errors int }

func (l *recordingLogger) Infof(string, string, ...interface{})  { l.infos++ }
func (l *recordingLogger) Errorf(string, string, ...interface{}) { l.errors++ }

func TestLogResult(t *testing.T) {
	l := &recordingLogger{}
	logResult(l, nil, "ok", "failed")
	logResult(l, net.ErrClosed, "ok", "failed")
	logResult(nil, nil, "ok", "failed")
	if l.infos != 1 || l.errors != 1 {
		t.Errorf("infos, errors = %d, %d", l.infos, l.errors)
	}
}
