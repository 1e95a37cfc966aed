package system

import (
	"errors"
	"net"
	"strings"
)

var ErrNoAddress = errors.New("no non-loopback IPv4 address")

// PrimaryIPv4 returns the first non-loopback IPv4 address of an interface
// that is up.
func PrimaryIPv4() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		if ip := firstIPv4(addrs); ip != "" {
			return ip, nil
		}
	}
	return "", ErrNoAddress
}

func firstIPv4(addrs []net.Addr) string {
	for _, addr := range addrs {
		var ip net.IP
		switch v := addr.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip4 := ip.To4(); ip4 != nil && !ip4.IsLoopback() && !ip4.IsLinkLocalUnicast() {
			return ip4.String()
		}
	}
	return ""
}

// CaptureURL builds the URL of the capture page served on listenAddr at
// host ip. The port is omitted for :80.
func CaptureURL(listenAddr, ip string) string {
	if ip == "" {
		return ""
	}
	port := "80"
	if _, p, err := net.SplitHostPort(listenAddr); err == nil && p != "" {
		port = p
	} else if strings.HasPrefix(listenAddr, ":") {
		port = strings.TrimPrefix(listenAddr, ":")
	}
	if port == "80" {
		return "http://" + ip + "/"
	}
	return "http://" + net.JoinHostPort(ip, port) + "/"
}
