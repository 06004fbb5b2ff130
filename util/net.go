package util

import (
	"net"
)

// LocalIPs returns a slice of local IPv4 addresses with attached networks
func LocalIPs() (ips []net.IPNet) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ip := ipnet.IP.To4(); ip != nil {
				ips = append(ips, net.IPNet{IP: ip, Mask: ipnet.Mask})
			}
		}
	}

	return ips
}
