package chassis

import (
	"crypto/tls"
	"fmt"

	"github.com/RamsisDev/Latip-Hackaton/pkg/mcpquic"
)

// alpnQUIC lists what the UDP side negotiates: HTTP/3 first, then MCP.
var alpnQUIC = []string{"h3", mcpquic.ALPNProtocolMCP}

// DevelopmentTLSConfig builds a self-signed config for localhost and hosts.
func DevelopmentTLSConfig(hosts ...string) (*tls.Config, error) {
	cert, err := mcpquic.SelfSignedCert("Latip Dev", hosts...)
	if err != nil {
		return nil, err
	}
	return baseTLS(cert), nil
}

// ProductionTLSConfig loads the certificate pair from disk.
func ProductionTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load key pair: %w", err)
	}
	return baseTLS(cert), nil
}

func baseTLS(cert tls.Certificate) *tls.Config {
	return &tls.Config{
		MinVersion:   tls.VersionTLS13,
		Certificates: []tls.Certificate{cert},
		NextProtos:   alpnQUIC,
	}
}
