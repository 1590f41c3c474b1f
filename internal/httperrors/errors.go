// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors explains failed calls to the processing service in
// terms a CLI user can act on.
package httperrors

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"csvflow/cli/internal/backend"
)

// Class is the troubleshooting category of a failed call.
type Class int

const (
	ClassGeneric Class = iota
	ClassTimeout
	ClassDNS
	ClassConnectionRefused
	ClassTLS
	ClassServer
)

// Classify picks the troubleshooting category for err.
func Classify(err error) Class {
	switch {
	case isTimeoutError(err):
		return ClassTimeout
	case isDNSError(err):
		return ClassDNS
	case isConnectionRefusedError(err):
		return ClassConnectionRefused
	case isSSLError(err):
		return ClassTLS
	case isServerError(err):
		return ClassServer
	default:
		return ClassGeneric
	}
}

// IsNetworkError reports whether err is a failure this package can explain:
// a transport failure or a 5xx answer. Other rejections carry their own
// message from the service.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, backend.ErrUnavailable) || isServerError(err) || isTimeoutError(err)
}

// FormatNetworkError writes troubleshooting help for err to w and returns err
// wrapped for logging. action describes what was being done ("processing
// people.csv") and host names the service (see ExtractHostFromURL).
func FormatNetworkError(w io.Writer, err error, action, host string) error {
	if err == nil {
		return nil
	}

	p := printer{w: w}
	switch Classify(err) {
	case ClassTimeout:
		p.timeout(action)
	case ClassDNS:
		p.dns(action, host)
	case ClassConnectionRefused:
		p.connectionRefused(action, host)
	case ClassTLS:
		p.tls(action)
	case ClassServer:
		p.server(action, host)
	default:
		p.generic(action, host, err.Error())
	}

	return fmt.Errorf("network error: %w", err)
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}

	// Check for timeout in error message
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return true
	}

	// Check for net.Error with Timeout()
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	if err == nil {
		return false
	}

	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if the error is a connection refused error.
func isConnectionRefusedError(err error) bool {
	if err == nil {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.ECONNREFUSED)
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused")
}

// isSSLError checks if the error is an SSL/TLS error.
func isSSLError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "ssl") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

// isServerError checks if the error indicates a server-side problem (5xx errors).
func isServerError(err error) bool {
	var se *backend.StatusError
	if errors.As(err, &se) {
		return se.Status >= 500
	}
	return false
}

type printer struct {
	w io.Writer
}

func (p printer) line(format string, a ...any) {
	pterm.Fprintln(p.w, fmt.Sprintf(format, a...))
}

func (p printer) blank() { pterm.Fprintln(p.w) }

func (p printer) timeout(action string) {
	p.line("⏱️  Connection timeout while %s", action)
	p.blank()
	p.line("The processing service took too long to respond. This could mean:")
	p.line("  • The CSV file is large and processing is slow")
	p.line("  • The service is under heavy load")
	p.line("  • A network firewall is blocking the connection")
	p.blank()
	p.line("Try again, or raise the limit with --timeout.")
	p.blank()
}

func (p printer) dns(action, host string) {
	p.line("🌐 Cannot resolve server address while %s", action)
	p.blank()
	p.line("Unable to look up %s. Please check:", host)
	p.line("  • The --api-url flag or CSVFLOW_API_URL is spelled correctly")
	p.line("  • Your network connection is working")
	p.line("  • DNS settings are correct")
	p.blank()
}

func (p printer) connectionRefused(action, host string) {
	p.line("🚫 Connection refused while %s", action)
	p.blank()
	p.line("Nothing is accepting connections at %s. This could mean:", host)
	p.line("  • The processing service is not running")
	p.line("  • The service listens on a different port")
	p.line("  • A firewall is blocking the connection")
	p.blank()
	p.line("Start the service, or point csvflow at it with --api-url.")
	p.blank()
}

func (p printer) tls(action string) {
	p.line("🔒 Secure connection failed while %s", action)
	p.blank()
	p.line("Cannot establish a secure HTTPS connection. This could mean:")
	p.line("  • SSL/TLS certificate issue")
	p.line("  • Network proxy interfering with HTTPS")
	p.line("  • System clock is incorrect")
	p.blank()
}

func (p printer) server(action, host string) {
	p.line("⚠️  Server error while %s", action)
	p.blank()
	p.line("The processing service at %s encountered an internal error.", host)
	p.line("  • Check the service logs")
	p.line("  • Please try again in a few moments")
	p.blank()
}

func (p printer) generic(action, host, details string) {
	p.line("❌ Cannot connect to the processing service while %s", action)
	p.blank()
	p.line("Please check:")
	p.line("  • Whether %s is reachable from your network", host)
	p.line("  • Proxy or firewall settings")
	p.blank()

	if details != "" {
		short := details
		if len(short) > 100 {
			short = short[:100] + "..."
		}
		pterm.Debug.Printf("Technical details: %s\n", short)
	}
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
