package utils

import (
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrServerNameNotFound is returned when a connection string names no host
var ErrServerNameNotFound = errors.New("server name not found in connection string")

// ExtractServerNameFromConnectionString extracts the server name from a connection string.
// URL style strings ("postgres://user@db1.example.com:5432/app") use the first label of the
// host; key/value strings use the "server=", "host=" or "data source=" key.
// It handles special cases like localhost and IP addresses by using the machine's hostname.
func ExtractServerNameFromConnectionString(connectionString string) (string, error) {
	host := hostFromURL(connectionString)
	if host == "" {
		host = hostFromKeyValues(connectionString)
	}

	// Get the server name from the host
	serverName := strings.Split(host, ".")[0]
	serverName = strings.Split(serverName, ":")[0] // Remove port if present
	serverName = strings.Split(serverName, ",")[0] // SQL Server "host,port"
	serverName = strings.Split(serverName, "\\")[0]
	if serverName == "" {
		return "", ErrServerNameNotFound
	}

	// If the server is localhost or an IP address, use the machine's hostname
	if strings.ToLower(serverName) == "localhost" || isIPAddress(host) {
		hostname, err := os.Hostname()
		if err != nil {
			return "", errors.Wrap(err, "failed to get hostname")
		}
		serverName = hostname
	}

	return strings.ToLower(serverName), nil
}

func hostFromURL(connectionString string) string {
	if !strings.Contains(connectionString, "://") {
		return ""
	}
	u, err := url.Parse(connectionString)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func hostFromKeyValues(connectionString string) string {
	// both "k=v;k=v" (SQL Server) and "k=v k=v" (libpq) forms
	fields := strings.FieldsFunc(connectionString, func(r rune) bool {
		return r == ';' || r == ' '
	})
	for _, field := range fields {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "server", "host", "data source", "source":
			return strings.TrimPrefix(strings.TrimSpace(value), "tcp:")
		}
	}
	return ""
}

// isIPAddress checks if a string is an IP address or part of one (like '127')
func isIPAddress(host string) bool {
	if ip := net.ParseIP(host); ip != nil {
		return true
	}
	if num, err := strconv.Atoi(host); err == nil {
		return num >= 0 && num <= 255
	}
	return false
}
