package printer

import (
	"fmt"
	"image"
	"net"
	"strconv"
	"sync"
	"time"
)

const dialTimeout = 5 * time.Second

// NetworkConnection is a TCP connection to an ESC/POS printer,
// typically on port 9100.
type NetworkConnection struct {
	conn net.Conn
	mu   sync.Mutex
}

// Connect dials the printer.
func Connect(host string, port int) (*NetworkConnection, error) {
	address := net.JoinHostPort(host, strconv.Itoa(port))

	conn, err := net.DialTimeout("tcp", address, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to printer at %s: %w", address, err)
	}

	return &NetworkConnection{conn: conn}, nil
}

// Write sends raw command bytes to the printer.
func (c *NetworkConnection) Write(data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.Write(data)
}

// PrintLabel encodes and sends a single label image.
func (c *NetworkConnection) PrintLabel(img image.Image) error {
	if _, err := c.Write(EncodeLabel(img)); err != nil {
		return fmt.Errorf("failed to write label to printer: %w", err)
	}
	return nil
}

// Close shuts down the connection.
func (c *NetworkConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
