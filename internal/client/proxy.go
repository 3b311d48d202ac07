// ABOUTME: SOCKS5-over-SSH dialer for reaching the control plane via a jump host
// ABOUTME: Accepts ssh+socks5://user@host:port?private-key=/path URLs

package client

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
)

// DialFunc matches http.Transport.DialContext
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// ProxyDialer builds a dialer that tunnels through an SSH jump host.
// The tunnel is opened lazily on the first connection.
func ProxyDialer(allProxy string) (DialFunc, error) {
	allProxy = strings.TrimPrefix(allProxy, "ssh+")

	proxyURL, err := url.Parse(allProxy)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %w", err)
	}
	if proxyURL.Scheme != "socks5" {
		return nil, fmt.Errorf("unsupported proxy scheme %q (expected ssh+socks5)", proxyURL.Scheme)
	}
	if proxyURL.Host == "" {
		return nil, fmt.Errorf("proxy URL has no host")
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	keyPath := proxyURL.Query().Get("private-key")
	if keyPath == "" {
		return nil, fmt.Errorf("proxy URL missing required 'private-key' query param")
	}
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH private key: %w", err)
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.Mutex
	)
	tunnel := func() (proxy.DialFunc, error) {
		mut.Lock()
		defer mut.Unlock()
		if dialer == nil {
			d, err := socks5Proxy.Dialer(username, string(key), proxyURL.Host)
			if err != nil {
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = d
		}
		return dialer, nil
	}

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dial, err := tunnel()
		if err != nil {
			return nil, err
		}
		return dialWithContext(ctx, dial, network, address)
	}, nil
}

type dialResult struct {
	conn net.Conn
	err  error
}

// dialWithContext stops waiting when ctx ends and closes a late connection
func dialWithContext(ctx context.Context, dial proxy.DialFunc, network, address string) (net.Conn, error) {
	done := make(chan dialResult, 1)
	go func() {
		conn, err := dial(network, address)
		done <- dialResult{conn: conn, err: err}
	}()

	select {
	case res := <-done:
		return res.conn, res.err
	case <-ctx.Done():
		go func() {
			if res := <-done; res.conn != nil {
				res.conn.Close()
			}
		}()
		return nil, ctx.Err()
	}
}
