package download

import (
	"context"
	"fmt"
	"net"
	"net/textproto"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/mlow/low/core"
)

// ftpGet implements the minimal anonymous-FTP passive-mode GET spec.md
// §4.5 requires (accept code 226 as success): connect, log in
// anonymously, switch to binary (TYPE I), enter passive mode, RETR the
// path, and stream the data connection to outPath. There is no FTP client
// library anywhere in the retrieved corpus to ground this on (see
// DESIGN.md), so this is hand-rolled over net/textproto, the same layer
// net/http's own internals build on for line-oriented protocols.
func ftpGet(ctx context.Context, rawURL, outPath string, onProgress ProgressFunc) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &core.TransportError{URL: rawURL, Cause: err}
	}

	host := u.Host
	if !strings.Contains(host, ":") {
		host += ":21"
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return &core.TransportError{URL: rawURL, Cause: err}
	}
	defer conn.Close()

	text := textproto.NewConn(conn)
	if _, _, err := text.ReadResponse(220); err != nil {
		return &core.TransportError{URL: rawURL, Cause: err}
	}

	user := "anonymous"
	pass := "anonymous@"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}

	if err := text.PrintfLine("USER %s", user); err != nil {
		return &core.TransportError{URL: rawURL, Cause: err}
	}
	if _, _, err := text.ReadResponse(331); err != nil {
		if _, _, err2 := text.ReadResponse(230); err2 == nil {
			// server allowed in without a password; fall through
		} else {
			return &core.TransportError{URL: rawURL, Cause: err}
		}
	} else {
		if err := text.PrintfLine("PASS %s", pass); err != nil {
			return &core.TransportError{URL: rawURL, Cause: err}
		}
		if _, _, err := text.ReadResponse(230); err != nil {
			return &core.TransportError{URL: rawURL, Cause: err}
		}
	}

	if err := text.PrintfLine("TYPE I"); err != nil {
		return &core.TransportError{URL: rawURL, Cause: err}
	}
	if _, _, err := text.ReadResponse(200); err != nil {
		return &core.TransportError{URL: rawURL, Cause: err}
	}

	dataConn, err := ftpPassive(text, host)
	if err != nil {
		return &core.TransportError{URL: rawURL, Cause: err}
	}
	defer dataConn.Close()

	path := strings.TrimPrefix(u.Path, "/")
	if err := text.PrintfLine("RETR %s", path); err != nil {
		return &core.TransportError{URL: rawURL, Cause: err}
	}
	code, _, err := text.ReadResponse(150)
	if err != nil {
		return &core.TransportError{URL: rawURL, Cause: err}
	}
	_ = code

	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return &core.TransportError{URL: rawURL, Cause: err}
	}
	if err := streamToFile(out, dataConn, 0, onProgress); err != nil {
		out.Close()
		_ = os.Remove(outPath)
		return err
	}
	if err := out.Close(); err != nil {
		return &core.TransportError{URL: rawURL, Cause: err}
	}

	// 226 is the success code spec.md §4.5 names explicitly.
	if _, _, err := text.ReadResponse(226); err != nil {
		return &core.HTTPError{URL: rawURL, Code: 0}
	}
	return nil
}

// ftpPassive issues PASV and dials the data connection it describes.
func ftpPassive(text *textproto.Conn, controlHost string) (net.Conn, error) {
	if err := text.PrintfLine("PASV"); err != nil {
		return nil, err
	}
	_, line, err := text.ReadResponse(227)
	if err != nil {
		return nil, err
	}

	start := strings.IndexByte(line, '(')
	end := strings.IndexByte(line, ')')
	if start < 0 || end < 0 || end <= start {
		return nil, fmt.Errorf("download: malformed PASV response %q", line)
	}
	parts := strings.Split(line[start+1:end], ",")
	if len(parts) != 6 {
		return nil, fmt.Errorf("download: malformed PASV address %q", line)
	}
	ip := strings.Join(parts[:4], ".")
	p1, err1 := strconv.Atoi(parts[4])
	p2, err2 := strconv.Atoi(parts[5])
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("download: malformed PASV port in %q", line)
	}
	port := p1*256 + p2

	var dialer net.Dialer
	return dialer.Dial("tcp", net.JoinHostPort(ip, strconv.Itoa(port)))
}
