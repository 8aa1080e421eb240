package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/outliner/internal/apperr"
	"github.com/starford/outliner/internal/markdown"
	"github.com/starford/outliner/internal/query"
)

const maxAssetSize = 10 << 20

var (
	assetTypes = map[string]string{
		"image/png":       ".png",
		"image/jpeg":      ".jpg",
		"image/gif":       ".gif",
		"image/webp":      ".webp",
		"image/svg+xml":   ".svg",
		"application/pdf": ".pdf",
	}

	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

	// Overridden in tests to reach httptest servers on loopback.
	hostAllowed = checkBlockedHost
)

type uploadResult struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	MarkdownImage string `json:"markdownImage"`
	Markdown      string `json:"markdown"`
}

// download is a fetched asset body with the extension implied by its type.
type download struct {
	data []byte
	ext  string
}

func (s *Server) uploadAsset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var dl download
	if strings.HasPrefix(rawURL, "data:") {
		dl, err = decodeDataURI(rawURL)
	} else {
		dl, err = fetchHTTP(ctx, rawURL)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(dl.data) > maxAssetSize {
		return mcp.NewToolResultError(fmt.Sprintf("file too large: %d bytes (max %d)", len(dl.data), maxAssetSize)), nil
	}

	name := req.GetString("filename", "")
	if name == "" {
		name = nameFromURL(rawURL, dl.ext)
	}
	name = sanitizeName(name)

	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExt(ext) {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported file extension %q (allowed: png, jpg, jpeg, gif, webp, svg, pdf)", ext)), nil
	}
	if err := sniffContent(dl.data, ext); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := s.svc.Asset(ctx, name); err == nil {
		return mcp.NewToolResultError(fmt.Sprintf("asset already exists: %s", name)), nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.UploadAsset(ctx, name, dl.data); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to store asset: %v", err)), nil
	}

	out, _ := json.Marshal(uploadResult{
		Name:          name,
		URL:           markdown.MediaPath(name),
		MarkdownImage: markdown.Image(name),
		Markdown:      query.AssetMarkup(name),
	})
	return mcp.NewToolResultText(string(out)), nil
}

func allowedExt(ext string) bool {
	if ext == ".jpeg" {
		return true
	}
	for _, e := range assetTypes {
		if e == ext {
			return true
		}
	}
	return false
}

// decodeDataURI parses data:<mime>;base64,<payload>.
func decodeDataURI(uri string) (download, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return download{}, fmt.Errorf("invalid data URI: missing comma separator")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return download{}, fmt.Errorf("only base64 data URIs are supported")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return download{}, fmt.Errorf("invalid base64 data: %w", err)
		}
	}

	mime, _, _ = strings.Cut(mime, ";")
	ext, ok := assetTypes[mime]
	if !ok {
		return download{}, fmt.Errorf("unsupported MIME type in data URI: %s", mime)
	}
	return download{data: data, ext: ext}, nil
}

// fetchHTTP downloads an http(s) URL, refusing loopback and metadata hosts.
func fetchHTTP(ctx context.Context, rawURL string) (download, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return download{}, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return download{}, fmt.Errorf("unsupported scheme: %s (only http/https)", u.Scheme)
	}
	if err := hostAllowed(u.Hostname()); err != nil {
		return download{}, err
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(r *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			return hostAllowed(r.URL.Hostname())
		},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return download{}, fmt.Errorf("invalid URL: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return download{}, fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return download{}, fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize+1))
	if err != nil {
		return download{}, fmt.Errorf("read body failed: %w", err)
	}
	if len(data) > maxAssetSize {
		return download{}, fmt.Errorf("file too large: exceeds %d bytes", maxAssetSize)
	}

	ct, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
	return download{data: data, ext: assetTypes[strings.TrimSpace(ct)]}, nil
}

// checkBlockedHost rejects loopback and cloud metadata addresses.
func checkBlockedHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("blocked host: %s", host)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			return nil //nolint:nilerr // the HTTP client reports DNS failures
		}
		ip = ips[0]
	}
	if ip.IsLoopback() {
		return fmt.Errorf("blocked host: loopback address %s", host)
	}
	if ip.Equal(net.ParseIP("169.254.169.254")) {
		return fmt.Errorf("blocked host: cloud metadata address %s", host)
	}
	return nil
}

// nameFromURL takes the last path element of rawURL, or a random name.
func nameFromURL(rawURL, ext string) string {
	if !strings.HasPrefix(rawURL, "data:") {
		if u, err := url.Parse(rawURL); err == nil {
			base := path.Base(u.Path)
			if base != "." && base != "/" && strings.Contains(base, ".") {
				return base
			}
		}
	}
	if ext == "" {
		ext = ".bin"
	}
	return uuid.NewString() + ext
}

func sanitizeName(name string) string {
	name = unsafeNameChars.ReplaceAllString(filepath.Base(name), "_")
	if name == "" || name == "." || name == ".." {
		return uuid.NewString()
	}
	return name
}

// sniffContent checks that data looks like a file of type ext.
func sniffContent(data []byte, ext string) error {
	if ext == ".svg" {
		head := data[:min(len(data), 1024)]
		if !bytes.Contains(head, []byte("<svg")) {
			return fmt.Errorf("content does not appear to be a valid SVG (missing <svg tag)")
		}
		return nil
	}
	detected, _, _ := strings.Cut(http.DetectContentType(data), ";")
	want := ext
	if want == ".jpeg" {
		want = ".jpg"
	}
	if assetTypes[detected] != want {
		return fmt.Errorf("content does not match extension %s (detected: %s)", ext, detected)
	}
	return nil
}
